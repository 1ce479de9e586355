package company

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HeliosEnergia/api-backoffice/internal/auditlog"
	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/HeliosEnergia/api-backoffice/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type createCompanyRequest struct {
	Code  string `json:"code" validate:"required,min=2,max=64"`
	Name  string `json:"name" validate:"required"`
	CNPJ  string `json:"cnpj" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`

	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state" validate:"omitempty,len=2"`
}

type updateCompanyRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`

	CEP          *string `json:"cep"`
	Street       *string `json:"street"`
	Number       *string `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood *string `json:"neighborhood"`
	City         *string `json:"city"`
	State        *string `json:"state" validate:"omitempty,len=2"`
}

// Handler encapsula DB, repository e o journal de auditoria.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Audit      *auditlog.Recorder
	validate   *validator.Validate
}

func NewHandler(db *gorm.DB, audit *auditlog.Recorder) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Audit:      audit,
		validate:   validator.New(),
	}
}

// Criar trata POST /companies.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}
	if !utils.SlugValido(req.Code) {
		httpx.Error(w, http.StatusBadRequest, "code deve ser um slug minúsculo")
		return
	}

	c := Company{
		Code:         req.Code,
		Name:         req.Name,
		CNPJ:         utils.FormatarCNPJ(req.CNPJ),
		Email:        req.Email,
		Phone:        req.Phone,
		CEP:          req.CEP,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
	}
	c.CreatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Salvar(h.DB, &c); err != nil {
		httpx.Error(w, http.StatusConflict, "erro ao salvar empresa (code ou CNPJ já cadastrado?)")
		return
	}
	h.Audit.Record(r, auditlog.ActionInsert, "companies", c.ID, nil, c)
	httpx.JSON(w, http.StatusCreated, c)
}

// Listar trata GET /companies. Não-admin enxerga apenas a própria empresa.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	role := auth.RoleFromContext(r.Context())
	if !role.IsAdmin() {
		companyID := auth.CompanyIDFromContext(r.Context())
		if companyID == nil {
			httpx.JSON(w, http.StatusOK, []Company{})
			return
		}
		c, err := h.Repository.BuscarPorID(h.DB, *companyID)
		if err != nil {
			httpx.JSON(w, http.StatusOK, []Company{})
			return
		}
		httpx.JSON(w, http.StatusOK, []Company{*c})
		return
	}

	list, err := h.Repository.ListarTodas(h.DB)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar empresas")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// BuscarPorID trata GET /companies/{id}.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	role := auth.RoleFromContext(r.Context())
	if !role.IsAdmin() {
		companyID := auth.CompanyIDFromContext(r.Context())
		if companyID == nil || *companyID != id {
			httpx.Error(w, http.StatusForbidden, "acesso negado")
			return
		}
	}

	c, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "empresa não encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Atualizar trata PATCH /companies/{id} (atualização parcial; code é imutável).
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	existing, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "empresa não encontrada")
		return
	}
	before := *existing

	var req updateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&existing.Name, req.Name)
	applyString(&existing.Email, req.Email)
	applyString(&existing.Phone, req.Phone)
	applyString(&existing.CEP, req.CEP)
	applyString(&existing.Street, req.Street)
	applyString(&existing.Number, req.Number)
	applyString(&existing.Complement, req.Complement)
	applyString(&existing.Neighborhood, req.Neighborhood)
	applyString(&existing.City, req.City)
	applyString(&existing.State, req.State)
	existing.UpdatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Atualizar(h.DB, existing); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar empresa")
		return
	}
	h.Audit.Record(r, auditlog.ActionUpdate, "companies", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Deletar trata DELETE /companies/{id}: hard delete, bloqueado quando há
// dependentes (FK RESTRICT).
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	existing, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, http.StatusNotFound, "empresa não encontrada")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "erro ao buscar empresa")
		return
	}

	dependentes, err := h.Repository.TemDependentes(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao verificar dependências")
		return
	}
	if dependentes {
		httpx.Error(w, http.StatusConflict, "empresa possui registros vinculados e não pode ser removida")
		return
	}

	if err := h.Repository.Deletar(h.DB, id); err != nil {
		httpx.Error(w, http.StatusConflict, "empresa possui registros vinculados e não pode ser removida")
		return
	}
	h.Audit.Record(r, auditlog.ActionDelete, "companies", id, existing, nil)
	w.WriteHeader(http.StatusNoContent)
}
