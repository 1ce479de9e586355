package partner

import (
	"encoding/json"
	"net/http"

	"github.com/HeliosEnergia/api-backoffice/internal/auditlog"
	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/HeliosEnergia/api-backoffice/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type partnerRequest struct {
	Name  string `json:"name" validate:"required"`
	CNPJ  string `json:"cnpj" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

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

// Criar trata POST /partners.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	p := Partner{
		Name:     req.Name,
		CNPJ:     utils.FormatarCNPJ(req.CNPJ),
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: true,
	}
	p.CreatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Salvar(h.DB, &p); err != nil {
		httpx.Error(w, http.StatusConflict, "erro ao salvar parceiro (CNPJ ou e-mail já cadastrado?)")
		return
	}
	h.Audit.Record(r, auditlog.ActionInsert, "partners", p.ID, nil, p)
	httpx.JSON(w, http.StatusCreated, p)
}

// Listar trata GET /partners.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.ListarTodos(h.DB)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar parceiros")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// BuscarPorID trata GET /partners/{id}.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "parceiro não encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Atualizar trata PATCH /partners/{id}.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "parceiro não encontrado")
		return
	}
	before := *existing

	var req partnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	existing.Name = req.Name
	existing.CNPJ = utils.FormatarCNPJ(req.CNPJ)
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.UpdatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Atualizar(h.DB, existing); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar parceiro")
		return
	}
	h.Audit.Record(r, auditlog.ActionUpdate, "partners", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

func (h *Handler) setAtivo(w http.ResponseWriter, r *http.Request, ativo bool) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "parceiro não encontrado")
		return
	}
	before := *existing

	updates := map[string]any{
		"is_active":  ativo,
		"updated_by": auth.ActorFromContext(r.Context()),
	}
	if err := h.DB.Model(existing).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar parceiro")
		return
	}
	existing.IsActive = ativo
	h.Audit.Record(r, auditlog.ActionUpdate, "partners", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Ativar trata PATCH /partners/{id}/activate.
func (h *Handler) Ativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, true)
}

// Desativar trata PATCH /partners/{id}/deactivate.
func (h *Handler) Desativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, false)
}

// Deletar trata DELETE /partners/{id} (soft delete).
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existing, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "parceiro não encontrado")
		return
	}

	actor := auth.ActorFromContext(r.Context())
	if err := h.DB.Model(existing).Update("deleted_by", actor).Error; err == nil {
		_ = h.Repository.Deletar(h.DB, id)
	}
	h.Audit.Record(r, auditlog.ActionDelete, "partners", id, existing, nil)
	w.WriteHeader(http.StatusNoContent)
}
