package distributor

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

type distributorRequest struct {
	Name  string `json:"name" validate:"required"`
	CNPJ  string `json:"cnpj"`
	State string `json:"state" validate:"required,len=2"`
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

// Criar trata POST /distributors (somente ADMIN, gate na rota).
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req distributorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	d := Distributor{
		Name:     req.Name,
		CNPJ:     utils.FormatarCNPJ(req.CNPJ),
		State:    req.State,
		IsActive: true,
	}
	d.CreatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Salvar(h.DB, &d); err != nil {
		httpx.Error(w, http.StatusConflict, "erro ao salvar distribuidora (nome já cadastrado?)")
		return
	}
	h.Audit.Record(r, auditlog.ActionInsert, "distributors", d.ID, nil, d)
	httpx.JSON(w, http.StatusCreated, d)
}

// Listar trata GET /distributors, com filtro opcional ?uf=SP.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	var (
		list []Distributor
		err  error
	)
	if uf := r.URL.Query().Get("uf"); uf != "" {
		list, err = h.Repository.ListarPorUF(h.DB, uf)
	} else {
		list, err = h.Repository.ListarTodos(h.DB)
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar distribuidoras")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// BuscarPorID trata GET /distributors/{id}.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	d, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "distribuidora não encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// Atualizar trata PATCH /distributors/{id}.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "distribuidora não encontrada")
		return
	}
	before := *existing

	var req distributorRequest
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
	existing.State = req.State
	existing.UpdatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Atualizar(h.DB, existing); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar distribuidora")
		return
	}
	h.Audit.Record(r, auditlog.ActionUpdate, "distributors", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Deletar trata DELETE /distributors/{id}; bloqueado quando referenciada.
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existing, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "distribuidora não encontrada")
		return
	}

	referenciado, err := h.Repository.Referenciado(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao verificar dependências")
		return
	}
	if referenciado {
		httpx.Error(w, http.StatusConflict, "distribuidora em uso e não pode ser removida")
		return
	}

	if err := h.Repository.Deletar(h.DB, id); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao remover distribuidora")
		return
	}
	h.Audit.Record(r, auditlog.ActionDelete, "distributors", id, existing, nil)
	w.WriteHeader(http.StatusNoContent)
}
