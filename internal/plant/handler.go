package plant

import (
	"encoding/json"
	"net/http"

	"github.com/HeliosEnergia/api-backoffice/internal/auditlog"
	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type plantRequest struct {
	Name              string  `json:"name" validate:"required"`
	CompanyID         string  `json:"companyId" validate:"required,uuid"`
	ConcessionaireID  string  `json:"concessionaireId" validate:"required,uuid"`
	InstalledPowerKWP float64 `json:"installedPowerKwp" validate:"gte=0"`

	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state" validate:"omitempty,len=2"`
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

func (h *Handler) escopoOK(r *http.Request, companyID string) bool {
	if auth.RoleFromContext(r.Context()).IsAdmin() {
		return true
	}
	scoped := auth.CompanyIDFromContext(r.Context())
	return scoped != nil && *scoped == companyID
}

// Criar trata POST /plants.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req plantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}
	if !h.escopoOK(r, req.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}

	p := Plant{
		Name:              req.Name,
		CompanyID:         req.CompanyID,
		ConcessionaireID:  req.ConcessionaireID,
		InstalledPowerKWP: req.InstalledPowerKWP,
		CEP:               req.CEP,
		Street:            req.Street,
		Number:            req.Number,
		Neighborhood:      req.Neighborhood,
		City:              req.City,
		State:             req.State,
		IsActive:          true,
	}
	p.CreatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Salvar(h.DB, &p); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao salvar usina")
		return
	}
	h.Audit.Record(r, auditlog.ActionInsert, "plants", p.ID, nil, p)
	httpx.JSON(w, http.StatusCreated, p)
}

// Listar trata GET /plants com escopo de empresa.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	if auth.RoleFromContext(r.Context()).IsAdmin() {
		list, err := h.Repository.ListarTodas(h.DB)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "erro ao listar usinas")
			return
		}
		httpx.JSON(w, http.StatusOK, list)
		return
	}

	companyID := auth.CompanyIDFromContext(r.Context())
	if companyID == nil {
		httpx.JSON(w, http.StatusOK, []Plant{})
		return
	}
	list, err := h.Repository.ListarPorEmpresa(h.DB, *companyID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar usinas")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// BuscarPorID trata GET /plants/{id}.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "usina não encontrada")
		return
	}
	if !h.escopoOK(r, p.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Atualizar trata PATCH /plants/{id}.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "usina não encontrada")
		return
	}
	if !h.escopoOK(r, existing.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	before := *existing

	var req plantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	existing.Name = req.Name
	existing.ConcessionaireID = req.ConcessionaireID
	existing.InstalledPowerKWP = req.InstalledPowerKWP
	existing.CEP = req.CEP
	existing.Street = req.Street
	existing.Number = req.Number
	existing.Neighborhood = req.Neighborhood
	existing.City = req.City
	existing.State = req.State
	existing.UpdatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Atualizar(h.DB, existing); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar usina")
		return
	}
	h.Audit.Record(r, auditlog.ActionUpdate, "plants", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

func (h *Handler) setAtivo(w http.ResponseWriter, r *http.Request, ativo bool) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "usina não encontrada")
		return
	}
	if !h.escopoOK(r, existing.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	before := *existing

	updates := map[string]any{
		"is_active":  ativo,
		"updated_by": auth.ActorFromContext(r.Context()),
	}
	if err := h.DB.Model(existing).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar usina")
		return
	}
	existing.IsActive = ativo
	h.Audit.Record(r, auditlog.ActionUpdate, "plants", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Ativar trata PATCH /plants/{id}/activate.
func (h *Handler) Ativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, true)
}

// Desativar trata PATCH /plants/{id}/deactivate.
func (h *Handler) Desativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, false)
}

// Deletar trata DELETE /plants/{id} (soft delete).
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existing, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "usina não encontrada")
		return
	}
	if !h.escopoOK(r, existing.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}

	actor := auth.ActorFromContext(r.Context())
	if err := h.DB.Model(existing).Update("deleted_by", actor).Error; err == nil {
		_ = h.Repository.Deletar(h.DB, id)
	}
	h.Audit.Record(r, auditlog.ActionDelete, "plants", id, existing, nil)
	w.WriteHeader(http.StatusNoContent)
}
