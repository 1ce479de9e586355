package concessionaire

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/auditlog"
	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type concessionaireRequest struct {
	Name          string `json:"name" validate:"required"`
	CompanyID     string `json:"companyId" validate:"required,uuid"`
	DistributorID string `json:"distributorId" validate:"required,uuid"`

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

// Criar trata POST /concessionaires.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req concessionaireRequest
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

	c := Concessionaire{
		Name:          req.Name,
		CompanyID:     req.CompanyID,
		DistributorID: req.DistributorID,
		CEP:           req.CEP,
		Street:        req.Street,
		Number:        req.Number,
		Neighborhood:  req.Neighborhood,
		City:          req.City,
		State:         req.State,
		IsActive:      true,
	}
	c.CreatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Salvar(h.DB, &c); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao salvar concessionária")
		return
	}
	h.Audit.Record(r, auditlog.ActionInsert, "concessionaires", c.ID, nil, c)
	httpx.JSON(w, http.StatusCreated, c)
}

// Listar trata GET /concessionaires, com escopo de empresa fora do ADMIN.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	if auth.RoleFromContext(r.Context()).IsAdmin() {
		list, err := h.Repository.ListarTodas(h.DB)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "erro ao listar concessionárias")
			return
		}
		httpx.JSON(w, http.StatusOK, list)
		return
	}

	companyID := auth.CompanyIDFromContext(r.Context())
	if companyID == nil {
		httpx.JSON(w, http.StatusOK, []Concessionaire{})
		return
	}
	list, err := h.Repository.ListarPorEmpresa(h.DB, *companyID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar concessionárias")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// BuscarPorID trata GET /concessionaires/{id}.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "concessionária não encontrada")
		return
	}
	if !h.escopoOK(r, c.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Atualizar trata PATCH /concessionaires/{id}.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "concessionária não encontrada")
		return
	}
	if !h.escopoOK(r, existing.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	before := *existing

	var req concessionaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	existing.Name = req.Name
	existing.DistributorID = req.DistributorID
	existing.CEP = req.CEP
	existing.Street = req.Street
	existing.Number = req.Number
	existing.Neighborhood = req.Neighborhood
	existing.City = req.City
	existing.State = req.State
	existing.UpdatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Atualizar(h.DB, existing); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar concessionária")
		return
	}
	h.Audit.Record(r, auditlog.ActionUpdate, "concessionaires", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Desativar trata PATCH /concessionaires/{id}/deactivate guardando quem
// e quando desativou.
func (h *Handler) Desativar(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "concessionária não encontrada")
		return
	}
	if !h.escopoOK(r, existing.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	before := *existing

	now := time.Now()
	actor := auth.ActorFromContext(r.Context())
	updates := map[string]any{
		"is_active":      false,
		"deactivated_at": &now,
		"deactivated_by": actor,
		"updated_by":     actor,
	}
	if err := h.DB.Model(existing).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao desativar concessionária")
		return
	}
	existing.IsActive = false
	existing.DeactivatedAt = &now
	existing.DeactivatedBy = actor
	h.Audit.Record(r, auditlog.ActionUpdate, "concessionaires", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Ativar trata PATCH /concessionaires/{id}/activate limpando a auditoria
// de desativação.
func (h *Handler) Ativar(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "concessionária não encontrada")
		return
	}
	if !h.escopoOK(r, existing.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	before := *existing

	updates := map[string]any{
		"is_active":      true,
		"deactivated_at": nil,
		"deactivated_by": nil,
		"updated_by":     auth.ActorFromContext(r.Context()),
	}
	if err := h.DB.Model(existing).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao ativar concessionária")
		return
	}
	existing.IsActive = true
	existing.DeactivatedAt = nil
	existing.DeactivatedBy = nil
	h.Audit.Record(r, auditlog.ActionUpdate, "concessionaires", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Deletar trata DELETE /concessionaires/{id} (soft delete).
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existing, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "concessionária não encontrada")
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
	h.Audit.Record(r, auditlog.ActionDelete, "concessionaires", id, existing, nil)
	w.WriteHeader(http.StatusNoContent)
}
