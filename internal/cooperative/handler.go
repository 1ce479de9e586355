package cooperative

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

type cooperativeRequest struct {
	Name      string `json:"name" validate:"required"`
	CompanyID string `json:"companyId" validate:"required,uuid"`
	PlantID   string `json:"plantId" validate:"required,uuid"`

	MonthlyEnergyQuotaKWH float64 `json:"monthlyEnergyQuotaKwh" validate:"gte=0"`
	FoundedAt             *string `json:"foundedAt"`
	OperationApprovedAt   *string `json:"operationApprovedAt"`
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

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", *s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t
	}
	return nil
}

// Criar trata POST /cooperatives.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req cooperativeRequest
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

	c := Cooperative{
		Name:                  req.Name,
		CompanyID:             req.CompanyID,
		PlantID:               req.PlantID,
		MonthlyEnergyQuotaKWH: req.MonthlyEnergyQuotaKWH,
		FoundedAt:             parseDate(req.FoundedAt),
		OperationApprovedAt:   parseDate(req.OperationApprovedAt),
		IsActive:              true,
	}
	c.CreatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Salvar(h.DB, &c); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao salvar cooperativa")
		return
	}
	h.Audit.Record(r, auditlog.ActionInsert, "cooperatives", c.ID, nil, c)
	httpx.JSON(w, http.StatusCreated, c)
}

// Listar trata GET /cooperatives com escopo de empresa.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	if auth.RoleFromContext(r.Context()).IsAdmin() {
		list, err := h.Repository.ListarTodas(h.DB)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "erro ao listar cooperativas")
			return
		}
		httpx.JSON(w, http.StatusOK, list)
		return
	}

	companyID := auth.CompanyIDFromContext(r.Context())
	if companyID == nil {
		httpx.JSON(w, http.StatusOK, []Cooperative{})
		return
	}
	list, err := h.Repository.ListarPorEmpresa(h.DB, *companyID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar cooperativas")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// BuscarPorID trata GET /cooperatives/{id}.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "cooperativa não encontrada")
		return
	}
	if !h.escopoOK(r, c.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Atualizar trata PATCH /cooperatives/{id}.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "cooperativa não encontrada")
		return
	}
	if !h.escopoOK(r, existing.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	before := *existing

	var req cooperativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	existing.Name = req.Name
	existing.PlantID = req.PlantID
	existing.MonthlyEnergyQuotaKWH = req.MonthlyEnergyQuotaKWH
	if d := parseDate(req.FoundedAt); d != nil {
		existing.FoundedAt = d
	}
	if d := parseDate(req.OperationApprovedAt); d != nil {
		existing.OperationApprovedAt = d
	}
	existing.UpdatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Atualizar(h.DB, existing); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar cooperativa")
		return
	}
	h.Audit.Record(r, auditlog.ActionUpdate, "cooperatives", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

func (h *Handler) setAtivo(w http.ResponseWriter, r *http.Request, ativo bool) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "cooperativa não encontrada")
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
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar cooperativa")
		return
	}
	existing.IsActive = ativo
	h.Audit.Record(r, auditlog.ActionUpdate, "cooperatives", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Ativar trata PATCH /cooperatives/{id}/activate.
func (h *Handler) Ativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, true)
}

// Desativar trata PATCH /cooperatives/{id}/deactivate.
func (h *Handler) Desativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, false)
}

// Deletar trata DELETE /cooperatives/{id} (soft delete).
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existing, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "cooperativa não encontrada")
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
	h.Audit.Record(r, auditlog.ActionDelete, "cooperatives", id, existing, nil)
	w.WriteHeader(http.StatusNoContent)
}
