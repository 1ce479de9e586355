package landing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HeliosEnergia/api-backoffice/internal/company"
	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/HeliosEnergia/api-backoffice/internal/lead"
	"github.com/HeliosEnergia/api-backoffice/internal/metrics"
	"github.com/HeliosEnergia/api-backoffice/internal/notification"
	"github.com/HeliosEnergia/api-backoffice/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type contactRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
	CNPJ  string `json:"cnpj"`

	DistributorID         *string `json:"distributorId" validate:"omitempty,uuid"`
	MonthlyConsumptionKWH float64 `json:"monthlyConsumptionKwh" validate:"gte=0"`

	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state" validate:"omitempty,len=2"`
}

type Handler struct {
	DB        *gorm.DB
	Registry  *Registry
	Companies company.Repository
	Leads     lead.Repository
	Notifier  *notification.Notifier
	validate  *validator.Validate
}

func NewHandler(db *gorm.DB, registry *Registry, notifier *notification.Notifier) *Handler {
	return &Handler{
		DB:        db,
		Registry:  registry,
		Companies: company.NewRepository(),
		Leads:     lead.NewRepository(),
		Notifier:  notifier,
		validate:  validator.New(),
	}
}

// Pagina trata GET /landing/{companyCode} (público).
func (h *Handler) Pagina(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["companyCode"]
	p, err := h.Registry.Resolve(code)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "landing page não encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// CapturarContato trata POST /landing/{companyCode}/contact (público).
// O lead entra no topo do funil, atribuído à empresa do code.
func (h *Handler) CapturarContato(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["companyCode"]
	c, err := h.Companies.BuscarPorCode(h.DB, code)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "empresa não encontrada")
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	cnpj := utils.FormatarCNPJ(req.CNPJ)
	if existente, err := h.Leads.BuscarPorEmailOuCNPJ(h.DB, req.Email, cnpj); err == nil && existente != nil {
		h.Notifier.AlertaLeadDuplicado(req.Email, cnpj)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, http.StatusInternalServerError, "erro ao registrar contato")
		return
	}

	l := lead.Lead{
		Name:                  req.Name,
		Email:                 req.Email,
		Phone:                 req.Phone,
		CNPJ:                  cnpj,
		Status:                lead.StatusLead,
		Source:                lead.SourceLandingPage,
		OwnerType:             lead.OwnerCompany,
		CompanyID:             &c.ID,
		DistributorID:         req.DistributorID,
		MonthlyConsumptionKWH: req.MonthlyConsumptionKWH,
		CEP:                   utils.FormatarCEP(req.CEP),
		Street:                req.Street,
		Number:                req.Number,
		Complement:            req.Complement,
		Neighborhood:          req.Neighborhood,
		City:                  req.City,
		State:                 req.State,
	}
	if err := h.Leads.Salvar(h.DB, &l); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao registrar contato")
		return
	}
	metrics.ObserveLeadCaptured(l.Source)
	httpx.JSON(w, http.StatusCreated, l)
}
