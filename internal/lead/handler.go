package lead

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/HeliosEnergia/api-backoffice/internal/auditlog"
	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/HeliosEnergia/api-backoffice/internal/metrics"
	"github.com/HeliosEnergia/api-backoffice/internal/pagination"
	"github.com/HeliosEnergia/api-backoffice/internal/storage"
	"github.com/HeliosEnergia/api-backoffice/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Limite de upload de anexo de proposta (10 MiB).
const maxAttachmentSize = 10 << 20

type createLeadRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
	CNPJ  string `json:"cnpj"`

	Status    string `json:"status"`
	Source    string `json:"source"`
	OwnerType string `json:"ownerType"`

	CompanyID     *string `json:"companyId" validate:"omitempty,uuid"`
	PartnerID     *string `json:"partnerId" validate:"omitempty,uuid"`
	DistributorID *string `json:"distributorId" validate:"omitempty,uuid"`

	MonthlyConsumptionKWH float64 `json:"monthlyConsumptionKwh" validate:"gte=0"`

	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state" validate:"omitempty,len=2"`
}

type updateLeadRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
	CNPJ  *string `json:"cnpj"`

	Source        *string `json:"source"`
	PartnerID     *string `json:"partnerId" validate:"omitempty,uuid"`
	DistributorID *string `json:"distributorId" validate:"omitempty,uuid"`

	MonthlyConsumptionKWH *float64 `json:"monthlyConsumptionKwh" validate:"omitempty,gte=0"`

	CEP          *string `json:"cep"`
	Street       *string `json:"street"`
	Number       *string `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood *string `json:"neighborhood"`
	City         *string `json:"city"`
	State        *string `json:"state" validate:"omitempty,len=2"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type noteRequest struct {
	Text string `json:"text" validate:"required"`
}

type proposalRequest struct {
	QuotaKWH float64 `json:"quotaKwh" validate:"gte=0"`
	Value    float64 `json:"value" validate:"gte=0"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Audit      *auditlog.Recorder
	Uploader   storage.Uploader
	validate   *validator.Validate
}

func NewHandler(db *gorm.DB, audit *auditlog.Recorder, uploader storage.Uploader) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Audit:      audit,
		Uploader:   uploader,
		validate:   validator.New(),
	}
}

func (h *Handler) escopoOK(r *http.Request, companyID *string) bool {
	if auth.RoleFromContext(r.Context()).IsAdmin() {
		return true
	}
	scoped := auth.CompanyIDFromContext(r.Context())
	if scoped == nil {
		return false
	}
	return companyID != nil && *companyID == *scoped
}

// Criar trata POST /leads.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	if req.Status == "" {
		req.Status = StatusLead
	}
	if req.Source == "" {
		req.Source = SourceManual
	}
	if req.OwnerType == "" {
		req.OwnerType = OwnerCompany
	}
	if !StatusValido(req.Status) {
		httpx.Error(w, http.StatusBadRequest, "status inválido")
		return
	}
	if !SourceValida(req.Source) {
		httpx.Error(w, http.StatusBadRequest, "origem inválida")
		return
	}
	if !OwnerTypeValido(req.OwnerType) {
		httpx.Error(w, http.StatusBadRequest, "ownerType inválido")
		return
	}
	if req.OwnerType == OwnerPartner && req.PartnerID == nil {
		httpx.Error(w, http.StatusBadRequest, "lead de parceiro exige partnerId")
		return
	}

	// Lead de empresa herda o escopo do usuário quando o corpo não informa.
	if req.OwnerType == OwnerCompany && req.CompanyID == nil {
		req.CompanyID = auth.CompanyIDFromContext(r.Context())
	}
	if req.OwnerType == OwnerCompany && !h.escopoOK(r, req.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}

	l := Lead{
		Name:                  req.Name,
		Email:                 req.Email,
		Phone:                 req.Phone,
		CNPJ:                  utils.FormatarCNPJ(req.CNPJ),
		Status:                req.Status,
		Source:                req.Source,
		OwnerType:             req.OwnerType,
		CompanyID:             req.CompanyID,
		PartnerID:             req.PartnerID,
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
	l.CreatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Salvar(h.DB, &l); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao salvar lead")
		return
	}
	metrics.ObserveLeadCaptured(l.Source)
	h.Audit.Record(r, auditlog.ActionInsert, "leads", l.ID, nil, l)
	httpx.JSON(w, http.StatusCreated, l)
}

// Listar trata GET /leads com filtros e paginação.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filtro{
		Status:    q.Get("status"),
		Source:    q.Get("source"),
		OwnerType: q.Get("ownerType"),
		CompanyID: q.Get("company"),
		Query:     q.Get("q"),
	}

	if !auth.RoleFromContext(r.Context()).IsAdmin() {
		scoped := auth.CompanyIDFromContext(r.Context())
		if scoped == nil {
			httpx.JSON(w, http.StatusOK, map[string]any{
				"data": []Lead{},
				"meta": pagination.NewMeta(pagination.Parse(r), 0),
			})
			return
		}
		f.CompanyID = *scoped
	}

	params := pagination.Parse(r)
	list, total, err := h.Repository.Listar(h.DB, f, params)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar leads")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data": list,
		"meta": pagination.NewMeta(params, total),
	})
}

func (h *Handler) buscarComEscopo(w http.ResponseWriter, r *http.Request) *Lead {
	l, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "lead não encontrado")
		return nil
	}
	if l.OwnerType == OwnerCompany && !h.escopoOK(r, l.CompanyID) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return nil
	}
	return l
}

// BuscarPorID trata GET /leads/{id}.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	l := h.buscarComEscopo(w, r)
	if l == nil {
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}

// Atualizar trata PATCH /leads/{id} (parcial; status tem rota própria).
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	existing := h.buscarComEscopo(w, r)
	if existing == nil {
		return
	}
	before := *existing

	var req updateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}
	if req.Source != nil && !SourceValida(*req.Source) {
		httpx.Error(w, http.StatusBadRequest, "origem inválida")
		return
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&existing.Name, req.Name)
	apply(&existing.Email, req.Email)
	apply(&existing.Phone, req.Phone)
	if req.CNPJ != nil {
		existing.CNPJ = utils.FormatarCNPJ(*req.CNPJ)
	}
	apply(&existing.Source, req.Source)
	if req.PartnerID != nil {
		existing.PartnerID = req.PartnerID
	}
	if req.DistributorID != nil {
		existing.DistributorID = req.DistributorID
	}
	if req.MonthlyConsumptionKWH != nil {
		existing.MonthlyConsumptionKWH = *req.MonthlyConsumptionKWH
	}
	if req.CEP != nil {
		existing.CEP = utils.FormatarCEP(*req.CEP)
	}
	apply(&existing.Street, req.Street)
	apply(&existing.Number, req.Number)
	apply(&existing.Complement, req.Complement)
	apply(&existing.Neighborhood, req.Neighborhood)
	apply(&existing.City, req.City)
	apply(&existing.State, req.State)
	existing.UpdatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Atualizar(h.DB, existing); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar lead")
		return
	}
	h.Audit.Record(r, auditlog.ActionUpdate, "leads", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// AtualizarStatus trata PATCH /leads/{id}/status. Qualquer status pode
// suceder qualquer outro; só o pertencimento ao conjunto é validado.
func (h *Handler) AtualizarStatus(w http.ResponseWriter, r *http.Request) {
	existing := h.buscarComEscopo(w, r)
	if existing == nil {
		return
	}
	before := *existing

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if !StatusValido(req.Status) {
		httpx.Error(w, http.StatusBadRequest, "status inválido")
		return
	}

	from := existing.Status
	updates := map[string]any{
		"status":     req.Status,
		"updated_by": auth.ActorFromContext(r.Context()),
	}
	if err := h.DB.Model(existing).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar status")
		return
	}
	existing.Status = req.Status

	metrics.ObserveFunnelTransition(from, req.Status)
	h.Audit.Record(r, auditlog.ActionUpdate, "leads", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Deletar trata DELETE /leads/{id} (soft delete).
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	existing := h.buscarComEscopo(w, r)
	if existing == nil {
		return
	}

	actor := auth.ActorFromContext(r.Context())
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(existing).Update("deleted_by", actor).Error; err != nil {
			return err
		}
		return h.Repository.Deletar(tx, existing.ID)
	})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao remover lead")
		return
	}
	h.Audit.Record(r, auditlog.ActionDelete, "leads", existing.ID, existing, nil)
	w.WriteHeader(http.StatusNoContent)
}

// CriarNota trata POST /leads/{id}/notes. Notas nunca são editadas nem
// removidas.
func (h *Handler) CriarNota(w http.ResponseWriter, r *http.Request) {
	l := h.buscarComEscopo(w, r)
	if l == nil {
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	n := LeadNote{
		LeadID: l.ID,
		UserID: auth.ActorFromContext(r.Context()),
		Text:   req.Text,
	}
	if err := h.Repository.SalvarNota(h.DB, &n); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao salvar nota")
		return
	}
	h.Audit.Record(r, auditlog.ActionInsert, "lead_notes", n.ID, nil, n)
	httpx.JSON(w, http.StatusCreated, n)
}

// ListarNotas trata GET /leads/{id}/notes.
func (h *Handler) ListarNotas(w http.ResponseWriter, r *http.Request) {
	l := h.buscarComEscopo(w, r)
	if l == nil {
		return
	}
	notes, err := h.Repository.ListarNotas(h.DB, l.ID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar notas")
		return
	}
	httpx.JSON(w, http.StatusOK, notes)
}

// CriarProposta trata POST /leads/{id}/proposals.
func (h *Handler) CriarProposta(w http.ResponseWriter, r *http.Request) {
	l := h.buscarComEscopo(w, r)
	if l == nil {
		return
	}

	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	p := LeadProposal{
		LeadID:    l.ID,
		QuotaKWH:  req.QuotaKWH,
		Value:     req.Value,
		CreatedBy: auth.ActorFromContext(r.Context()),
	}
	if err := h.Repository.SalvarProposta(h.DB, &p); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao salvar proposta")
		return
	}
	h.Audit.Record(r, auditlog.ActionInsert, "lead_proposals", p.ID, nil, p)
	httpx.JSON(w, http.StatusCreated, p)
}

// ListarPropostas trata GET /leads/{id}/proposals.
func (h *Handler) ListarPropostas(w http.ResponseWriter, r *http.Request) {
	l := h.buscarComEscopo(w, r)
	if l == nil {
		return
	}
	props, err := h.Repository.ListarPropostas(h.DB, l.ID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar propostas")
		return
	}
	httpx.JSON(w, http.StatusOK, props)
}

// AnexarProposta trata POST /leads/{id}/proposals/{pid}/attachment
// (multipart, campo "file").
func (h *Handler) AnexarProposta(w http.ResponseWriter, r *http.Request) {
	l := h.buscarComEscopo(w, r)
	if l == nil {
		return
	}
	if h.Uploader == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "armazenamento de anexos não configurado")
		return
	}

	p, err := h.Repository.BuscarProposta(h.DB, l.ID, mux.Vars(r)["pid"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "proposta não encontrada")
		return
	}
	before := *p

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		httpx.Error(w, http.StatusBadRequest, "arquivo inválido ou grande demais")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "campo file ausente")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentSize))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "erro ao ler arquivo")
		return
	}

	key, err := h.Uploader.UploadFile(r.Context(), data, header.Filename)
	if err != nil {
		httpx.Error(w, http.StatusBadGateway, "erro ao enviar anexo")
		return
	}

	p.AttachmentKey = key
	if err := h.Repository.AtualizarProposta(h.DB, p); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao salvar proposta")
		return
	}
	h.Audit.Record(r, auditlog.ActionUpdate, "lead_proposals", p.ID, before, p)
	httpx.JSON(w, http.StatusOK, p)
}
