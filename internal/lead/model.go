package lead

import (
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status do funil de vendas. O conjunto é validado por pertencimento;
// qualquer status pode suceder qualquer outro.
const (
	StatusLead         = "LEAD"
	StatusSuspect      = "SUSPECT"
	StatusProspect     = "PROSPECT"
	StatusQualified    = "QUALIFIED"
	StatusProposalSent = "PROPOSAL_SENT"
	StatusNegotiation  = "NEGOTIATION"
	StatusWon          = "WON"
	StatusLost         = "LOST"
	StatusArchived     = "ARCHIVED"
)

const (
	SourceLandingPage = "LANDING_PAGE"
	SourceManual      = "MANUAL"
	SourceImport      = "IMPORT"
	SourceAPI         = "API"
	SourceReferral    = "REFERRAL"
)

const (
	OwnerCompany = "COMPANY"
	OwnerPartner = "PARTNER"
)

var validStatuses = map[string]bool{
	StatusLead:         true,
	StatusSuspect:      true,
	StatusProspect:     true,
	StatusQualified:    true,
	StatusProposalSent: true,
	StatusNegotiation:  true,
	StatusWon:          true,
	StatusLost:         true,
	StatusArchived:     true,
}

var validSources = map[string]bool{
	SourceLandingPage: true,
	SourceManual:      true,
	SourceImport:      true,
	SourceAPI:         true,
	SourceReferral:    true,
}

func StatusValido(s string) bool { return validStatuses[s] }

func SourceValida(s string) bool { return validSources[s] }

func OwnerTypeValido(s string) bool { return s == OwnerCompany || s == OwnerPartner }

type Lead struct {
	models.Base
	Name  string `json:"name"`
	Email string `gorm:"index" json:"email"`
	Phone string `json:"phone"`
	CNPJ  string `gorm:"size:18" json:"cnpj"`

	Status    string `gorm:"index;default:LEAD" json:"status"`
	Source    string `gorm:"default:MANUAL" json:"source"`
	OwnerType string `gorm:"column:owner_type;default:COMPANY" json:"ownerType"`

	CompanyID     *string `gorm:"index" json:"companyId"`
	PartnerID     *string `gorm:"index" json:"partnerId"`
	DistributorID *string `gorm:"index" json:"distributorId"`

	MonthlyConsumptionKWH float64 `gorm:"column:monthly_consumption_kwh" json:"monthlyConsumptionKwh"`

	CEP          string `gorm:"size:9" json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `gorm:"size:2" json:"state"`

	Notes     []LeadNote     `gorm:"foreignKey:LeadID" json:"notes,omitempty"`
	Proposals []LeadProposal `gorm:"foreignKey:LeadID" json:"proposals,omitempty"`
}

func (Lead) TableName() string { return "leads" }

// LeadNote é trilha de acompanhamento, somente inserção.
type LeadNote struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID    string    `gorm:"index" json:"leadId"`
	UserID    *string   `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (LeadNote) TableName() string { return "lead_notes" }

func (n *LeadNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

type LeadProposal struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID        string    `gorm:"index" json:"leadId"`
	QuotaKWH      float64   `gorm:"column:quota_kwh" json:"quotaKwh"`
	Value         float64   `json:"value"`
	AttachmentKey string    `json:"attachmentKey"`
	CreatedBy     *string   `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (LeadProposal) TableName() string { return "lead_proposals" }

func (p *LeadProposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
