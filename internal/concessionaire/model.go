package concessionaire

import (
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/models"
)

// Concessionaire liga uma distribuidora a uma empresa num endereço.
// A desativação guarda quem e quando (auditoria de ciclo de vida).
type Concessionaire struct {
	models.Base
	Name          string `json:"name"`
	CompanyID     string `gorm:"type:uuid;index" json:"companyId"`
	DistributorID string `gorm:"type:uuid;index" json:"distributorId"`

	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `gorm:"size:2" json:"state"`

	IsActive      bool       `gorm:"default:true" json:"isActive"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
	DeactivatedBy *string    `gorm:"type:uuid" json:"deactivatedBy,omitempty"`
}

func (Concessionaire) TableName() string { return "concessionaires" }
