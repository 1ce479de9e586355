package cooperative

import (
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/models"
)

// Cooperative agrupa consumidores numa usina com uma cota mensal de
// energia compartilhada.
type Cooperative struct {
	models.Base
	Name      string `json:"name"`
	CompanyID string `gorm:"type:uuid;index" json:"companyId"`
	PlantID   string `gorm:"type:uuid;index" json:"plantId"`

	MonthlyEnergyQuotaKWH float64    `gorm:"column:monthly_energy_quota_kwh" json:"monthlyEnergyQuotaKwh"`
	FoundedAt             *time.Time `json:"foundedAt,omitempty"`
	OperationApprovedAt   *time.Time `json:"operationApprovedAt,omitempty"`

	IsActive bool `gorm:"default:true" json:"isActive"`
}

func (Cooperative) TableName() string { return "cooperatives" }
