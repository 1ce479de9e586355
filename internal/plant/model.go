package plant

import "github.com/HeliosEnergia/api-backoffice/internal/models"

// Plant é uma unidade de geração distribuída.
type Plant struct {
	models.Base
	Name              string  `json:"name"`
	CompanyID         string  `gorm:"type:uuid;index" json:"companyId"`
	ConcessionaireID  string  `gorm:"type:uuid;index" json:"concessionaireId"`
	InstalledPowerKWP float64 `gorm:"column:installed_power_kwp" json:"installedPowerKwp"`

	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `gorm:"size:2" json:"state"`

	IsActive bool `gorm:"default:true" json:"isActive"`
}

func (Plant) TableName() string { return "plants" }
