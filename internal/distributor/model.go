package distributor

import "github.com/HeliosEnergia/api-backoffice/internal/models"

// Distributor é dado de referência: a distribuidora de energia da região.
type Distributor struct {
	models.Base
	Name     string `gorm:"uniqueIndex" json:"name"`
	CNPJ     string `json:"cnpj"`
	State    string `gorm:"size:2;index" json:"state"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

func (Distributor) TableName() string { return "distributors" }
