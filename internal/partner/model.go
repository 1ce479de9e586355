package partner

import "github.com/HeliosEnergia/api-backoffice/internal/models"

// Partner é um revendedor/afiliado; leads com ownerType PARTNER apontam
// para ele.
type Partner struct {
	models.Base
	Name     string `json:"name"`
	CNPJ     string `gorm:"uniqueIndex;size:18" json:"cnpj"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Phone    string `json:"phone"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

func (Partner) TableName() string { return "partners" }
