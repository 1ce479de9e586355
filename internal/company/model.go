package company

import "github.com/HeliosEnergia/api-backoffice/internal/models"

// Company é a raiz do multi-tenant: todo dado operacional pertence a uma
// empresa. O code é o slug usado nas landing pages e no login com escopo.
type Company struct {
	models.Base
	Code  string `gorm:"uniqueIndex;size:64" json:"code"`
	Name  string `json:"name"`
	CNPJ  string `gorm:"uniqueIndex;size:18" json:"cnpj"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `gorm:"size:2" json:"state"`
}

func (Company) TableName() string { return "companies" }
