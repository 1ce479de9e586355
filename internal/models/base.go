package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carrega as colunas comuns a todas as entidades: chave uuid gerada
// na aplicação, timestamps, soft delete e atribuição de autoria.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy *string `gorm:"type:uuid" json:"createdBy,omitempty"`
	UpdatedBy *string `gorm:"type:uuid" json:"updatedBy,omitempty"`
	DeletedBy *string `gorm:"type:uuid" json:"-"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
