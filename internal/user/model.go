package user

import (
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/HeliosEnergia/api-backoffice/internal/models"
)

// User pertence a zero-ou-uma empresa. ADMIN não tem escopo; os demais
// papéis são limitados à própria empresa.
type User struct {
	models.Base
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Phone     string    `json:"phone"`
	Senha     string    `gorm:"column:password_hash" json:"-"`
	Role      auth.Role `gorm:"type:varchar(16);default:USER" json:"role"`
	CompanyID *string   `gorm:"type:uuid;index" json:"companyId,omitempty"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`

	PrecisaRedefinirSenha bool `json:"-"`
}

func (User) TableName() string { return "users" }

// PasswordResetCode é o código de uso único do fluxo esqueci-minha-senha.
// Só o hash vai para o banco.
type PasswordResetCode struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:uuid;index"`
	Hash      string    `gorm:"uniqueIndex"`
	ExpiresAt time.Time `gorm:"index"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (PasswordResetCode) TableName() string { return "password_reset_codes" }
