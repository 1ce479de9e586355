package auth

import "time"

// RefreshToken guarda apenas o hash do token emitido. FamilyID amarra a
// cadeia de rotações de um mesmo login.
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    string     `gorm:"type:uuid;index"`
	FamilyID  string     `gorm:"index"`
	Hash      string     `gorm:"uniqueIndex"`
	Role      Role       `gorm:"type:varchar(16)"`
	CompanyID *string    `gorm:"type:uuid"`
	ExpiresAt time.Time  `gorm:"index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (RefreshToken) TableName() string { return "refresh_tokens" }
