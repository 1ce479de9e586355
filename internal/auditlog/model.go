package auditlog

import "time"

// Ações registradas no journal.
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// AuditLog é o registro imutável de uma escrita em qualquer tabela
// rastreada. Nunca é alterado nem apagado; por isso não usa models.Base
// (não há soft delete nem updated_at aqui).
type AuditLog struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Table     string    `gorm:"column:table_name;index" json:"tableName"`
	RecordID  string    `gorm:"type:uuid;index" json:"recordId"`
	Action    string    `gorm:"type:varchar(16);index" json:"action"`
	OldValues string    `gorm:"type:jsonb" json:"oldValues,omitempty"`
	NewValues string    `gorm:"type:jsonb" json:"newValues,omitempty"`
	Changed   string    `gorm:"type:jsonb;column:changed_fields" json:"changedFields,omitempty"`
	UserID    *string   `gorm:"type:uuid;index" json:"userId,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }
