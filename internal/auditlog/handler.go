package auditlog

import (
	"net/http"
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/HeliosEnergia/api-backoffice/internal/pagination"
	"gorm.io/gorm"
)

// Handler expõe a consulta do journal (somente ADMIN; o gate fica na rota).
type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

// Listar trata GET /audit-logs com filtros por tabela, registro, usuário,
// ação e período.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := h.DB.Model(&AuditLog{})

	if v := q.Get("table"); v != "" {
		query = query.Where("table_name = ?", v)
	}
	if v := q.Get("recordId"); v != "" {
		query = query.Where("record_id = ?", v)
	}
	if v := q.Get("userId"); v != "" {
		query = query.Where("user_id = ?", v)
	}
	if v := q.Get("action"); v != "" {
		query = query.Where("action = ?", v)
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query = query.Where("created_at <= ?", t)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao consultar audit logs")
		return
	}

	p := pagination.Parse(r)
	var logs []AuditLog
	if err := query.Order("created_at DESC").Scopes(p.Scope()).Find(&logs).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao consultar audit logs")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"data": logs,
		"meta": pagination.NewMeta(p, total),
	})
}
