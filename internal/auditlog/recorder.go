package auditlog

import (
	"encoding/json"
	"net/http"
	"reflect"
	"sort"

	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Recorder grava entradas do journal. É chamado explicitamente pelos
// handlers de escrita: hooks do ORM não enxergam ator, IP nem user agent.
type Recorder struct {
	DB *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{DB: db}
}

// Record serializa os estados antes/depois, calcula os campos alterados
// e persiste. Falha de auditoria não derruba a operação de negócio: é
// logada e engolida.
func (rec *Recorder) Record(r *http.Request, action, table, recordID string, oldVal, newVal any) {
	entry := AuditLog{
		ID:        uuid.NewString(),
		Table:     table,
		RecordID:  recordID,
		Action:    action,
		UserID:    auth.ActorFromContext(r.Context()),
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}

	oldMap := toMap(oldVal)
	newMap := toMap(newVal)
	if oldMap != nil {
		if b, err := json.Marshal(oldMap); err == nil {
			entry.OldValues = string(b)
		}
	}
	if newMap != nil {
		if b, err := json.Marshal(newMap); err == nil {
			entry.NewValues = string(b)
		}
	}
	if changed := ChangedFields(oldMap, newMap); len(changed) > 0 {
		if b, err := json.Marshal(changed); err == nil {
			entry.Changed = string(b)
		}
	}

	if err := rec.DB.Create(&entry).Error; err != nil {
		zap.L().Error("falha ao gravar audit log",
			zap.String("table", table),
			zap.String("record", recordID),
			zap.Error(err),
		)
	}
}

func toMap(v any) map[string]any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// ChangedFields lista, em ordem estável, as chaves cujo valor difere
// entre os dois estados.
func ChangedFields(oldMap, newMap map[string]any) []string {
	if oldMap == nil || newMap == nil {
		return nil
	}
	seen := map[string]bool{}
	var changed []string
	for k, ov := range oldMap {
		nv, ok := newMap[k]
		if !ok || !reflect.DeepEqual(ov, nv) {
			changed = append(changed, k)
		}
		seen[k] = true
	}
	for k := range newMap {
		if !seen[k] {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
