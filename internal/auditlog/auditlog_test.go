package auditlog

import (
	"encoding/json"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestChangedFields(t *testing.T) {
	oldMap := map[string]any{"name": "Antes", "email": "a@b.c", "phone": "111"}
	newMap := map[string]any{"name": "Depois", "email": "a@b.c", "cep": "01310-100"}

	got := ChangedFields(oldMap, newMap)
	want := []string{"cep", "name", "phone"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChangedFields = %v, esperado %v", got, want)
	}
}

func TestChangedFieldsSemEstados(t *testing.T) {
	if ChangedFields(nil, map[string]any{"a": 1}) != nil {
		t.Error("sem estado anterior não há diff")
	}
	if ChangedFields(map[string]any{"a": 1}, nil) != nil {
		t.Error("sem estado novo não há diff")
	}
	if got := ChangedFields(map[string]any{"a": 1.0}, map[string]any{"a": 1.0}); len(got) != 0 {
		t.Errorf("estados iguais geraram diff: %v", got)
	}
}

func TestRecorderPersisteEntrada(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if err := db.AutoMigrate(&AuditLog{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	rec := NewRecorder(db)

	type registro struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	r := httptest.NewRequest("PATCH", "/api/v1/partners/x", nil)
	r.Header.Set("User-Agent", "teste/1.0")
	rec.Record(r, ActionUpdate,
		"partners", "11111111-0000-0000-0000-000000000001",
		registro{Name: "Antes", Email: "a@b.c"},
		registro{Name: "Depois", Email: "a@b.c"},
	)

	var entry AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("entrada não gravada: %v", err)
	}
	if entry.Action != ActionUpdate || entry.Table != "partners" {
		t.Errorf("entrada errada: %+v", entry)
	}
	if entry.UserAgent != "teste/1.0" || entry.IP == "" {
		t.Errorf("ator de requisição ausente: %+v", entry)
	}

	var changed []string
	if err := json.Unmarshal([]byte(entry.Changed), &changed); err != nil {
		t.Fatalf("changed_fields inválido: %v", err)
	}
	if !reflect.DeepEqual(changed, []string{"name"}) {
		t.Errorf("changed_fields = %v", changed)
	}
}
