package concessionaire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HeliosEnergia/api-backoffice/internal/auditlog"
	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func abrirBanco(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Concessionaire{}, &auditlog.AuditLog{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func comAdmin(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), auth.CtxUserID, userID)
	ctx = context.WithValue(ctx, auth.CtxRole, auth.RoleAdmin)
	return r.WithContext(ctx)
}

func TestDesativarGuardaQuemEQuando(t *testing.T) {
	db := abrirBanco(t)
	h := NewHandler(db, auditlog.NewRecorder(db))

	c := Concessionaire{
		Name:          "CPFL Leste",
		CompanyID:     "aaaaaaaa-0000-0000-0000-000000000001",
		DistributorID: "dddddddd-0000-0000-0000-000000000001",
		IsActive:      true,
	}
	if err := h.Repository.Salvar(db, &c); err != nil {
		t.Fatalf("seed: %v", err)
	}

	router := mux.NewRouter()
	router.HandleFunc("/concessionaires/{id}/activate", h.Ativar).Methods("PATCH")
	router.HandleFunc("/concessionaires/{id}/deactivate", h.Desativar).Methods("PATCH")

	r := comAdmin(httptest.NewRequest("PATCH", "/concessionaires/"+c.ID+"/deactivate", nil), "gestor-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("desativar: status %d, corpo %s", w.Code, w.Body.String())
	}

	depois, _ := h.Repository.BuscarPorID(db, c.ID)
	if depois.IsActive {
		t.Error("deveria estar inativa")
	}
	if depois.DeactivatedAt == nil {
		t.Error("deactivated_at não preenchido")
	}
	if depois.DeactivatedBy == nil || *depois.DeactivatedBy != "gestor-1" {
		t.Errorf("deactivated_by = %v", depois.DeactivatedBy)
	}

	// reativação limpa o rastro de desativação
	r = comAdmin(httptest.NewRequest("PATCH", "/concessionaires/"+c.ID+"/activate", nil), "gestor-2")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("reativar: status %d", w.Code)
	}

	depois, _ = h.Repository.BuscarPorID(db, c.ID)
	if !depois.IsActive {
		t.Error("deveria estar ativa")
	}
	if depois.DeactivatedAt != nil || depois.DeactivatedBy != nil {
		t.Errorf("rastro de desativação deveria ser limpo: %v / %v",
			depois.DeactivatedAt, depois.DeactivatedBy)
	}
}
