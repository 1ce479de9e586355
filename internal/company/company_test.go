package company

import (
	"bytes"
	"context"
	"encoding/json"
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
	if err := db.AutoMigrate(&Company{}, &auditlog.AuditLog{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	// tabelas consultadas pela checagem de dependentes
	for _, stmt := range []string{
		`CREATE TABLE users (id text, company_id text)`,
		`CREATE TABLE concessionaires (id text, company_id text)`,
		`CREATE TABLE plants (id text, company_id text)`,
		`CREATE TABLE cooperatives (id text, company_id text)`,
		`CREATE TABLE leads (id text, company_id text)`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	return db
}

func comPapel(r *http.Request, role auth.Role, companyID *string) *http.Request {
	ctx := context.WithValue(r.Context(), auth.CtxUserID, "ator-teste")
	ctx = context.WithValue(ctx, auth.CtxRole, role)
	ctx = context.WithValue(ctx, auth.CtxCompanyID, companyID)
	return r.WithContext(ctx)
}

func montar(db *gorm.DB) (*mux.Router, *Handler) {
	h := NewHandler(db, auditlog.NewRecorder(db))
	r := mux.NewRouter()
	r.HandleFunc("/companies", h.Criar).Methods("POST")
	r.HandleFunc("/companies", h.Listar).Methods("GET")
	r.HandleFunc("/companies/{id}", h.Deletar).Methods("DELETE")
	return r, h
}

func TestCriarEmpresaValidaSlug(t *testing.T) {
	db := abrirBanco(t)
	router, _ := montar(db)

	body, _ := json.Marshal(map[string]string{
		"code": "Energia Solar", "name": "Energia Solar SA", "cnpj": "12345678000195",
	})
	r := comPapel(httptest.NewRequest("POST", "/companies", bytes.NewReader(body)), auth.RoleAdmin, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("code com maiúsculas e espaço: status %d, esperava 400", w.Code)
	}

	body, _ = json.Marshal(map[string]string{
		"code": "energia-solar", "name": "Energia Solar SA", "cnpj": "12345678000195",
	})
	r = comPapel(httptest.NewRequest("POST", "/companies", bytes.NewReader(body)), auth.RoleAdmin, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("slug válido: status %d, corpo %s", w.Code, w.Body.String())
	}

	var c Company
	json.Unmarshal(w.Body.Bytes(), &c)
	if c.CNPJ != "12.345.678/0001-95" {
		t.Errorf("cnpj deveria ser formatado: %q", c.CNPJ)
	}
}

func TestCriarEmpresaExigeAdmin(t *testing.T) {
	db := abrirBanco(t)
	h := NewHandler(db, auditlog.NewRecorder(db))

	// mesma montagem do router de produção: POST atrás do RequireRole
	router := mux.NewRouter()
	admin := router.PathPrefix("/companies").Subrouter()
	admin.Use(auth.RequireRole(auth.RoleAdmin))
	admin.HandleFunc("", h.Criar).Methods("POST")

	body, _ := json.Marshal(map[string]string{
		"code": "nova-empresa", "name": "Nova Empresa SA", "cnpj": "55555555000155",
	})
	r := comPapel(httptest.NewRequest("POST", "/companies", bytes.NewReader(body)), auth.RoleUser, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("USER criando empresa: status %d, esperava 403", w.Code)
	}
	var n int64
	db.Model(&Company{}).Count(&n)
	if n != 0 {
		t.Error("empresa não deveria ter sido criada")
	}

	r = comPapel(httptest.NewRequest("POST", "/companies", bytes.NewReader(body)), auth.RoleAdmin, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("ADMIN criando empresa: status %d, corpo %s", w.Code, w.Body.String())
	}
}

func TestDeletarEmpresaComDependentes(t *testing.T) {
	db := abrirBanco(t)
	router, h := montar(db)

	c := Company{Code: "com-vinculos", Name: "Com Vínculos", CNPJ: "11.111.111/0001-11"}
	if err := h.Repository.Salvar(db, &c); err != nil {
		t.Fatalf("seed: %v", err)
	}
	db.Exec(`INSERT INTO users (id, company_id) VALUES ('u1', ?)`, c.ID)

	r := comPapel(httptest.NewRequest("DELETE", "/companies/"+c.ID, nil), auth.RoleAdmin, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusConflict {
		t.Errorf("delete com dependentes: status %d, esperava 409", w.Code)
	}

	if _, err := h.Repository.BuscarPorID(db, c.ID); err != nil {
		t.Error("empresa não deveria ter sido removida")
	}
}

func TestDeletarEmpresaSemDependentes(t *testing.T) {
	db := abrirBanco(t)
	router, h := montar(db)

	c := Company{Code: "sem-vinculos", Name: "Sem Vínculos", CNPJ: "22.222.222/0001-22"}
	h.Repository.Salvar(db, &c)

	r := comPapel(httptest.NewRequest("DELETE", "/companies/"+c.ID, nil), auth.RoleAdmin, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete sem dependentes: status %d", w.Code)
	}

	// hard delete: nem o Unscoped encontra
	var n int64
	db.Unscoped().Model(&Company{}).Where("id = ?", c.ID).Count(&n)
	if n != 0 {
		t.Error("empresa deveria sumir fisicamente")
	}
}

func TestListarEscopoDeEmpresa(t *testing.T) {
	db := abrirBanco(t)
	router, h := montar(db)

	a := Company{Code: "empresa-a", Name: "Empresa A", CNPJ: "33.333.333/0001-33"}
	b := Company{Code: "empresa-b", Name: "Empresa B", CNPJ: "44.444.444/0001-44"}
	h.Repository.Salvar(db, &a)
	h.Repository.Salvar(db, &b)

	r := comPapel(httptest.NewRequest("GET", "/companies", nil), auth.RoleCoadmin, &a.ID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	var list []Company
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("não-admin deveria ver só a própria empresa: %d itens", len(list))
	}

	r = comPapel(httptest.NewRequest("GET", "/companies", nil), auth.RoleAdmin, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 2 {
		t.Errorf("admin deveria ver todas: %d itens", len(list))
	}
}
