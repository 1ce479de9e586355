package landing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/HeliosEnergia/api-backoffice/internal/company"
	"github.com/HeliosEnergia/api-backoffice/internal/lead"
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
	if err := db.AutoMigrate(&company.Company{}, &lead.Lead{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func escreverRegistro(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "landing.json")
	conteudo := `[
		{"companyCode":"energia-solar","title":"Energia Solar SA","subtitle":"Economize na conta de luz","highlights":["Sem obras","Desconto imediato"]}
	]`
	if err := os.WriteFile(path, []byte(conteudo), 0o644); err != nil {
		t.Fatalf("erro ao escrever registro: %v", err)
	}
	return path
}

func TestLoadRegistryEResolve(t *testing.T) {
	reg, err := LoadRegistry(escreverRegistro(t))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	p, err := reg.Resolve("energia-solar")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Title != "Energia Solar SA" || len(p.Highlights) != 2 {
		t.Errorf("página errada: %+v", p)
	}

	if _, err := reg.Resolve("nao-existe"); err == nil {
		t.Error("code desconhecido deveria falhar")
	}
}

func TestLoadRegistryArquivoAusente(t *testing.T) {
	if _, err := LoadRegistry("/caminho/que/nao/existe.json"); err == nil {
		t.Error("arquivo ausente deveria falhar")
	}
}

func montar(t *testing.T, db *gorm.DB) (*mux.Router, *Handler) {
	t.Helper()
	reg, err := LoadRegistry(escreverRegistro(t))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	h := NewHandler(db, reg, nil)
	r := mux.NewRouter()
	r.HandleFunc("/landing/{companyCode}", h.Pagina).Methods("GET")
	r.HandleFunc("/landing/{companyCode}/contact", h.CapturarContato).Methods("POST")
	return r, h
}

func TestPagina(t *testing.T) {
	db := abrirBanco(t)
	router, _ := montar(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/landing/energia-solar", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/landing/nao-existe", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("code desconhecido: status %d", w.Code)
	}
}

func TestCapturarContato(t *testing.T) {
	db := abrirBanco(t)
	router, h := montar(t, db)

	c := company.Company{Code: "energia-solar", Name: "Energia Solar SA", CNPJ: "12.345.678/0001-95"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed empresa: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"name":  "Visitante Interessado",
		"email": "visitante@exemplo.com",
		"cnpj":  "98765432000110",
		"cep":   "01310100",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/landing/energia-solar/contact", bytes.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("capturar: status %d, corpo %s", w.Code, w.Body.String())
	}

	l, err := h.Leads.BuscarPorEmailOuCNPJ(db, "visitante@exemplo.com", "")
	if err != nil {
		t.Fatalf("lead não gravado: %v", err)
	}
	if l.Status != lead.StatusLead {
		t.Errorf("status = %s, esperado LEAD", l.Status)
	}
	if l.Source != lead.SourceLandingPage {
		t.Errorf("source = %s, esperado LANDING_PAGE", l.Source)
	}
	if l.OwnerType != lead.OwnerCompany {
		t.Errorf("ownerType = %s", l.OwnerType)
	}
	if l.CompanyID == nil || *l.CompanyID != c.ID {
		t.Errorf("empresa não resolvida pelo code: %v", l.CompanyID)
	}
	if l.CNPJ != "98.765.432/0001-10" {
		t.Errorf("cnpj deveria ser formatado: %q", l.CNPJ)
	}
	if l.CEP != "01310-100" {
		t.Errorf("cep deveria ser formatado: %q", l.CEP)
	}
}

func TestCapturarContatoEmpresaInexistente(t *testing.T) {
	db := abrirBanco(t)
	router, _ := montar(t, db)

	body, _ := json.Marshal(map[string]string{"name": "X", "email": "x@exemplo.com"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/landing/energia-solar/contact", bytes.NewReader(body)))
	if w.Code != http.StatusNotFound {
		t.Errorf("empresa ausente: status %d, esperava 404", w.Code)
	}
}

func TestCapturarContatoInvalido(t *testing.T) {
	db := abrirBanco(t)
	router, _ := montar(t, db)

	c := company.Company{Code: "energia-solar", Name: "Energia Solar SA", CNPJ: "12.345.678/0001-95"}
	db.Create(&c)

	body, _ := json.Marshal(map[string]string{"name": "Sem Email"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/landing/energia-solar/contact", bytes.NewReader(body)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("payload inválido: status %d, esperava 400", w.Code)
	}
}
