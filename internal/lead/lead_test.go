package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HeliosEnergia/api-backoffice/internal/auditlog"
	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/HeliosEnergia/api-backoffice/internal/pagination"
	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func abrirBanco(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("erro ao abrir sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Lead{}, &LeadNote{}, &LeadProposal{}, &auditlog.AuditLog{}); err != nil {
		t.Fatalf("erro no AutoMigrate: %v", err)
	}
	return db
}

func comPapel(r *http.Request, role auth.Role, companyID *string) *http.Request {
	ctx := context.WithValue(r.Context(), auth.CtxUserID, "ator-teste")
	ctx = context.WithValue(ctx, auth.CtxRole, role)
	ctx = context.WithValue(ctx, auth.CtxCompanyID, companyID)
	return r.WithContext(ctx)
}

func TestStatusValido(t *testing.T) {
	for _, s := range []string{StatusLead, StatusSuspect, StatusProspect, StatusQualified,
		StatusProposalSent, StatusNegotiation, StatusWon, StatusLost, StatusArchived} {
		if !StatusValido(s) {
			t.Errorf("StatusValido(%s) deveria ser true", s)
		}
	}
	for _, s := range []string{"", "PENDING", "lead", "FECHADO"} {
		if StatusValido(s) {
			t.Errorf("StatusValido(%s) deveria ser false", s)
		}
	}
}

func TestSourceEOwnerType(t *testing.T) {
	if !SourceValida(SourceLandingPage) || !SourceValida(SourceReferral) {
		t.Error("origens conhecidas não validaram")
	}
	if SourceValida("FACEBOOK") {
		t.Error("origem desconhecida validou")
	}
	if !OwnerTypeValido(OwnerCompany) || !OwnerTypeValido(OwnerPartner) {
		t.Error("ownerTypes conhecidos não validaram")
	}
	if OwnerTypeValido("GOVERNMENT") {
		t.Error("ownerType desconhecido validou")
	}
}

func semearLeads(t *testing.T, db *gorm.DB) (empresaA, empresaB string) {
	t.Helper()
	repo := NewRepository()
	empresaA = "aaaaaaaa-0000-0000-0000-000000000001"
	empresaB = "bbbbbbbb-0000-0000-0000-000000000002"
	leads := []Lead{
		{Name: "Maria Silva", Email: "maria@exemplo.com", Status: StatusLead, Source: SourceLandingPage, OwnerType: OwnerCompany, CompanyID: &empresaA},
		{Name: "João Souza", Email: "joao@exemplo.com", Status: StatusNegotiation, Source: SourceManual, OwnerType: OwnerCompany, CompanyID: &empresaA},
		{Name: "Ana Lima", Email: "ana@exemplo.com", Status: StatusLead, Source: SourceManual, OwnerType: OwnerCompany, CompanyID: &empresaB},
	}
	for i := range leads {
		if err := repo.Salvar(db, &leads[i]); err != nil {
			t.Fatalf("erro ao semear: %v", err)
		}
	}
	return empresaA, empresaB
}

func TestListarComFiltros(t *testing.T) {
	db := abrirBanco(t)
	empresaA, _ := semearLeads(t, db)
	repo := NewRepository()
	p := pagination.Params{Page: 1, PerPage: 20}

	list, total, err := repo.Listar(db, Filtro{Status: StatusLead}, p)
	if err != nil {
		t.Fatalf("Listar: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("filtro por status: total=%d len=%d", total, len(list))
	}

	list, total, _ = repo.Listar(db, Filtro{CompanyID: empresaA}, p)
	if total != 2 {
		t.Errorf("filtro por empresa: total=%d", total)
	}

	list, total, _ = repo.Listar(db, Filtro{Query: "maria"}, p)
	if total != 1 || list[0].Email != "maria@exemplo.com" {
		t.Errorf("busca textual: total=%d", total)
	}

	// a busca ignora caixa
	list, total, _ = repo.Listar(db, Filtro{Query: "MARIA"}, p)
	if total != 1 || list[0].Email != "maria@exemplo.com" {
		t.Errorf("busca em caixa alta: total=%d", total)
	}

	_, total, _ = repo.Listar(db, Filtro{Status: StatusLead, CompanyID: empresaA}, p)
	if total != 1 {
		t.Errorf("filtros combinados: total=%d", total)
	}
}

func TestListarPaginado(t *testing.T) {
	db := abrirBanco(t)
	semearLeads(t, db)
	repo := NewRepository()

	list, total, err := repo.Listar(db, Filtro{}, pagination.Params{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("Listar: %v", err)
	}
	if total != 3 || len(list) != 2 {
		t.Errorf("página 1: total=%d len=%d", total, len(list))
	}
	list, _, _ = repo.Listar(db, Filtro{}, pagination.Params{Page: 2, PerPage: 2})
	if len(list) != 1 {
		t.Errorf("página 2: len=%d", len(list))
	}
}

func rotear(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/leads", h.Criar).Methods("POST")
	r.HandleFunc("/leads/{id}/status", h.AtualizarStatus).Methods("PATCH")
	r.HandleFunc("/leads/{id}/notes", h.CriarNota).Methods("POST")
	r.HandleFunc("/leads/{id}/notes", h.ListarNotas).Methods("GET")
	r.HandleFunc("/leads/{id}/proposals", h.CriarProposta).Methods("POST")
	return r
}

func TestDeletarGravaAutorESome(t *testing.T) {
	db := abrirBanco(t)
	h := NewHandler(db, auditlog.NewRecorder(db), nil)
	repo := NewRepository()

	empresa := "aaaaaaaa-0000-0000-0000-000000000001"
	l := Lead{Name: "Para Remover", Email: "remover@exemplo.com",
		Status: StatusLead, Source: SourceManual, OwnerType: OwnerCompany, CompanyID: &empresa}
	if err := repo.Salvar(db, &l); err != nil {
		t.Fatalf("seed: %v", err)
	}

	router := mux.NewRouter()
	router.HandleFunc("/leads/{id}", h.Deletar).Methods("DELETE")
	r := comPapel(httptest.NewRequest("DELETE", "/leads/"+l.ID, nil), auth.RoleAdmin, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d, corpo %s", w.Code, w.Body.String())
	}

	if _, err := repo.BuscarPorID(db, l.ID); err == nil {
		t.Error("lead removido continua visível")
	}

	// as duas escritas do soft delete saem juntas: autor e marcação
	var bruto Lead
	if err := db.Unscoped().First(&bruto, "id = ?", l.ID).Error; err != nil {
		t.Fatalf("registro sumiu fisicamente: %v", err)
	}
	if bruto.DeletedBy == nil || *bruto.DeletedBy != "ator-teste" {
		t.Errorf("deleted_by = %v", bruto.DeletedBy)
	}
	if !bruto.DeletedAt.Valid {
		t.Error("deleted_at não preenchido")
	}
}

func TestCriarLeadDefaults(t *testing.T) {
	db := abrirBanco(t)
	h := NewHandler(db, auditlog.NewRecorder(db), nil)
	router := rotear(h)

	body, _ := json.Marshal(map[string]any{
		"name":  "Carlos Pereira",
		"email": "carlos@exemplo.com",
	})
	r := comPapel(httptest.NewRequest("POST", "/leads", bytes.NewReader(body)), auth.RoleAdmin, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, corpo %s", w.Code, w.Body.String())
	}
	var l Lead
	json.Unmarshal(w.Body.Bytes(), &l)
	if l.Status != StatusLead || l.Source != SourceManual || l.OwnerType != OwnerCompany {
		t.Errorf("defaults errados: %s/%s/%s", l.Status, l.Source, l.OwnerType)
	}
}

func TestCriarLeadParceiroExigePartnerID(t *testing.T) {
	db := abrirBanco(t)
	h := NewHandler(db, auditlog.NewRecorder(db), nil)
	router := rotear(h)

	body, _ := json.Marshal(map[string]any{
		"name":      "Lead de Parceiro",
		"email":     "parceiro@exemplo.com",
		"ownerType": OwnerPartner,
	})
	r := comPapel(httptest.NewRequest("POST", "/leads", bytes.NewReader(body)), auth.RoleAdmin, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d, esperava 400", w.Code)
	}
}

func TestAtualizarStatus(t *testing.T) {
	db := abrirBanco(t)
	h := NewHandler(db, auditlog.NewRecorder(db), nil)
	router := rotear(h)

	empresa := "aaaaaaaa-0000-0000-0000-000000000001"
	l := Lead{Name: "Em Funil", Email: "funil@exemplo.com", Status: StatusLead,
		Source: SourceManual, OwnerType: OwnerCompany, CompanyID: &empresa}
	if err := h.Repository.Salvar(db, &l); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"status": StatusWon})
	r := comPapel(httptest.NewRequest("PATCH", "/leads/"+l.ID+"/status", bytes.NewReader(body)), auth.RoleAdmin, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, corpo %s", w.Code, w.Body.String())
	}

	salvo, _ := h.Repository.BuscarPorID(db, l.ID)
	if salvo.Status != StatusWon {
		t.Errorf("status não persistiu: %s", salvo.Status)
	}

	// valor fora do conjunto é recusado
	body, _ = json.Marshal(map[string]string{"status": "FECHADO"})
	r = comPapel(httptest.NewRequest("PATCH", "/leads/"+l.ID+"/status", bytes.NewReader(body)), auth.RoleAdmin, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status inválido aceito: %d", w.Code)
	}
}

func TestEscopoDeEmpresa(t *testing.T) {
	db := abrirBanco(t)
	h := NewHandler(db, auditlog.NewRecorder(db), nil)
	router := rotear(h)

	empresaA := "aaaaaaaa-0000-0000-0000-000000000001"
	empresaB := "bbbbbbbb-0000-0000-0000-000000000002"
	l := Lead{Name: "Da Empresa A", Email: "a@exemplo.com", Status: StatusLead,
		Source: SourceManual, OwnerType: OwnerCompany, CompanyID: &empresaA}
	h.Repository.Salvar(db, &l)

	body, _ := json.Marshal(map[string]string{"status": StatusWon})
	r := comPapel(httptest.NewRequest("PATCH", "/leads/"+l.ID+"/status", bytes.NewReader(body)), auth.RoleUser, &empresaB)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("usuário de outra empresa deveria receber 403, veio %d", w.Code)
	}
}

func TestNotasSomenteInsercao(t *testing.T) {
	db := abrirBanco(t)
	h := NewHandler(db, auditlog.NewRecorder(db), nil)
	router := rotear(h)

	l := Lead{Name: "Com Notas", Email: "notas@exemplo.com", Status: StatusLead,
		Source: SourceManual, OwnerType: OwnerCompany}
	h.Repository.Salvar(db, &l)

	for _, texto := range []string{"primeiro contato feito", "pediu proposta"} {
		body, _ := json.Marshal(map[string]string{"text": texto})
		r := comPapel(httptest.NewRequest("POST", "/leads/"+l.ID+"/notes", bytes.NewReader(body)), auth.RoleAdmin, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusCreated {
			t.Fatalf("criar nota: status %d", w.Code)
		}
	}

	notas, err := h.Repository.ListarNotas(db, l.ID)
	if err != nil {
		t.Fatalf("ListarNotas: %v", err)
	}
	if len(notas) != 2 {
		t.Fatalf("esperava 2 notas, veio %d", len(notas))
	}
	if notas[0].Text != "primeiro contato feito" {
		t.Errorf("ordem cronológica quebrada: %q", notas[0].Text)
	}
	if notas[0].UserID == nil || *notas[0].UserID != "ator-teste" {
		t.Errorf("nota sem atribuição: %v", notas[0].UserID)
	}
}

func TestProposta(t *testing.T) {
	db := abrirBanco(t)
	h := NewHandler(db, auditlog.NewRecorder(db), nil)
	router := rotear(h)

	l := Lead{Name: "Com Proposta", Email: "prop@exemplo.com", Status: StatusLead,
		Source: SourceManual, OwnerType: OwnerCompany}
	h.Repository.Salvar(db, &l)

	body, _ := json.Marshal(map[string]any{"quotaKwh": 1200.5, "value": 8500.0})
	r := comPapel(httptest.NewRequest("POST", "/leads/"+l.ID+"/proposals", bytes.NewReader(body)), auth.RoleAdmin, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("criar proposta: status %d, corpo %s", w.Code, w.Body.String())
	}

	props, _ := h.Repository.ListarPropostas(db, l.ID)
	if len(props) != 1 || props[0].QuotaKWH != 1200.5 || props[0].Value != 8500.0 {
		t.Errorf("proposta errada: %+v", props)
	}
}
