package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func init() {
	Configure("segredo-de-teste", 15*time.Minute)
	ConfigureRefresh(time.Hour)
}

func abrirBanco(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("erro ao abrir sqlite: %v", err)
	}
	if err := db.AutoMigrate(&RefreshToken{}); err != nil {
		t.Fatalf("erro no AutoMigrate: %v", err)
	}
	return db
}

func TestAccessTokenRoundTrip(t *testing.T) {
	empresa := "0b6cdbbe-4b43-4b7e-9d26-1a2b3c4d5e6f"
	token, err := GerarAccessToken("user-1", RoleCoadmin, &empresa)
	if err != nil {
		t.Fatalf("GerarAccessToken: %v", err)
	}

	claims, err := ValidarToken(token)
	if err != nil {
		t.Fatalf("ValidarToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != RoleCoadmin {
		t.Errorf("claims errados: %+v", claims)
	}
	if claims.CompanyID == nil || *claims.CompanyID != empresa {
		t.Errorf("companyId não sobreviveu: %v", claims.CompanyID)
	}
}

func TestValidarTokenAdulterado(t *testing.T) {
	token, _ := GerarAccessToken("user-1", RoleUser, nil)
	if _, err := ValidarToken(token + "x"); err == nil {
		t.Error("token adulterado deveria falhar")
	}
	if _, err := ValidarToken(""); err == nil {
		t.Error("token vazio deveria falhar")
	}
}

func TestHierarquiaDePapeis(t *testing.T) {
	if !RoleAdmin.AtLeast(RoleUser) {
		t.Error("ADMIN deveria cobrir USER")
	}
	if RoleUser.AtLeast(RoleOperator) {
		t.Error("USER não deveria cobrir OPERATOR")
	}
	if !RoleOperator.AtLeast(RoleOperator) {
		t.Error("papel deveria cobrir a si mesmo")
	}
	if RoleValida("GERENTE") {
		t.Error("papel desconhecido não deveria validar")
	}
}

func TestPodeAcessar(t *testing.T) {
	// USER nunca enxerga recursos de ADMIN
	for _, res := range []string{"companies", "audit-logs"} {
		if PodeAcessar(RoleUser, res) {
			t.Errorf("USER não deveria acessar %s", res)
		}
	}
	// ADMIN enxerga tudo
	for _, res := range Resources() {
		if !PodeAcessar(RoleAdmin, res) {
			t.Errorf("ADMIN deveria acessar %s", res)
		}
	}
	if !PodeAcessar(RoleUser, "leads") {
		t.Error("USER deveria acessar leads")
	}
	if PodeAcessar(RoleUser, "plants") {
		t.Error("USER não deveria acessar plants")
	}
	// recurso fora da tabela é liberado
	if !PodeAcessar(RoleUser, "cep") {
		t.Error("recurso sem restrição deveria ser liberado")
	}
}

func chamarRefresh(t *testing.T, db *gorm.DB, raw string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"refreshToken": raw})
	r := httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(body))
	w := httptest.NewRecorder()
	RefreshHandler(db)(w, r)
	return w
}

func TestRefreshRotacionaERevoga(t *testing.T) {
	db := abrirBanco(t)

	pair, err := EmitirTokens(db, "user-1", RoleUser, nil)
	if err != nil {
		t.Fatalf("EmitirTokens: %v", err)
	}

	w := chamarRefresh(t, db, pair.RefreshToken)
	if w.Code != http.StatusOK {
		t.Fatalf("primeiro refresh: status %d, corpo %s", w.Code, w.Body.String())
	}
	var novo TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &novo); err != nil {
		t.Fatalf("resposta inválida: %v", err)
	}
	if novo.RefreshToken == pair.RefreshToken {
		t.Error("refresh deveria emitir token novo")
	}

	// o token usado não serve uma segunda vez
	w = chamarRefresh(t, db, pair.RefreshToken)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("reuso do token antigo: status %d, esperava 401", w.Code)
	}

	// o novo segue válido e na mesma família
	w = chamarRefresh(t, db, novo.RefreshToken)
	if w.Code != http.StatusOK {
		t.Errorf("token novo deveria rotacionar, status %d", w.Code)
	}

	var familias []string
	db.Model(&RefreshToken{}).Distinct("family_id").Pluck("family_id", &familias)
	if len(familias) != 1 {
		t.Errorf("rotação deveria manter uma única família, veio %d", len(familias))
	}
}

func TestRefreshTokenDesconhecido(t *testing.T) {
	db := abrirBanco(t)
	w := chamarRefresh(t, db, "nao-existe")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status %d, esperava 401", w.Code)
	}
}

func TestRefreshExpirado(t *testing.T) {
	db := abrirBanco(t)
	pair, err := EmitirTokens(db, "user-1", RoleUser, nil)
	if err != nil {
		t.Fatalf("EmitirTokens: %v", err)
	}

	passado := time.Now().Add(-time.Minute)
	db.Model(&RefreshToken{}).Where("1 = 1").Update("expires_at", passado)

	w := chamarRefresh(t, db, pair.RefreshToken)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("token expirado: status %d, esperava 401", w.Code)
	}
}

func TestLogoutRevoga(t *testing.T) {
	db := abrirBanco(t)
	pair, _ := EmitirTokens(db, "user-1", RoleUser, nil)

	body, _ := json.Marshal(map[string]string{"refreshToken": pair.RefreshToken})
	r := httptest.NewRequest("POST", "/api/v1/auth/logout", bytes.NewReader(body))
	w := httptest.NewRecorder()
	LogoutHandler(db)(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: status %d", w.Code)
	}

	w2 := chamarRefresh(t, db, pair.RefreshToken)
	if w2.Code != http.StatusUnauthorized {
		t.Errorf("token revogado no logout deveria falhar, status %d", w2.Code)
	}
}
