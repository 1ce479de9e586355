package migrations

import (
	"strings"
	"testing"
)

func TestRemapStatusRoundTrip(t *testing.T) {
	// ida e volta restauram o valor antigo, exceto CONTACTED, que vira
	// SUSPECT na ida e volta como CONTACTED: sem perda nesses casos
	for _, antigo := range []string{"PENDING", "CONTACTED", "IN_NEGOTIATION", "CLOSED_WON", "CLOSED_LOST"} {
		if got := RemapStatusDown(RemapStatusUp(antigo)); got != antigo {
			t.Errorf("round-trip de %s virou %s", antigo, got)
		}
	}
}

func TestRemapStatusUp(t *testing.T) {
	casos := map[string]string{
		"PENDING":        "LEAD",
		"CONTACTED":      "SUSPECT",
		"IN_NEGOTIATION": "NEGOTIATION",
		"CLOSED_WON":     "WON",
		"CLOSED_LOST":    "LOST",
		"ARCHIVED":       "ARCHIVED",
	}
	for antigo, novo := range casos {
		if got := RemapStatusUp(antigo); got != novo {
			t.Errorf("RemapStatusUp(%s) = %s, esperado %s", antigo, got, novo)
		}
	}
}

func TestRemapStatusDownPerdaDocumentada(t *testing.T) {
	// SUSPECT vira CONTACTED no rollback. Uma linha que já era CONTACTED
	// antes da migração e uma que virou SUSPECT depois ficam iguais.
	antes := RemapStatusDown(RemapStatusUp("CONTACTED"))
	depois := RemapStatusDown("SUSPECT")
	if antes != depois || antes != "CONTACTED" {
		t.Errorf("perda esperada SUSPECT→CONTACTED não ocorreu: %s / %s", antes, depois)
	}
}

func TestLeadStatusesCobremCheck(t *testing.T) {
	if len(LeadStatuses) != 9 {
		t.Fatalf("funil deveria ter 9 status, veio %d", len(LeadStatuses))
	}
	var check string
	for _, s := range ContactsToLeadsUp {
		if strings.Contains(s, "CHK_LEADS_STATUS") {
			check = s
		}
	}
	if check == "" {
		t.Fatal("CHECK de status ausente na migração")
	}
	for _, status := range LeadStatuses {
		if !strings.Contains(check, "'"+status+"'") {
			t.Errorf("status %s fora da CHECK constraint", status)
		}
	}
}

func TestNomesDeConstraints(t *testing.T) {
	todas := strings.Join(ContactsToLeadsUp, "\n")
	for _, nome := range []string{"IDX_LEADS_STATUS", "FK_LEADS_COMPANY", "FK_LEADS_PARTNER"} {
		if !strings.Contains(todas, nome) {
			t.Errorf("migração não cria/renomeia %s", nome)
		}
	}
	if !strings.Contains(todas, "WHERE partner_id IS NOT NULL") {
		t.Error("índice parcial de partner_id ausente")
	}

	volta := strings.Join(ContactsToLeadsDown, "\n")
	for _, nome := range []string{"IDX_CONTACTS_STATUS", "FK_CONTACTS_COMPANY", "CHK_CONTACTS_STATUS"} {
		if !strings.Contains(volta, nome) {
			t.Errorf("rollback não restaura %s", nome)
		}
	}
	if !strings.Contains(volta, "RENAME TO contacts") {
		t.Error("rollback não devolve o nome da tabela")
	}
}

func TestTabelasDeTokensCriadasPelaMigracao(t *testing.T) {
	versoes := map[string]bool{}
	for _, m := range All() {
		versoes[m.Version] = true
	}
	if !versoes["202401010011"] {
		t.Fatal("migração de refresh_tokens/password_reset_codes ausente de All()")
	}

	todas := strings.Join(authTokensUp, "\n")
	for _, trecho := range []string{
		"CREATE TABLE refresh_tokens",
		"CREATE TABLE password_reset_codes",
		`"UQ_REFRESH_TOKENS_HASH"`,
		`"UQ_PASSWORD_RESET_CODES_HASH"`,
		`"FK_REFRESH_TOKENS_USER"`,
		`"FK_PASSWORD_RESET_CODES_USER"`,
	} {
		if !strings.Contains(todas, trecho) {
			t.Errorf("migração de tokens não contém %s", trecho)
		}
	}
}

func TestRollbackDeUsersDerrubaFKsDeEntrada(t *testing.T) {
	// companies referencia users pela atribuição; as FKs precisam cair
	// antes dos DROP TABLE
	drops, dropUsers, dropCompanies := -1, -1, -1
	for i, s := range companiesAndUsersDown {
		switch {
		case strings.Contains(s, `DROP CONSTRAINT "FK_COMPANIES_`):
			if drops < i {
				drops = i
			}
		case strings.Contains(s, "DROP TABLE users"):
			dropUsers = i
		case strings.Contains(s, "DROP TABLE companies"):
			dropCompanies = i
		}
	}
	if drops == -1 {
		t.Fatal("rollback não derruba as FKs de atribuição de companies")
	}
	if dropUsers == -1 || dropCompanies == -1 {
		t.Fatal("rollback não derruba as duas tabelas")
	}
	if drops > dropUsers {
		t.Error("FKs de companies precisam cair antes de DROP TABLE users")
	}
	if dropUsers > dropCompanies {
		t.Error("users precisa cair antes de companies (FK_USERS_COMPANY)")
	}
}

func TestOrdemDasMigracoes(t *testing.T) {
	all := All()
	if len(all) != 11 {
		t.Fatalf("esperava 11 migrações, veio %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Version <= all[i-1].Version {
			t.Errorf("migrações fora de ordem: %s depois de %s", all[i].Version, all[i-1].Version)
		}
	}
	vistas := map[string]bool{}
	for _, m := range all {
		if vistas[m.Version] {
			t.Errorf("versão duplicada: %s", m.Version)
		}
		vistas[m.Version] = true
		if m.Up == nil || m.Down == nil {
			t.Errorf("migração %s sem up ou down", m.Version)
		}
	}
}
