package migrations

// Remapeamento do vocabulário antigo de status de contacts para o funil
// de leads. No sentido inverso SUSPECT vira CONTACTED: não há
// correspondência exata, o rollback perde informação.
var statusUpMap = map[string]string{
	"PENDING":        "LEAD",
	"CONTACTED":      "SUSPECT",
	"IN_NEGOTIATION": "NEGOTIATION",
	"CLOSED_WON":     "WON",
	"CLOSED_LOST":    "LOST",
}

var statusDownMap = map[string]string{
	"LEAD":        "PENDING",
	"SUSPECT":     "CONTACTED",
	"NEGOTIATION": "IN_NEGOTIATION",
	"WON":         "CLOSED_WON",
	"LOST":        "CLOSED_LOST",
}

// RemapStatusUp converte um status antigo para o vocabulário do funil.
// Status já novos passam inalterados.
func RemapStatusUp(s string) string {
	if novo, ok := statusUpMap[s]; ok {
		return novo
	}
	return s
}

// RemapStatusDown converte um status do funil de volta ao vocabulário de
// contacts. Status sem equivalente antigo passam inalterados.
func RemapStatusDown(s string) string {
	if antigo, ok := statusDownMap[s]; ok {
		return antigo
	}
	return s
}

// LeadStatuses é o conjunto aceito pela CHECK constraint pós-migração.
var LeadStatuses = []string{
	"LEAD", "SUSPECT", "PROSPECT", "QUALIFIED", "PROPOSAL_SENT",
	"NEGOTIATION", "WON", "LOST", "ARCHIVED",
}

// ContactsToLeadsUp são os passos de ida: renomeia tabela, alarga o
// status, remapeia valores, recria a CHECK, preenche source/owner_type
// e cria os índices parciais das FKs opcionais.
var ContactsToLeadsUp = []string{
	`ALTER TABLE contacts RENAME TO leads`,
	`ALTER TABLE leads DROP CONSTRAINT "CHK_CONTACTS_STATUS"`,
	`ALTER TABLE leads ALTER COLUMN status TYPE text`,
	`UPDATE leads SET status = 'LEAD' WHERE status = 'PENDING'`,
	`UPDATE leads SET status = 'SUSPECT' WHERE status = 'CONTACTED'`,
	`UPDATE leads SET status = 'NEGOTIATION' WHERE status = 'IN_NEGOTIATION'`,
	`UPDATE leads SET status = 'WON' WHERE status = 'CLOSED_WON'`,
	`UPDATE leads SET status = 'LOST' WHERE status = 'CLOSED_LOST'`,
	`ALTER TABLE leads ADD CONSTRAINT "CHK_LEADS_STATUS"
		CHECK (status IN ('LEAD','SUSPECT','PROSPECT','QUALIFIED','PROPOSAL_SENT','NEGOTIATION','WON','LOST','ARCHIVED'))`,
	`ALTER TABLE leads ADD COLUMN source varchar(16)`,
	`UPDATE leads SET source = 'MANUAL'`,
	`ALTER TABLE leads ALTER COLUMN source SET NOT NULL`,
	`ALTER TABLE leads ADD CONSTRAINT "CHK_LEADS_SOURCE"
		CHECK (source IN ('LANDING_PAGE','MANUAL','IMPORT','API','REFERRAL'))`,
	`ALTER TABLE leads ADD COLUMN owner_type varchar(16)`,
	`UPDATE leads SET owner_type = 'COMPANY'`,
	`ALTER TABLE leads ALTER COLUMN owner_type SET NOT NULL`,
	`ALTER TABLE leads ADD CONSTRAINT "CHK_LEADS_OWNER_TYPE"
		CHECK (owner_type IN ('COMPANY','PARTNER'))`,
	`ALTER TABLE leads ADD COLUMN partner_id uuid`,
	`ALTER TABLE leads ADD CONSTRAINT "FK_LEADS_PARTNER"
		FOREIGN KEY (partner_id) REFERENCES partners(id) ON DELETE RESTRICT`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_CONTACTS_COMPANY" TO "FK_LEADS_COMPANY"`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_CONTACTS_DISTRIBUTOR" TO "FK_LEADS_DISTRIBUTOR"`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_CONTACTS_CREATED_BY" TO "FK_LEADS_CREATED_BY"`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_CONTACTS_UPDATED_BY" TO "FK_LEADS_UPDATED_BY"`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_CONTACTS_DELETED_BY" TO "FK_LEADS_DELETED_BY"`,
	`DROP INDEX "IDX_CONTACTS_STATUS"`,
	`CREATE INDEX "IDX_LEADS_STATUS" ON leads (status)`,
	`CREATE INDEX "IDX_LEADS_PARTNER" ON leads (partner_id) WHERE partner_id IS NOT NULL`,
	`CREATE INDEX "IDX_LEADS_DISTRIBUTOR" ON leads (distributor_id) WHERE distributor_id IS NOT NULL`,
	`CREATE INDEX "IDX_LEADS_EMAIL" ON leads (email)`,
}

// ContactsToLeadsDown desfaz a ida. A volta de SUSPECT para CONTACTED é
// deliberadamente com perda: linhas que já eram CONTACTED antes da ida e
// linhas que viraram SUSPECT depois dela ficam indistinguíveis.
var ContactsToLeadsDown = []string{
	`DROP INDEX "IDX_LEADS_EMAIL"`,
	`DROP INDEX "IDX_LEADS_DISTRIBUTOR"`,
	`DROP INDEX "IDX_LEADS_PARTNER"`,
	`DROP INDEX "IDX_LEADS_STATUS"`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_LEADS_DELETED_BY" TO "FK_CONTACTS_DELETED_BY"`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_LEADS_UPDATED_BY" TO "FK_CONTACTS_UPDATED_BY"`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_LEADS_CREATED_BY" TO "FK_CONTACTS_CREATED_BY"`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_LEADS_DISTRIBUTOR" TO "FK_CONTACTS_DISTRIBUTOR"`,
	`ALTER TABLE leads RENAME CONSTRAINT "FK_LEADS_COMPANY" TO "FK_CONTACTS_COMPANY"`,
	`ALTER TABLE leads DROP CONSTRAINT "FK_LEADS_PARTNER"`,
	`ALTER TABLE leads DROP COLUMN partner_id`,
	`ALTER TABLE leads DROP CONSTRAINT "CHK_LEADS_OWNER_TYPE"`,
	`ALTER TABLE leads DROP COLUMN owner_type`,
	`ALTER TABLE leads DROP CONSTRAINT "CHK_LEADS_SOURCE"`,
	`ALTER TABLE leads DROP COLUMN source`,
	`ALTER TABLE leads DROP CONSTRAINT "CHK_LEADS_STATUS"`,
	`UPDATE leads SET status = 'PENDING' WHERE status = 'LEAD'`,
	`UPDATE leads SET status = 'CONTACTED' WHERE status = 'SUSPECT'`,
	`UPDATE leads SET status = 'IN_NEGOTIATION' WHERE status = 'NEGOTIATION'`,
	`UPDATE leads SET status = 'CLOSED_WON' WHERE status = 'WON'`,
	`UPDATE leads SET status = 'CLOSED_LOST' WHERE status = 'LOST'`,
	`UPDATE leads SET status = 'PENDING'
		WHERE status IN ('PROSPECT','QUALIFIED','PROPOSAL_SENT','ARCHIVED')`,
	`ALTER TABLE leads ALTER COLUMN status TYPE varchar(16)`,
	`ALTER TABLE leads ADD CONSTRAINT "CHK_CONTACTS_STATUS"
		CHECK (status IN ('PENDING','CONTACTED','IN_NEGOTIATION','CLOSED_WON','CLOSED_LOST'))`,
	`CREATE INDEX "IDX_CONTACTS_STATUS" ON leads (status)`,
	`ALTER TABLE leads RENAME TO contacts`,
}

var contactsToLeads = Migration{
	Version: "202401010009",
	Name:    "contacts_to_leads",
	Up:      execMany(ContactsToLeadsUp),
	Down:    execMany(ContactsToLeadsDown),
}
