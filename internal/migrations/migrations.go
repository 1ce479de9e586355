package migrations

import (
	"strings"

	"gorm.io/gorm"
)

// auditCols são as colunas comuns de autoria e ciclo de vida. As FKs de
// atribuição para users entram depois que a tabela users existe.
const auditCols = `
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now(),
	deleted_at timestamptz,
	created_by uuid,
	updated_by uuid,
	deleted_by uuid`

func exec(tx *gorm.DB, stmts []string) error {
	for _, s := range stmts {
		if err := tx.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}

func execMany(stmts []string) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error { return exec(tx, stmts) }
}

// atribuicao gera as FKs created_by/updated_by/deleted_by de uma tabela
// para users, todas SET NULL para preservar o registro e esquecer o ator.
func atribuicao(table string) []string {
	out := make([]string, 0, 3)
	for _, col := range []string{"created_by", "updated_by", "deleted_by"} {
		out = append(out,
			`ALTER TABLE `+table+` ADD CONSTRAINT "FK_`+upper(table)+`_`+upper(col)+`"
				FOREIGN KEY (`+col+`) REFERENCES users(id) ON DELETE SET NULL`)
	}
	return out
}

func upper(s string) string { return strings.ToUpper(s) }

// All devolve as migrações em ordem de aplicação.
func All() []Migration {
	return []Migration{
		createCompaniesAndUsers,
		createDistributors,
		createConcessionaires,
		createPlants,
		createCooperatives,
		createPartners,
		createContacts,
		createAuditLogs,
		contactsToLeads,
		createLeadChildren,
		createAuthTokens,
	}
}

var createCompaniesAndUsers = Migration{
	Version: "202401010001",
	Name:    "create_companies_and_users",
	Up: execMany(append([]string{
		`CREATE TABLE companies (
			id uuid PRIMARY KEY,
			code varchar(64) NOT NULL,
			name text NOT NULL,
			cnpj varchar(18) NOT NULL,
			email text NOT NULL DEFAULT '',
			phone text NOT NULL DEFAULT '',
			cep varchar(9) NOT NULL DEFAULT '',
			street text NOT NULL DEFAULT '',
			number text NOT NULL DEFAULT '',
			complement text NOT NULL DEFAULT '',
			neighborhood text NOT NULL DEFAULT '',
			city text NOT NULL DEFAULT '',
			state varchar(2) NOT NULL DEFAULT '',` + auditCols + `
		)`,
		`CREATE UNIQUE INDEX "UQ_COMPANIES_CODE" ON companies (code)`,
		`CREATE UNIQUE INDEX "UQ_COMPANIES_CNPJ" ON companies (cnpj)`,
		`CREATE TABLE users (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			email text NOT NULL,
			phone text NOT NULL DEFAULT '',
			password_hash text NOT NULL,
			role varchar(16) NOT NULL DEFAULT 'USER',
			company_id uuid,
			is_active boolean NOT NULL DEFAULT true,
			precisa_redefinir_senha boolean NOT NULL DEFAULT false,` + auditCols + `
		)`,
		`CREATE UNIQUE INDEX "UQ_USERS_EMAIL" ON users (email)`,
		`ALTER TABLE users ADD CONSTRAINT "FK_USERS_COMPANY"
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE RESTRICT`,
		`ALTER TABLE users ADD CONSTRAINT "CHK_USERS_ROLE"
			CHECK (role IN ('ADMIN','COADMIN','OPERATOR','USER'))`,
	}, append(atribuicao("users"), atribuicao("companies")...)...)),
	Down: execMany(companiesAndUsersDown),
}

// companies e users se referenciam mutuamente (atribuição de um lado,
// FK_USERS_COMPANY do outro); as FKs de entrada em users caem antes da
// tabela.
var companiesAndUsersDown = []string{
	`ALTER TABLE companies DROP CONSTRAINT "FK_COMPANIES_CREATED_BY"`,
	`ALTER TABLE companies DROP CONSTRAINT "FK_COMPANIES_UPDATED_BY"`,
	`ALTER TABLE companies DROP CONSTRAINT "FK_COMPANIES_DELETED_BY"`,
	`DROP TABLE users`,
	`DROP TABLE companies`,
}

var createDistributors = Migration{
	Version: "202401010002",
	Name:    "create_distributors",
	Up: execMany(append([]string{
		`CREATE TABLE distributors (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			cnpj varchar(18) NOT NULL DEFAULT '',
			state varchar(2) NOT NULL DEFAULT '',
			is_active boolean NOT NULL DEFAULT true,` + auditCols + `
		)`,
		`CREATE UNIQUE INDEX "UQ_DISTRIBUTORS_NAME" ON distributors (name)`,
		`CREATE INDEX "IDX_DISTRIBUTORS_STATE" ON distributors (state)`,
	}, atribuicao("distributors")...)),
	Down: execMany([]string{
		`DROP TABLE distributors`,
	}),
}

var createConcessionaires = Migration{
	Version: "202401010003",
	Name:    "create_concessionaires",
	Up: execMany(append([]string{
		`CREATE TABLE concessionaires (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			company_id uuid NOT NULL,
			distributor_id uuid NOT NULL,
			cep varchar(9) NOT NULL DEFAULT '',
			street text NOT NULL DEFAULT '',
			number text NOT NULL DEFAULT '',
			complement text NOT NULL DEFAULT '',
			neighborhood text NOT NULL DEFAULT '',
			city text NOT NULL DEFAULT '',
			state varchar(2) NOT NULL DEFAULT '',
			is_active boolean NOT NULL DEFAULT true,
			deactivated_at timestamptz,
			deactivated_by uuid,` + auditCols + `
		)`,
		`ALTER TABLE concessionaires ADD CONSTRAINT "FK_CONCESSIONAIRES_COMPANY"
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE RESTRICT`,
		`ALTER TABLE concessionaires ADD CONSTRAINT "FK_CONCESSIONAIRES_DISTRIBUTOR"
			FOREIGN KEY (distributor_id) REFERENCES distributors(id) ON DELETE RESTRICT`,
		`ALTER TABLE concessionaires ADD CONSTRAINT "FK_CONCESSIONAIRES_DEACTIVATED_BY"
			FOREIGN KEY (deactivated_by) REFERENCES users(id) ON DELETE SET NULL`,
	}, atribuicao("concessionaires")...)),
	Down: execMany([]string{
		`DROP TABLE concessionaires`,
	}),
}

var createPlants = Migration{
	Version: "202401010004",
	Name:    "create_plants",
	Up: execMany(append([]string{
		`CREATE TABLE plants (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			company_id uuid NOT NULL,
			concessionaire_id uuid NOT NULL,
			installed_power_kwp numeric(12,2) NOT NULL DEFAULT 0,
			cep varchar(9) NOT NULL DEFAULT '',
			street text NOT NULL DEFAULT '',
			number text NOT NULL DEFAULT '',
			complement text NOT NULL DEFAULT '',
			neighborhood text NOT NULL DEFAULT '',
			city text NOT NULL DEFAULT '',
			state varchar(2) NOT NULL DEFAULT '',
			is_active boolean NOT NULL DEFAULT true,` + auditCols + `
		)`,
		`ALTER TABLE plants ADD CONSTRAINT "FK_PLANTS_COMPANY"
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE RESTRICT`,
		`ALTER TABLE plants ADD CONSTRAINT "FK_PLANTS_CONCESSIONAIRE"
			FOREIGN KEY (concessionaire_id) REFERENCES concessionaires(id) ON DELETE RESTRICT`,
	}, atribuicao("plants")...)),
	Down: execMany([]string{
		`DROP TABLE plants`,
	}),
}

var createCooperatives = Migration{
	Version: "202401010005",
	Name:    "create_cooperatives",
	Up: execMany(append([]string{
		`CREATE TABLE cooperatives (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			company_id uuid NOT NULL,
			plant_id uuid NOT NULL,
			monthly_energy_quota_kwh numeric(14,2) NOT NULL DEFAULT 0,
			founded_at timestamptz,
			operation_approved_at timestamptz,
			is_active boolean NOT NULL DEFAULT true,` + auditCols + `
		)`,
		`ALTER TABLE cooperatives ADD CONSTRAINT "FK_COOPERATIVES_COMPANY"
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE RESTRICT`,
		`ALTER TABLE cooperatives ADD CONSTRAINT "FK_COOPERATIVES_PLANT"
			FOREIGN KEY (plant_id) REFERENCES plants(id) ON DELETE RESTRICT`,
	}, atribuicao("cooperatives")...)),
	Down: execMany([]string{
		`DROP TABLE cooperatives`,
	}),
}

var createPartners = Migration{
	Version: "202401010006",
	Name:    "create_partners",
	Up: execMany(append([]string{
		`CREATE TABLE partners (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			cnpj varchar(18) NOT NULL,
			email text NOT NULL,
			phone text NOT NULL DEFAULT '',
			is_active boolean NOT NULL DEFAULT true,` + auditCols + `
		)`,
		`CREATE UNIQUE INDEX "UQ_PARTNERS_CNPJ" ON partners (cnpj)`,
		`CREATE UNIQUE INDEX "UQ_PARTNERS_EMAIL" ON partners (email)`,
	}, atribuicao("partners")...)),
	Down: execMany([]string{
		`DROP TABLE partners`,
	}),
}

var createContacts = Migration{
	Version: "202401010007",
	Name:    "create_contacts",
	Up: execMany(append([]string{
		`CREATE TABLE contacts (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			email text NOT NULL DEFAULT '',
			phone text NOT NULL DEFAULT '',
			cnpj varchar(18) NOT NULL DEFAULT '',
			status varchar(16) NOT NULL DEFAULT 'PENDING',
			company_id uuid,
			distributor_id uuid,
			monthly_consumption_kwh numeric(14,2) NOT NULL DEFAULT 0,
			cep varchar(9) NOT NULL DEFAULT '',
			street text NOT NULL DEFAULT '',
			number text NOT NULL DEFAULT '',
			complement text NOT NULL DEFAULT '',
			neighborhood text NOT NULL DEFAULT '',
			city text NOT NULL DEFAULT '',
			state varchar(2) NOT NULL DEFAULT '',` + auditCols + `
		)`,
		`ALTER TABLE contacts ADD CONSTRAINT "CHK_CONTACTS_STATUS"
			CHECK (status IN ('PENDING','CONTACTED','IN_NEGOTIATION','CLOSED_WON','CLOSED_LOST'))`,
		`ALTER TABLE contacts ADD CONSTRAINT "FK_CONTACTS_COMPANY"
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE RESTRICT`,
		`ALTER TABLE contacts ADD CONSTRAINT "FK_CONTACTS_DISTRIBUTOR"
			FOREIGN KEY (distributor_id) REFERENCES distributors(id) ON DELETE RESTRICT`,
		`CREATE INDEX "IDX_CONTACTS_STATUS" ON contacts (status)`,
	}, atribuicao("contacts")...)),
	Down: execMany([]string{
		`DROP TABLE contacts`,
	}),
}

var createAuditLogs = Migration{
	Version: "202401010008",
	Name:    "create_audit_logs",
	Up: execMany([]string{
		`CREATE TABLE audit_logs (
			id uuid PRIMARY KEY,
			table_name text NOT NULL,
			record_id text NOT NULL,
			action varchar(8) NOT NULL,
			old_values jsonb,
			new_values jsonb,
			changed_fields jsonb,
			user_id uuid,
			ip text NOT NULL DEFAULT '',
			user_agent text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`ALTER TABLE audit_logs ADD CONSTRAINT "FK_AUDIT_LOGS_USER"
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL`,
		`ALTER TABLE audit_logs ADD CONSTRAINT "CHK_AUDIT_LOGS_ACTION"
			CHECK (action IN ('INSERT','UPDATE','DELETE'))`,
		`CREATE INDEX "IDX_AUDIT_LOGS_TABLE_RECORD" ON audit_logs (table_name, record_id)`,
		`CREATE INDEX "IDX_AUDIT_LOGS_CREATED_AT" ON audit_logs (created_at)`,
	}),
	Down: execMany([]string{
		`DROP TABLE audit_logs`,
	}),
}

var createLeadChildren = Migration{
	Version: "202401010010",
	Name:    "create_lead_notes_and_proposals",
	Up: execMany([]string{
		`CREATE TABLE lead_notes (
			id uuid PRIMARY KEY,
			lead_id uuid NOT NULL,
			user_id uuid,
			text text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`ALTER TABLE lead_notes ADD CONSTRAINT "FK_LEAD_NOTES_LEAD"
			FOREIGN KEY (lead_id) REFERENCES leads(id) ON DELETE CASCADE`,
		`ALTER TABLE lead_notes ADD CONSTRAINT "FK_LEAD_NOTES_USER"
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL`,
		`CREATE INDEX "IDX_LEAD_NOTES_LEAD" ON lead_notes (lead_id)`,
		`CREATE TABLE lead_proposals (
			id uuid PRIMARY KEY,
			lead_id uuid NOT NULL,
			quota_kwh numeric(14,2) NOT NULL DEFAULT 0,
			value numeric(14,2) NOT NULL DEFAULT 0,
			attachment_key text NOT NULL DEFAULT '',
			created_by uuid,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`ALTER TABLE lead_proposals ADD CONSTRAINT "FK_LEAD_PROPOSALS_LEAD"
			FOREIGN KEY (lead_id) REFERENCES leads(id) ON DELETE CASCADE`,
		`ALTER TABLE lead_proposals ADD CONSTRAINT "FK_LEAD_PROPOSALS_CREATED_BY"
			FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE SET NULL`,
		`CREATE INDEX "IDX_LEAD_PROPOSALS_LEAD" ON lead_proposals (lead_id)`,
	}),
	Down: execMany([]string{
		`DROP TABLE lead_proposals`,
		`DROP TABLE lead_notes`,
	}),
}

var createAuthTokens = Migration{
	Version: "202401010011",
	Name:    "create_refresh_tokens_and_reset_codes",
	Up:      execMany(authTokensUp),
	Down: execMany([]string{
		`DROP TABLE password_reset_codes`,
		`DROP TABLE refresh_tokens`,
	}),
}

var authTokensUp = []string{
	`CREATE TABLE refresh_tokens (
		id bigserial PRIMARY KEY,
		user_id uuid NOT NULL,
		family_id text NOT NULL,
		hash text NOT NULL,
		role varchar(16) NOT NULL,
		company_id uuid,
		expires_at timestamptz NOT NULL,
		revoked_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE refresh_tokens ADD CONSTRAINT "FK_REFRESH_TOKENS_USER"
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE`,
	`CREATE UNIQUE INDEX "UQ_REFRESH_TOKENS_HASH" ON refresh_tokens (hash)`,
	`CREATE INDEX "IDX_REFRESH_TOKENS_USER" ON refresh_tokens (user_id)`,
	`CREATE INDEX "IDX_REFRESH_TOKENS_FAMILY" ON refresh_tokens (family_id)`,
	`CREATE INDEX "IDX_REFRESH_TOKENS_EXPIRES_AT" ON refresh_tokens (expires_at)`,
	`CREATE TABLE password_reset_codes (
		id bigserial PRIMARY KEY,
		user_id uuid NOT NULL,
		hash text NOT NULL,
		expires_at timestamptz NOT NULL,
		used_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE password_reset_codes ADD CONSTRAINT "FK_PASSWORD_RESET_CODES_USER"
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE`,
	`CREATE UNIQUE INDEX "UQ_PASSWORD_RESET_CODES_HASH" ON password_reset_codes (hash)`,
	`CREATE INDEX "IDX_PASSWORD_RESET_CODES_USER" ON password_reset_codes (user_id)`,
	`CREATE INDEX "IDX_PASSWORD_RESET_CODES_EXPIRES_AT" ON password_reset_codes (expires_at)`,
}
