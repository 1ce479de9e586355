package auth

// Role é o papel de autorização do usuário.
type Role string

const (
	RoleAdmin    Role = "ADMIN"    // sem escopo de empresa
	RoleCoadmin  Role = "COADMIN"  // administra uma empresa
	RoleOperator Role = "OPERATOR" // opera dentro da empresa
	RoleUser     Role = "USER"     // leitura e ações básicas
)

var roleLevels = map[Role]int{
	RoleAdmin:    4,
	RoleCoadmin:  3,
	RoleOperator: 2,
	RoleUser:     1,
}

// RoleValida confere se o papel pertence ao conjunto conhecido.
func RoleValida(r Role) bool {
	_, ok := roleLevels[r]
	return ok
}

// AtLeast compara papéis pela hierarquia ADMIN > COADMIN > OPERATOR > USER.
func (r Role) AtLeast(min Role) bool {
	return roleLevels[r] >= roleLevels[min]
}

// IsAdmin é o atalho usado nos handlers para pular o escopo de empresa.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// resourceRoles restringe recursos a papéis mínimos. Recurso ausente da
// tabela é visível para qualquer usuário autenticado. A mesma tabela
// alimenta GET /auth/permissions, que o dashboard usa para montar o menu.
var resourceRoles = map[string]Role{
	"companies":       RoleAdmin,
	"audit-logs":      RoleAdmin,
	"users":           RoleCoadmin,
	"partners":        RoleCoadmin,
	"concessionaires": RoleOperator,
	"plants":          RoleOperator,
	"cooperatives":    RoleOperator,
	"distributors":    RoleUser,
	"leads":           RoleUser,
}

// Resources lista todos os recursos conhecidos do back-office.
func Resources() []string {
	return []string{
		"companies", "users", "distributors", "concessionaires",
		"plants", "cooperatives", "partners", "leads", "audit-logs",
	}
}

// PodeAcessar decide se o papel enxerga o recurso.
func PodeAcessar(r Role, resource string) bool {
	min, ok := resourceRoles[resource]
	if !ok {
		return true
	}
	return r.AtLeast(min)
}
