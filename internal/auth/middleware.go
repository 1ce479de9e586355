package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
)

type ctxKey string

const (
	CtxUserID    ctxKey = "usuarioID"
	CtxRole      ctxKey = "papel"
	CtxCompanyID ctxKey = "empresaID"
)

// MiddlewareAutenticacao valida o bearer token e injeta os claims no contexto.
func MiddlewareAutenticacao(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			httpx.Error(w, http.StatusUnauthorized, "token ausente")
			return
		}
		claims, err := ValidarToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "token inválido")
			return
		}
		ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, CtxRole, claims.Role)
		ctx = context.WithValue(ctx, CtxCompanyID, claims.CompanyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole exige um papel mínimo na hierarquia.
func RequireRole(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(CtxRole).(Role)
			if !role.AtLeast(min) {
				httpx.Error(w, http.StatusForbidden, "acesso negado")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retorna o usuário autenticado ("" quando anônimo).
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxUserID).(string)
	return id
}

// RoleFromContext retorna o papel do usuário autenticado.
func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(CtxRole).(Role)
	return role
}

// CompanyIDFromContext retorna a empresa do token (nil para ADMIN sem escopo).
func CompanyIDFromContext(ctx context.Context) *string {
	id, _ := ctx.Value(CtxCompanyID).(*string)
	return id
}

// ActorFromContext devolve o usuário como ponteiro, pronto para as
// colunas de auditoria created_by/updated_by/deleted_by.
func ActorFromContext(ctx context.Context) *string {
	if id := UserIDFromContext(ctx); id != "" {
		return &id
	}
	return nil
}
