package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret []byte
	accessTTL = 15 * time.Minute
)

// Configure define o segredo HS256 e a validade do access token.
// Deve ser chamada uma vez na subida do serviço (e nos testes).
func Configure(secret string, ttl time.Duration) {
	jwtSecret = []byte(secret)
	if ttl > 0 {
		accessTTL = ttl
	}
}

// AccessTTL retorna a validade corrente do access token.
func AccessTTL() time.Duration { return accessTTL }

// Claims do access token: usuário, papel e empresa (quando houver escopo).
type Claims struct {
	UserID    string  `json:"userId"`
	Role      Role    `json:"role"`
	CompanyID *string `json:"companyId,omitempty"`
	jwt.RegisteredClaims
}

// GerarAccessToken emite um JWT HS256 com os claims de RBAC.
func GerarAccessToken(userID string, role Role, companyID *string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("segredo JWT não configurado")
	}
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Role:      role,
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        fmt.Sprintf("%s-%d", userID, now.UnixNano()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidarToken valida assinatura e expiração e devolve os claims.
func ValidarToken(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token inválido ou expirado: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("não foi possível extrair claims")
	}
	return claims, nil
}
