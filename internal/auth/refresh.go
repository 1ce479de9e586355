package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var refreshTTL = 30 * 24 * time.Hour

// ConfigureRefresh ajusta a validade do refresh token.
func ConfigureRefresh(ttl time.Duration) {
	if ttl > 0 {
		refreshTTL = ttl
	}
}

func genRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// TokenPair é a resposta de login e de refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// EmitirTokens gera o par access+refresh no login, abrindo uma nova família.
func EmitirTokens(db *gorm.DB, userID string, role Role, companyID *string) (*TokenPair, error) {
	access, err := GerarAccessToken(userID, role, companyID)
	if err != nil {
		return nil, err
	}
	raw, err := genRaw()
	if err != nil {
		return nil, err
	}
	rt := RefreshToken{
		UserID:    userID,
		FamilyID:  fmt.Sprintf("fam-%s", uuid.NewString()),
		Hash:      hashRaw(raw),
		Role:      role,
		CompanyID: companyID,
		ExpiresAt: time.Now().Add(refreshTTL),
	}
	if err := db.Create(&rt).Error; err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		TokenType:    "Bearer",
		ExpiresIn:    int(accessTTL.Seconds()),
	}, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshHandler trata POST /auth/refresh: valida o token do corpo,
// revoga-o e emite um novo par na mesma família. O token usado nunca é
// reutilizável, então dois refreshes concorrentes com o mesmo token
// resultam em exatamente uma rotação.
func RefreshHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			httpx.Error(w, http.StatusBadRequest, "refresh token ausente")
			return
		}

		var cur RefreshToken
		if err := db.Where("hash = ?", hashRaw(req.RefreshToken)).First(&cur).Error; err != nil {
			httpx.Error(w, http.StatusUnauthorized, "refresh token inválido")
			return
		}
		if cur.RevokedAt != nil || time.Now().After(cur.ExpiresAt) {
			httpx.Error(w, http.StatusUnauthorized, "refresh token expirado")
			return
		}

		now := time.Now()
		res := db.Model(&RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", cur.ID).
			Update("revoked_at", &now)
		if res.Error != nil || res.RowsAffected == 0 {
			httpx.Error(w, http.StatusUnauthorized, "refresh token inválido")
			return
		}

		access, err := GerarAccessToken(cur.UserID, cur.Role, cur.CompanyID)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "erro ao gerar token")
			return
		}
		newRaw, err := genRaw()
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "erro ao gerar token")
			return
		}
		newRT := RefreshToken{
			UserID:    cur.UserID,
			FamilyID:  cur.FamilyID,
			Hash:      hashRaw(newRaw),
			Role:      cur.Role,
			CompanyID: cur.CompanyID,
			ExpiresAt: time.Now().Add(refreshTTL),
		}
		if err := db.Create(&newRT).Error; err != nil {
			httpx.Error(w, http.StatusInternalServerError, "erro ao salvar token")
			return
		}

		httpx.JSON(w, http.StatusOK, TokenPair{
			AccessToken:  access,
			RefreshToken: newRaw,
			TokenType:    "Bearer",
			ExpiresIn:    int(accessTTL.Seconds()),
		})
	}
}

// LogoutHandler revoga o refresh token informado no corpo.
func LogoutHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
			now := time.Now()
			_ = db.Model(&RefreshToken{}).
				Where("hash = ?", hashRaw(req.RefreshToken)).
				Update("revoked_at", &now).Error
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PermissionsHandler devolve os recursos visíveis para o papel do token;
// o dashboard usa a lista para montar o menu lateral.
func PermissionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := RoleFromContext(r.Context())
		visible := []string{}
		for _, res := range Resources() {
			if PodeAcessar(role, res) {
				visible = append(visible, res)
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"role":      role,
			"resources": visible,
		})
	}
}
