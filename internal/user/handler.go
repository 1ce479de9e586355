package user

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/HeliosEnergia/api-backoffice/internal/auditlog"
	"github.com/HeliosEnergia/api-backoffice/internal/auth"
	"github.com/HeliosEnergia/api-backoffice/internal/company"
	"github.com/HeliosEnergia/api-backoffice/internal/httpx"
	"github.com/HeliosEnergia/api-backoffice/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const resetCodeTTL = 30 * time.Minute

type loginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	CompanyCode string `json:"companyCode"`
}

type createUserRequest struct {
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     string  `json:"phone"`
	Password  string  `json:"password" validate:"required,min=8"`
	Role      string  `json:"role" validate:"required,oneof=ADMIN COADMIN OPERATOR USER"`
	CompanyID *string `json:"companyId"`
}

type updateUserRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role" validate:"omitempty,oneof=ADMIN COADMIN OPERATOR USER"`
	CompanyID *string `json:"companyId"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Handler encapsula DB, repository e o journal de auditoria.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Companies  company.Repository
	Audit      *auditlog.Recorder
	validate   *validator.Validate
}

func NewHandler(db *gorm.DB, audit *auditlog.Recorder) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Companies:  company.NewRepository(),
		Audit:      audit,
		validate:   validator.New(),
	}
}

func hashCode(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// Login trata POST /auth/login. Com companyCode, o login é restrito aos
// usuários daquela empresa (fluxo /:companyCode/login do site público).
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	u, err := h.Repository.BuscarPorEmail(h.DB, req.Email)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "credenciais inválidas")
		return
	}
	if !utils.VerificarSenha(u.Senha, req.Password) {
		httpx.Error(w, http.StatusUnauthorized, "credenciais inválidas")
		return
	}
	if !u.IsActive {
		httpx.Error(w, http.StatusForbidden, "usuário desativado")
		return
	}

	if req.CompanyCode != "" {
		c, err := h.Companies.BuscarPorCode(h.DB, req.CompanyCode)
		if err != nil || u.CompanyID == nil || *u.CompanyID != c.ID {
			httpx.Error(w, http.StatusUnauthorized, "credenciais inválidas para esta empresa")
			return
		}
	}

	pair, err := auth.EmitirTokens(h.DB, u.ID, u.Role, u.CompanyID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao gerar token")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user":         u,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"tokenType":    pair.TokenType,
		"expiresIn":    pair.ExpiresIn,
	})
}

// Criar trata POST /users. COADMIN só cria dentro da própria empresa e
// nunca um ADMIN.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	role := auth.RoleFromContext(r.Context())
	newRole := auth.Role(req.Role)
	if !role.IsAdmin() {
		callerCompany := auth.CompanyIDFromContext(r.Context())
		if newRole == auth.RoleAdmin || callerCompany == nil ||
			req.CompanyID == nil || *req.CompanyID != *callerCompany {
			httpx.Error(w, http.StatusForbidden, "acesso negado")
			return
		}
	}

	hash, err := utils.HashSenha(req.Password)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao processar senha")
		return
	}

	u := User{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Senha:     hash,
		Role:      newRole,
		CompanyID: req.CompanyID,
		IsActive:  true,
	}
	u.CreatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Salvar(h.DB, &u); err != nil {
		httpx.Error(w, http.StatusConflict, "erro ao salvar usuário (e-mail já cadastrado?)")
		return
	}
	h.Audit.Record(r, auditlog.ActionInsert, "users", u.ID, nil, u)
	httpx.JSON(w, http.StatusCreated, u)
}

// Listar trata GET /users. ADMIN vê todos; os demais, a própria empresa.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	role := auth.RoleFromContext(r.Context())
	if role.IsAdmin() {
		list, err := h.Repository.ListarTodos(h.DB)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "erro ao listar usuários")
			return
		}
		httpx.JSON(w, http.StatusOK, list)
		return
	}

	companyID := auth.CompanyIDFromContext(r.Context())
	if companyID == nil {
		httpx.JSON(w, http.StatusOK, []User{})
		return
	}
	list, err := h.Repository.ListarPorEmpresa(h.DB, *companyID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao listar usuários")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) podeVer(r *http.Request, alvo *User) bool {
	role := auth.RoleFromContext(r.Context())
	if role.IsAdmin() {
		return true
	}
	if auth.UserIDFromContext(r.Context()) == alvo.ID {
		return true
	}
	companyID := auth.CompanyIDFromContext(r.Context())
	return companyID != nil && alvo.CompanyID != nil && *companyID == *alvo.CompanyID
}

// BuscarPorID trata GET /users/{id}.
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "usuário não encontrado")
		return
	}
	if !h.podeVer(r, u) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// Atualizar trata PATCH /users/{id}. Troca de papel é exclusiva do ADMIN.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Repository.BuscarPorID(h.DB, mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "usuário não encontrado")
		return
	}
	if !h.podeVer(r, existing) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	before := *existing

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	role := auth.RoleFromContext(r.Context())
	if req.Role != nil && !role.IsAdmin() {
		httpx.Error(w, http.StatusForbidden, "apenas ADMIN altera papéis")
		return
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Email != nil {
		existing.Email = *req.Email
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.Role != nil {
		existing.Role = auth.Role(*req.Role)
	}
	if req.CompanyID != nil && role.IsAdmin() {
		existing.CompanyID = req.CompanyID
	}
	existing.UpdatedBy = auth.ActorFromContext(r.Context())

	if err := h.Repository.Atualizar(h.DB, existing); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar usuário")
		return
	}
	h.Audit.Record(r, auditlog.ActionUpdate, "users", existing.ID, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// podeGerir cobre as escritas destrutivas: mesmo escopo de podeVer, e
// só ADMIN mexe em outro ADMIN.
func (h *Handler) podeGerir(r *http.Request, alvo *User) bool {
	if !h.podeVer(r, alvo) {
		return false
	}
	role := auth.RoleFromContext(r.Context())
	return role.IsAdmin() || alvo.Role != auth.RoleAdmin
}

// Deletar trata DELETE /users/{id} (soft delete).
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existing, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "usuário não encontrado")
		return
	}
	if !h.podeGerir(r, existing) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}

	actor := auth.ActorFromContext(r.Context())
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(existing).Update("deleted_by", actor).Error; err != nil {
			return err
		}
		return h.Repository.Deletar(tx, id)
	})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao remover usuário")
		return
	}
	h.Audit.Record(r, auditlog.ActionDelete, "users", id, existing, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setAtivo(w http.ResponseWriter, r *http.Request, ativo bool) {
	id := mux.Vars(r)["id"]
	existing, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "usuário não encontrado")
		return
	}
	if !h.podeGerir(r, existing) {
		httpx.Error(w, http.StatusForbidden, "acesso negado")
		return
	}
	before := *existing

	updates := map[string]any{
		"is_active":  ativo,
		"updated_by": auth.ActorFromContext(r.Context()),
	}
	if err := h.DB.Model(existing).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao atualizar usuário")
		return
	}
	existing.IsActive = ativo
	h.Audit.Record(r, auditlog.ActionUpdate, "users", id, before, existing)
	httpx.JSON(w, http.StatusOK, existing)
}

// Ativar trata PATCH /users/{id}/activate.
func (h *Handler) Ativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, true)
}

// Desativar trata PATCH /users/{id}/deactivate.
func (h *Handler) Desativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, false)
}

// AlterarSenha trata POST /users/change-password do usuário autenticado.
func (h *Handler) AlterarSenha(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	u, err := h.Repository.BuscarPorID(h.DB, auth.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "não autenticado")
		return
	}
	if !utils.VerificarSenha(u.Senha, req.OldPassword) {
		httpx.Error(w, http.StatusUnauthorized, "senha atual incorreta")
		return
	}

	hash, err := utils.HashSenha(req.NewPassword)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao processar senha")
		return
	}
	updates := map[string]any{
		"password_hash":           hash,
		"precisa_redefinir_senha": false,
	}
	if err := h.DB.Model(u).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao salvar senha")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func gerarCodigo() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// EsqueciSenha trata POST /auth/forgot-password. Sempre responde 204 para
// não revelar se o e-mail existe; o código vai pelo canal de entrega
// (aqui, o log em nível debug no ambiente de desenvolvimento).
func (h *Handler) EsqueciSenha(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	u, err := h.Repository.BuscarPorEmail(h.DB, req.Email)
	if err == nil {
		code, genErr := gerarCodigo()
		if genErr == nil {
			rc := PasswordResetCode{
				UserID:    u.ID,
				Hash:      hashCode(code),
				ExpiresAt: time.Now().Add(resetCodeTTL),
			}
			if err := h.DB.Create(&rc).Error; err == nil {
				zap.L().Debug("código de redefinição emitido",
					zap.String("email", req.Email),
					zap.String("code", code),
				)
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// RedefinirSenha trata POST /auth/reset-password consumindo o código de
// uso único.
func (h *Handler) RedefinirSenha(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	u, err := h.Repository.BuscarPorEmail(h.DB, req.Email)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "código inválido ou expirado")
		return
	}

	var rc PasswordResetCode
	err = h.DB.Where("user_id = ? AND hash = ? AND used_at IS NULL AND expires_at > ?",
		u.ID, hashCode(req.Code), time.Now()).First(&rc).Error
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "código inválido ou expirado")
		return
	}

	hash, err := utils.HashSenha(req.NewPassword)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao processar senha")
		return
	}

	now := time.Now()
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&rc).Update("used_at", &now).Error; err != nil {
			return err
		}
		return tx.Model(u).Update("password_hash", hash).Error
	})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "erro ao salvar senha")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me trata GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repository.BuscarPorID(h.DB, auth.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "não autenticado")
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}
