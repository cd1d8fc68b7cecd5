package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// LoginRequest holds the admin credentials
// @Description Admin login body
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100" example:"admin"`
	Password string `json:"password" binding:"required,max=200" example:"secret"`
}

// CredentialVerifier checks a username and password pair
type CredentialVerifier interface {
	Verify(username, password string) error
}

// TokenIssuer signs admin tokens
type TokenIssuer interface {
	GenerateToken(username string) (*auth.Token, error)
}

// AuthHandler handles admin login and logout
type AuthHandler struct {
	BaseHandler
	credentials CredentialVerifier
	tokens      TokenIssuer
	blacklist   auth.TokenBlacklist
}

// NewAuthHandler creates a new auth handler. blacklist may be nil, in which
// case logout only tells the client to drop its token.
func NewAuthHandler(credentials CredentialVerifier, tokens TokenIssuer, blacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		tokens:      tokens,
		blacklist:   blacklist,
	}
}

// Login godoc
// @Summary      Admin login
// @Description  Exchange the configured admin credentials for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=auth.Token}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	log := logger.FromContext(c.Request.Context())
	if err := h.credentials.Verify(req.Username, req.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Error("Credential check failed", zap.Error(err))
		}
		log.Warn("Admin login rejected", zap.String("username", req.Username), zap.String("ip", c.ClientIP()))
		h.HandleError(c, shared.NewDomainError(shared.CodeUnauthorized, "Invalid username or password"))
		return
	}

	token, err := h.tokens.GenerateToken(req.Username)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	log.Info("Admin logged in", zap.String("username", req.Username))
	h.Success(c, token)
}

// Logout godoc
// @Summary      Admin logout
// @Description  Revoke the current bearer token until it expires
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetAdminClaims(c)
	if claims == nil {
		h.HandleError(c, shared.NewDomainError(shared.CodeUnauthorized, "Authentication required"))
		return
	}

	if h.blacklist != nil {
		if err := h.blacklist.Revoke(c.Request.Context(), claims.ID, claims.RemainingTTL()); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.Success(c, MessageData{Message: "Logged out"})
}
