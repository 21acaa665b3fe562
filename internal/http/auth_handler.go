package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-agent/internal/service"
)

// AuthHandler emite tokens para clientes de la API.
type AuthHandler struct {
	logger  *zap.Logger
	clients *service.ClientAuthenticator
	jwtServ *service.JWTService
	limiter service.RateLimiter
}

// NewAuthHandler crea el handler; limiter nil no limita intentos.
func NewAuthHandler(logger *zap.Logger, clients *service.ClientAuthenticator, jwtServ *service.JWTService, limiter service.RateLimiter) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		clients: clients,
		jwtServ: jwtServ,
		limiter: limiter,
	}
}

// Token maneja POST /auth/token. scope opcional reduce lo concedido al cliente.
func (h *AuthHandler) Token(c *gin.Context) {
	var req struct {
		ClientID     string `json:"client_id" binding:"required"`
		ClientSecret string `json:"client_secret" binding:"required"`
		Scope        string `json:"scope"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid token request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !h.jwtServ.Enabled() || !h.clients.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth not configured"})
		return
	}
	if h.limiter != nil && !h.limiter.Allow(c.Request.Context(), req.ClientID) {
		h.logger.Warn("token rate limit exceeded", zap.String("client_id", req.ClientID))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
		return
	}

	client, err := h.clients.Authenticate(req.ClientID, req.ClientSecret, req.Scope)
	if err != nil {
		if errors.Is(err, service.ErrInvalidClientCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if errors.Is(err, service.ErrInvalidScope) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_scope"})
			return
		}
		h.logger.Error("authenticate client failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not authenticate"})
		return
	}

	pair, err := h.jwtServ.Issue(c.Request.Context(), client)
	if err != nil {
		h.logger.Error("generate token pair failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Refresh maneja POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
		Scope        string `json:"scope"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.jwtServ.Refresh(c.Request.Context(), req.RefreshToken, req.Scope)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidScope):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_scope"})
		case errors.Is(err, service.ErrJWTInvalid), errors.Is(err, service.ErrJWTExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		default:
			h.logger.Error("refresh token failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not refresh token"})
		}
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Revoke maneja POST /auth/revoke.
func (h *AuthHandler) Revoke(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	err := h.jwtServ.Revoke(c.Request.Context(), req.RefreshToken)
	if errors.Is(err, service.ErrJWTInvalid) || errors.Is(err, service.ErrJWTExpired) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	if err != nil {
		h.logger.Error("revoke token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not revoke token"})
		return
	}
	c.Status(http.StatusNoContent)
}
