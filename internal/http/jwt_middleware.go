package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travel-agent/internal/service"
)

const clientClaimsKey = "client_claims"

// JWTAuthMiddleware valida el access token del cliente y guarda sus claims en el contexto.
func JWTAuthMiddleware(jwtServ *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !jwtServ.Enabled() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := jwtServ.ParseAccessToken(strings.TrimSpace(header[len("Bearer "):]))
		if errors.Is(err, service.ErrJWTExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(clientClaimsKey, claims)
		c.Next()
	}
}

// GetClientClaims obtiene los claims del cliente autenticado.
func GetClientClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(clientClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// RequireScope corta con 403 si el token no trae scope. Va después de JWTAuthMiddleware.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClientClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if !claims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope", "required_scope": scope})
			return
		}
		c.Next()
	}
}
