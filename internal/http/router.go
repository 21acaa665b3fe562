package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-agent/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// Si jwtServ no tiene secreto, las rutas de decisiones quedan abiertas.
func NewRouter(
	logger *zap.Logger,
	decisionH *DecisionHandler,
	authH *AuthHandler,
	jwtServ *service.JWTService,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.POST("/token", authH.Token)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/revoke", authH.Revoke)

	// los subgrupos copian los middlewares del padre al crearse
	api := r.Group("")
	if jwtServ.Enabled() {
		api.Use(JWTAuthMiddleware(jwtServ))
	} else {
		logger.Warn("JWT_SECRET not set, decision endpoints are unauthenticated")
	}
	reader := api.Group("")
	writer := api.Group("")
	if jwtServ.Enabled() {
		reader.Use(RequireScope(service.ScopeDecisionsRead))
		writer.Use(RequireScope(service.ScopeDecisionsWrite))
	}

	writer.POST("/decisions", decisionH.Decide)
	reader.GET("/decisions", decisionH.ListRecent)
	reader.GET("/decisions/history", decisionH.History)
	reader.GET("/decisions/insights", decisionH.Insights)
	reader.GET("/decisions/:id", decisionH.Get)
	reader.GET("/decisions/:id/similar", decisionH.Similar)

	// alternatives no persiste nada, alcanza con lectura
	reader.POST("/alternatives", decisionH.Alternatives)
	reader.GET("/model", decisionH.Model)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
