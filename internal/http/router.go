package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todo-llm/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// Solo /health, /auth/* y el handshake de /ws quedan fuera del JWT.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	chatH *ChatHandler,
	wsH *WSHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.POST("/sign-up", userH.SignUp)
	auth.POST("/sign-in", userH.SignIn)
	auth.POST("/refresh", userH.Refresh)

	// El handler de ws autentica por query param durante el handshake.
	r.GET("/ws", wsH.Serve)

	authed := r.Group("/", JWTAuthMiddleware(jwtSvc))
	authed.POST("/chat", chatH.PostChat)
	authed.GET("/conversations", chatH.ListConversations)
	authed.GET("/conversations/:id/messages", chatH.ListMessages)

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
		if c.IsWebsocket() {
			c.Next()
			return
		}
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
