package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"todo-llm/internal/service"
	"todo-llm/internal/ws"
)

// WSHandler expone el stream de eventos de progreso por WebSocket.
type WSHandler struct {
	logger   *zap.Logger
	hub      *ws.Hub
	jwtServ  *service.JWTService
	upgrader websocket.Upgrader
}

func NewWSHandler(logger *zap.Logger, hub *ws.Hub, jwtServ *service.JWTService) *WSHandler {
	return &WSHandler{
		logger:  logger,
		hub:     hub,
		jwtServ: jwtServ,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Serve maneja GET /ws?token=<access_token>. Los navegadores no pueden mandar
// el header Authorization en el handshake, así que el token viaja en la query.
func (h *WSHandler) Serve(c *gin.Context) {
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}

	claims, err := h.jwtServ.ParseAccessToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	ws.NewClient(h.hub, conn, claims.UserID)
}
