package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"todo-llm/internal/domain"
	"todo-llm/internal/repository"
	"todo-llm/internal/service"
)

// ChatHandler mantiene dependencias para el endpoint de chat y las consultas
// de conversaciones.
type ChatHandler struct {
	logger        *zap.Logger
	chatServ      *service.ChatService
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(
	logger *zap.Logger,
	chatServ *service.ChatService,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
) *ChatHandler {
	return &ChatHandler{
		logger:        logger,
		chatServ:      chatServ,
		conversations: conversations,
		messages:      messages,
	}
}

// PostChat maneja POST /chat: un turno completo de conversación.
func (h *ChatHandler) PostChat(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req struct {
		Message        string  `json:"message" binding:"required"`
		ConversationID *string `json:"conversation_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	conversationID := ""
	if req.ConversationID != nil {
		conversationID = *req.ConversationID
	}

	reply, err := h.chatServ.Turn(c.Request.Context(), claims.UserID, conversationID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		case errors.Is(err, service.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message exceeds maximum length of 10000 characters"})
		case errors.Is(err, service.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		case errors.Is(err, service.ErrQuotaExceeded):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily message limit exceeded"})
		case errors.Is(err, service.ErrAssistantUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant temporarily unavailable, please retry"})
		default:
			h.logger.Error("chat turn failed", zap.Error(err), zap.String("user_id", claims.UserID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message_id":      reply.ID,
		"conversation_id": reply.ConversationID,
		"role":            reply.Role,
		"content":         reply.Content,
		"created_at":      reply.CreatedAt,
	})
}

// ListConversations maneja GET /conversations.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conversations, err := h.conversations.ListByUserID(c.Request.Context(), claims.UserID, 50, 0)
	if err != nil {
		h.logger.Error("list conversations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list conversations"})
		return
	}
	if conversations == nil {
		conversations = []domain.Conversation{}
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// ListMessages maneja GET /conversations/:id/messages. Una conversación ajena
// responde 404, nunca 403.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conversationID := c.Param("id")
	conversation, err := h.conversations.GetByIDForUser(c.Request.Context(), conversationID, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		h.logger.Error("get conversation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load conversation"})
		return
	}

	messages, err := h.messages.ListByConversationID(c.Request.Context(), conversation.ID)
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": conversation, "messages": messages})
}
