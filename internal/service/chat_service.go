package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"todo-llm/internal/domain"
	"todo-llm/internal/llm"
	"todo-llm/internal/repository"
)

// ChatService orquesta un turno de chat: resuelve la conversación, persiste
// el mensaje entrante, carga historial, corre el agente con sus herramientas
// y persiste la respuesta. Ningún estado sobrevive entre turnos: todo se
// recarga de storage, lo que permite escalar horizontalmente y reiniciar sin
// pérdida.
type ChatService struct {
	logger        *zap.Logger
	llmClient     llm.LLMClient
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	contextSvc    ContextService
	tools         *TaskTools
	quota         TurnQuota
	events        TurnEvents
}

// TurnEvents publica el progreso de un turno a los clientes conectados.
// La entrega es best-effort: nunca afecta el resultado del turno.
type TurnEvents interface {
	AgentThinking(userID, conversationID string)
	ToolStarting(userID, tool string)
	ToolFinished(userID, tool string, success bool)
	AgentDone(userID, conversationID string)
}

func NewChatService(
	logger *zap.Logger,
	llmClient llm.LLMClient,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	contextSvc ContextService,
	tools *TaskTools,
	quota TurnQuota,
	events TurnEvents,
) *ChatService {
	return &ChatService{
		logger:        logger,
		llmClient:     llmClient,
		conversations: conversations,
		messages:      messages,
		contextSvc:    contextSvc,
		tools:         tools,
		quota:         quota,
		events:        events,
	}
}

var (
	ErrEmptyMessage         = errors.New("message empty")
	ErrMessageTooLong       = errors.New("message too long")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrQuotaExceeded        = errors.New("daily turn quota exceeded")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)

// maxToolRounds acota el ciclo herramienta→modelo de un turno.
const maxToolRounds = 8

const agentInstructions = `You are a helpful task management assistant.
Users manage their personal todo list through natural language. You can create,
list, update, complete and delete tasks using the provided tools.

Guidelines:
- Confirm actions clearly after executing them.
- Ask for clarification when a request is ambiguous (e.g. which task to update).
- If a tool reports "task not found", tell the user and offer to list their tasks.
- When the task list is empty, say so warmly and offer to create the first task.
- Keep answers concise and friendly; use short lists when enumerating tasks.
- Never invent task identifiers; obtain them from list_tasks.`

// Turn procesa un mensaje del usuario y devuelve el mensaje del asistente.
// El mensaje entrante queda persistido aunque el backend LLM falle después.
func (s *ChatService) Turn(ctx context.Context, userID, conversationID, content string) (domain.Message, error) {
	if utf8.RuneCountInString(content) > domain.MessageContentMaxLen {
		return domain.Message{}, ErrMessageTooLong
	}
	if content == "" {
		return domain.Message{}, ErrEmptyMessage
	}

	conversation, err := s.resolveConversation(ctx, userID, conversationID)
	if err != nil {
		return domain.Message{}, err
	}

	userMessage := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		UserID:         userID,
		Role:           domain.RoleUser,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, userMessage); err != nil {
		return domain.Message{}, fmt.Errorf("persist user message: %w", err)
	}
	if err := s.conversations.Touch(ctx, conversation.ID, userMessage.CreatedAt); err != nil {
		s.logger.Warn("touch conversation failed", zap.Error(err), zap.String("conversation_id", conversation.ID))
	}

	if s.quota != nil && !s.quota.Allow(userID) {
		return domain.Message{}, ErrQuotaExceeded
	}

	history, err := s.contextSvc.History(ctx, conversation.ID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("load history: %w", err)
	}

	reply, err := s.runAgent(ctx, userID, conversation.ID, history)
	if err != nil {
		return domain.Message{}, err
	}

	assistantMessage := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		UserID:         userID,
		Role:           domain.RoleAssistant,
		Content:        reply,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, assistantMessage); err != nil {
		return domain.Message{}, fmt.Errorf("persist assistant message: %w", err)
	}
	if err := s.conversations.Touch(ctx, conversation.ID, assistantMessage.CreatedAt); err != nil {
		s.logger.Warn("touch conversation failed", zap.Error(err), zap.String("conversation_id", conversation.ID))
	}

	if s.events != nil {
		s.events.AgentDone(userID, conversation.ID)
	}
	return assistantMessage, nil
}

// resolveConversation carga una conversación del llamador o crea una nueva.
// Una conversación ajena se reporta como inexistente, nunca como prohibida.
func (s *ChatService) resolveConversation(ctx context.Context, userID, conversationID string) (domain.Conversation, error) {
	if conversationID != "" {
		conversation, err := s.conversations.GetByIDForUser(ctx, conversationID, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Conversation{}, ErrConversationNotFound
			}
			return domain.Conversation{}, fmt.Errorf("get conversation: %w", err)
		}
		return conversation, nil
	}

	now := time.Now().UTC()
	conversation := domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, nil
}

// runAgent ejecuta el ciclo modelo→herramientas hasta obtener una respuesta
// final en lenguaje natural. Los fallos de herramienta vuelven al modelo como
// resultado tool, no abortan el turno.
func (s *ChatService) runAgent(ctx context.Context, userID, conversationID string, history []llm.Message) (string, error) {
	exchange := make([]llm.Message, 0, len(history)+1)
	exchange = append(exchange, llm.Message{Role: "system", Content: agentInstructions})
	exchange = append(exchange, history...)

	tools := ToolDefinitions()

	if s.events != nil {
		s.events.AgentThinking(userID, conversationID)
	}

	for round := 0; round < maxToolRounds; round++ {
		response, err := s.llmClient.Complete(ctx, exchange, tools)
		if err != nil {
			s.logger.Error("llm complete failed", zap.Error(err), zap.String("user_id", userID))
			return "", fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
		}

		if len(response.ToolCalls) == 0 {
			return response.Content, nil
		}

		exchange = append(exchange, response)
		for _, call := range response.ToolCalls {
			if s.events != nil {
				s.events.ToolStarting(userID, call.Function.Name)
			}
			result, ok := s.tools.Dispatch(ctx, userID, call.Function.Name, call.Function.Arguments)
			if s.events != nil {
				s.events.ToolFinished(userID, call.Function.Name, ok)
			}
			exchange = append(exchange, llm.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	s.logger.Error("agent exceeded tool rounds", zap.String("user_id", userID), zap.String("conversation_id", conversationID))
	return "", ErrAssistantUnavailable
}
