package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"todo-llm/internal/llm"
	"todo-llm/internal/repository"
)

// ContextService define contrato para recuperar el historial conversacional
// en la forma role/content que espera el agente.
type ContextService interface {
	History(ctx context.Context, conversationID string) ([]llm.Message, error)
}

// TokenWindowContextService carga el historial completo y lo recorta a una
// ventana de los mensajes más recientes acotada por tokens, manteniendo el
// orden de creación.
type TokenWindowContextService struct {
	messageRepo repository.MessageRepository
	tokenBudget int
	encoding    *tiktoken.Tiktoken
}

const defaultHistoryTokenBudget = 6000

func NewTokenWindowContextService(messageRepo repository.MessageRepository, tokenBudget int) *TokenWindowContextService {
	if tokenBudget <= 0 {
		tokenBudget = defaultHistoryTokenBudget
	}
	// cl100k_base cubre los modelos de chat que usamos; si el encoding no
	// carga caemos a una aproximación por longitud.
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		encoding = nil
	}
	return &TokenWindowContextService{
		messageRepo: messageRepo,
		tokenBudget: tokenBudget,
		encoding:    encoding,
	}
}

func (s *TokenWindowContextService) History(ctx context.Context, conversationID string) ([]llm.Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, nil
	}

	messages, err := s.messageRepo.ListByConversationID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(messages) == 0 {
		return nil, nil
	}

	// Recorremos de atrás hacia adelante quedándonos con los mensajes más
	// recientes que quepan en el presupuesto. El mensaje más nuevo entra
	// siempre, aunque por sí solo exceda la ventana.
	start := len(messages)
	used := 0
	for i := len(messages) - 1; i >= 0; i-- {
		cost := s.countTokens(messages[i].Content)
		if used+cost > s.tokenBudget && start < len(messages) {
			break
		}
		used += cost
		start = i
	}

	out := make([]llm.Message, 0, len(messages)-start)
	for _, m := range messages[start:] {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

func (s *TokenWindowContextService) countTokens(text string) int {
	if s.encoding != nil {
		return len(s.encoding.Encode(text, nil, nil))
	}
	// Aproximación burda: ~4 caracteres por token.
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}
