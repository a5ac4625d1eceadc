package ws

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Tipos de evento que se emiten durante un turno de chat.
const (
	EventConnectionEstablished = "connection_established"
	EventAgentThinking         = "agent_thinking"
	EventToolStarting          = "tool_starting"
	EventToolComplete          = "tool_complete"
	EventToolError             = "tool_error"
	EventAgentDone             = "agent_done"
)

// Event es el payload JSON que reciben los clientes conectados.
type Event struct {
	Type           string    `json:"event_type"`
	Tool           string    `json:"tool,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	At             time.Time `json:"at"`
}

type userEvent struct {
	userID  string
	payload []byte
}

// Hub mantiene las conexiones WebSocket activas y hace fan-out de eventos por
// usuario. Un usuario puede tener varias conexiones (varias pestañas).
type Hub struct {
	logger *zap.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan userEvent
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan userEvent, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.events:
			for client := range h.clients {
				if client.userID != event.userID {
					continue
				}
				select {
				case client.send <- event.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish encola un evento para todas las conexiones del usuario. La entrega
// es best-effort: si el hub está saturado el evento se descarta.
func (h *Hub) Publish(userID string, event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case h.events <- userEvent{userID: userID, payload: payload}:
	default:
		if h.logger != nil {
			h.logger.Warn("event dropped", zap.String("user_id", userID), zap.String("event_type", event.Type))
		}
	}
}

// Implementación de service.TurnEvents.

func (h *Hub) AgentThinking(userID, conversationID string) {
	h.Publish(userID, Event{Type: EventAgentThinking, ConversationID: conversationID})
}

func (h *Hub) ToolStarting(userID, tool string) {
	h.Publish(userID, Event{Type: EventToolStarting, Tool: tool})
}

func (h *Hub) ToolFinished(userID, tool string, success bool) {
	eventType := EventToolComplete
	if !success {
		eventType = EventToolError
	}
	h.Publish(userID, Event{Type: eventType, Tool: tool})
}

func (h *Hub) AgentDone(userID, conversationID string) {
	h.Publish(userID, Event{Type: EventAgentDone, ConversationID: conversationID})
}
