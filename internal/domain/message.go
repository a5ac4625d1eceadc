package domain

import "time"

const (
	// Roles válidos para un mensaje persistido. El intercambio con las
	// herramientas nunca se guarda como mensaje.
	RoleUser      = "user"
	RoleAssistant = "assistant"

	MessageContentMaxLen = 10000
)

// Message es inmutable una vez escrito; solo se borra en cascada con su conversación.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
