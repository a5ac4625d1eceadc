package domain

import "time"

// Task es una entrada del todo list, siempre ligada a su dueño.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	TaskTitleMaxLen       = 255
	TaskDescriptionMaxLen = 2000
)
