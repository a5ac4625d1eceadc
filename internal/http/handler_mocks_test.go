package http

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"todo-llm/internal/domain"
)

// Mocks en memoria para los tests de handlers. Replican el contrato de los
// repositorios reales, incluido el filtrado por dueño.

type memUserRepo struct {
	byEmail map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user domain.User) error {
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

type memConversationRepo struct {
	conversations map[string]domain.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{conversations: make(map[string]domain.Conversation)}
}

func (m *memConversationRepo) Create(_ context.Context, conversation domain.Conversation) error {
	m.conversations[conversation.ID] = conversation
	return nil
}

func (m *memConversationRepo) GetByIDForUser(_ context.Context, id, userID string) (domain.Conversation, error) {
	conversation, ok := m.conversations[id]
	if !ok || conversation.UserID != userID {
		return domain.Conversation{}, pgx.ErrNoRows
	}
	return conversation, nil
}

func (m *memConversationRepo) ListByUserID(_ context.Context, userID string, limit, offset int) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, conversation := range m.conversations {
		if conversation.UserID == userID {
			out = append(out, conversation)
		}
	}
	return out, nil
}

func (m *memConversationRepo) Touch(_ context.Context, id string, at time.Time) error {
	conversation, ok := m.conversations[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if at.After(conversation.UpdatedAt) {
		conversation.UpdatedAt = at
		m.conversations[id] = conversation
	}
	return nil
}

type memMessageRepo struct {
	messages []domain.Message
}

func (m *memMessageRepo) Create(_ context.Context, message domain.Message) error {
	m.messages = append(m.messages, message)
	return nil
}

func (m *memMessageRepo) ListByConversationID(_ context.Context, conversationID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, message := range m.messages {
		if message.ConversationID == conversationID {
			out = append(out, message)
		}
	}
	return out, nil
}

type memTaskRepo struct {
	tasks map[string]domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]domain.Task)}
}

func (m *memTaskRepo) Create(_ context.Context, task domain.Task) error {
	m.tasks[task.ID] = task
	return nil
}

func (m *memTaskRepo) GetByIDForUser(_ context.Context, id, userID string) (domain.Task, error) {
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return domain.Task{}, pgx.ErrNoRows
	}
	return task, nil
}

func (m *memTaskRepo) ListByUserID(_ context.Context, userID string, completed *bool) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range m.tasks {
		if task.UserID != userID {
			continue
		}
		if completed != nil && task.Completed != *completed {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (m *memTaskRepo) Update(_ context.Context, task domain.Task) (domain.Task, error) {
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.Task{}, pgx.ErrNoRows
	}
	existing.Title = task.Title
	existing.Description = task.Description
	existing.UpdatedAt = task.UpdatedAt
	m.tasks[task.ID] = existing
	return existing, nil
}

func (m *memTaskRepo) SetCompleted(_ context.Context, id, userID string, completed bool) (domain.Task, error) {
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return domain.Task{}, pgx.ErrNoRows
	}
	task.Completed = completed
	task.UpdatedAt = time.Now().UTC()
	m.tasks[id] = task
	return task, nil
}

func (m *memTaskRepo) Delete(_ context.Context, id, userID string) error {
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(m.tasks, id)
	return nil
}
