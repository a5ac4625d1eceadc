package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"todo-llm/internal/domain"
)

// TaskRepository define el contrato de persistencia para tareas.
// Toda operación sobre una tarea existente exige el user_id del dueño:
// un id ajeno se comporta exactamente igual que un id inexistente.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) error
	GetByIDForUser(ctx context.Context, id, userID string) (domain.Task, error)
	ListByUserID(ctx context.Context, userID string, completed *bool) ([]domain.Task, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	SetCompleted(ctx context.Context, id, userID string, completed bool) (domain.Task, error)
	Delete(ctx context.Context, id, userID string) error
}

type PgTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPgTaskRepository(pool *pgxpool.Pool) *PgTaskRepository {
	return &PgTaskRepository{pool: pool}
}

func (r *PgTaskRepository) Create(ctx context.Context, task domain.Task) error {
	const query = `
		INSERT INTO tasks (id, user_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var description interface{}
	if task.Description != "" {
		description = task.Description
	}
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		description,
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

func (r *PgTaskRepository) GetByIDForUser(ctx context.Context, id, userID string) (domain.Task, error) {
	const query = `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	return scanTask(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *PgTaskRepository) ListByUserID(ctx context.Context, userID string, completed *bool) ([]domain.Task, error) {
	const query = `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE user_id = $1 AND ($2::boolean IS NULL OR completed = $2)
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, completed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *PgTaskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	const query = `
		UPDATE tasks
		SET title = $3, description = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, description, completed, created_at, updated_at
	`
	var description interface{}
	if task.Description != "" {
		description = task.Description
	}
	return scanTask(r.pool.QueryRow(ctx, query, task.ID, task.UserID, task.Title, description, task.UpdatedAt))
}

func (r *PgTaskRepository) SetCompleted(ctx context.Context, id, userID string, completed bool) (domain.Task, error) {
	const query = `
		UPDATE tasks
		SET completed = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, description, completed, created_at, updated_at
	`
	return scanTask(r.pool.QueryRow(ctx, query, id, userID, completed))
}

func (r *PgTaskRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var task domain.Task
	var description *string
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	if description != nil {
		task.Description = *description
	}
	return task, nil
}
