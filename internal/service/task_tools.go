package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"todo-llm/internal/domain"
	"todo-llm/internal/repository"
)

// TaskTools es la capa de herramientas CRUD expuesta al agente. Cada operación
// recibe el user_id del llamador autenticado como parámetro obligatorio; el
// agente nunca puede elegir sobre qué usuario opera.
type TaskTools struct {
	logger *zap.Logger
	tasks  repository.TaskRepository
}

func NewTaskTools(logger *zap.Logger, tasks repository.TaskRepository) *TaskTools {
	return &TaskTools{
		logger: logger,
		tasks:  tasks,
	}
}

// ToolResult es el resultado estructurado que ve el agente: nunca una
// excepción opaca, siempre success/error explícito.
type ToolResult struct {
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Task    *domain.Task  `json:"task,omitempty"`
	Tasks   []domain.Task `json:"tasks,omitempty"`
	Deleted bool          `json:"deleted,omitempty"`
}

const (
	ToolCreateTask   = "create_task"
	ToolListTasks    = "list_tasks"
	ToolUpdateTask   = "update_task"
	ToolCompleteTask = "complete_task"
	ToolDeleteTask   = "delete_task"
)

func failure(msg string) ToolResult {
	return ToolResult{Success: false, Error: msg}
}

func (t *TaskTools) Create(ctx context.Context, userID, title, description string) ToolResult {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || len(title) > domain.TaskTitleMaxLen {
		return failure("title must be between 1 and 255 characters")
	}
	if len(description) > domain.TaskDescriptionMaxLen {
		return failure("description must be at most 2000 characters")
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.tasks.Create(ctx, task); err != nil {
		t.logError(ToolCreateTask, userID, err)
		return failure("could not create task")
	}
	return ToolResult{Success: true, Task: &task}
}

func (t *TaskTools) List(ctx context.Context, userID string, completed *bool) ToolResult {
	tasks, err := t.tasks.ListByUserID(ctx, userID, completed)
	if err != nil {
		t.logError(ToolListTasks, userID, err)
		return failure("could not list tasks")
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return ToolResult{Success: true, Tasks: tasks}
}

func (t *TaskTools) Update(ctx context.Context, userID, taskID string, title, description *string) ToolResult {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return failure("task_id is required")
	}

	task, err := t.tasks.GetByIDForUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return failure("task not found")
		}
		t.logError(ToolUpdateTask, userID, err)
		return failure("could not update task")
	}

	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" || len(trimmed) > domain.TaskTitleMaxLen {
			return failure("title must be between 1 and 255 characters")
		}
		task.Title = trimmed
	}
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if len(trimmed) > domain.TaskDescriptionMaxLen {
			return failure("description must be at most 2000 characters")
		}
		task.Description = trimmed
	}
	task.UpdatedAt = time.Now().UTC()

	updated, err := t.tasks.Update(ctx, task)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return failure("task not found")
		}
		t.logError(ToolUpdateTask, userID, err)
		return failure("could not update task")
	}
	return ToolResult{Success: true, Task: &updated}
}

func (t *TaskTools) Complete(ctx context.Context, userID, taskID string, completed bool) ToolResult {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return failure("task_id is required")
	}
	task, err := t.tasks.SetCompleted(ctx, taskID, userID, completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return failure("task not found")
		}
		t.logError(ToolCompleteTask, userID, err)
		return failure("could not update task")
	}
	return ToolResult{Success: true, Task: &task}
}

func (t *TaskTools) Delete(ctx context.Context, userID, taskID string) ToolResult {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return failure("task_id is required")
	}
	if err := t.tasks.Delete(ctx, taskID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return failure("task not found")
		}
		t.logError(ToolDeleteTask, userID, err)
		return failure("could not delete task")
	}
	return ToolResult{Success: true, Deleted: true}
}

type createTaskArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type listTasksArgs struct {
	Completed *bool `json:"completed"`
}

type updateTaskArgs struct {
	TaskID      string  `json:"task_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type completeTaskArgs struct {
	TaskID    string `json:"task_id"`
	Completed *bool  `json:"completed"`
}

type deleteTaskArgs struct {
	TaskID string `json:"task_id"`
}

// Dispatch resuelve una invocación del agente contra las cinco herramientas
// fijas. El switch es cerrado a propósito: un nombre inventado por el modelo
// no puede alcanzar código arbitrario ni saltarse la inyección del userID.
// El payload siempre es JSON apto para devolver al modelo como mensaje tool;
// el bool indica si la operación tuvo éxito.
func (t *TaskTools) Dispatch(ctx context.Context, userID, name, argsJSON string) (string, bool) {
	var result ToolResult

	switch name {
	case ToolCreateTask:
		var args createTaskArgs
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			result = failure("invalid arguments")
			break
		}
		result = t.Create(ctx, userID, args.Title, args.Description)
	case ToolListTasks:
		var args listTasksArgs
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			result = failure("invalid arguments")
			break
		}
		result = t.List(ctx, userID, args.Completed)
	case ToolUpdateTask:
		var args updateTaskArgs
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			result = failure("invalid arguments")
			break
		}
		result = t.Update(ctx, userID, args.TaskID, args.Title, args.Description)
	case ToolCompleteTask:
		var args completeTaskArgs
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			result = failure("invalid arguments")
			break
		}
		completed := true
		if args.Completed != nil {
			completed = *args.Completed
		}
		result = t.Complete(ctx, userID, args.TaskID, completed)
	case ToolDeleteTask:
		var args deleteTaskArgs
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			result = failure("invalid arguments")
			break
		}
		result = t.Delete(ctx, userID, args.TaskID)
	default:
		result = failure("unknown tool: " + name)
	}

	t.audit(name, userID, argsJSON, result)

	out, err := json.Marshal(result)
	if err != nil {
		return `{"success":false,"error":"internal error"}`, false
	}
	return string(out), result.Success
}

// audit registra cada invocación (operación, llamador, argumentos) sin volcar
// contenido de mensajes de la conversación.
func (t *TaskTools) audit(name, userID, argsJSON string, result ToolResult) {
	if t.logger == nil {
		return
	}
	t.logger.Info("tool invoked",
		zap.String("tool", name),
		zap.String("user_id", userID),
		zap.String("args", argsJSON),
		zap.Bool("success", result.Success),
		zap.String("tool_error", result.Error),
	)
}

func (t *TaskTools) logError(name, userID string, err error) {
	if t.logger == nil {
		return
	}
	t.logger.Error("tool storage failure",
		zap.String("tool", name),
		zap.String("user_id", userID),
		zap.Error(err),
	)
}
