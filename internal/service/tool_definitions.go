package service

import (
	"encoding/json"

	"todo-llm/internal/llm"
)

// ToolDefinitions devuelve el set fijo de herramientas que el agente puede
// invocar. Cualquier nombre fuera de este set cae en el default del Dispatch.
func ToolDefinitions() []llm.Tool {
	return []llm.Tool{
		functionTool(ToolCreateTask,
			"Create a new task in the user's todo list. Use when the user wants to add or remember something to do.",
			`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "description": "Short task title, 1-255 characters"},
					"description": {"type": "string", "description": "Optional longer description, up to 2000 characters"}
				},
				"required": ["title"]
			}`),
		functionTool(ToolListTasks,
			"List the user's tasks in creation order, optionally filtered by completion status.",
			`{
				"type": "object",
				"properties": {
					"completed": {"type": "boolean", "description": "If set, only tasks with this completion status"}
				}
			}`),
		functionTool(ToolUpdateTask,
			"Update the title and/or description of an existing task.",
			`{
				"type": "object",
				"properties": {
					"task_id": {"type": "string", "description": "Identifier of the task to update"},
					"title": {"type": "string"},
					"description": {"type": "string"}
				},
				"required": ["task_id"]
			}`),
		functionTool(ToolCompleteTask,
			"Mark a task as completed or not completed.",
			`{
				"type": "object",
				"properties": {
					"task_id": {"type": "string", "description": "Identifier of the task"},
					"completed": {"type": "boolean", "description": "Desired completion state, defaults to true"}
				},
				"required": ["task_id"]
			}`),
		functionTool(ToolDeleteTask,
			"Delete a task permanently.",
			`{
				"type": "object",
				"properties": {
					"task_id": {"type": "string", "description": "Identifier of the task to delete"}
				},
				"required": ["task_id"]
			}`),
	}
}

func functionTool(name, description, params string) llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.FunctionDef{
			Name:        name,
			Description: description,
			Parameters:  json.RawMessage(params),
		},
	}
}
