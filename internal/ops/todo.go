package ops

import (
	"context"
	"strings"
	"time"

	"tally/internal/errors"
	"tally/internal/ledger"
)

// SaveTodoInput contains parameters for the SaveTodo operation.
// An empty ID creates a new todo; a set ID edits an existing one.
type SaveTodoInput struct {
	ID         string
	CategoryID string
	Title      string

	LinkedCategoryID string
	LinkedActivityID string
	DefaultScopeIDs  []string
	Note             string
	CoverImage       string

	IsProgress  bool
	TotalAmount int
	UnitAmount  int
}

// SaveTodoOutput contains the result of the SaveTodo operation.
type SaveTodoOutput struct {
	Todo    ledger.TodoItem `json:"todo"`
	Created bool            `json:"created"`
}

// SaveTodo creates or edits a todo. Completion state and accumulated
// progress units survive an edit; they are owned by ToggleTodo and the
// progress accountant, not by this operation.
func SaveTodo(ctx context.Context, env *Env, input SaveTodoInput) (*SaveTodoOutput, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	if input.IsProgress && input.TotalAmount <= 0 {
		return nil, errors.NewInvalidRequest("progress todos need a positive total_amount")
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	t := ledger.TodoItem{
		ID:               input.ID,
		CategoryID:       input.CategoryID,
		Title:            input.Title,
		LinkedCategoryID: input.LinkedCategoryID,
		LinkedActivityID: input.LinkedActivityID,
		DefaultScopeIDs:  input.DefaultScopeIDs,
		Note:             input.Note,
		CoverImage:       input.CoverImage,
		IsProgress:       input.IsProgress,
		TotalAmount:      input.TotalAmount,
		UnitAmount:       input.UnitAmount,
	}

	created := input.ID == ""
	if created {
		t.ID = ledger.NewID()
	} else {
		existing, ok := env.Store.Todo(input.ID)
		if !ok {
			return nil, errors.NewNotFound("todo", input.ID)
		}
		t.IsCompleted = existing.IsCompleted
		t.CompletedAt = existing.CompletedAt
		t.CompletedUnits = existing.CompletedUnits
	}

	env.Store.UpsertTodo(t)

	if err := env.persist(); err != nil {
		return nil, err
	}

	stored, _ := env.Store.Todo(t.ID)
	return &SaveTodoOutput{Todo: stored, Created: created}, nil
}

// ToggleTodoInput contains parameters for the ToggleTodo operation.
type ToggleTodoInput struct {
	ID string
}

// ToggleTodoOutput contains the result of the ToggleTodo operation.
type ToggleTodoOutput struct {
	Todo ledger.TodoItem `json:"todo"`
}

// ToggleTodo flips a todo's completion state, stamping CompletedAt on
// completion and clearing it on reopen. The completion timestamp is what
// task-count goals evaluate against.
func ToggleTodo(ctx context.Context, env *Env, input ToggleTodoInput) (*ToggleTodoOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	t, ok := env.Store.Todo(input.ID)
	if !ok {
		return nil, errors.NewNotFound("todo", input.ID)
	}

	t.IsCompleted = !t.IsCompleted
	if t.IsCompleted {
		t.CompletedAt = env.Now().Format(time.RFC3339)
	} else {
		t.CompletedAt = ""
	}
	env.Store.UpsertTodo(t)

	if err := env.persist(); err != nil {
		return nil, err
	}

	stored, _ := env.Store.Todo(t.ID)
	return &ToggleTodoOutput{Todo: stored}, nil
}

// DeleteTodoInput contains parameters for the DeleteTodo operation.
type DeleteTodoInput struct {
	ID string
}

// DeleteTodoOutput contains the result of the DeleteTodo operation.
type DeleteTodoOutput struct {
	ID string `json:"id"`

	// DetachedLogs is the number of logs whose link to this todo was
	// cleared. The logs themselves stay in the ledger.
	DetachedLogs int `json:"detached_logs"`
}

// DeleteTodo removes a todo. Logs that referenced it are detached, not
// deleted: recorded time is history and survives the todo.
func DeleteTodo(ctx context.Context, env *Env, input DeleteTodoInput) (*DeleteTodoOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	detached, removed := env.Store.RemoveTodo(input.ID)
	if !removed {
		return nil, errors.NewNotFound("todo", input.ID)
	}

	if err := env.persist(); err != nil {
		return nil, err
	}

	return &DeleteTodoOutput{ID: input.ID, DetachedLogs: detached}, nil
}

// NudgeTodoProgressInput contains parameters for the NudgeTodoProgress
// operation.
type NudgeTodoProgressInput struct {
	ID    string
	Delta int
}

// NudgeTodoProgressOutput contains the result of the NudgeTodoProgress
// operation.
type NudgeTodoProgressOutput struct {
	Todo ledger.TodoItem `json:"todo"`
}

// NudgeTodoProgress applies a manual adjustment to a progress todo's
// completed units. The counter is clamped at zero; over-subtraction is
// not an error.
func NudgeTodoProgress(ctx context.Context, env *Env, input NudgeTodoProgressInput) (*NudgeTodoProgressOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	t, ok := env.Store.Todo(input.ID)
	if !ok {
		return nil, errors.NewNotFound("todo", input.ID)
	}
	if !t.IsProgress {
		return nil, errors.NewInvalidRequest("todo does not track progress units")
	}

	adjusted, _ := env.Store.AdjustTodoProgress(input.ID, input.Delta)

	if err := env.persist(); err != nil {
		return nil, err
	}

	return &NudgeTodoProgressOutput{Todo: adjusted}, nil
}

// ListTodosInput contains optional filters for the ListTodos operation.
type ListTodosInput struct {
	CategoryID string
	// Open filters to incomplete todos when true.
	Open bool
}

// ListTodosOutput contains the result of the ListTodos operation.
type ListTodosOutput struct {
	Todos []ledger.TodoItem `json:"todos"`
	Count int               `json:"count"`
}

// ListTodos returns todos in insertion order, optionally filtered.
func ListTodos(ctx context.Context, env *Env, input ListTodosInput) (*ListTodosOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	out := &ListTodosOutput{Todos: []ledger.TodoItem{}}
	for _, t := range env.Store.Todos() {
		if input.CategoryID != "" && t.CategoryID != input.CategoryID {
			continue
		}
		if input.Open && t.IsCompleted {
			continue
		}
		out.Todos = append(out.Todos, t)
	}
	out.Count = len(out.Todos)
	return out, nil
}
