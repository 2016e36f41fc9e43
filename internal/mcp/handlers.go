package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// SessionStartRequest represents the arguments for session_start.
type SessionStartRequest struct {
	CategoryID   string   `json:"category_id"`
	ActivityID   string   `json:"activity_id"`
	LinkedTodoID string   `json:"linked_todo_id,omitempty"`
	ScopeIDs     []string `json:"scope_ids,omitempty"`
	Title        string   `json:"title,omitempty"`
	Note         string   `json:"note,omitempty"`
}

// SessionStopRequest represents the arguments for session_stop.
type SessionStopRequest struct {
	ID                string  `json:"id"`
	Title             *string `json:"title,omitempty"`
	Note              *string `json:"note,omitempty"`
	FocusScore        *int    `json:"focus_score,omitempty"`
	ProgressIncrement *int    `json:"progress_increment,omitempty"`
}

// IDRequest represents the arguments for tools addressing a single record.
type IDRequest struct {
	ID string `json:"id"`
}

// LogSaveRequest represents the arguments for log_save.
type LogSaveRequest struct {
	ID                string   `json:"id,omitempty"`
	CategoryID        string   `json:"category_id"`
	ActivityID        string   `json:"activity_id"`
	StartTime         int64    `json:"start_time"`
	EndTime           int64    `json:"end_time"`
	Title             string   `json:"title,omitempty"`
	Note              string   `json:"note,omitempty"`
	LinkedTodoID      string   `json:"linked_todo_id,omitempty"`
	ScopeIDs          []string `json:"scope_ids,omitempty"`
	ProgressIncrement int      `json:"progress_increment,omitempty"`
	FocusScore        int      `json:"focus_score,omitempty"`
	Images            []string `json:"images,omitempty"`
}

// LogListRequest represents the arguments for log_list.
type LogListRequest struct {
	Day          string `json:"day,omitempty"`
	ActivityID   string `json:"activity_id,omitempty"`
	LinkedTodoID string `json:"linked_todo_id,omitempty"`
}

// LogPunchRequest represents the arguments for log_punch.
type LogPunchRequest struct {
	CategoryID string `json:"category_id"`
	ActivityID string `json:"activity_id"`
	Title      string `json:"title,omitempty"`
	Note       string `json:"note,omitempty"`
}

// TodoSaveRequest represents the arguments for todo_save.
type TodoSaveRequest struct {
	ID               string   `json:"id,omitempty"`
	CategoryID       string   `json:"category_id,omitempty"`
	Title            string   `json:"title"`
	Note             string   `json:"note,omitempty"`
	LinkedCategoryID string   `json:"linked_category_id,omitempty"`
	LinkedActivityID string   `json:"linked_activity_id,omitempty"`
	DefaultScopeIDs  []string `json:"default_scope_ids,omitempty"`
	CoverImage       string   `json:"cover_image,omitempty"`
	IsProgress       bool     `json:"is_progress,omitempty"`
	TotalAmount      int      `json:"total_amount,omitempty"`
	UnitAmount       int      `json:"unit_amount,omitempty"`
}

// TodoNudgeRequest represents the arguments for todo_nudge.
type TodoNudgeRequest struct {
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

// TodoListRequest represents the arguments for todo_list.
type TodoListRequest struct {
	CategoryID string `json:"category_id,omitempty"`
	Open       bool   `json:"open,omitempty"`
}

// GoalSaveRequest represents the arguments for goal_save.
type GoalSaveRequest struct {
	ID                   string   `json:"id,omitempty"`
	Title                string   `json:"title"`
	ScopeID              string   `json:"scope_id"`
	Metric               string   `json:"metric"`
	TargetValue          float64  `json:"target_value"`
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	FilterActivityIDs    []string `json:"filter_activity_ids,omitempty"`
	FilterTodoCategories []string `json:"filter_todo_categories,omitempty"`
	Motivation           string   `json:"motivation,omitempty"`
	Archived             bool     `json:"archived,omitempty"`
}

// GoalListRequest represents the arguments for goal_list.
type GoalListRequest struct {
	IncludeArchived bool `json:"include_archived,omitempty"`
}

// CategorySaveRequest represents the arguments for category_save.
type CategorySaveRequest struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Icon       string            `json:"icon,omitempty"`
	ThemeColor string            `json:"theme_color,omitempty"`
	Activities []ledger.Activity `json:"activities,omitempty"`
}

// ScopeSaveRequest represents the arguments for scope_save.
type ScopeSaveRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	ThemeColor  string `json:"theme_color,omitempty"`
	Order       int    `json:"order,omitempty"`
	Archived    bool   `json:"archived,omitempty"`
}

// RuleSaveRequest represents the arguments for rule_save.
type RuleSaveRequest struct {
	ID         string `json:"id,omitempty"`
	ActivityID string `json:"activity_id"`
	ScopeID    string `json:"scope_id"`
}

// TodolistSaveRequest represents the arguments for todolist_save.
type TodolistSaveRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// PathRequest represents the arguments for snapshot_export and
// snapshot_import.
type PathRequest struct {
	Path string `json:"path,omitempty"`
}

// JournalExportRequest represents the arguments for journal_export.
type JournalExportRequest struct {
	Day    string `json:"day,omitempty"`
	Format string `json:"format,omitempty"`
	Path   string `json:"path,omitempty"`
}

// SyncDownloadRequest represents the arguments for sync_download.
type SyncDownloadRequest struct {
	Force bool `json:"force,omitempty"`
}

// Handler implementations

// HandleSessionStart handles the session_start tool call.
func (h *Handlers) HandleSessionStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionStartRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.StartSession(ctx, h.env, ops.StartSessionInput{
		CategoryID:   input.CategoryID,
		ActivityID:   input.ActivityID,
		LinkedTodoID: input.LinkedTodoID,
		ScopeIDs:     input.ScopeIDs,
		Title:        input.Title,
		Note:         input.Note,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionStop handles the session_stop tool call.
func (h *Handlers) HandleSessionStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionStopRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.StopSession(ctx, h.env, ops.StopSessionInput{
		ID:                input.ID,
		Title:             input.Title,
		Note:              input.Note,
		FocusScore:        input.FocusScore,
		ProgressIncrement: input.ProgressIncrement,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionCancel handles the session_cancel tool call.
func (h *Handlers) HandleSessionCancel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.CancelSession(ctx, h.env, ops.CancelSessionInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionList handles the session_list tool call.
func (h *Handlers) HandleSessionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListSessions(ctx, h.env)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogSave handles the log_save tool call.
func (h *Handlers) HandleLogSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SaveLog(ctx, h.env, ops.SaveLogInput{
		ID:                input.ID,
		CategoryID:        input.CategoryID,
		ActivityID:        input.ActivityID,
		StartTime:         input.StartTime,
		EndTime:           input.EndTime,
		Title:             input.Title,
		Note:              input.Note,
		LinkedTodoID:      input.LinkedTodoID,
		ScopeIDs:          input.ScopeIDs,
		ProgressIncrement: input.ProgressIncrement,
		FocusScore:        input.FocusScore,
		Images:            input.Images,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogDelete handles the log_delete tool call.
func (h *Handlers) HandleLogDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteLog(ctx, h.env, ops.DeleteLogInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogList handles the log_list tool call.
func (h *Handlers) HandleLogList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ListLogs(ctx, h.env, ops.ListLogsInput{
		Day:          input.Day,
		ActivityID:   input.ActivityID,
		LinkedTodoID: input.LinkedTodoID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogPunch handles the log_punch tool call.
func (h *Handlers) HandleLogPunch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogPunchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.QuickPunch(ctx, h.env, ops.QuickPunchInput{
		CategoryID: input.CategoryID,
		ActivityID: input.ActivityID,
		Title:      input.Title,
		Note:       input.Note,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTodoSave handles the todo_save tool call.
func (h *Handlers) HandleTodoSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TodoSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SaveTodo(ctx, h.env, ops.SaveTodoInput{
		ID:               input.ID,
		CategoryID:       input.CategoryID,
		Title:            input.Title,
		Note:             input.Note,
		LinkedCategoryID: input.LinkedCategoryID,
		LinkedActivityID: input.LinkedActivityID,
		DefaultScopeIDs:  input.DefaultScopeIDs,
		CoverImage:       input.CoverImage,
		IsProgress:       input.IsProgress,
		TotalAmount:      input.TotalAmount,
		UnitAmount:       input.UnitAmount,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTodoToggle handles the todo_toggle tool call.
func (h *Handlers) HandleTodoToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ToggleTodo(ctx, h.env, ops.ToggleTodoInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTodoDelete handles the todo_delete tool call.
func (h *Handlers) HandleTodoDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteTodo(ctx, h.env, ops.DeleteTodoInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTodoNudge handles the todo_nudge tool call.
func (h *Handlers) HandleTodoNudge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TodoNudgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.NudgeTodoProgress(ctx, h.env, ops.NudgeTodoProgressInput{ID: input.ID, Delta: input.Delta})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTodoList handles the todo_list tool call.
func (h *Handlers) HandleTodoList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TodoListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ListTodos(ctx, h.env, ops.ListTodosInput{CategoryID: input.CategoryID, Open: input.Open})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGoalSave handles the goal_save tool call.
func (h *Handlers) HandleGoalSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GoalSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SaveGoal(ctx, h.env, ops.SaveGoalInput{
		ID:                   input.ID,
		Title:                input.Title,
		ScopeID:              input.ScopeID,
		Metric:               input.Metric,
		TargetValue:          input.TargetValue,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		FilterActivityIDs:    input.FilterActivityIDs,
		FilterTodoCategories: input.FilterTodoCategories,
		Motivation:           input.Motivation,
		Archived:             input.Archived,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGoalDelete handles the goal_delete tool call.
func (h *Handlers) HandleGoalDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteGoal(ctx, h.env, ops.DeleteGoalInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGoalStatus handles the goal_status tool call.
func (h *Handlers) HandleGoalStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.GoalStatus(ctx, h.env, ops.GoalStatusInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGoalList handles the goal_list tool call.
func (h *Handlers) HandleGoalList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GoalListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ListGoals(ctx, h.env, ops.ListGoalsInput{IncludeArchived: input.IncludeArchived})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCategorySave handles the category_save tool call.
func (h *Handlers) HandleCategorySave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategorySaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SaveCategory(ctx, h.env, ops.SaveCategoryInput{
		ID:         input.ID,
		Name:       input.Name,
		Icon:       input.Icon,
		ThemeColor: input.ThemeColor,
		Activities: input.Activities,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCategoryDelete handles the category_delete tool call.
func (h *Handlers) HandleCategoryDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteCategory(ctx, h.env, ops.DeleteCategoryInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleScopeSave handles the scope_save tool call.
func (h *Handlers) HandleScopeSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ScopeSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SaveScope(ctx, h.env, ops.SaveScopeInput{
		ID:          input.ID,
		Name:        input.Name,
		Icon:        input.Icon,
		Description: input.Description,
		ThemeColor:  input.ThemeColor,
		Order:       input.Order,
		Archived:    input.Archived,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleScopeDelete handles the scope_delete tool call.
func (h *Handlers) HandleScopeDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteScope(ctx, h.env, ops.DeleteScopeInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRuleSave handles the rule_save tool call.
func (h *Handlers) HandleRuleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RuleSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SaveRule(ctx, h.env, ops.SaveRuleInput{
		ID:         input.ID,
		ActivityID: input.ActivityID,
		ScopeID:    input.ScopeID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRuleDelete handles the rule_delete tool call.
func (h *Handlers) HandleRuleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteRule(ctx, h.env, ops.DeleteRuleInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTodolistSave handles the todolist_save tool call.
func (h *Handlers) HandleTodolistSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TodolistSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SaveTodoCategory(ctx, h.env, ops.SaveTodoCategoryInput{
		ID:   input.ID,
		Name: input.Name,
		Icon: input.Icon,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTodolistDelete handles the todolist_delete tool call.
func (h *Handlers) HandleTodolistDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteTodoCategory(ctx, h.env, ops.DeleteTodoCategoryInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSnapshotExport handles the snapshot_export tool call.
func (h *Handlers) HandleSnapshotExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ExportSnapshot(ctx, h.env, ops.ExportSnapshotInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSnapshotImport handles the snapshot_import tool call.
func (h *Handlers) HandleSnapshotImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ImportSnapshot(ctx, h.env, ops.ImportSnapshotInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleJournalExport handles the journal_export tool call.
func (h *Handlers) HandleJournalExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[JournalExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ExportJournal(ctx, h.env, ops.ExportJournalInput{
		Day:    input.Day,
		Format: ops.JournalFormat(input.Format),
		Path:   input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSyncUpload handles the sync_upload tool call.
func (h *Handlers) HandleSyncUpload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.SyncUpload(ctx, h.env)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSyncDownload handles the sync_download tool call.
func (h *Handlers) HandleSyncDownload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SyncDownloadRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SyncDownload(ctx, h.env, ops.SyncDownloadInput{Force: input.Force})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSyncStatus handles the sync_status tool call.
func (h *Handlers) HandleSyncStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.SyncStatus(ctx, h.env)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := err.(*errors.TallyError); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
