package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"tally/internal/config"
	"tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/ops"
	"tally/internal/session"
)

var testStart = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// testClock is a controllable clock shared between the env and the tests.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testSetup creates handlers over an in-memory env seeded with a minimal
// taxonomy: one category with one activity, one scope, and one progress todo.
func testSetup(t *testing.T) (*Handlers, *ops.Env, *testClock) {
	t.Helper()

	clock := &testClock{t: testStart}
	env, err := ops.NewEnv(nil, config.DefaultConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to init env: %v", err)
	}
	env.Now = clock.now
	env.Loc = time.UTC
	env.Sessions = session.NewEngine(clock.now, time.UTC)

	env.Store.UpsertCategory(ledger.Category{
		ID:         "cat1",
		Name:       "Work",
		Activities: []ledger.Activity{{ID: "act1", Name: "Deep Work"}},
	})
	env.Store.UpsertScope(ledger.Scope{ID: "scope1", Name: "Career"})
	env.Store.UpsertTodo(ledger.TodoItem{
		ID:          "todo1",
		Title:       "Read chapters",
		IsProgress:  true,
		TotalAmount: 10,
		UnitAmount:  1,
	})

	return NewHandlers(env), env, clock
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleLogSave(t *testing.T) {
	h, _, _ := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "save valid log",
			args: map[string]any{
				"category_id": "cat1",
				"activity_id": "act1",
				"start_time":  testStart.UnixMilli(),
				"end_time":    testStart.Add(30 * time.Minute).UnixMilli(),
			},
			wantError: false,
		},
		{
			name: "save without activity_id",
			args: map[string]any{
				"category_id": "cat1",
				"start_time":  testStart.UnixMilli(),
				"end_time":    testStart.Add(time.Minute).UnixMilli(),
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "save with end before start",
			args: map[string]any{
				"category_id": "cat1",
				"activity_id": "act1",
				"start_time":  testStart.UnixMilli(),
				"end_time":    testStart.Add(-time.Minute).UnixMilli(),
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "save with unknown activity",
			args: map[string]any{
				"category_id": "cat1",
				"activity_id": "nope",
				"start_time":  testStart.UnixMilli(),
				"end_time":    testStart.Add(time.Minute).UnixMilli(),
			},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
		{
			name: "save linked to unknown todo",
			args: map[string]any{
				"category_id":    "cat1",
				"activity_id":    "act1",
				"start_time":     testStart.UnixMilli(),
				"end_time":       testStart.Add(time.Minute).UnixMilli(),
				"linked_todo_id": "ghost",
			},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := makeRequest(tt.args)
			result, err := h.HandleLogSave(ctx, req)

			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else {
				if result.IsError {
					t.Errorf("expected success, got error: %v", extractErrorMessage(result))
				}
			}
		})
	}
}

func TestHandleSessionStartStop(t *testing.T) {
	h, env, clock := testSetup(t)
	ctx := context.Background()

	startResult, err := h.HandleSessionStart(ctx, makeRequest(map[string]any{
		"category_id":    "cat1",
		"activity_id":    "act1",
		"linked_todo_id": "todo1",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	started := parseOutput(t, startResult)
	sess := started["session"].(map[string]any)
	sessionID := sess["id"].(string)
	if sessionID == "" {
		t.Fatal("expected a session id")
	}

	clock.advance(45 * time.Minute)

	stopResult, err := h.HandleSessionStop(ctx, makeRequest(map[string]any{
		"id":                 sessionID,
		"progress_increment": 3,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	stopped := parseOutput(t, stopResult)
	logs := stopped["logs"].([]any)
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}
	if stopped["discarded"].(bool) {
		t.Error("expected session to be committed, got discarded")
	}

	todo, _ := env.Store.Todo("todo1")
	if todo.CompletedUnits != 3 {
		t.Errorf("completed units = %d, want 3", todo.CompletedUnits)
	}
}

func TestHandleSessionStop_UnknownSession(t *testing.T) {
	h, _, _ := testSetup(t)

	result, err := h.HandleSessionStop(context.Background(), makeRequest(map[string]any{
		"id": "ghost",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleTodoNudge(t *testing.T) {
	h, env, _ := testSetup(t)
	ctx := context.Background()

	env.Store.UpsertTodo(ledger.TodoItem{ID: "plain", Title: "No progress"})

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "nudge progress todo",
			args:      map[string]any{"id": "todo1", "delta": 4},
			wantError: false,
		},
		{
			name:      "nudge non-progress todo",
			args:      map[string]any{"id": "plain", "delta": 1},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "nudge unknown todo",
			args:      map[string]any{"id": "ghost", "delta": 1},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleTodoNudge(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				assertErrorCode(t, result, tt.errorCode)
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}

	todo, _ := env.Store.Todo("todo1")
	if todo.CompletedUnits != 4 {
		t.Errorf("completed units = %d, want 4", todo.CompletedUnits)
	}
}

func TestHandleGoalSaveAndStatus(t *testing.T) {
	h, _, _ := testSetup(t)
	ctx := context.Background()

	saveResult, err := h.HandleGoalSave(ctx, makeRequest(map[string]any{
		"title":        "Deep work hours",
		"scope_id":     "scope1",
		"metric":       "duration_raw",
		"target_value": 36000,
		"start_date":   "2024-03-01",
		"end_date":     "2024-03-31",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	saved := parseOutput(t, saveResult)
	goalID := saved["goal"].(map[string]any)["id"].(string)

	statusResult, err := h.HandleGoalStatus(ctx, makeRequest(map[string]any{"id": goalID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	status := parseOutput(t, statusResult)
	info := status["info"].(map[string]any)
	if info["state"].(string) != "in_progress" {
		t.Errorf("state = %v, want in_progress", info["state"])
	}
}

func TestHandleGoalSave_UnknownScope(t *testing.T) {
	h, _, _ := testSetup(t)

	result, err := h.HandleGoalSave(context.Background(), makeRequest(map[string]any{
		"title":        "Orphan goal",
		"scope_id":     "ghost",
		"metric":       "duration_raw",
		"target_value": 100,
		"start_date":   "2024-03-01",
		"end_date":     "2024-03-31",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleSyncUpload_NoRemoteConfigured(t *testing.T) {
	h, _, _ := testSetup(t)

	result, err := h.HandleSyncUpload(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleJournalExport(t *testing.T) {
	h, _, _ := testSetup(t)
	ctx := context.Background()

	if r, err := h.HandleLogSave(ctx, makeRequest(map[string]any{
		"category_id": "cat1",
		"activity_id": "act1",
		"start_time":  testStart.UnixMilli(),
		"end_time":    testStart.Add(time.Hour).UnixMilli(),
		"title":       "Morning block",
	})); err != nil || r.IsError {
		t.Fatalf("seed log failed: %v %v", err, extractErrorMessage(r))
	}

	result, err := h.HandleJournalExport(ctx, makeRequest(map[string]any{
		"day":  "2024-03-15",
		"path": "-",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	out := parseOutput(t, result)
	if out["logs"].(float64) != 1 {
		t.Errorf("logs = %v, want 1", out["logs"])
	}
	if out["content"].(string) == "" {
		t.Error("expected journal content")
	}
}

func TestServerRegistration(t *testing.T) {
	_, env, _ := testSetup(t)

	cfg := config.DefaultConfig()
	s := NewServer(env, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	if len(tools) != len(toolRegistry) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry))
	}

	for name := range toolRegistry {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	_, env, _ := testSetup(t)

	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"sync_upload", "log_delete"}
	s := NewServer(env, cfg, "test")
	tools := s.ListTools()

	if len(tools) != len(toolRegistry)-2 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-2)
	}

	for _, name := range []string{"sync_upload", "log_delete"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}

	// Core tools should still be registered
	for _, name := range []string{"session_start", "log_save", "todo_list"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("core tool %q should be registered", name)
		}
	}
}

func TestServerRegistration_WithDisabledTypes(t *testing.T) {
	_, env, _ := testSetup(t)

	cfg := config.DefaultConfig()
	cfg.DisabledTypes = []string{"sync", "snapshot"}
	s := NewServer(env, cfg, "test")
	tools := s.ListTools()

	if len(tools) != len(toolRegistry)-5 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-5)
	}

	for _, name := range []string{"sync_upload", "sync_download", "sync_status", "snapshot_export", "snapshot_import"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"log_save", "bogus_tool", "sync_status"})
	if len(unknown) != 1 || unknown[0] != "bogus_tool" {
		t.Errorf("unknown = %v, want [bogus_tool]", unknown)
	}

	if got := ValidateDisabledTools(nil); len(got) != 0 {
		t.Errorf("unknown = %v, want empty", got)
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	unknown := ValidateDisabledTypes([]string{"log", "ghost", "sync"})
	if len(unknown) != 1 || unknown[0] != "ghost" {
		t.Errorf("unknown = %v, want [ghost]", unknown)
	}
}

func TestGetTypeForTool(t *testing.T) {
	tests := []struct {
		tool string
		want string
	}{
		{"session_start", "session"},
		{"log_save", "log"},
		{"journal_export", "journal"},
		{"nounderscoretool", ""},
	}
	for _, tt := range tests {
		if got := GetTypeForTool(tt.tool); got != tt.want {
			t.Errorf("GetTypeForTool(%q) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}

func TestExpandTypesToTools(t *testing.T) {
	tools := ExpandTypesToTools([]string{"goal"})
	if len(tools) != 4 {
		t.Errorf("goal tools = %d, want 4", len(tools))
	}
	for _, name := range tools {
		if GetTypeForTool(name) != "goal" {
			t.Errorf("unexpected tool %q for type goal", name)
		}
	}

	if got := ExpandTypesToTools(nil); got != nil {
		t.Errorf("expected nil for empty types, got %v", got)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Errorf("tool names = %d, want %d", len(names), len(toolRegistry))
	}
}

func TestDecode(t *testing.T) {
	got, err := decode[TodoNudgeRequest](makeRequest(map[string]any{
		"id": "todo1", "delta": 3, "extra": "ignored",
	}))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != "todo1" || got.Delta != 3 {
		t.Errorf("decoded = %+v", got)
	}

	if _, err := decode[TodoNudgeRequest](makeRequest(map[string]any{
		"id": "todo1", "delta": "three",
	})); err == nil {
		t.Error("wrong-typed argument did not error")
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewNotFound("log", "abc"))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
