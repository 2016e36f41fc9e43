package ops

import (
	"context"
	"strings"

	"tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/progress"
	"tally/internal/session"
)

// StartSessionInput contains parameters for the StartSession operation.
type StartSessionInput struct {
	CategoryID string
	ActivityID string

	LinkedTodoID string // optional; empty means unlinked
	ScopeIDs     []string
	Title        string
	Note         string
}

// StartSessionOutput contains the result of the StartSession operation.
type StartSessionOutput struct {
	Session ledger.ActiveSession `json:"session"`
}

// StartSession begins a timer for an activity. When no explicit scope is
// given, scopes are attached from every auto-link rule matching the
// activity. Multiple sessions may run at once.
func StartSession(ctx context.Context, env *Env, input StartSessionInput) (*StartSessionOutput, error) {
	if strings.TrimSpace(input.ActivityID) == "" {
		return nil, errors.NewInvalidRequest("activity_id is required")
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		return nil, errors.NewInvalidRequest("category_id is required")
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	activity, ok := env.Store.Activity(input.CategoryID, input.ActivityID)
	if !ok {
		return nil, errors.NewNotFound("activity", input.ActivityID)
	}

	var linked *string
	if id := strings.TrimSpace(input.LinkedTodoID); id != "" {
		if _, ok := env.Store.Todo(id); !ok {
			return nil, errors.NewNotFound("todo", id)
		}
		linked = &id
	}

	s := env.Sessions.Start(session.StartInput{
		ActivityID:   input.ActivityID,
		CategoryID:   input.CategoryID,
		ActivityName: activity.Name,
		LinkedTodoID: linked,
		ScopeIDs:     input.ScopeIDs,
		Title:        input.Title,
		Note:         input.Note,
		Rules:        env.Store.Rules(),
	})

	return &StartSessionOutput{Session: s}, nil
}

// StopSessionInput contains parameters for the StopSession operation.
// The pointer fields override the session's values when set.
type StopSessionInput struct {
	ID string

	Title             *string
	Note              *string
	FocusScore        *int
	ProgressIncrement *int
}

// StopSessionOutput contains the result of the StopSession operation.
type StopSessionOutput struct {
	// Logs holds the committed day-bounded records; empty when Discarded.
	Logs      []ledger.Log `json:"logs"`
	Discarded bool         `json:"discarded"`
}

// StopSession ends a timer and commits its interval to the ledger, one log
// per crossed local day. Progress counters are adjusted after the logs are
// committed. Sessions at or under the minimum elapsed time are discarded
// with no ledger effect.
func StopSession(ctx context.Context, env *Env, input StopSessionInput) (*StopSessionOutput, error) {
	if input.FocusScore != nil && (*input.FocusScore < 0 || *input.FocusScore > 5) {
		return nil, errors.NewInvalidRequest("focus_score must be between 0 and 5")
	}
	if input.ProgressIncrement != nil && *input.ProgressIncrement < 0 {
		return nil, errors.NewInvalidRequest("progress_increment must not be negative")
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	result, ok := env.Sessions.Stop(input.ID, &session.StopOverrides{
		Title:             input.Title,
		Note:              input.Note,
		FocusScore:        input.FocusScore,
		ProgressIncrement: input.ProgressIncrement,
	})
	if !ok {
		return nil, errors.NewNotFound("session", input.ID)
	}
	if result.Discarded {
		return &StopSessionOutput{Discarded: true}, nil
	}

	// Logs first, counters second.
	for _, l := range result.Logs {
		env.Store.UpsertLog(l)
	}
	for i := range result.Logs {
		progress.ApplyLogChange(env.Store, nil, &result.Logs[i])
	}

	if err := env.persist(); err != nil {
		return nil, err
	}

	committed := make([]ledger.Log, 0, len(result.Logs))
	for _, l := range result.Logs {
		stored, _ := env.Store.Log(l.ID)
		committed = append(committed, stored)
	}
	return &StopSessionOutput{Logs: committed}, nil
}

// CancelSessionInput contains parameters for the CancelSession operation.
type CancelSessionInput struct {
	ID string
}

// CancelSessionOutput contains the result of the CancelSession operation.
type CancelSessionOutput struct {
	Cancelled bool `json:"cancelled"`
}

// CancelSession discards a running timer with zero ledger effect.
// Cancelling a session that does not exist is a no-op, not an error.
func CancelSession(ctx context.Context, env *Env, input CancelSessionInput) (*CancelSessionOutput, error) {
	return &CancelSessionOutput{Cancelled: env.Sessions.Cancel(input.ID)}, nil
}

// SessionView is a running session with its elapsed time.
type SessionView struct {
	ledger.ActiveSession
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// ListSessionsOutput contains the result of the ListSessions operation.
type ListSessionsOutput struct {
	Sessions []SessionView `json:"sessions"`
	Count    int           `json:"count"`
}

// ListSessions returns all running sessions in start order.
func ListSessions(ctx context.Context, env *Env) (*ListSessionsOutput, error) {
	now := env.nowMillis()
	sessions := env.Sessions.Sessions()

	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, SessionView{
			ActiveSession:  s,
			ElapsedSeconds: float64(now-s.StartTime) / 1000,
		})
	}
	return &ListSessionsOutput{Sessions: views, Count: len(views)}, nil
}
