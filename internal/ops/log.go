package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/progress"
)

// SaveLogInput contains parameters for the SaveLog operation.
// An empty ID creates a new log; a set ID edits an existing one.
type SaveLogInput struct {
	ID string

	CategoryID string
	ActivityID string
	StartTime  int64
	EndTime    int64

	Title             string
	Note              string
	LinkedTodoID      string // empty means unlinked
	ScopeIDs          []string
	ProgressIncrement int
	FocusScore        int
	Images            []string
}

// SaveLogOutput contains the result of the SaveLog operation.
type SaveLogOutput struct {
	Log     ledger.Log `json:"log"`
	Created bool       `json:"created"`
}

// SaveLog creates or edits a log entry. The log is committed first, then
// progress counters are adjusted for the transition: an edit that changes
// the increment on the same todo is applied as one net adjustment.
func SaveLog(ctx context.Context, env *Env, input SaveLogInput) (*SaveLogOutput, error) {
	if strings.TrimSpace(input.ActivityID) == "" {
		return nil, errors.NewInvalidRequest("activity_id is required")
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		return nil, errors.NewInvalidRequest("category_id is required")
	}
	if input.EndTime <= input.StartTime {
		return nil, errors.NewInvalidRequest("end_time must be after start_time")
	}
	if input.FocusScore < 0 || input.FocusScore > 5 {
		return nil, errors.NewInvalidRequest("focus_score must be between 0 and 5")
	}
	if input.ProgressIncrement < 0 {
		return nil, errors.NewInvalidRequest("progress_increment must not be negative")
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	if _, ok := env.Store.Activity(input.CategoryID, input.ActivityID); !ok {
		return nil, errors.NewNotFound("activity", input.ActivityID)
	}

	var oldLog *ledger.Log
	created := input.ID == ""
	if !created {
		existing, ok := env.Store.Log(input.ID)
		if !ok {
			return nil, errors.NewNotFound("log", input.ID)
		}
		oldLog = &existing
	}

	var linked *string
	if id := strings.TrimSpace(input.LinkedTodoID); id != "" {
		if _, ok := env.Store.Todo(id); !ok {
			return nil, errors.NewNotFound("todo", id)
		}
		linked = &id
	}

	l := ledger.Log{
		ID:                input.ID,
		CategoryID:        input.CategoryID,
		ActivityID:        input.ActivityID,
		StartTime:         input.StartTime,
		EndTime:           input.EndTime,
		Title:             input.Title,
		Note:              input.Note,
		LinkedTodoID:      linked,
		ScopeIDs:          input.ScopeIDs,
		ProgressIncrement: input.ProgressIncrement,
		FocusScore:        input.FocusScore,
		Images:            input.Images,
	}
	if created {
		l.ID = ledger.NewID()
	}

	env.Store.UpsertLog(l)
	progress.ApplyLogChange(env.Store, oldLog, &l)

	if err := env.persist(); err != nil {
		return nil, err
	}

	stored, _ := env.Store.Log(l.ID)
	return &SaveLogOutput{Log: stored, Created: created}, nil
}

// DeleteLogInput contains parameters for the DeleteLog operation.
type DeleteLogInput struct {
	ID string
}

// DeleteLogOutput contains the result of the DeleteLog operation.
type DeleteLogOutput struct {
	ID string `json:"id"`

	// RemovedImages lists media files that were referenced only by this
	// log and were cleaned up from disk (best effort).
	RemovedImages []string `json:"removed_images,omitempty"`
}

// DeleteLog removes a log entry. Its progress contribution is reverted
// before the log leaves the ledger, and media referenced by no other
// record is cleaned up from the images directory.
func DeleteLog(ctx context.Context, env *Env, input DeleteLogInput) (*DeleteLogOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	old, ok := env.Store.Log(input.ID)
	if !ok {
		return nil, errors.NewNotFound("log", input.ID)
	}

	// Counters reverted first, then the log leaves the ledger.
	progress.ApplyLogChange(env.Store, &old, nil)
	env.Store.RemoveLog(input.ID)

	orphaned := progress.OrphanedImages(env.Store, old)
	for _, name := range orphaned {
		if env.BaseDir == "" {
			continue
		}
		// Best effort: a missing file is not an error.
		_ = os.Remove(filepath.Join(env.BaseDir, "images", filepath.Base(name)))
	}

	if err := env.persist(); err != nil {
		return nil, err
	}

	return &DeleteLogOutput{ID: input.ID, RemovedImages: orphaned}, nil
}

// ListLogsInput contains optional filters for the ListLogs operation.
type ListLogsInput struct {
	// Day filters to logs starting on a local date (YYYY-MM-DD).
	Day string

	// ActivityID filters to a single activity.
	ActivityID string

	// LinkedTodoID filters to logs linked to a todo.
	LinkedTodoID string
}

// ListLogsOutput contains the result of the ListLogs operation.
type ListLogsOutput struct {
	Logs  []ledger.Log `json:"logs"`
	Count int          `json:"count"`

	// TotalSeconds sums the duration of the returned logs.
	TotalSeconds float64 `json:"totalSeconds"`
}

// ListLogs returns logs in insertion order, optionally filtered by local
// day, activity, or linked todo.
func ListLogs(ctx context.Context, env *Env, input ListLogsInput) (*ListLogsOutput, error) {
	var dayStart, dayEnd int64
	if input.Day != "" {
		t, err := time.ParseInLocation("2006-01-02", input.Day, env.Loc)
		if err != nil {
			return nil, errors.NewInvalidRequest("day must be a YYYY-MM-DD date")
		}
		dayStart = t.UnixMilli()
		dayEnd = t.AddDate(0, 0, 1).UnixMilli()
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	out := &ListLogsOutput{Logs: []ledger.Log{}}
	for _, l := range env.Store.Logs() {
		if input.Day != "" && (l.StartTime < dayStart || l.StartTime >= dayEnd) {
			continue
		}
		if input.ActivityID != "" && l.ActivityID != input.ActivityID {
			continue
		}
		if input.LinkedTodoID != "" && (l.LinkedTodoID == nil || *l.LinkedTodoID != input.LinkedTodoID) {
			continue
		}
		out.Logs = append(out.Logs, l)
		out.TotalSeconds += l.Duration
	}
	out.Count = len(out.Logs)
	return out, nil
}
