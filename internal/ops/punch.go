package ops

import (
	"context"
	"strings"
	"time"

	"tally/internal/errors"
	"tally/internal/ledger"
)

// QuickPunchInput contains parameters for the QuickPunch operation.
type QuickPunchInput struct {
	CategoryID string
	ActivityID string
	Title      string
	Note       string
}

// QuickPunchOutput contains the result of the QuickPunch operation.
type QuickPunchOutput struct {
	// Created is false when the ledger already covers the current moment.
	Created bool        `json:"created"`
	Log     *ledger.Log `json:"log,omitempty"`
}

// QuickPunch backfills a log from the later of (last log end, start of
// today) up to now, without running a timer. Refused when a log ends in
// the future; a no-op when the ledger is already up to date.
func QuickPunch(ctx context.Context, env *Env, input QuickPunchInput) (*QuickPunchOutput, error) {
	if strings.TrimSpace(input.ActivityID) == "" {
		return nil, errors.NewInvalidRequest("activity_id is required")
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		return nil, errors.NewInvalidRequest("category_id is required")
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	if _, ok := env.Store.Activity(input.CategoryID, input.ActivityID); !ok {
		return nil, errors.NewNotFound("activity", input.ActivityID)
	}

	now := env.Now()
	nowMs := now.UnixMilli()
	local := now.In(env.Loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, env.Loc).UnixMilli()

	start := dayStart
	for _, l := range env.Store.Logs() {
		if l.EndTime > nowMs {
			return nil, errors.NewInvalidRequest("a log ends in the future; fix it before punching")
		}
		if l.EndTime > start {
			start = l.EndTime
		}
	}
	if start >= nowMs {
		return &QuickPunchOutput{Created: false}, nil
	}

	l := ledger.Log{
		ID:         ledger.NewID(),
		CategoryID: input.CategoryID,
		ActivityID: input.ActivityID,
		StartTime:  start,
		EndTime:    nowMs,
		Title:      input.Title,
		Note:       input.Note,
	}
	env.Store.UpsertLog(l)

	if err := env.persist(); err != nil {
		return nil, err
	}

	stored, _ := env.Store.Log(l.ID)
	return &QuickPunchOutput{Created: true, Log: &stored}, nil
}
