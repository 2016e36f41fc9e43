package session

import (
	"sync"
	"time"

	"tally/internal/ledger"
)

// MinElapsed is the accidental-start threshold: a session stopped at or
// under this elapsed time is discarded without producing a log.
const MinElapsed = time.Second

// Engine owns the arena of running sessions. Sessions are independent of
// each other; the only shared state is the arena itself, guarded by one
// mutex, so stopping session A never blocks or corrupts session B.
//
// Running -> Stopped | Cancelled, both terminal: the session is removed
// from the arena either way and observers react to its absence.
type Engine struct {
	mu         sync.Mutex
	now        func() time.Time
	loc        *time.Location
	minElapsed time.Duration
	sessions   map[string]ledger.ActiveSession
	order      []string
}

// NewEngine creates an engine using the given clock and time zone for
// day-boundary computation. Nil arguments fall back to time.Now and the
// system zone.
func NewEngine(now func() time.Time, loc *time.Location) *Engine {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		now:        now,
		loc:        loc,
		minElapsed: MinElapsed,
		sessions:   make(map[string]ledger.ActiveSession),
	}
}

// SetMinElapsed overrides the accidental-start threshold. Non-positive
// values restore the default.
func (e *Engine) SetMinElapsed(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d <= 0 {
		d = MinElapsed
	}
	e.minElapsed = d
}

// StartInput contains parameters for starting a session.
type StartInput struct {
	ActivityID   string
	CategoryID   string
	ActivityName string
	LinkedTodoID *string
	ScopeIDs     []string
	Title        string
	Note         string

	// Rules is the current auto-link rule list, applied only when no
	// explicit scope was given.
	Rules []ledger.AutoLinkRule
}

// Start creates a Running session with StartTime captured once from the
// clock. When no explicit scope is given, the scope ids of ALL rules
// matching the activity are applied (union in rule order, deduplicated),
// not just the first match.
func (e *Engine) Start(input StartInput) ledger.ActiveSession {
	scopeIDs := input.ScopeIDs
	if len(scopeIDs) == 0 {
		scopeIDs = autoLinkScopes(input.Rules, input.ActivityID)
	}

	s := ledger.ActiveSession{
		ID:           ledger.NewID(),
		ActivityID:   input.ActivityID,
		CategoryID:   input.CategoryID,
		ActivityName: input.ActivityName,
		StartTime:    e.now().UnixMilli(),
		LinkedTodoID: input.LinkedTodoID,
		ScopeIDs:     scopeIDs,
		Title:        input.Title,
		Note:         input.Note,
	}

	e.mu.Lock()
	e.sessions[s.ID] = s
	e.order = append(e.order, s.ID)
	e.mu.Unlock()
	return s
}

// autoLinkScopes collects scope ids from every rule matching the activity,
// preserving rule order and dropping duplicates.
func autoLinkScopes(rules []ledger.AutoLinkRule, activityID string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range rules {
		if r.ActivityID != activityID || seen[r.ScopeID] {
			continue
		}
		seen[r.ScopeID] = true
		out = append(out, r.ScopeID)
	}
	return out
}

// StopOverrides carries final values supplied by a richer stop flow. Set
// fields take precedence over the session's defaults.
type StopOverrides struct {
	Title             *string
	Note              *string
	FocusScore        *int
	ProgressIncrement *int
}

// StopResult is the outcome of stopping a session.
type StopResult struct {
	Session ledger.ActiveSession

	// Logs holds the committed day-bounded records; empty when Discarded.
	Logs []ledger.Log

	// Discarded is true when the elapsed time was at or under MinElapsed
	// and the session was treated as an accidental start.
	Discarded bool
}

// Stop removes the session from the arena and materializes its interval as
// one log per crossed local day. Returns false if no such session exists;
// nothing is mutated in that case.
func (e *Engine) Stop(id string, overrides *StopOverrides) (*StopResult, bool) {
	e.mu.Lock()
	s, ok := e.sessions[id]
	min := e.minElapsed
	if ok {
		e.removeLocked(id)
	}
	e.mu.Unlock()
	if !ok {
		return nil, false
	}

	end := e.now().UnixMilli()
	elapsed := time.Duration(end-s.StartTime) * time.Millisecond
	if elapsed <= min {
		return &StopResult{Session: s, Discarded: true}, true
	}

	base := ledger.Log{
		ActivityID:        s.ActivityID,
		CategoryID:        s.CategoryID,
		StartTime:         s.StartTime,
		EndTime:           end,
		Title:             s.Title,
		Note:              s.Note,
		LinkedTodoID:      s.LinkedTodoID,
		ScopeIDs:          s.ScopeIDs,
		ProgressIncrement: s.ProgressIncrement,
		FocusScore:        s.FocusScore,
	}
	if overrides != nil {
		if overrides.Title != nil {
			base.Title = *overrides.Title
		}
		if overrides.Note != nil {
			base.Note = *overrides.Note
		}
		if overrides.FocusScore != nil {
			base.FocusScore = *overrides.FocusScore
		}
		if overrides.ProgressIncrement != nil {
			base.ProgressIncrement = *overrides.ProgressIncrement
		}
	}

	return &StopResult{Session: s, Logs: SplitByDay(base, e.loc)}, true
}

// Cancel removes the session with zero ledger effect. Cancelling a missing
// session is a no-op and reports false.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[id]; !ok {
		return false
	}
	e.removeLocked(id)
	return true
}

// Get returns the running session with the given id.
func (e *Engine) Get(id string) (ledger.ActiveSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	return s, ok
}

// Sessions returns all running sessions in start order.
func (e *Engine) Sessions() []ledger.ActiveSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ledger.ActiveSession, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.sessions[id])
	}
	return out
}

// Count returns the number of running sessions.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) removeLocked(id string) {
	delete(e.sessions, id)
	for i, sid := range e.order {
		if sid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}
