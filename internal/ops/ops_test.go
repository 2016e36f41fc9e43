package ops

import (
	"testing"
	"time"

	"tally/internal/config"
	"tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/session"
)

// fixedTime is the reference instant most tests start from.
var fixedTime = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// testClock is a settable clock shared between the env and the engine.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestEnv builds an Env without persistence, on a controllable clock,
// seeded with a minimal taxonomy: one category with one activity, one
// scope, and one progress todo.
func newTestEnv(t *testing.T) (*Env, *testClock) {
	t.Helper()

	clock := &testClock{t: fixedTime}
	env, err := NewEnv(nil, config.DefaultConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("NewEnv failed: %v", err)
	}
	env.Now = clock.now
	env.Loc = time.UTC
	env.Sessions = session.NewEngine(clock.now, time.UTC)

	env.Store.UpsertCategory(ledger.Category{
		ID:   "cat1",
		Name: "Work",
		Activities: []ledger.Activity{
			{ID: "act1", Name: "Deep Work"},
			{ID: "act2", Name: "Email"},
		},
	})
	env.Store.UpsertScope(ledger.Scope{ID: "scope1", Name: "Career"})
	env.Store.UpsertTodoCategory(ledger.TodoCategory{ID: "list1", Name: "Inbox"})
	env.Store.UpsertTodo(ledger.TodoItem{
		ID:          "todo1",
		CategoryID:  "list1",
		Title:       "Read chapters",
		IsProgress:  true,
		TotalAmount: 10,
		UnitAmount:  1,
	})

	return env, clock
}

func time30m() time.Duration        { return 30 * time.Minute }
func timeHours(h int) time.Duration { return time.Duration(h) * time.Hour }

// wantCode fails the test unless err carries the given error code.
func wantCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !errors.Is(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
