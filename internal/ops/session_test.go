package ops

import (
	"context"
	"testing"
	"time"

	"tally/internal/errors"
	"tally/internal/ledger"
)

func TestStartStopSession_CommitsLogAndProgress(t *testing.T) {
	env, clock := newTestEnv(t)
	ctx := context.Background()

	started, err := StartSession(ctx, env, StartSessionInput{
		CategoryID:   "cat1",
		ActivityID:   "act1",
		LinkedTodoID: "todo1",
		Title:        "morning block",
	})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if started.Session.ActivityName != "Deep Work" {
		t.Errorf("ActivityName = %q, want Deep Work", started.Session.ActivityName)
	}

	clock.advance(25 * time.Minute)

	inc := 3
	stopped, err := StopSession(ctx, env, StopSessionInput{
		ID:                started.Session.ID,
		ProgressIncrement: &inc,
	})
	if err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}
	if stopped.Discarded {
		t.Fatal("session discarded unexpectedly")
	}
	if len(stopped.Logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(stopped.Logs))
	}
	l := stopped.Logs[0]
	if l.Duration != 25*60 {
		t.Errorf("Duration = %v, want %v", l.Duration, 25*60)
	}
	if l.Title != "morning block" {
		t.Errorf("Title = %q", l.Title)
	}

	todo, _ := env.Store.Todo("todo1")
	if todo.CompletedUnits != 3 {
		t.Errorf("CompletedUnits = %d, want 3", todo.CompletedUnits)
	}
	if env.Store.LogCount() != 1 {
		t.Errorf("LogCount = %d, want 1", env.Store.LogCount())
	}
}

func TestStopSession_ShortSessionDiscarded(t *testing.T) {
	env, clock := newTestEnv(t)
	ctx := context.Background()

	started, err := StartSession(ctx, env, StartSessionInput{CategoryID: "cat1", ActivityID: "act1"})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	clock.advance(time.Second)

	stopped, err := StopSession(ctx, env, StopSessionInput{ID: started.Session.ID})
	if err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}
	if !stopped.Discarded {
		t.Error("1s session not discarded")
	}
	if env.Store.LogCount() != 0 {
		t.Errorf("LogCount = %d, want 0", env.Store.LogCount())
	}
}

func TestStopSession_SplitsAcrossMidnight(t *testing.T) {
	env, clock := newTestEnv(t)
	ctx := context.Background()

	clock.t = time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)
	started, err := StartSession(ctx, env, StartSessionInput{CategoryID: "cat1", ActivityID: "act1"})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	clock.advance(75 * time.Minute) // 00:45 next day

	stopped, err := StopSession(ctx, env, StopSessionInput{ID: started.Session.ID})
	if err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}
	if len(stopped.Logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(stopped.Logs))
	}
	if got := stopped.Logs[1].Duration; got != 45*60 {
		t.Errorf("second segment duration = %v, want %v", got, 45*60)
	}
	if env.Store.LogCount() != 2 {
		t.Errorf("LogCount = %d, want 2", env.Store.LogCount())
	}
}

func TestStartSession_AutoLinksScopes(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	env.Store.UpsertScope(ledger.Scope{ID: "scope2", Name: "Health"})
	env.Store.UpsertRule(ledger.AutoLinkRule{ID: "r1", ActivityID: "act1", ScopeID: "scope1"})
	env.Store.UpsertRule(ledger.AutoLinkRule{ID: "r2", ActivityID: "act1", ScopeID: "scope2"})
	env.Store.UpsertRule(ledger.AutoLinkRule{ID: "r3", ActivityID: "act2", ScopeID: "scope2"})

	started, err := StartSession(ctx, env, StartSessionInput{CategoryID: "cat1", ActivityID: "act1"})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	want := []string{"scope1", "scope2"}
	if len(started.Session.ScopeIDs) != 2 || started.Session.ScopeIDs[0] != want[0] || started.Session.ScopeIDs[1] != want[1] {
		t.Errorf("ScopeIDs = %v, want %v", started.Session.ScopeIDs, want)
	}

	// Explicit scopes suppress auto-linking.
	explicit, err := StartSession(ctx, env, StartSessionInput{
		CategoryID: "cat1", ActivityID: "act1", ScopeIDs: []string{"scope2"},
	})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if len(explicit.Session.ScopeIDs) != 1 || explicit.Session.ScopeIDs[0] != "scope2" {
		t.Errorf("explicit ScopeIDs = %v, want [scope2]", explicit.Session.ScopeIDs)
	}
}

func TestStartSession_UnknownActivity(t *testing.T) {
	env, _ := newTestEnv(t)
	_, err := StartSession(context.Background(), env, StartSessionInput{CategoryID: "cat1", ActivityID: "nope"})
	wantCode(t, err, errors.ErrNotFound)
}

func TestStopSession_UnknownSession(t *testing.T) {
	env, _ := newTestEnv(t)
	_, err := StopSession(context.Background(), env, StopSessionInput{ID: "nope"})
	wantCode(t, err, errors.ErrNotFound)
}

func TestCancelSession(t *testing.T) {
	env, clock := newTestEnv(t)
	ctx := context.Background()

	started, err := StartSession(ctx, env, StartSessionInput{CategoryID: "cat1", ActivityID: "act1"})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	clock.advance(time.Hour)

	out, err := CancelSession(ctx, env, CancelSessionInput{ID: started.Session.ID})
	if err != nil {
		t.Fatalf("CancelSession failed: %v", err)
	}
	if !out.Cancelled {
		t.Error("Cancelled = false for a running session")
	}
	if env.Store.LogCount() != 0 {
		t.Errorf("cancel produced %d logs", env.Store.LogCount())
	}

	// Cancelling a missing session is a no-op, not an error.
	again, err := CancelSession(ctx, env, CancelSessionInput{ID: started.Session.ID})
	if err != nil {
		t.Fatalf("second CancelSession failed: %v", err)
	}
	if again.Cancelled {
		t.Error("Cancelled = true for a missing session")
	}
}

func TestListSessions_Elapsed(t *testing.T) {
	env, clock := newTestEnv(t)
	ctx := context.Background()

	first, _ := StartSession(ctx, env, StartSessionInput{CategoryID: "cat1", ActivityID: "act1"})
	clock.advance(10 * time.Minute)
	if _, err := StartSession(ctx, env, StartSessionInput{CategoryID: "cat1", ActivityID: "act2"}); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	clock.advance(5 * time.Minute)

	out, err := ListSessions(ctx, env)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if out.Count != 2 {
		t.Fatalf("Count = %d, want 2", out.Count)
	}
	if out.Sessions[0].ID != first.Session.ID {
		t.Error("sessions not in start order")
	}
	if out.Sessions[0].ElapsedSeconds != 15*60 {
		t.Errorf("first elapsed = %v, want %v", out.Sessions[0].ElapsedSeconds, 15*60)
	}
	if out.Sessions[1].ElapsedSeconds != 5*60 {
		t.Errorf("second elapsed = %v, want %v", out.Sessions[1].ElapsedSeconds, 5*60)
	}
}
