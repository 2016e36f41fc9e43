package ops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tally/internal/config"
	"tally/internal/db"
	"tally/internal/ledger"
	"tally/internal/session"
)

// TestFullWorkflow exercises the ledger lifecycle against a real database:
// taxonomy setup → timed session → progress accounting → goal evaluation →
// persistence across restart → todo completion → delete with detach.
func TestFullWorkflow(t *testing.T) {
	baseDir := t.TempDir()
	database, err := db.Init(baseDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()
	ctx := context.Background()

	clock := &testClock{t: fixedTime}
	env, err := NewEnv(database, cfg, baseDir)
	require.NoError(t, err)
	env.Now = clock.now
	env.Loc = time.UTC
	env.Sessions = session.NewEngine(clock.now, time.UTC)

	// 1. Taxonomy
	cat, err := SaveCategory(ctx, env, SaveCategoryInput{
		Name:       "Study",
		Activities: []ledger.Activity{{Name: "Reading"}},
	})
	require.NoError(t, err)
	activityID := cat.Category.Activities[0].ID

	scope, err := SaveScope(ctx, env, SaveScopeInput{Name: "Learning"})
	require.NoError(t, err)

	_, err = SaveRule(ctx, env, SaveRuleInput{ActivityID: activityID, ScopeID: scope.Scope.ID})
	require.NoError(t, err)

	list, err := SaveTodoCategory(ctx, env, SaveTodoCategoryInput{Name: "Books"})
	require.NoError(t, err)

	todo, err := SaveTodo(ctx, env, SaveTodoInput{
		CategoryID:      list.TodoCategory.ID,
		Title:           "Finish the novel",
		DefaultScopeIDs: []string{scope.Scope.ID},
		IsProgress:      true,
		TotalAmount:     12,
		UnitAmount:      1,
	})
	require.NoError(t, err)

	// 2. Goal over the scope
	goalOut, err := SaveGoal(ctx, env, SaveGoalInput{
		Title:       "Read an hour",
		ScopeID:     scope.Scope.ID,
		Metric:      "duration_raw",
		TargetValue: 3600,
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-31",
	})
	require.NoError(t, err)

	// 3. Timed session, auto-linked to the scope by the rule
	started, err := StartSession(ctx, env, StartSessionInput{
		CategoryID:   cat.Category.ID,
		ActivityID:   activityID,
		LinkedTodoID: todo.Todo.ID,
	})
	require.NoError(t, err)
	require.Equal(t, []string{scope.Scope.ID}, started.Session.ScopeIDs)

	clock.advance(45 * time.Minute)
	inc := 2
	stopped, err := StopSession(ctx, env, StopSessionInput{ID: started.Session.ID, ProgressIncrement: &inc})
	require.NoError(t, err)
	require.False(t, stopped.Discarded)
	require.Len(t, stopped.Logs, 1)

	updated, ok := env.Store.Todo(todo.Todo.ID)
	require.True(t, ok)
	require.Equal(t, 2, updated.CompletedUnits)

	// 4. Goal sees the recorded time
	status, err := GoalStatus(ctx, env, GoalStatusInput{ID: goalOut.Goal.ID})
	require.NoError(t, err)
	require.Equal(t, float64(45*60), status.Info.Progress.Current)

	// 5. Restart: a fresh env over the same database sees the same ledger
	reloaded, err := NewEnv(database, cfg, baseDir)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Store.LogCount())
	reTodo, ok := reloaded.Store.Todo(todo.Todo.ID)
	require.True(t, ok)
	require.Equal(t, 2, reTodo.CompletedUnits)

	// 6. Complete the todo, then delete it: the log stays, detached
	_, err = ToggleTodo(ctx, env, ToggleTodoInput{ID: todo.Todo.ID})
	require.NoError(t, err)

	deleted, err := DeleteTodo(ctx, env, DeleteTodoInput{ID: todo.Todo.ID})
	require.NoError(t, err)
	require.Equal(t, 1, deleted.DetachedLogs)
	require.Equal(t, 1, env.Store.LogCount())
	remaining := env.Store.Logs()[0]
	require.Nil(t, remaining.LinkedTodoID)
}
