package ops

import (
	"context"
	"strings"
	"time"

	"tally/internal/errors"
	"tally/internal/goal"
	"tally/internal/ledger"
)

var knownMetrics = map[ledger.GoalMetric]bool{
	ledger.MetricDurationRaw:      true,
	ledger.MetricDurationWeighted: true,
	ledger.MetricFrequencyDays:    true,
	ledger.MetricTaskCount:        true,
	ledger.MetricDurationLimit:    true,
}

// SaveGoalInput contains parameters for the SaveGoal operation.
// An empty ID creates a new goal; a set ID edits an existing one.
type SaveGoalInput struct {
	ID      string
	Title   string
	ScopeID string
	Metric  string

	TargetValue float64
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD

	FilterActivityIDs    []string
	FilterTodoCategories []string
	Motivation           string
	Archived             bool
}

// SaveGoalOutput contains the result of the SaveGoal operation.
type SaveGoalOutput struct {
	Goal    ledger.Goal `json:"goal"`
	Created bool        `json:"created"`
}

// SaveGoal creates or edits a goal. The goal stores only its definition;
// progress state is derived at read time by the evaluator.
func SaveGoal(ctx context.Context, env *Env, input SaveGoalInput) (*SaveGoalOutput, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	metric := ledger.GoalMetric(input.Metric)
	if !knownMetrics[metric] {
		return nil, errors.NewInvalidRequest("unknown metric: " + input.Metric)
	}
	if input.TargetValue <= 0 {
		return nil, errors.NewInvalidRequest("target_value must be positive")
	}
	start, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		return nil, errors.NewInvalidRequest("start_date must be a YYYY-MM-DD date")
	}
	end, err := time.Parse("2006-01-02", input.EndDate)
	if err != nil {
		return nil, errors.NewInvalidRequest("end_date must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return nil, errors.NewInvalidRequest("end_date must not be before start_date")
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	if _, ok := env.Store.Scope(input.ScopeID); !ok {
		return nil, errors.NewNotFound("scope", input.ScopeID)
	}

	g := ledger.Goal{
		ID:                   input.ID,
		Title:                input.Title,
		ScopeID:              input.ScopeID,
		Metric:               metric,
		TargetValue:          input.TargetValue,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		FilterActivityIDs:    input.FilterActivityIDs,
		FilterTodoCategories: input.FilterTodoCategories,
		Motivation:           input.Motivation,
		Status:               ledger.GoalActive,
	}
	if input.Archived {
		g.Status = ledger.GoalArchived
	}

	created := input.ID == ""
	if created {
		g.ID = ledger.NewID()
	} else if _, ok := env.Store.Goal(input.ID); !ok {
		return nil, errors.NewNotFound("goal", input.ID)
	}

	env.Store.UpsertGoal(g)

	if err := env.persist(); err != nil {
		return nil, err
	}

	stored, _ := env.Store.Goal(g.ID)
	return &SaveGoalOutput{Goal: stored, Created: created}, nil
}

// DeleteGoalInput contains parameters for the DeleteGoal operation.
type DeleteGoalInput struct {
	ID string
}

// DeleteGoalOutput contains the result of the DeleteGoal operation.
type DeleteGoalOutput struct {
	ID string `json:"id"`
}

// DeleteGoal removes a goal definition. Logs and todos are untouched.
func DeleteGoal(ctx context.Context, env *Env, input DeleteGoalInput) (*DeleteGoalOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	if !env.Store.RemoveGoal(input.ID) {
		return nil, errors.NewNotFound("goal", input.ID)
	}

	if err := env.persist(); err != nil {
		return nil, err
	}

	return &DeleteGoalOutput{ID: input.ID}, nil
}

// GoalView is a goal definition with its evaluated status.
type GoalView struct {
	Goal ledger.Goal `json:"goal"`
	Info goal.Info   `json:"info"`
}

// GoalStatusInput contains parameters for the GoalStatus operation.
type GoalStatusInput struct {
	ID string
}

// GoalStatus evaluates one goal against the current ledger.
func GoalStatus(ctx context.Context, env *Env, input GoalStatusInput) (*GoalView, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	g, ok := env.Store.Goal(input.ID)
	if !ok {
		return nil, errors.NewNotFound("goal", input.ID)
	}

	info, err := goal.Evaluate(g, env.Store.Logs(), env.Store.Todos(), env.Now(), env.Loc)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &GoalView{Goal: g, Info: info}, nil
}

// ListGoalsInput contains parameters for the ListGoals operation.
type ListGoalsInput struct {
	IncludeArchived bool
}

// ListGoalsOutput contains the result of the ListGoals operation.
type ListGoalsOutput struct {
	Goals []GoalView `json:"goals"`
	Count int        `json:"count"`
}

// ListGoals evaluates all goals against the current ledger. Archived
// goals are skipped unless requested. The clock and the ledger are read
// once for the whole listing.
func ListGoals(ctx context.Context, env *Env, input ListGoalsInput) (*ListGoalsOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	now := env.Now()
	logs := env.Store.Logs()
	todos := env.Store.Todos()

	out := &ListGoalsOutput{Goals: []GoalView{}}
	for _, g := range env.Store.Goals() {
		if !input.IncludeArchived && g.Status == ledger.GoalArchived {
			continue
		}
		info, err := goal.Evaluate(g, logs, todos, now, env.Loc)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out.Goals = append(out.Goals, GoalView{Goal: g, Info: info})
	}
	out.Count = len(out.Goals)
	return out, nil
}
