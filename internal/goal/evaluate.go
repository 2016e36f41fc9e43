// Package goal derives lifecycle state for deadline-bound goals. Evaluation
// is pure: it reads the ledger and never mutates a Goal record. The only
// stored transition (active -> archived) belongs to the goal's owner.
package goal

import (
	"fmt"
	"math"
	"slices"
	"time"

	"tally/internal/ledger"
)

// State is the computed lifecycle state of a goal.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Progress is the derived current-vs-target measurement.
type Progress struct {
	Current    float64 `json:"current"`
	Target     float64 `json:"target"`
	Percentage float64 `json:"percentage"`
}

// Info is the full evaluation result.
type Info struct {
	State             State    `json:"state"`
	Progress          Progress `json:"progress"`
	DaysUntilDeadline int      `json:"daysUntilDeadline"`
	IsExpired         bool     `json:"isExpired"`
}

const dateLayout = "2006-01-02"

// Evaluate maps a goal plus the current ledger to its lifecycle state.
//
// Success and failure are judged only once the deadline has passed: before
// end-of-day of EndDate the state is always in_progress, regardless of how
// far ahead or behind the numbers are. After the deadline, a duration_limit
// goal (a cap) completes iff percentage stayed under 100; every other
// metric completes iff percentage reached 100. At exactly 100% a limit goal
// has failed.
func Evaluate(g ledger.Goal, logs []ledger.Log, todos []ledger.TodoItem, now time.Time, loc *time.Location) (Info, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(dateLayout, g.StartDate, loc)
	if err != nil {
		return Info{}, fmt.Errorf("goal %s: bad start date %q: %w", g.ID, g.StartDate, err)
	}
	endDay, err := time.ParseInLocation(dateLayout, g.EndDate, loc)
	if err != nil {
		return Info{}, fmt.Errorf("goal %s: bad end date %q: %w", g.ID, g.EndDate, err)
	}
	// deadline is end-of-day of the end date
	end := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, 999_000_000, loc)

	current := currentValue(g, logs, todos, start.UnixMilli(), end.UnixMilli(), loc)
	prog := Progress{
		Current:    current,
		Target:     g.TargetValue,
		Percentage: percentage(current, g.TargetValue),
	}

	isExpired := now.After(end)
	days := int(math.Ceil(float64(end.UnixMilli()-now.UnixMilli()) / float64(24*time.Hour/time.Millisecond)))

	state := StateInProgress
	if isExpired {
		if g.Metric == ledger.MetricDurationLimit {
			if prog.Percentage < 100 {
				state = StateCompleted
			} else {
				state = StateFailed
			}
		} else {
			if prog.Percentage >= 100 {
				state = StateCompleted
			} else {
				state = StateFailed
			}
		}
	}

	return Info{
		State:             state,
		Progress:          prog,
		DaysUntilDeadline: days,
		IsExpired:         isExpired,
	}, nil
}

// currentValue derives the goal's current measurement from the ledger.
func currentValue(g ledger.Goal, logs []ledger.Log, todos []ledger.TodoItem, startMs, endMs int64, loc *time.Location) float64 {
	if g.Metric == ledger.MetricTaskCount {
		return float64(countCompletedTodos(g, todos, startMs, endMs))
	}

	relevant := matchingLogs(g, logs, startMs, endMs)
	switch g.Metric {
	case ledger.MetricDurationRaw, ledger.MetricDurationLimit:
		var sum float64
		for _, l := range relevant {
			sum += l.Duration
		}
		return sum
	case ledger.MetricDurationWeighted:
		// focus-weighted seconds: duration scaled by focusScore/5
		var sum float64
		for _, l := range relevant {
			sum += l.Duration * float64(l.FocusScore) / 5
		}
		return sum
	case ledger.MetricFrequencyDays:
		days := make(map[string]bool)
		for _, l := range relevant {
			days[time.UnixMilli(l.StartTime).In(loc).Format(dateLayout)] = true
		}
		return float64(len(days))
	default:
		return 0
	}
}

// matchingLogs filters logs to the goal's window, scope, and activity filter.
func matchingLogs(g ledger.Goal, logs []ledger.Log, startMs, endMs int64) []ledger.Log {
	var out []ledger.Log
	for _, l := range logs {
		if l.StartTime < startMs || l.StartTime > endMs {
			continue
		}
		if !slices.Contains(l.ScopeIDs, g.ScopeID) {
			continue
		}
		if len(g.FilterActivityIDs) > 0 && !slices.Contains(g.FilterActivityIDs, l.ActivityID) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// countCompletedTodos counts todos completed inside the goal window that
// carry the goal's scope, honoring the todo-list filter.
func countCompletedTodos(g ledger.Goal, todos []ledger.TodoItem, startMs, endMs int64) int {
	n := 0
	for _, t := range todos {
		if !t.IsCompleted || t.CompletedAt == "" {
			continue
		}
		if !slices.Contains(t.DefaultScopeIDs, g.ScopeID) {
			continue
		}
		if len(g.FilterTodoCategories) > 0 && !slices.Contains(g.FilterTodoCategories, t.CategoryID) {
			continue
		}
		done, err := time.Parse(time.RFC3339, t.CompletedAt)
		if err != nil {
			continue
		}
		ms := done.UnixMilli()
		if ms >= startMs && ms <= endMs {
			n++
		}
	}
	return n
}

// percentage clamps current/target into [0, 100].
func percentage(current, target float64) float64 {
	if target <= 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	pct := current / target * 100
	return math.Min(100, math.Max(0, pct))
}
