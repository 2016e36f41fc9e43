package ledger

// Log represents one immutable committed interval of tracked time.
// A Log never spans a local-midnight boundary; the session engine splits
// intervals before they are committed.
type Log struct {
	// ID is a ULID that uniquely identifies this log
	ID string `json:"id"`

	// CategoryID and ActivityID locate the log in the record taxonomy
	CategoryID string `json:"categoryId"`
	ActivityID string `json:"activityId"`

	// StartTime and EndTime are milliseconds since epoch
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`

	// Duration is EndTime-StartTime expressed in seconds
	Duration float64 `json:"duration"`

	Title string `json:"title,omitempty"`
	Note  string `json:"note,omitempty"`

	// LinkedTodoID links this log to a todo; nil when unlinked
	LinkedTodoID *string `json:"linkedTodoId,omitempty"`

	// ScopeIDs associate the log with zero or more scopes
	ScopeIDs []string `json:"scopeIds,omitempty"`

	// ProgressIncrement is the number of units this log contributed to the
	// linked todo. Only the first segment of a split interval carries it.
	ProgressIncrement int `json:"progressIncrement,omitempty"`

	// FocusScore is 1-5; zero means unset
	FocusScore int `json:"focusScore,omitempty"`

	// Images holds attached media filenames
	Images []string `json:"images,omitempty"`
}

// ActiveSession represents a timer in progress. Transient, never persisted:
// it is owned by the session engine and destroyed on stop or cancel.
type ActiveSession struct {
	ID           string   `json:"id"`
	ActivityID   string   `json:"activityId"`
	CategoryID   string   `json:"categoryId"`
	ActivityName string   `json:"activityName,omitempty"`
	StartTime    int64    `json:"startTime"`
	LinkedTodoID *string  `json:"linkedTodoId,omitempty"`
	ScopeIDs     []string `json:"scopeIds,omitempty"`
	Title        string   `json:"title,omitempty"`
	Note         string   `json:"note,omitempty"`

	// ProgressIncrement carries over to the first log on stop
	ProgressIncrement int `json:"progressIncrement,omitempty"`
	FocusScore        int `json:"focusScore,omitempty"`
}

// TodoItem is a task, optionally progress-tracked in units.
type TodoItem struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Title      string `json:"title"`

	IsCompleted bool `json:"isCompleted"`
	// CompletedAt is an RFC 3339 date-time; empty while incomplete
	CompletedAt string `json:"completedAt,omitempty"`

	// LinkedCategoryID/LinkedActivityID point at the record taxonomy so a
	// focus session can be started from the todo
	LinkedCategoryID string   `json:"linkedCategoryId,omitempty"`
	LinkedActivityID string   `json:"linkedActivityId,omitempty"`
	DefaultScopeIDs  []string `json:"defaultScopeIds,omitempty"`
	Note             string   `json:"note,omitempty"`
	CoverImage       string   `json:"coverImage,omitempty"`

	// Progress tracking. CompletedUnits is derived-but-stored: its only
	// legal mutators are the progress accountant and explicit user edits.
	// It is clamped at zero, never negative.
	IsProgress     bool `json:"isProgress,omitempty"`
	TotalAmount    int  `json:"totalAmount,omitempty"`
	UnitAmount     int  `json:"unitAmount,omitempty"`
	CompletedUnits int  `json:"completedUnits,omitempty"`
}

// GoalMetric selects how a goal's current value is derived.
type GoalMetric string

const (
	MetricDurationRaw      GoalMetric = "duration_raw"      // summed log seconds
	MetricDurationWeighted GoalMetric = "duration_weighted" // seconds weighted by focus score / 5
	MetricFrequencyDays    GoalMetric = "frequency_days"    // distinct local days with a matching log
	MetricTaskCount        GoalMetric = "task_count"        // todos completed inside the window
	MetricDurationLimit    GoalMetric = "duration_limit"    // cap: staying under the target is success
)

// GoalState is the stored lifecycle flag. Computed progress state lives in
// the goal evaluator, not here.
type GoalState string

const (
	GoalActive   GoalState = "active"
	GoalArchived GoalState = "archived"
)

// Goal is a deadline-bound target attached to a scope.
type Goal struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	ScopeID string     `json:"scopeId"`
	Metric  GoalMetric `json:"metric"`

	TargetValue float64 `json:"targetValue"`

	// StartDate and EndDate are local dates in YYYY-MM-DD form
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	// FilterActivityIDs narrows log-derived metrics to specific activities
	FilterActivityIDs []string `json:"filterActivityIds,omitempty"`
	// FilterTodoCategories narrows task_count to specific todo lists
	FilterTodoCategories []string `json:"filterTodoCategories,omitempty"`

	Status     GoalState `json:"status"`
	Motivation string    `json:"motivation,omitempty"`
}

// Activity is one trackable tag inside a category.
type Activity struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon,omitempty"`
	Color    string   `json:"color,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Category groups activities for the record taxonomy.
type Category struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon,omitempty"`
	ThemeColor string     `json:"themeColor,omitempty"`
	Activities []Activity `json:"activities"`
}

// TodoCategory is a todo list.
type TodoCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Scope is a life area, orthogonal to the category taxonomy.
type Scope struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	IsArchived  bool   `json:"isArchived"`
	Order       int    `json:"order"`
	ThemeColor  string `json:"themeColor,omitempty"`
}

// AutoLinkRule attaches a scope automatically when a session starts for the
// matching activity and no explicit scope was given.
type AutoLinkRule struct {
	ID         string `json:"id"`
	ActivityID string `json:"activityId"`
	ScopeID    string `json:"scopeId"`
}
