package ledger

// Store owns every entity collection of one user's ledger. Collections are
// keyed by id and preserve insertion order. Mutations are single-writer and
// run to completion; nothing here is safe for concurrent writers, callers
// serialize access.
type Store struct {
	logs           collection[Log]
	todos          collection[TodoItem]
	categories     collection[Category]
	todoCategories collection[TodoCategory]
	scopes         collection[Scope]
	goals          collection[Goal]
	rules          collection[AutoLinkRule]
}

// collection is an insertion-order-preserving id-keyed set.
type collection[T any] struct {
	order []string
	index map[string]int
	items map[string]T
}

func newCollection[T any]() collection[T] {
	return collection[T]{
		index: make(map[string]int),
		items: make(map[string]T),
	}
}

func (c *collection[T]) upsert(id string, item T) {
	if _, ok := c.index[id]; !ok {
		c.index[id] = len(c.order)
		c.order = append(c.order, id)
	}
	c.items[id] = item
}

func (c *collection[T]) remove(id string) (T, bool) {
	var zero T
	pos, ok := c.index[id]
	if !ok {
		return zero, false
	}
	item := c.items[id]
	delete(c.items, id)
	delete(c.index, id)
	c.order = append(c.order[:pos], c.order[pos+1:]...)
	for i := pos; i < len(c.order); i++ {
		c.index[c.order[i]] = i
	}
	return item, true
}

func (c *collection[T]) get(id string) (T, bool) {
	item, ok := c.items[id]
	return item, ok
}

func (c *collection[T]) all() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *collection[T]) len() int { return len(c.order) }

// NewStore returns an empty ledger store.
func NewStore() *Store {
	return &Store{
		logs:           newCollection[Log](),
		todos:          newCollection[TodoItem](),
		categories:     newCollection[Category](),
		todoCategories: newCollection[TodoCategory](),
		scopes:         newCollection[Scope](),
		goals:          newCollection[Goal](),
		rules:          newCollection[AutoLinkRule](),
	}
}

// --- Logs ---

// UpsertLog inserts or replaces a log. Duration is normalized to
// (EndTime-StartTime) in seconds so the stored record can never disagree
// with its interval.
func (s *Store) UpsertLog(l Log) {
	if l.EndTime > l.StartTime {
		l.Duration = float64(l.EndTime-l.StartTime) / 1000
	}
	s.logs.upsert(l.ID, l)
}

// RemoveLog deletes a log, returning the removed record.
func (s *Store) RemoveLog(id string) (Log, bool) { return s.logs.remove(id) }

// Log returns the log with the given id.
func (s *Store) Log(id string) (Log, bool) { return s.logs.get(id) }

// Logs returns all logs in insertion order.
func (s *Store) Logs() []Log { return s.logs.all() }

// LogCount returns the number of logs.
func (s *Store) LogCount() int { return s.logs.len() }

// LogsLinkedTo returns all logs linked to the given todo.
func (s *Store) LogsLinkedTo(todoID string) []Log {
	var out []Log
	for _, id := range s.logs.order {
		l := s.logs.items[id]
		if l.LinkedTodoID != nil && *l.LinkedTodoID == todoID {
			out = append(out, l)
		}
	}
	return out
}

// ImageRefCount returns how many logs and todo covers reference the given
// media filename. Used to decide whether a deleted log orphaned its images.
func (s *Store) ImageRefCount(filename string) int {
	n := 0
	for _, id := range s.logs.order {
		for _, img := range s.logs.items[id].Images {
			if img == filename {
				n++
			}
		}
	}
	for _, id := range s.todos.order {
		if s.todos.items[id].CoverImage == filename {
			n++
		}
	}
	return n
}

// --- Todos ---

// UpsertTodo inserts or replaces a todo. CompletedUnits is clamped at zero;
// the store never holds a negative counter.
func (s *Store) UpsertTodo(t TodoItem) {
	if t.CompletedUnits < 0 {
		t.CompletedUnits = 0
	}
	s.todos.upsert(t.ID, t)
}

// RemoveTodo deletes a todo with history preserved: any log linked to it has
// its LinkedTodoID cleared rather than being deleted, so tracked durations
// survive. Returns the number of logs detached.
func (s *Store) RemoveTodo(id string) (detached int, removed bool) {
	if _, ok := s.todos.get(id); !ok {
		return 0, false
	}
	for _, logID := range s.logs.order {
		l := s.logs.items[logID]
		if l.LinkedTodoID != nil && *l.LinkedTodoID == id {
			l.LinkedTodoID = nil
			s.logs.items[logID] = l
			detached++
		}
	}
	s.todos.remove(id)
	return detached, true
}

// Todo returns the todo with the given id.
func (s *Store) Todo(id string) (TodoItem, bool) { return s.todos.get(id) }

// Todos returns all todos in insertion order.
func (s *Store) Todos() []TodoItem { return s.todos.all() }

// AdjustTodoProgress applies a delta to a todo's CompletedUnits, clamping at
// zero. Historical edits can legitimately over-subtract, so the clamp is a
// silent guard rather than an error. Returns the updated todo.
func (s *Store) AdjustTodoProgress(id string, delta int) (TodoItem, bool) {
	t, ok := s.todos.get(id)
	if !ok {
		return TodoItem{}, false
	}
	t.CompletedUnits += delta
	if t.CompletedUnits < 0 {
		t.CompletedUnits = 0
	}
	s.todos.upsert(id, t)
	return t, true
}

// --- Taxonomy ---

// UpsertCategory inserts or replaces a record category.
func (s *Store) UpsertCategory(c Category) { s.categories.upsert(c.ID, c) }

// RemoveCategory deletes a record category.
func (s *Store) RemoveCategory(id string) bool {
	_, ok := s.categories.remove(id)
	return ok
}

// Category returns the category with the given id.
func (s *Store) Category(id string) (Category, bool) { return s.categories.get(id) }

// Categories returns all record categories in insertion order.
func (s *Store) Categories() []Category { return s.categories.all() }

// Activity resolves an activity inside a category.
func (s *Store) Activity(categoryID, activityID string) (Activity, bool) {
	c, ok := s.categories.get(categoryID)
	if !ok {
		return Activity{}, false
	}
	for _, a := range c.Activities {
		if a.ID == activityID {
			return a, true
		}
	}
	return Activity{}, false
}

// UpsertTodoCategory inserts or replaces a todo list.
func (s *Store) UpsertTodoCategory(c TodoCategory) { s.todoCategories.upsert(c.ID, c) }

// RemoveTodoCategory deletes a todo list.
func (s *Store) RemoveTodoCategory(id string) bool {
	_, ok := s.todoCategories.remove(id)
	return ok
}

// TodoCategory returns the todo list with the given id.
func (s *Store) TodoCategory(id string) (TodoCategory, bool) { return s.todoCategories.get(id) }

// TodoCategories returns all todo lists in insertion order.
func (s *Store) TodoCategories() []TodoCategory { return s.todoCategories.all() }

// UpsertScope inserts or replaces a scope.
func (s *Store) UpsertScope(sc Scope) { s.scopes.upsert(sc.ID, sc) }

// RemoveScope deletes a scope.
func (s *Store) RemoveScope(id string) bool {
	_, ok := s.scopes.remove(id)
	return ok
}

// Scope returns the scope with the given id.
func (s *Store) Scope(id string) (Scope, bool) { return s.scopes.get(id) }

// Scopes returns all scopes in insertion order.
func (s *Store) Scopes() []Scope { return s.scopes.all() }

// --- Goals ---

// UpsertGoal inserts or replaces a goal.
func (s *Store) UpsertGoal(g Goal) {
	if g.Status == "" {
		g.Status = GoalActive
	}
	s.goals.upsert(g.ID, g)
}

// RemoveGoal deletes a goal.
func (s *Store) RemoveGoal(id string) bool {
	_, ok := s.goals.remove(id)
	return ok
}

// Goal returns the goal with the given id.
func (s *Store) Goal(id string) (Goal, bool) { return s.goals.get(id) }

// Goals returns all goals in insertion order.
func (s *Store) Goals() []Goal { return s.goals.all() }

// --- Auto-link rules ---

// UpsertRule inserts or replaces an auto-link rule.
func (s *Store) UpsertRule(r AutoLinkRule) { s.rules.upsert(r.ID, r) }

// RemoveRule deletes an auto-link rule.
func (s *Store) RemoveRule(id string) bool {
	_, ok := s.rules.remove(id)
	return ok
}

// Rules returns all auto-link rules in insertion order. Matching is a plain
// deterministic pass over this list.
func (s *Store) Rules() []AutoLinkRule { return s.rules.all() }
