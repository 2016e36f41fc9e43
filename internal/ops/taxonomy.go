package ops

import (
	"context"
	"strings"

	"tally/internal/errors"
	"tally/internal/ledger"
)

// SaveCategoryInput contains parameters for the SaveCategory operation.
type SaveCategoryInput struct {
	ID         string
	Name       string
	Icon       string
	ThemeColor string

	// Activities replaces the category's activity list. Activities with
	// empty ids are assigned fresh ones.
	Activities []ledger.Activity
}

// SaveCategoryOutput contains the result of the SaveCategory operation.
type SaveCategoryOutput struct {
	Category ledger.Category `json:"category"`
	Created  bool            `json:"created"`
}

// SaveCategory creates or edits a record category and its activities.
func SaveCategory(ctx context.Context, env *Env, input SaveCategoryInput) (*SaveCategoryOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	for _, a := range input.Activities {
		if strings.TrimSpace(a.Name) == "" {
			return nil, errors.NewInvalidRequest("activity name is required")
		}
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	created := input.ID == ""
	c := ledger.Category{
		ID:         input.ID,
		Name:       input.Name,
		Icon:       input.Icon,
		ThemeColor: input.ThemeColor,
		Activities: make([]ledger.Activity, len(input.Activities)),
	}
	if created {
		c.ID = ledger.NewID()
	} else if _, ok := env.Store.Category(input.ID); !ok {
		return nil, errors.NewNotFound("category", input.ID)
	}
	copy(c.Activities, input.Activities)
	for i := range c.Activities {
		if c.Activities[i].ID == "" {
			c.Activities[i].ID = ledger.NewID()
		}
	}

	env.Store.UpsertCategory(c)

	if err := env.persist(); err != nil {
		return nil, err
	}

	stored, _ := env.Store.Category(c.ID)
	return &SaveCategoryOutput{Category: stored, Created: created}, nil
}

// DeleteCategoryInput contains parameters for the DeleteCategory operation.
type DeleteCategoryInput struct {
	ID string
}

// DeleteCategoryOutput contains the result of the DeleteCategory operation.
type DeleteCategoryOutput struct {
	ID string `json:"id"`
}

// DeleteCategory removes a record category. Existing logs keep their
// category and activity ids; they become unresolvable, not invalid.
func DeleteCategory(ctx context.Context, env *Env, input DeleteCategoryInput) (*DeleteCategoryOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	if !env.Store.RemoveCategory(input.ID) {
		return nil, errors.NewNotFound("category", input.ID)
	}
	if err := env.persist(); err != nil {
		return nil, err
	}
	return &DeleteCategoryOutput{ID: input.ID}, nil
}

// SaveScopeInput contains parameters for the SaveScope operation.
type SaveScopeInput struct {
	ID          string
	Name        string
	Icon        string
	Description string
	ThemeColor  string
	Order       int
	Archived    bool
}

// SaveScopeOutput contains the result of the SaveScope operation.
type SaveScopeOutput struct {
	Scope   ledger.Scope `json:"scope"`
	Created bool         `json:"created"`
}

// SaveScope creates or edits a scope.
func SaveScope(ctx context.Context, env *Env, input SaveScopeInput) (*SaveScopeOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	created := input.ID == ""
	sc := ledger.Scope{
		ID:          input.ID,
		Name:        input.Name,
		Icon:        input.Icon,
		Description: input.Description,
		ThemeColor:  input.ThemeColor,
		Order:       input.Order,
		IsArchived:  input.Archived,
	}
	if created {
		sc.ID = ledger.NewID()
	} else if _, ok := env.Store.Scope(input.ID); !ok {
		return nil, errors.NewNotFound("scope", input.ID)
	}

	env.Store.UpsertScope(sc)

	if err := env.persist(); err != nil {
		return nil, err
	}

	stored, _ := env.Store.Scope(sc.ID)
	return &SaveScopeOutput{Scope: stored, Created: created}, nil
}

// DeleteScopeInput contains parameters for the DeleteScope operation.
type DeleteScopeInput struct {
	ID string
}

// DeleteScopeOutput contains the result of the DeleteScope operation.
type DeleteScopeOutput struct {
	ID string `json:"id"`

	// RemovedRules is the number of auto-link rules that pointed at the
	// scope and were removed with it.
	RemovedRules int `json:"removed_rules"`
}

// DeleteScope removes a scope and every auto-link rule targeting it.
// Logs keep their scope ids.
func DeleteScope(ctx context.Context, env *Env, input DeleteScopeInput) (*DeleteScopeOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	if !env.Store.RemoveScope(input.ID) {
		return nil, errors.NewNotFound("scope", input.ID)
	}
	removed := 0
	for _, r := range env.Store.Rules() {
		if r.ScopeID == input.ID {
			env.Store.RemoveRule(r.ID)
			removed++
		}
	}

	if err := env.persist(); err != nil {
		return nil, err
	}
	return &DeleteScopeOutput{ID: input.ID, RemovedRules: removed}, nil
}

// SaveTodoCategoryInput contains parameters for the SaveTodoCategory
// operation.
type SaveTodoCategoryInput struct {
	ID   string
	Name string
	Icon string
}

// SaveTodoCategoryOutput contains the result of the SaveTodoCategory
// operation.
type SaveTodoCategoryOutput struct {
	TodoCategory ledger.TodoCategory `json:"todoCategory"`
	Created      bool                `json:"created"`
}

// SaveTodoCategory creates or edits a todo list.
func SaveTodoCategory(ctx context.Context, env *Env, input SaveTodoCategoryInput) (*SaveTodoCategoryOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	created := input.ID == ""
	tc := ledger.TodoCategory{ID: input.ID, Name: input.Name, Icon: input.Icon}
	if created {
		tc.ID = ledger.NewID()
	} else if _, ok := env.Store.TodoCategory(input.ID); !ok {
		return nil, errors.NewNotFound("todo list", input.ID)
	}

	env.Store.UpsertTodoCategory(tc)

	if err := env.persist(); err != nil {
		return nil, err
	}
	return &SaveTodoCategoryOutput{TodoCategory: tc, Created: created}, nil
}

// DeleteTodoCategoryInput contains parameters for the DeleteTodoCategory
// operation.
type DeleteTodoCategoryInput struct {
	ID string
}

// DeleteTodoCategoryOutput contains the result of the DeleteTodoCategory
// operation.
type DeleteTodoCategoryOutput struct {
	ID string `json:"id"`
}

// DeleteTodoCategory removes a todo list. Todos keep their category id.
func DeleteTodoCategory(ctx context.Context, env *Env, input DeleteTodoCategoryInput) (*DeleteTodoCategoryOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	if !env.Store.RemoveTodoCategory(input.ID) {
		return nil, errors.NewNotFound("todo list", input.ID)
	}
	if err := env.persist(); err != nil {
		return nil, err
	}
	return &DeleteTodoCategoryOutput{ID: input.ID}, nil
}

// SaveRuleInput contains parameters for the SaveRule operation.
type SaveRuleInput struct {
	ID         string
	ActivityID string
	ScopeID    string
}

// SaveRuleOutput contains the result of the SaveRule operation.
type SaveRuleOutput struct {
	Rule    ledger.AutoLinkRule `json:"rule"`
	Created bool                `json:"created"`
}

// SaveRule creates or edits an auto-link rule. Rules apply at session
// start, in insertion order; several rules may target the same activity.
func SaveRule(ctx context.Context, env *Env, input SaveRuleInput) (*SaveRuleOutput, error) {
	if strings.TrimSpace(input.ActivityID) == "" {
		return nil, errors.NewInvalidRequest("activity_id is required")
	}

	env.mu.Lock()
	defer env.mu.Unlock()

	if _, ok := env.Store.Scope(input.ScopeID); !ok {
		return nil, errors.NewNotFound("scope", input.ScopeID)
	}

	created := input.ID == ""
	r := ledger.AutoLinkRule{ID: input.ID, ActivityID: input.ActivityID, ScopeID: input.ScopeID}
	if created {
		r.ID = ledger.NewID()
	}

	env.Store.UpsertRule(r)

	if err := env.persist(); err != nil {
		return nil, err
	}
	return &SaveRuleOutput{Rule: r, Created: created}, nil
}

// DeleteRuleInput contains parameters for the DeleteRule operation.
type DeleteRuleInput struct {
	ID string
}

// DeleteRuleOutput contains the result of the DeleteRule operation.
type DeleteRuleOutput struct {
	ID string `json:"id"`
}

// DeleteRule removes an auto-link rule.
func DeleteRule(ctx context.Context, env *Env, input DeleteRuleInput) (*DeleteRuleOutput, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	if !env.Store.RemoveRule(input.ID) {
		return nil, errors.NewNotFound("rule", input.ID)
	}
	if err := env.persist(); err != nil {
		return nil, err
	}
	return &DeleteRuleOutput{ID: input.ID}, nil
}
