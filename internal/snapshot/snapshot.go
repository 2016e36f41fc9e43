// Package snapshot defines the full-ledger exchange format and the
// reconciliation primitives for it: validate, repair, compare, and the
// upload-safety gate. A snapshot is the unit of cross-device exchange and
// is never partially applied.
package snapshot

import (
	"encoding/json"

	"tally/internal/ledger"
)

// DefaultVersion is stamped by Repair when a snapshot carries no version.
const DefaultVersion = "1.0.0"

// Snapshot is the self-describing exported state of one ledger. Timestamp
// is milliseconds since epoch and is the single comparison key for
// last-write-wins reconciliation.
type Snapshot struct {
	Version   string `json:"version,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`

	Logs           []ledger.Log          `json:"logs"`
	Todos          []ledger.TodoItem     `json:"todos"`
	Categories     []ledger.Category     `json:"categories"`
	TodoCategories []ledger.TodoCategory `json:"todoCategories"`
	Scopes         []ledger.Scope        `json:"scopes"`
	Goals          []ledger.Goal         `json:"goals"`
	AutoLinkRules  []ledger.AutoLinkRule `json:"autoLinkRules"`
}

// Capture exports the store's full state as a snapshot stamped with the
// given version and timestamp.
func Capture(s *ledger.Store, version string, timestamp int64) *Snapshot {
	return &Snapshot{
		Version:        version,
		Timestamp:      timestamp,
		Logs:           s.Logs(),
		Todos:          s.Todos(),
		Categories:     s.Categories(),
		TodoCategories: s.TodoCategories(),
		Scopes:         s.Scopes(),
		Goals:          s.Goals(),
		AutoLinkRules:  s.Rules(),
	}
}

// Restore builds a fresh store from a snapshot. The caller swaps the result
// in atomically; readers never observe a half-merged ledger.
func Restore(snap *Snapshot) *ledger.Store {
	s := ledger.NewStore()
	for _, c := range snap.Categories {
		s.UpsertCategory(c)
	}
	for _, c := range snap.TodoCategories {
		s.UpsertTodoCategory(c)
	}
	for _, sc := range snap.Scopes {
		s.UpsertScope(sc)
	}
	for _, t := range snap.Todos {
		s.UpsertTodo(t)
	}
	for _, l := range snap.Logs {
		s.UpsertLog(l)
	}
	for _, g := range snap.Goals {
		s.UpsertGoal(g)
	}
	for _, r := range snap.AutoLinkRules {
		s.UpsertRule(r)
	}
	return s
}

// Encode marshals a snapshot to its wire form.
func Encode(snap *Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// Decode unmarshals a snapshot from its wire form without validating it;
// run Validate on the raw bytes first when the source is untrusted.
func Decode(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
