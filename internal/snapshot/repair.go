package snapshot

import "tally/internal/ledger"

// Repair returns a copy of the snapshot with every missing collection
// filled with an empty array and a default version/timestamp stamped.
// It never invents log, todo, or category data, and it is idempotent:
// repairing an already-repaired snapshot changes nothing.
func Repair(snap *Snapshot, nowMillis int64) *Snapshot {
	fixed := &Snapshot{}
	if snap != nil {
		*fixed = *snap
	}

	if fixed.Logs == nil {
		fixed.Logs = []ledger.Log{}
	}
	if fixed.Todos == nil {
		fixed.Todos = []ledger.TodoItem{}
	}
	if fixed.Categories == nil {
		fixed.Categories = []ledger.Category{}
	}
	if fixed.TodoCategories == nil {
		fixed.TodoCategories = []ledger.TodoCategory{}
	}
	if fixed.Scopes == nil {
		fixed.Scopes = []ledger.Scope{}
	}
	if fixed.Goals == nil {
		fixed.Goals = []ledger.Goal{}
	}
	if fixed.AutoLinkRules == nil {
		fixed.AutoLinkRules = []ledger.AutoLinkRule{}
	}

	if fixed.Version == "" {
		fixed.Version = DefaultVersion
	}
	if fixed.Timestamp == 0 {
		fixed.Timestamp = nowMillis
	}
	return fixed
}
