// Package progress keeps todo progress counters consistent with the set of
// logs that reference them. It is stateless: every call operates on the
// store passed in.
package progress

import "tally/internal/ledger"

// ApplyLogChange adjusts CompletedUnits for the todos affected by a log
// transition. oldLog is nil for a create, newLog is nil for a delete, both
// set for an edit.
//
// Only todos with IsProgress participate. When both sides link the SAME
// todo, the revert and the apply are netted into one adjustment computed
// from a single read of the counter: clamping the revert step first would
// lose part of the subsequent add. Distinct todos get their two legs
// applied (and clamped) independently.
func ApplyLogChange(store *ledger.Store, oldLog, newLog *ledger.Log) {
	oldID, oldInc := linkedIncrement(store, oldLog)
	newID, newInc := linkedIncrement(store, newLog)

	if oldID != "" && oldID == newID {
		store.AdjustTodoProgress(oldID, newInc-oldInc)
		return
	}
	if oldID != "" {
		store.AdjustTodoProgress(oldID, -oldInc)
	}
	if newID != "" {
		store.AdjustTodoProgress(newID, newInc)
	}
}

// linkedIncrement resolves the progress-todo leg of a log: the linked todo's
// id and the increment to account, or ("", 0) when the log is absent,
// unlinked, or linked to a non-progress or missing todo.
func linkedIncrement(store *ledger.Store, l *ledger.Log) (string, int) {
	if l == nil || l.LinkedTodoID == nil {
		return "", 0
	}
	t, ok := store.Todo(*l.LinkedTodoID)
	if !ok || !t.IsProgress {
		return "", 0
	}
	return t.ID, l.ProgressIncrement
}

// OrphanedImages returns the media filenames of a log that no other record
// references, assuming the log itself has already been removed from the
// store. These are the files a delete should clean up.
func OrphanedImages(store *ledger.Store, l ledger.Log) []string {
	var orphans []string
	seen := make(map[string]bool)
	for _, img := range l.Images {
		if seen[img] {
			continue
		}
		seen[img] = true
		if store.ImageRefCount(img) == 0 {
			orphans = append(orphans, img)
		}
	}
	return orphans
}
