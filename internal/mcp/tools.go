package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Schemas are advisory: handlers re-validate through the
// ops layer, which owns the real rules.

var sessionStartToolDef = mcp.NewTool("session_start",
	mcp.WithDescription("Start a timer for an activity. Scopes are auto-linked from matching rules unless given explicitly. Multiple sessions may run at once."),
	mcp.WithString("category_id", mcp.Required(), mcp.Description("Record category id")),
	mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity id inside the category")),
	mcp.WithString("linked_todo_id", mcp.Description("Todo to credit progress to on stop")),
	mcp.WithArray("scope_ids", mcp.Description("Explicit scope ids; suppresses auto-linking"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("title", mcp.Description("Session title")),
	mcp.WithString("note", mcp.Description("Free-form note")),
)

var sessionStopToolDef = mcp.NewTool("session_stop",
	mcp.WithDescription("Stop a running timer and commit it to the ledger, one log per crossed local day. Sessions of a second or less are discarded."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
	mcp.WithString("title", mcp.Description("Final title, overrides the session's")),
	mcp.WithString("note", mcp.Description("Final note, overrides the session's")),
	mcp.WithNumber("focus_score", mcp.Description("Focus score 1-5")),
	mcp.WithNumber("progress_increment", mcp.Description("Units credited to the linked todo")),
)

var sessionCancelToolDef = mcp.NewTool("session_cancel",
	mcp.WithDescription("Discard a running timer with no ledger effect. Cancelling a missing session is a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
)

var sessionListToolDef = mcp.NewTool("session_list",
	mcp.WithDescription("List running timers with elapsed seconds."),
)

var logSaveToolDef = mcp.NewTool("log_save",
	mcp.WithDescription("Create or edit a log entry. Progress counters follow the change: editing the increment on the same todo applies the net difference."),
	mcp.WithString("id", mcp.Description("Log id to edit; omit to create")),
	mcp.WithString("category_id", mcp.Required(), mcp.Description("Record category id")),
	mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity id")),
	mcp.WithNumber("start_time", mcp.Required(), mcp.Description("Start, milliseconds since epoch")),
	mcp.WithNumber("end_time", mcp.Required(), mcp.Description("End, milliseconds since epoch")),
	mcp.WithString("title", mcp.Description("Title")),
	mcp.WithString("note", mcp.Description("Note")),
	mcp.WithString("linked_todo_id", mcp.Description("Linked todo id")),
	mcp.WithArray("scope_ids", mcp.Description("Scope ids"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithNumber("progress_increment", mcp.Description("Units credited to the linked todo")),
	mcp.WithNumber("focus_score", mcp.Description("Focus score 1-5")),
)

var logDeleteToolDef = mcp.NewTool("log_delete",
	mcp.WithDescription("Delete a log entry. Its progress contribution is reverted and orphaned media files are cleaned up."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Log id")),
)

var logListToolDef = mcp.NewTool("log_list",
	mcp.WithDescription("List log entries, optionally filtered by local day, activity, or linked todo."),
	mcp.WithString("day", mcp.Description("Local date YYYY-MM-DD")),
	mcp.WithString("activity_id", mcp.Description("Filter by activity")),
	mcp.WithString("linked_todo_id", mcp.Description("Filter by linked todo")),
)

var logPunchToolDef = mcp.NewTool("log_punch",
	mcp.WithDescription("Backfill a log from the later of (last log end, start of today) up to now. Refused when a log ends in the future; a no-op when up to date."),
	mcp.WithString("category_id", mcp.Required(), mcp.Description("Record category id")),
	mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity id")),
	mcp.WithString("title", mcp.Description("Title")),
	mcp.WithString("note", mcp.Description("Note")),
)

var todoSaveToolDef = mcp.NewTool("todo_save",
	mcp.WithDescription("Create or edit a todo. Completion state and accumulated progress units survive edits."),
	mcp.WithString("id", mcp.Description("Todo id to edit; omit to create")),
	mcp.WithString("category_id", mcp.Description("Todo list id")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Title")),
	mcp.WithString("note", mcp.Description("Note")),
	mcp.WithString("linked_category_id", mcp.Description("Record category to start sessions from")),
	mcp.WithString("linked_activity_id", mcp.Description("Activity to start sessions from")),
	mcp.WithArray("default_scope_ids", mcp.Description("Scopes applied to sessions started from this todo"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithBoolean("is_progress", mcp.Description("Track progress in units")),
	mcp.WithNumber("total_amount", mcp.Description("Unit target for progress todos")),
	mcp.WithNumber("unit_amount", mcp.Description("Units per increment")),
)

var todoToggleToolDef = mcp.NewTool("todo_toggle",
	mcp.WithDescription("Flip a todo between open and completed, stamping or clearing its completion time."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Todo id")),
)

var todoDeleteToolDef = mcp.NewTool("todo_delete",
	mcp.WithDescription("Delete a todo. Logs that referenced it are detached, not deleted."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Todo id")),
)

var todoNudgeToolDef = mcp.NewTool("todo_nudge",
	mcp.WithDescription("Manually adjust a progress todo's completed units. The counter clamps at zero."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Todo id")),
	mcp.WithNumber("delta", mcp.Required(), mcp.Description("Units to add (negative to subtract)")),
)

var todoListToolDef = mcp.NewTool("todo_list",
	mcp.WithDescription("List todos, optionally filtered by list or open state."),
	mcp.WithString("category_id", mcp.Description("Filter by todo list")),
	mcp.WithBoolean("open", mcp.Description("Only incomplete todos")),
)

var goalSaveToolDef = mcp.NewTool("goal_save",
	mcp.WithDescription("Create or edit a deadline goal over a scope. Metrics: duration_raw, duration_weighted, frequency_days, task_count, duration_limit (a cap)."),
	mcp.WithString("id", mcp.Description("Goal id to edit; omit to create")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Title")),
	mcp.WithString("scope_id", mcp.Required(), mcp.Description("Scope the goal measures")),
	mcp.WithString("metric", mcp.Required(), mcp.Description("Goal metric")),
	mcp.WithNumber("target_value", mcp.Required(), mcp.Description("Target (seconds, days, or tasks depending on metric)")),
	mcp.WithString("start_date", mcp.Required(), mcp.Description("Window start, YYYY-MM-DD")),
	mcp.WithString("end_date", mcp.Required(), mcp.Description("Deadline, YYYY-MM-DD (end of day)")),
	mcp.WithArray("filter_activity_ids", mcp.Description("Narrow log metrics to these activities"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithArray("filter_todo_categories", mcp.Description("Narrow task_count to these todo lists"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("motivation", mcp.Description("Why this goal matters")),
	mcp.WithBoolean("archived", mcp.Description("Archive the goal")),
)

var goalDeleteToolDef = mcp.NewTool("goal_delete",
	mcp.WithDescription("Delete a goal definition. Logs and todos are untouched."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Goal id")),
)

var goalStatusToolDef = mcp.NewTool("goal_status",
	mcp.WithDescription("Evaluate one goal: state (in_progress, completed, failed), progress, and days until deadline. Success is judged only after the deadline."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Goal id")),
)

var goalListToolDef = mcp.NewTool("goal_list",
	mcp.WithDescription("Evaluate all goals against the current ledger."),
	mcp.WithBoolean("include_archived", mcp.Description("Include archived goals")),
)

var categorySaveToolDef = mcp.NewTool("category_save",
	mcp.WithDescription("Create or edit a record category with its activities."),
	mcp.WithString("id", mcp.Description("Category id to edit; omit to create")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Category name")),
	mcp.WithString("icon", mcp.Description("Icon")),
	mcp.WithString("theme_color", mcp.Description("Theme color")),
	mcp.WithArray("activities", mcp.Description("Activity list, each {id?, name, icon?, color?}"), mcp.Items(map[string]any{"type": "object"})),
)

var categoryDeleteToolDef = mcp.NewTool("category_delete",
	mcp.WithDescription("Delete a record category. Existing logs keep their ids."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Category id")),
)

var scopeSaveToolDef = mcp.NewTool("scope_save",
	mcp.WithDescription("Create or edit a scope (life area)."),
	mcp.WithString("id", mcp.Description("Scope id to edit; omit to create")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Scope name")),
	mcp.WithString("icon", mcp.Description("Icon")),
	mcp.WithString("description", mcp.Description("Description")),
	mcp.WithString("theme_color", mcp.Description("Theme color")),
	mcp.WithNumber("order", mcp.Description("Sort order")),
	mcp.WithBoolean("archived", mcp.Description("Archive the scope")),
)

var scopeDeleteToolDef = mcp.NewTool("scope_delete",
	mcp.WithDescription("Delete a scope and the auto-link rules targeting it. Logs keep their scope ids."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Scope id")),
)

var ruleSaveToolDef = mcp.NewTool("rule_save",
	mcp.WithDescription("Create or edit an auto-link rule: sessions started for the activity get the scope attached unless scopes were given explicitly."),
	mcp.WithString("id", mcp.Description("Rule id to edit; omit to create")),
	mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity the rule matches")),
	mcp.WithString("scope_id", mcp.Required(), mcp.Description("Scope to attach")),
)

var ruleDeleteToolDef = mcp.NewTool("rule_delete",
	mcp.WithDescription("Delete an auto-link rule."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Rule id")),
)

var todolistSaveToolDef = mcp.NewTool("todolist_save",
	mcp.WithDescription("Create or edit a todo list."),
	mcp.WithString("id", mcp.Description("List id to edit; omit to create")),
	mcp.WithString("name", mcp.Required(), mcp.Description("List name")),
	mcp.WithString("icon", mcp.Description("Icon")),
)

var todolistDeleteToolDef = mcp.NewTool("todolist_delete",
	mcp.WithDescription("Delete a todo list. Todos keep their list id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("List id")),
)

var snapshotExportToolDef = mcp.NewTool("snapshot_export",
	mcp.WithDescription("Write the full ledger to a snapshot JSON file."),
	mcp.WithString("path", mcp.Description("Destination file; default is a timestamped file in the exports directory")),
)

var snapshotImportToolDef = mcp.NewTool("snapshot_import",
	mcp.WithDescription("Replace the entire ledger with a snapshot file. Structural errors abort before anything changes; recoverable gaps are repaired."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Snapshot file to import")),
)

var journalExportToolDef = mcp.NewTool("journal_export",
	mcp.WithDescription("Render one local day of the ledger as a markdown journal, optionally as HTML."),
	mcp.WithString("day", mcp.Description("Local date YYYY-MM-DD; default today")),
	mcp.WithString("format", mcp.Description("markdown (default) or html")),
	mcp.WithString("path", mcp.Description("Destination file; \"-\" returns content only")),
)

var syncUploadToolDef = mcp.NewTool("sync_upload",
	mcp.WithDescription("Push the local ledger to the configured remote store. Refused with a reason when the snapshot is invalid or the ledger is empty."),
)

var syncDownloadToolDef = mcp.NewTool("sync_download",
	mcp.WithDescription("Pull the remote snapshot and replace the local ledger. The local state is backed up to the remote first. A newer local ledger requires force."),
	mcp.WithBoolean("force", mcp.Description("Overwrite even when local is newer")),
)

var syncStatusToolDef = mcp.NewTool("sync_status",
	mcp.WithDescription("Compare the local ledger against the remote snapshot without changing either side."),
)
