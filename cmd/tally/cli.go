package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"tally/internal/errors"
	"tally/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *ops.Env) *cli.App {
	app := &cli.App{
		Name:    "tally",
		Usage:   "Local time ledger",
		Version: Version,
		Commands: []*cli.Command{
			startCmd(env),
			stopCmd(env),
			cancelCmd(env),
			sessionsCmd(env),
			punchCmd(env),
			logsCmd(env),
			todosCmd(env),
			goalsCmd(env),
			goalCmd(env),
			journalCmd(env),
			exportCmd(env),
			importCmd(env),
			pushCmd(env),
			pullCmd(env),
			syncCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// startCmd creates the start command.
func startCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "Start a timer for an activity",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Required: true, Usage: "Category ID"},
			&cli.StringFlag{Name: "activity", Aliases: []string{"a"}, Required: true, Usage: "Activity ID"},
			&cli.StringFlag{Name: "todo", Usage: "Linked todo ID"},
			&cli.StringFlag{Name: "scopes", Usage: "Comma-separated scope IDs (skips auto-linking)"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Session title"},
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Session note"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.StartSession(context.Background(), env, ops.StartSessionInput{
				CategoryID:   c.String("category"),
				ActivityID:   c.String("activity"),
				LinkedTodoID: c.String("todo"),
				ScopeIDs:     parseIDs(c.String("scopes")),
				Title:        c.String("title"),
				Note:         c.String("note"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// stopCmd creates the stop command.
func stopCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "stop",
		Usage:     "Stop a timer and commit its logs",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Final title"},
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Final note"},
			&cli.IntFlag{Name: "focus", Aliases: []string{"f"}, Usage: "Focus score (0-5)"},
			&cli.IntFlag{Name: "increment", Aliases: []string{"i"}, Usage: "Progress units completed"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("session id is required"))
			}

			input := ops.StopSessionInput{ID: c.Args().First()}
			if c.IsSet("title") {
				title := c.String("title")
				input.Title = &title
			}
			if c.IsSet("note") {
				note := c.String("note")
				input.Note = &note
			}
			if c.IsSet("focus") {
				focus := c.Int("focus")
				input.FocusScore = &focus
			}
			if c.IsSet("increment") {
				inc := c.Int("increment")
				input.ProgressIncrement = &inc
			}

			output, err := ops.StopSession(context.Background(), env, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// cancelCmd creates the cancel command.
func cancelCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "Discard a running timer without logging anything",
		ArgsUsage: "<session-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("session id is required"))
			}
			output, err := ops.CancelSession(context.Background(), env, ops.CancelSessionInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// sessionsCmd creates the sessions command.
func sessionsCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "List running timers",
		Action: func(c *cli.Context) error {
			output, err := ops.ListSessions(context.Background(), env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// punchCmd creates the punch command.
func punchCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "punch",
		Usage: "Log time retroactively from the last log (or start of day) until now",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Required: true, Usage: "Category ID"},
			&cli.StringFlag{Name: "activity", Aliases: []string{"a"}, Required: true, Usage: "Activity ID"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Log title"},
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Log note"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.QuickPunch(context.Background(), env, ops.QuickPunchInput{
				CategoryID: c.String("category"),
				ActivityID: c.String("activity"),
				Title:      c.String("title"),
				Note:       c.String("note"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// logsCmd creates the logs command.
func logsCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "List logs with optional filters",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "day", Aliases: []string{"d"}, Usage: "Filter by local day (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "activity", Aliases: []string{"a"}, Usage: "Filter by activity ID"},
			&cli.StringFlag{Name: "todo", Usage: "Filter by linked todo ID"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListLogs(context.Background(), env, ops.ListLogsInput{
				Day:          c.String("day"),
				ActivityID:   c.String("activity"),
				LinkedTodoID: c.String("todo"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// todosCmd creates the todos command.
func todosCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "todos",
		Usage: "List todos with optional filters",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by todo category ID"},
			&cli.BoolFlag{Name: "open", Aliases: []string{"o"}, Usage: "Only incomplete todos"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListTodos(context.Background(), env, ops.ListTodosInput{
				CategoryID: c.String("category"),
				Open:       c.Bool("open"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// goalsCmd creates the goals command.
func goalsCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "goals",
		Usage: "List goals with their evaluated progress",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "Include archived goals"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListGoals(context.Background(), env, ops.ListGoalsInput{
				IncludeArchived: c.Bool("all"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// goalCmd creates the goal command.
func goalCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "goal",
		Usage:     "Show one goal's evaluated progress",
		ArgsUsage: "<goal-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("goal id is required"))
			}
			output, err := ops.GoalStatus(context.Background(), env, ops.GoalStatusInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// journalCmd creates the journal command.
func journalCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "journal",
		Usage: "Render a day's logs as a journal document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "day", Aliases: []string{"d"}, Usage: "Local day (YYYY-MM-DD, default today)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "markdown", Usage: "Output format: markdown|html"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path ('-' to print only)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportJournal(context.Background(), env, ops.ExportJournalInput{
				Day:    c.String("day"),
				Format: ops.JournalFormat(c.String("format")),
				Path:   c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			if output.Path == "" {
				fmt.Fprintln(os.Stdout, output.Content)
				return nil
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the full ledger to a snapshot file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <data-dir>/exports/tally_export_<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportSnapshot(context.Background(), env, ops.ExportSnapshotInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Replace the ledger with a validated snapshot file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Snapshot file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ImportSnapshot(context.Background(), env, ops.ImportSnapshotInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// pushCmd creates the push command.
func pushCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Upload the ledger to the configured sync directory",
		Action: func(c *cli.Context) error {
			output, err := ops.SyncUpload(context.Background(), env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// pullCmd creates the pull command.
func pullCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Replace the ledger with the synced copy",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Apply even when the local ledger is newer"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.SyncDownload(context.Background(), env, ops.SyncDownloadInput{
				Force: c.Bool("force"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// syncCmd creates the sync command.
func syncCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Compare the local ledger with the synced copy",
		Action: func(c *cli.Context) error {
			output, err := ops.SyncStatus(context.Background(), env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := err.(*errors.TallyError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseIDs splits a comma-separated string into a slice of IDs.
func parseIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		id := strings.TrimSpace(p)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
