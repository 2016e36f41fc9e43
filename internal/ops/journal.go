package ops

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"tally/internal/errors"
	"tally/internal/ledger"
)

// JournalFormat selects the journal output format.
type JournalFormat string

const (
	JournalMarkdown JournalFormat = "markdown"
	JournalHTML     JournalFormat = "html"
)

// ExportJournalInput contains parameters for the ExportJournal operation.
type ExportJournalInput struct {
	// Day is the local date to render (YYYY-MM-DD). Default: today.
	Day string

	// Format is markdown (default) or html.
	Format JournalFormat

	// Path is the destination file. Default:
	// <base>/exports/journal_<day>.<ext>. Set to "-" to skip writing and
	// only return the content.
	Path string
}

// ExportJournalOutput contains the result of the ExportJournal operation.
type ExportJournalOutput struct {
	Day     string `json:"day"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content"`
	Logs    int    `json:"logs"`
}

// ExportJournal renders one local day of the ledger as a markdown
// journal, optionally converted to HTML.
func ExportJournal(ctx context.Context, env *Env, input ExportJournalInput) (*ExportJournalOutput, error) {
	format := input.Format
	if format == "" {
		format = JournalMarkdown
	}
	if format != JournalMarkdown && format != JournalHTML {
		return nil, errors.NewInvalidRequest("format must be markdown or html")
	}

	day := input.Day
	if day == "" {
		day = env.Now().In(env.Loc).Format("2006-01-02")
	}
	dayStart, err := time.ParseInLocation("2006-01-02", day, env.Loc)
	if err != nil {
		return nil, errors.NewInvalidRequest("day must be a YYYY-MM-DD date")
	}
	startMs := dayStart.UnixMilli()
	endMs := dayStart.AddDate(0, 0, 1).UnixMilli()

	env.mu.Lock()
	var logs []ledger.Log
	for _, l := range env.Store.Logs() {
		if l.StartTime >= startMs && l.StartTime < endMs {
			logs = append(logs, l)
		}
	}
	categories := env.Store.Categories()
	todos := env.Store.Todos()
	env.mu.Unlock()

	markdown := renderJournal(day, logs, categories, todos, env.Loc)

	content := markdown
	ext := ".md"
	if format == JournalHTML {
		var buf bytes.Buffer
		md := goldmark.New(goldmark.WithExtensions(extension.GFM))
		if err := md.Convert([]byte(markdown), &buf); err != nil {
			return nil, errors.NewInternal(err)
		}
		content = buf.String()
		ext = ".html"
	}

	out := &ExportJournalOutput{Day: day, Content: content, Logs: len(logs)}

	if input.Path != "-" {
		path := input.Path
		if path == "" {
			path = filepath.Join(env.BaseDir, "exports", "journal_"+day+ext)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return nil, errors.NewInternal(err)
		}
		out.Path = path
	}

	return out, nil
}

// renderJournal builds the markdown document for one day.
func renderJournal(day string, logs []ledger.Log, categories []ledger.Category, todos []ledger.TodoItem, loc *time.Location) string {
	activityNames := make(map[string]string)
	for _, c := range categories {
		for _, a := range c.Activities {
			activityNames[a.ID] = a.Name
		}
	}
	todoTitles := make(map[string]string)
	for _, t := range todos {
		todoTitles[t.ID] = t.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Journal — %s\n\n", day)

	if len(logs) == 0 {
		b.WriteString("No time recorded.\n")
		return b.String()
	}

	var total float64
	for _, l := range logs {
		total += l.Duration
	}
	fmt.Fprintf(&b, "Total recorded: %s across %d entries.\n\n", formatDuration(total), len(logs))

	b.WriteString("| Time | Activity | Duration | Focus | Note |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, l := range logs {
		name := activityNames[l.ActivityID]
		if name == "" {
			name = l.ActivityID
		}
		start := time.UnixMilli(l.StartTime).In(loc).Format("15:04")
		end := time.UnixMilli(l.EndTime).In(loc).Format("15:04")
		focus := ""
		if l.FocusScore > 0 {
			focus = strings.Repeat("★", l.FocusScore)
		}
		note := l.Title
		if note == "" {
			note = l.Note
		}
		fmt.Fprintf(&b, "| %s–%s | %s | %s | %s | %s |\n",
			start, end, name, formatDuration(l.Duration), focus, strings.ReplaceAll(note, "|", "\\|"))
	}

	var linked []string
	for _, l := range logs {
		if l.LinkedTodoID == nil {
			continue
		}
		title := todoTitles[*l.LinkedTodoID]
		if title == "" {
			continue
		}
		line := "- " + title
		if l.ProgressIncrement > 0 {
			line = fmt.Sprintf("- %s (+%d)", title, l.ProgressIncrement)
		}
		linked = append(linked, line)
	}
	if len(linked) > 0 {
		b.WriteString("\n## Worked on\n\n")
		b.WriteString(strings.Join(linked, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}

// formatDuration renders seconds as "1h 23m" / "23m" / "45s".
func formatDuration(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
