package ops

import (
	"context"
	"os"
	"strings"
	"testing"

	"tally/internal/errors"
)

func TestExportJournal_Markdown(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := SaveLog(ctx, env, SaveLogInput{
		CategoryID: "cat1", ActivityID: "act1",
		StartTime: fixedTime.UnixMilli(), EndTime: fixedTime.Add(time30m()).UnixMilli(),
		LinkedTodoID: "todo1", ProgressIncrement: 2,
		FocusScore: 4, Title: "chapter three",
	}); err != nil {
		t.Fatalf("SaveLog failed: %v", err)
	}

	out, err := ExportJournal(ctx, env, ExportJournalInput{Day: "2024-03-15", Path: "-"})
	if err != nil {
		t.Fatalf("ExportJournal failed: %v", err)
	}
	if out.Logs != 1 {
		t.Errorf("Logs = %d, want 1", out.Logs)
	}
	for _, want := range []string{
		"# Journal — 2024-03-15",
		"| 10:00–10:30 | Deep Work | 30m |",
		"chapter three",
		"- Read chapters (+2)",
	} {
		if !strings.Contains(out.Content, want) {
			t.Errorf("journal missing %q\n%s", want, out.Content)
		}
	}
	if out.Path != "" {
		t.Errorf("Path = %q for \"-\", want empty", out.Path)
	}
}

func TestExportJournal_EmptyDay(t *testing.T) {
	env, _ := newTestEnv(t)

	out, err := ExportJournal(context.Background(), env, ExportJournalInput{Day: "2024-03-15", Path: "-"})
	if err != nil {
		t.Fatalf("ExportJournal failed: %v", err)
	}
	if !strings.Contains(out.Content, "No time recorded.") {
		t.Errorf("empty day content = %q", out.Content)
	}
}

func TestExportJournal_HTMLAndFile(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()
	seedOneLog(t, env)

	out, err := ExportJournal(ctx, env, ExportJournalInput{Day: "2024-03-15", Format: JournalHTML})
	if err != nil {
		t.Fatalf("ExportJournal failed: %v", err)
	}
	if !strings.Contains(out.Content, "<table>") {
		t.Error("HTML output missing rendered table")
	}
	if !strings.HasSuffix(out.Path, "journal_2024-03-15.html") {
		t.Errorf("Path = %q", out.Path)
	}
	written, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("failed to read journal file: %v", err)
	}
	if string(written) != out.Content {
		t.Error("file content differs from returned content")
	}
}

func TestExportJournal_Validation(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := ExportJournal(ctx, env, ExportJournalInput{Day: "yesterday", Path: "-"})
	wantCode(t, err, errors.ErrInvalidRequest)

	_, err = ExportJournal(ctx, env, ExportJournalInput{Format: "pdf", Path: "-"})
	wantCode(t, err, errors.ErrInvalidRequest)
}
