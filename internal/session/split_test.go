package session

import (
	"testing"
	"time"

	"tally/internal/ledger"
)

// mustTime builds a millisecond timestamp in the given zone.
func mustTime(loc *time.Location, y int, mo time.Month, d, h, mi int) int64 {
	return time.Date(y, mo, d, h, mi, 0, 0, loc).UnixMilli()
}

func TestCrossesMidnight(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name  string
		start int64
		end   int64
		want  bool
	}{
		{
			name:  "same day",
			start: mustTime(loc, 2024, 1, 1, 9, 0),
			end:   mustTime(loc, 2024, 1, 1, 17, 30),
			want:  false,
		},
		{
			name:  "crosses one midnight",
			start: mustTime(loc, 2024, 1, 1, 23, 30),
			end:   mustTime(loc, 2024, 1, 2, 0, 45),
			want:  true,
		},
		{
			name:  "crosses month boundary",
			start: mustTime(loc, 2024, 1, 31, 23, 0),
			end:   mustTime(loc, 2024, 2, 1, 1, 0),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CrossesMidnight(tt.start, tt.end, loc); got != tt.want {
				t.Errorf("CrossesMidnight = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitByDay_SameDay(t *testing.T) {
	loc := time.UTC
	base := ledger.Log{
		ActivityID:        "reading",
		CategoryID:        "study",
		StartTime:         mustTime(loc, 2024, 3, 10, 9, 0),
		EndTime:           mustTime(loc, 2024, 3, 10, 10, 30),
		ProgressIncrement: 3,
	}

	logs := SplitByDay(base, loc)
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	if logs[0].ID == "" {
		t.Error("split log must get a fresh id")
	}
	if logs[0].Duration != 90*60 {
		t.Errorf("Duration = %v, want %v", logs[0].Duration, 90*60)
	}
	if logs[0].ProgressIncrement != 3 {
		t.Errorf("ProgressIncrement = %d, want 3", logs[0].ProgressIncrement)
	}
}

func TestSplitByDay_CrossesOneMidnight(t *testing.T) {
	loc := time.UTC

	// 23:30 -> 00:45 next day: 30 minutes then 45 minutes
	base := ledger.Log{
		ActivityID:        "sleep",
		CategoryID:        "rest",
		StartTime:         mustTime(loc, 2024, 3, 10, 23, 30),
		EndTime:           mustTime(loc, 2024, 3, 11, 0, 45),
		ProgressIncrement: 5,
		Note:              "long night",
	}

	logs := SplitByDay(base, loc)
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}

	first, second := logs[0], logs[1]

	// first segment runs to 23:59:59.999 of its own day
	wantFirstEnd := time.Date(2024, 3, 10, 23, 59, 59, 999_000_000, loc).UnixMilli()
	if first.EndTime != wantFirstEnd {
		t.Errorf("first.EndTime = %d, want %d", first.EndTime, wantFirstEnd)
	}
	if got := int(first.Duration / 60); got != 29 { // 29m59.999s
		t.Errorf("first duration minutes = %d, want 29", got)
	}

	// second segment starts at 00:00:00.000 of the next day
	wantSecondStart := mustTime(loc, 2024, 3, 11, 0, 0)
	if second.StartTime != wantSecondStart {
		t.Errorf("second.StartTime = %d, want %d", second.StartTime, wantSecondStart)
	}
	if second.Duration != 45*60 {
		t.Errorf("second.Duration = %v, want %v", second.Duration, 45*60)
	}

	// only the first segment credits the linked todo
	if first.ProgressIncrement != 5 {
		t.Errorf("first.ProgressIncrement = %d, want 5", first.ProgressIncrement)
	}
	if second.ProgressIncrement != 0 {
		t.Errorf("second.ProgressIncrement = %d, want 0", second.ProgressIncrement)
	}

	// metadata is copied onto every segment
	if second.Note != "long night" || second.ActivityID != "sleep" {
		t.Errorf("second segment lost metadata: %+v", second)
	}
}

func TestSplitByDay_SplitInvariant(t *testing.T) {
	loc := time.UTC

	// spans three midnights -> four logs
	start := mustTime(loc, 2024, 3, 10, 22, 0)
	end := mustTime(loc, 2024, 3, 13, 6, 15)
	base := ledger.Log{
		ActivityID:        "trip",
		CategoryID:        "travel",
		StartTime:         start,
		EndTime:           end,
		ProgressIncrement: 1,
	}

	logs := SplitByDay(base, loc)
	if len(logs) != 4 {
		t.Fatalf("len(logs) = %d, want 4", len(logs))
	}

	var sum float64
	ids := make(map[string]bool)
	for i, l := range logs {
		if l.Duration <= 0 {
			t.Errorf("logs[%d].Duration = %v, want > 0", i, l.Duration)
		}
		if l.EndTime <= l.StartTime {
			t.Errorf("logs[%d] has inverted interval", i)
		}
		if i > 0 && l.ProgressIncrement != 0 {
			t.Errorf("logs[%d].ProgressIncrement = %d, want 0", i, l.ProgressIncrement)
		}
		if ids[l.ID] {
			t.Errorf("duplicate id %s", l.ID)
		}
		ids[l.ID] = true
		sum += l.Duration
	}

	// each boundary drops the single millisecond between 23:59:59.999 and
	// the next day's 00:00:00.000
	elapsed := float64(end-start) / 1000
	if diff := elapsed - sum; diff < 0 || diff > 0.004 {
		t.Errorf("durations sum to %v, elapsed %v (diff %v)", sum, elapsed, diff)
	}

	if logs[0].StartTime != start || logs[len(logs)-1].EndTime != end {
		t.Error("split does not cover the original interval")
	}
}
