package session

import (
	"time"

	"tally/internal/ledger"
)

// CrossesMidnight reports whether the interval [start, end] spans a
// local-midnight boundary. Both ends are milliseconds since epoch.
func CrossesMidnight(start, end int64, loc *time.Location) bool {
	s := time.UnixMilli(start).In(loc)
	e := time.UnixMilli(end).In(loc)
	return s.Year() != e.Year() || s.Month() != e.Month() || s.Day() != e.Day()
}

// endOfDayMillis returns 23:59:59.999 of the local day containing ts.
func endOfDayMillis(ts int64, loc *time.Location) int64 {
	t := time.UnixMilli(ts).In(loc)
	eod := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, loc)
	return eod.UnixMilli()
}

// SplitByDay splits one interval into day-bounded segments. An interval
// crossing k midnights yields k+1 logs, each with a fresh id and a duration
// matching its own sub-interval. Only the first segment keeps the base
// ProgressIncrement: later segments must not credit the linked todo again.
//
// A segment ends at 23:59:59.999 and the next one starts at 00:00:00.000 of
// the following day, so each log stays inside its own local date.
func SplitByDay(base ledger.Log, loc *time.Location) []ledger.Log {
	if !CrossesMidnight(base.StartTime, base.EndTime, loc) {
		base.ID = ledger.NewID()
		base.Duration = float64(base.EndTime-base.StartTime) / 1000
		return []ledger.Log{base}
	}

	var logs []ledger.Log
	cur := base.StartTime
	for cur < base.EndTime {
		eod := endOfDayMillis(cur, loc)
		segEnd := eod
		if base.EndTime < segEnd {
			segEnd = base.EndTime
		}

		seg := base
		seg.ID = ledger.NewID()
		seg.StartTime = cur
		seg.EndTime = segEnd
		seg.Duration = float64(segEnd-cur) / 1000
		if len(logs) > 0 {
			seg.ProgressIncrement = 0
		}
		logs = append(logs, seg)

		cur = eod + 1
	}
	return logs
}
