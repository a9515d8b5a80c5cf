package streak

import "time"

// Options controls how Evaluate walks the ledger.
type Options struct {
	// AllowRecovery tolerates one skipped day in the trailing run.
	AllowRecovery bool
	// RecoveryUsedAt is the missed day the last recovery token was spent
	// on. That day keeps counting as bridged on later evaluations, and at
	// most one token may be consumed per calendar month.
	RecoveryUsedAt *time.Time
}

// Result of a ledger evaluation.
type Result struct {
	Current int
	Longest int
	// RecoveryConsumed is the date of the missed day a recovery token was
	// spent on during this evaluation, nil when no token was needed.
	RecoveryConsumed *time.Time
}

// Evaluate scans a date-ordered ledger and derives the current trailing
// streak and the longest historical streak. The current streak counts
// consecutive completed days ending today or yesterday: today being absent
// from the ledger does not break the run until the day is actually over,
// but an explicit incomplete entry for today does. Recovery, when allowed
// and unconsumed this calendar month, bridges exactly one missed day. The
// longest streak never uses recovery.
func Evaluate(records []Record, today time.Time, opts Options) Result {
	today = Day(today)
	byDay := make(map[time.Time]bool, len(records))
	for _, r := range records {
		byDay[Day(r.Date)] = r.WasCompleted
	}

	res := Result{Longest: longestRun(records)}

	// Anchor on today when it has a ledger entry, otherwise yesterday.
	cursor := today
	if _, ok := byDay[cursor]; !ok {
		cursor = today.AddDate(0, 0, -1)
	}

	recoveryLeft := opts.AllowRecovery && !usedThisMonth(opts.RecoveryUsedAt, today)

	// A day already paid for with a token stays bridged forever.
	var bridged time.Time
	if opts.RecoveryUsedAt != nil {
		bridged = Day(*opts.RecoveryUsedAt)
	}

	for {
		done, ok := byDay[cursor]
		if ok && done {
			res.Current++
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}
		if cursor.Equal(bridged) {
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}
		if recoveryLeft && res.Current > 0 {
			// Bridge a single missed day, but only if the run continues
			// on its far side; a token never ends a streak on a gap.
			prev := cursor.AddDate(0, 0, -1)
			if prevDone, prevOK := byDay[Day(prev)]; prevOK && prevDone {
				missed := cursor
				res.RecoveryConsumed = &missed
				recoveryLeft = false
				cursor = prev
				continue
			}
		}
		return res
	}
}

// longestRun finds the maximum run of consecutive completed days.
func longestRun(records []Record) int {
	byDay := make(map[time.Time]bool, len(records))
	for _, r := range records {
		if r.WasCompleted {
			byDay[Day(r.Date)] = true
		}
	}

	longest := 0
	for d := range byDay {
		// Only start counting at the beginning of a run.
		if byDay[d.AddDate(0, 0, -1)] {
			continue
		}
		n := 0
		for c := d; byDay[c]; c = c.AddDate(0, 0, 1) {
			n++
		}
		if n > longest {
			longest = n
		}
	}
	return longest
}

func usedThisMonth(usedAt *time.Time, today time.Time) bool {
	if usedAt == nil {
		return false
	}
	return usedAt.Year() == today.Year() && usedAt.Month() == today.Month()
}

// Day truncates t to midnight UTC, the ledger's calendar-day key.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
