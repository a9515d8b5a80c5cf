package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ledger(start time.Time, completed ...bool) []Record {
	recs := make([]Record, len(completed))
	for i, c := range completed {
		recs[i] = Record{Date: start.AddDate(0, 0, i), WasCompleted: c}
	}
	return recs
}

func TestEvaluateTrailingRun(t *testing.T) {
	today := day(2025, time.July, 3)

	// true,true,false ending today: streak broken.
	recs := ledger(day(2025, time.July, 1), true, true, false)
	res := Evaluate(recs, today, Options{})
	assert.Equal(t, 0, res.Current)
	assert.Equal(t, 2, res.Longest)

	// false,true,true ending today: trailing two count.
	recs = ledger(day(2025, time.July, 1), false, true, true)
	res = Evaluate(recs, today, Options{})
	assert.Equal(t, 2, res.Current)
	assert.Equal(t, 2, res.Longest)
}

func TestEvaluateTodayNotYetLogged(t *testing.T) {
	// Run ended yesterday and today has no entry: the streak holds, the
	// morning simply is not over yet.
	today := day(2025, time.July, 4)
	recs := ledger(day(2025, time.July, 1), true, true, true)

	res := Evaluate(recs, today, Options{})
	assert.Equal(t, 3, res.Current)
}

func TestEvaluateGapTwoDaysBack(t *testing.T) {
	// Last completion two days ago: no anchor on today or yesterday.
	today := day(2025, time.July, 5)
	recs := ledger(day(2025, time.July, 1), true, true, true)

	res := Evaluate(recs, today, Options{})
	assert.Equal(t, 0, res.Current)
	assert.Equal(t, 3, res.Longest)
}

func TestEvaluateRecoveryBridgesOneMiss(t *testing.T) {
	today := day(2025, time.July, 5)
	// completed 1,2,3, missed 4, completed 5 (today).
	recs := ledger(day(2025, time.July, 1), true, true, true, false, true)

	res := Evaluate(recs, today, Options{})
	assert.Equal(t, 1, res.Current, "without recovery the run restarts")

	res = Evaluate(recs, today, Options{AllowRecovery: true})
	assert.Equal(t, 4, res.Current)
	if assert.NotNil(t, res.RecoveryConsumed) {
		assert.Equal(t, day(2025, time.July, 4), *res.RecoveryConsumed)
	}
}

func TestEvaluateRecoveryOnlyOnce(t *testing.T) {
	today := day(2025, time.July, 7)
	// Two separate misses: recovery bridges only the first one reached.
	recs := ledger(day(2025, time.July, 1), true, false, true, false, true, true, true)

	res := Evaluate(recs, today, Options{AllowRecovery: true})
	assert.Equal(t, 4, res.Current)
}

func TestEvaluateRecoveryExhaustedThisMonth(t *testing.T) {
	today := day(2025, time.July, 5)
	recs := ledger(day(2025, time.July, 1), true, true, true, false, true)

	used := day(2025, time.July, 2)
	res := Evaluate(recs, today, Options{AllowRecovery: true, RecoveryUsedAt: &used})
	assert.Equal(t, 1, res.Current, "token already spent this month")
	assert.Nil(t, res.RecoveryConsumed)

	// A token spent last month does not block this month.
	usedLastMonth := day(2025, time.June, 20)
	res = Evaluate(recs, today, Options{AllowRecovery: true, RecoveryUsedAt: &usedLastMonth})
	assert.Equal(t, 4, res.Current)
}

func TestEvaluateRecoveryNeverEndsOnGap(t *testing.T) {
	// Missed yesterday and nothing before it: a token must not be wasted
	// turning a dead run into a one-day bridge to nowhere.
	today := day(2025, time.July, 3)
	recs := ledger(day(2025, time.July, 2), false, true)

	res := Evaluate(recs, today, Options{AllowRecovery: true})
	assert.Equal(t, 1, res.Current)
	assert.Nil(t, res.RecoveryConsumed)
}

func TestEvaluateExplicitMissTodayBreaksRun(t *testing.T) {
	// An incomplete entry for today is a verdict, not a pending morning:
	// the run is over even with a token available.
	today := day(2025, time.July, 3)
	recs := ledger(day(2025, time.July, 1), true, true, false)

	res := Evaluate(recs, today, Options{AllowRecovery: true})
	assert.Equal(t, 0, res.Current)
	assert.Nil(t, res.RecoveryConsumed)
}

func TestEvaluateRecoverySurvivesReEvaluation(t *testing.T) {
	today := day(2025, time.July, 5)
	recs := ledger(day(2025, time.July, 1), true, true, true, false, true)

	first := Evaluate(recs, today, Options{AllowRecovery: true})
	assert.Equal(t, 4, first.Current)

	// Re-evaluating with the bridged day recorded as spent must reproduce
	// the same streak without consuming another token.
	res := Evaluate(recs, today, Options{AllowRecovery: true, RecoveryUsedAt: first.RecoveryConsumed})
	assert.Equal(t, 4, res.Current)
	assert.Nil(t, res.RecoveryConsumed)

	// Even after premium lapses the paid-for day stays bridged.
	res = Evaluate(recs, today, Options{AllowRecovery: false, RecoveryUsedAt: first.RecoveryConsumed})
	assert.Equal(t, 4, res.Current)
	assert.Nil(t, res.RecoveryConsumed)
}

func TestEvaluateLongestIgnoresRecovery(t *testing.T) {
	today := day(2025, time.July, 9)
	recs := ledger(day(2025, time.July, 1), true, true, true, true, false, true, true, true, true)

	res := Evaluate(recs, today, Options{AllowRecovery: true})
	assert.Equal(t, 8, res.Current, "recovery bridges the current run")
	assert.Equal(t, 4, res.Longest, "longest counts raw consecutive days only")
}

func TestEvaluateEmptyLedger(t *testing.T) {
	res := Evaluate(nil, day(2025, time.July, 1), Options{AllowRecovery: true})
	assert.Equal(t, 0, res.Current)
	assert.Equal(t, 0, res.Longest)
	assert.Nil(t, res.RecoveryConsumed)
}

func TestDayNormalizes(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	ts := time.Date(2025, time.July, 3, 23, 45, 12, 99, loc)
	assert.Equal(t, day(2025, time.July, 3), Day(ts))
}
