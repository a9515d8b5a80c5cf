package widget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"morningProofAPI/internal/dailylog"
	"morningProofAPI/internal/habit"
)

func TestBuildSnapshot(t *testing.T) {
	now := time.Date(2025, time.July, 3, 7, 15, 0, 0, time.UTC)
	deadline := time.Date(2025, time.July, 3, 9, 0, 0, 0, time.UTC)

	configs := []*habit.Config{
		{HabitType: habit.HabitMadeBed, Name: "Make Your Bed", Icon: "bed.double.fill", IsEnabled: true},
		{HabitType: habit.HabitWorkout, Name: "Morning Workout", Icon: "figure.run", IsEnabled: true},
		{HabitType: habit.HabitJournaling, Name: "Journaling", Icon: "book.closed.fill", IsEnabled: false},
	}
	day := &dailylog.DayLog{
		Date:     time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC),
		Deadline: deadline,
		Completions: []*dailylog.Completion{
			{HabitType: habit.HabitMadeBed, IsCompleted: true},
			{HabitType: habit.HabitJournaling, IsCompleted: true}, // disabled, must not count
		},
	}

	snap := Build(configs, day, 5, 12, nil, now)

	assert.Equal(t, 5, snap.CurrentStreak)
	assert.Equal(t, 12, snap.LongestStreak)
	assert.Equal(t, 2, snap.TotalHabits, "disabled habits excluded")
	assert.Equal(t, 1, snap.CompletedToday)
	assert.Equal(t, deadline, snap.Deadline)
	assert.Equal(t, now, snap.GeneratedAt)

	assert.Equal(t, []HabitEntry{
		{Name: "Make Your Bed", Icon: "bed.double.fill", Completed: true},
		{Name: "Morning Workout", Icon: "figure.run", Completed: false},
	}, snap.Habits)
}

func TestBuildSnapshotNoDayLog(t *testing.T) {
	configs := []*habit.Config{
		{HabitType: habit.HabitSleep, Name: "Sleep Duration", Icon: "moon.zzz.fill", IsEnabled: true},
	}

	snap := Build(configs, nil, 0, 0, nil, time.Now())

	assert.Equal(t, 1, snap.TotalHabits)
	assert.Equal(t, 0, snap.CompletedToday)
	assert.False(t, snap.Habits[0].Completed)
	assert.True(t, snap.Deadline.IsZero())
}
