package widget

import (
	"time"

	"morningProofAPI/internal/dailylog"
	"morningProofAPI/internal/habit"
)

// Snapshot is the last-writer-wins payload the home-screen widget and live
// activity read from the shared store. It is a point-in-time copy, not a
// stream: whatever was written most recently is what the widget shows.
type Snapshot struct {
	CurrentStreak          int          `json:"current_streak"`
	LongestStreak          int          `json:"longest_streak"`
	CompletedToday         int          `json:"completed_today"`
	TotalHabits            int          `json:"total_habits"`
	Deadline               time.Time    `json:"deadline"`
	LastPerfectMorningDate *time.Time   `json:"last_perfect_morning_date,omitempty"`
	Habits                 []HabitEntry `json:"habits"`
	GeneratedAt            time.Time    `json:"generated_at"`
}

type HabitEntry struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Completed bool   `json:"completed"`
}

// Build assembles a snapshot from the enabled habit configs and today's log.
// Disabled habits never appear; completion state comes from the day's log.
func Build(configs []*habit.Config, day *dailylog.DayLog, currentStreak, longestStreak int, lastPerfect *time.Time, now time.Time) *Snapshot {
	done := make(map[habit.HabitType]bool)
	if day != nil {
		for _, c := range day.Completions {
			if c.IsCompleted {
				done[c.HabitType] = true
			}
		}
	}

	snap := &Snapshot{
		CurrentStreak:          currentStreak,
		LongestStreak:          longestStreak,
		LastPerfectMorningDate: lastPerfect,
		Habits:                 []HabitEntry{},
		GeneratedAt:            now,
	}
	if day != nil {
		snap.Deadline = day.Deadline
	}

	for _, cfg := range configs {
		if !cfg.IsEnabled {
			continue
		}
		completed := done[cfg.HabitType]
		snap.Habits = append(snap.Habits, HabitEntry{
			Name:      cfg.Name,
			Icon:      cfg.Icon,
			Completed: completed,
		})
		snap.TotalHabits++
		if completed {
			snap.CompletedToday++
		}
	}

	return snap
}
