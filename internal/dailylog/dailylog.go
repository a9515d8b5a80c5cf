package dailylog

import (
	"time"

	"github.com/google/uuid"

	"morningProofAPI/internal/habit"
)

// Completion is one habit checked off on one calendar day. Immutable once
// verified except for corrective re-submission the same day.
type Completion struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	HabitType   habit.HabitType `json:"habit_type" db:"habit_type"`
	Date        time.Time       `json:"date" db:"date"`
	IsCompleted bool            `json:"is_completed" db:"is_completed"`
	Score       int             `json:"score" db:"score"`
	CompletedAt time.Time       `json:"completed_at" db:"completed_at"`

	// Verification payload. Which fields are set depends on the habit:
	// photo habits carry PhotoURL/AIScore/AIFeedback, sleep carries SleepHours,
	// workout may carry StepCount, journaling carries Note.
	PhotoURL   *string  `json:"photo_url,omitempty" db:"photo_url"`
	AIScore    *int     `json:"ai_score,omitempty" db:"ai_score"`
	AIFeedback *string  `json:"ai_feedback,omitempty" db:"ai_feedback"`
	StepCount  *int     `json:"step_count,omitempty" db:"step_count"`
	SleepHours *float64 `json:"sleep_hours,omitempty" db:"sleep_hours"`
	Note       *string  `json:"note,omitempty" db:"note"`
}

// DayLog is the per-day record: completions plus the derived morning verdict.
type DayLog struct {
	Date                     time.Time     `json:"date"`
	Completions              []*Completion `json:"completions"`
	MorningScore             int           `json:"morning_score"`
	AllCompletedBeforeCutoff bool          `json:"all_completed_before_cutoff"`
	Deadline                 time.Time     `json:"deadline"`
}

type CompleteHabitRequest struct {
	HabitType  habit.HabitType `json:"habit_type"`
	Date       string          `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	PhotoURL   *string         `json:"photo_url,omitempty"`
	StepCount  *int            `json:"step_count,omitempty"`
	SleepHours *float64        `json:"sleep_hours,omitempty"`
	Note       *string         `json:"note,omitempty"`
}

type CompleteHabitResponse struct {
	Completion     *Completion `json:"completion"`
	Day            *DayLog     `json:"day"`
	CurrentStreak  int         `json:"current_streak"`
	PerfectMorning bool        `json:"perfect_morning"`
}
