package streak

import (
	"time"

	"github.com/google/uuid"
)

// Record is one row of the append-only daily ledger.
type Record struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Date         time.Time `json:"date" db:"date"`
	WasCompleted bool      `json:"was_completed" db:"was_completed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Status is the derived view returned to clients.
type Status struct {
	CurrentStreak          int        `json:"current_streak"`
	LongestStreak          int        `json:"longest_streak"`
	TotalPerfectMornings   int        `json:"total_perfect_mornings"`
	LastPerfectMorningDate *time.Time `json:"last_perfect_morning_date,omitempty"`
	RecoveryAvailable      bool       `json:"recovery_available"`
	RecoveryUsedThisMonth  bool       `json:"recovery_used_this_month"`
}
