package settings

import (
	"time"

	"github.com/google/uuid"

	"morningProofAPI/internal/deadline"
)

// Settings is the per-user singleton: deadline policy, reminder preferences,
// derived streak counters and the app-lock configuration the client enforces.
type Settings struct {
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Timezone string    `json:"timezone" db:"timezone"`

	Deadline deadline.Config `json:"deadline"`
	// Legacy view for old clients, true exactly when the weekday/weekend
	// split is active. Derived from Deadline.Mode on read, ignored on write.
	CustomDeadlinesEnabled bool `json:"custom_deadlines_enabled"`

	RemindersEnabled      bool `json:"reminders_enabled" db:"reminders_enabled"`
	ReminderLeadMinutes   int  `json:"reminder_lead_minutes" db:"reminder_lead_minutes"`
	StrictMode            bool `json:"strict_mode" db:"strict_mode"`
	AllowStreakRecovery   bool `json:"allow_streak_recovery" db:"allow_streak_recovery"`

	CurrentStreak          int        `json:"current_streak" db:"current_streak"`
	LongestStreak          int        `json:"longest_streak" db:"longest_streak"`
	TotalPerfectMornings   int        `json:"total_perfect_mornings" db:"total_perfect_mornings"`
	LastPerfectMorningDate *time.Time `json:"last_perfect_morning_date,omitempty" db:"last_perfect_morning_date"`
	RecoveryUsedAt         *time.Time `json:"recovery_used_at,omitempty" db:"recovery_used_at"`

	AppLock AppLockConfig `json:"app_lock"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AppLockConfig mirrors what the client's screen-time blocker needs. The
// server only stores and syncs it; enforcement happens on device.
type AppLockConfig struct {
	Enabled          bool     `json:"enabled"`
	LockedAppIDs     []string `json:"locked_app_ids"`
	LockStartMinutes int      `json:"lock_start_minutes"`
}

// Defaults returns settings for a fresh user.
func Defaults(userID uuid.UUID) *Settings {
	return &Settings{
		UserID:              userID,
		Timezone:            "UTC",
		Deadline:            deadline.DefaultConfig(),
		RemindersEnabled:    true,
		ReminderLeadMinutes: 30,
		AllowStreakRecovery: true,
		AppLock:             AppLockConfig{LockedAppIDs: []string{}},
	}
}

// Location resolves the user's IANA timezone, falling back to UTC.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type UpdateRequest struct {
	Timezone            *string          `json:"timezone,omitempty"`
	Deadline            *deadline.Config `json:"deadline,omitempty"`
	RemindersEnabled    *bool            `json:"reminders_enabled,omitempty"`
	ReminderLeadMinutes *int             `json:"reminder_lead_minutes,omitempty"`
	StrictMode          *bool            `json:"strict_mode,omitempty"`
	AllowStreakRecovery *bool            `json:"allow_streak_recovery,omitempty"`
	AppLock             *AppLockConfig   `json:"app_lock,omitempty"`
}
