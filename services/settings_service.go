package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"morningProofAPI/internal/deadline"
	"morningProofAPI/internal/settings"
)

type SettingsService struct {
	db *pgxpool.Pool
}

func NewSettingsService(db *pgxpool.Pool) *SettingsService {
	return &SettingsService{db: db}
}

const settingsColumns = `
	user_id, timezone, deadline_mode, uniform_minutes, weekday_minutes, weekend_minutes,
	per_day_minutes, reminders_enabled, reminder_lead_minutes, strict_mode,
	allow_streak_recovery, current_streak, longest_streak, total_perfect_mornings,
	last_perfect_morning_date, recovery_used_at, app_lock_enabled, locked_app_ids,
	lock_start_minutes, created_at, updated_at
`

func (s *SettingsService) userIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found: %w", err)
	}
	return userID, nil
}

// GetByClerkID loads the settings singleton, creating defaults on first use.
func (s *SettingsService) GetByClerkID(ctx context.Context, clerkID string) (*settings.Settings, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.GetByUserID(ctx, userID)
}

func (s *SettingsService) GetByUserID(ctx context.Context, userID uuid.UUID) (*settings.Settings, error) {
	query := `SELECT ` + settingsColumns + ` FROM user_settings WHERE user_id = $1`

	st, err := s.scanSettings(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.createDefaults(ctx, userID)
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return st, nil
}

func (s *SettingsService) createDefaults(ctx context.Context, userID uuid.UUID) (*settings.Settings, error) {
	st := settings.Defaults(userID)

	query := `
	INSERT INTO user_settings (
		user_id, timezone, deadline_mode, uniform_minutes, weekday_minutes, weekend_minutes,
		per_day_minutes, reminders_enabled, reminder_lead_minutes, strict_mode,
		allow_streak_recovery, app_lock_enabled, locked_app_ids, lock_start_minutes,
		created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	ON CONFLICT (user_id) DO NOTHING
	`

	_, err := s.db.Exec(ctx, query,
		userID,
		st.Timezone,
		int(st.Deadline.Mode),
		st.Deadline.UniformMinutes,
		st.Deadline.WeekdayMinutes,
		st.Deadline.WeekendMinutes,
		st.Deadline.PerDayMinutes[:],
		st.RemindersEnabled,
		st.ReminderLeadMinutes,
		st.StrictMode,
		st.AllowStreakRecovery,
		st.AppLock.Enabled,
		st.AppLock.LockedAppIDs,
		st.AppLock.LockStartMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}

	query = `SELECT ` + settingsColumns + ` FROM user_settings WHERE user_id = $1`
	return s.scanSettings(s.db.QueryRow(ctx, query, userID))
}

// Update applies a partial patch. The legacy custom_deadlines_enabled flag
// is never read from the request: the deadline mode is the source of truth.
func (s *SettingsService) Update(ctx context.Context, clerkID string, req *settings.UpdateRequest) (*settings.Settings, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	st, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, fmt.Errorf("invalid timezone %q", *req.Timezone)
		}
		st.Timezone = *req.Timezone
	}
	if req.Deadline != nil {
		if err := req.Deadline.Validate(); err != nil {
			return nil, err
		}
		st.Deadline = *req.Deadline
	}
	if req.RemindersEnabled != nil {
		st.RemindersEnabled = *req.RemindersEnabled
	}
	if req.ReminderLeadMinutes != nil {
		if *req.ReminderLeadMinutes < 0 || *req.ReminderLeadMinutes > 240 {
			return nil, fmt.Errorf("reminder lead minutes %d out of range [0, 240]", *req.ReminderLeadMinutes)
		}
		st.ReminderLeadMinutes = *req.ReminderLeadMinutes
	}
	if req.StrictMode != nil {
		st.StrictMode = *req.StrictMode
	}
	if req.AllowStreakRecovery != nil {
		st.AllowStreakRecovery = *req.AllowStreakRecovery
	}
	if req.AppLock != nil {
		if req.AppLock.LockStartMinutes < 0 || req.AppLock.LockStartMinutes >= 24*60 {
			return nil, fmt.Errorf("lock start minutes %d out of range [0, 1440)", req.AppLock.LockStartMinutes)
		}
		st.AppLock = *req.AppLock
	}

	query := `
	UPDATE user_settings
	SET timezone = $2,
		deadline_mode = $3,
		uniform_minutes = $4,
		weekday_minutes = $5,
		weekend_minutes = $6,
		per_day_minutes = $7,
		reminders_enabled = $8,
		reminder_lead_minutes = $9,
		strict_mode = $10,
		allow_streak_recovery = $11,
		app_lock_enabled = $12,
		locked_app_ids = $13,
		lock_start_minutes = $14,
		updated_at = NOW()
	WHERE user_id = $1
	`

	_, err = s.db.Exec(ctx, query,
		userID,
		st.Timezone,
		int(st.Deadline.Mode),
		st.Deadline.UniformMinutes,
		st.Deadline.WeekdayMinutes,
		st.Deadline.WeekendMinutes,
		st.Deadline.PerDayMinutes[:],
		st.RemindersEnabled,
		st.ReminderLeadMinutes,
		st.StrictMode,
		st.AllowStreakRecovery,
		st.AppLock.Enabled,
		st.AppLock.LockedAppIDs,
		st.AppLock.LockStartMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	return s.GetByUserID(ctx, userID)
}

// ResetData wipes every tracked record for the user and restores default
// settings. Only a full data reset removes daily logs.
func (s *SettingsService) ResetData(ctx context.Context, clerkID string) error {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{
		"habit_completions", "daily_logs", "streak_records",
		"user_achievements", "notifications", "habit_configs",
		"user_settings",
	} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table), userID); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	log.Printf("ResetData: wiped tracking data for user %s", userID)

	_, err = s.createDefaults(ctx, userID)
	return err
}

func (s *SettingsService) scanSettings(row pgx.Row) (*settings.Settings, error) {
	st := &settings.Settings{}
	var mode int
	var perDay []int

	err := row.Scan(
		&st.UserID,
		&st.Timezone,
		&mode,
		&st.Deadline.UniformMinutes,
		&st.Deadline.WeekdayMinutes,
		&st.Deadline.WeekendMinutes,
		&perDay,
		&st.RemindersEnabled,
		&st.ReminderLeadMinutes,
		&st.StrictMode,
		&st.AllowStreakRecovery,
		&st.CurrentStreak,
		&st.LongestStreak,
		&st.TotalPerfectMornings,
		&st.LastPerfectMorningDate,
		&st.RecoveryUsedAt,
		&st.AppLock.Enabled,
		&st.AppLock.LockedAppIDs,
		&st.AppLock.LockStartMinutes,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	st.Deadline.Mode = deadline.Mode(mode)
	copy(st.Deadline.PerDayMinutes[:], perDay)
	st.CustomDeadlinesEnabled = st.Deadline.CustomDeadlinesEnabled()
	return st, nil
}
