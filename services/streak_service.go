package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"morningProofAPI/internal/streak"
)

type StreakService struct {
	db              *pgxpool.Pool
	settingsService *SettingsService
	subscriptions   *SubscriptionService
}

func NewStreakService(db *pgxpool.Pool, settingsService *SettingsService, subscriptions *SubscriptionService) *StreakService {
	return &StreakService{
		db:              db,
		settingsService: settingsService,
		subscriptions:   subscriptions,
	}
}

// Ledger returns the user's streak records ordered by date.
func (s *StreakService) Ledger(ctx context.Context, userID uuid.UUID) ([]streak.Record, error) {
	query := `
	SELECT id, user_id, date, was_completed, created_at
	FROM streak_records
	WHERE user_id = $1
	ORDER BY date
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch streak ledger: %w", err)
	}
	defer rows.Close()

	var records []streak.Record
	for rows.Next() {
		var r streak.Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.WasCompleted, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan streak record: %w", err)
		}
		records = append(records, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating streak records: %w", err)
	}

	return records, nil
}

// RecordDay upserts the ledger entry for one calendar day. The ledger is
// append-only across days but a day's verdict may flip while it is still
// open (completions added or corrected before the deadline passes).
func (s *StreakService) RecordDay(ctx context.Context, userID uuid.UUID, date time.Time, wasCompleted bool) error {
	query := `
	INSERT INTO streak_records (id, user_id, date, was_completed, created_at)
	VALUES (gen_random_uuid(), $1, $2, $3, NOW())
	ON CONFLICT (user_id, date)
	DO UPDATE SET was_completed = $3
	`

	_, err := s.db.Exec(ctx, query, userID, streak.Day(date), wasCompleted)
	if err != nil {
		return fmt.Errorf("failed to record streak day: %w", err)
	}
	return nil
}

// Recompute re-derives the streak counters from the ledger and persists
// them on the settings row. When the evaluator spends a recovery token the
// consumption timestamp is stored so the token cannot be reused this month.
func (s *StreakService) Recompute(ctx context.Context, clerkID string, userID uuid.UUID, today time.Time) (*streak.Status, error) {
	st, err := s.settingsService.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.Ledger(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Recovery is a premium allowance; the premium check fails open.
	premium := s.subscriptions.IsPremium(ctx, clerkID)
	opts := streak.Options{
		AllowRecovery:  st.AllowStreakRecovery && premium,
		RecoveryUsedAt: st.RecoveryUsedAt,
	}

	res := streak.Evaluate(records, today, opts)

	totalPerfect := 0
	var lastPerfect *time.Time
	for i := range records {
		if records[i].WasCompleted {
			totalPerfect++
			d := streak.Day(records[i].Date)
			if lastPerfect == nil || d.After(*lastPerfect) {
				lastPerfect = &d
			}
		}
	}

	longest := res.Longest
	if res.Current > longest {
		longest = res.Current
	}

	// Persist the bridged day itself so later evaluations keep honoring it.
	recoveryUsedAt := st.RecoveryUsedAt
	if res.RecoveryConsumed != nil {
		recoveryUsedAt = res.RecoveryConsumed
	}

	query := `
	UPDATE user_settings
	SET current_streak = $2,
		longest_streak = $3,
		total_perfect_mornings = $4,
		last_perfect_morning_date = $5,
		recovery_used_at = $6,
		updated_at = NOW()
	WHERE user_id = $1
	`

	_, err = s.db.Exec(ctx, query, userID, res.Current, longest, totalPerfect, lastPerfect, recoveryUsedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to persist streak counters: %w", err)
	}

	usedThisMonth := recoveryUsedAt != nil &&
		recoveryUsedAt.Year() == today.Year() && recoveryUsedAt.Month() == today.Month()

	return &streak.Status{
		CurrentStreak:          res.Current,
		LongestStreak:          longest,
		TotalPerfectMornings:   totalPerfect,
		LastPerfectMorningDate: lastPerfect,
		RecoveryAvailable:      st.AllowStreakRecovery && premium && !usedThisMonth,
		RecoveryUsedThisMonth:  usedThisMonth,
	}, nil
}

// Status recomputes and returns the current view; it is the read path for
// the streak endpoint and keeps the cached counters honest.
func (s *StreakService) Status(ctx context.Context, clerkID string) (*streak.Status, error) {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.Recompute(ctx, clerkID, userID, time.Now())
}
