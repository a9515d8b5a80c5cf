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

	"morningProofAPI/internal/dailylog"
	"morningProofAPI/internal/habit"
	"morningProofAPI/middleware"
	"morningProofAPI/utils"
)

var (
	ErrUnknownHabit  = errors.New("unknown habit type")
	ErrHabitDisabled = errors.New("habit is not enabled")
	ErrFutureDate    = errors.New("cannot log a future date")
	ErrPhotoRequired = errors.New("photo proof required")
	ErrPhotoRejected = errors.New("photo verification rejected")
)

type HabitService struct {
	db              *pgxpool.Pool
	settingsService *SettingsService
	streakService   *StreakService
	verifier        *VerificationService
	notifier        utils.NotificationCreator
}

func NewHabitService(db *pgxpool.Pool, settingsService *SettingsService, streakService *StreakService, verifier *VerificationService) *HabitService {
	return &HabitService{
		db:              db,
		settingsService: settingsService,
		streakService:   streakService,
		verifier:        verifier,
	}
}

// SetNotifier wires the notification service after construction, the two
// services reference each other so one side has to be attached late.
func (s *HabitService) SetNotifier(n utils.NotificationCreator) {
	s.notifier = n
}

// ensureConfigs seeds the user's habit rows from the catalog. Existing rows
// are left untouched so user edits survive.
func (s *HabitService) ensureConfigs(ctx context.Context, userID uuid.UUID) error {
	for _, e := range habit.Catalog {
		_, err := s.db.Exec(ctx, `
			INSERT INTO habit_configs (user_id, habit_type, is_enabled, goal, display_order, updated_at)
			VALUES ($1, $2, true, $3, $4, NOW())
			ON CONFLICT (user_id, habit_type) DO NOTHING
		`, userID, e.Type, e.DefaultGoal, e.DisplayOrder)
		if err != nil {
			return fmt.Errorf("failed to seed habit config %s: %w", e.Type, err)
		}
	}
	return nil
}

// GetConfigs returns the user's habits merged with catalog metadata,
// ordered for display.
func (s *HabitService) GetConfigs(ctx context.Context, clerkID string) ([]habit.Config, error) {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureConfigs(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT habit_type, is_enabled, goal, display_order, updated_at
		FROM habit_configs
		WHERE user_id = $1
		ORDER BY display_order
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habit configs: %w", err)
	}
	defer rows.Close()

	var configs []habit.Config
	for rows.Next() {
		var c habit.Config
		if err := rows.Scan(&c.HabitType, &c.IsEnabled, &c.Goal, &c.DisplayOrder, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit config: %w", err)
		}
		if e, ok := habit.CatalogEntryFor(c.HabitType); ok {
			c.Name = e.Name
			c.Icon = e.Icon
			c.GoalUnit = e.GoalUnit
		}
		configs = append(configs, c)
	}

	return configs, rows.Err()
}

func (s *HabitService) UpdateConfig(ctx context.Context, clerkID string, req *habit.UpdateConfigRequest) (*habit.Config, error) {
	if _, ok := habit.CatalogEntryFor(req.HabitType); !ok {
		return nil, ErrUnknownHabit
	}

	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureConfigs(ctx, userID); err != nil {
		return nil, err
	}

	var c habit.Config
	err = s.db.QueryRow(ctx, `
		SELECT habit_type, is_enabled, goal, display_order
		FROM habit_configs
		WHERE user_id = $1 AND habit_type = $2
	`, userID, req.HabitType).Scan(&c.HabitType, &c.IsEnabled, &c.Goal, &c.DisplayOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habit config: %w", err)
	}

	if req.IsEnabled != nil {
		c.IsEnabled = *req.IsEnabled
	}
	if req.Goal != nil {
		if *req.Goal < 1 {
			return nil, fmt.Errorf("goal must be positive")
		}
		c.Goal = *req.Goal
	}
	if req.DisplayOrder != nil {
		c.DisplayOrder = *req.DisplayOrder
	}

	err = s.db.QueryRow(ctx, `
		UPDATE habit_configs
		SET is_enabled = $3, goal = $4, display_order = $5, updated_at = NOW()
		WHERE user_id = $1 AND habit_type = $2
		RETURNING updated_at
	`, userID, c.HabitType, c.IsEnabled, c.Goal, c.DisplayOrder).Scan(&c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update habit config: %w", err)
	}

	if e, ok := habit.CatalogEntryFor(c.HabitType); ok {
		c.Name = e.Name
		c.Icon = e.Icon
		c.GoalUnit = e.GoalUnit
	}

	// Enabling or disabling a habit changes what counts as a perfect
	// morning, so today's verdict has to be re-derived.
	if req.IsEnabled != nil {
		if _, err := s.rescoreDay(ctx, userID, s.todayFor(ctx, userID)); err != nil {
			log.Printf("Failed to rescore day after config change for %s: %v", userID, err)
		}
		if _, err := s.streakService.Recompute(ctx, clerkID, userID, time.Now()); err != nil {
			log.Printf("Failed to recompute streak after config change for %s: %v", userID, err)
		}
	}

	return &c, nil
}

// CompleteHabit records one habit as done and re-derives the whole day:
// completion row, day log verdict, streak ledger and counters, achievements.
func (s *HabitService) CompleteHabit(ctx context.Context, clerkID string, req *dailylog.CompleteHabitRequest) (*dailylog.CompleteHabitResponse, error) {
	entry, ok := habit.CatalogEntryFor(req.HabitType)
	if !ok {
		return nil, ErrUnknownHabit
	}

	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	st, err := s.settingsService.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureConfigs(ctx, userID); err != nil {
		return nil, err
	}

	var enabled bool
	err = s.db.QueryRow(ctx, `
		SELECT is_enabled FROM habit_configs WHERE user_id = $1 AND habit_type = $2
	`, userID, req.HabitType).Scan(&enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to check habit config: %w", err)
	}
	if !enabled {
		return nil, ErrHabitDisabled
	}

	loc := st.Location()
	now := time.Now().In(loc)
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
		}
		if parsed.After(date) {
			return nil, ErrFutureDate
		}
		date = parsed
	}

	if entry.NeedsPhoto && req.PhotoURL == nil && st.StrictMode {
		return nil, ErrPhotoRequired
	}

	var aiScore *int
	var aiFeedback *string
	if entry.NeedsPhoto && req.PhotoURL != nil && s.verifier != nil {
		result, err := s.verifier.VerifyPhoto(ctx, req.HabitType, *req.PhotoURL)
		if err != nil {
			// The model being down must not block the morning, accept
			// the photo unverified.
			log.Printf("Photo verification failed for %s/%s: %v", userID, req.HabitType, err)
		} else {
			if !result.Valid && st.StrictMode {
				return nil, fmt.Errorf("%w: %s", ErrPhotoRejected, result.Feedback)
			}
			aiScore = &result.Score
			aiFeedback = &result.Feedback
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	completion := &dailylog.Completion{
		UserID:     userID,
		HabitType:  req.HabitType,
		Date:       date,
		PhotoURL:   req.PhotoURL,
		AIScore:    aiScore,
		AIFeedback: aiFeedback,
		StepCount:  req.StepCount,
		SleepHours: req.SleepHours,
		Note:       req.Note,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO habit_completions
			(id, user_id, habit_type, date, is_completed, score, completed_at,
			 photo_url, ai_score, ai_feedback, step_count, sleep_hours, note)
		VALUES (gen_random_uuid(), $1, $2, $3, true, 100, NOW(), $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, habit_type, date)
		DO UPDATE SET is_completed = true, completed_at = habit_completions.completed_at,
			photo_url = COALESCE($4, habit_completions.photo_url),
			ai_score = COALESCE($5, habit_completions.ai_score),
			ai_feedback = COALESCE($6, habit_completions.ai_feedback),
			step_count = COALESCE($7, habit_completions.step_count),
			sleep_hours = COALESCE($8, habit_completions.sleep_hours),
			note = COALESCE($9, habit_completions.note)
		RETURNING id, is_completed, score, completed_at
	`, userID, req.HabitType, date,
		req.PhotoURL, aiScore, aiFeedback, req.StepCount, req.SleepHours, req.Note).
		Scan(&completion.ID, &completion.IsCompleted, &completion.Score, &completion.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	day, err := s.rescoreDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	status, err := s.streakService.Recompute(ctx, clerkID, userID, time.Now())
	if err != nil {
		return nil, err
	}

	middleware.RecordHabitCompletion(string(req.HabitType), "completed")

	earlyMinutes := -1
	if day.AllCompletedBeforeCutoff {
		var latest time.Time
		for _, c := range day.Completions {
			if c.IsCompleted && c.CompletedAt.After(latest) {
				latest = c.CompletedAt
			}
		}
		earlyMinutes = int(day.Deadline.Sub(latest).Minutes())
	}

	if unlocked, err := s.unlockAchievements(ctx, userID, status.CurrentStreak, status.TotalPerfectMornings, earlyMinutes); err != nil {
		log.Printf("Failed to unlock achievements for %s: %v", userID, err)
	} else if s.notifier != nil {
		for _, a := range unlocked {
			utils.AchievementUnlocked(s.notifier, userID, a.Name, a.Icon)
		}
	}

	return &dailylog.CompleteHabitResponse{
		Completion:     completion,
		Day:            day,
		CurrentStreak:  status.CurrentStreak,
		PerfectMorning: day.AllCompletedBeforeCutoff,
	}, nil
}

// RemoveCompletion undoes a checked-off habit for the given day and
// re-derives the day and the streak.
func (s *HabitService) RemoveCompletion(ctx context.Context, clerkID string, habitType habit.HabitType, date time.Time) (*dailylog.DayLog, error) {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	tag, err := s.db.Exec(ctx, `
		DELETE FROM habit_completions
		WHERE user_id = $1 AND habit_type = $2 AND date = $3
	`, userID, habitType, date)
	if err != nil {
		return nil, fmt.Errorf("failed to remove completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	day, err := s.rescoreDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if _, err := s.streakService.Recompute(ctx, clerkID, userID, time.Now()); err != nil {
		return nil, err
	}

	middleware.RecordHabitCompletion(string(habitType), "removed")
	return day, nil
}

// GetDay returns the full day log, deriving it fresh so the verdict always
// reflects the user's current deadline settings.
func (s *HabitService) GetDay(ctx context.Context, clerkID string, date time.Time) (*dailylog.DayLog, error) {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureConfigs(ctx, userID); err != nil {
		return nil, err
	}
	return s.rescoreDay(ctx, userID, date)
}

// rescoreDay re-derives one day's verdict from its completions and the
// user's deadline policy, persists the day log, and mirrors the verdict
// into the streak ledger.
func (s *HabitService) rescoreDay(ctx context.Context, userID uuid.UUID, date time.Time) (*dailylog.DayLog, error) {
	st, err := s.settingsService.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := st.Location()
	deadlineAt := st.Deadline.Resolve(date, loc)

	completions, err := s.dayCompletions(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	var enabledCount int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM habit_configs WHERE user_id = $1 AND is_enabled = true
	`, userID).Scan(&enabledCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count enabled habits: %w", err)
	}

	completedCount := 0
	allBeforeCutoff := enabledCount > 0
	aiSum, aiCount := 0, 0
	for _, c := range completions {
		if !c.IsCompleted {
			continue
		}
		completedCount++
		if c.CompletedAt.After(deadlineAt) {
			allBeforeCutoff = false
		}
		if c.AIScore != nil {
			aiSum += *c.AIScore
			aiCount++
		}
	}
	if completedCount < enabledCount {
		allBeforeCutoff = false
	}

	avgAI := 0.0
	if aiCount > 0 {
		avgAI = float64(aiSum) / float64(aiCount)
	}

	day := &dailylog.DayLog{
		Date:                     date,
		Completions:              completions,
		MorningScore:             utils.CalculateMorningScore(completedCount, enabledCount, allBeforeCutoff, avgAI),
		AllCompletedBeforeCutoff: allBeforeCutoff,
		Deadline:                 deadlineAt,
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO daily_logs (user_id, date, morning_score, all_completed_before_cutoff, deadline, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, date)
		DO UPDATE SET morning_score = $3, all_completed_before_cutoff = $4, deadline = $5, updated_at = NOW()
	`, userID, date, day.MorningScore, day.AllCompletedBeforeCutoff, day.Deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to persist day log: %w", err)
	}

	if err := s.streakService.RecordDay(ctx, userID, date, day.AllCompletedBeforeCutoff); err != nil {
		return nil, err
	}

	return day, nil
}

func (s *HabitService) dayCompletions(ctx context.Context, userID uuid.UUID, date time.Time) ([]*dailylog.Completion, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, habit_type, date, is_completed, score, completed_at,
			photo_url, ai_score, ai_feedback, step_count, sleep_hours, note
		FROM habit_completions
		WHERE user_id = $1 AND date = $2
	`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch day completions: %w", err)
	}
	defer rows.Close()

	var completions []*dailylog.Completion
	for rows.Next() {
		var c dailylog.Completion
		err := rows.Scan(&c.ID, &c.UserID, &c.HabitType, &c.Date, &c.IsCompleted, &c.Score, &c.CompletedAt,
			&c.PhotoURL, &c.AIScore, &c.AIFeedback, &c.StepCount, &c.SleepHours, &c.Note)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, &c)
	}

	return completions, rows.Err()
}

// unlockAchievements grants any achievement whose criteria the user now
// meets. Already-unlocked rows are skipped by the conflict clause.
func (s *HabitService) unlockAchievements(ctx context.Context, userID uuid.UUID, currentStreak, totalPerfect, earlyMinutes int) ([]unlockedAchievement, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.name, a.icon, a.criteria_type, a.criteria_value
		FROM achievements a
		WHERE a.id NOT IN (SELECT achievement_id FROM user_achievements WHERE user_id = $1)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locked achievements: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		unlockedAchievement
		criteriaType  string
		criteriaValue int
	}
	var candidates []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.criteriaType, &c.criteriaValue); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var habitTotal int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM habit_completions WHERE user_id = $1 AND is_completed = true
	`, userID).Scan(&habitTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to count completions: %w", err)
	}

	var unlocked []unlockedAchievement
	for _, c := range candidates {
		met := false
		switch c.criteriaType {
		case "streak":
			met = currentStreak >= c.criteriaValue
		case "perfect_mornings":
			met = totalPerfect >= c.criteriaValue
		case "habit_total":
			met = habitTotal >= c.criteriaValue
		case "early_finish":
			met = earlyMinutes >= c.criteriaValue
		}
		if !met {
			continue
		}
		_, err := s.db.Exec(ctx, `
			INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at)
			VALUES (gen_random_uuid(), $1, $2, NOW())
			ON CONFLICT (user_id, achievement_id) DO NOTHING
		`, userID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to unlock achievement %s: %w", c.Name, err)
		}
		unlocked = append(unlocked, c.unlockedAchievement)
	}

	return unlocked, nil
}

type unlockedAchievement struct {
	ID   uuid.UUID
	Name string
	Icon string
}

func (s *HabitService) todayFor(ctx context.Context, userID uuid.UUID) time.Time {
	st, err := s.settingsService.GetByUserID(ctx, userID)
	loc := time.UTC
	if err == nil {
		loc = st.Location()
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
