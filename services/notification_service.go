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

	"morningProofAPI/internal/notification"
	"morningProofAPI/utils"
)

type NotificationService struct {
	db              *pgxpool.Pool
	fcm             *notification.FCMService
	settingsService *SettingsService
}

func NewNotificationService(db *pgxpool.Pool, fcm *notification.FCMService, settingsService *SettingsService) *NotificationService {
	return &NotificationService{
		db:              db,
		fcm:             fcm,
		settingsService: settingsService,
	}
}

// CreateNotification stores the notification and pushes it to the user's
// devices when their preferences allow. Push failure never fails the create;
// the in-app inbox is the source of truth.
func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	prefs, err := s.getPreferences(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if enabled, ok := prefs.EnabledTypes[string(req.Type)]; ok && !enabled {
		return nil, nil
	}

	n := &notification.Notification{
		UserID:   req.UserID,
		Type:     req.Type,
		Priority: req.Priority,
		Title:    req.Title,
		Message:  req.Message,
		Data:     req.Data,
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, priority, title, message, is_read, data, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, false, $6, NOW())
		RETURNING id, created_at
	`, req.UserID, req.Type, req.Priority, req.Title, req.Message, req.Data).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.fcm != nil && prefs.PushEnabled {
		tokens, err := s.deviceTokens(ctx, req.UserID)
		if err != nil {
			log.Printf("Failed to load device tokens for %s: %v", req.UserID, err)
		} else if err := s.fcm.SendPush(ctx, tokens, req.Title, req.Message, req.Data); err != nil {
			log.Printf("Failed to push notification %s: %v", n.ID, err)
		}
	}

	return n, nil
}

// List returns the user's notifications, newest first, with unread and
// total counts for the badge.
func (s *NotificationService) List(ctx context.Context, clerkID string, page, pageSize int) (*notification.NotificationListResponse, error) {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, type, priority, title, message, is_read, data, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Title, &n.Message, &n.IsRead, &n.Data, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var unread, total int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE is_read = false), COUNT(*)
		FROM notifications
		WHERE user_id = $1
	`, userID).Scan(&unread, &total)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		TotalCount:    total,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, clerkID string, notificationID uuid.UUID) error {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, clerkID string) error {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *NotificationService) GetPreferences(ctx context.Context, clerkID string) (*notification.Preferences, error) {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.getPreferences(ctx, userID)
}

func (s *NotificationService) getPreferences(ctx context.Context, userID uuid.UUID) (*notification.Preferences, error) {
	var p notification.Preferences
	err := s.db.QueryRow(ctx, `
		SELECT user_id, push_enabled, enabled_types, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.PushEnabled, &p.EnabledTypes, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &notification.Preferences{
			UserID:       userID,
			PushEnabled:  true,
			EnabledTypes: map[string]bool{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification preferences: %w", err)
	}
	if p.EnabledTypes == nil {
		p.EnabledTypes = map[string]bool{}
	}
	return &p, nil
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, clerkID string, req *notification.UpdatePreferencesRequest) (*notification.Preferences, error) {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	current, err := s.getPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.PushEnabled != nil {
		current.PushEnabled = *req.PushEnabled
	}
	for k, v := range req.EnabledTypes {
		current.EnabledTypes[k] = v
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO notification_preferences (user_id, push_enabled, enabled_types, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET push_enabled = $2, enabled_types = $3, updated_at = NOW()
		RETURNING updated_at
	`, userID, current.PushEnabled, current.EnabledTypes).Scan(&current.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification preferences: %w", err)
	}

	return current, nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("device token is required")
	}

	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO device_tokens (id, user_id, token, platform, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW())
		ON CONFLICT (token)
		DO UPDATE SET user_id = $1, platform = $3
	`, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) UnregisterDevice(ctx context.Context, clerkID string, token string) error {
	userID, err := s.settingsService.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		DELETE FROM device_tokens WHERE user_id = $1 AND token = $2
	`, userID, token)
	if err != nil {
		return fmt.Errorf("failed to unregister device: %w", err)
	}
	return nil
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, token, platform, created_at
		FROM device_tokens
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// SweepStreakRisk finds users inside their reminder window whose morning is
// still incomplete and fires the pre-deadline warning. At most one warning
// per user per day; the background worker calls this every few minutes.
func (s *NotificationService) SweepStreakRisk(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id FROM user_settings WHERE reminders_enabled = true
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to list reminder candidates: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan reminder candidate: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	fired := 0
	for _, userID := range userIDs {
		st, err := s.settingsService.GetByUserID(ctx, userID)
		if err != nil {
			log.Printf("Streak risk sweep: failed to load settings for %s: %v", userID, err)
			continue
		}

		loc := st.Location()
		now := time.Now().In(loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		deadlineAt := st.Deadline.Resolve(today, loc)

		minutesLeft := int(deadlineAt.Sub(now).Minutes())
		if minutesLeft < 0 || minutesLeft > st.ReminderLeadMinutes {
			continue
		}

		var enabled, completed int
		err = s.db.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM habit_configs WHERE user_id = $1 AND is_enabled = true),
				(SELECT COUNT(*) FROM habit_completions WHERE user_id = $1 AND date = $2 AND is_completed = true)
		`, userID, today).Scan(&enabled, &completed)
		if err != nil {
			log.Printf("Streak risk sweep: failed to count habits for %s: %v", userID, err)
			continue
		}
		if enabled == 0 || completed >= enabled {
			continue
		}

		var alreadySent bool
		err = s.db.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM notifications
				WHERE user_id = $1 AND type = $2 AND created_at >= $3
			)
		`, userID, notification.NotificationStreakRisk, today).Scan(&alreadySent)
		if err != nil || alreadySent {
			continue
		}

		utils.StreakAtRisk(s, userID, st.CurrentStreak, minutesLeft, completed, enabled)
		fired++
	}

	return fired, nil
}
