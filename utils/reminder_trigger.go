package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"morningProofAPI/internal/notification"
)

// NotificationCreator is the one method the triggers need from the
// notification service, kept as an interface to avoid the import cycle.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

// StreakAtRisk fires the pre-deadline reminder for a user whose morning is
// still incomplete. Failures are logged, never propagated: a missed
// reminder must not fail the sweep.
func StreakAtRisk(notifier NotificationCreator, userID uuid.UUID, currentStreak, minutesLeft, completed, total int) {
	bgCtx := context.Background()

	title := "Your streak is at risk"
	msg := fmt.Sprintf("%d of %d habits done. %d minutes until your deadline.", completed, total, minutesLeft)
	if currentStreak > 0 {
		title = fmt.Sprintf("Don't lose your %d-day streak", currentStreak)
	}

	req := &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.NotificationStreakRisk,
		Priority: notification.PriorityHigh,
		Title:    title,
		Message:  msg,
		Data: map[string]any{
			"current_streak": currentStreak,
			"minutes_left":   minutesLeft,
			"completed":      completed,
			"total":          total,
		},
	}

	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create streak risk notification for %s: %v", userID, err)
	}
}

// AchievementUnlocked announces a freshly unlocked achievement.
func AchievementUnlocked(notifier NotificationCreator, userID uuid.UUID, name, icon string) {
	bgCtx := context.Background()

	req := &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.NotificationAchievement,
		Priority: notification.PriorityNormal,
		Title:    "Achievement unlocked",
		Message:  name,
		Data: map[string]any{
			"name": name,
			"icon": icon,
		},
	}

	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create achievement notification for %s: %v", userID, err)
	}
}
