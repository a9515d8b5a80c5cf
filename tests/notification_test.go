package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"morningProofAPI/internal/notification"
	"morningProofAPI/internal/user"
	"morningProofAPI/services"
	"morningProofAPI/tests/helpers"
)

func TestNotificationFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	settingsService := services.NewSettingsService(pool)
	// No FCM in tests; the inbox path works without a push provider.
	svc := services.NewNotificationService(pool, nil, settingsService)

	ctx := context.Background()
	clerkID := "user_test_notif_" + time.Now().Format("20060102150405")

	created, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    "testnotif@example.com",
		Username: "testnotif",
	})
	require.NoError(t, err)

	userID, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	// Create a notification
	notif, err := svc.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.NotificationStreakMilestone,
		Priority: notification.PriorityHigh,
		Title:    "100 day streak!",
		Message:  "One hundred perfect mornings in a row.",
		Data:     map[string]any{"days": "100"},
	})
	require.NoError(t, err)
	require.NotNil(t, notif)
	t.Logf("Created Notification ID: %s", notif.ID)

	// It shows up in the inbox, unread
	list, err := svc.List(ctx, clerkID, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, 1, list.UnreadCount)
	assert.False(t, list.Notifications[0].IsRead)

	// Mark as read
	require.NoError(t, svc.MarkRead(ctx, clerkID, notif.ID))

	list, err = svc.List(ctx, clerkID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, list.UnreadCount)

	// Disabling the type suppresses future notifications of that type
	off := false
	_, err = svc.UpdatePreferences(ctx, clerkID, &notification.UpdatePreferencesRequest{
		PushEnabled:  &off,
		EnabledTypes: map[string]bool{string(notification.NotificationStreakMilestone): false},
	})
	require.NoError(t, err)

	suppressed, err := svc.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.NotificationStreakMilestone,
		Priority: notification.PriorityNormal,
		Title:    "200 day streak!",
		Message:  "Unreal.",
	})
	require.NoError(t, err)
	assert.Nil(t, suppressed, "disabled type should not be stored")

	list, err = svc.List(ctx, clerkID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalCount)
}
