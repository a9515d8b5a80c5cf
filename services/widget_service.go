package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"morningProofAPI/internal/habit"
	"morningProofAPI/internal/widget"
)

// snapshotTTL must outlive the refresh interval so the widget never reads
// an expired key between sweeps.
const snapshotTTL = 30 * time.Minute

// WidgetService keeps a per-user snapshot in Redis for the home-screen
// widget. Writes are last-writer-wins; the widget extension only ever reads
// the latest value.
type WidgetService struct {
	client          *redis.Client
	db              *pgxpool.Pool
	settingsService *SettingsService
	habitService    *HabitService
}

func NewWidgetService(redisURL string, db *pgxpool.Pool, settingsService *SettingsService, habitService *HabitService) (*WidgetService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &WidgetService{
		client:          client,
		db:              db,
		settingsService: settingsService,
		habitService:    habitService,
	}, nil
}

func widgetKey(clerkID string) string {
	return fmt.Sprintf("widget:%s", clerkID)
}

// Refresh rebuilds the user's snapshot from the current day state and
// stores it.
func (s *WidgetService) Refresh(ctx context.Context, clerkID string) (*widget.Snapshot, error) {
	st, err := s.settingsService.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	configs, err := s.habitService.GetConfigs(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	loc := st.Location()
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	day, err := s.habitService.GetDay(ctx, clerkID, today)
	if err != nil {
		return nil, err
	}

	configPtrs := make([]*habit.Config, len(configs))
	for i := range configs {
		configPtrs[i] = &configs[i]
	}

	snap := widget.Build(configPtrs, day, st.CurrentStreak, st.LongestStreak, st.LastPerfectMorningDate, time.Now())

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal widget snapshot: %v", err)
	}
	if err := s.client.Set(ctx, widgetKey(clerkID), data, snapshotTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store widget snapshot: %v", err)
	}

	return snap, nil
}

// Get returns the cached snapshot, rebuilding on a miss.
func (s *WidgetService) Get(ctx context.Context, clerkID string) (*widget.Snapshot, error) {
	data, err := s.client.Get(ctx, widgetKey(clerkID)).Bytes()
	if err == redis.Nil {
		return s.Refresh(ctx, clerkID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read widget snapshot: %v", err)
	}

	var snap widget.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal widget snapshot: %v", err)
	}
	return &snap, nil
}

// Invalidate drops the cached snapshot so the next read rebuilds it.
func (s *WidgetService) Invalidate(ctx context.Context, clerkID string) {
	if err := s.client.Del(ctx, widgetKey(clerkID)).Err(); err != nil {
		log.Printf("Failed to invalidate widget snapshot for %s: %v", clerkID, err)
	}
}

// RefreshAll rebuilds snapshots for every user; the background worker runs
// this on a timer. One user failing must not stop the sweep.
func (s *WidgetService) RefreshAll(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx, `SELECT clerk_id FROM users`)
	if err != nil {
		return 0, fmt.Errorf("failed to list users for widget refresh: %w", err)
	}
	defer rows.Close()

	var clerkIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan clerk id: %w", err)
		}
		clerkIDs = append(clerkIDs, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	refreshed := 0
	for _, id := range clerkIDs {
		if _, err := s.Refresh(ctx, id); err != nil {
			log.Printf("Widget refresh failed for %s: %v", id, err)
			continue
		}
		refreshed++
	}

	return refreshed, nil
}

func (s *WidgetService) Close() error {
	return s.client.Close()
}
