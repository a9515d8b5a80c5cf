package workers

import (
	"context"
	"log"
	"time"
)

type widgetRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

type streakRiskSweeper interface {
	SweepStreakRisk(ctx context.Context) (int, error)
}

// StartWidgetRefreshWorker rebuilds every user's widget snapshot on a timer
// so home-screen widgets stay fresh without the app having to open. Stops
// when ctx is cancelled.
func StartWidgetRefreshWorker(ctx context.Context, svc widgetRefresher, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("Widget refresh worker stopped")
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				n, err := svc.RefreshAll(runCtx)
				cancel()
				if err != nil {
					log.Printf("Widget refresh sweep failed: %v", err)
					continue
				}
				log.Printf("Widget refresh sweep completed, %d snapshots rebuilt", n)
			}
		}
	}()
}

// StartStreakRiskWorker periodically checks which users are approaching
// their deadline with an incomplete morning and fires their reminder.
func StartStreakRiskWorker(ctx context.Context, svc streakRiskSweeper, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("Streak risk worker stopped")
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				n, err := svc.SweepStreakRisk(runCtx)
				cancel()
				if err != nil {
					log.Printf("Streak risk sweep failed: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("Streak risk sweep fired %d reminders", n)
				}
			}
		}
	}()
}
