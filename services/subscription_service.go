package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"morningProofAPI/internal/subscription"
)

type SubscriptionService struct {
	db           *pgxpool.Pool
	PaddleClient *paddle.SDK
}

func NewSubscriptionService(db *pgxpool.Pool, paddleClient *paddle.SDK) *SubscriptionService {
	return &SubscriptionService{db: db, PaddleClient: paddleClient}
}

// Tier resolves the user's subscription tier. Paywall errors are fail-open:
// a broken billing lookup must never block the habit flow, so any error here
// is logged and reported as premium.
func (s *SubscriptionService) Tier(ctx context.Context, clerkID string) subscription.Tier {
	sub, err := s.getByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.TierFree
		}
		log.Printf("Tier: subscription lookup failed for %s, failing open: %v", clerkID, err)
		return subscription.TierPremium
	}
	if sub.Active(time.Now()) {
		return subscription.TierPremium
	}
	return subscription.TierFree
}

// IsPremium is a convenience wrapper over Tier.
func (s *SubscriptionService) IsPremium(ctx context.Context, clerkID string) bool {
	return s.Tier(ctx, clerkID) == subscription.TierPremium
}

func (s *SubscriptionService) getByClerkID(ctx context.Context, clerkID string) (*subscription.Subscription, error) {
	query := `
	SELECT s.id, s.user_id, s.paddle_customer_id, s.paddle_subscription_id,
		s.paddle_price_id, s.status, s.current_period_end, s.created_at, s.updated_at
	FROM subscriptions s
	WHERE s.user_id = $1
	ORDER BY s.updated_at DESC
	LIMIT 1
	`

	sub := &subscription.Subscription{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PaddleCustomerID,
		&sub.PaddleSubscriptionID,
		&sub.PaddlePriceID,
		&sub.Status,
		&sub.CurrentPeriodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Upsert stores a subscription update coming from the Paddle webhook.
// Matches on paddle_subscription_id so renewals and cancellations land on
// the same row.
func (s *SubscriptionService) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	query := `
	INSERT INTO subscriptions (
		id, user_id, paddle_customer_id, paddle_subscription_id,
		paddle_price_id, status, current_period_end, created_at, updated_at
	)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, NOW(), NOW())
	ON CONFLICT (paddle_subscription_id)
	DO UPDATE SET
		status = $5,
		paddle_price_id = $4,
		current_period_end = $6,
		updated_at = NOW()
	`

	_, err := s.db.Exec(ctx, query,
		sub.UserID,
		sub.PaddleCustomerID,
		sub.PaddleSubscriptionID,
		sub.PaddlePriceID,
		sub.Status,
		sub.CurrentPeriodEnd,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}
