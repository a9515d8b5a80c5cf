package subscription

import "time"

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

type Subscription struct {
	ID                   string    `json:"id" db:"id"`
	UserID               string    `json:"userId" db:"user_id"`
	PaddleCustomerID     string    `json:"paddleCustomerId" db:"paddle_customer_id"`
	PaddleSubscriptionID string    `json:"paddleSubscriptionId" db:"paddle_subscription_id"`
	PaddlePriceID        string    `json:"paddlePriceId" db:"paddle_price_id"`
	Status               string    `json:"status" db:"status"`
	CurrentPeriodEnd     time.Time `json:"currentPeriodEnd" db:"current_period_end"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time `json:"updatedAt" db:"updated_at"`
}

// Active reports whether the subscription still grants premium as of now.
func (s *Subscription) Active(now time.Time) bool {
	if s == nil {
		return false
	}
	return (s.Status == "active" || s.Status == "trialing") && s.CurrentPeriodEnd.After(now)
}
