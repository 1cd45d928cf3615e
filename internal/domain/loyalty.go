package domain

import "time"

// LoyaltyBalance is owned by the balance store; pricing only reads it
type LoyaltyBalance struct {
	TenantID        string
	UserID          string
	AvailablePoints int64
	LifetimePoints  int64
	UpdatedAt       time.Time
}

type TierProgress struct {
	CurrentTier     Tier    `json:"currentTier"`
	NextTier        *Tier   `json:"nextTier,omitempty"`
	NextTierPoints  *int64  `json:"nextTierPoints"`
	ProgressPercent float64 `json:"progressPercent"`
	PointsToNext    int64   `json:"pointsToNext"`
}

// PointsCommit is the delta proposed by a successful checkout
type PointsCommit struct {
	TenantID   string
	UserID     string
	CheckoutID string
	Earned     int64
	Redeemed   int64
}
