// Package promotion evaluates a location's promotion settings: happy hour,
// loyalty accrual and redemption, and tier classification. Every function is
// pure; the caller supplies the clock and timezone.
package promotion

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

type tierStep struct {
	tier       domain.Tier
	multiplier int64
}

// tierLadder is ordered from highest to lowest. A customer belongs to the first
// step whose multiplier*rewardThreshold they have reached.
var tierLadder = []tierStep{
	{tier: domain.TierPlatinum, multiplier: 10},
	{tier: domain.TierGold, multiplier: 5},
	{tier: domain.TierSilver, multiplier: 2},
	{tier: domain.TierBronze, multiplier: 0},
}

// IsHappyHourActive reports whether now, seen in loc, falls on a configured day
// and inside [startTime, endTime] at minute resolution. A nil loc means UTC.
// A window whose end is before its start runs past midnight: it opens on a
// configured day and the hours after midnight belong to that same day.
func IsHappyHourActive(settings domain.PromotionSettings, now time.Time, loc *time.Location) bool {
	hh := settings.HappyHour
	if !hh.Enabled {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	start, end, err := hh.Window()
	if err != nil {
		return false
	}
	minute := local.Hour()*60 + local.Minute()

	if start <= end {
		return hh.ActiveOn(local.Weekday()) && minute >= start && minute <= end
	}

	if minute >= start {
		return hh.ActiveOn(local.Weekday())
	}
	if minute <= end {
		return hh.ActiveOn(local.AddDate(0, 0, -1).Weekday())
	}
	return false
}

// HappyHourDiscount is subtotal*discountPercent/100 while happy hour is active, else zero
func HappyHourDiscount(subtotal decimal.Decimal, settings domain.PromotionSettings, now time.Time, loc *time.Location) decimal.Decimal {
	if !IsHappyHourActive(settings, now, loc) {
		return decimal.Zero
	}
	return subtotal.Mul(settings.HappyHour.DiscountPercent).Div(hundred)
}

// PointsEarned truncates orderTotal*pointsPerDollar. Fractional points are never granted.
func PointsEarned(orderTotal decimal.Decimal, program domain.LoyaltyProgram) int64 {
	if !program.Enabled || !orderTotal.IsPositive() {
		return 0
	}
	return orderTotal.Mul(program.PointsPerDollar).Floor().IntPart()
}

// PointsValue converts points to a dollar amount: points / rewardThreshold
func PointsValue(points int64, program domain.LoyaltyProgram) (decimal.Decimal, error) {
	if !program.Enabled || points <= 0 {
		return decimal.Zero, nil
	}
	if program.RewardThreshold <= 0 {
		return decimal.Zero, fmt.Errorf("%w: reward threshold %d", domain.ErrConfigurationInvalid, program.RewardThreshold)
	}
	return decimal.NewFromInt(points).Div(decimal.NewFromInt(program.RewardThreshold)), nil
}

// Tier classifies totalPoints against the ladder. Reaching a boundary exactly
// promotes to the higher tier.
func Tier(totalPoints int64, program domain.LoyaltyProgram) domain.Tier {
	if !program.Enabled {
		return domain.TierBronze
	}
	return tierLadder[stepIndex(totalPoints, program.RewardThreshold)].tier
}

// Progress reports the current tier and how far the customer is from the next one
func Progress(totalPoints int64, program domain.LoyaltyProgram) (domain.TierProgress, error) {
	if !program.Enabled {
		return domain.TierProgress{CurrentTier: domain.TierBronze}, nil
	}
	if program.RewardThreshold <= 0 {
		return domain.TierProgress{}, fmt.Errorf("%w: reward threshold %d", domain.ErrConfigurationInvalid, program.RewardThreshold)
	}

	i := stepIndex(totalPoints, program.RewardThreshold)
	progress := domain.TierProgress{CurrentTier: tierLadder[i].tier}
	if i == 0 {
		progress.ProgressPercent = 100
		return progress, nil
	}

	next := tierLadder[i-1]
	nextPoints := next.multiplier * program.RewardThreshold
	progress.NextTier = &next.tier
	progress.NextTierPoints = &nextPoints

	pct := float64(totalPoints) / float64(nextPoints) * 100
	progress.ProgressPercent = min(100, max(0, pct))
	progress.PointsToNext = max(0, nextPoints-totalPoints)
	return progress, nil
}

func stepIndex(totalPoints, threshold int64) int {
	for i, step := range tierLadder {
		if totalPoints >= step.multiplier*threshold {
			return i
		}
	}
	return len(tierLadder) - 1
}
