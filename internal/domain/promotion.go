package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// HappyHour is a recurring weekday window with a percentage discount
type HappyHour struct {
	Enabled         bool            `json:"enabled"`
	Days            []string        `json:"days"`
	StartTime       string          `json:"startTime"`
	EndTime         string          `json:"endTime"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// ActiveOn reports whether the weekday is one of the configured days
func (h HappyHour) ActiveOn(day time.Weekday) bool {
	for _, d := range h.Days {
		if strings.EqualFold(strings.TrimSpace(d), day.String()) {
			return true
		}
	}
	return false
}

// Window returns start and end as minutes since midnight
func (h HappyHour) Window() (start, end int, err error) {
	if start, err = ParseClock(h.StartTime); err != nil {
		return 0, 0, err
	}
	if end, err = ParseClock(h.EndTime); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// LoyaltyProgram configures point accrual and redemption.
// RewardThreshold is the number of points worth $1 and the unit of tier boundaries.
type LoyaltyProgram struct {
	Enabled         bool            `json:"enabled"`
	PointsPerDollar decimal.Decimal `json:"pointsPerDollar"`
	RewardThreshold int64           `json:"rewardThreshold"`
}

type PromotionSettings struct {
	HappyHour      HappyHour      `json:"happyHour"`
	LoyaltyProgram LoyaltyProgram `json:"loyaltyProgram"`
}

// DefaultPromotionSettings is substituted when a location's settings cannot be fetched.
// Every call returns a fresh value.
func DefaultPromotionSettings() PromotionSettings {
	return PromotionSettings{
		HappyHour: HappyHour{
			Enabled:         false,
			DiscountPercent: decimal.Zero,
		},
		LoyaltyProgram: LoyaltyProgram{
			Enabled:         false,
			PointsPerDollar: decimal.NewFromInt(1),
			RewardThreshold: 100,
		},
	}
}

// Validate checks the settings invariants. Any failure wraps ErrConfigurationInvalid.
func (s PromotionSettings) Validate() error {
	hh := s.HappyHour
	if hh.DiscountPercent.IsNegative() || hh.DiscountPercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: happy hour discount percent %s out of range", ErrConfigurationInvalid, hh.DiscountPercent)
	}
	if hh.Enabled {
		if _, _, err := hh.Window(); err != nil {
			return fmt.Errorf("%w: happy hour window: %v", ErrConfigurationInvalid, err)
		}
	}

	lp := s.LoyaltyProgram
	if lp.PointsPerDollar.IsNegative() {
		return fmt.Errorf("%w: points per dollar %s is negative", ErrConfigurationInvalid, lp.PointsPerDollar)
	}
	if lp.Enabled && lp.RewardThreshold <= 0 {
		return fmt.Errorf("%w: reward threshold must be positive, got %d", ErrConfigurationInvalid, lp.RewardThreshold)
	}
	return nil
}

// ParseClock parses "HH:MM" into minutes since midnight
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("time %q is not HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("time %q has invalid hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q has invalid minute", s)
	}
	return h*60 + m, nil
}
