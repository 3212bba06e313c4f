package types

import (
	"time"

	ierr "github.com/creditledger/creditledger/internal/errors"
)

// PlanTier identifies a billing tier. The set is closed: plan behavior is
// selected over these three values and nothing else.
type PlanTier string

const (
	PlanTierFree     PlanTier = "free"
	PlanTierStandard PlanTier = "standard"
	PlanTierPro      PlanTier = "pro"
)

func (t PlanTier) String() string {
	return string(t)
}

func (t PlanTier) Validate() error {
	switch t {
	case PlanTierFree, PlanTierStandard, PlanTierPro:
		return nil
	default:
		return ierr.NewErrorf("invalid plan tier: %s", t).
			WithHint("Plan must be one of free, standard, pro").
			Mark(ierr.ErrValidation)
	}
}

// Rank orders tiers for upgrade/downgrade comparisons. Higher is better.
func (t PlanTier) Rank() int {
	switch t {
	case PlanTierPro:
		return 2
	case PlanTierStandard:
		return 1
	default:
		return 0
	}
}

// BillingInterval is the cadence of both renewal and credit reset.
type BillingInterval string

const (
	BillingIntervalDay   BillingInterval = "day"
	BillingIntervalMonth BillingInterval = "month"
	BillingIntervalYear  BillingInterval = "year"
)

func (i BillingInterval) String() string {
	return string(i)
}

func (i BillingInterval) Validate() error {
	switch i {
	case BillingIntervalDay, BillingIntervalMonth, BillingIntervalYear:
		return nil
	default:
		return ierr.NewErrorf("invalid billing interval: %s", i).
			WithHint("Interval must be one of day, month, year").
			Mark(ierr.ErrValidation)
	}
}

// NextRenewalDate returns the renewal date one cadence period after from.
func (i BillingInterval) NextRenewalDate(from time.Time) time.Time {
	switch i {
	case BillingIntervalDay:
		return from.AddDate(0, 0, 1)
	case BillingIntervalYear:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// NextResetDate returns the credit reset date for a period starting at from:
// tomorrow for daily plans, the first day of the next month for monthly,
// the same calendar date next year for yearly.
func (i BillingInterval) NextResetDate(from time.Time) time.Time {
	switch i {
	case BillingIntervalDay:
		return from.AddDate(0, 0, 1)
	case BillingIntervalYear:
		return from.AddDate(1, 0, 0)
	default:
		return time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location()).AddDate(0, 1, 0)
	}
}

// Credits is a consumable allotment. The UnlimitedCredits sentinel marks
// plans without a cap; arithmetic must check IsUnlimited first.
type Credits int64

const UnlimitedCredits Credits = -1

func (c Credits) IsUnlimited() bool {
	return c == UnlimitedCredits
}

// Remaining returns the credits left given an amount already used.
// Unlimited allotments always report unlimited.
func (c Credits) Remaining(used Credits) Credits {
	if c.IsUnlimited() {
		return UnlimitedCredits
	}
	if used >= c {
		return 0
	}
	return c - used
}
