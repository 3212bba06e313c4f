package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRenewalDate(t *testing.T) {
	from := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 16, 12, 30, 0, 0, time.UTC), BillingIntervalDay.NextRenewalDate(from))
	assert.Equal(t, time.Date(2024, 4, 15, 12, 30, 0, 0, time.UTC), BillingIntervalMonth.NextRenewalDate(from))
	assert.Equal(t, time.Date(2025, 3, 15, 12, 30, 0, 0, time.UTC), BillingIntervalYear.NextRenewalDate(from))

	// Month-end normalization follows the calendar.
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), BillingIntervalMonth.NextRenewalDate(jan31))
}

func TestNextResetDate(t *testing.T) {
	from := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 16, 12, 30, 0, 0, time.UTC), BillingIntervalDay.NextResetDate(from))
	// Monthly resets land on the first of the next month, not a rolling date.
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), BillingIntervalMonth.NextResetDate(from))
	assert.Equal(t, time.Date(2025, 3, 15, 12, 30, 0, 0, time.UTC), BillingIntervalYear.NextResetDate(from))

	// A purchase in December rolls the reset into January of the next year.
	dec := time.Date(2024, 12, 20, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), BillingIntervalMonth.NextResetDate(dec))
}

func TestCreditsRemaining(t *testing.T) {
	assert.Equal(t, Credits(70), Credits(100).Remaining(30))
	assert.Equal(t, Credits(0), Credits(100).Remaining(100))
	assert.Equal(t, Credits(0), Credits(100).Remaining(250))
	assert.Equal(t, UnlimitedCredits, UnlimitedCredits.Remaining(99999))
	assert.True(t, UnlimitedCredits.IsUnlimited())
	assert.False(t, Credits(0).IsUnlimited())
}

func TestPlanTierRank(t *testing.T) {
	assert.Greater(t, PlanTierPro.Rank(), PlanTierStandard.Rank())
	assert.Greater(t, PlanTierStandard.Rank(), PlanTierFree.Rank())
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	assert.Error(t, PlanTier("platinum").Validate())
	assert.Error(t, BillingInterval("week").Validate())
	assert.Error(t, SubscriptionStatus("paused").Validate())
	assert.NoError(t, PlanTierPro.Validate())
	assert.NoError(t, BillingIntervalDay.Validate())
	assert.NoError(t, SubscriptionStatusCanceling.Validate())
}
