package plan

import (
	"testing"

	"github.com/creditledger/creditledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveByName(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name         string
		planName     string
		amount       string
		wantTier     types.PlanTier
		wantInterval types.BillingInterval
		wantOK       bool
	}{
		{"exact standard monthly", "Standard Plan", "15", types.PlanTierStandard, types.BillingIntervalMonth, true},
		{"case insensitive", "STANDARD subscription", "15", types.PlanTierStandard, types.BillingIntervalMonth, true},
		{"pro wins over standard in name", "Pro Standard Bundle", "40", types.PlanTierPro, types.BillingIntervalMonth, true},
		{"amount picks cadence within tier", "Standard", "0.75", types.PlanTierStandard, types.BillingIntervalDay, true},
		{"amount outside ranges defaults to monthly", "Standard", "999", types.PlanTierStandard, types.BillingIntervalMonth, true},
		{"free by name", "Free tier", "0", types.PlanTierFree, types.BillingIntervalMonth, true},
		{"unknown name", "Enterprise", "15", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := catalog.ResolveByName(tt.planName, decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			require.NotNil(t, def)
			assert.Equal(t, tt.wantTier, def.ID)
			assert.Equal(t, tt.wantInterval, def.Interval)
		})
	}
}

func TestResolveByAmount(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name         string
		amount       string
		wantTier     types.PlanTier
		wantInterval types.BillingInterval
		wantOK       bool
	}{
		{"standard daily", "0.75", types.PlanTierStandard, types.BillingIntervalDay, true},
		{"standard daily lower bound inclusive", "0.50", types.PlanTierStandard, types.BillingIntervalDay, true},
		{"standard daily upper bound exclusive", "1.00", "", "", false},
		{"standard monthly", "15", types.PlanTierStandard, types.BillingIntervalMonth, true},
		{"standard yearly", "126", types.PlanTierStandard, types.BillingIntervalYear, true},
		{"pro daily", "2.00", types.PlanTierPro, types.BillingIntervalDay, true},
		{"pro monthly", "40", types.PlanTierPro, types.BillingIntervalMonth, true},
		{"pro yearly", "336", types.PlanTierPro, types.BillingIntervalYear, true},
		{"between standard monthly and pro monthly", "25", "", "", false},
		{"zero", "0", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := catalog.ResolveByAmount(decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			require.NotNil(t, def)
			assert.Equal(t, tt.wantTier, def.ID)
			assert.Equal(t, tt.wantInterval, def.Interval)
		})
	}
}

func TestResolvePrefersNameOverAmount(t *testing.T) {
	catalog := NewCatalog()

	// The name says pro even though the amount sits in a standard range.
	def, path := catalog.Resolve("Pro", decimal.RequireFromString("15"))
	assert.Equal(t, ResolutionPathExact, path)
	assert.Equal(t, types.PlanTierPro, def.ID)

	def, path = catalog.Resolve("", decimal.RequireFromString("15"))
	assert.Equal(t, ResolutionPathAmount, path)
	assert.Equal(t, types.PlanTierStandard, def.ID)

	def, path = catalog.Resolve("", decimal.RequireFromString("5"))
	assert.Equal(t, ResolutionPathFallback, path)
	assert.Equal(t, types.PlanTierFree, def.ID)
}

func TestCatalogCreditTables(t *testing.T) {
	catalog := NewCatalog()

	free := catalog.Free()
	assert.Equal(t, types.Credits(100), free.Credits)
	assert.True(t, free.AutoRenew)
	assert.True(t, free.IsFree())

	for _, def := range catalog.Definitions(types.PlanTierStandard) {
		assert.Equal(t, types.Credits(500), def.Credits)
		assert.True(t, def.AutoRenew)
	}
	for _, def := range catalog.Definitions(types.PlanTierPro) {
		assert.True(t, def.Credits.IsUnlimited())
		assert.False(t, def.AutoRenew)
	}
}

func TestMatchesAmountZeroRangeNeverMatches(t *testing.T) {
	free := NewCatalog().Free()
	assert.False(t, free.MatchesAmount(decimal.Zero))
	assert.False(t, free.MatchesAmount(decimal.RequireFromString("100")))
}
