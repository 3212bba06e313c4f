package plan

import (
	"github.com/creditledger/creditledger/internal/types"
	"github.com/shopspring/decimal"
)

// Definition is one purchasable plan: a tier at a billing cadence. The set
// of definitions is static configuration and immutable at runtime; it is
// the canonical source of truth for credit allotments and prices.
type Definition struct {
	ID          types.PlanTier        `json:"id"`
	DisplayName string                `json:"display_name"`
	Credits     types.Credits         `json:"credits"`
	Interval    types.BillingInterval `json:"interval"`
	Price       decimal.Decimal       `json:"price"`

	// AutoRenew marks tiers whose lapsed renewal date is extended by the
	// sweep instead of reverting the user to the free plan.
	AutoRenew bool `json:"auto_renew"`

	// AmountMin/AmountMax bound the charged amounts that resolve to this
	// definition on the fallback-by-amount path. Min inclusive, max
	// exclusive. Zero ranges are never matched by amount.
	AmountMin decimal.Decimal `json:"amount_min"`
	AmountMax decimal.Decimal `json:"amount_max"`
}

// MatchesAmount reports whether a charged amount falls inside this
// definition's fallback range.
func (d *Definition) MatchesAmount(amount decimal.Decimal) bool {
	if d.AmountMin.IsZero() && d.AmountMax.IsZero() {
		return false
	}
	return amount.GreaterThanOrEqual(d.AmountMin) && amount.LessThan(d.AmountMax)
}

// IsFree reports whether this definition belongs to the free tier.
func (d *Definition) IsFree() bool {
	return d.ID == types.PlanTierFree
}
