package plan

import (
	"strings"

	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ResolutionPath records which signal resolved a plan. The amount heuristic
// is lower-confidence and only used when no explicit name is available.
type ResolutionPath string

const (
	ResolutionPathExact    ResolutionPath = "exact"
	ResolutionPathAmount   ResolutionPath = "amount"
	ResolutionPathFallback ResolutionPath = "free_fallback"
)

// Catalog is the static plan catalog. The standard tier auto-renews; the
// pro tier is a fixed-term purchase that lapses to free.
type Catalog struct {
	defs []Definition
}

// catalogDefaults holds the authoritative credit and price tables. The
// amount ranges intentionally mirror the documented breakpoints of the
// billing pages; they are a heuristic for events that arrive without plan
// metadata and carry no stricter meaning.
var catalogDefaults = []Definition{
	{
		ID:          types.PlanTierFree,
		DisplayName: "Free",
		Credits:     100,
		Interval:    types.BillingIntervalMonth,
		Price:       decimal.Zero,
		AutoRenew:   true,
	},
	{
		ID:          types.PlanTierStandard,
		DisplayName: "Standard",
		Credits:     500,
		Interval:    types.BillingIntervalDay,
		Price:       decimal.RequireFromString("0.75"),
		AutoRenew:   true,
		AmountMin:   decimal.RequireFromString("0.50"),
		AmountMax:   decimal.RequireFromString("1.00"),
	},
	{
		ID:          types.PlanTierStandard,
		DisplayName: "Standard",
		Credits:     500,
		Interval:    types.BillingIntervalMonth,
		Price:       decimal.RequireFromString("15"),
		AutoRenew:   true,
		AmountMin:   decimal.RequireFromString("10"),
		AmountMax:   decimal.RequireFromString("20"),
	},
	{
		ID:          types.PlanTierStandard,
		DisplayName: "Standard",
		Credits:     500,
		Interval:    types.BillingIntervalYear,
		Price:       decimal.RequireFromString("126"),
		AutoRenew:   true,
		AmountMin:   decimal.RequireFromString("100"),
		AmountMax:   decimal.RequireFromString("150"),
	},
	{
		ID:          types.PlanTierPro,
		DisplayName: "Pro",
		Credits:     types.UnlimitedCredits,
		Interval:    types.BillingIntervalDay,
		Price:       decimal.RequireFromString("2.00"),
		AmountMin:   decimal.RequireFromString("1.50"),
		AmountMax:   decimal.RequireFromString("3.00"),
	},
	{
		ID:          types.PlanTierPro,
		DisplayName: "Pro",
		Credits:     types.UnlimitedCredits,
		Interval:    types.BillingIntervalMonth,
		Price:       decimal.RequireFromString("40"),
		AmountMin:   decimal.RequireFromString("30"),
		AmountMax:   decimal.RequireFromString("60"),
	},
	{
		ID:          types.PlanTierPro,
		DisplayName: "Pro",
		Credits:     types.UnlimitedCredits,
		Interval:    types.BillingIntervalYear,
		Price:       decimal.RequireFromString("336"),
		AmountMin:   decimal.RequireFromString("300"),
		AmountMax:   decimal.RequireFromString("400"),
	},
}

// NewCatalog returns the static catalog. Definitions are copied so callers
// cannot mutate the package-level defaults.
func NewCatalog() *Catalog {
	defs := make([]Definition, len(catalogDefaults))
	copy(defs, catalogDefaults)
	return &Catalog{defs: defs}
}

// Get returns the definition for a tier at a cadence.
func (c *Catalog) Get(tier types.PlanTier, interval types.BillingInterval) (*Definition, error) {
	for i := range c.defs {
		if c.defs[i].ID == tier && c.defs[i].Interval == interval {
			def := c.defs[i]
			return &def, nil
		}
	}
	return nil, ierr.NewErrorf("no plan definition for tier %s interval %s", tier, interval).
		WithHint("Unknown plan").
		WithReportableDetails(map[string]interface{}{
			"tier":     tier,
			"interval": interval,
		}).
		Mark(ierr.ErrNotFound)
}

// Free returns the free plan definition.
func (c *Catalog) Free() *Definition {
	def, _ := c.Get(types.PlanTierFree, types.BillingIntervalMonth)
	return def
}

// Definitions returns all definitions for a tier, day to year.
func (c *Catalog) Definitions(tier types.PlanTier) []Definition {
	return lo.Filter(c.defs, func(d Definition, _ int) bool {
		return d.ID == tier
	})
}

// ResolveByName resolves a tier from an external plan or product name.
// Matching is case-insensitive by substring; "pro" is checked before
// "standard" so a name like "Pro Standard" never falls to the lower tier.
// The cadence is picked by the charged amount within the tier, defaulting
// to monthly when the amount matches no range.
func (c *Catalog) ResolveByName(name string, amount decimal.Decimal) (*Definition, bool) {
	lowered := strings.ToLower(name)

	var tier types.PlanTier
	switch {
	case strings.Contains(lowered, "pro"):
		tier = types.PlanTierPro
	case strings.Contains(lowered, "standard"):
		tier = types.PlanTierStandard
	case strings.Contains(lowered, "free"):
		tier = types.PlanTierFree
	default:
		return nil, false
	}

	for _, def := range c.Definitions(tier) {
		if def.MatchesAmount(amount) {
			d := def
			return &d, true
		}
	}

	def, err := c.Get(tier, types.BillingIntervalMonth)
	if err != nil {
		return nil, false
	}
	return def, true
}

// ResolveByAmount infers a plan purely from the charged amount using the
// fixed range table. This is a heuristic fallback for events whose source
// carries no reliable plan metadata; the standard ranges are scanned before
// the pro ranges, day to year, first match wins.
func (c *Catalog) ResolveByAmount(amount decimal.Decimal) (*Definition, bool) {
	for _, tier := range []types.PlanTier{types.PlanTierStandard, types.PlanTierPro} {
		for _, def := range c.Definitions(tier) {
			if def.MatchesAmount(amount) {
				d := def
				return &d, true
			}
		}
	}
	return nil, false
}

// Resolve picks a plan from the available signals, preferring the exact
// name path over the amount heuristic. When neither resolves, the free
// definition is returned with ResolutionPathFallback so the caller still
// has a record to write.
func (c *Catalog) Resolve(name string, amount decimal.Decimal) (*Definition, ResolutionPath) {
	if name != "" {
		if def, ok := c.ResolveByName(name, amount); ok {
			return def, ResolutionPathExact
		}
	}
	if def, ok := c.ResolveByAmount(amount); ok {
		return def, ResolutionPathAmount
	}
	return c.Free(), ResolutionPathFallback
}
