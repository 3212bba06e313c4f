package ledger

import (
	"time"

	"github.com/creditledger/creditledger/internal/domain/plan"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/shopspring/decimal"
)

// Subscription is the per-user billing record. Exactly one live
// subscription exists per user; cancellation and downgrade only move
// status/plan, records are never deleted.
type Subscription struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"user_id"`
	PlanID          types.PlanTier           `json:"plan_id"`
	PlanDisplayName string                   `json:"plan_display_name"`
	Status          types.SubscriptionStatus `json:"status"`
	BillingAmount   decimal.Decimal          `json:"billing_amount"`
	BillingInterval types.BillingInterval    `json:"billing_interval"`
	RenewalDate     time.Time                `json:"renewal_date"`
	PurchaseDate    time.Time                `json:"purchase_date"`
	LastUpdated     time.Time                `json:"last_updated"`
	CustomerRef     string                   `json:"customer_ref,omitempty"`
	SubscriptionRef string                   `json:"subscription_ref,omitempty"`
}

// CreditBalance is the per-user consumable allotment paired with the
// subscription. UsedCredits goes back to zero on every plan change and on
// every reset date.
type CreditBalance struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	TotalCredits types.Credits `json:"total_credits"`
	UsedCredits  types.Credits `json:"used_credits"`
	ResetDate    time.Time     `json:"reset_date"`
	LastUpdate   time.Time     `json:"last_update"`
}

// Entry is the full ledger record for one user.
type Entry struct {
	Subscription  *Subscription  `json:"subscription"`
	CreditBalance *CreditBalance `json:"credit_balance"`
}

// NewFromPlan builds a fresh subscription + balance pair for a plan
// purchased (or defaulted) at now. The renewal date is one cadence period
// ahead of the purchase date, so the strictly-in-the-future invariant
// holds by construction.
func NewFromPlan(userID string, def *plan.Definition, now time.Time) (*Subscription, *CreditBalance) {
	sub := &Subscription{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		UserID:          userID,
		PlanID:          def.ID,
		PlanDisplayName: def.DisplayName,
		Status:          types.SubscriptionStatusActive,
		BillingAmount:   def.Price,
		BillingInterval: def.Interval,
		RenewalDate:     def.Interval.NextRenewalDate(now),
		PurchaseDate:    now,
		LastUpdated:     now,
	}
	balance := &CreditBalance{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_BALANCE),
		UserID:       userID,
		TotalCredits: def.Credits,
		UsedCredits:  0,
		ResetDate:    def.Interval.NextResetDate(now),
		LastUpdate:   now,
	}
	return sub, balance
}

// ApplyPlan rewrites the subscription in place for a newly purchased or
// assigned plan, keeping identity fields and external refs.
func (s *Subscription) ApplyPlan(def *plan.Definition, now time.Time) {
	s.PlanID = def.ID
	s.PlanDisplayName = def.DisplayName
	s.Status = types.SubscriptionStatusActive
	s.BillingAmount = def.Price
	s.BillingInterval = def.Interval
	s.PurchaseDate = now
	s.RenewalDate = def.Interval.NextRenewalDate(now)
	s.LastUpdated = now
}

// ResetForPlan resets the balance to a plan's allotment with zero usage.
func (b *CreditBalance) ResetForPlan(def *plan.Definition, now time.Time) {
	b.TotalCredits = def.Credits
	b.UsedCredits = 0
	b.ResetDate = def.Interval.NextResetDate(now)
	b.LastUpdate = now
}

// Validate checks the cross-field invariants before a commit.
func (s *Subscription) Validate() error {
	if s.UserID == "" {
		return ierr.NewError("subscription user_id is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.PlanID.Validate(); err != nil {
		return err
	}
	if err := s.Status.Validate(); err != nil {
		return err
	}
	if err := s.BillingInterval.Validate(); err != nil {
		return err
	}
	// RenewalDate is only strictly-in-the-future at the moment it is set
	// (purchase, renewal); a cancel commits the record with the original
	// date untouched, so only presence is checked here.
	if s.RenewalDate.IsZero() {
		return ierr.NewError("renewal date is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Validate checks the balance invariants before a commit.
func (b *CreditBalance) Validate() error {
	if b.UserID == "" {
		return ierr.NewError("credit balance user_id is required").
			Mark(ierr.ErrValidation)
	}
	if b.UsedCredits < 0 {
		return ierr.NewError("used credits cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if !b.TotalCredits.IsUnlimited() && b.TotalCredits < 0 {
		return ierr.NewError("total credits cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
