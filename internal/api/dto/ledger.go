package dto

import (
	"time"

	"github.com/creditledger/creditledger/internal/domain/ledger"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/creditledger/creditledger/internal/validator"
	"github.com/shopspring/decimal"
)

// SubscriptionResponse is the wire view of a subscription.
type SubscriptionResponse struct {
	ID              string                   `json:"id"`
	PlanID          types.PlanTier           `json:"plan_id"`
	PlanDisplayName string                   `json:"plan_display_name"`
	Status          types.SubscriptionStatus `json:"status"`
	BillingAmount   decimal.Decimal          `json:"billing_amount"`
	BillingInterval types.BillingInterval    `json:"billing_interval"`
	RenewalDate     time.Time                `json:"renewal_date"`
	PurchaseDate    time.Time                `json:"purchase_date"`
	LastUpdated     time.Time                `json:"last_updated"`
}

// CreditBalanceResponse is the wire view of a credit balance. Unlimited
// allotments are flagged rather than leaking the sentinel value.
type CreditBalanceResponse struct {
	TotalCredits     int64     `json:"total_credits"`
	UsedCredits      int64     `json:"used_credits"`
	RemainingCredits int64     `json:"remaining_credits"`
	Unlimited        bool      `json:"unlimited"`
	ResetDate        time.Time `json:"reset_date"`
	LastUpdate       time.Time `json:"last_update"`
}

// LedgerResponse is the combined per-user billing view.
type LedgerResponse struct {
	Subscription  *SubscriptionResponse  `json:"subscription"`
	CreditBalance *CreditBalanceResponse `json:"credit_balance"`
}

// NewLedgerResponse converts the domain pair to the wire shape.
func NewLedgerResponse(sub *ledger.Subscription, balance *ledger.CreditBalance) *LedgerResponse {
	resp := &LedgerResponse{}

	if sub != nil {
		resp.Subscription = &SubscriptionResponse{
			ID:              sub.ID,
			PlanID:          sub.PlanID,
			PlanDisplayName: sub.PlanDisplayName,
			Status:          sub.Status,
			BillingAmount:   sub.BillingAmount,
			BillingInterval: sub.BillingInterval,
			RenewalDate:     sub.RenewalDate,
			PurchaseDate:    sub.PurchaseDate,
			LastUpdated:     sub.LastUpdated,
		}
	}

	if balance != nil {
		cb := &CreditBalanceResponse{
			UsedCredits: int64(balance.UsedCredits),
			ResetDate:   balance.ResetDate,
			LastUpdate:  balance.LastUpdate,
		}
		if balance.TotalCredits.IsUnlimited() {
			cb.Unlimited = true
		} else {
			cb.TotalCredits = int64(balance.TotalCredits)
			cb.RemainingCredits = int64(balance.TotalCredits.Remaining(balance.UsedCredits))
		}
		resp.CreditBalance = cb
	}

	return resp
}

// DowngradeRequest asks for an immediate, non-prorated move to a lower
// tier. The boundary is expected to have collected explicit user
// confirmation before calling.
type DowngradeRequest struct {
	PlanID types.PlanTier `json:"plan_id" validate:"required"`
}

func (r *DowngradeRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.PlanID.Validate()
}
