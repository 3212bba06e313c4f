package dto

import (
	"github.com/creditledger/creditledger/internal/validator"
)

// ConfirmPaymentRequest carries the payment ref of a checkout the caller
// believes has completed. The processor verifies everything against the
// gateway; nothing else on the request is trusted.
type ConfirmPaymentRequest struct {
	PaymentRef string `json:"payment_ref" validate:"required"`
}

func (r *ConfirmPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ProcessPaymentResponse reports the ledger state after a payment event.
// AlreadyProcessed marks the duplicate-delivery short-circuit, which is a
// success, not an error.
type ProcessPaymentResponse struct {
	AlreadyProcessed bool            `json:"already_processed"`
	ResolutionPath   string          `json:"resolution_path,omitempty"`
	Ledger           *LedgerResponse `json:"ledger,omitempty"`
}

// SweepResponse summarizes one renewal sweep run.
type SweepResponse struct {
	Total   int `json:"total"`
	Renewed int `json:"renewed"`
	Lapsed  int `json:"lapsed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
