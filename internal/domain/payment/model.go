package payment

import "time"

// ProcessedPayment is the write-once marker recording that an external
// payment event has been applied to the ledger. Its existence means the
// associated mutation must not be repeated.
type ProcessedPayment struct {
	PaymentRef  string    `json:"payment_ref"`
	ProcessedAt time.Time `json:"processed_at"`
}
