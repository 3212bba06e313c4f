package notifier

import (
	"context"
	"time"

	"github.com/creditledger/creditledger/internal/types"
	"github.com/shopspring/decimal"
)

// PaymentNotification carries everything the confirmation email needs.
type PaymentNotification struct {
	Email       string
	PlanName    string
	Amount      decimal.Decimal
	Interval    types.BillingInterval
	RenewalDate time.Time
	Credits     types.Credits
	ResetDate   time.Time
}

// Notifier delivers billing notifications to the user. Implementations
// return an error for logging only; callers treat delivery as best-effort
// and never fail the surrounding operation on it.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, n PaymentNotification) error
}
