package types

import ierr "github.com/creditledger/creditledger/internal/errors"

// SubscriptionStatus is the lifecycle state of a subscription.
// A canceling subscription keeps access until its renewal date, at which
// point the renewal sweep reverts it to the free plan.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCanceling SubscriptionStatus = "canceling"
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusCanceling, SubscriptionStatusInactive:
		return nil
	default:
		return ierr.NewErrorf("invalid subscription status: %s", s).
			Mark(ierr.ErrValidation)
	}
}

// PaymentStatus is the settlement state reported by the payment gateway.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
)

// IsSettled reports whether the gateway considers the payment complete and
// the amount/metadata trustworthy.
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusPaid
}
