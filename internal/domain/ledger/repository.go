package ledger

import "context"

// Repository is the ledger store contract. The backing store must provide
// read-your-writes consistency per key, and Commit must apply the
// subscription/balance pair as a single atomic write: readers never observe
// one half updated without the other.
type Repository interface {
	// GetSubscription returns the user's subscription, or ErrNotFound.
	GetSubscription(ctx context.Context, userID string) (*Subscription, error)

	// GetCreditBalance returns the user's credit balance, or ErrNotFound.
	GetCreditBalance(ctx context.Context, userID string) (*CreditBalance, error)

	// Commit atomically persists the subscription and balance pair and
	// registers the user for sweep enumeration.
	Commit(ctx context.Context, sub *Subscription, balance *CreditBalance) error

	// ListUserIDs enumerates every user with a ledger record, for the
	// renewal sweep.
	ListUserIDs(ctx context.Context) ([]string, error)
}
