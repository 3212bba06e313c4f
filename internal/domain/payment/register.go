package payment

import (
	"context"
	"time"
)

// Register is the idempotency register for payment events. MarkIfAbsent is
// a single conditional write that both tests and marks, so concurrent
// duplicate notifications cannot both acquire the same payment ref.
type Register interface {
	// HasProcessed reports whether a payment ref has already been applied.
	HasProcessed(ctx context.Context, paymentRef string) (bool, error)

	// MarkIfAbsent atomically records the ref as processed. It returns
	// true when this call created the record, false when the ref was
	// already marked.
	MarkIfAbsent(ctx context.Context, paymentRef string, processedAt time.Time) (bool, error)

	// Release removes a mark acquired by MarkIfAbsent. Used only to back
	// out when the ledger write that followed the acquisition failed, so
	// the gateway's retry of the same ref can succeed later.
	Release(ctx context.Context, paymentRef string) error
}
