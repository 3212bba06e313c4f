package redis

import (
	"context"
	"time"

	"github.com/creditledger/creditledger/internal/domain/payment"
	ierr "github.com/creditledger/creditledger/internal/errors"
	redisclient "github.com/creditledger/creditledger/internal/redis"
	goredis "github.com/redis/go-redis/v9"
)

const keyProcessedPrefix = "payment:processed:"

type paymentRegister struct {
	client *redisclient.Client
}

// NewPaymentRegister returns a Redis-backed idempotency register. The
// mark is a SETNX, so test-and-mark is one conditional write.
func NewPaymentRegister(client *redisclient.Client) payment.Register {
	return &paymentRegister{client: client}
}

func processedKey(paymentRef string) string {
	return keyProcessedPrefix + paymentRef
}

func (r *paymentRegister) HasProcessed(ctx context.Context, paymentRef string) (bool, error) {
	n, err := r.client.GetClient().Exists(ctx, processedKey(paymentRef)).Result()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to check payment idempotency record").
			WithReportableDetails(map[string]interface{}{"payment_ref": paymentRef}).
			Mark(ierr.ErrDatabase)
	}
	return n > 0, nil
}

func (r *paymentRegister) MarkIfAbsent(ctx context.Context, paymentRef string, processedAt time.Time) (bool, error) {
	record := payment.ProcessedPayment{
		PaymentRef:  paymentRef,
		ProcessedAt: processedAt,
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return false, ierr.WithError(err).Mark(ierr.ErrInternal)
	}

	acquired, err := r.client.GetClient().SetNX(ctx, processedKey(paymentRef), raw, 0).Result()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to write payment idempotency record").
			WithReportableDetails(map[string]interface{}{"payment_ref": paymentRef}).
			Mark(ierr.ErrDatabase)
	}
	return acquired, nil
}

func (r *paymentRegister) Release(ctx context.Context, paymentRef string) error {
	if err := r.client.GetClient().Del(ctx, processedKey(paymentRef)).Err(); err != nil && err != goredis.Nil {
		return ierr.WithError(err).
			WithHint("Failed to release payment idempotency record").
			WithReportableDetails(map[string]interface{}{"payment_ref": paymentRef}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
