package testutil

import (
	"context"
	"sync"
	"time"
)

// InMemoryPaymentRegister implements payment.Register with a mutex-guarded
// map, giving MarkIfAbsent the same test-and-set atomicity as SETNX.
type InMemoryPaymentRegister struct {
	mu        sync.Mutex
	processed map[string]time.Time
}

func NewInMemoryPaymentRegister() *InMemoryPaymentRegister {
	return &InMemoryPaymentRegister{
		processed: make(map[string]time.Time),
	}
}

func (r *InMemoryPaymentRegister) HasProcessed(ctx context.Context, paymentRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.processed[paymentRef]
	return ok, nil
}

func (r *InMemoryPaymentRegister) MarkIfAbsent(ctx context.Context, paymentRef string, processedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.processed[paymentRef]; ok {
		return false, nil
	}
	r.processed[paymentRef] = processedAt
	return true, nil
}

func (r *InMemoryPaymentRegister) Release(ctx context.Context, paymentRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.processed, paymentRef)
	return nil
}

func (r *InMemoryPaymentRegister) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = make(map[string]time.Time)
}
