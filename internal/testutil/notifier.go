package testutil

import (
	"context"
	"sync"

	"github.com/creditledger/creditledger/internal/notifier"
)

// FakeNotifier records every notification for assertions.
type FakeNotifier struct {
	mu   sync.Mutex
	sent []notifier.PaymentNotification
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

func (n *FakeNotifier) PaymentConfirmed(ctx context.Context, notification notifier.PaymentNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

// Sent returns a snapshot of the recorded notifications.
func (n *FakeNotifier) Sent() []notifier.PaymentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifier.PaymentNotification, len(n.sent))
	copy(out, n.sent)
	return out
}
