package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/creditledger/creditledger/internal/domain/ledger"
	ierr "github.com/creditledger/creditledger/internal/errors"
)

// InMemoryLedgerStore implements ledger.Repository. A single mutex covers
// both maps, so Commit has the same pair-atomicity the Redis store gives
// through a transactional pipeline.
type InMemoryLedgerStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*ledger.Subscription
	balances      map[string]*ledger.CreditBalance

	// FailCommits makes every Commit fail, for testing rollback paths.
	FailCommits bool
}

func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{
		subscriptions: make(map[string]*ledger.Subscription),
		balances:      make(map[string]*ledger.CreditBalance),
	}
}

func copySubscription(sub *ledger.Subscription) *ledger.Subscription {
	if sub == nil {
		return nil
	}
	copied := *sub
	return &copied
}

func copyCreditBalance(balance *ledger.CreditBalance) *ledger.CreditBalance {
	if balance == nil {
		return nil
	}
	copied := *balance
	return &copied
}

func (s *InMemoryLedgerStore) GetSubscription(ctx context.Context, userID string) (*ledger.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		return nil, ierr.NewError("subscription not found").
			WithReportableDetails(map[string]interface{}{"user_id": userID}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemoryLedgerStore) GetCreditBalance(ctx context.Context, userID string) (*ledger.CreditBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance, ok := s.balances[userID]
	if !ok {
		return nil, ierr.NewError("credit balance not found").
			WithReportableDetails(map[string]interface{}{"user_id": userID}).
			Mark(ierr.ErrNotFound)
	}
	return copyCreditBalance(balance), nil
}

func (s *InMemoryLedgerStore) Commit(ctx context.Context, sub *ledger.Subscription, balance *ledger.CreditBalance) error {
	if sub == nil || balance == nil {
		return ierr.NewError("subscription and credit balance are both required").
			Mark(ierr.ErrValidation)
	}
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := balance.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCommits {
		return ierr.NewError("simulated commit failure").
			Mark(ierr.ErrDatabase)
	}

	s.subscriptions[sub.UserID] = copySubscription(sub)
	s.balances[balance.UserID] = copyCreditBalance(balance)
	return nil
}

func (s *InMemoryLedgerStore) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.subscriptions))
	for id := range s.subscriptions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *InMemoryLedgerStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = make(map[string]*ledger.Subscription)
	s.balances = make(map[string]*ledger.CreditBalance)
	s.FailCommits = false
}
