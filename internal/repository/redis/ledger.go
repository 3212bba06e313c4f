package redis

import (
	"context"
	"fmt"

	"github.com/creditledger/creditledger/internal/domain/ledger"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/logger"
	redisclient "github.com/creditledger/creditledger/internal/redis"
	jsoniter "github.com/json-iterator/go"
	goredis "github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	keySubscriptionPrefix  = "subscription:"
	keyCreditBalancePrefix = "creditbalance:"
	keyUsersIndex          = "users:index"
)

type ledgerRepository struct {
	client       *redisclient.Client
	logger       *logger.Logger
	legacyMirror bool
}

// NewLedgerRepository returns a Redis-backed ledger store. When
// legacyMirror is set, every commit also projects the plan and remaining
// credits into flat per-user keys read by the previous generation of the
// product; that projection is best-effort and never read back here.
func NewLedgerRepository(client *redisclient.Client, log *logger.Logger, legacyMirror bool) ledger.Repository {
	return &ledgerRepository{
		client:       client,
		logger:       log,
		legacyMirror: legacyMirror,
	}
}

func subscriptionKey(userID string) string {
	return keySubscriptionPrefix + userID
}

func creditBalanceKey(userID string) string {
	return keyCreditBalancePrefix + userID
}

func (r *ledgerRepository) GetSubscription(ctx context.Context, userID string) (*ledger.Subscription, error) {
	var sub ledger.Subscription
	if err := r.get(ctx, subscriptionKey(userID), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *ledgerRepository) GetCreditBalance(ctx context.Context, userID string) (*ledger.CreditBalance, error) {
	var balance ledger.CreditBalance
	if err := r.get(ctx, creditBalanceKey(userID), &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *ledgerRepository) get(ctx context.Context, key string, out interface{}) error {
	raw, err := r.client.GetClient().Get(ctx, key).Result()
	if err == goredis.Nil {
		return ierr.NewErrorf("ledger record not found: %s", key).
			WithHint("No ledger record for this user").
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read ledger record").
			WithReportableDetails(map[string]interface{}{"key": key}).
			Mark(ierr.ErrDatabase)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return ierr.WithError(err).
			WithHint("Corrupt ledger record").
			WithReportableDetails(map[string]interface{}{"key": key}).
			Mark(ierr.ErrInternal)
	}
	return nil
}

// Commit writes the subscription/balance pair in a single MULTI/EXEC so no
// reader can observe the pair half-updated.
func (r *ledgerRepository) Commit(ctx context.Context, sub *ledger.Subscription, balance *ledger.CreditBalance) error {
	if sub == nil || balance == nil {
		return ierr.NewError("subscription and credit balance are both required").
			Mark(ierr.ErrValidation)
	}
	if sub.UserID != balance.UserID {
		return ierr.NewError("subscription and credit balance belong to different users").
			Mark(ierr.ErrValidation)
	}
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := balance.Validate(); err != nil {
		return err
	}

	subRaw, err := json.Marshal(sub)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrInternal)
	}
	balanceRaw, err := json.Marshal(balance)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrInternal)
	}

	rdb := r.client.GetClient()
	_, err = rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, subscriptionKey(sub.UserID), subRaw, 0)
		pipe.Set(ctx, creditBalanceKey(balance.UserID), balanceRaw, 0)
		pipe.SAdd(ctx, keyUsersIndex, sub.UserID)
		return nil
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to persist ledger update").
			WithReportableDetails(map[string]interface{}{"user_id": sub.UserID}).
			Mark(ierr.ErrDatabase)
	}

	if r.legacyMirror {
		r.mirrorLegacy(ctx, sub, balance)
	}

	return nil
}

// mirrorLegacy projects the canonical pair into the flat keys of the old
// schema. Failures are logged and swallowed: the canonical record has
// already committed and the mirror is a derived projection that may lag.
func (r *ledgerRepository) mirrorLegacy(ctx context.Context, sub *ledger.Subscription, balance *ledger.CreditBalance) {
	rdb := r.client.GetClient()
	remaining := balance.TotalCredits.Remaining(balance.UsedCredits)

	_, err := rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, fmt.Sprintf("user:%s:plan", sub.UserID), string(sub.PlanID), 0)
		pipe.Set(ctx, fmt.Sprintf("user:%s:credits", sub.UserID), int64(remaining), 0)
		return nil
	})
	if err != nil {
		r.logger.Warnw("legacy ledger mirror write failed",
			"user_id", sub.UserID,
			"error", err,
		)
	}
}

func (r *ledgerRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.GetClient().SMembers(ctx, keyUsersIndex).Result()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to enumerate ledger users").
			Mark(ierr.ErrDatabase)
	}
	return ids, nil
}
