package service

import (
	"context"

	"github.com/creditledger/creditledger/internal/api/dto"
	"github.com/creditledger/creditledger/internal/cache"
	"github.com/creditledger/creditledger/internal/domain/ledger"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/types"
)

// LedgerService reads the per-user billing ledger, materializing a free
// plan record on first access.
type LedgerService interface {
	GetLedger(ctx context.Context, userID string) (*dto.LedgerResponse, error)
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{ServiceParams: params}
}

func (s *ledgerService) GetLedger(ctx context.Context, userID string) (*dto.LedgerResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user identity is required").
			WithHint("Sign in to view billing").
			Mark(ierr.ErrPermissionDenied)
	}

	if cached, ok := s.Cache.Get(ctx, ledgerCacheKey(userID)); ok {
		if resp, ok := cache.UnmarshalCacheValue[dto.LedgerResponse](cached); ok {
			return resp, nil
		}
	}

	sub, err := s.LedgerRepo.GetSubscription(ctx, userID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		// First access: default the user onto the free plan.
		return s.materializeFreeLedger(ctx, userID)
	}

	balance, err := s.LedgerRepo.GetCreditBalance(ctx, userID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		// A subscription without a balance should not happen given the
		// atomic pair write; repair with a fresh allotment for the plan.
		def, defErr := s.Catalog.Get(sub.PlanID, sub.BillingInterval)
		if defErr != nil {
			def = s.Catalog.Free()
		}
		now := s.Clock.Now()
		balance = &ledger.CreditBalance{
			ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_BALANCE),
			UserID: userID,
		}
		balance.ResetForPlan(def, now)
		if err := s.LedgerRepo.Commit(ctx, sub, balance); err != nil {
			return nil, err
		}
	}

	// Apply a lapsed reset on read so daily plans see fresh credits even
	// between sweep runs. The sweep performs the same reset; both paths
	// move ResetDate forward, so they never double-apply.
	now := s.Clock.Now()
	if !balance.ResetDate.After(now) {
		balance.UsedCredits = 0
		balance.ResetDate = sub.BillingInterval.NextResetDate(now)
		balance.LastUpdate = now
		if err := s.LedgerRepo.Commit(ctx, sub, balance); err != nil {
			return nil, err
		}
	}

	resp := dto.NewLedgerResponse(sub, balance)
	s.Cache.Set(ctx, ledgerCacheKey(userID), resp)
	return resp, nil
}

func (s *ledgerService) materializeFreeLedger(ctx context.Context, userID string) (*dto.LedgerResponse, error) {
	now := s.Clock.Now()
	sub, balance := ledger.NewFromPlan(userID, s.Catalog.Free(), now)

	if err := s.LedgerRepo.Commit(ctx, sub, balance); err != nil {
		return nil, err
	}

	s.Logger.Infow("materialized default free ledger",
		"user_id", userID,
	)

	resp := dto.NewLedgerResponse(sub, balance)
	s.Cache.Set(ctx, ledgerCacheKey(userID), resp)
	return resp, nil
}
