package service

import (
	"context"

	"github.com/creditledger/creditledger/internal/api/dto"
	"github.com/creditledger/creditledger/internal/domain/ledger"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/types"
)

// SubscriptionService hosts the user-driven plan transitions. Downgrades
// apply immediately with no proration; cancellation keeps paid access
// until the current period runs out.
type SubscriptionService interface {
	Downgrade(ctx context.Context, userID string, req dto.DowngradeRequest) (*dto.LedgerResponse, error)
	Cancel(ctx context.Context, userID string) (*dto.LedgerResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

// Downgrade moves an active subscription to a strictly lower tier right
// away. The balance is replaced with the target plan's allotment; any
// unused credits on the old plan are forfeited.
func (s *subscriptionService) Downgrade(ctx context.Context, userID string, req dto.DowngradeRequest) (*dto.LedgerResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user identity is required").
			WithHint("Sign in to change plans").
			Mark(ierr.ErrPermissionDenied)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.LedgerRepo.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub.Status != types.SubscriptionStatusActive {
		return nil, ierr.NewErrorf("cannot downgrade a subscription in status %s", sub.Status).
			WithHint("Only active subscriptions can be downgraded").
			Mark(ierr.ErrInvalidOperation)
	}
	if req.PlanID.Rank() >= sub.PlanID.Rank() {
		return nil, ierr.NewErrorf("plan %s is not a downgrade from %s", req.PlanID, sub.PlanID).
			WithHint("Pick a lower tier, or purchase through checkout to upgrade").
			WithReportableDetails(map[string]interface{}{
				"current_plan": sub.PlanID,
				"target_plan":  req.PlanID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	// Keep the current cadence when the target tier offers it.
	def, err := s.Catalog.Get(req.PlanID, sub.BillingInterval)
	if err != nil {
		def, err = s.Catalog.Get(req.PlanID, types.BillingIntervalMonth)
		if err != nil {
			return nil, err
		}
	}

	balance, err := s.LedgerRepo.GetCreditBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	sub.ApplyPlan(def, now)
	balance.ResetForPlan(def, now)

	if err := s.LedgerRepo.Commit(ctx, sub, balance); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, ledgerCacheKey(userID))

	s.Logger.WithContext(ctx).Infow("subscription downgraded",
		"user_id", userID,
		"plan", def.ID,
		"interval", def.Interval,
	)

	return dto.NewLedgerResponse(sub, balance), nil
}

// Cancel marks an active paid subscription as canceling. The renewal date
// and credit balance are left untouched so paid access continues until
// the sweep lapses the record at period end.
func (s *subscriptionService) Cancel(ctx context.Context, userID string) (*dto.LedgerResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user identity is required").
			WithHint("Sign in to cancel").
			Mark(ierr.ErrPermissionDenied)
	}

	sub, err := s.LedgerRepo.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub.PlanID == types.PlanTierFree {
		return nil, ierr.NewError("the free plan cannot be canceled").
			Mark(ierr.ErrInvalidOperation)
	}
	if !ledger.CanTransition(sub.Status, types.SubscriptionStatusCanceling) {
		return nil, ierr.NewErrorf("cannot cancel a subscription in status %s", sub.Status).
			WithHint("Only active subscriptions can be canceled").
			Mark(ierr.ErrInvalidOperation)
	}

	balance, err := s.LedgerRepo.GetCreditBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub.Status = types.SubscriptionStatusCanceling
	sub.LastUpdated = s.Clock.Now()

	if err := s.LedgerRepo.Commit(ctx, sub, balance); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, ledgerCacheKey(userID))

	s.Logger.WithContext(ctx).Infow("subscription canceling",
		"user_id", userID,
		"plan", sub.PlanID,
		"lapses_at", sub.RenewalDate,
	)

	return dto.NewLedgerResponse(sub, balance), nil
}
