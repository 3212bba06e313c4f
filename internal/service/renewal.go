package service

import (
	"context"
	"sync"
	"time"

	"github.com/creditledger/creditledger/internal/api/dto"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/sourcegraph/conc/pool"
)

// RenewalService runs the periodic renewal and reset sweep over every
// known user. A sweep run is idempotent: re-running it on the same day
// finds every due record already moved forward and skips it.
type RenewalService interface {
	RunSweep(ctx context.Context) (*dto.SweepResponse, error)
}

type renewalService struct {
	ServiceParams
}

func NewRenewalService(params ServiceParams) RenewalService {
	return &renewalService{ServiceParams: params}
}

// sweepOutcome classifies what the sweep did for one user.
type sweepOutcome int

const (
	sweepSkipped sweepOutcome = iota
	sweepRenewed
	sweepLapsed
)

func (s *renewalService) RunSweep(ctx context.Context) (*dto.SweepResponse, error) {
	log := s.Logger.WithContext(ctx)
	now := s.Clock.Now()

	userIDs, err := s.LedgerRepo.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.SweepResponse{Total: len(userIDs)}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.Config.Billing.SweepConcurrency)
	for _, userID := range userIDs {
		userID := userID
		p.Go(func() {
			outcome, err := s.sweepUser(ctx, userID, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Failed++
				log.Errorw("sweep failed for user",
					"user_id", userID,
					"error", err,
				)
				return
			}
			switch outcome {
			case sweepRenewed:
				resp.Renewed++
			case sweepLapsed:
				resp.Lapsed++
			default:
				resp.Skipped++
			}
		})
	}
	p.Wait()

	log.Infow("renewal sweep complete",
		"total", resp.Total,
		"renewed", resp.Renewed,
		"lapsed", resp.Lapsed,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
	)
	return resp, nil
}

// sweepUser settles one user's record against now. Due records either
// renew in place (auto-renewing plans), or lapse onto the free plan
// (canceling subscriptions and expired fixed-term purchases).
func (s *renewalService) sweepUser(ctx context.Context, userID string, now time.Time) (sweepOutcome, error) {
	sub, err := s.LedgerRepo.GetSubscription(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			// Indexed user without a record; nothing to settle.
			return sweepSkipped, nil
		}
		return sweepSkipped, err
	}

	if sub.RenewalDate.After(now) {
		return sweepSkipped, nil
	}

	balance, err := s.LedgerRepo.GetCreditBalance(ctx, userID)
	if err != nil {
		return sweepSkipped, err
	}

	def, err := s.Catalog.Get(sub.PlanID, sub.BillingInterval)
	if err != nil {
		// Unknown plan on record; settle onto free rather than wedging
		// the user forever.
		def = s.Catalog.Free()
	}

	var outcome sweepOutcome
	switch {
	case sub.Status == types.SubscriptionStatusCanceling || !def.AutoRenew:
		free := s.Catalog.Free()
		sub.ApplyPlan(free, now)
		balance.ResetForPlan(free, now)
		outcome = sweepLapsed
	default:
		// Catch up a record that missed sweeps: advance the renewal date
		// period by period until it is in the future again.
		for !sub.RenewalDate.After(now) {
			sub.RenewalDate = sub.BillingInterval.NextRenewalDate(sub.RenewalDate)
		}
		sub.LastUpdated = now
		balance.ResetForPlan(def, now)
		outcome = sweepRenewed
	}

	if err := s.LedgerRepo.Commit(ctx, sub, balance); err != nil {
		return sweepSkipped, err
	}
	s.Cache.Delete(ctx, ledgerCacheKey(userID))
	return outcome, nil
}
