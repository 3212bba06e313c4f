package service

import (
	"context"
	"testing"
	"time"

	"github.com/creditledger/creditledger/internal/cache"
	"github.com/creditledger/creditledger/internal/config"
	"github.com/creditledger/creditledger/internal/domain/ledger"
	"github.com/creditledger/creditledger/internal/domain/plan"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/testutil"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/stretchr/testify/suite"
)

type RenewalServiceSuite struct {
	suite.Suite
	ctx        context.Context
	service    RenewalService
	ledgerRepo *testutil.InMemoryLedgerStore
	catalog    *plan.Catalog
	clock      *testutil.FakeClock
}

func TestRenewalService(t *testing.T) {
	suite.Run(t, new(RenewalServiceSuite))
}

func (s *RenewalServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.ledgerRepo = testutil.NewInMemoryLedgerStore()
	s.catalog = plan.NewCatalog()
	s.clock = testutil.NewFakeClock(time.Date(2024, 4, 2, 6, 0, 0, 0, time.UTC))

	s.service = NewRenewalService(ServiceParams{
		Logger:     logger.GetLogger(),
		Config:     config.GetDefaultConfig(),
		Clock:      s.clock,
		Catalog:    s.catalog,
		LedgerRepo: s.ledgerRepo,
		Cache:      cache.NewInMemoryCache(),
	})
}

// seedUser writes a ledger for userID on the given tier whose current
// period started at purchase.
func (s *RenewalServiceSuite) seedUser(userID string, tier types.PlanTier, interval types.BillingInterval, purchase time.Time, status types.SubscriptionStatus) *ledger.Subscription {
	def, err := s.catalog.Get(tier, interval)
	s.Require().NoError(err)
	sub, balance := ledger.NewFromPlan(userID, def, purchase)
	sub.Status = status
	balance.UsedCredits = 37
	s.Require().NoError(s.ledgerRepo.Commit(s.ctx, sub, balance))
	return sub
}

func (s *RenewalServiceSuite) TestCancelingSubscriptionLapsesToFree() {
	// Period ended 2024-04-01; the sweep runs on 2024-04-02.
	s.seedUser("user_cancel", types.PlanTierStandard, types.BillingIntervalMonth,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), types.SubscriptionStatusCanceling)

	resp, err := s.service.RunSweep(s.ctx)
	s.NoError(err)
	s.Equal(1, resp.Lapsed)
	s.Equal(0, resp.Failed)

	sub, err := s.ledgerRepo.GetSubscription(s.ctx, "user_cancel")
	s.NoError(err)
	s.Equal(types.PlanTierFree, sub.PlanID)
	s.Equal(types.SubscriptionStatusActive, sub.Status)

	balance, err := s.ledgerRepo.GetCreditBalance(s.ctx, "user_cancel")
	s.NoError(err)
	s.Equal(types.Credits(100), balance.TotalCredits)
	s.Equal(types.Credits(0), balance.UsedCredits)
}

func (s *RenewalServiceSuite) TestAutoRenewingPlanRenewsInPlace() {
	s.seedUser("user_renew", types.PlanTierStandard, types.BillingIntervalMonth,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), types.SubscriptionStatusActive)

	resp, err := s.service.RunSweep(s.ctx)
	s.NoError(err)
	s.Equal(1, resp.Renewed)

	sub, err := s.ledgerRepo.GetSubscription(s.ctx, "user_renew")
	s.NoError(err)
	s.Equal(types.PlanTierStandard, sub.PlanID)
	s.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), sub.RenewalDate)

	balance, err := s.ledgerRepo.GetCreditBalance(s.ctx, "user_renew")
	s.NoError(err)
	s.Equal(types.Credits(500), balance.TotalCredits)
	s.Equal(types.Credits(0), balance.UsedCredits)
}

func (s *RenewalServiceSuite) TestFixedTermProLapsesToFree() {
	s.seedUser("user_pro", types.PlanTierPro, types.BillingIntervalMonth,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), types.SubscriptionStatusActive)

	resp, err := s.service.RunSweep(s.ctx)
	s.NoError(err)
	s.Equal(1, resp.Lapsed)

	sub, err := s.ledgerRepo.GetSubscription(s.ctx, "user_pro")
	s.NoError(err)
	s.Equal(types.PlanTierFree, sub.PlanID)

	balance, err := s.ledgerRepo.GetCreditBalance(s.ctx, "user_pro")
	s.NoError(err)
	s.Equal(types.Credits(100), balance.TotalCredits)
}

func (s *RenewalServiceSuite) TestUndueRecordsAreSkipped() {
	s.seedUser("user_fresh", types.PlanTierStandard, types.BillingIntervalMonth,
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), types.SubscriptionStatusActive)

	resp, err := s.service.RunSweep(s.ctx)
	s.NoError(err)
	s.Equal(1, resp.Skipped)
	s.Equal(0, resp.Renewed)
	s.Equal(0, resp.Lapsed)
}

func (s *RenewalServiceSuite) TestSweepIsIdempotentWithinADay() {
	s.seedUser("user_a", types.PlanTierStandard, types.BillingIntervalMonth,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), types.SubscriptionStatusActive)
	s.seedUser("user_b", types.PlanTierPro, types.BillingIntervalMonth,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), types.SubscriptionStatusActive)

	first, err := s.service.RunSweep(s.ctx)
	s.NoError(err)
	s.Equal(1, first.Renewed)
	s.Equal(1, first.Lapsed)

	second, err := s.service.RunSweep(s.ctx)
	s.NoError(err)
	s.Equal(0, second.Renewed)
	s.Equal(0, second.Lapsed)
	s.Equal(2, second.Skipped)
}

func (s *RenewalServiceSuite) TestMissedSweepsCatchUp() {
	// Daily plan last settled a week ago; one sweep moves the renewal date
	// past now in a single pass.
	s.seedUser("user_daily", types.PlanTierStandard, types.BillingIntervalDay,
		time.Date(2024, 3, 26, 6, 0, 0, 0, time.UTC), types.SubscriptionStatusActive)

	resp, err := s.service.RunSweep(s.ctx)
	s.NoError(err)
	s.Equal(1, resp.Renewed)

	sub, err := s.ledgerRepo.GetSubscription(s.ctx, "user_daily")
	s.NoError(err)
	s.True(sub.RenewalDate.After(s.clock.Now()))
	s.Equal(time.Date(2024, 4, 3, 6, 0, 0, 0, time.UTC), sub.RenewalDate)
}
