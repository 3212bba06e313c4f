package service

import (
	"context"
	"testing"
	"time"

	"github.com/creditledger/creditledger/internal/api/dto"
	"github.com/creditledger/creditledger/internal/cache"
	"github.com/creditledger/creditledger/internal/config"
	"github.com/creditledger/creditledger/internal/domain/ledger"
	"github.com/creditledger/creditledger/internal/domain/plan"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/testutil"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	suite.Suite
	ctx        context.Context
	service    SubscriptionService
	ledgerRepo *testutil.InMemoryLedgerStore
	catalog    *plan.Catalog
	clock      *testutil.FakeClock
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.ledgerRepo = testutil.NewInMemoryLedgerStore()
	s.catalog = plan.NewCatalog()
	s.clock = testutil.NewFakeClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

	s.service = NewSubscriptionService(ServiceParams{
		Logger:     logger.GetLogger(),
		Config:     config.GetDefaultConfig(),
		Clock:      s.clock,
		Catalog:    s.catalog,
		LedgerRepo: s.ledgerRepo,
		Cache:      cache.NewInMemoryCache(),
	})
}

// seedPlan writes an active ledger on the given tier and cadence,
// purchased at the clock's current time.
func (s *SubscriptionServiceSuite) seedPlan(tier types.PlanTier, interval types.BillingInterval) (*ledger.Subscription, *ledger.CreditBalance) {
	def, err := s.catalog.Get(tier, interval)
	s.Require().NoError(err)
	sub, balance := ledger.NewFromPlan(testutil.TestUserID, def, s.clock.Now())
	s.Require().NoError(s.ledgerRepo.Commit(s.ctx, sub, balance))
	return sub, balance
}

func (s *SubscriptionServiceSuite) TestDowngradeAppliesImmediately() {
	s.seedPlan(types.PlanTierPro, types.BillingIntervalMonth)
	s.clock.Advance(48 * time.Hour)

	resp, err := s.service.Downgrade(s.ctx, testutil.TestUserID, dto.DowngradeRequest{PlanID: types.PlanTierStandard})
	s.NoError(err)

	sub := resp.Subscription
	s.Equal(types.PlanTierStandard, sub.PlanID)
	s.Equal(types.SubscriptionStatusActive, sub.Status)
	s.Equal(types.BillingIntervalMonth, sub.BillingInterval)
	// The new period starts at the downgrade, not at the old purchase date.
	s.Equal(s.clock.Now(), sub.PurchaseDate)
	s.Equal(s.clock.Now().AddDate(0, 1, 0), sub.RenewalDate)

	balance := resp.CreditBalance
	s.False(balance.Unlimited)
	s.Equal(int64(500), balance.TotalCredits)
	s.Equal(int64(0), balance.UsedCredits)
}

func (s *SubscriptionServiceSuite) TestDowngradeToSameOrHigherTierRejected() {
	s.seedPlan(types.PlanTierStandard, types.BillingIntervalMonth)

	_, err := s.service.Downgrade(s.ctx, testutil.TestUserID, dto.DowngradeRequest{PlanID: types.PlanTierStandard})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.Downgrade(s.ctx, testutil.TestUserID, dto.DowngradeRequest{PlanID: types.PlanTierPro})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestDowngradeRequiresActiveStatus() {
	sub, balance := s.seedPlan(types.PlanTierPro, types.BillingIntervalMonth)
	sub.Status = types.SubscriptionStatusCanceling
	s.Require().NoError(s.ledgerRepo.Commit(s.ctx, sub, balance))

	_, err := s.service.Downgrade(s.ctx, testutil.TestUserID, dto.DowngradeRequest{PlanID: types.PlanTierFree})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestDowngradeFailureLeavesStateUntouched() {
	s.seedPlan(types.PlanTierPro, types.BillingIntervalMonth)
	s.ledgerRepo.FailCommits = true

	_, err := s.service.Downgrade(s.ctx, testutil.TestUserID, dto.DowngradeRequest{PlanID: types.PlanTierFree})
	s.Error(err)

	s.ledgerRepo.FailCommits = false
	sub, err := s.ledgerRepo.GetSubscription(s.ctx, testutil.TestUserID)
	s.NoError(err)
	s.Equal(types.PlanTierPro, sub.PlanID)
	balance, err := s.ledgerRepo.GetCreditBalance(s.ctx, testutil.TestUserID)
	s.NoError(err)
	s.True(balance.TotalCredits.IsUnlimited())
}

func (s *SubscriptionServiceSuite) TestCancelKeepsAccessUntilPeriodEnd() {
	seeded, seededBalance := s.seedPlan(types.PlanTierStandard, types.BillingIntervalMonth)
	s.clock.Advance(24 * time.Hour)

	resp, err := s.service.Cancel(s.ctx, testutil.TestUserID)
	s.NoError(err)

	sub := resp.Subscription
	s.Equal(types.SubscriptionStatusCanceling, sub.Status)
	s.Equal(types.PlanTierStandard, sub.PlanID)
	// Renewal date and credits stay as they were; access runs to period end.
	s.Equal(seeded.RenewalDate, sub.RenewalDate)
	s.Equal(int64(seededBalance.TotalCredits), resp.CreditBalance.TotalCredits)
	s.Equal(s.clock.Now(), sub.LastUpdated)
}

func (s *SubscriptionServiceSuite) TestCancelFreePlanRejected() {
	s.seedPlan(types.PlanTierFree, types.BillingIntervalMonth)

	_, err := s.service.Cancel(s.ctx, testutil.TestUserID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestCancelTwiceRejected() {
	s.seedPlan(types.PlanTierStandard, types.BillingIntervalMonth)

	_, err := s.service.Cancel(s.ctx, testutil.TestUserID)
	s.NoError(err)

	_, err = s.service.Cancel(s.ctx, testutil.TestUserID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestCancelWithoutSubscription() {
	_, err := s.service.Cancel(s.ctx, "user_unknown")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
