package service

import (
	"context"
	"testing"
	"time"

	"github.com/creditledger/creditledger/internal/api/dto"
	"github.com/creditledger/creditledger/internal/cache"
	"github.com/creditledger/creditledger/internal/config"
	"github.com/creditledger/creditledger/internal/domain/plan"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/integration/checkout"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/testutil"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	suite.Suite
	ctx             context.Context
	paymentService  PaymentService
	ledgerRepo      *testutil.InMemoryLedgerStore
	paymentRegister *testutil.InMemoryPaymentRegister
	gateway         *testutil.StubGateway
	notifier        *testutil.FakeNotifier
	clock           *testutil.FakeClock
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.ledgerRepo = testutil.NewInMemoryLedgerStore()
	s.paymentRegister = testutil.NewInMemoryPaymentRegister()
	s.gateway = testutil.NewStubGateway()
	s.notifier = testutil.NewFakeNotifier()
	s.clock = testutil.NewFakeClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

	s.paymentService = NewPaymentService(ServiceParams{
		Logger:          logger.GetLogger(),
		Config:          config.GetDefaultConfig(),
		Clock:           s.clock,
		Catalog:         plan.NewCatalog(),
		LedgerRepo:      s.ledgerRepo,
		PaymentRegister: s.paymentRegister,
		Gateway:         s.gateway,
		Notifier:        s.notifier,
		Cache:           cache.NewInMemoryCache(),
	})
}

func (s *PaymentServiceSuite) addPaidSession(ref, planName string, amount string) {
	sess := &checkout.Session{
		Ref:           ref,
		PaymentStatus: types.PaymentStatusPaid,
		AmountTotal:   decimal.RequireFromString(amount),
		Currency:      "usd",
		CustomerEmail: "buyer@example.com",
	}
	if planName != "" {
		sess.Metadata = map[string]string{"plan": planName}
	}
	s.gateway.AddSession(sess)
}

func (s *PaymentServiceSuite) TestProcessPaymentActivatesPlan() {
	s.addPaidSession("pi_123", "Standard Plan", "15")

	resp, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_123"})
	s.NoError(err)
	s.False(resp.AlreadyProcessed)
	s.Equal(string(plan.ResolutionPathExact), resp.ResolutionPath)

	sub := resp.Ledger.Subscription
	s.Equal(types.PlanTierStandard, sub.PlanID)
	s.Equal(types.SubscriptionStatusActive, sub.Status)
	s.Equal(types.BillingIntervalMonth, sub.BillingInterval)
	s.Equal(time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC), sub.RenewalDate)

	balance := resp.Ledger.CreditBalance
	s.Equal(int64(500), balance.TotalCredits)
	s.Equal(int64(0), balance.UsedCredits)
	s.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), balance.ResetDate)
}

func (s *PaymentServiceSuite) TestDuplicatePaymentIsIdempotent() {
	s.addPaidSession("pi_123", "Standard Plan", "15")

	first, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_123"})
	s.NoError(err)
	s.False(first.AlreadyProcessed)

	balance, err := s.ledgerRepo.GetCreditBalance(s.ctx, testutil.TestUserID)
	s.NoError(err)
	balance.UsedCredits = 42
	sub, err := s.ledgerRepo.GetSubscription(s.ctx, testutil.TestUserID)
	s.NoError(err)
	s.NoError(s.ledgerRepo.Commit(s.ctx, sub, balance))

	second, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_123"})
	s.NoError(err)
	s.True(second.AlreadyProcessed)
	s.Nil(second.Ledger)

	// The duplicate must not have granted credits again.
	balance, err = s.ledgerRepo.GetCreditBalance(s.ctx, testutil.TestUserID)
	s.NoError(err)
	s.Equal(types.Credits(42), balance.UsedCredits)
}

func (s *PaymentServiceSuite) TestAmountFallbackDaily() {
	s.addPaidSession("pi_daily", "", "0.75")

	resp, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_daily"})
	s.NoError(err)
	s.Equal(string(plan.ResolutionPathAmount), resp.ResolutionPath)
	s.Equal(types.PlanTierStandard, resp.Ledger.Subscription.PlanID)
	s.Equal(types.BillingIntervalDay, resp.Ledger.Subscription.BillingInterval)
	s.Equal(time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC), resp.Ledger.Subscription.RenewalDate)
}

func (s *PaymentServiceSuite) TestAmountFallbackYearly() {
	s.addPaidSession("pi_yearly", "", "126")

	resp, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_yearly"})
	s.NoError(err)
	s.Equal(string(plan.ResolutionPathAmount), resp.ResolutionPath)
	s.Equal(types.PlanTierStandard, resp.Ledger.Subscription.PlanID)
	s.Equal(types.BillingIntervalYear, resp.Ledger.Subscription.BillingInterval)
}

func (s *PaymentServiceSuite) TestUnresolvableAmountFallsToFree() {
	s.addPaidSession("pi_odd", "", "7.77")

	resp, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_odd"})
	s.NoError(err)
	s.Equal(string(plan.ResolutionPathFallback), resp.ResolutionPath)
	s.Equal(types.PlanTierFree, resp.Ledger.Subscription.PlanID)
	s.Equal(int64(100), resp.Ledger.CreditBalance.TotalCredits)
}

func (s *PaymentServiceSuite) TestUnsettledPaymentIsRetryable() {
	s.gateway.AddSession(&checkout.Session{
		Ref:           "pi_pending",
		PaymentStatus: types.PaymentStatusPending,
		AmountTotal:   decimal.RequireFromString("15"),
		Metadata:      map[string]string{"plan": "Standard"},
	})

	_, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_pending"})
	s.Error(err)
	s.True(ierr.IsRetryable(err))

	// The mark must be released so the settled retry can succeed.
	processed, err := s.paymentRegister.HasProcessed(s.ctx, "pi_pending")
	s.NoError(err)
	s.False(processed)

	s.gateway.AddSession(&checkout.Session{
		Ref:           "pi_pending",
		PaymentStatus: types.PaymentStatusPaid,
		AmountTotal:   decimal.RequireFromString("15"),
		Metadata:      map[string]string{"plan": "Standard"},
	})
	resp, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_pending"})
	s.NoError(err)
	s.False(resp.AlreadyProcessed)
}

func (s *PaymentServiceSuite) TestCommitFailureReleasesMark() {
	s.addPaidSession("pi_fail", "Pro", "40")
	s.ledgerRepo.FailCommits = true

	_, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_fail"})
	s.Error(err)

	processed, err := s.paymentRegister.HasProcessed(s.ctx, "pi_fail")
	s.NoError(err)
	s.False(processed)

	s.ledgerRepo.FailCommits = false
	resp, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_fail"})
	s.NoError(err)
	s.Equal(types.PlanTierPro, resp.Ledger.Subscription.PlanID)
	s.True(resp.Ledger.CreditBalance.Unlimited)
}

func (s *PaymentServiceSuite) TestWebhookAttributionFromMetadata() {
	s.gateway.AddSession(&checkout.Session{
		Ref:           "pi_hook",
		PaymentStatus: types.PaymentStatusPaid,
		AmountTotal:   decimal.RequireFromString("15"),
		Metadata:      map[string]string{"plan": "Standard", "user_id": "user_99"},
	})

	resp, err := s.paymentService.ProcessPaymentEvent(context.Background(), "", dto.ConfirmPaymentRequest{PaymentRef: "pi_hook"})
	s.NoError(err)
	s.Equal(types.PlanTierStandard, resp.Ledger.Subscription.PlanID)

	sub, err := s.ledgerRepo.GetSubscription(s.ctx, "user_99")
	s.NoError(err)
	s.Equal("user_99", sub.UserID)
}

func (s *PaymentServiceSuite) TestUnattributablePaymentRejected() {
	s.gateway.AddSession(&checkout.Session{
		Ref:           "pi_anon",
		PaymentStatus: types.PaymentStatusPaid,
		AmountTotal:   decimal.RequireFromString("15"),
	})

	_, err := s.paymentService.ProcessPaymentEvent(context.Background(), "", dto.ConfirmPaymentRequest{PaymentRef: "pi_anon"})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *PaymentServiceSuite) TestNotificationSent() {
	s.addPaidSession("pi_note", "Standard Plan", "15")

	_, err := s.paymentService.ProcessPaymentEvent(s.ctx, testutil.TestUserID, dto.ConfirmPaymentRequest{PaymentRef: "pi_note"})
	s.NoError(err)

	s.Eventually(func() bool {
		return len(s.notifier.Sent()) == 1
	}, time.Second, 10*time.Millisecond)

	sent := s.notifier.Sent()[0]
	s.Equal("buyer@example.com", sent.Email)
	s.Equal("Standard", sent.PlanName)
	s.Equal(types.Credits(500), sent.Credits)
}
