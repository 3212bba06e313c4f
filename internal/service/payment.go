package service

import (
	"context"
	"time"

	"github.com/creditledger/creditledger/internal/api/dto"
	"github.com/creditledger/creditledger/internal/domain/ledger"
	"github.com/creditledger/creditledger/internal/domain/plan"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/notifier"
	"github.com/creditledger/creditledger/internal/types"
)

const notifyTimeout = 10 * time.Second

// PaymentService applies completed-payment notifications to the ledger
// exactly once per payment ref.
type PaymentService interface {
	ProcessPaymentEvent(ctx context.Context, userID string, req dto.ConfirmPaymentRequest) (*dto.ProcessPaymentResponse, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

// ProcessPaymentEvent resolves the payment against the gateway, resolves
// the plan, and commits the subscription/balance pair. The idempotency
// mark is acquired up front with an atomic set-if-absent: losing the
// acquisition means another delivery already applied (or is applying) this
// ref, which is reported as success. If anything fails between acquisition
// and commit the mark is released so the gateway's retry can succeed.
func (s *paymentService) ProcessPaymentEvent(ctx context.Context, userID string, req dto.ConfirmPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := s.Logger.WithContext(ctx)
	now := s.Clock.Now()

	acquired, err := s.PaymentRegister.MarkIfAbsent(ctx, req.PaymentRef, now)
	if err != nil {
		return nil, err
	}
	if !acquired {
		log.Infow("payment event already processed, skipping",
			"payment_ref", req.PaymentRef,
		)
		return &dto.ProcessPaymentResponse{AlreadyProcessed: true}, nil
	}

	resp, err := s.applyPayment(ctx, userID, req.PaymentRef, now)
	if err != nil {
		// Back out the mark so the same ref can be retried safely.
		if releaseErr := s.PaymentRegister.Release(ctx, req.PaymentRef); releaseErr != nil {
			log.Errorw("failed to release payment idempotency mark after error",
				"payment_ref", req.PaymentRef,
				"error", releaseErr,
			)
		}
		return nil, err
	}

	return resp, nil
}

func (s *paymentService) applyPayment(ctx context.Context, userID, paymentRef string, now time.Time) (*dto.ProcessPaymentResponse, error) {
	log := s.Logger.WithContext(ctx)

	session, err := s.Gateway.GetSession(ctx, paymentRef)
	if err != nil {
		return nil, err
	}

	// Webhook deliveries carry no authenticated caller; the user is taken
	// from the session metadata written at checkout creation.
	if userID == "" {
		userID = session.Metadata["user_id"]
	}
	if userID == "" {
		return nil, ierr.NewError("payment session is not attributable to a user").
			WithHint("Checkout session has no user metadata").
			WithReportableDetails(map[string]interface{}{"payment_ref": paymentRef}).
			Mark(ierr.ErrPermissionDenied)
	}

	if !session.PaymentStatus.IsSettled() {
		return nil, ierr.NewErrorf("payment %s is not settled: %s", paymentRef, session.PaymentStatus).
			WithHint("Payment has not settled yet, retry shortly").
			WithReportableDetails(map[string]interface{}{
				"payment_ref":    paymentRef,
				"payment_status": session.PaymentStatus,
			}).
			Mark(ierr.ErrSystem)
	}

	def, path := s.Catalog.Resolve(session.PlanName(), session.AmountTotal)
	if path == plan.ResolutionPathFallback {
		log.Warnw("could not resolve plan from payment, defaulting to free",
			"payment_ref", paymentRef,
			"amount", session.AmountTotal,
			"plan_name", session.PlanName(),
		)
	} else if path == plan.ResolutionPathAmount {
		log.Infow("plan resolved from amount heuristic",
			"payment_ref", paymentRef,
			"amount", session.AmountTotal,
			"plan", def.ID,
			"interval", def.Interval,
		)
	}

	sub, err := s.LedgerRepo.GetSubscription(ctx, userID)
	switch {
	case err == nil:
		if !ledger.CanTransition(sub.Status, types.SubscriptionStatusActive) {
			return nil, ierr.NewErrorf("subscription in status %s cannot be activated", sub.Status).
				Mark(ierr.ErrInvalidOperation)
		}
		sub.ApplyPlan(def, now)
	case ierr.IsNotFound(err):
		sub, _ = ledger.NewFromPlan(userID, def, now)
	default:
		return nil, err
	}

	if session.AmountTotal.IsPositive() {
		sub.BillingAmount = session.AmountTotal
	}
	sub.CustomerRef = session.CustomerRef
	sub.SubscriptionRef = session.SubscriptionRef

	balance, err := s.LedgerRepo.GetCreditBalance(ctx, userID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		balance = &ledger.CreditBalance{
			ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_BALANCE),
			UserID: userID,
		}
	}
	balance.ResetForPlan(def, now)

	if err := s.LedgerRepo.Commit(ctx, sub, balance); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, ledgerCacheKey(userID))

	log.Infow("payment event applied",
		"payment_ref", paymentRef,
		"plan", def.ID,
		"interval", def.Interval,
		"resolution_path", path,
		"renewal_date", sub.RenewalDate,
	)

	// Best-effort confirmation email. The ledger write is already
	// committed; notifier failure is logged inside and never propagated.
	s.notifyAsync(ctx, session.CustomerEmail, def, sub, balance)

	return &dto.ProcessPaymentResponse{
		ResolutionPath: string(path),
		Ledger:         dto.NewLedgerResponse(sub, balance),
	}, nil
}

func (s *paymentService) notifyAsync(ctx context.Context, email string, def *plan.Definition, sub *ledger.Subscription, balance *ledger.CreditBalance) {
	if email == "" {
		email = types.GetUserEmail(ctx)
	}

	notification := notifier.PaymentNotification{
		Email:       email,
		PlanName:    def.DisplayName,
		Amount:      sub.BillingAmount,
		Interval:    sub.BillingInterval,
		RenewalDate: sub.RenewalDate,
		Credits:     balance.TotalCredits,
		ResetDate:   balance.ResetDate,
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		notifyCtx, cancel := context.WithTimeout(detached, notifyTimeout)
		defer cancel()
		// Errors are already logged by the notifier; nothing to do here.
		_ = s.Notifier.PaymentConfirmed(notifyCtx, notification)
	}()
}
