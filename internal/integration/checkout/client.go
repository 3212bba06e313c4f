package checkout

import (
	"context"
	"encoding/json"

	"github.com/creditledger/creditledger/internal/config"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Client is the payment gateway contract consumed by the payment event
// processor. Sessions are fetched by the payment ref the gateway handed to
// the frontend; the processor never trusts anything on an unsettled session.
type Client interface {
	// GetSession fetches a checkout session by payment ref with its line
	// items expanded.
	GetSession(ctx context.Context, paymentRef string) (*Session, error)

	// VerifySignedEvent verifies a webhook payload signature and returns
	// the payment ref of the completed checkout it announces. Events of
	// other types return ErrValidation.
	VerifySignedEvent(payload []byte, signature string) (string, error)
}

type stripeGateway struct {
	api           *stripeclient.API
	webhookSecret string
	logger        *logger.Logger
}

// NewClient builds the Stripe-backed gateway client. All calls go through
// a retrying HTTP client with a bounded per-attempt timeout, so a gateway
// outage surfaces as a retryable error instead of a hang.
func NewClient(cfg config.CheckoutConfig, log *logger.Logger) Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.Logger = log.GetRetryableHTTPLogger()

	api := &stripeclient.API{}
	api.Init(cfg.SecretKey, stripe.NewBackends(retryClient.StandardClient()))

	return &stripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		logger:        log,
	}
}

func (g *stripeGateway) GetSession(ctx context.Context, paymentRef string) (*Session, error) {
	if paymentRef == "" {
		return nil, ierr.NewError("payment ref is required").
			Mark(ierr.ErrValidation)
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	sess, err := g.api.CheckoutSessions.Get(paymentRef, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return nil, ierr.WithError(err).
				WithHint("No checkout session for this payment ref").
				WithReportableDetails(map[string]interface{}{"payment_ref": paymentRef}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Payment gateway is unavailable").
			WithReportableDetails(map[string]interface{}{"payment_ref": paymentRef}).
			Mark(ierr.ErrHTTPClient)
	}

	g.logger.Debugw("fetched checkout session",
		"payment_ref", paymentRef,
		"payment_status", sess.PaymentStatus,
		"amount_total", sess.AmountTotal,
	)

	return fromStripeSession(sess), nil
}

func (g *stripeGateway) VerifySignedEvent(payload []byte, signature string) (string, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Webhook signature verification failed").
			Mark(ierr.ErrPermissionDenied)
	}

	if event.Type != "checkout.session.completed" {
		return "", ierr.NewErrorf("unhandled webhook event type: %s", event.Type).
			Mark(ierr.ErrValidation)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return "", ierr.WithError(err).
			WithHint("Malformed webhook payload").
			Mark(ierr.ErrValidation)
	}

	return sess.ID, nil
}
