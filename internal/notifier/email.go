package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/cenkalti/backoff/v4"
	"github.com/creditledger/creditledger/internal/config"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/resend/resend-go/v2"
)

// paymentConfirmedTemplate is stored as a string constant; template design
// is out of scope, this is the minimal transactional body.
const paymentConfirmedTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Payment confirmed</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Thanks for your payment!</p>
    <p>Your <strong>{{.PlanName}}</strong> plan is active.</p>
    <ul>
        <li>Amount: {{.Amount}} ({{.Interval}}ly billing)</li>
        <li>Renews: {{.RenewalDate}}</li>
        <li>Credits: {{.Credits}}</li>
        <li>Credits reset: {{.ResetDate}}</li>
    </ul>
</body>
</html>`

const sendMaxRetries = 3

// EmailNotifier sends billing notifications through Resend.
type EmailNotifier struct {
	client      *resend.Client
	fromAddress string
	enabled     bool
	logger      *logger.Logger
	tmpl        *template.Template
}

// NewEmailNotifier creates the Resend-backed notifier. With email disabled
// in config the notifier is a logging no-op, which keeps local runs and
// tests free of external calls.
func NewEmailNotifier(cfg config.EmailConfig, log *logger.Logger) (*EmailNotifier, error) {
	tmpl, err := template.New("payment-confirmed").Parse(paymentConfirmedTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment confirmation template: %w", err)
	}

	n := &EmailNotifier{
		fromAddress: cfg.FromAddress,
		enabled:     cfg.Enabled,
		logger:      log,
		tmpl:        tmpl,
	}
	if cfg.Enabled {
		n.client = resend.NewClient(cfg.APIKey)
	}
	return n, nil
}

func (n *EmailNotifier) PaymentConfirmed(ctx context.Context, notification PaymentNotification) error {
	if !n.enabled {
		n.logger.Warnw("email notifier is disabled, skipping payment confirmation",
			"to", notification.Email,
			"plan", notification.PlanName,
		)
		return nil
	}
	if notification.Email == "" {
		n.logger.Warnw("no recipient email on payment notification, skipping",
			"plan", notification.PlanName,
		)
		return nil
	}

	data := map[string]interface{}{
		"PlanName":    notification.PlanName,
		"Amount":      notification.Amount.StringFixed(2),
		"Interval":    notification.Interval.String(),
		"RenewalDate": notification.RenewalDate.Format("January 2, 2006"),
		"Credits":     formatCredits(notification.Credits),
		"ResetDate":   notification.ResetDate.Format("January 2, 2006"),
	}

	var body bytes.Buffer
	if err := n.tmpl.Execute(&body, data); err != nil {
		n.logger.Errorw("failed to render payment confirmation email",
			"error", err,
			"to", notification.Email,
		)
		return err
	}

	params := &resend.SendEmailRequest{
		From:    n.fromAddress,
		To:      []string{notification.Email},
		Subject: fmt.Sprintf("Your %s plan is active", notification.PlanName),
		Html:    body.String(),
	}

	// Transient provider errors are retried a few times with exponential
	// backoff before giving up; the caller logs and moves on either way.
	operation := func() error {
		_, err := n.client.Emails.SendWithContext(ctx, params)
		return err
	}
	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), sendMaxRetries), ctx))
	if err != nil {
		n.logger.Errorw("failed to send payment confirmation email",
			"error", err,
			"to", notification.Email,
			"plan", notification.PlanName,
		)
		return err
	}

	n.logger.Infow("payment confirmation email sent",
		"to", notification.Email,
		"plan", notification.PlanName,
	)
	return nil
}

func formatCredits(c types.Credits) string {
	if c.IsUnlimited() {
		return "Unlimited"
	}
	return fmt.Sprintf("%d", int64(c))
}
