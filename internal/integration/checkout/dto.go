package checkout

import (
	"github.com/creditledger/creditledger/internal/types"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
)

// Session is the gateway-neutral view of a completed (or pending) checkout.
// Only fields the ledger cares about are carried over; everything else
// stays inside the gateway.
type Session struct {
	Ref             string              `json:"ref"`
	PaymentStatus   types.PaymentStatus `json:"payment_status"`
	AmountTotal     decimal.Decimal     `json:"amount_total"`
	Currency        string              `json:"currency"`
	Metadata        map[string]string   `json:"metadata,omitempty"`
	LineItems       []LineItem          `json:"line_items,omitempty"`
	CustomerRef     string              `json:"customer_ref,omitempty"`
	SubscriptionRef string              `json:"subscription_ref,omitempty"`
	CustomerEmail   string              `json:"customer_email,omitempty"`
}

// LineItem is a purchased item on a checkout session. The description is
// the plan-name signal for exact resolution.
type LineItem struct {
	Description string `json:"description"`
}

// PlanName returns the best plan-name signal on the session: explicit
// metadata first, then the first line item description.
func (s *Session) PlanName() string {
	if name, ok := s.Metadata["plan"]; ok && name != "" {
		return name
	}
	for _, item := range s.LineItems {
		if item.Description != "" {
			return item.Description
		}
	}
	return ""
}

// fromStripeSession maps the provider object into the neutral Session.
// Amounts arrive in the smallest currency unit and are converted to major
// units here.
func fromStripeSession(sess *stripe.CheckoutSession) *Session {
	if sess == nil {
		return nil
	}

	out := &Session{
		Ref:         sess.ID,
		AmountTotal: decimal.NewFromInt(sess.AmountTotal).Div(decimal.NewFromInt(100)),
		Currency:    string(sess.Currency),
		Metadata:    sess.Metadata,
	}

	switch sess.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		out.PaymentStatus = types.PaymentStatusPaid
	case stripe.CheckoutSessionPaymentStatusUnpaid:
		out.PaymentStatus = types.PaymentStatusUnpaid
	default:
		out.PaymentStatus = types.PaymentStatusPending
	}

	if sess.LineItems != nil {
		for _, item := range sess.LineItems.Data {
			if item == nil {
				continue
			}
			desc := item.Description
			if desc == "" && item.Price != nil && item.Price.Product != nil {
				desc = item.Price.Product.Name
			}
			out.LineItems = append(out.LineItems, LineItem{Description: desc})
		}
	}

	if sess.Customer != nil {
		out.CustomerRef = sess.Customer.ID
	}
	if sess.Subscription != nil {
		out.SubscriptionRef = sess.Subscription.ID
	}
	if sess.CustomerDetails != nil {
		out.CustomerEmail = sess.CustomerDetails.Email
	}

	return out
}
