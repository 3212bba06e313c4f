package v1

import (
	"io"
	"net/http"

	"github.com/creditledger/creditledger/internal/api/dto"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/integration/checkout"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/service"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/gin-gonic/gin"
)

const stripeSignatureHeader = "Stripe-Signature"

type PaymentHandler struct {
	paymentService service.PaymentService
	gateway        checkout.Client
	log            *logger.Logger
}

func NewPaymentHandler(
	paymentService service.PaymentService,
	gateway checkout.Client,
	log *logger.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		gateway:        gateway,
		log:            log,
	}
}

// ConfirmPayment applies a completed checkout the frontend reports after
// redirect. Everything on the request is re-verified against the gateway;
// duplicates return success with already_processed set.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind confirm payment request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	userID := types.GetUserID(c.Request.Context())
	resp, err := h.paymentService.ProcessPaymentEvent(c.Request.Context(), userID, req)
	if err != nil {
		h.log.Errorw("failed to process payment confirmation",
			"error", err,
			"user_id", userID,
			"payment_ref", req.PaymentRef,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckoutWebhook is the gateway-to-server delivery path for completed
// checkouts. The payload signature is verified before anything is parsed;
// the user is attributed from the session metadata, not from headers.
func (h *PaymentHandler) CheckoutWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Could not read webhook payload").
			Mark(ierr.ErrValidation))
		return
	}

	paymentRef, err := h.gateway.VerifySignedEvent(payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		if ierr.IsValidation(err) {
			// Unhandled event types are acknowledged so the gateway does
			// not retry them forever.
			h.log.Debugw("ignoring webhook event", "error", err)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		h.log.Errorw("webhook verification failed", "error", err)
		c.Error(err)
		return
	}

	resp, err := h.paymentService.ProcessPaymentEvent(c.Request.Context(), "", dto.ConfirmPaymentRequest{
		PaymentRef: paymentRef,
	})
	if err != nil {
		h.log.Errorw("failed to process webhook payment event",
			"error", err,
			"payment_ref", paymentRef,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
