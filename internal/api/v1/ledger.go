package v1

import (
	"net/http"

	"github.com/creditledger/creditledger/internal/api/dto"
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/service"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerService       service.LedgerService
	subscriptionService service.SubscriptionService
	log                 *logger.Logger
}

func NewLedgerHandler(
	ledgerService service.LedgerService,
	subscriptionService service.SubscriptionService,
	log *logger.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:       ledgerService,
		subscriptionService: subscriptionService,
		log:                 log,
	}
}

// GetLedger returns the caller's subscription and credit balance,
// materializing a free ledger on first access.
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	userID := types.GetUserID(c.Request.Context())

	resp, err := h.ledgerService.GetLedger(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorw("failed to get ledger", "error", err, "user_id", userID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Downgrade moves the caller to a lower tier immediately.
func (h *LedgerHandler) Downgrade(c *gin.Context) {
	var req dto.DowngradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind downgrade request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	userID := types.GetUserID(c.Request.Context())
	resp, err := h.subscriptionService.Downgrade(c.Request.Context(), userID, req)
	if err != nil {
		h.log.Errorw("failed to downgrade subscription", "error", err, "user_id", userID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Cancel marks the caller's subscription as canceling at period end.
func (h *LedgerHandler) Cancel(c *gin.Context) {
	userID := types.GetUserID(c.Request.Context())

	resp, err := h.subscriptionService.Cancel(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorw("failed to cancel subscription", "error", err, "user_id", userID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
