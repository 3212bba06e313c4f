package cron

import (
	"net/http"
	"time"

	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/service"
	"github.com/gin-gonic/gin"
)

// RenewalCronHandler handles the scheduled renewal and reset sweep.
type RenewalCronHandler struct {
	renewalService service.RenewalService
	logger         *logger.Logger
}

func NewRenewalCronHandler(
	renewalService service.RenewalService,
	logger *logger.Logger,
) *RenewalCronHandler {
	return &RenewalCronHandler{
		renewalService: renewalService,
		logger:         logger,
	}
}

// RunRenewalSweep settles every due subscription. Safe to trigger more
// than once per period; already-settled records are skipped.
func (h *RenewalCronHandler) RunRenewalSweep(c *gin.Context) {
	h.logger.Infow("starting renewal sweep cron job",
		"time", time.Now().UTC().Format(time.RFC3339),
	)

	resp, err := h.renewalService.RunSweep(c.Request.Context())
	if err != nil {
		h.logger.Errorw("renewal sweep failed", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed renewal sweep cron job",
		"renewed", resp.Renewed,
		"lapsed", resp.Lapsed,
	)
	c.JSON(http.StatusOK, resp)
}
