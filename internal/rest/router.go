package rest

import (
	"net/http"
	"time"

	"github.com/creditledger/creditledger/internal/api/cron"
	v1 "github.com/creditledger/creditledger/internal/api/v1"
	"github.com/creditledger/creditledger/internal/config"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/redis"
	"github.com/creditledger/creditledger/internal/rest/middleware"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Ledger  *v1.LedgerHandler
	Payment *v1.PaymentHandler
	Renewal *cron.RenewalCronHandler
}

// NewRouter wires the full HTTP surface. User routes require an identity
// header; the webhook route authenticates by payload signature instead;
// cron routes are rate limited so sweeps cannot stack.
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger, redisClient *redis.Client) *gin.Engine {
	if cfg.Deployment.Mode == types.RunModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.RecoveryWithWriter(log.GetGinLogger()))
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.SentryMiddleware(cfg))
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.ErrorHandler)

	router.GET("/health", func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "redis unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	private := router.Group("/v1")
	private.Use(middleware.UserAuthMiddleware)
	private.Use(middleware.SentryUserContextMiddleware)
	{
		private.GET("/ledger", handlers.Ledger.GetLedger)
		private.POST("/subscription/downgrade", handlers.Ledger.Downgrade)
		private.POST("/subscription/cancel", handlers.Ledger.Cancel)
		private.POST("/payments/confirm", handlers.Payment.ConfirmPayment)
	}

	webhooks := router.Group("/v1/webhooks")
	{
		webhooks.POST("/checkout", handlers.Payment.CheckoutWebhook)
	}

	cronGroup := router.Group("/cron")
	cronGroup.Use(middleware.CronRateLimitMiddleware(rate.Every(30*time.Second), 2))
	{
		cronGroup.POST("/renewals", handlers.Renewal.RunRenewalSweep)
	}

	return router
}
