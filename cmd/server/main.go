package main

import (
	"context"
	"net/http"
	"time"

	"github.com/creditledger/creditledger/internal/api/cron"
	v1 "github.com/creditledger/creditledger/internal/api/v1"
	"github.com/creditledger/creditledger/internal/cache"
	"github.com/creditledger/creditledger/internal/clock"
	"github.com/creditledger/creditledger/internal/config"
	"github.com/creditledger/creditledger/internal/domain/ledger"
	"github.com/creditledger/creditledger/internal/domain/payment"
	"github.com/creditledger/creditledger/internal/domain/plan"
	"github.com/creditledger/creditledger/internal/integration/checkout"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/notifier"
	redisclient "github.com/creditledger/creditledger/internal/redis"
	redisrepo "github.com/creditledger/creditledger/internal/repository/redis"
	"github.com/creditledger/creditledger/internal/rest"
	"github.com/creditledger/creditledger/internal/service"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			newRedisClient,
			newCache,
			clock.New,
			plan.NewCatalog,
			newLedgerRepository,
			newPaymentRegister,
			newCheckoutClient,
			newNotifier,
			newServiceParams,
			service.NewLedgerService,
			service.NewSubscriptionService,
			service.NewPaymentService,
			service.NewRenewalService,
			v1.NewLedgerHandler,
			v1.NewPaymentHandler,
			cron.NewRenewalCronHandler,
			newRouter,
		),
		fx.Invoke(initSentry, startServer),
	)

	app.Run()
}

func newRedisClient(cfg *config.Configuration, log *logger.Logger) (*redisclient.Client, error) {
	return redisclient.NewClient(cfg.Redis, log)
}

func newCache(cfg *config.Configuration, client *redisclient.Client, log *logger.Logger) cache.Cache {
	return cache.Initialize(cfg, client, log)
}

func newLedgerRepository(client *redisclient.Client, cfg *config.Configuration, log *logger.Logger) ledger.Repository {
	return redisrepo.NewLedgerRepository(client, log, cfg.Billing.LegacyMirror)
}

func newPaymentRegister(client *redisclient.Client) payment.Register {
	return redisrepo.NewPaymentRegister(client)
}

func newCheckoutClient(cfg *config.Configuration, log *logger.Logger) checkout.Client {
	return checkout.NewClient(cfg.Checkout, log)
}

func newNotifier(cfg *config.Configuration, log *logger.Logger) (notifier.Notifier, error) {
	n, err := notifier.NewEmailNotifier(cfg.Email, log)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func newServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	clk clock.Clock,
	catalog *plan.Catalog,
	ledgerRepo ledger.Repository,
	paymentRegister payment.Register,
	gateway checkout.Client,
	emailNotifier notifier.Notifier,
	appCache cache.Cache,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:          log,
		Config:          cfg,
		Clock:           clk,
		Catalog:         catalog,
		LedgerRepo:      ledgerRepo,
		PaymentRegister: paymentRegister,
		Gateway:         gateway,
		Notifier:        emailNotifier,
		Cache:           appCache,
	}
}

func newRouter(
	ledgerHandler *v1.LedgerHandler,
	paymentHandler *v1.PaymentHandler,
	renewalHandler *cron.RenewalCronHandler,
	cfg *config.Configuration,
	log *logger.Logger,
	client *redisclient.Client,
) *gin.Engine {
	return rest.NewRouter(rest.Handlers{
		Ledger:  ledgerHandler,
		Payment: paymentHandler,
		Renewal: renewalHandler,
	}, cfg, log, client)
}

func initSentry(cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
		return err
	}
	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	return nil
}

func startServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Configuration,
	client *redisclient.Client,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			if cfg.Sentry.Enabled {
				sentry.Flush(2 * time.Second)
			}
			return client.Close()
		},
	})
}
