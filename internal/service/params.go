package service

import (
	"github.com/creditledger/creditledger/internal/cache"
	"github.com/creditledger/creditledger/internal/clock"
	"github.com/creditledger/creditledger/internal/config"
	"github.com/creditledger/creditledger/internal/domain/ledger"
	"github.com/creditledger/creditledger/internal/domain/payment"
	"github.com/creditledger/creditledger/internal/domain/plan"
	"github.com/creditledger/creditledger/internal/integration/checkout"
	"github.com/creditledger/creditledger/internal/logger"
	"github.com/creditledger/creditledger/internal/notifier"
)

// ServiceParams is the shared dependency bag every service is built from.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Clock  clock.Clock

	Catalog         *plan.Catalog
	LedgerRepo      ledger.Repository
	PaymentRegister payment.Register

	Gateway  checkout.Client
	Notifier notifier.Notifier
	Cache    cache.Cache
}

const ledgerCachePrefix = "ledger:"

func ledgerCacheKey(userID string) string {
	return ledgerCachePrefix + userID
}
