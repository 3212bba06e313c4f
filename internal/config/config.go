package config

import (
	"strings"
	"time"

	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration is the root config object, loaded once at startup from
// config files and CREDITLEDGER_* environment variables.
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Checkout   CheckoutConfig   `mapstructure:"checkout"`
	Email      EmailConfig      `mapstructure:"email"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Billing    BillingConfig    `mapstructure:"billing"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	UseTLS   bool          `mapstructure:"use_tls"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Type string `mapstructure:"type"` // inmemory | redis
}

// CheckoutConfig configures the payment gateway integration.
type CheckoutConfig struct {
	SecretKey     string        `mapstructure:"secret_key"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// BillingConfig tunes ledger behavior that is deliberately operational
// rather than domain: the legacy flat-key mirror and sweep parallelism.
type BillingConfig struct {
	LegacyMirror     bool `mapstructure:"legacy_mirror"`
	SweepConcurrency int  `mapstructure:"sweep_concurrency"`
}

// NewConfig loads configuration from ./config.yaml (optional) and the
// environment. Environment variables use the CREDITLEDGER prefix with
// underscores, e.g. CREDITLEDGER_REDIS_HOST.
func NewConfig() (*Configuration, error) {
	// Load .env if present; ignore absence in deployed environments
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("CREDITLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrSystem)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse configuration").
			Mark(ierr.ErrSystem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.RunModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("logging.fluentd_enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", "5s")
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("checkout.timeout", "15s")
	v.SetDefault("checkout.max_retries", 3)
	v.SetDefault("email.enabled", false)
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("billing.legacy_mirror", false)
	v.SetDefault("billing.sweep_concurrency", 8)
}

// Validate checks settings that would otherwise fail at first use.
func (c *Configuration) Validate() error {
	if c.Server.Address == "" {
		return ierr.NewError("server address is required").
			Mark(ierr.ErrValidation)
	}
	if c.Billing.SweepConcurrency <= 0 {
		return ierr.NewError("billing sweep concurrency must be positive").
			Mark(ierr.ErrValidation)
	}
	if c.Email.Enabled && c.Email.APIKey == "" {
		return ierr.NewError("email api key is required when email is enabled").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetDefaultConfig returns a configuration suitable for tests and scripts:
// local mode, in-memory cache, all external collaborators disabled.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.RunModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
			Timeout:  5 * time.Second,
		},
		Cache:    CacheConfig{Type: "inmemory"},
		Checkout: CheckoutConfig{Timeout: 15 * time.Second, MaxRetries: 3},
		Billing:  BillingConfig{LegacyMirror: false, SweepConcurrency: 4},
	}
}
