package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the server configuration, loadable from environment variables
// (PETRO_ prefix), flags, or YAML config files.
type Config struct {
	Addr               string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL        string        `usage:"PostgreSQL connection URL; empty keeps data in memory (PETRO_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	PricingFile        string        `usage:"YAML file with the product catalog and coupon table" flag:"pricing-file"`
	CatalogTTL         time.Duration `default:"1m" usage:"How long a catalog loaded from the database is reused" flag:"catalog-ttl"`
	HighValueThreshold string        `default:"5000" usage:"Order total raising a high-value alert, 0 disables" flag:"high-value-threshold"`
	Graceful           GracefulConfig

	highValue decimal.Decimal
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, flags and YAML
// files, then validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PETRO",
		Files:     []string{"config.yaml", "/etc/petrobahia/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	threshold, err := decimal.NewFromString(c.HighValueThreshold)
	if err != nil {
		return errors.Wrapf(err, "parse high value threshold %q", c.HighValueThreshold)
	}
	if threshold.IsNegative() {
		return errors.Errorf("high value threshold %s is negative", threshold)
	}
	c.highValue = threshold
	return nil
}

// HighValue returns the parsed high-value alert threshold.
func (c *Config) HighValue() decimal.Decimal {
	return c.highValue
}

// applyPlatformDefaults honours the DATABASE_URL and PORT variables set by
// hosting platforms.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
