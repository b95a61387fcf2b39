package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"yieldvault/models"

	"github.com/shopspring/decimal"
)

// secondsPerYear converts the configured annual rate to a per-second one
const secondsPerYear = 365 * 24 * 3600

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Ledger configuration
	InitialRate int64 // per-second rate scaled by models.RatePrecision

	// Access policy
	RateAdminAddress  string
	SupplyControllers []string
	CustodyAddress    string

	// Observability
	MetricsAddr string

	// Environment: "development", "production" or "test"
	Environment string
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RateAdminAddress: os.Getenv("RATE_ADMIN_ADDRESS"),
		CustodyAddress:   os.Getenv("CUSTODY_ADDRESS"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		Environment:      os.Getenv("ENVIRONMENT"),
	}

	if config.CustodyAddress == "" {
		config.CustodyAddress = "custody"
	}
	if config.MetricsAddr == "" {
		config.MetricsAddr = ":9090"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	annual := os.Getenv("INITIAL_ANNUAL_RATE")
	if annual == "" {
		annual = "0.05"
	}
	rate, err := PerSecondRate(annual)
	if err != nil {
		return nil, fmt.Errorf("INITIAL_ANNUAL_RATE: %w", err)
	}
	config.InitialRate = rate

	if controllers := os.Getenv("SUPPLY_CONTROLLER_ADDRESSES"); controllers != "" {
		for _, addr := range strings.Split(controllers, ",") {
			addr = strings.TrimSpace(addr)
			if addr != "" {
				config.SupplyControllers = append(config.SupplyControllers, addr)
			}
		}
	}
	// The custodian mints and burns on deposit and redemption, so it is
	// always a supply controller.
	config.SupplyControllers = append(config.SupplyControllers, config.CustodyAddress)

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.RateAdminAddress == "" {
			return nil, fmt.Errorf("RATE_ADMIN_ADDRESS is required")
		}
	}

	return config, nil
}

// PerSecondRate converts a decimal annual rate such as "0.05" into the
// scaled per-second rate stored in the ledger, truncating toward zero.
func PerSecondRate(annual string) (int64, error) {
	d, err := decimal.NewFromString(annual)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q: %w", annual, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("rate %q must not be negative", annual)
	}

	scaled := d.Mul(decimal.NewFromInt(models.RatePrecision)).Truncate(0).BigInt()
	perSecond := new(big.Int).Quo(scaled, big.NewInt(secondsPerYear))
	if !perSecond.IsInt64() {
		return 0, fmt.Errorf("rate %q out of range", annual)
	}
	return perSecond.Int64(), nil
}
