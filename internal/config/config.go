// Package config loads and validates the YAML configuration file for the
// quotedoc CLI and server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
	ErrBadExchangeRate   = errors.New("exchange rate must be positive")
	ErrDuplicateCurrency = errors.New("duplicate currency code")
)

// Field length limits.
const (
	MaxNameLength    = 100  // Company name
	MaxAddressLength = 300  // Postal address
	MaxEmailLength   = 254  // RFC 5321
	MaxPhoneLength   = 30   // Including country prefix
	MaxTaxIDLength   = 50   // Registration/tax number
	MaxBankLength    = 500  // Free-form bank details block
	MaxPathLength    = 1024 // Logo/output paths
)

// Config holds all configuration for document generation.
type Config struct {
	Company    CompanyConfig    `yaml:"company"`
	Raster     RasterConfig     `yaml:"raster"`
	Currencies []CurrencyConfig `yaml:"currencies"`
	Output     OutputConfig     `yaml:"output"`
	Store      StoreConfig      `yaml:"store"`
	Server     ServerConfig     `yaml:"server"`
}

// CompanyConfig is the seller profile rendered into documents.
type CompanyConfig struct {
	Name        string `yaml:"name"`
	Address     string `yaml:"address"`
	Phone       string `yaml:"phone"`
	Email       string `yaml:"email"`
	TaxID       string `yaml:"taxId"`
	BankAccount string `yaml:"bankAccount"`
	LogoPath    string `yaml:"logoPath"`
}

// RasterConfig controls the screenshot capture.
type RasterConfig struct {
	PixelWidth    int     `yaml:"pixelWidth"`    // 0 = canonical 794
	Scale         float64 `yaml:"scale"`         // 0 = canonical 2x
	SettleDelayMS int     `yaml:"settleDelayMs"` // extra wait after readiness, 0 = none
	TimeoutSec    int     `yaml:"timeoutSec"`    // 0 = library default
}

// CurrencyConfig is one exchange rate into the domestic currency, used when
// converting a quote into a contract at save time.
type CurrencyConfig struct {
	Code string  `yaml:"code"`
	Rate float64 `yaml:"rate"` // domestic units per unit of Code
}

// OutputConfig defines where exported artifacts are written.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = current directory
}

// StoreConfig defines where documents and drafts are persisted.
type StoreConfig struct {
	Dir string `yaml:"dir"` // empty = ./quotedoc-data
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Addr string `yaml:"addr"` // empty = :8080
}

// Load reads and validates a config file. A missing path returns
// ErrConfigNotFound; an empty path returns zero-value defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field lengths and the currency table.
func (c Config) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"company.name", c.Company.Name, MaxNameLength},
		{"company.address", c.Company.Address, MaxAddressLength},
		{"company.phone", c.Company.Phone, MaxPhoneLength},
		{"company.email", c.Company.Email, MaxEmailLength},
		{"company.taxId", c.Company.TaxID, MaxTaxIDLength},
		{"company.bankAccount", c.Company.BankAccount, MaxBankLength},
		{"company.logoPath", c.Company.LogoPath, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"store.dir", c.Store.Dir, MaxPathLength},
	}
	for _, chk := range checks {
		if len(chk.value) > chk.max {
			return fmt.Errorf("%w: %s (%d > %d)", ErrFieldTooLong, chk.field, len(chk.value), chk.max)
		}
	}

	seen := map[string]bool{}
	for _, cur := range c.Currencies {
		if cur.Rate <= 0 {
			return fmt.Errorf("%w: %s", ErrBadExchangeRate, cur.Code)
		}
		if seen[cur.Code] {
			return fmt.Errorf("%w: %s", ErrDuplicateCurrency, cur.Code)
		}
		seen[cur.Code] = true
	}
	return nil
}

// Rate returns the exchange rate for code, or ok=false if not configured.
func (c Config) Rate(code string) (float64, bool) {
	for _, cur := range c.Currencies {
		if cur.Code == code {
			return cur.Rate, true
		}
	}
	return 0, false
}
