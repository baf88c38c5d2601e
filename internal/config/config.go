package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/fintrack/internal/report"
)

// AppName names the config and data directories.
const AppName = "fintrack"

// DefaultDBName is the ledger file created under DataDir.
const DefaultDBName = "finances.db"

// Config holds all fintrack configuration.
type Config struct {
	Ledger     LedgerConfig     `toml:"ledger"`
	Report     ReportConfig     `toml:"report"`
	Budget     BudgetConfig     `toml:"budget"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
}

// LedgerConfig holds storage settings.
type LedgerConfig struct {
	DBPath            string   `toml:"db_path,omitempty"`
	DefaultCategories []string `toml:"default_categories"`
}

// ReportConfig controls how amounts are read back as income or expense.
type ReportConfig struct {
	Rule             string   `toml:"rule"`
	IncomeCategories []string `toml:"income_categories,omitempty"`
	DefaultDays      int      `toml:"default_days"`
}

// BudgetConfig holds budget tracking settings.
type BudgetConfig struct {
	Monthly *float64 `toml:"monthly,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// DefaultCategories is the seed set written to a fresh ledger.
var DefaultCategories = []string{"Food", "Transportation", "Housing", "Entertainment", "Utilities", "Other"}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Ledger: LedgerConfig{
			DefaultCategories: append([]string(nil), DefaultCategories...),
		},
		Report: ReportConfig{
			Rule:        report.RuleNegative,
			DefaultDays: 30,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			EventsBuffer: 200,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppName)
}

// Path returns the full path to the config file. FINTRACK_CONFIG overrides it.
func Path() string {
	if p := os.Getenv("FINTRACK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the ledger file.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", AppName)
}

// DBPath resolves the ledger file: FINTRACK_DB, then [ledger] db_path, then
// DataDir/finances.db. A leading ~ is expanded.
func (c Config) DBPath() string {
	p := os.Getenv("FINTRACK_DB")
	if p == "" {
		p = c.Ledger.DBPath
	}
	if p == "" {
		return filepath.Join(DataDir(), DefaultDBName)
	}
	return expandHome(p)
}

// Convention returns the income/expense sign convention for reports.
func (c Config) Convention() report.Convention {
	return report.Convention{
		Rule:             c.Report.Rule,
		IncomeCategories: c.Report.IncomeCategories,
	}
}

// MonthlyBudget returns the configured budget, if any.
func (c Config) MonthlyBudget() (float64, bool) {
	if c.Budget.Monthly == nil || *c.Budget.Monthly <= 0 {
		return 0, false
	}
	return *c.Budget.Monthly, true
}

// Validate checks values a hand-edited file could get wrong.
func (c Config) Validate() error {
	var errs []error
	if err := c.Convention().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("[report] %w", err))
	}
	if c.Report.DefaultDays < 0 {
		errs = append(errs, fmt.Errorf("[report] default_days must not be negative, got %d", c.Report.DefaultDays))
	}
	if c.Budget.Monthly != nil && *c.Budget.Monthly < 0 {
		errs = append(errs, fmt.Errorf("[budget] monthly must not be negative, got %g", *c.Budget.Monthly))
	}
	for _, name := range c.Ledger.DefaultCategories {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("[ledger] default_categories contains an empty name"))
			break
		}
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("[server] addr must not be empty"))
	}
	if c.Server.EventsBuffer < 0 {
		errs = append(errs, fmt.Errorf("[server] events_buffer must not be negative, got %d", c.Server.EventsBuffer))
	}
	return errors.Join(errs...)
}

// Load reads the config file, returning defaults if it doesn't exist.
// Keys missing from the file keep their default values.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", Path(), err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
