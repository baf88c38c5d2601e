package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fintrack/internal/report"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("FINTRACK_CONFIG", "")
	t.Setenv("FINTRACK_DB", "")
	return dir
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	budget := 1500.0
	cfg.Budget.Monthly = &budget
	cfg.Report.Rule = report.RuleCategory
	cfg.Report.IncomeCategories = []string{"Income", "Salary"}
	cfg.Appearance.Theme = "tokyo-night"

	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	monthly, ok := got.MonthlyBudget()
	assert.True(t, ok)
	assert.Equal(t, 1500.0, monthly)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	isolate(t)

	require.NoError(t, os.MkdirAll(Dir(), 0o755))
	require.NoError(t, os.WriteFile(Path(), []byte("[appearance]\ntheme = \"terminal\"\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "terminal", cfg.Appearance.Theme)
	assert.Equal(t, report.RuleNegative, cfg.Report.Rule)
	assert.Equal(t, DefaultCategories, cfg.Ledger.DefaultCategories)
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Addr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)

	require.NoError(t, os.MkdirAll(Dir(), 0o755))
	require.NoError(t, os.WriteFile(Path(), []byte("[report]\nrule = \"category\"\n"), 0o600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "income category")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Report.Rule = "upside-down"
	cfg.Report.DefaultDays = -1
	cfg.Server.Addr = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sign rule")
	assert.Contains(t, err.Error(), "default_days")
	assert.Contains(t, err.Error(), "addr")
}

func TestDBPathResolution(t *testing.T) {
	dir := isolate(t)

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(dir, "data", AppName, DefaultDBName), cfg.DBPath())

	cfg.Ledger.DBPath = "/srv/books.db"
	assert.Equal(t, "/srv/books.db", cfg.DBPath())

	t.Setenv("FINTRACK_DB", "/tmp/override.db")
	assert.Equal(t, "/tmp/override.db", cfg.DBPath())
}

func TestPathOverride(t *testing.T) {
	isolate(t)
	t.Setenv("FINTRACK_CONFIG", "/etc/fintrack.toml")
	assert.Equal(t, "/etc/fintrack.toml", Path())
}

func TestMonthlyBudgetUnset(t *testing.T) {
	_, ok := DefaultConfig().MonthlyBudget()
	assert.False(t, ok)
}
