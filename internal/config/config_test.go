package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.04, cfg.Analysis.RiskFreeRate)
	assert.Equal(t, 0.06, cfg.Analysis.MarketRiskPremium)
	assert.Equal(t, 0.9, cfg.Analysis.ConservatismFactor)
	assert.Equal(t, 2.0, cfg.RiskModel.RiskAversion)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative risk-free rate", func(c *Config) { c.Analysis.RiskFreeRate = -0.01 }},
		{"zero market premium", func(c *Config) { c.Analysis.MarketRiskPremium = 0 }},
		{"conservatism above 1", func(c *Config) { c.Analysis.ConservatismFactor = 1.5 }},
		{"negative quality weight", func(c *Config) { c.Analysis.QualityWeights["roe_quality"] = -0.1 }},
		{"correlation out of range", func(c *Config) { c.RiskModel.IntraSectorCorrelation = 1.2 }},
		{"zero default volatility", func(c *Config) { c.RiskModel.DefaultVolatility = 0 }},
		{"missing default multiples", func(c *Config) { delete(c.Multiples, "Default") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMultiplesTable_ForSector(t *testing.T) {
	table := Default().Multiples

	tech := table.ForSector("Technology")
	assert.Equal(t, 25.0, tech.PE)

	unknown := table.ForSector("Shipping")
	assert.Equal(t, table["Default"], unknown, "unknown sectors fall back to the Default bucket")
}

func TestRiskModelConfig_VolatilityFor(t *testing.T) {
	rm := Default().RiskModel

	assert.Equal(t, 0.35, rm.VolatilityFor("Energy"))
	assert.Equal(t, rm.DefaultVolatility, rm.VolatilityFor("Unknown"))
	assert.Equal(t, rm.DefaultVolatility, rm.VolatilityFor(""))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EPV_LOG_LEVEL", "debug")
	t.Setenv("EPV_RISK_FREE_RATE", "0.05")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.05, cfg.Analysis.RiskFreeRate)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("analysis:\n  risk_free_rate: 0.035\n  market_risk_premium: 0.055\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("EPV_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.035, cfg.Analysis.RiskFreeRate)
	assert.Equal(t, 0.055, cfg.Analysis.MarketRiskPremium)
	assert.Equal(t, 0.9, cfg.Analysis.ConservatismFactor, "unspecified fields keep defaults")
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("EPV_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
