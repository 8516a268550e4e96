// Package config provides typed configuration for the valuation engine.
//
// All tables that were ad-hoc lookups in earlier iterations (quality
// weights, sector volatility and correlation heuristics, industry
// multiple benchmarks) live here as explicit structures with defaults,
// validated at construction rather than patched at lookup time.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AnalysisConfig holds the market assumptions and conservatism factors
// shared by the EPV and DCF calculations.
type AnalysisConfig struct {
	RiskFreeRate      float64 `yaml:"risk_free_rate"`
	MarketRiskPremium float64 `yaml:"market_risk_premium"`

	// ConservatismFactor is applied to normalized earnings (default 0.9).
	ConservatismFactor float64 `yaml:"conservatism_factor"`

	// DefaultTerminalGrowth is the DCF terminal growth assumption used
	// when the caller does not supply one.
	DefaultTerminalGrowth float64 `yaml:"default_terminal_growth"`

	// QualityWeights maps quality component names to their weight in the
	// overall score. Components without an entry receive DefaultQualityWeight.
	QualityWeights map[string]float64 `yaml:"quality_weights"`
}

// DefaultQualityWeight applies to quality components absent from the
// QualityWeights map.
const DefaultQualityWeight = 0.1

// SectorProfile holds the heuristic risk assumptions for one sector.
// These are intentional simplifications, not historical estimates.
type SectorProfile struct {
	Volatility float64 `yaml:"volatility"`
}

// RiskModelConfig holds the optimizer's heuristic correlation and
// volatility assumptions.
type RiskModelConfig struct {
	// IntraSectorCorrelation is assumed between two candidates in the
	// same sector, CrossSectorCorrelation between different sectors.
	IntraSectorCorrelation float64 `yaml:"intra_sector_correlation"`
	CrossSectorCorrelation float64 `yaml:"cross_sector_correlation"`

	Sectors           map[string]SectorProfile `yaml:"sectors"`
	DefaultVolatility float64                  `yaml:"default_volatility"`

	RiskAversion float64 `yaml:"risk_aversion"`
	RiskFreeRate float64 `yaml:"risk_free_rate"`
}

// SectorMultiples holds benchmark valuation multiples for one sector.
type SectorMultiples struct {
	PE       float64 `yaml:"pe"`
	PB       float64 `yaml:"pb"`
	PS       float64 `yaml:"ps"`
	EVEBITDA float64 `yaml:"ev_ebitda"`
}

// MultiplesTable maps sector names to benchmark multiples. Lookups for
// unknown sectors resolve to the "Default" bucket.
type MultiplesTable map[string]SectorMultiples

// Config is the root configuration object.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	RiskModel RiskModelConfig `yaml:"risk_model"`
	Multiples MultiplesTable  `yaml:"multiples"`
}

// Default returns the built-in configuration. The numbers mirror the
// reference assumptions: 4% risk-free, 6% market premium, 10%
// conservatism haircut, sector heuristics for the optimizer, and the
// static industry multiple benchmarks.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Analysis: AnalysisConfig{
			RiskFreeRate:          0.04,
			MarketRiskPremium:     0.06,
			ConservatismFactor:    0.9,
			DefaultTerminalGrowth: 0.025,
			QualityWeights: map[string]float64{
				"earnings_stability": 0.25,
				"roe_quality":        0.25,
				"leverage_quality":   0.15,
				"liquidity_quality":  0.10,
				"growth_quality":     0.15,
			},
		},
		RiskModel: RiskModelConfig{
			IntraSectorCorrelation: 0.6,
			CrossSectorCorrelation: 0.3,
			DefaultVolatility:      0.20,
			RiskAversion:           2.0,
			RiskFreeRate:           0.02,
			Sectors: map[string]SectorProfile{
				"Technology": {Volatility: 0.25},
				"Healthcare": {Volatility: 0.20},
				"Financial":  {Volatility: 0.30},
				"Consumer":   {Volatility: 0.18},
				"Industrial": {Volatility: 0.22},
				"Energy":     {Volatility: 0.35},
				"Utilities":  {Volatility: 0.15},
			},
		},
		Multiples: MultiplesTable{
			"Technology": {PE: 25.0, PB: 4.0, PS: 6.0, EVEBITDA: 18.0},
			"Healthcare": {PE: 18.0, PB: 3.0, PS: 4.0, EVEBITDA: 14.0},
			"Financial":  {PE: 12.0, PB: 1.2, PS: 2.5, EVEBITDA: 10.0},
			"Consumer":   {PE: 20.0, PB: 2.5, PS: 1.8, EVEBITDA: 12.0},
			"Industrial": {PE: 16.0, PB: 2.0, PS: 1.5, EVEBITDA: 11.0},
			"Energy":     {PE: 14.0, PB: 1.5, PS: 1.2, EVEBITDA: 8.0},
			"Materials":  {PE: 15.0, PB: 1.8, PS: 1.3, EVEBITDA: 9.0},
			"Utilities":  {PE: 18.0, PB: 1.4, PS: 2.0, EVEBITDA: 10.0},
			"Default":    {PE: 18.0, PB: 2.5, PS: 3.0, EVEBITDA: 12.0},
		},
	}
}

// Load builds configuration from defaults, an optional YAML file, and
// environment overrides, then validates it.
//
// Resolution order: defaults, then the YAML file named by EPV_CONFIG_FILE
// (if set and readable), then individual environment variables.
func Load() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("EPV_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.LogLevel = getEnv("EPV_LOG_LEVEL", cfg.LogLevel)
	if v, ok := getEnvFloat("EPV_RISK_FREE_RATE"); ok {
		cfg.Analysis.RiskFreeRate = v
	}
	if v, ok := getEnvFloat("EPV_MARKET_RISK_PREMIUM"); ok {
		cfg.Analysis.MarketRiskPremium = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would destabilize
// downstream calculations.
func (c *Config) Validate() error {
	if c.Analysis.RiskFreeRate < 0 {
		return fmt.Errorf("risk_free_rate must be non-negative, got %v", c.Analysis.RiskFreeRate)
	}
	if c.Analysis.MarketRiskPremium <= 0 {
		return fmt.Errorf("market_risk_premium must be positive, got %v", c.Analysis.MarketRiskPremium)
	}
	if c.Analysis.ConservatismFactor <= 0 || c.Analysis.ConservatismFactor > 1 {
		return fmt.Errorf("conservatism_factor must be in (0,1], got %v", c.Analysis.ConservatismFactor)
	}
	for name, w := range c.Analysis.QualityWeights {
		if w < 0 {
			return fmt.Errorf("quality weight %q must be non-negative, got %v", name, w)
		}
	}
	rm := c.RiskModel
	if rm.IntraSectorCorrelation < -1 || rm.IntraSectorCorrelation > 1 {
		return fmt.Errorf("intra_sector_correlation must be in [-1,1], got %v", rm.IntraSectorCorrelation)
	}
	if rm.CrossSectorCorrelation < -1 || rm.CrossSectorCorrelation > 1 {
		return fmt.Errorf("cross_sector_correlation must be in [-1,1], got %v", rm.CrossSectorCorrelation)
	}
	if rm.DefaultVolatility <= 0 {
		return fmt.Errorf("default_volatility must be positive, got %v", rm.DefaultVolatility)
	}
	for name, p := range rm.Sectors {
		if p.Volatility <= 0 {
			return fmt.Errorf("sector %q volatility must be positive, got %v", name, p.Volatility)
		}
	}
	if _, ok := c.Multiples["Default"]; !ok {
		return fmt.Errorf("multiples table must define a Default bucket")
	}
	return nil
}

// ForSector returns the benchmark multiples for a sector, falling back
// to the Default bucket when the sector is unknown.
func (t MultiplesTable) ForSector(sector string) SectorMultiples {
	if m, ok := t[sector]; ok {
		return m
	}
	return t["Default"]
}

// VolatilityFor returns the heuristic volatility for a sector, or the
// default when the sector has no profile.
func (r RiskModelConfig) VolatilityFor(sector string) float64 {
	if p, ok := r.Sectors[sector]; ok {
		return p.Volatility
	}
	return r.DefaultVolatility
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
