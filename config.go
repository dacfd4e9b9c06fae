// Package pantrycast ties together the loading, analysis, forecasting,
// and chart-rendering stages of the food-bank demand studies.
package pantrycast

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ccfoodbank/pantrycast/forecast"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var ErrNoInputConfigured = errors.New("no input dataset configured")

// Config parameterizes a full run. Defaults mirror the constants the
// analysts baked into the original spreadsheet studies.
type Config struct {
	// StatewidePath is the monthly statewide participation export.
	StatewidePath string `koanf:"statewide_path"`
	// RetailPath is the mRFEI retail food environment export.
	RetailPath string `koanf:"retail_path"`
	// OutputDir receives rendered charts and the JSON report.
	OutputDir string `koanf:"output_dir"`

	DateColumn    string `koanf:"date_column"`
	RegionColumn  string `koanf:"region_column"`
	Sentinel      string `koanf:"sentinel_region"`
	TargetColumn  string `koanf:"target_column"`
	SupportColumn string `koanf:"support_column"`
	DriverColumn  string `koanf:"driver_column"`

	// County filters the retail index to one county's census tracts.
	County string `koanf:"county"`
	// TopTracts is how many highest-need tracts to rank.
	TopTracts int `koanf:"top_tracts"`

	ZScoreThreshold float64 `koanf:"zscore_threshold"`
	SeasonalPeriod  int     `koanf:"seasonal_period"`
	MaxLag          int     `koanf:"max_lag"`

	// AnomalyDate centers the anomaly inspection window (YYYY-MM-DD).
	AnomalyDate  string `koanf:"anomaly_date"`
	WindowMonths int    `koanf:"window_months"`

	HoldoutMonths   int     `koanf:"holdout_months"`
	FutureHorizon   int     `koanf:"future_horizon"`
	BreakDate       string  `koanf:"break_date"`
	BreakMultiplier float64 `koanf:"break_multiplier"`
}

// NewDefaultConfig returns the configuration of the statewide CalFresh
// and Contra Costa retail studies.
func NewDefaultConfig() *Config {
	return &Config{
		StatewidePath: "data/statewide_monthly.csv",
		RetailPath:    "data/mrfei.csv",
		OutputDir:     "out",

		DateColumn:    "Date",
		RegionColumn:  "County",
		Sentinel:      "Statewide",
		TargetColumn:  "CalFresh Households",
		SupportColumn: "CalFresh Persons",
		DriverColumn:  "Unemployment Monthly",

		County:    "Contra Costa",
		TopTracts: 15,

		ZScoreThreshold: 2.0,
		SeasonalPeriod:  12,
		MaxLag:          6,

		AnomalyDate:  "2019-03-01",
		WindowMonths: 3,

		HoldoutMonths:   6,
		FutureHorizon:   3,
		BreakDate:       "2019-03-01",
		BreakMultiplier: 1.5,
	}
}

// LoadConfig builds a Config by layering defaults, an optional YAML
// file named by PANTRYCAST_CONFIG, and PANTRYCAST_-prefixed environment
// variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	base := NewDefaultConfig()

	k := koanf.New(".")
	if path := os.Getenv("PANTRYCAST_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("unable to load config file, %w", err)
		}
	}

	envProvider := env.Provider("PANTRYCAST_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "pantrycast_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("unable to load config from environment, %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config, %w", err)
	}

	if cfg.StatewidePath == "" && cfg.RetailPath == "" {
		return nil, ErrNoInputConfigured
	}
	return &cfg, nil
}

// CompareOptions translates the configuration into forecast comparison
// options.
func (c *Config) CompareOptions() *forecast.CompareOptions {
	opt := forecast.NewDefaultCompareOptions()
	opt.BreakMultiplier = c.BreakMultiplier
	opt.Holdout = c.HoldoutMonths
	opt.FutureHorizon = c.FutureHorizon
	opt.SeasonalPeriod = c.SeasonalPeriod
	if t, err := time.Parse("2006-01-02", c.BreakDate); err == nil {
		opt.BreakDate = t
	}
	return opt
}

// anomalyCenter parses the configured anomaly date, zero when unset or
// malformed.
func (c *Config) anomalyCenter() time.Time {
	t, err := time.Parse("2006-01-02", c.AnomalyDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
