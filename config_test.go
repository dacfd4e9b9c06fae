package pantrycast

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PANTRYCAST_CONFIG", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "CalFresh Households", cfg.TargetColumn)
	assert.Equal(t, "Statewide", cfg.Sentinel)
	assert.Equal(t, "Contra Costa", cfg.County)
	assert.Equal(t, 2.0, cfg.ZScoreThreshold)
	assert.Equal(t, 6, cfg.HoldoutMonths)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PANTRYCAST_CONFIG", "")
	t.Setenv("PANTRYCAST_COUNTY", "Alameda")
	t.Setenv("PANTRYCAST_TOP_TRACTS", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Alameda", cfg.County)
	assert.Equal(t, 5, cfg.TopTracts)
	// untouched keys keep their defaults
	assert.Equal(t, "CalFresh Households", cfg.TargetColumn)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "county: Solano\nzscore_threshold: 2.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("PANTRYCAST_CONFIG", path)
	// environment wins over the file
	t.Setenv("PANTRYCAST_COUNTY", "Napa")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Napa", cfg.County)
	assert.Equal(t, 2.5, cfg.ZScoreThreshold)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("PANTRYCAST_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigNoInput(t *testing.T) {
	t.Setenv("PANTRYCAST_CONFIG", "")
	t.Setenv("PANTRYCAST_STATEWIDE_PATH", "")
	t.Setenv("PANTRYCAST_RETAIL_PATH", "")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrNoInputConfigured)
}

func TestCompareOptions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.BreakDate = "2020-04-01"
	cfg.HoldoutMonths = 12

	opt := cfg.CompareOptions()
	assert.Equal(t, time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), opt.BreakDate)
	assert.Equal(t, 12, opt.Holdout)
	assert.Equal(t, 1.5, opt.BreakMultiplier)
}

func TestAnomalyCenter(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC), cfg.anomalyCenter())

	cfg.AnomalyDate = "not a date"
	assert.True(t, cfg.anomalyCenter().IsZero())
}
