package analyze

import (
	"math"
	"testing"
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelation(t *testing.T) {
	testData := map[string]struct {
		x        []float64
		y        []float64
		expected float64
	}{
		"perfect positive": {
			x:        []float64{1, 2, 3, 4},
			y:        []float64{10, 20, 30, 40},
			expected: 1,
		},
		"perfect negative": {
			x:        []float64{1, 2, 3, 4},
			y:        []float64{8, 6, 4, 2},
			expected: -1,
		},
		"nan pairs skipped": {
			x:        []float64{1, math.NaN(), 2, 3},
			y:        []float64{2, 100, 4, 6},
			expected: 1,
		},
		"too few defined pairs": {
			x:        []float64{1, math.NaN(), math.NaN()},
			y:        []float64{2, 3, 4},
			expected: math.NaN(),
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			got := Correlation(td.x, td.y)
			if math.IsNaN(td.expected) {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.InDelta(t, td.expected, got, 1e-9)
		})
	}
}

func TestLagCorrelations(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	// the driver leads the target by exactly two months
	driver := []float64{1, 3, 2, 5, 4, 7, 6, 9, 8, 11, 10, 13}
	target := make([]float64, len(driver))
	for i := 2; i < len(target); i++ {
		target[i] = driver[i-2]
	}

	targetSeries := monthlySeries(t, start, target)
	driverSeries := monthlySeries(t, start, driver)

	lags, err := LagCorrelations(targetSeries, driverSeries, 6)
	require.NoError(t, err)
	require.Len(t, lags, 6)

	// lag 0 is intentionally excluded
	assert.Equal(t, 1, lags[0].Lag)
	assert.InDelta(t, 1, lags[1].Corr, 1e-9)
	for _, lc := range lags {
		if lc.Lag == 2 {
			continue
		}
		assert.Less(t, lc.Corr, 0.999)
	}
}

func TestLagCorrelationsLenMismatch(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	a := monthlySeries(t, start, []float64{1, 2, 3})
	b := monthlySeries(t, start, []float64{1, 2})

	_, err := LagCorrelations(a, b, 3)
	assert.ErrorIs(t, err, timeseries.ErrLenMismatch)
}

func TestLagCorrelationsClampsMaxLag(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	a := monthlySeries(t, start, []float64{1, 2, 3, 4})
	b := monthlySeries(t, start, []float64{2, 4, 6, 8})

	lags, err := LagCorrelations(a, b, 10)
	require.NoError(t, err)
	assert.Len(t, lags, 3)
}
