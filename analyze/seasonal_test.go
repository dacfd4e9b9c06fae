package analyze

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeInsufficientData(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	y := make([]float64, 23)
	for i := range y {
		y[i] = float64(i)
	}
	s := monthlySeries(t, start, y)

	_, err := Decompose(s, 12)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDecomposeRecoversSeasonalPeak(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	// linear growth plus a fixed monthly pattern peaking in November
	pattern := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 5, 20, 10}
	y := make([]float64, 36)
	for i := range y {
		y[i] = 100 + 2*float64(i) + pattern[i%12]
	}
	s := monthlySeries(t, start, y)

	d, err := Decompose(s, 12)
	require.NoError(t, err)
	assert.Equal(t, time.November, d.Peak)
	assert.Equal(t, 12, d.Period)

	// the seasonal index preserves the pattern's shape up to centering
	require.Contains(t, d.Index, time.November)
	require.Contains(t, d.Index, time.October)
	assert.Greater(t, d.Index[time.November], d.Index[time.December])
	assert.Greater(t, d.Index[time.December], d.Index[time.October])
	assert.InDelta(t, 15, d.Index[time.November]-d.Index[time.October], 0.5)

	// components sum back to the observation wherever the trend exists
	for i := range y {
		if math.IsNaN(d.Trend[i]) {
			continue
		}
		assert.InDelta(t, y[i], d.Trend[i]+d.Seasonal[i]+d.Residual[i], 1e-9)
		assert.InDelta(t, 0, d.Residual[i], 1e-9)
	}

	// the centered moving average has no value in the first and last
	// half period
	assert.True(t, math.IsNaN(d.Trend[0]))
	assert.True(t, math.IsNaN(d.Trend[5]))
	assert.False(t, math.IsNaN(d.Trend[6]))
	assert.True(t, math.IsNaN(d.Trend[35]))
}
