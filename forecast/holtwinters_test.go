package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoltWinters(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	// a stable level with a repeating monthly pattern is reproduced
	// exactly by the level plus seasonal state
	pattern := []float64{0, -5, 10, 3, -2, 8, 1, -4, 6, 2, 15, 9}
	y := make([]float64, 36)
	for i := range y {
		y[i] = 500 + pattern[i%12]
	}
	history := monthlySeries(t, start, y)

	model := NewHoltWinters(12)
	require.NoError(t, model.Fit(history))

	predicted, err := model.Forecast(futureTimes(history.T[35], 12))
	require.NoError(t, err)
	require.Len(t, predicted, 12)
	for h, v := range predicted {
		assert.InDelta(t, 500+pattern[h%12], v, 1e-6)
	}
}

func TestHoltWintersInsufficientHistory(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	y := make([]float64, 23)
	for i := range y {
		y[i] = float64(i)
	}

	model := NewHoltWinters(12)
	assert.ErrorIs(t, model.Fit(monthlySeries(t, start, y)), ErrInsufficientHistory)
	assert.ErrorIs(t, model.Fit(nil), ErrInsufficientHistory)
}

func TestHoltWintersNotFitted(t *testing.T) {
	model := NewHoltWinters(12)
	_, err := model.Forecast(futureTimes(time.Now(), 3))
	assert.ErrorIs(t, err, ErrNotFitted)
}
