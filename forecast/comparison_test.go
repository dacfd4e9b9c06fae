package forecast

import (
	"testing"
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakSeries(t *testing.T) *timeseries.Series {
	t.Helper()
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	breakDate := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)

	pattern := []float64{0, -5, 10, 3, -2, 8, 1, -4, 6, 2, 15, 9}
	n := 84 // 2017-01 through 2023-12
	y := make([]float64, n)
	ts := make([]time.Time, n)
	post := 0
	for i := range y {
		ts[i] = start.AddDate(0, i, 0)
		if ts[i].Before(breakDate) {
			y[i] = 100 + pattern[i%12]
			continue
		}
		y[i] = 400 + 2*float64(post) + pattern[i%12]
		post++
	}
	s, err := timeseries.New(ts, y)
	require.NoError(t, err)
	return s
}

func TestCompare(t *testing.T) {
	cmp, err := Compare(breakSeries(t), nil)
	require.NoError(t, err)

	// the caseload level quadruples, so only post-break data trains
	assert.True(t, cmp.BreakApplied)
	assert.Greater(t, cmp.PostBreakMean, 1.5*cmp.PreBreakMean)

	// 2019-03 through 2023-12 is 58 months, six held out
	assert.Equal(t, 52, cmp.History.Len())
	assert.Equal(t, 6, cmp.Holdout.Len())

	require.Len(t, cmp.Results, 4)
	assert.Empty(t, cmp.Failures)
	for _, res := range cmp.Results {
		require.Len(t, res.Predicted, 6)
		require.NotNil(t, res.Scores)
	}

	best := cmp.Best()
	require.NotNil(t, best)

	// the deterministic trend-plus-season series is matched exactly by
	// the differencing model, which must then beat the naive anchor
	assert.Equal(t, "SARIMA", best.Name)

	require.NotNil(t, cmp.Future)
	require.Equal(t, 3, cmp.Future.Len())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cmp.Future.T[0])
}

func TestCompareNoBreak(t *testing.T) {
	start := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	y := make([]float64, 48)
	for i := range y {
		y[i] = 100 + float64(i)
	}
	ts := make([]time.Time, len(y))
	for i := range ts {
		ts[i] = start.AddDate(0, i, 0)
	}
	s, err := timeseries.New(ts, y)
	require.NoError(t, err)

	cmp, err := Compare(s, nil)
	require.NoError(t, err)
	assert.False(t, cmp.BreakApplied)
	assert.NotEmpty(t, cmp.Results)
}

func TestCompareSeriesTooShort(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	s := monthlySeries(t, start, []float64{1, 2, 3, 4})

	_, err := Compare(s, nil)
	assert.ErrorIs(t, err, timeseries.ErrHoldoutTooLarge)
}

func TestCompareEmptySeries(t *testing.T) {
	// a fully suppressed target column cleans down to nothing
	_, err := Compare(&timeseries.Series{}, nil)
	assert.ErrorIs(t, err, timeseries.ErrHoldoutTooLarge)
}

func TestBreakMeans(t *testing.T) {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	s := monthlySeries(t, start, []float64{10, 20, 40, 40})

	pre, post := breakMeans(s, time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 15.0, pre)
	assert.Equal(t, 40.0, post)
}
