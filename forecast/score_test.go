package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScores(t *testing.T) {
	predicted := []float64{10, 20, 30}
	actual := []float64{12, 18, 30}

	scores, err := NewScores(predicted, actual)
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3.0, scores.MAE, 1e-12)
	assert.InDelta(t, math.Sqrt(8.0/3.0), scores.RMSE, 1e-12)
	assert.InDelta(t, (2.0/12.0+2.0/18.0)/3.0*100.0, scores.MAPE, 1e-12)
}

func TestScoresLenMismatch(t *testing.T) {
	_, err := NewScores([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrResLenMismatch)
}

func TestMAPESkipsZeroActuals(t *testing.T) {
	mape, err := MAPE([]float64{10, 10}, []float64{0, 20})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, mape, 1e-12)
}

func TestMetricsSkipUndefinedPairs(t *testing.T) {
	predicted := []float64{10, math.NaN(), 30}
	actual := []float64{12, 100, math.NaN()}

	mae, err := MAE(predicted, actual)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, mae, 1e-12)

	rmse, err := RMSE(predicted, actual)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, rmse, 1e-12)
}

func TestMetricsAllPairsSkipped(t *testing.T) {
	nan := math.NaN()
	mae, err := MAE([]float64{nan}, []float64{1})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(mae))

	mape, err := MAPE([]float64{1}, []float64{0})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(mape))
}
