package analyze

import (
	"fmt"
	"math"

	"github.com/ccfoodbank/pantrycast/timeseries"
	"gonum.org/v1/gonum/stat"
)

// LagCorrelation is the Pearson correlation between a target series and
// a driver series shifted back by Lag months.
type LagCorrelation struct {
	Lag  int
	Corr float64
}

// Correlation computes the Pearson correlation between two aligned
// slices, skipping pairs where either value is undefined.
func Correlation(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// LagCorrelations correlates target[t] against driver[t-lag] for lags 1
// through maxLag. The lag-0 self pairing is intentionally absent. Both
// series must be aligned on the same period grid.
func LagCorrelations(target, driver *timeseries.Series, maxLag int) ([]LagCorrelation, error) {
	if target.Len() != driver.Len() {
		return nil, fmt.Errorf("target has %d observations, driver has %d, %w",
			target.Len(), driver.Len(), timeseries.ErrLenMismatch)
	}
	n := target.Len()
	if maxLag >= n {
		maxLag = n - 1
	}

	out := make([]LagCorrelation, 0, maxLag)
	for lag := 1; lag <= maxLag; lag++ {
		out = append(out, LagCorrelation{
			Lag:  lag,
			Corr: Correlation(target.Y[lag:], driver.Y[:n-lag]),
		})
	}
	return out, nil
}
