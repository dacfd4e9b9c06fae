package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
)

// HoltWinters is exponential smoothing with an additive seasonal
// component and no explicit trend term. Smoothing constants are chosen
// by a coarse grid search minimizing one-step-ahead squared error.
type HoltWinters struct {
	period int

	alpha    float64
	gamma    float64
	level    float64
	seasonal []float64
	n        int
	fitted   bool
}

// smoothing constant search grid
const (
	hwGridStart = 0.05
	hwGridEnd   = 0.95
	hwGridStep  = 0.05
)

func NewHoltWinters(period int) *HoltWinters {
	return &HoltWinters{period: period}
}

func (hw *HoltWinters) Name() string {
	return "Holt-Winters"
}

// Fit estimates the level and seasonal states. Needs at least two full
// seasons of history to initialize the seasonal component.
func (hw *HoltWinters) Fit(history *timeseries.Series) error {
	if history == nil || history.Len() < 2*hw.period {
		return fmt.Errorf("have %d observations, need %d, %w",
			seriesLen(history), 2*hw.period, ErrInsufficientHistory)
	}
	y := history.Y

	bestSSE := math.Inf(1)
	var bestAlpha, bestGamma float64
	for alpha := hwGridStart; alpha <= hwGridEnd; alpha += hwGridStep {
		for gamma := hwGridStart; gamma <= hwGridEnd; gamma += hwGridStep {
			sse := hw.sweep(y, alpha, gamma, nil)
			if sse < bestSSE {
				bestSSE = sse
				bestAlpha = alpha
				bestGamma = gamma
			}
		}
	}
	if math.IsInf(bestSSE, 1) || math.IsNaN(bestSSE) {
		return fmt.Errorf("smoothing grid search produced no finite error, %w", ErrNonConvergence)
	}

	final := make([]float64, hw.period)
	hw.level = 0
	hw.sweep(y, bestAlpha, bestGamma, final)
	hw.alpha = bestAlpha
	hw.gamma = bestGamma
	hw.seasonal = final
	hw.n = len(y)
	hw.fitted = true
	return nil
}

// sweep runs the smoothing recursion once, returning the one-step-ahead
// SSE past the initialization season. When state is non-nil the final
// level and seasonal values are captured into the receiver and state.
func (hw *HoltWinters) sweep(y []float64, alpha, gamma float64, state []float64) float64 {
	m := hw.period

	level := 0.0
	for i := 0; i < m; i++ {
		level += y[i]
	}
	level /= float64(m)

	seasonal := make([]float64, m)
	for i := 0; i < m; i++ {
		seasonal[i] = y[i] - level
	}

	sse := 0.0
	for t := 0; t < len(y); t++ {
		idx := t % m
		oneStep := level + seasonal[idx]
		if t >= m {
			diff := y[t] - oneStep
			sse += diff * diff
		}
		prevLevel := level
		level = alpha*(y[t]-seasonal[idx]) + (1-alpha)*prevLevel
		seasonal[idx] = gamma*(y[t]-level) + (1-gamma)*seasonal[idx]
	}

	if state != nil {
		hw.level = level
		copy(state, seasonal)
	}
	return sse
}

func (hw *HoltWinters) Forecast(t []time.Time) ([]float64, error) {
	if !hw.fitted {
		return nil, ErrNotFitted
	}
	if len(t) == 0 {
		return nil, ErrNoForecastHorizon
	}
	out := make([]float64, len(t))
	for h := range out {
		out[h] = hw.level + hw.seasonal[(hw.n+h)%hw.period]
	}
	return out, nil
}

func seriesLen(s *timeseries.Series) int {
	if s == nil {
		return 0
	}
	return s.Len()
}
