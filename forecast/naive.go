package forecast

import (
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
)

// Naive predicts the last observed history value for every future
// period. Surprisingly hard to beat in stable systems, which is exactly
// why it anchors the comparison.
type Naive struct {
	last   float64
	fitted bool
}

func NewNaive() *Naive {
	return &Naive{}
}

func (n *Naive) Name() string {
	return "Naive (Last Value)"
}

func (n *Naive) Fit(history *timeseries.Series) error {
	if history == nil || history.Len() == 0 {
		return ErrInsufficientHistory
	}
	n.last = history.Last()
	n.fitted = true
	return nil
}

func (n *Naive) Forecast(t []time.Time) ([]float64, error) {
	if !n.fitted {
		return nil, ErrNotFitted
	}
	if len(t) == 0 {
		return nil, ErrNoForecastHorizon
	}
	out := make([]float64, len(t))
	for i := range out {
		out[i] = n.last
	}
	return out, nil
}
