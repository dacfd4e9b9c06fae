package forecast

import (
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
)

// SeasonalNaive predicts the value observed twelve months before each
// target period. When that period is absent from history it falls back
// to the last history value.
type SeasonalNaive struct {
	period  int
	history *timeseries.Series
}

func NewSeasonalNaive(period int) *SeasonalNaive {
	return &SeasonalNaive{period: period}
}

func (sn *SeasonalNaive) Name() string {
	return "Seasonal Naive"
}

func (sn *SeasonalNaive) Fit(history *timeseries.Series) error {
	if history == nil || history.Len() == 0 {
		return ErrInsufficientHistory
	}
	sn.history = history.Copy()
	return nil
}

func (sn *SeasonalNaive) Forecast(t []time.Time) ([]float64, error) {
	if sn.history == nil {
		return nil, ErrNotFitted
	}
	if len(t) == 0 {
		return nil, ErrNoForecastHorizon
	}
	out := make([]float64, len(t))
	for i, tt := range t {
		prior := timeseries.MonthStart(tt.AddDate(0, -sn.period, 0))
		if v, ok := sn.history.At(prior); ok {
			out[i] = v
			continue
		}
		out[i] = sn.history.Last()
	}
	return out, nil
}
