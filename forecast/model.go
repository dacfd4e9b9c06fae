// Package forecast fits candidate forecasting models to a monthly
// demand series and compares them against a trailing holdout window.
package forecast

import (
	"errors"
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
)

var (
	ErrNotFitted           = errors.New("model must be fitted before forecasting")
	ErrInsufficientHistory = errors.New("insufficient history for model")
	ErrNonConvergence      = errors.New("model fit did not converge")
	ErrNoForecastHorizon   = errors.New("forecast horizon must be at least 1 period")
)

// Model is a forecasting method fitted on history and asked to predict
// the given future periods.
type Model interface {
	// Name identifies the method in comparison tables.
	Name() string
	// Fit trains the model on the history series.
	Fit(history *timeseries.Series) error
	// Forecast predicts a value for each requested period. Periods are
	// assumed to directly follow the fitted history at monthly spacing.
	Forecast(t []time.Time) ([]float64, error)
}
