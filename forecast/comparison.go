package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
)

var ErrNoCandidateSucceeded = errors.New("no candidate model could be fitted")

// CompareOptions parameterizes a model comparison run. The numeric
// constants encode the analysts' judgment calls and are preserved
// verbatim from the operational scripts.
type CompareOptions struct {
	// BreakDate is the reference date for the structural-break check.
	BreakDate time.Time
	// BreakMultiplier triggers the break when the post-period mean
	// exceeds this multiple of the pre-period mean.
	BreakMultiplier float64
	// Holdout is the number of trailing observations held out for
	// validation.
	Holdout int
	// FutureHorizon is how many periods past the last observation the
	// final refit forecasts.
	FutureHorizon int
	// SeasonalPeriod is the season length in observations.
	SeasonalPeriod int
}

// NewDefaultCompareOptions mirrors the statewide demand study: a March
// 2019 caseload regime change, six months of validation, and a three
// month outlook.
func NewDefaultCompareOptions() *CompareOptions {
	return &CompareOptions{
		BreakDate:       time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC),
		BreakMultiplier: 1.5,
		Holdout:         6,
		FutureHorizon:   3,
		SeasonalPeriod:  12,
	}
}

// Result is one successfully fitted and scored candidate.
type Result struct {
	Name      string    `json:"model"`
	Predicted []float64 `json:"predicted"`
	Scores    *Scores   `json:"scores"`
}

// Failure records a candidate that could not be fitted. The comparison
// continues without it.
type Failure struct {
	Name   string `json:"model"`
	Reason string `json:"reason"`
}

// Comparison is the outcome of one evaluation run: per-model holdout
// scores plus the final full-history forecast. Created once per run,
// printed, and discarded.
type Comparison struct {
	BreakApplied  bool
	PreBreakMean  float64
	PostBreakMean float64

	History *timeseries.Series
	Holdout *timeseries.Series

	Results  []Result
	Failures []Failure

	// Future is the final SARIMA forecast beyond the last observation,
	// fitted on the full series. Nil when the final refit failed.
	Future *timeseries.Series
}

// Compare runs the full evaluation pipeline on a cleaned series:
// structural-break check, regularization, train/test split, candidate
// fitting and scoring, and the final future forecast.
func Compare(s *timeseries.Series, opt *CompareOptions) (*Comparison, error) {
	if opt == nil {
		opt = NewDefaultCompareOptions()
	}

	cmp := &Comparison{}

	working := s
	cmp.PreBreakMean, cmp.PostBreakMean = breakMeans(s, opt.BreakDate)
	if cmp.PostBreakMean > opt.BreakMultiplier*cmp.PreBreakMean {
		// A sustained level shift makes the old regime misleading to
		// train on; keep only post-break data.
		cmp.BreakApplied = true
		working = s.After(opt.BreakDate)
	}
	working = working.Regularize()

	history, holdout, err := working.Split(opt.Holdout)
	if err != nil {
		return nil, fmt.Errorf("unable to split series for validation, %w", err)
	}
	cmp.History = history
	cmp.Holdout = holdout

	candidates := []Model{
		NewNaive(),
		NewSeasonalNaive(opt.SeasonalPeriod),
		NewHoltWinters(opt.SeasonalPeriod),
		NewSARIMA(opt.SeasonalPeriod),
	}
	for _, model := range candidates {
		result, err := evaluate(model, history, holdout)
		if err != nil {
			slog.Warn("skipping candidate model", "model", model.Name(), "error", err.Error())
			cmp.Failures = append(cmp.Failures, Failure{Name: model.Name(), Reason: err.Error()})
			continue
		}
		cmp.Results = append(cmp.Results, *result)
	}
	if len(cmp.Results) == 0 {
		return nil, ErrNoCandidateSucceeded
	}

	// Final refit of the most complex candidate on the full cleaned
	// series. This output has no holdout to validate against.
	futureT := futurePeriods(working.T[len(working.T)-1], opt.FutureHorizon)
	final := NewSARIMA(opt.SeasonalPeriod)
	if err := final.Fit(working); err != nil {
		slog.Warn("final refit failed, no future forecast", "model", final.Name(), "error", err.Error())
		cmp.Failures = append(cmp.Failures, Failure{Name: final.Name() + " (final refit)", Reason: err.Error()})
		return cmp, nil
	}
	futureY, err := final.Forecast(futureT)
	if err != nil {
		slog.Warn("future forecast failed", "model", final.Name(), "error", err.Error())
		cmp.Failures = append(cmp.Failures, Failure{Name: final.Name() + " (final refit)", Reason: err.Error()})
		return cmp, nil
	}
	cmp.Future = &timeseries.Series{T: futureT, Y: futureY}
	return cmp, nil
}

// Best returns the successful candidate with the lowest RMSE.
func (c *Comparison) Best() *Result {
	var best *Result
	for i := range c.Results {
		if best == nil || c.Results[i].Scores.RMSE < best.Scores.RMSE {
			best = &c.Results[i]
		}
	}
	return best
}

func evaluate(model Model, history, holdout *timeseries.Series) (*Result, error) {
	if err := model.Fit(history); err != nil {
		return nil, fmt.Errorf("unable to fit, %w", err)
	}
	predicted, err := model.Forecast(holdout.T)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast holdout, %w", err)
	}
	scores, err := NewScores(predicted, holdout.Y)
	if err != nil {
		return nil, fmt.Errorf("unable to score against holdout, %w", err)
	}
	return &Result{Name: model.Name(), Predicted: predicted, Scores: scores}, nil
}

// breakMeans computes the target mean before and at-or-after the
// reference date.
func breakMeans(s *timeseries.Series, breakDate time.Time) (pre, post float64) {
	var preSum, postSum float64
	var preN, postN int
	for i := 0; i < s.Len(); i++ {
		if math.IsNaN(s.Y[i]) {
			continue
		}
		if s.T[i].Before(breakDate) {
			preSum += s.Y[i]
			preN++
		} else {
			postSum += s.Y[i]
			postN++
		}
	}
	pre = math.NaN()
	post = math.NaN()
	if preN > 0 {
		pre = preSum / float64(preN)
	}
	if postN > 0 {
		post = postSum / float64(postN)
	}
	return pre, post
}

func futurePeriods(last time.Time, horizon int) []time.Time {
	out := make([]time.Time, 0, horizon)
	for i := 1; i <= horizon; i++ {
		out = append(out, last.AddDate(0, i, 0))
	}
	return out
}
