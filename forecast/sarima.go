package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
)

// SARIMA is a seasonal ARIMA model with the fixed order
// (1,1,1)x(1,1,1,m): one regular and one seasonal term each for the
// autoregressive and moving-average components, with one regular and
// one seasonal differencing pass. Parameters are estimated by
// conditional sum of squares with momentum gradient descent.
type SARIMA struct {
	period int

	ar, ma, sar, sma float64
	intercept        float64

	original  []float64
	firstDiff []float64
	diff      []float64
	residuals []float64
	fitted    bool
}

// optimizer constants
const (
	sarimaMaxIter      = 200
	sarimaTolerance    = 1e-8
	sarimaLearningRate = 0.005
	sarimaMomentum     = 0.9
	sarimaDecay        = 0.99
	sarimaClamp        = 0.99
	sarimaPatience     = 20
)

func NewSARIMA(period int) *SARIMA {
	return &SARIMA{period: period}
}

func (s *SARIMA) Name() string {
	return "SARIMA"
}

// Fit differences the history once regularly and once seasonally, then
// estimates the four coefficients on the stationary series. The
// differenced series must span at least two full seasons.
func (s *SARIMA) Fit(history *timeseries.Series) error {
	m := s.period
	n := seriesLen(history)
	if n-1-m < 2*m {
		return fmt.Errorf("have %d observations, need %d, %w", n, 3*m+1, ErrInsufficientHistory)
	}
	y := history.Y

	s.original = make([]float64, n)
	copy(s.original, y)

	s.firstDiff = make([]float64, n-1)
	for i := 1; i < n; i++ {
		s.firstDiff[i-1] = y[i] - y[i-1]
	}
	s.diff = make([]float64, len(s.firstDiff)-m)
	for i := m; i < len(s.firstDiff); i++ {
		s.diff[i-m] = s.firstDiff[i] - s.firstDiff[i-m]
	}

	var mean float64
	for _, v := range s.diff {
		mean += v
	}
	s.intercept = mean / float64(len(s.diff))

	s.ar = autocorr(s.diff, 1) * 0.5
	s.sar = autocorr(s.diff, m) * 0.5
	s.ma = 0.1
	s.sma = 0.1

	if err := s.optimize(); err != nil {
		return err
	}
	s.fitted = true
	return nil
}

// optimize minimizes the conditional sum of squares over the four
// coefficients with momentum and a decaying learning rate, keeping the
// best coefficients seen.
func (s *SARIMA) optimize() error {
	w := s.diff
	n := len(w)
	m := s.period
	c := s.intercept

	start := m
	if start >= n-10 {
		start = 0
	}

	lr := sarimaLearningRate
	var vAR, vMA, vSAR, vSMA float64

	bestSSE := math.Inf(1)
	bestAR, bestMA, bestSAR, bestSMA := s.ar, s.ma, s.sar, s.sma
	noImprove := 0

	for iter := 0; iter < sarimaMaxIter; iter++ {
		resid := make([]float64, n)
		sse := 0.0
		for t := start; t < n; t++ {
			pred := s.predictAt(w, resid, t, c)
			resid[t] = w[t] - pred
			sse += resid[t] * resid[t]
		}
		if math.IsNaN(sse) || math.IsInf(sse, 0) {
			return fmt.Errorf("conditional sum of squares diverged, %w", ErrNonConvergence)
		}

		if sse < bestSSE {
			converged := iter > 0 && bestSSE-sse < sarimaTolerance
			bestSSE = sse
			bestAR, bestMA, bestSAR, bestSMA = s.ar, s.ma, s.sar, s.sma
			noImprove = 0
			if converged {
				break
			}
		} else {
			noImprove++
			if noImprove > sarimaPatience {
				break
			}
		}

		var gAR, gMA, gSAR, gSMA float64
		for t := start; t < n; t++ {
			if t-1 >= 0 {
				gAR -= 2 * resid[t] * (w[t-1] - c)
				gMA -= 2 * resid[t] * resid[t-1]
			}
			if t-m >= 0 {
				gSAR -= 2 * resid[t] * (w[t-m] - c)
				gSMA -= 2 * resid[t] * resid[t-m]
			}
		}

		nf := float64(n)
		vAR = sarimaMomentum*vAR + lr*gAR/nf
		vMA = sarimaMomentum*vMA + lr*gMA/nf
		vSAR = sarimaMomentum*vSAR + lr*gSAR/nf
		vSMA = sarimaMomentum*vSMA + lr*gSMA/nf
		s.ar = clamp(s.ar-vAR, -sarimaClamp, sarimaClamp)
		s.ma = clamp(s.ma-vMA, -sarimaClamp, sarimaClamp)
		s.sar = clamp(s.sar-vSAR, -sarimaClamp, sarimaClamp)
		s.sma = clamp(s.sma-vSMA, -sarimaClamp, sarimaClamp)

		lr *= sarimaDecay
	}

	s.ar, s.ma, s.sar, s.sma = bestAR, bestMA, bestSAR, bestSMA

	s.residuals = make([]float64, n)
	for t := 0; t < n; t++ {
		pred := s.predictAt(w, s.residuals, t, c)
		s.residuals[t] = w[t] - pred
	}
	return nil
}

// predictAt evaluates the one-step prediction at index t on the
// differenced scale given prior values and residuals.
func (s *SARIMA) predictAt(w, resid []float64, t int, c float64) float64 {
	m := s.period
	pred := c
	if t-1 >= 0 {
		pred += s.ar * (w[t-1] - c)
		pred += s.ma * resid[t-1]
	}
	if t-m >= 0 {
		pred += s.sar * (w[t-m] - c)
		pred += s.sma * resid[t-m]
	}
	return pred
}

// Forecast predicts len(t) periods ahead on the differenced scale, then
// integrates back through the seasonal and regular differences.
func (s *SARIMA) Forecast(t []time.Time) ([]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	steps := len(t)
	if steps == 0 {
		return nil, ErrNoForecastHorizon
	}

	m := s.period
	n := len(s.diff)
	c := s.intercept

	ext := make([]float64, n+steps)
	copy(ext, s.diff)
	extResid := make([]float64, n+steps)
	copy(extResid, s.residuals)

	for h := 0; h < steps; h++ {
		idx := n + h
		pred := c
		if idx-1 >= 0 {
			pred += s.ar * (ext[idx-1] - c)
			if idx-1 < n {
				pred += s.ma * extResid[idx-1]
			}
		}
		if idx-m >= 0 {
			pred += s.sar * (ext[idx-m] - c)
			if idx-m < n {
				pred += s.sma * extResid[idx-m]
			}
		}
		ext[idx] = pred
		extResid[idx] = 0
	}

	out := make([]float64, steps)
	copy(out, ext[n:])

	// Undo seasonal differencing against the first-differenced history,
	// then undo the regular difference by accumulating from the last
	// original observation.
	nd := len(s.firstDiff)
	for j := 0; j < steps; j++ {
		if j < m {
			out[j] += s.firstDiff[nd-m+j]
		} else {
			out[j] += out[j-m]
		}
	}
	last := s.original[len(s.original)-1]
	for j := 0; j < steps; j++ {
		if j == 0 {
			out[j] += last
		} else {
			out[j] += out[j-1]
		}
	}
	return out, nil
}

// autocorr is the lag-k autocorrelation of x.
func autocorr(x []float64, k int) float64 {
	n := len(x)
	if k >= n {
		return 0
	}
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	var variance float64
	for _, v := range x {
		variance += (v - mean) * (v - mean)
	}
	if variance == 0 {
		return 0
	}
	var sum float64
	for i := k; i < n; i++ {
		sum += (x[i] - mean) * (x[i-k] - mean)
	}
	return sum / variance
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
