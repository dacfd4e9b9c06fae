package analyze

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
)

var ErrInsufficientData = errors.New("insufficient data for seasonal decomposition")

// Decomposition is the additive split of a regular monthly series into
// trend, seasonal, and residual components, Y = T + S + R.
type Decomposition struct {
	Series   *timeseries.Series
	Trend    []float64
	Seasonal []float64
	Residual []float64
	Period   int

	// Index is the mean seasonal component per calendar month.
	Index map[time.Month]float64
	// Peak is the calendar month with the highest seasonal index.
	Peak time.Month
}

// Decompose performs classical additive decomposition with a fixed
// period. The series must be evenly spaced (see Series.Regularize) and
// hold at least two full periods of observations.
func Decompose(s *timeseries.Series, period int) (*Decomposition, error) {
	n := s.Len()
	if n < 2*period {
		return nil, fmt.Errorf("have %d observations, need %d, %w", n, 2*period, ErrInsufficientData)
	}

	trend := centeredTrend(s.Y, period)

	detrended := make([]float64, n)
	for i := 0; i < n; i++ {
		detrended[i] = s.Y[i] - trend[i]
	}

	// Average the detrended values by position within the period, then
	// center the pattern so the components sum back to the observation.
	pattern := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if math.IsNaN(detrended[i]) {
			continue
		}
		pattern[i%period] += detrended[i]
		counts[i%period]++
	}
	var mean float64
	for i := 0; i < period; i++ {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
		mean += pattern[i]
	}
	mean /= float64(period)
	for i := range pattern {
		pattern[i] -= mean
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = pattern[i%period]
		residual[i] = s.Y[i] - trend[i] - seasonal[i]
	}

	d := &Decomposition{
		Series:   s,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
	}
	d.Index, d.Peak = monthlyIndex(s.T, seasonal)
	return d, nil
}

// centeredTrend computes the centered moving average of y. With an even
// period the window spans period+1 points with half weight at the ends.
// Positions without a full window are NaN.
func centeredTrend(y []float64, period int) []float64 {
	n := len(y)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	half := period / 2
	if period%2 == 0 {
		for i := half; i < n-half; i++ {
			sum := y[i-half]*0.5 + y[i+half]*0.5
			for j := i - half + 1; j < i+half; j++ {
				sum += y[j]
			}
			trend[i] = sum / float64(period)
		}
		return trend
	}
	for i := half; i < n-half; i++ {
		sum := 0.0
		for j := i - half; j <= i+half; j++ {
			sum += y[j]
		}
		trend[i] = sum / float64(period)
	}
	return trend
}

// monthlyIndex averages the seasonal component by calendar month and
// identifies the peak month.
func monthlyIndex(t []time.Time, seasonal []float64) (map[time.Month]float64, time.Month) {
	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for i := range seasonal {
		if math.IsNaN(seasonal[i]) {
			continue
		}
		sums[t[i].Month()] += seasonal[i]
		counts[t[i].Month()]++
	}

	index := make(map[time.Month]float64, len(sums))
	peak := time.January
	best := math.Inf(-1)
	for m := time.January; m <= time.December; m++ {
		if counts[m] == 0 {
			continue
		}
		index[m] = sums[m] / float64(counts[m])
		if index[m] > best {
			best = index[m]
			peak = m
		}
	}
	return index, peak
}
