// Package analyze computes derived statistics over cleaned monthly
// series: demand spikes, seasonal structure, and lagged correlation
// against economic drivers.
package analyze

import (
	"errors"
	"math"
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
)

var ErrSeriesTooShort = errors.New("series too short for analysis")

// Spike is one flagged outlier period.
type Spike struct {
	T       time.Time
	Value   float64
	Change  float64
	ZScore  float64
	Holiday string
}

// SpikeReport carries the month-over-month change series, its z-scores,
// and the periods exceeding the threshold.
type SpikeReport struct {
	T      []time.Time
	Change []float64
	ZScore []float64
	Spikes []Spike
}

// DetectSpikes flags periods whose month-over-month change z-score
// exceeds threshold. The mean and standard deviation cover the entire
// series, including the candidate point. Spike months containing a
// major US holiday are annotated so holiday surges can be told apart
// from economic ones.
func DetectSpikes(s *timeseries.Series, threshold float64) (*SpikeReport, error) {
	if s.Len() < 3 {
		return nil, ErrSeriesTooShort
	}

	change := s.PctChange()
	z := timeseries.ZScores(change)

	report := &SpikeReport{T: s.T, Change: change, ZScore: z}
	for i := range z {
		if math.IsNaN(z[i]) || z[i] <= threshold {
			continue
		}
		sp := Spike{
			T:      s.T[i],
			Value:  s.Y[i],
			Change: change[i],
			ZScore: z[i],
		}
		if name, ok := HolidayIn(s.T[i]); ok {
			sp.Holiday = name
		}
		report.Spikes = append(report.Spikes, sp)
	}
	return report, nil
}

// Window returns the observations within months of center, for zooming
// in on a known anomaly.
func Window(s *timeseries.Series, center time.Time, months int) *timeseries.Series {
	start := center.AddDate(0, -months, 0)
	end := center.AddDate(0, months, 0)

	t := make([]time.Time, 0, 2*months+1)
	y := make([]float64, 0, 2*months+1)
	for i := 0; i < s.Len(); i++ {
		if s.T[i].Before(start) || s.T[i].After(end) {
			continue
		}
		t = append(t, s.T[i])
		y = append(y, s.Y[i])
	}
	return &timeseries.Series{T: t, Y: y}
}

// RollingMean smooths y with a trailing window. The first window-1
// positions are NaN.
func RollingMean(y []float64, window int) []float64 {
	out := make([]float64, len(y))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || window > len(y) {
		return out
	}
	sum := 0.0
	for i := 0; i < len(y); i++ {
		sum += y[i]
		if i >= window {
			sum -= y[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// Ratio divides two aligned series element-wise, e.g. persons per
// household. A zero or undefined denominator yields NaN.
func Ratio(num, den *timeseries.Series) (*timeseries.Series, error) {
	if num.Len() != den.Len() {
		return nil, timeseries.ErrLenMismatch
	}
	y := make([]float64, num.Len())
	for i := range y {
		if den.Y[i] == 0 || math.IsNaN(den.Y[i]) {
			y[i] = math.NaN()
			continue
		}
		y[i] = num.Y[i] / den.Y[i]
	}
	return &timeseries.Series{T: num.T, Y: y}, nil
}
