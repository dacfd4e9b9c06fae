package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoObservations  = errors.New("no observations")
	ErrNonMonotonic    = errors.New("timestamps are not strictly increasing")
	ErrLenMismatch     = errors.New("timestamps have a different length than values")
	ErrHoldoutTooLarge = errors.New("holdout length must be smaller than the series")
)

// Series is an ordered sequence of monthly observations for one metric.
// Timestamps are unique and strictly increasing. NaN marks an undefined
// value.
type Series struct {
	T []time.Time
	Y []float64
}

// New returns a Series after validating that timestamps and values have
// the same length and that timestamps strictly increase.
func New(t []time.Time, y []float64) (*Series, error) {
	if len(y) == 0 {
		return nil, ErrNoObservations
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"timestamps have length %d, but values have length %d, %w",
			len(t), len(y), ErrLenMismatch,
		)
	}

	var last time.Time
	for i := 0; i < len(t); i++ {
		if !t[i].After(last) {
			return nil, fmt.Errorf("non-increasing timestamp at %d, %w", i, ErrNonMonotonic)
		}
		last = t[i]
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(y))
	copy(tSeries, t)
	copy(ySeries, y)
	return &Series{T: tSeries, Y: ySeries}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Y)
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	tSeries := make([]time.Time, len(s.T))
	ySeries := make([]float64, len(s.Y))
	copy(tSeries, s.T)
	copy(ySeries, s.Y)
	return &Series{T: tSeries, Y: ySeries}
}

// At returns the value observed at t and whether an observation exists.
func (s *Series) At(t time.Time) (float64, bool) {
	for i := 0; i < len(s.T); i++ {
		if s.T[i].Equal(t) {
			return s.Y[i], true
		}
	}
	return 0, false
}

// Last returns the final observed value.
func (s *Series) Last() float64 {
	return s.Y[len(s.Y)-1]
}

// After returns the sub-series of observations at or after t.
func (s *Series) After(t time.Time) *Series {
	for i := 0; i < len(s.T); i++ {
		if !s.T[i].Before(t) {
			return &Series{T: s.T[i:], Y: s.Y[i:]}
		}
	}
	return &Series{}
}

// Split partitions the series into history and the trailing holdout
// observations used for out-of-sample validation.
func (s *Series) Split(holdout int) (history, test *Series, err error) {
	if holdout <= 0 || holdout >= len(s.Y) {
		return nil, nil, fmt.Errorf("holdout of %d with %d observations, %w", holdout, len(s.Y), ErrHoldoutTooLarge)
	}
	cut := len(s.Y) - holdout
	history = &Series{T: s.T[:cut], Y: s.Y[:cut]}
	test = &Series{T: s.T[cut:], Y: s.Y[cut:]}
	return history, test, nil
}

// PctChange returns the month-over-month fractional change. The first
// element is NaN since it has no prior observation.
func (s *Series) PctChange() []float64 {
	change := make([]float64, len(s.Y))
	if len(change) == 0 {
		return change
	}
	change[0] = math.NaN()
	for i := 1; i < len(s.Y); i++ {
		change[i] = (s.Y[i] - s.Y[i-1]) / s.Y[i-1]
	}
	return change
}

// DropNaN returns a copy of the series without undefined observations.
func (s *Series) DropNaN() *Series {
	tSeries := make([]time.Time, 0, len(s.T))
	ySeries := make([]float64, 0, len(s.Y))
	for i := 0; i < len(s.Y); i++ {
		if math.IsNaN(s.Y[i]) {
			continue
		}
		tSeries = append(tSeries, s.T[i])
		ySeries = append(ySeries, s.Y[i])
	}
	return &Series{T: tSeries, Y: ySeries}
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Regularize returns the series forced to an even month-start frequency
// between its first and last observation. Missing months are filled by
// linear interpolation between the nearest defined neighbors.
func (s *Series) Regularize() *Series {
	// A fully suppressed column can reach here empty after DropNaN.
	if len(s.T) == 0 {
		return &Series{}
	}
	first := MonthStart(s.T[0])
	last := MonthStart(s.T[len(s.T)-1])

	byMonth := make(map[time.Time]float64, len(s.T))
	for i := 0; i < len(s.T); i++ {
		byMonth[MonthStart(s.T[i])] = s.Y[i]
	}

	var tSeries []time.Time
	var ySeries []float64
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		tSeries = append(tSeries, m)
		if v, ok := byMonth[m]; ok {
			ySeries = append(ySeries, v)
		} else {
			ySeries = append(ySeries, math.NaN())
		}
	}
	interpolate(ySeries)
	return &Series{T: tSeries, Y: ySeries}
}

// interpolate fills interior NaN runs linearly in place. Leading and
// trailing NaNs are left untouched since they have no anchor on one side.
func interpolate(y []float64) {
	prev := -1
	for i := 0; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (y[i] - y[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				y[j] = y[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
}

// ZScores standardizes vals against their own NaN-aware mean and
// standard deviation. NaN inputs stay NaN.
func ZScores(vals []float64) []float64 {
	defined := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}

	z := make([]float64, len(vals))
	if len(defined) < 2 {
		for i := range z {
			z[i] = math.NaN()
		}
		return z
	}

	mean, stddev := stat.MeanStdDev(defined, nil)
	for i, v := range vals {
		if math.IsNaN(v) || stddev == 0 {
			z[i] = math.NaN()
			continue
		}
		z[i] = (v - mean) / stddev
	}
	return z
}
