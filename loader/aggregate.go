package loader

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ccfoodbank/pantrycast/timeseries"
)

var ErrColumnNotLoaded = errors.New("column not present in cleaned rows")

// Aggregate collapses per-region rows into one row per period. A row
// whose region equals sentinel wins outright; otherwise all non-sentinel
// rows for the period are summed. Periods with absent regions silently
// undercount.
func Aggregate(rows []Row, sentinel string) []Row {
	type bucket struct {
		sentinel *Row
		sum      map[string]float64
	}
	buckets := make(map[time.Time]*bucket)
	for i := range rows {
		row := rows[i]
		b, ok := buckets[row.Date]
		if !ok {
			b = &bucket{sum: make(map[string]float64)}
			buckets[row.Date] = b
		}
		if sentinel != "" && row.Region == sentinel {
			b.sentinel = &rows[i]
			continue
		}
		for name, v := range row.Values {
			if math.IsNaN(v) {
				continue
			}
			b.sum[name] += v
		}
	}

	out := make([]Row, 0, len(buckets))
	for date, b := range buckets {
		if b.sentinel != nil {
			out = append(out, *b.sentinel)
			continue
		}
		out = append(out, Row{Date: date, Region: sentinel, Values: b.sum})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Column extracts one named metric from aggregated rows as a Series.
// Undefined values stay NaN so series for different metrics remain
// aligned on the same period grid.
func Column(rows []Row, name string) (*timeseries.Series, error) {
	t := make([]time.Time, 0, len(rows))
	y := make([]float64, 0, len(rows))
	seen := false
	for _, row := range rows {
		v, ok := row.Values[name]
		if !ok {
			t = append(t, row.Date)
			y = append(y, math.NaN())
			continue
		}
		seen = true
		t = append(t, row.Date)
		y = append(y, v)
	}
	if !seen {
		return nil, fmt.Errorf("%s, %w", name, ErrColumnNotLoaded)
	}
	return timeseries.New(t, y)
}
