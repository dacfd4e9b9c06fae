package forecast

import (
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/profile"
)

var benchCompareRes *Comparison

func benchSeries(b *testing.B) []float64 {
	b.Helper()
	pattern := []float64{0, -5, 10, 3, -2, 8, 1, -4, 6, 2, 15, 9}
	y := make([]float64, 96)
	for i := range y {
		y[i] = 1000 + 3*float64(i) + pattern[i%12]
	}
	return y
}

func BenchmarkCompare(b *testing.B) {
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	s := monthlySeries(b, start, benchSeries(b))

	var err error
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchCompareRes, err = Compare(s, nil)
		if err != nil {
			panic(err)
		}
	}

	bytes, err := json.MarshalIndent(benchCompareRes.Results, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile("benchmark_comparison.json", bytes, 0o644); err != nil {
		panic(err)
	}
}

func BenchmarkSARIMAFit(b *testing.B) {
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	s := monthlySeries(b, start, benchSeries(b))

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for i := 0; i < b.N; i++ {
		model := NewSARIMA(12)
		if err := model.Fit(s); err != nil {
			panic(err)
		}
	}
}
