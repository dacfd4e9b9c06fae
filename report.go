package pantrycast

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ccfoodbank/pantrycast/forecast"
	"github.com/goccy/go-json"
)

// ForecastPoint is one future period in the report.
type ForecastPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Report is the serializable outcome of a model comparison run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Target      string    `json:"target"`

	BreakApplied  bool    `json:"structural_break_applied"`
	PreBreakMean  float64 `json:"pre_break_mean"`
	PostBreakMean float64 `json:"post_break_mean"`

	Models   []forecast.Result  `json:"models"`
	Failures []forecast.Failure `json:"failures,omitempty"`
	Best     string             `json:"best_model,omitempty"`

	Future []ForecastPoint `json:"future_forecast,omitempty"`
}

// NewReport assembles a Report from a comparison outcome.
func NewReport(target string, cmp *forecast.Comparison) *Report {
	r := &Report{
		GeneratedAt:   time.Now().UTC(),
		Target:        target,
		BreakApplied:  cmp.BreakApplied,
		PreBreakMean:  cmp.PreBreakMean,
		PostBreakMean: cmp.PostBreakMean,
		Models:        cmp.Results,
		Failures:      cmp.Failures,
	}
	if best := cmp.Best(); best != nil {
		r.Best = best.Name
	}
	if cmp.Future != nil {
		for i := 0; i < cmp.Future.Len(); i++ {
			r.Future = append(r.Future, ForecastPoint{
				Date:  cmp.Future.T[i].Format("2006-01-02"),
				Value: cmp.Future.Y[i],
			})
		}
	}
	return r
}

// Write serializes the report as indented JSON under dir.
func (r *Report) Write(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create output directory, %w", err)
	}
	bytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal report, %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), bytes, 0o644); err != nil {
		return fmt.Errorf("unable to write report, %w", err)
	}
	return nil
}
