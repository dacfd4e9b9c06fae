package pantrycast

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ccfoodbank/pantrycast/analyze"
	"github.com/ccfoodbank/pantrycast/forecast"
	"github.com/ccfoodbank/pantrycast/loader"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const chartMonthLayout = "2006-01"

// LineTSeries builds a multi-line chart for some time/value combination.
// Every series must have the same length as the time slice; undefined
// points are skipped.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	axis := make([]string, 0, len(t))
	for _, tt := range t {
		axis = append(axis, tt.Format(chartMonthLayout))
	}

	line = line.SetXAxis(axis)
	for i, name := range seriesName {
		lineData := make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData = append(lineData, opts.LineData{Value: nil})
				continue
			}
			lineData = append(lineData, opts.LineData{Value: y[i][j]})
		}
		line = line.AddSeries(name, lineData)
	}
	return line
}

// LineComparison charts the training history, the actual holdout
// values, and every candidate model's holdout predictions.
func LineComparison(cmp *forecast.Comparison) *charts.Line {
	t := make([]time.Time, 0, cmp.History.Len()+cmp.Holdout.Len())
	t = append(t, cmp.History.T...)
	t = append(t, cmp.Holdout.T...)

	names := []string{"Train Data (History)", "Actual Test Data"}
	pad := func(lead int, y []float64) []float64 {
		out := make([]float64, 0, len(t))
		for i := 0; i < lead; i++ {
			out = append(out, math.NaN())
		}
		out = append(out, y...)
		for len(out) < len(t) {
			out = append(out, math.NaN())
		}
		return out
	}

	series := [][]float64{
		pad(0, cmp.History.Y),
		pad(cmp.History.Len(), cmp.Holdout.Y),
	}
	for _, res := range cmp.Results {
		names = append(names, res.Name)
		series = append(series, pad(cmp.History.Len(), res.Predicted))
	}
	return LineTSeries("Predictive Model Comparison", names, t, series)
}

// LineDecomposition charts the observed series with its trend,
// seasonal, and residual components.
func LineDecomposition(d *analyze.Decomposition) *charts.Line {
	return LineTSeries(
		"Seasonal Decomposition",
		[]string{"Observed", "Trend", "Seasonal", "Residual"},
		d.Series.T,
		[][]float64{d.Series.Y, d.Trend, d.Seasonal, d.Residual},
	)
}

// LineSpikes charts the month-over-month change with flagged spikes as
// a scatter overlay.
func LineSpikes(report *analyze.SpikeReport) *charts.Line {
	line := LineTSeries(
		"Demand Spikes (Month-over-Month Change)",
		[]string{"MoM Change"},
		report.T,
		[][]float64{report.Change},
	)

	spikeData := make([]opts.ScatterData, 0, len(report.Spikes))
	for _, sp := range report.Spikes {
		spikeData = append(spikeData, opts.ScatterData{
			Value: []interface{}{sp.T.Format(chartMonthLayout), sp.Change},
		})
	}
	scatter := charts.NewScatter()
	scatter.AddSeries("Spike (> threshold)", spikeData)
	line.Overlap(scatter)
	return line
}

// BarTractRanking charts the highest-need census tracts by access
// score, worst first.
func BarTractRanking(gaps []analyze.GapAssessment) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Highest-Need Tracts (Lowest mRFEI Score)",
			},
		),
	)

	names := make([]string, 0, len(gaps))
	data := make([]opts.BarData, 0, len(gaps))
	for _, g := range gaps {
		names = append(names, g.Tract.Name)
		data = append(data, opts.BarData{Value: g.Tract.Score})
	}
	bar.SetXAxis(names).AddSeries("mRFEI Score", data)
	return bar
}

// ScatterGapMatrix charts every tract as quantity (total retailers)
// against quality (access score), one series per category.
func ScatterGapMatrix(tracts []loader.Tract) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Service Gap Matrix: Deserts vs. Swamps",
			},
		),
	)

	byCategory := make(map[analyze.Category][]opts.ScatterData)
	for _, t := range tracts {
		c := analyze.Classify(t.Total, t.Score)
		byCategory[c] = append(byCategory[c], opts.ScatterData{
			Value: []interface{}{t.Total, t.Score},
		})
	}
	for _, c := range []analyze.Category{analyze.Desert, analyze.Scarce, analyze.Swamp, analyze.HealthyAccess} {
		if data, ok := byCategory[c]; ok {
			scatter.AddSeries(string(c), data)
		}
	}
	return scatter
}

// RenderPage writes the given charts as one HTML page under dir,
// overwriting any existing file of the same name.
func RenderPage(dir, name string, chs ...components.Charter) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create output directory, %w", err)
	}
	page := components.NewPage()
	page.AddCharts(chs...)

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("unable to create chart file, %w", err)
	}
	defer f.Close()
	return page.Render(io.MultiWriter(f))
}
