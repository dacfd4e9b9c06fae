package pantrycast

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ccfoodbank/pantrycast/analyze"
	"github.com/ccfoodbank/pantrycast/forecast"
	"github.com/ccfoodbank/pantrycast/loader"
	"github.com/ccfoodbank/pantrycast/timeseries"
)

// Pipeline runs the demand and retail-gap studies end to end: load,
// aggregate, analyze, forecast, and render charts. Each study is a
// linear batch; a failed study reports and leaves the others to run.
type Pipeline struct {
	cfg *Config
	out io.Writer
}

// New returns a Pipeline writing its text report to stdout.
func New(cfg *Config) *Pipeline {
	return &Pipeline{cfg: cfg, out: os.Stdout}
}

// NewWithOutput returns a Pipeline writing its text report to w.
func NewWithOutput(cfg *Config, w io.Writer) *Pipeline {
	return &Pipeline{cfg: cfg, out: w}
}

// Run executes both studies sequentially. Every study failure is
// reported immediately and joined into the returned error.
func (p *Pipeline) Run() error {
	var errs []error
	if err := p.RunRetailGaps(); err != nil {
		fmt.Fprintf(p.out, "ERROR: retail gap analysis failed: %v\n", err)
		errs = append(errs, err)
	}
	if err := p.RunDemand(); err != nil {
		fmt.Fprintf(p.out, "ERROR: demand analysis failed: %v\n", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RunDemand loads the statewide monthly export and runs the trend,
// spike, seasonality, correlation, and forecast-comparison analyses.
func (p *Pipeline) RunDemand() error {
	cfg := p.cfg
	p.banner("DEMAND ANALYSIS (STATEWIDE MONTHLY)")

	opt := loader.DefaultOptions()
	opt.DateColumn = cfg.DateColumn
	opt.RegionColumn = cfg.RegionColumn
	opt.Columns = []string{cfg.TargetColumn, cfg.SupportColumn, cfg.DriverColumn}

	table, err := loader.Load(cfg.StatewidePath, opt)
	if err != nil {
		return fmt.Errorf("unable to load %s, %w", cfg.StatewidePath, err)
	}
	fmt.Fprintf(p.out, "Rows read: %d, rows after cleaning: %d\n", table.RawCount, len(table.Rows))

	rows := loader.Aggregate(table.Rows, cfg.Sentinel)
	target, err := loader.Column(rows, cfg.TargetColumn)
	if err != nil {
		return err
	}
	support, err := loader.Column(rows, cfg.SupportColumn)
	if err != nil {
		return err
	}
	driver, err := loader.Column(rows, cfg.DriverColumn)
	if err != nil {
		return err
	}

	if err := RenderPage(cfg.OutputDir, "statewide_trend.html",
		LineTSeries(
			"Statewide Participation Trend",
			[]string{cfg.TargetColumn, cfg.SupportColumn},
			target.T,
			[][]float64{target.Y, support.Y},
		),
	); err != nil {
		return err
	}

	p.reportSpikes(target)
	p.reportAnomalyWindow(target)
	p.reportSeasonality(target)
	p.reportHouseholdComplexity(support, target)
	p.reportCorrelation(target, driver)
	return p.reportForecast(target)
}

func (p *Pipeline) reportSpikes(target *timeseries.Series) {
	cfg := p.cfg
	report, err := analyze.DetectSpikes(target, cfg.ZScoreThreshold)
	if err != nil {
		fmt.Fprintf(p.out, "Spike analysis skipped: %v\n", err)
		return
	}

	fmt.Fprintf(p.out, "\n=== Demand Spikes Detected ===\n")
	if len(report.Spikes) == 0 {
		fmt.Fprintf(p.out, "No significant positive spikes (z-score > %.1f) detected.\n", cfg.ZScoreThreshold)
	}
	for _, sp := range report.Spikes {
		note := ""
		if sp.Holiday != "" {
			note = fmt.Sprintf(" [%s month]", sp.Holiday)
		}
		fmt.Fprintf(p.out, "%s  value=%.0f  change=%+.2f%%  z=%.2f%s\n",
			sp.T.Format("2006-01"), sp.Value, sp.Change*100, sp.ZScore, note)
	}

	if err := RenderPage(cfg.OutputDir, "demand_spikes.html", LineSpikes(report)); err != nil {
		fmt.Fprintf(p.out, "Unable to render spike chart: %v\n", err)
	}
}

func (p *Pipeline) reportAnomalyWindow(target *timeseries.Series) {
	center := p.cfg.anomalyCenter()
	if center.IsZero() {
		return
	}
	window := analyze.Window(target, center, p.cfg.WindowMonths)
	fmt.Fprintf(p.out, "\n=== Anomaly Investigation (%s) ===\n", p.cfg.AnomalyDate)
	for i := 0; i < window.Len(); i++ {
		fmt.Fprintf(p.out, "%s  %.0f\n", window.T[i].Format("2006-01"), window.Y[i])
	}
}

func (p *Pipeline) reportSeasonality(target *timeseries.Series) {
	cfg := p.cfg
	reg := target.DropNaN().Regularize()
	d, err := analyze.Decompose(reg, cfg.SeasonalPeriod)
	if err != nil {
		if errors.Is(err, analyze.ErrInsufficientData) {
			fmt.Fprintf(p.out, "\nWarning: not enough data for seasonal decomposition (need 2 full years).\n")
			return
		}
		fmt.Fprintf(p.out, "\nSeasonality analysis failed: %v\n", err)
		return
	}

	fmt.Fprintf(p.out, "\nSeasonal Peak Month: %s\n", d.Peak)
	fmt.Fprintf(p.out, "Seasonal Index by Month:\n")
	for m := time.January; m <= time.December; m++ {
		if v, ok := d.Index[m]; ok {
			fmt.Fprintf(p.out, "  %-9s %+.1f\n", m, v)
		}
	}

	if err := RenderPage(cfg.OutputDir, "seasonality_decomposition.html", LineDecomposition(d)); err != nil {
		fmt.Fprintf(p.out, "Unable to render decomposition chart: %v\n", err)
	}
}

func (p *Pipeline) reportHouseholdComplexity(persons, households *timeseries.Series) {
	ratio, err := analyze.Ratio(persons, households)
	if err != nil {
		fmt.Fprintf(p.out, "Household complexity analysis skipped: %v\n", err)
		return
	}
	dense := ratio.DropNaN()
	if dense.Len() < 2 {
		return
	}
	trend := "DECREASING"
	if dense.Last() > dense.Y[0] {
		trend = "INCREASING"
	}
	fmt.Fprintf(p.out, "\nPersons per household trend: %s (%.2f -> %.2f)\n", trend, dense.Y[0], dense.Last())

	smoothed := analyze.RollingMean(ratio.Y, 3)
	if err := RenderPage(p.cfg.OutputDir, "household_complexity.html",
		LineTSeries(
			"Persons per Household",
			[]string{"Avg Persons per HH", "3-Month Rolling Mean"},
			ratio.T,
			[][]float64{ratio.Y, smoothed},
		),
	); err != nil {
		fmt.Fprintf(p.out, "Unable to render household complexity chart: %v\n", err)
	}
}

func (p *Pipeline) reportCorrelation(target, driver *timeseries.Series) {
	corr := analyze.Correlation(target.Y, driver.Y)
	fmt.Fprintf(p.out, "\nCorrelation (%s vs %s): %.3f\n", p.cfg.TargetColumn, p.cfg.DriverColumn, corr)

	lags, err := analyze.LagCorrelations(target, driver, p.cfg.MaxLag)
	if err != nil {
		fmt.Fprintf(p.out, "Lag correlation skipped: %v\n", err)
		return
	}
	fmt.Fprintf(p.out, "Lagged correlation (%s predicting %s):\n", p.cfg.DriverColumn, p.cfg.TargetColumn)
	for _, lc := range lags {
		fmt.Fprintf(p.out, "  lag %d: %.3f\n", lc.Lag, lc.Corr)
	}
}

func (p *Pipeline) reportForecast(target *timeseries.Series) error {
	cfg := p.cfg
	cmp, err := forecast.Compare(target.DropNaN(), cfg.CompareOptions())
	if err != nil {
		return fmt.Errorf("unable to compare forecast models, %w", err)
	}

	fmt.Fprintf(p.out, "\n=== Structural Break Check (%s) ===\n", cfg.BreakDate)
	fmt.Fprintf(p.out, "Pre-break mean: %.0f\nPost-break mean: %.0f\n", cmp.PreBreakMean, cmp.PostBreakMean)
	if cmp.BreakApplied {
		fmt.Fprintf(p.out, ">> Detected major level shift. Training on post-break data only.\n")
	}
	fmt.Fprintf(p.out, "Training range: %s to %s\n",
		cmp.History.T[0].Format("2006-01"), cmp.History.T[cmp.History.Len()-1].Format("2006-01"))
	fmt.Fprintf(p.out, "Test range: %s to %s\n",
		cmp.Holdout.T[0].Format("2006-01"), cmp.Holdout.T[cmp.Holdout.Len()-1].Format("2006-01"))

	for _, res := range cmp.Results {
		fmt.Fprintf(p.out, "\nModel: %s\nMAE: %.0f\nRMSE: %.0f\nMAPE: %.2f%%\n",
			res.Name, res.Scores.MAE, res.Scores.RMSE, res.Scores.MAPE)
	}
	for _, f := range cmp.Failures {
		fmt.Fprintf(p.out, "\nModel %s failed: %s\n", f.Name, f.Reason)
	}
	if best := cmp.Best(); best != nil {
		fmt.Fprintf(p.out, "\nBest model by RMSE: %s\n", best.Name)
	}

	if cmp.Future != nil {
		fmt.Fprintf(p.out, "\n=== Future Forecast (Next %d Months) ===\n", cfg.FutureHorizon)
		for i := 0; i < cmp.Future.Len(); i++ {
			fmt.Fprintf(p.out, "%s  %.0f\n", cmp.Future.T[i].Format("2006-01"), cmp.Future.Y[i])
		}
	}

	if err := RenderPage(cfg.OutputDir, "model_forecast_comparison.html", LineComparison(cmp)); err != nil {
		fmt.Fprintf(p.out, "Unable to render comparison chart: %v\n", err)
	}
	if err := NewReport(cfg.TargetColumn, cmp).Write(cfg.OutputDir, "model_comparison.json"); err != nil {
		fmt.Fprintf(p.out, "Unable to write comparison report: %v\n", err)
	}
	return nil
}

// RunRetailGaps loads the mRFEI export and ranks the county's
// highest-need census tracts.
func (p *Pipeline) RunRetailGaps() error {
	cfg := p.cfg
	p.banner("RETAIL GAP ANALYSIS (" + strings.ToUpper(cfg.County) + ")")

	tracts, err := loader.LoadTracts(cfg.RetailPath, cfg.County)
	if err != nil {
		return fmt.Errorf("unable to load %s, %w", cfg.RetailPath, err)
	}
	if len(tracts) == 0 {
		fmt.Fprintf(p.out, "No census tracts found for %s.\n", cfg.County)
		return nil
	}

	gaps := analyze.AssessGaps(tracts, cfg.TopTracts)
	fmt.Fprintf(p.out, "\n%-28s | %-6s | %-7s | %s\n", "Census Tract", "Score", "Stores", "Diagnosis")
	fmt.Fprintln(p.out, strings.Repeat("-", 80))
	for _, g := range gaps {
		fmt.Fprintf(p.out, "%-28s | %-6.1f | %-7.0f | %s\n", g.Tract.Name, g.Tract.Score, g.Tract.Total, g.Category)
	}

	p.reportExamples("TOP FOOD SWAMPS", analyze.SwampExamples(tracts))
	p.reportExamples("TOP HEALTHY OASES", analyze.OasisExamples(tracts))

	if err := RenderPage(cfg.OutputDir, "food_desert_ranking.html", BarTractRanking(gaps)); err != nil {
		fmt.Fprintf(p.out, "Unable to render tract ranking chart: %v\n", err)
	}
	if err := RenderPage(cfg.OutputDir, "food_desert_matrix.html", ScatterGapMatrix(tracts)); err != nil {
		fmt.Fprintf(p.out, "Unable to render gap matrix chart: %v\n", err)
	}
	return nil
}

func (p *Pipeline) reportExamples(title string, tracts []loader.Tract) {
	if len(tracts) == 0 {
		return
	}
	if len(tracts) > 5 {
		tracts = tracts[:5]
	}
	fmt.Fprintf(p.out, "\n=== %s ===\n", title)
	for _, t := range tracts {
		fmt.Fprintf(p.out, "%-28s healthy=%.0f total=%.0f ratio=%.2f\n",
			t.Name, t.Healthy, t.Total, analyze.HealthyRatio(t.Healthy, t.Total))
	}
}

func (p *Pipeline) banner(title string) {
	fmt.Fprintf(p.out, "\n%s\n%s\n%s\n", strings.Repeat("=", 60), title, strings.Repeat("=", 60))
}
