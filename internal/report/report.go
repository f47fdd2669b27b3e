// Package report turns a batch run's period series into artifacts for the
// presentation layer: a CSV file and an end-of-run summary.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/talgya/timberline/internal/sim"
)

// Summary is the KPI roll-up of a finished run.
type Summary struct {
	Periods          int     `json:"periods"`
	FinalForestStock float64 `json:"final_forest_stock"`
	CumulativeProfit float64 `json:"cumulative_profit"`
	TotalHarvested   float64 `json:"total_harvested"`
	TotalSold        float64 `json:"total_sold"`
	MeanPeriodProfit float64 `json:"mean_period_profit"`
	ProfitStdDev     float64 `json:"profit_std_dev"`

	// Sustainable is false when the run ended with less standing timber
	// than it started with.
	Sustainable bool `json:"sustainable"`
}

// Summarize rolls a period series up into its headline figures.
func Summarize(records []sim.PeriodRecord, initialStock float64) Summary {
	s := Summary{Periods: len(records)}
	if len(records) == 0 {
		s.FinalForestStock = initialStock
		s.Sustainable = true
		return s
	}

	profits := make([]float64, len(records))
	for i, rec := range records {
		profits[i] = rec.PeriodProfit
		s.TotalHarvested += rec.Harvested
		s.TotalSold += rec.Sales
	}

	last := records[len(records)-1]
	s.FinalForestStock = last.ForestStock
	s.CumulativeProfit = last.CumulativeProfit
	s.MeanPeriodProfit = stat.Mean(profits, nil)
	if len(profits) > 1 {
		s.ProfitStdDev = stat.StdDev(profits, nil)
	}
	s.Sustainable = s.FinalForestStock >= initialStock
	return s
}

// WriteCSV writes the full period series as CSV.
func WriteCSV(w io.Writer, records []sim.PeriodRecord) error {
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("marshal period records: %w", err)
	}
	return nil
}

// WriteCSVFile writes the series to a file path, creating or truncating it.
func WriteCSVFile(path string, records []sim.PeriodRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(f, records)
}

// Print writes the human-readable summary block the CLI shows after a run.
func Print(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Periods simulated:    %d\n", s.Periods)
	fmt.Fprintf(w, "Final forest stock:   %s t\n", humanize.CommafWithDigits(s.FinalForestStock, 0))
	fmt.Fprintf(w, "Cumulative profit:    $%s\n", humanize.CommafWithDigits(s.CumulativeProfit, 0))
	fmt.Fprintf(w, "Total harvested:      %s t\n", humanize.CommafWithDigits(s.TotalHarvested, 0))
	fmt.Fprintf(w, "Total units sold:     %s\n", humanize.CommafWithDigits(s.TotalSold, 0))
	fmt.Fprintf(w, "Mean period profit:   $%s (stddev %s)\n",
		humanize.CommafWithDigits(s.MeanPeriodProfit, 0),
		humanize.CommafWithDigits(s.ProfitStdDev, 0))
	if !s.Sustainable {
		fmt.Fprintln(w, "Warning: run ended with less standing timber than it started with.")
	}
}
