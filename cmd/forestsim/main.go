// Command forestsim runs a batch forest supply-chain scenario: a fixed
// horizon of periods with a constant market, producing a period-by-period
// ledger, a CSV export, and a summary.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/talgya/timberline/internal/config"
	"github.com/talgya/timberline/internal/persistence"
	"github.com/talgya/timberline/internal/report"
	"github.com/talgya/timberline/internal/sim"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		configPath = flag.String("config", "", "scenario YAML file (embedded defaults when empty)")
		csvPath    = flag.String("out", "", "write the period series as CSV to this path")
		dbPath     = flag.String("db", "", "store the run in this SQLite database")
		periods    = flag.Int("periods", 0, "override the scenario's period count")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load scenario", "error", err)
		os.Exit(1)
	}
	if *periods > 0 {
		cfg.Scenario.Periods = *periods
	}

	slog.Info("running scenario",
		"periods", cfg.Scenario.Periods,
		"initial_stock", cfg.Scenario.InitialForestStock,
		"regen_rate_pct", cfg.Scenario.RegenRatePct,
		"harvest_target", cfg.Scenario.HarvestTarget,
	)

	records := sim.Run(cfg.Scenario)
	summary := report.Summarize(records, cfg.Scenario.InitialForestStock)

	if *csvPath != "" {
		if err := report.WriteCSVFile(*csvPath, records); err != nil {
			slog.Error("CSV export failed", "path", *csvPath, "error", err)
			os.Exit(1)
		}
		slog.Info("CSV written", "path", *csvPath, "rows", len(records))
	}

	if *dbPath != "" {
		db, err := persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		id := uuid.NewString()
		if err := db.SaveRun(id, cfg.Scenario, records); err != nil {
			slog.Error("failed to store run", "run_id", id, "error", err)
			os.Exit(1)
		}
		slog.Info("run stored", "run_id", id)
	}

	report.Print(os.Stdout, summary)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg, err := config.Default()
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}
