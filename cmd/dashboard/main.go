// Command dashboard generates performance charts and a console summary for
// one lead generator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"salescli/internal/charts"
	"salescli/internal/config"
	"salescli/internal/dataprocessing"
	"salescli/internal/infrastructure"
	"salescli/internal/ingestion"
	"salescli/internal/kpi"
	"salescli/internal/report"
)

func main() {
	name := flag.String("name", "", "name of the lead generator (must match form responses)")
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	days := flag.Int("days", 0, "number of days to include (overrides config; 0 or negative means all data)")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		flag.Usage()
		os.Exit(1)
	}

	daysSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "days" {
			daysSet = true
		}
	})

	if err := run(*name, *configPath, *days, daysSet); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(name, configPath string, days int, daysSet bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogger()

	ctx := infrastructure.EnsureRunID(context.Background())

	if !daysSet {
		days = cfg.Data.DaysToInclude
	}

	source, err := buildSource(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "fetching form responses")
	table, err := ingestion.FetchWithRetry(ctx, source, cfg.GoogleSheets.FetchRetries)
	if err != nil {
		return err
	}

	processor := dataprocessing.NewProcessor(dataprocessing.MappingFromConfig(cfg.Data.Columns), logger)
	records, err := processor.Clean(table)
	if err != nil {
		return err
	}
	filtered := processor.FilterByWindow(records, days)

	quality := processor.ValidateQuality(filtered)
	for _, warning := range quality.Warnings {
		logger.WarnContext(ctx, "data quality warning", slog.String("warning", warning))
	}

	generator := charts.NewGenerator(
		cfg.Visualizations.OutputDir,
		cfg.Visualizations.Width,
		cfg.Visualizations.Height,
		cfg.Visualizations.Colors,
		logger,
	)
	service := report.NewService(processor, kpi.NewCalculator(), generator, logger)

	r, err := service.GenerateForPerson(ctx, name, filtered)
	if err != nil {
		return err
	}

	printSummary(r)
	return nil
}

// buildSource picks the ingestion source the config asks for.
func buildSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ingestion.Source, error) {
	if cfg.GoogleSheets.Source == "file" {
		return ingestion.NewFileSource(cfg.GoogleSheets.FilePath, cfg.GoogleSheets.WorksheetName, logger), nil
	}
	return ingestion.NewSheetsClient(ctx,
		cfg.GoogleSheets.CredentialsPath,
		cfg.GoogleSheets.SheetID,
		cfg.GoogleSheets.WorksheetName,
		logger)
}

// printSummary writes the human-readable report to stdout.
func printSummary(r *report.Report) {
	fmt.Println("Summary Statistics:")
	fmt.Printf("  Total entries: %d\n", r.Stats.TotalEntries)
	fmt.Printf("  Date range: %s\n", r.DateRange)
	fmt.Printf("  Days active: %d\n", r.Stats.DaysActive)
	fmt.Println()
	fmt.Println("Your Totals:")
	fmt.Printf("  Doors Knocked: %.0f\n", r.Totals.DoorsKnocked)
	fmt.Printf("  Homeowners Talked: %.0f\n", r.Totals.HomeownersTalked)
	fmt.Printf("  Qualified Leads: %.0f\n", r.Totals.QualifiedLeads)
	fmt.Printf("  Appointments Set: %.0f\n", r.Totals.AppointmentsSet)
	fmt.Println()
	fmt.Println("Your Conversion Rates:")
	fmt.Printf("  Talk Rate: %.1f%%\n", r.Rates.TalkRate)
	fmt.Printf("  Qualification Rate: %.1f%%\n", r.Rates.QualificationRate)
	fmt.Printf("  Appointment Rate: %.1f%%\n", r.Rates.AppointmentRate)
	fmt.Printf("  Overall Conversion: %.1f%%\n", r.Rates.OverallConversion)
	fmt.Println()
	fmt.Println("Charts saved to:")
	for chartName, chartPath := range r.ChartPaths {
		fmt.Printf("  - %s: %s\n", chartName, chartPath)
	}
}
