// Command report-mailer generates performance reports for every roster
// member and emails them, either once or on a cron schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"

	"salescli/internal/charts"
	"salescli/internal/config"
	"salescli/internal/dataprocessing"
	"salescli/internal/email"
	apperrors "salescli/internal/errors"
	"salescli/internal/infrastructure"
	"salescli/internal/ingestion"
	"salescli/internal/kpi"
	"salescli/internal/report"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	rosterPath := flag.String("roster", "team_roster.yaml", "path to team roster file")
	schedule := flag.String("schedule", "", "cron expression; overrides email.schedule from config")
	flag.Parse()

	if err := run(*configPath, *rosterPath, *schedule); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, rosterPath, scheduleFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogger()

	if !cfg.Email.Enabled {
		return apperrors.NewConfigError(
			"email sending is disabled; set email.enabled: true in config.yaml", nil)
	}

	roster, err := config.LoadRoster(rosterPath)
	if err != nil {
		return err
	}
	logger.Info("loaded team roster", slog.Int("members", len(roster)))

	schedule := scheduleFlag
	if schedule == "" {
		schedule = cfg.Email.Schedule
	}

	if schedule == "" {
		return runOnce(cfg, roster, logger)
	}

	// Schedule mode: run the same batch job under cron until killed.
	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		if err := runOnce(cfg, roster, logger); err != nil {
			logger.Error("scheduled report run failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return apperrors.NewConfigError(
			fmt.Sprintf("invalid cron schedule %q", schedule), err)
	}

	logger.Info("report mailer scheduled", slog.String("cron", schedule))
	c.Run()
	return nil
}

// runOnce executes one full batch: fetch, clean, filter, then report and
// email every roster member sequentially. A failure for one member never
// aborts the loop.
func runOnce(cfg *config.Config, roster []config.RosterMember, logger *slog.Logger) error {
	ctx := infrastructure.EnsureRunID(context.Background())

	sender := email.NewSender(cfg.Email, logger)
	if err := sender.TestConnection(); err != nil {
		return err
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
	filtered := processor.FilterByWindow(records, cfg.Data.DaysToInclude)

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

	var sent, failed, skipped int
	for _, member := range roster {
		logger.InfoContext(ctx, "processing roster member",
			slog.String("name", member.Name),
			slog.String("email", member.Email))

		r, err := service.GenerateForPerson(ctx, member.Name, filtered)
		if err != nil {
			if apperrors.IsNotFound(err) || apperrors.IsEmptyInput(err) {
				logger.WarnContext(ctx, "skipping member with no data",
					slog.String("name", member.Name),
					slog.String("reason", err.Error()))
				skipped++
				continue
			}
			logger.ErrorContext(ctx, "report generation failed",
				slog.String("name", member.Name),
				slog.String("error", err.Error()))
			failed++
			continue
		}

		if sender.SendReport(member.Email, member.Name, r.ChartPaths, r.Totals, r.Rates, r.DateRange) {
			sent++
		} else {
			failed++
		}
	}

	fmt.Printf("Successfully sent: %d\n", sent)
	if failed > 0 {
		fmt.Printf("Failed to send: %d\n", failed)
	}
	if skipped > 0 {
		fmt.Printf("Skipped (no data): %d\n", skipped)
	}

	logger.InfoContext(ctx, "batch run complete",
		slog.Int("sent", sent),
		slog.Int("failed", failed),
		slog.Int("skipped", skipped))

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
