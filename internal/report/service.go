// Package report runs the per-person reporting pipeline shared by the
// interactive dashboard and the batch mailer: person filter, KPI
// aggregation, chart rendering.
package report

import (
	"context"
	"fmt"
	"log/slog"

	"salescli/internal/charts"
	"salescli/internal/dataprocessing"
	"salescli/internal/kpi"
)

// Report bundles everything computed for one person.
type Report struct {
	PersonName string
	Totals     kpi.Totals
	Rates      kpi.Rates
	Daily      []kpi.DailyBucket
	Weekly     []kpi.WeeklyBucket
	Comparison kpi.Comparison
	Stats      kpi.Stats
	DateRange  string
	ChartPaths map[string]string
}

// Service wires the processor, calculator and chart generator together.
type Service struct {
	processor  *dataprocessing.Processor
	calculator *kpi.Calculator
	charts     *charts.Generator
	logger     *slog.Logger
}

// NewService creates a report service.
func NewService(
	processor *dataprocessing.Processor,
	calculator *kpi.Calculator,
	generator *charts.Generator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		processor:  processor,
		calculator: calculator,
		charts:     generator,
		logger:     logger,
	}
}

// GenerateForPerson computes KPIs and renders charts for one person over
// the already date-filtered record set. The team baseline is aggregated
// from the same filtered set, so it includes the person's own rows.
// NOT_FOUND and EMPTY_INPUT errors come back typed so batch callers can
// convert them into skips.
func (s *Service) GenerateForPerson(ctx context.Context, personName string, filtered []dataprocessing.Record) (*Report, error) {
	personRecords, err := s.processor.FilterByPerson(filtered, personName)
	if err != nil {
		return nil, err
	}
	teamAggregate := s.processor.AggregateByPerson(filtered)

	totals := s.calculator.Totals(personRecords)
	rates := s.calculator.Rates(totals)
	daily := s.calculator.DailyTrends(personRecords)
	weekly := s.calculator.WeeklyTrends(personRecords)
	comparison := s.calculator.TeamComparison(totals, teamAggregate)

	stats, err := s.calculator.SummaryStats(personRecords)
	if err != nil {
		return nil, err
	}
	dateRange := fmt.Sprintf("%s to %s", stats.StartDate, stats.EndDate)

	chartPaths, err := s.charts.GenerateAll(personName, totals, rates, daily, comparison, dateRange)
	if err != nil {
		return nil, fmt.Errorf("chart generation failed for %s: %w", personName, err)
	}

	s.logger.InfoContext(ctx, "report generated",
		slog.String("person", personName),
		slog.Int("entries", stats.TotalEntries),
		slog.String("date_range", dateRange))

	return &Report{
		PersonName: personName,
		Totals:     totals,
		Rates:      rates,
		Daily:      daily,
		Weekly:     weekly,
		Comparison: comparison,
		Stats:      stats,
		DateRange:  dateRange,
		ChartPaths: chartPaths,
	}, nil
}
