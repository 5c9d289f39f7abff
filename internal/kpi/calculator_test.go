package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/internal/dataprocessing"
	apperrors "salescli/internal/errors"
)

func record(name, ts string, doors, talked, qualified, appointments float64) dataprocessing.Record {
	parsed, err := time.Parse("2006-01-02 15:04:05", ts)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", ts)
		if err != nil {
			panic(err)
		}
	}
	return dataprocessing.Record{
		Timestamp:        parsed,
		Name:             name,
		DoorsKnocked:     doors,
		HomeownersTalked: talked,
		QualifiedLeads:   qualified,
		AppointmentsSet:  appointments,
	}
}

func TestTotals(t *testing.T) {
	calc := NewCalculator()

	totals := calc.Totals([]dataprocessing.Record{
		record("Bob Smith", "2024-01-01", 10, 8, 4, 1),
		record("Bob Smith", "2024-01-02", 5, 6, 2, 0),
	})

	assert.Equal(t, Totals{
		DoorsKnocked:     15,
		HomeownersTalked: 14,
		QualifiedLeads:   6,
		AppointmentsSet:  1,
	}, totals)
}

func TestTotalsEmptyInput(t *testing.T) {
	calc := NewCalculator()

	totals := calc.Totals(nil)
	assert.Equal(t, Totals{}, totals)
	assert.Equal(t, 0.0, totals.Sum())
}

func TestRates(t *testing.T) {
	calc := NewCalculator()

	rates := calc.Rates(Totals{
		DoorsKnocked:     15,
		HomeownersTalked: 14,
		QualifiedLeads:   6,
		AppointmentsSet:  1,
	})

	assert.InDelta(t, 93.333, rates.TalkRate, 0.01)
	assert.InDelta(t, 42.857, rates.QualificationRate, 0.01)
	assert.InDelta(t, 16.667, rates.AppointmentRate, 0.01)
	assert.InDelta(t, 6.667, rates.OverallConversion, 0.01)
}

func TestRatesZeroDenominators(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name   string
		totals Totals
		check  func(t *testing.T, r Rates)
	}{
		{
			name:   "all zero",
			totals: Totals{},
			check: func(t *testing.T, r Rates) {
				assert.Equal(t, Rates{}, r)
			},
		},
		{
			name:   "zero doors",
			totals: Totals{HomeownersTalked: 5, QualifiedLeads: 2, AppointmentsSet: 1},
			check: func(t *testing.T, r Rates) {
				assert.Equal(t, 0.0, r.TalkRate)
				assert.Equal(t, 0.0, r.OverallConversion)
				assert.InDelta(t, 40.0, r.QualificationRate, 0.001)
				assert.InDelta(t, 50.0, r.AppointmentRate, 0.001)
			},
		},
		{
			name:   "zero qualified leads",
			totals: Totals{DoorsKnocked: 10, HomeownersTalked: 5},
			check: func(t *testing.T, r Rates) {
				assert.Equal(t, 0.0, r.AppointmentRate)
				assert.InDelta(t, 50.0, r.TalkRate, 0.001)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, calc.Rates(tt.totals))
		})
	}
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 0.0, safeDivide(5, 0))
	assert.InDelta(t, 50.0, safeDivide(1, 2), 0.001)
}

func TestDailyTrends(t *testing.T) {
	calc := NewCalculator()

	buckets := calc.DailyTrends([]dataprocessing.Record{
		record("Bob", "2024-01-02 09:00:00", 5, 6, 2, 0),
		record("Bob", "2024-01-01 09:00:00", 10, 8, 4, 1),
		record("Bob", "2024-01-01 17:30:00", 3, 2, 1, 0),
	})

	require.Len(t, buckets, 2)

	// Ascending by date, time of day discarded.
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), buckets[0].Date)
	assert.Equal(t, Totals{DoorsKnocked: 13, HomeownersTalked: 10, QualifiedLeads: 5, AppointmentsSet: 1}, buckets[0].Totals)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), buckets[1].Date)
	assert.Equal(t, Totals{DoorsKnocked: 5, HomeownersTalked: 6, QualifiedLeads: 2}, buckets[1].Totals)
}

func TestDailyTrendsStrictlyAscendingNoDuplicates(t *testing.T) {
	calc := NewCalculator()

	// Sparse input with gaps; buckets for missing days must be absent.
	buckets := calc.DailyTrends([]dataprocessing.Record{
		record("Bob", "2024-01-10", 1, 0, 0, 0),
		record("Bob", "2024-01-01", 1, 0, 0, 0),
		record("Bob", "2024-01-10", 1, 0, 0, 0),
		record("Bob", "2024-01-05", 1, 0, 0, 0),
	})

	require.Len(t, buckets, 3)
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i-1].Date.Before(buckets[i].Date),
			"bucket dates must be strictly ascending")
	}
}

func TestWeeklyTrends(t *testing.T) {
	calc := NewCalculator()

	buckets := calc.WeeklyTrends([]dataprocessing.Record{
		record("Bob", "2024-01-29", 5, 0, 0, 0), // ISO week 2024-W05
		record("Bob", "2024-02-01", 3, 0, 0, 0), // same week
		record("Bob", "2024-02-05", 7, 0, 0, 0), // 2024-W06
	})

	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-W05", buckets[0].Label)
	assert.Equal(t, 8.0, buckets[0].Totals.DoorsKnocked)
	assert.Equal(t, "2024-W06", buckets[1].Label)
	assert.Equal(t, 7.0, buckets[1].Totals.DoorsKnocked)
}

func TestTeamComparison(t *testing.T) {
	calc := NewCalculator()

	team := []dataprocessing.PersonTotals{
		{Name: "Bob Smith", DoorsKnocked: 30, HomeownersTalked: 20, QualifiedLeads: 10, AppointmentsSet: 4},
		{Name: "Jane Doe", DoorsKnocked: 10, HomeownersTalked: 10, QualifiedLeads: 2, AppointmentsSet: 0},
	}
	individual := Totals{DoorsKnocked: 30, HomeownersTalked: 20, QualifiedLeads: 10, AppointmentsSet: 4}

	cmp := calc.TeamComparison(individual, team)

	// Mean of 30 and 10 is 20; Bob is 50% above.
	assert.Equal(t, 30.0, cmp.DoorsKnocked.Individual)
	assert.Equal(t, 20.0, cmp.DoorsKnocked.TeamAverage)
	assert.InDelta(t, 50.0, cmp.DoorsKnocked.PercentDiff, 0.001)

	// Mean appointments is 2; Bob at 4 is 100% above.
	assert.InDelta(t, 100.0, cmp.AppointmentsSet.PercentDiff, 0.001)
}

func TestTeamComparison_IncludesSelfInBaseline(t *testing.T) {
	calc := NewCalculator()

	// A single-person team: the average equals the individual, so every
	// percent difference is exactly zero. This pins the baseline as
	// self-inclusive rather than peer-only.
	team := []dataprocessing.PersonTotals{
		{Name: "Bob Smith", DoorsKnocked: 30, HomeownersTalked: 20, QualifiedLeads: 10, AppointmentsSet: 4},
	}
	individual := Totals{DoorsKnocked: 30, HomeownersTalked: 20, QualifiedLeads: 10, AppointmentsSet: 4}

	cmp := calc.TeamComparison(individual, team)
	assert.Equal(t, 0.0, cmp.DoorsKnocked.PercentDiff)
	assert.Equal(t, 0.0, cmp.HomeownersTalked.PercentDiff)
	assert.Equal(t, 0.0, cmp.QualifiedLeads.PercentDiff)
	assert.Equal(t, 0.0, cmp.AppointmentsSet.PercentDiff)
}

func TestTeamComparisonZeroAverage(t *testing.T) {
	calc := NewCalculator()

	cmp := calc.TeamComparison(Totals{AppointmentsSet: 3}, []dataprocessing.PersonTotals{
		{Name: "Bob Smith", AppointmentsSet: 0},
		{Name: "Jane Doe", AppointmentsSet: 0},
	})

	assert.Equal(t, 0.0, cmp.AppointmentsSet.TeamAverage)
	assert.Equal(t, 0.0, cmp.AppointmentsSet.PercentDiff)
}

func TestSummaryStats(t *testing.T) {
	calc := NewCalculator()

	stats, err := calc.SummaryStats([]dataprocessing.Record{
		record("Bob", "2024-01-05 09:00:00", 1, 0, 0, 0),
		record("Bob", "2024-01-01 10:00:00", 1, 0, 0, 0),
		record("Bob", "2024-01-05 17:00:00", 1, 0, 0, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, "2024-01-01", stats.StartDate)
	assert.Equal(t, "2024-01-05", stats.EndDate)
	assert.Equal(t, 2, stats.DaysActive)
}

func TestSummaryStatsEmptyInput(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.SummaryStats(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsEmptyInput(err))

	// Totals over the same empty set still succeeds with zeros.
	assert.Equal(t, Totals{}, calc.Totals(nil))
}

// TestFunnelScenario covers an end-to-end funnel: two rows for one
// person across two days, including a talked > doors inversion on day two.
func TestFunnelScenario(t *testing.T) {
	calc := NewCalculator()
	records := []dataprocessing.Record{
		record("Bob", "2024-01-01", 10, 8, 4, 1),
		record("Bob", "2024-01-02", 5, 6, 2, 0),
	}

	totals := calc.Totals(records)
	assert.Equal(t, Totals{DoorsKnocked: 15, HomeownersTalked: 14, QualifiedLeads: 6, AppointmentsSet: 1}, totals)

	rates := calc.Rates(totals)
	assert.InDelta(t, 93.3, rates.TalkRate, 0.05)

	daily := calc.DailyTrends(records)
	require.Len(t, daily, 2)
	assert.Equal(t, Totals{DoorsKnocked: 10, HomeownersTalked: 8, QualifiedLeads: 4, AppointmentsSet: 1}, daily[0].Totals)
	assert.Equal(t, Totals{DoorsKnocked: 5, HomeownersTalked: 6, QualifiedLeads: 2}, daily[1].Totals)
}
