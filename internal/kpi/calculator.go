// Package kpi computes totals, conversion rates, time-bucketed trends, team
// comparison and summary statistics over normalized sales records. Every
// method is a pure function of its inputs; the Calculator carries no state.
package kpi

import (
	"fmt"
	"sort"
	"time"

	"salescli/internal/dataprocessing"
	apperrors "salescli/internal/errors"
)

// Calculator is a stateless KPI function library.
type Calculator struct{}

// NewCalculator returns a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Totals sums the four counters across all records. Empty input yields
// all-zero totals, never an error.
func (c *Calculator) Totals(records []dataprocessing.Record) Totals {
	var t Totals
	for _, r := range records {
		t.DoorsKnocked += r.DoorsKnocked
		t.HomeownersTalked += r.HomeownersTalked
		t.QualifiedLeads += r.QualifiedLeads
		t.AppointmentsSet += r.AppointmentsSet
	}
	return t
}

// Rates derives the four conversion percentages. Every ratio is guarded by
// safeDivide so a zero denominator yields 0.0 instead of a fault.
func (c *Calculator) Rates(totals Totals) Rates {
	return Rates{
		TalkRate:          safeDivide(totals.HomeownersTalked, totals.DoorsKnocked),
		QualificationRate: safeDivide(totals.QualifiedLeads, totals.HomeownersTalked),
		AppointmentRate:   safeDivide(totals.AppointmentsSet, totals.QualifiedLeads),
		OverallConversion: safeDivide(totals.AppointmentsSet, totals.DoorsKnocked),
	}
}

// safeDivide returns numerator/denominator as a percentage, or 0.0 when the
// denominator is zero. All four rates go through here so the fallback policy
// cannot drift between call sites.
func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	return numerator / denominator * 100
}

// DailyTrends groups records by calendar date, discarding time of day, and
// returns one bucket per distinct date in ascending order. Dates with no
// records are absent.
func (c *Calculator) DailyTrends(records []dataprocessing.Record) []DailyBucket {
	byDate := make(map[time.Time]Totals)
	for _, r := range records {
		date := time.Date(r.Timestamp.Year(), r.Timestamp.Month(), r.Timestamp.Day(), 0, 0, 0, 0, time.UTC)
		t := byDate[date]
		t.DoorsKnocked += r.DoorsKnocked
		t.HomeownersTalked += r.HomeownersTalked
		t.QualifiedLeads += r.QualifiedLeads
		t.AppointmentsSet += r.AppointmentsSet
		byDate[date] = t
	}

	buckets := make([]DailyBucket, 0, len(byDate))
	for date, totals := range byDate {
		buckets = append(buckets, DailyBucket{Date: date, Totals: totals})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date.Before(buckets[j].Date) })
	return buckets
}

// WeeklyTrends groups records by ISO calendar week and returns one bucket
// per distinct week in ascending order, labelled like "2024-W05".
func (c *Calculator) WeeklyTrends(records []dataprocessing.Record) []WeeklyBucket {
	type weekKey struct {
		year int
		week int
	}

	byWeek := make(map[weekKey]Totals)
	for _, r := range records {
		year, week := r.Timestamp.ISOWeek()
		key := weekKey{year: year, week: week}
		t := byWeek[key]
		t.DoorsKnocked += r.DoorsKnocked
		t.HomeownersTalked += r.HomeownersTalked
		t.QualifiedLeads += r.QualifiedLeads
		t.AppointmentsSet += r.AppointmentsSet
		byWeek[key] = t
	}

	keys := make([]weekKey, 0, len(byWeek))
	for key := range byWeek {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	buckets := make([]WeeklyBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, WeeklyBucket{
			Label:  fmt.Sprintf("%d-W%02d", key.year, key.week),
			Totals: byWeek[key],
		})
	}
	return buckets
}

// TeamComparison compares individual totals against the team mean for each
// counter. The mean runs over every row of the team aggregate, one row per
// distinct person; since the aggregate is built from the date-filtered set
// it still contains the individual, so the baseline deliberately includes
// their own contribution. Percent difference is 0.0 when the mean is 0.
func (c *Calculator) TeamComparison(individual Totals, team []dataprocessing.PersonTotals) Comparison {
	var sums Totals
	for _, p := range team {
		sums.DoorsKnocked += p.DoorsKnocked
		sums.HomeownersTalked += p.HomeownersTalked
		sums.QualifiedLeads += p.QualifiedLeads
		sums.AppointmentsSet += p.AppointmentsSet
	}

	n := float64(len(team))
	mean := func(sum float64) float64 {
		if n == 0 {
			return 0
		}
		return sum / n
	}

	return Comparison{
		DoorsKnocked:     compareMetric(individual.DoorsKnocked, mean(sums.DoorsKnocked)),
		HomeownersTalked: compareMetric(individual.HomeownersTalked, mean(sums.HomeownersTalked)),
		QualifiedLeads:   compareMetric(individual.QualifiedLeads, mean(sums.QualifiedLeads)),
		AppointmentsSet:  compareMetric(individual.AppointmentsSet, mean(sums.AppointmentsSet)),
	}
}

// compareMetric builds one counter's comparison triple.
func compareMetric(individual, teamAverage float64) MetricComparison {
	cmp := MetricComparison{Individual: individual, TeamAverage: teamAverage}
	if teamAverage > 0 {
		cmp.PercentDiff = (individual - teamAverage) / teamAverage * 100
	}
	return cmp
}

// SummaryStats returns the record count, the min/max calendar dates and the
// number of distinct active days. Empty input is an EMPTY_INPUT error since
// min and max are undefined; callers filter before calling.
func (c *Calculator) SummaryStats(records []dataprocessing.Record) (Stats, error) {
	if len(records) == 0 {
		return Stats{}, apperrors.NewEmptyInputError("cannot compute summary statistics over zero records")
	}

	minTS := records[0].Timestamp
	maxTS := records[0].Timestamp
	days := make(map[string]struct{})
	for _, r := range records {
		if r.Timestamp.Before(minTS) {
			minTS = r.Timestamp
		}
		if r.Timestamp.After(maxTS) {
			maxTS = r.Timestamp
		}
		days[r.Timestamp.Format("2006-01-02")] = struct{}{}
	}

	return Stats{
		TotalEntries: len(records),
		StartDate:    minTS.Format("2006-01-02"),
		EndDate:      maxTS.Format("2006-01-02"),
		DaysActive:   len(days),
	}, nil
}
