package kpi

import "time"

// Totals holds the four funnel counters summed over a record set.
type Totals struct {
	DoorsKnocked     float64
	HomeownersTalked float64
	QualifiedLeads   float64
	AppointmentsSet  float64
}

// Sum returns the sum of all four counters. Zero iff the record set was
// empty or all counters were zero.
func (t Totals) Sum() float64 {
	return t.DoorsKnocked + t.HomeownersTalked + t.QualifiedLeads + t.AppointmentsSet
}

// Rates are the four conversion percentages between funnel stages.
type Rates struct {
	TalkRate          float64
	QualificationRate float64
	AppointmentRate   float64
	OverallConversion float64
}

// DailyBucket is one calendar date with its summed counters. Dates with no
// records are absent, not zero-filled.
type DailyBucket struct {
	Date   time.Time
	Totals Totals
}

// WeeklyBucket is one ISO calendar week with its summed counters.
type WeeklyBucket struct {
	// Label is the human-readable week, e.g. "2024-W05".
	Label  string
	Totals Totals
}

// MetricComparison compares one counter against the team mean.
type MetricComparison struct {
	Individual  float64
	TeamAverage float64
	// PercentDiff is 0.0 when the team average is 0.
	PercentDiff float64
}

// Comparison holds the per-counter team comparison.
type Comparison struct {
	DoorsKnocked     MetricComparison
	HomeownersTalked MetricComparison
	QualifiedLeads   MetricComparison
	AppointmentsSet  MetricComparison
}

// Stats are the summary statistics for a non-empty record set.
type Stats struct {
	TotalEntries int
	// StartDate and EndDate are calendar dates formatted YYYY-MM-DD.
	StartDate  string
	EndDate    string
	DaysActive int
}
