package dataprocessing

import "time"

// ColumnMapping resolves the six semantic fields to the column labels the
// form actually uses. It is built once from config; after Clean runs, no
// downstream code touches raw column names again.
type ColumnMapping struct {
	Timestamp        string
	Name             string
	DoorsKnocked     string
	HomeownersTalked string
	QualifiedLeads   string
	AppointmentsSet  string
}

// MappingFromConfig builds a ColumnMapping from the config columns map. The
// config loader has already verified all six keys are present.
func MappingFromConfig(columns map[string]string) ColumnMapping {
	return ColumnMapping{
		Timestamp:        columns["timestamp"],
		Name:             columns["name"],
		DoorsKnocked:     columns["doors_knocked"],
		HomeownersTalked: columns["homeowners_talked"],
		QualifiedLeads:   columns["qualified_leads"],
		AppointmentsSet:  columns["appointments_set"],
	}
}

// Record is one normalized form response. Timestamp is never zero (rows with
// unparseable timestamps are dropped during Clean) and the four counters are
// never negative.
type Record struct {
	Timestamp        time.Time
	Name             string
	DoorsKnocked     float64
	HomeownersTalked float64
	QualifiedLeads   float64
	AppointmentsSet  float64
}

// PersonTotals is one row of the team aggregate: summed counters for one
// distinct normalized name.
type PersonTotals struct {
	Name             string
	DoorsKnocked     float64
	HomeownersTalked float64
	QualifiedLeads   float64
	AppointmentsSet  float64
}

// QualityReport is the advisory output of ValidateQuality. It never blocks
// processing.
type QualityReport struct {
	Valid     bool
	Warnings  []string
	TotalRows int
}
