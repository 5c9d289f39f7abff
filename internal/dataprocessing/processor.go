// Package dataprocessing turns the raw tabular form responses into typed,
// validated records and provides the date/person filters and the data
// quality audit that run before KPI aggregation.
package dataprocessing

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	apperrors "salescli/internal/errors"
	"salescli/internal/ingestion"
)

// timestampLayouts are tried in order when parsing the timestamp column.
// Google Forms emits "1/2/2006 15:04:05" by default; the rest cover manual
// edits and exports.
var timestampLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"01-02-06 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// Processor normalizes and filters sales activity records.
type Processor struct {
	mapping ColumnMapping
	logger  *slog.Logger
	nowFn   func() time.Time
}

// NewProcessor creates a processor for the given column mapping.
func NewProcessor(mapping ColumnMapping, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		mapping: mapping,
		logger:  logger,
		nowFn:   time.Now,
	}
}

// Clean validates the header against the column mapping and normalizes every
// row: lenient timestamp parsing (unparseable rows are dropped), trimmed and
// title-cased names, numeric counters with missing values filled with 0 and
// negatives clamped to 0. Row order is preserved.
func (p *Processor) Clean(table ingestion.Table) ([]Record, error) {
	idx, err := p.resolveColumns(table.Header)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(table.Rows))
	dropped := 0
	for _, row := range table.Rows {
		ts, ok := parseTimestamp(cell(row, idx.timestamp))
		if !ok {
			dropped++
			continue
		}
		records = append(records, Record{
			Timestamp:        ts,
			Name:             titleCase(strings.TrimSpace(cell(row, idx.name))),
			DoorsKnocked:     parseCounter(cell(row, idx.doors)),
			HomeownersTalked: parseCounter(cell(row, idx.talked)),
			QualifiedLeads:   parseCounter(cell(row, idx.qualified)),
			AppointmentsSet:  parseCounter(cell(row, idx.appointments)),
		})
	}

	p.logger.Info("data cleaned",
		slog.Int("valid_rows", len(records)),
		slog.Int("dropped_rows", dropped))

	return records, nil
}

// columnIndexes holds the resolved header positions of the six mapped columns.
type columnIndexes struct {
	timestamp    int
	name         int
	doors        int
	talked       int
	qualified    int
	appointments int
}

// resolveColumns locates every mapped column in the header. Any missing
// column is a fatal schema error listing both the missing and the available
// columns.
func (p *Processor) resolveColumns(header []string) (columnIndexes, error) {
	positions := make(map[string]int, len(header))
	for i, label := range header {
		label = strings.TrimSpace(label)
		if _, seen := positions[label]; !seen {
			positions[label] = i
		}
	}

	var missing []string
	lookup := func(label string) int {
		if i, ok := positions[label]; ok {
			return i
		}
		missing = append(missing, label)
		return -1
	}

	idx := columnIndexes{
		timestamp:    lookup(p.mapping.Timestamp),
		name:         lookup(p.mapping.Name),
		doors:        lookup(p.mapping.DoorsKnocked),
		talked:       lookup(p.mapping.HomeownersTalked),
		qualified:    lookup(p.mapping.QualifiedLeads),
		appointments: lookup(p.mapping.AppointmentsSet),
	}

	if len(missing) > 0 {
		available := make([]string, 0, len(header))
		for _, label := range header {
			available = append(available, strings.TrimSpace(label))
		}
		return columnIndexes{}, apperrors.NewSchemaError(
			fmt.Sprintf("missing required columns: %s; available columns: %s; update config.yaml with the correct column names",
				strings.Join(missing, ", "), strings.Join(available, ", ")),
			nil)
	}

	return idx, nil
}

// FilterByWindow keeps records with a timestamp at or after now minus the
// given number of days. days <= 0 means no filtering. The cutoff is
// evaluated once per call.
func (p *Processor) FilterByWindow(records []Record, days int) []Record {
	if days <= 0 {
		p.logger.Info("using all available data", slog.Int("rows", len(records)))
		return records
	}

	cutoff := p.nowFn().AddDate(0, 0, -days)
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Timestamp.Before(cutoff) {
			filtered = append(filtered, r)
		}
	}

	p.logger.Info("filtered by date window",
		slog.Int("days", days),
		slog.Int("rows", len(filtered)))

	return filtered
}

// FilterByPerson selects the records for one person. It tries a
// case-insensitive exact match on the normalized name first, then falls back
// to substring containment. Zero matches on both is a NOT_FOUND error that
// enumerates the distinct names present, sorted.
func (p *Processor) FilterByPerson(records []Record, personName string) ([]Record, error) {
	target := strings.ToLower(strings.TrimSpace(personName))

	matched := make([]Record, 0)
	for _, r := range records {
		if strings.ToLower(r.Name) == target {
			matched = append(matched, r)
		}
	}

	if len(matched) == 0 {
		for _, r := range records {
			if strings.Contains(strings.ToLower(r.Name), target) {
				matched = append(matched, r)
			}
		}
	}

	if len(matched) == 0 {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("no data found for '%s'; available names: %s",
				personName, strings.Join(distinctNames(records), ", "))).
			WithContext("person", personName)
	}

	p.logger.Info("filtered by person",
		slog.String("person", personName),
		slog.Int("rows", len(matched)))

	return matched, nil
}

// AggregateByPerson groups records by normalized name and sums the four
// counters per group. Output is sorted by name for determinism. This is the
// team baseline, so it intentionally runs on the date-filtered set that
// still contains every person.
func (p *Processor) AggregateByPerson(records []Record) []PersonTotals {
	byName := make(map[string]*PersonTotals)
	for _, r := range records {
		totals, ok := byName[r.Name]
		if !ok {
			totals = &PersonTotals{Name: r.Name}
			byName[r.Name] = totals
		}
		totals.DoorsKnocked += r.DoorsKnocked
		totals.HomeownersTalked += r.HomeownersTalked
		totals.QualifiedLeads += r.QualifiedLeads
		totals.AppointmentsSet += r.AppointmentsSet
	}

	out := make([]PersonTotals, 0, len(byName))
	for _, totals := range byName {
		out = append(out, *totals)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// distinctNames returns the sorted distinct normalized names in the records.
func distinctNames(records []Record) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Name]; !ok {
			seen[r.Name] = struct{}{}
			names = append(names, r.Name)
		}
	}
	sort.Strings(names)
	return names
}

// cell returns row[i], or "" when the row is too short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseTimestamp tries each known layout in order. ok is false when no
// layout matches; such rows are dropped by Clean.
func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseCounter coerces a cell to a non-negative number. Empty and
// non-numeric values become 0, as do negatives.
func parseCounter(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// titleCase capitalizes the first letter of each word and lowercases the
// rest, preserving internal whitespace. This mirrors how names are
// normalized so person matching is case-insensitive.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
