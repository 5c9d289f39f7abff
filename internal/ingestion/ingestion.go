// Package ingestion fetches the raw form responses as an untyped table,
// either from the Google Sheets API or from a local .xlsx export.
package ingestion

import (
	"context"
	"log/slog"
	"time"
)

// Table is the untyped tabular payload every source produces: one header row
// and zero or more data rows, all string-valued.
type Table struct {
	Header []string
	Rows   [][]string
}

// Source fetches the raw form responses.
type Source interface {
	Fetch(ctx context.Context) (Table, error)
}

// retryPause is the fixed pause between fetch attempts. Linear, no backoff.
var retryPause = 2 * time.Second

// FetchWithRetry calls src.Fetch up to attempts times, pausing a fixed
// interval between failures. The last error is returned when all attempts
// fail.
func FetchWithRetry(ctx context.Context, src Source, attempts int) (Table, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		table, err := src.Fetch(ctx)
		if err == nil {
			return table, nil
		}
		lastErr = err

		if attempt < attempts {
			slog.WarnContext(ctx, "fetch attempt failed, retrying",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", attempts),
				slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return Table{}, ctx.Err()
			case <-time.After(retryPause):
			}
		}
	}
	return Table{}, lastErr
}
