package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apperrors "salescli/internal/errors"
)

// SheetsClient fetches form responses through the Google Sheets API using a
// service account.
type SheetsClient struct {
	service   *sheets.Service
	sheetID   string
	worksheet string
	logger    *slog.Logger
}

// NewSheetsClient authenticates with the Sheets API using the service
// account credentials file and returns a client bound to one spreadsheet
// and worksheet.
func NewSheetsClient(ctx context.Context, credentialsPath, sheetID, worksheet string, logger *slog.Logger) (*SheetsClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("failed to authenticate with Google Sheets using %s", credentialsPath), err)
	}

	return &SheetsClient{
		service:   service,
		sheetID:   sheetID,
		worksheet: worksheet,
		logger:    logger,
	}, nil
}

// Fetch reads the whole worksheet and returns it as a Table. The first row
// is the header; the rest are data rows. Cells are stringified as the API
// returns them.
func (c *SheetsClient) Fetch(ctx context.Context) (Table, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.sheetID, c.worksheet).Context(ctx).Do()
	if err != nil {
		return Table{}, apperrors.NewNetworkError(
			fmt.Sprintf("failed to read worksheet %q from spreadsheet %s; check the sheet ID and that the sheet is shared with the service account", c.worksheet, c.sheetID),
			err)
	}

	if len(resp.Values) == 0 {
		return Table{}, apperrors.NewNetworkError(
			fmt.Sprintf("no data found in worksheet %q", c.worksheet), nil)
	}

	table := Table{
		Header: stringifyRow(resp.Values[0]),
		Rows:   make([][]string, 0, len(resp.Values)-1),
	}
	width := len(table.Header)
	for _, row := range resp.Values[1:] {
		table.Rows = append(table.Rows, padRow(stringifyRow(row), width))
	}

	c.logger.InfoContext(ctx, "fetched rows from Google Sheets",
		slog.Int("rows", len(table.Rows)),
		slog.String("worksheet", c.worksheet))

	return table, nil
}

// stringifyRow converts the API's interface{} cells to strings.
func stringifyRow(row []interface{}) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = fmt.Sprint(cell)
	}
	return out
}

// padRow extends short rows to the header width. The Sheets API trims
// trailing empty cells, so data rows are frequently narrower than the header.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
