package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "salescli/internal/errors"
)

// FileSource reads the same tabular payload from a local .xlsx export of the
// form responses. It exists so reports can be generated offline from a
// downloaded copy of the sheet.
type FileSource struct {
	path      string
	worksheet string
	logger    *slog.Logger
}

// NewFileSource returns a source reading from the given workbook. worksheet
// may be empty, in which case the first sheet in the workbook is used.
func NewFileSource(path, worksheet string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: path, worksheet: worksheet, logger: logger}
}

// Fetch opens the workbook and returns the worksheet contents as a Table.
func (s *FileSource) Fetch(ctx context.Context) (Table, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return Table{}, apperrors.NewNetworkError(
			fmt.Sprintf("failed to open workbook %s", s.path), err)
	}
	defer f.Close()

	worksheet := s.worksheet
	if worksheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Table{}, apperrors.NewParsingError(
				fmt.Sprintf("workbook %s contains no sheets", s.path), nil)
		}
		worksheet = sheets[0]
	}

	rows, err := f.GetRows(worksheet)
	if err != nil {
		return Table{}, apperrors.NewParsingError(
			fmt.Sprintf("worksheet %q not found in %s", worksheet, s.path), err)
	}
	if len(rows) == 0 {
		return Table{}, apperrors.NewParsingError(
			fmt.Sprintf("no data found in worksheet %q", worksheet), nil)
	}

	table := Table{Header: rows[0], Rows: make([][]string, 0, len(rows)-1)}
	width := len(table.Header)
	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, padRow(row, width))
	}

	s.logger.InfoContext(ctx, "read rows from workbook",
		slog.Int("rows", len(table.Rows)),
		slog.String("worksheet", worksheet),
		slog.String("path", s.path))

	return table, nil
}
