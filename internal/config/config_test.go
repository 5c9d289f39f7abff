package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salescli/internal/errors"
)

const validConfigYAML = `
google_sheets:
  sheet_id: "1abcDEFghiJKLmnoPQRstuVWxyz"
  worksheet_name: "Form Responses 1"
  credentials_path: "credentials.json"
data:
  columns:
    timestamp: "Timestamp"
    name: "Your Name"
    doors_knocked: "Doors Knocked"
    homeowners_talked: "Homeowners Talked To"
    qualified_leads: "Qualified Leads"
    appointments_set: "Appointments Set"
  days_to_include: 30
visualizations:
  output_dir: "output/charts"
email:
  enabled: true
  smtp_server: "smtp.example.com"
  smtp_port: 587
  use_tls: true
  username: "reports@example.com"
  password: "secret"
  from_address: "reports@example.com"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "1abcDEFghiJKLmnoPQRstuVWxyz", cfg.GoogleSheets.SheetID)
	assert.Equal(t, "Form Responses 1", cfg.GoogleSheets.WorksheetName)
	assert.Equal(t, "Timestamp", cfg.Data.Columns["timestamp"])
	assert.Equal(t, 30, cfg.Data.DaysToInclude)
	assert.True(t, cfg.Email.Enabled)

	// Defaults filled for values the file omits.
	assert.Equal(t, "sheets", cfg.GoogleSheets.Source)
	assert.Equal(t, 3, cfg.GoogleSheets.FetchRetries)
	assert.Equal(t, 1280, cfg.Visualizations.Width)
	assert.Equal(t, 800, cfg.Visualizations.Height)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
}

func TestLoadRejectsPlaceholderSheetID(t *testing.T) {
	content := `
google_sheets:
  sheet_id: "YOUR_SHEET_ID_HERE"
data:
  columns:
    timestamp: "Timestamp"
    name: "Your Name"
    doors_knocked: "Doors Knocked"
    homeowners_talked: "Homeowners Talked To"
    qualified_leads: "Qualified Leads"
    appointments_set: "Appointments Set"
`
	_, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
	assert.Contains(t, err.Error(), "placeholder")
}

func TestLoadMissingColumnKeys(t *testing.T) {
	content := `
google_sheets:
  sheet_id: "1abc"
data:
  columns:
    timestamp: "Timestamp"
    name: "Your Name"
`
	_, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
	assert.Contains(t, err.Error(), "appointments_set")
	assert.Contains(t, err.Error(), "doors_knocked")
}

func TestLoadFileSourceRequiresFilePath(t *testing.T) {
	content := `
google_sheets:
  sheet_id: "1abc"
  source: "file"
data:
  columns:
    timestamp: "Timestamp"
    name: "Your Name"
    doors_knocked: "Doors Knocked"
    homeowners_talked: "Homeowners Talked To"
    qualified_leads: "Qualified Leads"
    appointments_set: "Appointments Set"
`
	_, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_path")
}

func TestEnvOverlayTakesPrecedence(t *testing.T) {
	t.Setenv("SALES_DATA_DAYS_TO_INCLUDE", "7")
	t.Setenv("SALES_GOOGLE_SHEETS_WORKSHEET_NAME", "Responses 2")

	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Data.DaysToInclude)
	assert.Equal(t, "Responses 2", cfg.GoogleSheets.WorksheetName)
}

func TestLoadRoster(t *testing.T) {
	content := `
team_members:
  - name: "Bob Smith"
    email: "bob@example.com"
  - name: "Jane Doe"
    email: "jane@example.com"
`
	path := filepath.Join(t.TempDir(), "team_roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	members, err := LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, RosterMember{Name: "Bob Smith", Email: "bob@example.com"}, members[0])
	assert.Equal(t, RosterMember{Name: "Jane Doe", Email: "jane@example.com"}, members[1])
}

func TestLoadRosterInvalidEmail(t *testing.T) {
	content := `
team_members:
  - name: "Bob Smith"
    email: "not-an-email"
`
	path := filepath.Join(t.TempDir(), "team_roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadRoster(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
	assert.Contains(t, err.Error(), "Bob Smith")
}

func TestLoadRosterMissingFile(t *testing.T) {
	_, err := LoadRoster(filepath.Join(t.TempDir(), "team_roster.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
}
