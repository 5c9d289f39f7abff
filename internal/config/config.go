// Package config loads and validates the application configuration from
// config.yaml with an environment variable overlay.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "salescli/internal/errors"
)

// PlaceholderSheetID is the value shipped in the example config. Loading a
// config that still carries it is a fatal configuration error.
const PlaceholderSheetID = "YOUR_SHEET_ID_HERE"

// RequiredColumnKeys are the six semantic column keys every column mapping
// must resolve.
var RequiredColumnKeys = []string{
	"timestamp",
	"name",
	"doors_knocked",
	"homeowners_talked",
	"qualified_leads",
	"appointments_set",
}

// Config represents the complete application configuration
type Config struct {
	GoogleSheets   GoogleSheetsConfig   `yaml:"google_sheets" envconfig:"GOOGLE_SHEETS"`
	Data           DataConfig           `yaml:"data" envconfig:"DATA"`
	Visualizations VisualizationsConfig `yaml:"visualizations" envconfig:"VISUALIZATIONS"`
	Email          EmailConfig          `yaml:"email" envconfig:"EMAIL"`
	Logging        LoggingConfig        `yaml:"logging" envconfig:"LOGGING"`
}

// GoogleSheetsConfig identifies the spreadsheet and how to reach it.
// Source selects between the live Sheets API and a local .xlsx export.
type GoogleSheetsConfig struct {
	SheetID         string `yaml:"sheet_id" envconfig:"SHEET_ID" validate:"required"`
	WorksheetName   string `yaml:"worksheet_name" envconfig:"WORKSHEET_NAME"`
	CredentialsPath string `yaml:"credentials_path" envconfig:"CREDENTIALS_PATH"`
	Source          string `yaml:"source" envconfig:"SOURCE" validate:"omitempty,oneof=sheets file"`
	FilePath        string `yaml:"file_path" envconfig:"FILE_PATH"`
	FetchRetries    int    `yaml:"fetch_retries" envconfig:"FETCH_RETRIES" validate:"omitempty,min=1,max=10"`
}

// DataConfig carries the column mapping and the lookback window.
type DataConfig struct {
	Columns       map[string]string `yaml:"columns" envconfig:"COLUMNS" validate:"required"`
	DaysToInclude int               `yaml:"days_to_include" envconfig:"DAYS_TO_INCLUDE"`
}

// VisualizationsConfig controls chart output.
type VisualizationsConfig struct {
	OutputDir string            `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Width     int               `yaml:"width" envconfig:"WIDTH" validate:"omitempty,min=320"`
	Height    int               `yaml:"height" envconfig:"HEIGHT" validate:"omitempty,min=240"`
	Colors    map[string]string `yaml:"colors" envconfig:"COLORS"`
}

// EmailConfig contains SMTP transport settings for the report mailer.
type EmailConfig struct {
	Enabled       bool   `yaml:"enabled" envconfig:"ENABLED"`
	SMTPServer    string `yaml:"smtp_server" envconfig:"SMTP_SERVER"`
	SMTPPort      int    `yaml:"smtp_port" envconfig:"SMTP_PORT" validate:"omitempty,min=1,max=65535"`
	UseTLS        bool   `yaml:"use_tls" envconfig:"USE_TLS"`
	Username      string `yaml:"username" envconfig:"USERNAME"`
	Password      string `yaml:"password" envconfig:"PASSWORD"`
	FromAddress   string `yaml:"from_address" envconfig:"FROM_ADDRESS" validate:"omitempty,email"`
	SubjectPrefix string `yaml:"subject_prefix" envconfig:"SUBJECT_PREFIX"`
	Schedule      string `yaml:"schedule" envconfig:"SCHEDULE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Load reads the YAML config file, applies the SALES_* environment overlay,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("configuration file not found at %s", path), err)
	}

	// Unmarshal over the defaults so an explicit zero in the file (for
	// example days_to_include: 0 meaning "all data") is preserved.
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse configuration file", err)
	}

	// Environment variables take precedence over the file.
	if err := envconfig.Process("SALES", &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from environment", err)
	}

	if cfg.Email.FromAddress == "" {
		cfg.Email.FromAddress = cfg.Email.Username
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// defaultConfig carries the values the original config shipped with.
func defaultConfig() Config {
	return Config{
		GoogleSheets: GoogleSheetsConfig{
			WorksheetName:   "Form Responses 1",
			CredentialsPath: "credentials.json",
			Source:          "sheets",
			FetchRetries:    3,
		},
		Data: DataConfig{
			DaysToInclude: 30,
		},
		Visualizations: VisualizationsConfig{
			OutputDir: "output/charts",
			Width:     1280,
			Height:    800,
		},
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
			UseTLS:     true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "console",
		},
	}
}

// Validate checks struct tags and the cross-field rules the tags cannot
// express: the placeholder sheet ID and the six required column keys.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	if c.GoogleSheets.SheetID == PlaceholderSheetID {
		return apperrors.NewConfigError(
			"sheet_id is still the placeholder; update config.yaml with your Google Sheet ID", nil)
	}

	if c.GoogleSheets.Source == "file" && c.GoogleSheets.FilePath == "" {
		return apperrors.NewConfigError("google_sheets.file_path is required when source is 'file'", nil)
	}

	var missing []string
	for _, key := range RequiredColumnKeys {
		if strings.TrimSpace(c.Data.Columns[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperrors.NewConfigError(
			fmt.Sprintf("data.columns is missing required keys: %s", strings.Join(missing, ", ")), nil)
	}

	return nil
}
