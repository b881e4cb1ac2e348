package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultExpenseGroups is the expense sub-section order of the monthly report.
var DefaultExpenseGroups = []string{"Inversiones de capital", "Gastos ministeriales", "Gastos generales"}

type Config struct {
	// HTTP Server
	Port           string
	MaxImportBytes int64

	// Backend selection
	DataBackend  string
	SQLiteDBPath string
	CatalogFile  string

	// Ledger
	BaseCurrency        string
	Currencies          []string
	DefaultCenterID     string
	ReportExpenseGroups []string
	OrganizationName    string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets report publishing
	GoogleSpreadsheetID      string
	GoogleReportSheetName    string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	PublishRetries           int
	PublishBackoff           time.Duration

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8081"),
		MaxImportBytes: int64(getEnvInt("MAX_IMPORT_BYTES", 5<<20)),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tesoreria.db"),
		CatalogFile:  getEnv("CATALOG_FILE", "./data/catalog.yaml"),

		BaseCurrency:        strings.ToUpper(getEnv("BASE_CURRENCY", "ARS")),
		Currencies:          upperAll(getEnvList("CURRENCIES", []string{"ARS", "USD"})),
		DefaultCenterID:     getEnv("DEFAULT_CENTER_ID", ""),
		ReportExpenseGroups: getEnvList("REPORT_EXPENSE_GROUPS", DefaultExpenseGroups),
		OrganizationName:    getEnv("ORGANIZATION_NAME", "Tesorería"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tesoreria"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_imports"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleReportSheetName:    getEnv("GOOGLE_REPORT_SHEET_NAME", "Informe"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		PublishRetries:           getEnvInt("PUBLISH_RETRIES", 3),
		PublishBackoff:           getEnvDuration("PUBLISH_BACKOFF", 500*time.Millisecond),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// SheetsEnabled reports whether report publishing to Google Sheets is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// AMQPEnabled reports whether import events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.MaxImportBytes < 1 {
		errors = append(errors, fmt.Sprintf("invalid max import bytes %d: must be positive", c.MaxImportBytes))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.CatalogFile != "" {
		if _, err := os.Stat(c.CatalogFile); err != nil && !os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("cannot read catalog file '%s': %v", c.CatalogFile, err))
		}
	}

	if !isCurrencyCode(c.BaseCurrency) {
		errors = append(errors, fmt.Sprintf("invalid base currency '%s': must be a 3-letter code", c.BaseCurrency))
	}
	for _, code := range c.Currencies {
		if !isCurrencyCode(code) {
			errors = append(errors, fmt.Sprintf("invalid currency '%s': must be a 3-letter code", code))
		}
	}
	if len(c.Currencies) > 0 && !contains(c.Currencies, c.BaseCurrency) {
		errors = append(errors, fmt.Sprintf("base currency '%s' must be listed in CURRENCIES %v", c.BaseCurrency, c.Currencies))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleReportSheetName == "" {
			errors = append(errors, "Google report sheet name is required when a spreadsheet is configured")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided to publish reports")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.PublishRetries < 0 || c.PublishRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid publish retries %d: must be between 0 and 10", c.PublishRetries))
	}
	if c.PublishBackoff < 0 || c.PublishBackoff > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid publish backoff %v: must be between 0 and 1 minute", c.PublishBackoff))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}

func upperAll(in []string) []string {
	for i := range in {
		in[i] = strings.ToUpper(in[i])
	}
	return in
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
