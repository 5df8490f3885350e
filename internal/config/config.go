package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const minJWTSecretLen = 16

type Config struct {
	// HTTP Server
	Port               string
	MaxUploadBytes     int64
	RateLimitPerMinute int
	TrustedProxies     []string

	// Database
	SQLiteDBPath string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Categorizer
	KeywordsFile string

	// Chart cache
	CacheTTL  time.Duration
	CacheSize int

	// AMQP (optional; empty URL disables events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (optional)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/gastos.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 30*24*time.Hour),

		KeywordsFile: getEnv("KEYWORDS_FILE", ""),

		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize: getEnvInt("CACHE_SIZE", 500),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gastos"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "gastos_imports"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transacoes"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// SheetsEnabled reports whether the worker should write to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// problems collects every validation failure so one run reports them all.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var p problems
	c.checkServer(&p)
	c.checkStorage(&p)
	c.checkAMQP(&p)
	c.checkSheets(&p)
	c.checkLogging(&p)

	if len(p) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(p, "\n- "))
	}
	return nil
}

func (c *Config) checkServer(p *problems) {
	if port, err := strconv.Atoi(c.Port); err != nil {
		p.addf("invalid port '%s': must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		p.addf("invalid port %d: must be between 1 and 65535", port)
	}
	if len(c.JWTSecret) < minJWTSecretLen {
		p.addf("JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}
	if c.JWTTTL < time.Minute {
		p.addf("invalid JWT TTL %v: must be at least 1 minute", c.JWTTTL)
	}
	if c.MaxUploadBytes < 1024 {
		p.addf("invalid max upload size %d: must be at least 1024 bytes", c.MaxUploadBytes)
	}
	if c.RateLimitPerMinute < 1 {
		p.addf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute)
	}
	if c.CacheTTL < 0 {
		p.addf("invalid cache TTL %v: must not be negative", c.CacheTTL)
	}
	if c.CacheSize < 1 {
		p.addf("invalid cache size %d: must be at least 1", c.CacheSize)
	}
}

// checkStorage also creates the database directory, so a fresh checkout
// starts without manual setup.
func (c *Config) checkStorage(p *problems) {
	if c.SQLiteDBPath == "" {
		p.addf("SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			p.addf("cannot create SQLite database directory '%s': %v", dir, err)
		}
	}
	if c.KeywordsFile != "" {
		if _, err := os.Stat(c.KeywordsFile); err != nil {
			p.addf("keywords file is not readable: %s", c.KeywordsFile)
		}
	}
}

func (c *Config) checkAMQP(p *problems) {
	if c.AMQPURL == "" {
		return
	}
	u, err := url.Parse(c.AMQPURL)
	switch {
	case err != nil:
		p.addf("invalid AMQP URL '%s': %v", c.AMQPURL, err)
	case u.Scheme != "amqp" && u.Scheme != "amqps":
		p.addf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme)
	}
	if c.AMQPExchange == "" {
		p.addf("AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		p.addf("AMQP queue name cannot be empty when AMQP URL is provided")
	}
}

func (c *Config) checkSheets(p *problems) {
	if !c.SheetsEnabled() {
		return
	}
	if c.GoogleSheetName == "" {
		p.addf("Google Sheet name is required when a spreadsheet ID is set")
	}
	switch {
	case c.GoogleServiceAccountJSON != "":
	case c.GoogleServiceAccountFile == "":
		p.addf("either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the sheet mirror")
	default:
		if _, err := os.Stat(c.GoogleServiceAccountFile); errors.Is(err, fs.ErrNotExist) {
			p.addf("Google service account file does not exist: %s", c.GoogleServiceAccountFile)
		}
	}
}

func (c *Config) checkLogging(p *problems) {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		p.addf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		p.addf("invalid log format '%s': must be text or json", c.LogFormat)
	}
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

// getEnvList splits a comma separated variable, dropping blank entries.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
