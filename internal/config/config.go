// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the extract service.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	MetaDBPath string // path to the SQLite metastore file
	MemberDSN  string // ODBC DSN for the membership warehouse (optional)
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	QueryTimeout    time.Duration // per-run deadline for member warehouse queries
	CatalogCacheTTL time.Duration // TTL for cached catalog reference reads
	ExportSpoolDir  string        // directory scheduled extract files are written to

	// CORS
	CORSAllowedOrigins []string // allowed origins (default: ["*"])

	// DefaultUserID is the principal stamped on every request until a real
	// identity provider is wired in.
	DefaultUserID int64

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables. MEMBER_DSN is
// optional — without it the server starts in builder-only mode and run/export
// endpoints report the member store unavailable.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
		MetaDBPath:     os.Getenv("META_DB_PATH"),
		MemberDSN:      os.Getenv("MEMBER_DSN"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		Env:            os.Getenv("ENV"),
		ExportSpoolDir: os.Getenv("EXPORT_SPOOL_DIR"),
	}

	if v := os.Getenv("QUERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid QUERY_TIMEOUT %q: %w", v, err)
		}
		cfg.QueryTimeout = d
	}
	if v := os.Getenv("CATALOG_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL %q: %w", v, err)
		}
		cfg.CatalogCacheTTL = d
	}
	if v := os.Getenv("DEFAULT_USER_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid DEFAULT_USER_ID %q", v)
		}
		cfg.DefaultUserID = n
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "oder_meta.sqlite"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = 30 * time.Second
	}
	if cfg.CatalogCacheTTL == 0 {
		cfg.CatalogCacheTTL = 4 * time.Hour
	}
	if cfg.ExportSpoolDir == "" {
		cfg.ExportSpoolDir = "spool"
	}
	if cfg.DefaultUserID == 0 {
		cfg.DefaultUserID = 1
		cfg.Warnings = append(cfg.Warnings, "DEFAULT_USER_ID not set — all requests run as user 1")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.MemberDSN == "" {
		cfg.Warnings = append(cfg.Warnings, "MEMBER_DSN not set — run and export endpoints will be unavailable")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if cfg.MemberDSN == "" {
			return nil, fmt.Errorf("MEMBER_DSN must be set in production (ENV=production)")
		}
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
