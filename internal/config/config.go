// Package config loads server configuration from flags, environment variables and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Server ServerConfig
	Auth   AuthConfig
	CO2    CO2Config
	Events EventsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates on-disk state: the sqlite database, the badger cache,
// the search index and the token key all live under BasePath.
type DataConfig struct {
	BasePath string
}

// DatabasePath returns the sqlite database file.
func (d DataConfig) DatabasePath() string { return filepath.Join(d.BasePath, "carbontrack.db") }

// CachePath returns the badger cache directory.
func (d DataConfig) CachePath() string { return filepath.Join(d.BasePath, "cache") }

// SearchPath returns the directory holding the search index.
func (d DataConfig) SearchPath() string { return filepath.Join(d.BasePath, "search") }

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        // default: 8080
	ReadTimeout    time.Duration // default: 15s
	WriteTimeout   time.Duration // default: 15s (SSE streams are exempt)
	IdleTimeout    time.Duration // default: 60s
	AllowedOrigins []string      // CORS origins, default: *
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes), set from the key file at startup.
	AccessTokenKey       []byte
	AccessTokenDuration  time.Duration // default: 15m
	RefreshTokenDuration time.Duration // default: 720h
	// LoginRateLimit is the number of login/register attempts allowed per IP per minute.
	LoginRateLimit int
}

// CO2Config holds the global CO2 ticker sources.
type CO2Config struct {
	MonthlyURL string
	WeeklyURL  string
	PageURL    string
	Timeout    time.Duration // per-fetch timeout, default: 10s
	CacheTTL   time.Duration // how long a live reading is reused, default: 1h
}

// EventsConfig holds the optional NATS event bus settings.
// An empty NATSURL disables publishing; SSE streaming is always on.
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

// Default CO2 sources.
const (
	DefaultCO2MonthlyURL = "https://gml.noaa.gov/webdata/ccgg/trends/co2/co2_mm_mlo.txt"
	DefaultCO2WeeklyURL  = "https://gml.noaa.gov/webdata/ccgg/trends/co2/co2_weekly_mlo.txt"
	DefaultCO2PageURL    = "https://www.co2.earth/daily-co2"
)

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for database, cache and search index")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := flag.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")

	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := flag.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	loginRateLimit := flag.String("login-rate-limit", "", "Login attempts per IP per minute (default: 10)")

	co2Timeout := flag.String("co2-timeout", "", "Per-source CO2 fetch timeout (default: 10s)")
	co2CacheTTL := flag.String("co2-cache-ttl", "", "CO2 reading cache lifetime (default: 1h)")

	natsURL := flag.String("nats-url", "", "NATS server URL for event publishing (optional)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// A missing .env file is fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			LoginRateLimit: getIntConfigValue(*loginRateLimit, "LOGIN_RATE_LIMIT", 10),
		},
		CO2: CO2Config{
			MonthlyURL: getConfigValue("", "CO2_MONTHLY_URL", DefaultCO2MonthlyURL),
			WeeklyURL:  getConfigValue("", "CO2_WEEKLY_URL", DefaultCO2WeeklyURL),
			PageURL:    getConfigValue("", "CO2_PAGE_URL", DefaultCO2PageURL),
		},
		Events: EventsConfig{
			NATSURL:       getConfigValue(*natsURL, "NATS_URL", ""),
			SubjectPrefix: getConfigValue("", "NATS_SUBJECT_PREFIX", "carbontrack"),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dst       *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m", &cfg.Auth.AccessTokenDuration},
		{*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h", &cfg.Auth.RefreshTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*co2Timeout, "CO2_TIMEOUT", "10s", &cfg.CO2.Timeout},
		{*co2CacheTTL, "CO2_CACHE_TTL", "1h", &cfg.CO2.CacheTTL},
	}
	for _, d := range durations {
		v, err := getDurationConfigValue(d.flagValue, d.envKey, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.CO2.Timeout <= 0 {
		return errors.New("CO2 fetch timeout must be positive")
	}

	if c.Auth.LoginRateLimit <= 0 {
		return errors.New("login rate limit must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath resolves the data path, defaulting to ~/CarbonTrack/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "CarbonTrack", "data"))
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s %q: %w", envKey, raw, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value pairs from path into the process environment.
// Variables already set in the environment win over the file.
func loadEnvFile(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return err
	}

	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set env var %s: %w", key, err)
		}
	}
	return nil
}
