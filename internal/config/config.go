// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Storage    StorageConfig
	Server     ServerConfig
	Archive    ArchiveConfig
	MovieDB    MovieDBConfig
	Enrichment EnrichmentConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds local storage configuration.
type StorageConfig struct {
	// DataPath is the base directory for the database, poster cache,
	// search index, and viewing-state store.
	DataPath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name          string
	Port          string        // Server port (default: 8080)
	ReadTimeout   time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout  time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout   time.Duration // HTTP idle timeout (default: 60s)
	AdvertiseMDNS bool          // Advertise via mDNS/Zeroconf (default: true)
}

// ArchiveConfig holds film archive collaborator configuration.
type ArchiveConfig struct {
	// BaseURL is the archive search endpoint root (default: https://archive.org)
	BaseURL string
	// Collection restricts browsing to one archive collection (default: feature_films)
	Collection string
	// PageSize is the default catalog page size (default: 50)
	PageSize int
	// Timeout bounds a single catalog fetch (default: 30s)
	Timeout time.Duration
}

// MovieDBConfig holds movie metadata collaborator configuration.
type MovieDBConfig struct {
	// APIKey authenticates against the metadata provider. Empty disables enrichment.
	APIKey string
	// BaseURL is the provider API root (default: https://api.themoviedb.org/3)
	BaseURL string
	// ImageBaseURL is the provider image-serving root (default: https://image.tmdb.org/t/p)
	ImageBaseURL string
	// Language for search queries and overviews (default: en-US)
	Language string
}

// EnrichmentConfig holds metadata enrichment configuration.
type EnrichmentConfig struct {
	// Enabled toggles enrichment entirely (default: true, forced off without an API key)
	Enabled bool
	// LookupTimeout bounds a single metadata lookup (default: 15s)
	LookupTimeout time.Duration
	// MinInterval is the minimum spacing between outbound lookups (default: 100ms)
	MinInterval time.Duration
	// CacheTTL is the validity window for the persisted match cache (default: 168h)
	CacheTTL time.Duration
	// FlushDelay is the debounce quiet period before a cache flush (default: 2s)
	FlushDelay time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for local storage")
	serverName := flag.String("server-name", "", "Name for the server")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	advertiseMDNS := flag.String("advertise-mdns", "", "Advertise via mDNS/Zeroconf (default: true)")

	// Archive flags
	archiveBaseURL := flag.String("archive-url", "", "Film archive base URL")
	archiveCollection := flag.String("archive-collection", "", "Archive collection to browse (default: feature_films)")
	archivePageSize := flag.String("archive-page-size", "", "Catalog page size (default: 50)")

	// Metadata provider flags
	movieDBKey := flag.String("moviedb-api-key", "", "Movie metadata provider API key")
	movieDBURL := flag.String("moviedb-url", "", "Movie metadata provider base URL")

	// Enrichment flags
	enrichmentEnabled := flag.String("enrichment-enabled", "", "Enable metadata enrichment (default: true)")
	lookupTimeout := flag.String("lookup-timeout", "", "Metadata lookup timeout (default: 15s)")
	minInterval := flag.String("lookup-interval", "", "Minimum spacing between metadata lookups (default: 100ms)")
	cacheTTL := flag.String("match-cache-ttl", "", "Match cache validity window (default: 168h)")
	flushDelay := flag.String("match-cache-flush-delay", "", "Match cache flush debounce (default: 2s)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Name:          getConfigValue(*serverName, "SERVER_NAME", "Matinee Server"),
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AdvertiseMDNS: getBoolConfigValue(*advertiseMDNS, "ADVERTISE_MDNS", true),
		},
		Archive: ArchiveConfig{
			BaseURL:    getConfigValue(*archiveBaseURL, "ARCHIVE_URL", "https://archive.org"),
			Collection: getConfigValue(*archiveCollection, "ARCHIVE_COLLECTION", "feature_films"),
			PageSize:   getIntConfigValue(*archivePageSize, "ARCHIVE_PAGE_SIZE", 50),
		},
		MovieDB: MovieDBConfig{
			APIKey:       getConfigValue(*movieDBKey, "MOVIEDB_API_KEY", ""),
			BaseURL:      getConfigValue(*movieDBURL, "MOVIEDB_URL", "https://api.themoviedb.org/3"),
			ImageBaseURL: getConfigValue("", "MOVIEDB_IMAGE_URL", "https://image.tmdb.org/t/p"),
			Language:     getConfigValue("", "MOVIEDB_LANGUAGE", "en-US"),
		},
		Enrichment: EnrichmentConfig{
			Enabled: getBoolConfigValue(*enrichmentEnabled, "ENRICHMENT_ENABLED", true),
		},
	}

	// Parse durations.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Archive.Timeout, err = parseDurationValue("", "ARCHIVE_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Enrichment.LookupTimeout, err = parseDurationValue(*lookupTimeout, "LOOKUP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Enrichment.MinInterval, err = parseDurationValue(*minInterval, "LOOKUP_INTERVAL", "100ms"); err != nil {
		return nil, err
	}
	if cfg.Enrichment.CacheTTL, err = parseDurationValue(*cacheTTL, "MATCH_CACHE_TTL", "168h"); err != nil {
		return nil, err
	}
	if cfg.Enrichment.FlushDelay, err = parseDurationValue(*flushDelay, "MATCH_CACHE_FLUSH_DELAY", "2s"); err != nil {
		return nil, err
	}

	// Enrichment needs a provider key to do anything.
	if cfg.MovieDB.APIKey == "" {
		cfg.Enrichment.Enabled = false
	}

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Archive.BaseURL == "" {
		return errors.New("archive base URL is required")
	}

	if c.Archive.PageSize < 1 || c.Archive.PageSize > 200 {
		return fmt.Errorf("invalid archive page size: %d (must be 1-200)", c.Archive.PageSize)
	}

	if c.Enrichment.MinInterval <= 0 {
		return errors.New("lookup interval must be positive")
	}

	if c.Enrichment.CacheTTL <= 0 {
		return errors.New("match cache TTL must be positive")
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/Matinee when unset.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Matinee")

	expanded, err := expandPath(c.Storage.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
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

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), raw, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
