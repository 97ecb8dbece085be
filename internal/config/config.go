package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBaseURL is the hosted backend used when PARK_API_URL is not set.
const DefaultBaseURL = "https://city-park-hub-1rf7.onrender.com"

// Config holds all client configuration loaded from environment.
type Config struct {
	APIBaseURL  string
	LocalKW     string // locality tag sent with booking creation
	HTTPTimeout time.Duration
	ListRetries int // attempts for read-only listing queries
	CacheTTL    time.Duration
	SessionFile string
	Verbose     bool
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	cfg.APIBaseURL = getEnv("PARK_API_URL", DefaultBaseURL)
	cfg.LocalKW = getEnv("PARK_LOCAL_KW", "true")
	cfg.Verbose = getEnv("PARK_VERBOSE", "") == "true"

	// HTTP timeout ceiling, parse as time.Duration (e.g. "10s", "30s").
	timeout, err := getEnvAsDuration("PARK_HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid PARK_HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Fixed retry budget for listing queries. Mutations are never retried.
	cfg.ListRetries, err = getEnvAsInt("PARK_LIST_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid PARK_LIST_RETRIES: %w", err)
	}

	cfg.CacheTTL, err = getEnvAsDuration("PARK_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid PARK_CACHE_TTL: %w", err)
	}

	cfg.SessionFile = getEnv("PARK_SESSION_FILE", "")
	if cfg.SessionFile == "" {
		path, err := defaultSessionFile()
		if err != nil {
			return nil, err
		}
		cfg.SessionFile = path
	}

	return cfg, nil
}

// defaultSessionFile returns the session path under the user config directory.
func defaultSessionFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "parkctl", "session.json"), nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration retrieves an environment variable as a time.Duration.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}

	return val, nil
}
