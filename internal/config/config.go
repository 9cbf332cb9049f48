package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultAPIURL is the backend API base used when nothing else is configured
	DefaultAPIURL = "http://localhost:5000/api"

	// MinRequestTimeout bounds the HTTP timeout from below. Deep paper analysis
	// can take several minutes server-side.
	MinRequestTimeout = 200 * time.Second
)

// Config holds all configuration for the application
type Config struct {
	// API client configuration
	API APIConfig

	// Durable client storage configuration
	Storage StorageConfig

	// Development backend configuration
	DevServer DevServerConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds backend API configuration
type APIConfig struct {
	URL     string
	Timeout time.Duration

	// URLFromEnv is true when NEWSHUB_API_URL was set explicitly
	URLFromEnv bool
}

// StorageConfig selects the session storage backend
type StorageConfig struct {
	Backend string // keyring, file
}

// DevServerConfig holds configuration for the local development backend
type DevServerConfig struct {
	Address     string
	DatabaseURL string
	JWTSecret   string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	apiURL := os.Getenv("NEWSHUB_API_URL")
	urlFromEnv := apiURL != ""
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	timeout := MinRequestTimeout
	if raw := os.Getenv("NEWSHUB_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid NEWSHUB_TIMEOUT %q: %w", raw, err)
		}
		timeout = ClampTimeout(parsed)
	}

	backend := strings.ToLower(os.Getenv("NEWSHUB_STORAGE"))
	switch backend {
	case "":
		backend = "keyring"
	case "keyring", "file":
	default:
		return nil, fmt.Errorf("invalid NEWSHUB_STORAGE %q, must be one of: keyring, file", backend)
	}

	devAddr := os.Getenv("DEVSERVER_ADDRESS")
	if devAddr == "" {
		devAddr = ":5000"
	}

	devDB := os.Getenv("DATABASE_URL")
	if devDB == "" {
		devDB = "newshub-dev.sqlite"
	}

	// Logging configuration - CLI-friendly defaults
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	return &Config{
		API: APIConfig{
			URL:        apiURL,
			Timeout:    timeout,
			URLFromEnv: urlFromEnv,
		},
		Storage: StorageConfig{
			Backend: backend,
		},
		DevServer: DevServerConfig{
			Address:     devAddr,
			DatabaseURL: devDB,
			JWTSecret:   os.Getenv("JWT_SECRET"),
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}

// ClampTimeout raises d to MinRequestTimeout when it is shorter
func ClampTimeout(d time.Duration) time.Duration {
	if d < MinRequestTimeout {
		return MinRequestTimeout
	}
	return d
}
