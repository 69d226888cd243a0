package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ccheshirecat/routeassist/internal/routes"
)

const (
	defaultHTTPListen    = "127.0.0.1:7380"
	defaultLogFormat     = "text"
	defaultLogLevel      = "info"
	defaultDebounce      = 500 * time.Millisecond
	defaultLookupTimeout = 10 * time.Second
)

// Config captures runtime settings for the routeassist daemon.
type Config struct {
	HTTPListen string
	// ConfigPath is the proxy configuration to read routes from. Empty
	// serves an empty configuration.
	ConfigPath string
	// Origin overrides the origin derived from each request.
	Origin        *routes.Origin
	LogFormat     string
	LogLevel      string
	Debounce      time.Duration
	LookupTimeout time.Duration
	APIKey        string
}

// FromEnv loads configuration using environment variables with defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPListen: getenv("ROUTEASSIST_HTTP_LISTEN", defaultHTTPListen),
		ConfigPath: expandPath(getenv("ROUTEASSIST_CONFIG_PATH", "")),
		LogFormat:  strings.ToLower(getenv("ROUTEASSIST_LOG_FORMAT", defaultLogFormat)),
		LogLevel:   strings.ToLower(getenv("ROUTEASSIST_LOG_LEVEL", defaultLogLevel)),
		APIKey:     strings.TrimSpace(os.Getenv("ROUTEASSIST_API_KEY")),
	}

	if cfg.HTTPListen == "" {
		return Config{}, fmt.Errorf("http listen address required")
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("log format %q not supported", cfg.LogFormat)
	}

	if raw := getenv("ROUTEASSIST_ORIGIN", ""); raw != "" {
		origin, err := routes.ParseOrigin(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid origin: %w", err)
		}
		cfg.Origin = &origin
	}

	var err error
	if cfg.Debounce, err = durationEnv("ROUTEASSIST_DEBOUNCE", defaultDebounce); err != nil {
		return Config{}, err
	}
	if cfg.LookupTimeout, err = durationEnv("ROUTEASSIST_LOOKUP_TIMEOUT", defaultLookupTimeout); err != nil {
		return Config{}, err
	}

	if cfg.ConfigPath != "" {
		if _, err := routes.FormatFromPath(cfg.ConfigPath); err != nil {
			return Config{}, fmt.Errorf("config path %s: %w", cfg.ConfigPath, err)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(path)
}
