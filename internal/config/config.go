// Package config loads vmapd settings from VMAP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWidth and DefaultHeight size the projector output.
	DefaultWidth  = 1280
	DefaultHeight = 800

	// DefaultLayoutDir holds layout documents and texture images.
	DefaultLayoutDir = "."
	// DefaultLayoutFile is loaded on start and written by the save key.
	DefaultLayoutFile = "layout.xml"

	// DefaultSnapDistance and DefaultSelectionRadius seed the mapper thresholds.
	DefaultSnapDistance    = 30.0
	DefaultSelectionRadius = 15.0

	// DefaultRemoteAddr is where the REST control API listens.
	DefaultRemoteAddr = ":8470"
	// DefaultMonitorAddr is where the websocket monitor listens. Empty disables it.
	DefaultMonitorAddr = ":8471"
	// DefaultDBPath is the sqlite layout library. Empty disables it.
	DefaultDBPath = "vmap.db"

	// DefaultLogLevel controls daemon log verbosity.
	DefaultLogLevel = "info"
	// DefaultTickInterval drives surface shake animation.
	DefaultTickInterval = time.Second / 60
	// DefaultBroadcastInterval bounds how often monitors receive snapshots.
	DefaultBroadcastInterval = 100 * time.Millisecond
)

// Config captures all runtime tunables for vmapd.
type Config struct {
	Width             int
	Height            int
	LayoutDir         string
	LayoutFile        string
	ImageDir          string
	Background        string
	SnapDistance      float64
	SelectionRadius   float64
	RemoteAddr        string
	MonitorAddr       string
	AllowedOrigins    []string
	DBPath            string
	LogLevel          slog.Level
	TickInterval      time.Duration
	BroadcastInterval time.Duration
}

// Load reads the configuration from environment variables, applying defaults
// and returning every invalid override in one error.
func Load() (*Config, error) {
	cfg := &Config{
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		LayoutDir:         getString("VMAP_LAYOUT_DIR", DefaultLayoutDir),
		LayoutFile:        getString("VMAP_LAYOUT_FILE", DefaultLayoutFile),
		Background:        strings.TrimSpace(os.Getenv("VMAP_BACKGROUND")),
		SnapDistance:      DefaultSnapDistance,
		SelectionRadius:   DefaultSelectionRadius,
		RemoteAddr:        getString("VMAP_REMOTE_ADDR", DefaultRemoteAddr),
		MonitorAddr:       lookupString("VMAP_MONITOR_ADDR", DefaultMonitorAddr),
		AllowedOrigins:    parseList(os.Getenv("VMAP_ALLOWED_ORIGINS")),
		DBPath:            lookupString("VMAP_DB_PATH", DefaultDBPath),
		TickInterval:      DefaultTickInterval,
		BroadcastInterval: DefaultBroadcastInterval,
	}
	cfg.ImageDir = getString("VMAP_IMAGE_DIR", cfg.LayoutDir)

	var problems []string

	positiveInt := func(key string, dst *int) {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be a positive integer, got %q", key, raw))
			return
		}
		*dst = value
	}
	positiveFloat := func(key string, dst *float64) {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be a positive number, got %q", key, raw))
			return
		}
		*dst = value
	}
	positiveDuration := func(key string, dst *time.Duration) {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return
		}
		value, err := time.ParseDuration(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be a positive duration, got %q", key, raw))
			return
		}
		*dst = value
	}

	positiveInt("VMAP_WIDTH", &cfg.Width)
	positiveInt("VMAP_HEIGHT", &cfg.Height)
	positiveFloat("VMAP_SNAP_DISTANCE", &cfg.SnapDistance)
	positiveFloat("VMAP_SELECTION_RADIUS", &cfg.SelectionRadius)
	positiveDuration("VMAP_TICK_INTERVAL", &cfg.TickInterval)
	positiveDuration("VMAP_BROADCAST_INTERVAL", &cfg.BroadcastInterval)

	level := getString("VMAP_LOG_LEVEL", DefaultLogLevel)
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		problems = append(problems, fmt.Sprintf("VMAP_LOG_LEVEL must be debug, info, warn or error, got %q", level))
	}

	if cfg.RemoteAddr != "" && cfg.RemoteAddr == cfg.MonitorAddr {
		problems = append(problems, "VMAP_REMOTE_ADDR and VMAP_MONITOR_ADDR must differ")
	}

	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// lookupString lets a variable set to the empty string disable a feature.
func lookupString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			values = append(values, item)
		}
	}
	return values
}
