package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"taskdata/pkg/tlg"
)

type AppConfig struct {
	DBPath      string
	Port        string
	Workers     int
	Epoch       time.Time
	Decoder     string // auto|stream
	LogLevel    string
	Environment string
	OutDir      string

	// Warnings lists settings that were rejected in favour of defaults.
	Warnings []string
}

func Load() AppConfig {
	// Load .env file if it exists
	envErr := godotenv.Load()
	cfg := FromEnv(os.Getenv)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("load .env: %v", envErr))
	}
	return cfg
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) AppConfig {
	var warnings []string
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	workers := 4
	if v := get("TASKDATA_WORKERS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			warnings = append(warnings, fmt.Sprintf("TASKDATA_WORKERS=%q is not a positive integer, using %d", v, workers))
		} else {
			workers = n
		}
	}

	epoch := tlg.DefaultEpoch
	if v := get("TASKDATA_EPOCH", ""); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("TASKDATA_EPOCH=%q is not a YYYY-MM-DD date, using %s", v, epoch.Format("2006-01-02")))
		} else {
			epoch = t
		}
	}

	decoder := strings.ToLower(get(tlg.EnvBackend, "auto"))
	if decoder != "auto" && decoder != "stream" {
		warnings = append(warnings, fmt.Sprintf("%s=%q is not auto or stream, using auto", tlg.EnvBackend, decoder))
		decoder = "auto"
	}

	return AppConfig{
		DBPath:      get("TASKDATA_DB_PATH", "taskdata.db"),
		Port:        get("TASKDATA_PORT", "8080"),
		Workers:     workers,
		Epoch:       epoch,
		Decoder:     decoder,
		LogLevel:    get("LOG_LEVEL", "info"),
		Environment: get("ENVIRONMENT", "development"),
		OutDir:      get("TASKDATA_OUT_DIR", "."),
		Warnings:    warnings,
	}
}

// Backend returns the forced decoder backend, or nil to let the decoder probe.
func (c AppConfig) Backend() tlg.Backend {
	if c.Decoder == "stream" {
		return tlg.StreamBackend{}
	}
	return nil
}

// Log writes the effective settings and any rejected values.
func (c AppConfig) Log(l *zap.Logger) {
	l.Info("config",
		zap.String("db_path", c.DBPath),
		zap.String("port", c.Port),
		zap.Int("workers", c.Workers),
		zap.String("epoch", c.Epoch.Format("2006-01-02")),
		zap.String("decoder", c.Decoder),
		zap.String("log_level", c.LogLevel),
		zap.String("environment", c.Environment),
		zap.String("out_dir", c.OutDir),
	)
	for _, w := range c.Warnings {
		l.Warn("config value ignored", zap.String("reason", w))
	}
}
