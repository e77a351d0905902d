package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

// environment lists the variables that override the settings file.
// Fields stay strings so an empty variable means "not set".
type environment struct {
	Port              string `env:"PORT"`
	TempDir           string `env:"TEMP_DIR"`
	MaxFileSizeInMB   string `env:"PDF_MAX_FILE_SIZE_MB"`
	MinFileSizeInMB   string `env:"PDF_MIN_FILE_SIZE_MB"`
	AllowedExtensions string `env:"PDF_ALLOWED_EXTENSIONS"`
	CompressionLevel  string `env:"PDF_COMPRESSION_LEVEL"`
	TargetDPI         string `env:"PDF_TARGET_DPI"`
	Engine            string `env:"PDF_ENGINE"`
	GhostscriptPath   string `env:"GHOSTSCRIPT_PATH"`
	EngineTimeout     string `env:"ENGINE_TIMEOUT"`
	MaxConcurrentJobs string `env:"MAX_CONCURRENT_JOBS"`
	MaxRequestBytes   string `env:"MAX_REQUEST_BYTES"`
	LogLevel          string `env:"LOG_LEVEL"`
}

func applyEnvironment(cfg *Config) error {
	var e environment
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	setString(&cfg.Server.Port, e.Port)
	setString(&cfg.Server.TempDir, e.TempDir)
	setString(&cfg.Pdf.CompressionLevel, e.CompressionLevel)
	setString(&cfg.Server.Engine, e.Engine)
	setString(&cfg.Server.GhostscriptPath, e.GhostscriptPath)
	setString(&cfg.Server.LogLevel, e.LogLevel)

	if e.AllowedExtensions != "" {
		cfg.Pdf.AllowedExtensions = strings.Split(e.AllowedExtensions, ",")
	}

	if err := setFloat(&cfg.Pdf.MaxFileSizeInMB, "PDF_MAX_FILE_SIZE_MB", e.MaxFileSizeInMB); err != nil {
		return err
	}
	if err := setFloat(&cfg.Pdf.MinFileSizeInMB, "PDF_MIN_FILE_SIZE_MB", e.MinFileSizeInMB); err != nil {
		return err
	}
	if err := setFloat(&cfg.Pdf.TargetDPI, "PDF_TARGET_DPI", e.TargetDPI); err != nil {
		return err
	}

	if e.EngineTimeout != "" {
		d, err := time.ParseDuration(e.EngineTimeout)
		if err != nil {
			return fmt.Errorf("invalid ENGINE_TIMEOUT %q: %w", e.EngineTimeout, err)
		}
		cfg.Server.EngineTimeout = d
	}

	if e.MaxConcurrentJobs != "" {
		n, err := strconv.Atoi(e.MaxConcurrentJobs)
		if err != nil {
			return fmt.Errorf("invalid MAX_CONCURRENT_JOBS %q: %w", e.MaxConcurrentJobs, err)
		}
		cfg.Server.MaxConcurrentJobs = n
	}

	if e.MaxRequestBytes != "" {
		n, err := strconv.ParseInt(e.MaxRequestBytes, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_REQUEST_BYTES %q: %w", e.MaxRequestBytes, err)
		}
		cfg.Server.MaxRequestBytes = n
	}

	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setFloat(dst *float64, name, value string) error {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	*dst = f
	return nil
}
