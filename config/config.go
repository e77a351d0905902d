// Package config loads the service settings once at startup.
//
// Values come from, in increasing priority: built-in defaults, an optional
// settings file (JSON or YAML, sections PdfCompression and Server), and the
// process environment. A .env file fills in environment variables that are
// not already set. The returned Config is never modified afterwards.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"pdf_compressor/pdf"
)

const (
	// DefaultConfigFile is read from the working directory when present
	DefaultConfigFile = "appsettings.json"

	// DefaultDotEnvFile is read from the working directory when present
	DefaultDotEnvFile = ".env"

	// BytesPerMB converts the MB settings into byte counts
	BytesPerMB = 1024 * 1024
)

// PdfSettings constrains uploads and selects the compression quality.
type PdfSettings struct {
	MaxFileSizeInMB   float64  `yaml:"MaxFileSizeInMB"`
	MinFileSizeInMB   float64  `yaml:"MinFileSizeInMB"`
	AllowedExtensions []string `yaml:"AllowedExtensions"`
	CompressionLevel  string   `yaml:"CompressionLevel"`

	// TargetDPI is accepted for compatibility with older settings files.
	// No current backend resamples images, so it only appears in the startup log.
	TargetDPI float64 `yaml:"TargetDPI"`

	// Preset is resolved from CompressionLevel during Load.
	Preset pdf.Preset `yaml:"-"`
}

// MaxSizeBytes is the largest accepted upload.
func (s PdfSettings) MaxSizeBytes() float64 {
	return s.MaxFileSizeInMB * BytesPerMB
}

// MinSizeBytes is the smallest accepted upload.
func (s PdfSettings) MinSizeBytes() float64 {
	return s.MinFileSizeInMB * BytesPerMB
}

// AllowsExtension reports whether ext (with leading dot) is allowed, ignoring case.
func (s PdfSettings) AllowsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range s.AllowedExtensions {
		if allowed == ext {
			return true
		}
	}
	return false
}

// ServerSettings configures the HTTP listener and the engine.
type ServerSettings struct {
	Port              string        `yaml:"Port"`
	TempDir           string        `yaml:"TempDir"`
	Engine            string        `yaml:"Engine"`
	GhostscriptPath   string        `yaml:"GhostscriptPath"`
	EngineTimeout     time.Duration `yaml:"EngineTimeout"`
	MaxConcurrentJobs int           `yaml:"MaxConcurrentJobs"`
	MaxRequestBytes   int64         `yaml:"MaxRequestBytes"`
	LogLevel          string        `yaml:"LogLevel"`
}

// Config is the complete service configuration.
type Config struct {
	Pdf    PdfSettings    `yaml:"PdfCompression"`
	Server ServerSettings `yaml:"Server"`
}

// Options selects the files Load reads.
type Options struct {
	// File is the settings file; empty skips it.
	File string
	// RequireFile makes a missing File an error instead of falling back to defaults.
	RequireFile bool
	// DotEnv is the .env file; empty skips it. A missing file is ignored.
	DotEnv string
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Pdf: PdfSettings{
			MaxFileSizeInMB:   10,
			MinFileSizeInMB:   0,
			AllowedExtensions: []string{".pdf"},
			CompressionLevel:  "High",
			TargetDPI:         150,
		},
		Server: ServerSettings{
			Port:              "8080",
			TempDir:           "./temp",
			Engine:            pdf.EngineGhostscript,
			GhostscriptPath:   pdf.DefaultGhostscriptBinary,
			EngineTimeout:     pdf.DefaultCLITimeout,
			MaxConcurrentJobs: pdf.DefaultMaxJobs,
			MaxRequestBytes:   64 << 20,
			LogLevel:          "info",
		},
	}
}

// Load builds the configuration and validates it.
func Load(fsys afero.Fs, opts Options) (Config, error) {
	cfg := Defaults()

	if opts.File != "" {
		if err := loadFile(fsys, opts.File, opts.RequireFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	if opts.DotEnv != "" {
		if err := loadDotEnv(fsys, opts.DotEnv); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvironment(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Pdf.AllowedExtensions = normalizeExtensions(cfg.Pdf.AllowedExtensions)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(fsys afero.Fs, path string, required bool, cfg *Config) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if isJSON(path) {
		if data, err = jsonToYAML(data); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// jsonToYAML re-encodes a JSON document as YAML so both formats share one
// set of struct tags. Duplicate keys keep the last value.
func jsonToYAML(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(plainNumbers(doc))
}

// plainNumbers swaps json.Number for int64 or float64 so YAML emits bare scalars.
func plainNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = plainNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = plainNumbers(e)
		}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}

// loadDotEnv exports variables from path that the process does not already have.
func loadDotEnv(fsys afero.Fs, path string) error {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for key, value := range vars {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// normalizeExtensions lowercases, adds the leading dot and drops blanks and duplicates.
func normalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

func (c *Config) validate() error {
	p := &c.Pdf
	if p.MaxFileSizeInMB <= 0 {
		return fmt.Errorf("MaxFileSizeInMB must be positive, got %v", p.MaxFileSizeInMB)
	}
	if p.MinFileSizeInMB < 0 {
		return fmt.Errorf("MinFileSizeInMB must not be negative, got %v", p.MinFileSizeInMB)
	}
	if p.MinFileSizeInMB > p.MaxFileSizeInMB {
		return fmt.Errorf("MinFileSizeInMB (%v) exceeds MaxFileSizeInMB (%v)", p.MinFileSizeInMB, p.MaxFileSizeInMB)
	}
	if len(p.AllowedExtensions) == 0 {
		return errors.New("AllowedExtensions must list at least one extension")
	}
	if p.TargetDPI < 0 {
		return fmt.Errorf("TargetDPI must not be negative, got %v", p.TargetDPI)
	}

	preset, err := pdf.ParsePreset(p.CompressionLevel)
	if err != nil {
		return err
	}
	p.Preset = preset

	s := &c.Server
	switch s.Engine {
	case pdf.EngineGhostscript, pdf.EnginePdfcpu:
	default:
		return fmt.Errorf("unknown engine %q", s.Engine)
	}
	if s.Port == "" {
		return errors.New("Port must be set")
	}
	if s.TempDir == "" {
		return errors.New("TempDir must be set")
	}
	if s.EngineTimeout < 0 {
		return fmt.Errorf("EngineTimeout must not be negative, got %v", s.EngineTimeout)
	}
	if s.MaxConcurrentJobs < 1 {
		return fmt.Errorf("MaxConcurrentJobs must be at least 1, got %d", s.MaxConcurrentJobs)
	}
	if s.MaxRequestBytes < int64(p.MaxSizeBytes()) {
		return fmt.Errorf("MaxRequestBytes (%d) is smaller than the maximum file size", s.MaxRequestBytes)
	}
	return nil
}
