package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultGhostscriptBinary is looked up on PATH
const DefaultGhostscriptBinary = "gs"

// CompatibilityLevel is the PDF version ghostscript writes
const CompatibilityLevel = "1.4"

// Ghostscript rewrites PDFs with the ghostscript pdfwrite device.
type Ghostscript struct {
	Binary  string
	Timeout time.Duration
	logger  *log.Logger
}

// NewGhostscript creates a ghostscript backend. A zero timeout disables the limit.
func NewGhostscript(binary string, timeout time.Duration, logger *log.Logger) *Ghostscript {
	if binary == "" {
		binary = DefaultGhostscriptBinary
	}
	return &Ghostscript{
		Binary:  binary,
		Timeout: timeout,
		logger:  logger,
	}
}

func (g *Ghostscript) Name() string {
	return EngineGhostscript
}

// Run invokes ghostscript once with a fixed switch set.
func (g *Ghostscript) Run(ctx context.Context, inputPath, outputPath string, preset Preset) error {
	args := ghostscriptArgs(inputPath, outputPath, preset)
	g.logger.Debug("running ghostscript", "binary", g.Binary, "args", args)

	if _, err := execCommandWithTimeout(ctx, g.Timeout, g.Binary, args...); err != nil {
		return err
	}
	return nil
}

// Probe checks that the binary is runnable and returns its version.
func (g *Ghostscript) Probe(ctx context.Context) (string, error) {
	result, err := execCommandWithTimeout(ctx, ProbeTimeout, g.Binary, "--version")
	if err != nil {
		return "", fmt.Errorf("%s not available: %w", g.Binary, err)
	}
	return strings.TrimSpace(result.Stdout), nil
}

// ghostscriptArgs builds the switch list; the input path is always last.
func ghostscriptArgs(inputPath, outputPath string, preset Preset) []string {
	return []string{
		"-q",
		"-dNOPAUSE",
		"-dBATCH",
		"-dSAFER",
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=" + CompatibilityLevel,
		"-dPDFSETTINGS=/" + preset.String(),
		"-sOutputFile=" + outputPath,
		inputPath,
	}
}
