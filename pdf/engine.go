package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Engine names accepted in configuration
const (
	EngineGhostscript = "ghostscript"
	EnginePdfcpu      = "pdfcpu"
)

// Backend rewrites the PDF at inputPath into outputPath.
// Implementations never return data directly; the result lives at outputPath.
type Backend interface {
	Name() string
	Run(ctx context.Context, inputPath, outputPath string, preset Preset) error
}

// NewBackend builds the backend selected by engine.
func NewBackend(engine, ghostscriptPath string, timeout time.Duration, logger *log.Logger) (Backend, error) {
	switch engine {
	case EngineGhostscript, "":
		return NewGhostscript(ghostscriptPath, timeout, logger), nil
	case EnginePdfcpu:
		return NewPdfcpu(logger), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}
