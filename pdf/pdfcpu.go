package pdf

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Pdfcpu optimizes PDFs in-process with pdfcpu. It has no quality presets,
// so the preset only shows up in the debug log.
type Pdfcpu struct {
	logger *log.Logger
}

func NewPdfcpu(logger *log.Logger) *Pdfcpu {
	return &Pdfcpu{logger: logger}
}

func (p *Pdfcpu) Name() string {
	return EnginePdfcpu
}

// Run optimizes inputPath into outputPath using relaxed validation.
func (p *Pdfcpu) Run(ctx context.Context, inputPath, outputPath string, preset Preset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.logger.Debug("running pdfcpu optimize", "input", inputPath, "output", outputPath, "preset", preset)

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.OptimizeFile(inputPath, outputPath, cfg); err != nil {
		return fmt.Errorf("pdfcpu optimize failed: %w", err)
	}
	return nil
}
