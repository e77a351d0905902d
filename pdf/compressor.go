package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/semaphore"

	"pdf_compressor/tempfile"
)

// MediaType is the only content type the engine is expected to produce
const MediaType = "application/pdf"

// DefaultMaxJobs bounds concurrent engine runs when no limit is configured
const DefaultMaxJobs = 4

// Result describes one finished compression.
type Result struct {
	OriginalSize   int64
	CompressedSize int64
	RatioPercent   float64
	Output         []byte
}

// Compressor drives one backend over per-call temp artifacts.
type Compressor struct {
	artifacts *tempfile.Manager
	backend   Backend
	slots     *semaphore.Weighted
	logger    *log.Logger
}

// NewCompressor creates a compressor running at most maxJobs engine invocations at once.
func NewCompressor(artifacts *tempfile.Manager, backend Backend, maxJobs int, logger *log.Logger) *Compressor {
	if maxJobs < 1 {
		maxJobs = DefaultMaxJobs
	}
	return &Compressor{
		artifacts: artifacts,
		backend:   backend,
		slots:     semaphore.NewWeighted(int64(maxJobs)),
		logger:    logger,
	}
}

// Backend returns the engine in use.
func (c *Compressor) Backend() Backend {
	return c.backend
}

// Compress copies r into an input artifact, runs the engine and returns the
// rewritten document. Both artifacts are gone when Compress returns.
//
// ctx bounds the wait for a free engine slot. An engine run that has started
// is left to finish (or hit the backend timeout) even if ctx is cancelled.
func (c *Compressor) Compress(ctx context.Context, r io.Reader, preset Preset) (*Result, error) {
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for engine slot: %w", err)
	}
	defer c.slots.Release(1)

	input, err := c.artifacts.Create(tempfile.KindInput)
	if err != nil {
		return nil, &TempIOError{Op: "create", Path: c.artifacts.Dir(), Err: err}
	}
	defer c.release(input)

	originalSize, err := c.artifacts.Write(input, r)
	if err != nil {
		return nil, &TempIOError{Op: "write", Path: input.Path, Err: err}
	}

	output, err := c.artifacts.Create(tempfile.KindOutput)
	if err != nil {
		return nil, &TempIOError{Op: "create", Path: c.artifacts.Dir(), Err: err}
	}
	defer c.release(output)

	if err := c.backend.Run(context.WithoutCancel(ctx), input.Path, output.Path, preset); err != nil {
		return nil, &EngineError{Engine: c.backend.Name(), Err: err}
	}

	compressed, err := c.artifacts.ReadAll(output)
	if err != nil {
		return nil, &TempIOError{Op: "read", Path: output.Path, Err: err}
	}
	if err := checkOutput(compressed); err != nil {
		return nil, &EngineError{Engine: c.backend.Name(), Err: err}
	}

	result := &Result{
		OriginalSize:   originalSize,
		CompressedSize: int64(len(compressed)),
		RatioPercent:   Ratio(originalSize, int64(len(compressed))),
		Output:         compressed,
	}

	c.logger.Info("compressed pdf",
		"engine", c.backend.Name(),
		"preset", preset,
		"original", result.OriginalSize,
		"compressed", result.CompressedSize,
		"saved", fmt.Sprintf("%.2f%%", result.RatioPercent),
		"size", fmt.Sprintf("%s -> %s", humanize.IBytes(uint64(result.OriginalSize)), humanize.IBytes(uint64(result.CompressedSize))),
	)

	return result, nil
}

// release deletes an artifact; failures are logged since the caller's error wins.
func (c *Compressor) release(a *tempfile.Artifact) {
	if err := c.artifacts.Delete(a.Path); err != nil {
		c.logger.Warn("failed to delete temp file", "path", a.Path, "kind", a.Kind, "error", err)
	}
}

// checkOutput rejects engine output that is empty or not a PDF.
func checkOutput(data []byte) error {
	if len(data) == 0 {
		return errors.New("engine produced no output")
	}
	if mt := mimetype.Detect(data); !mt.Is(MediaType) {
		return fmt.Errorf("engine produced %s output instead of a PDF", mt.String())
	}
	return nil
}

// Ratio is the percentage saved, rounded half-to-even to two decimals.
// It is zero when originalSize is not positive.
func Ratio(originalSize, compressedSize int64) float64 {
	if originalSize <= 0 {
		return 0
	}
	saved := (1 - float64(compressedSize)/float64(originalSize)) * 100
	return math.RoundToEven(saved*100) / 100
}
