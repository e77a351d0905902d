package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pdf_compressor/api"
	"pdf_compressor/config"
	"pdf_compressor/pdf"
	"pdf_compressor/tempfile"
)

const (
	// ServerReadTimeout is the HTTP server read timeout
	ServerReadTimeout = 60 * time.Second

	// ServerIdleTimeout is the HTTP server idle timeout
	ServerIdleTimeout = 60 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful shutdown
	GracefulShutdownTimeout = 10 * time.Second

	// writeTimeoutMargin is added to the engine timeout for the response write deadline
	writeTimeoutMargin = 30 * time.Second
)

// NewServeCommand starts the HTTP service.
func NewServeCommand(ctx context.Context, fs afero.Fs, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the compression HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, fs, flags, cmd.Flags().Changed("config"))
		},
	}
}

func runServe(ctx context.Context, fs afero.Fs, flags *rootFlags, requireFile bool) error {
	cfg, logger, err := loadConfig(fs, flags, requireFile)
	if err != nil {
		return err
	}

	compressor, err := buildCompressor(ctx, fs, cfg, logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(cfg.Pdf, compressor, cfg.Server.MaxRequestBytes, logger)
	router := api.NewRouter(handler, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  ServerReadTimeout,
		WriteTimeout: writeTimeout(cfg.Server.EngineTimeout),
		IdleTimeout:  ServerIdleTimeout,
	}

	logger.Info("server starting",
		"addr", srv.Addr,
		"engine", compressor.Backend().Name(),
		"preset", cfg.Pdf.Preset,
		"max_mb", cfg.Pdf.MaxFileSizeInMB,
		"min_mb", cfg.Pdf.MinFileSizeInMB,
		"extensions", cfg.Pdf.AllowedExtensions,
		"target_dpi", cfg.Pdf.TargetDPI,
		"temp_dir", cfg.Server.TempDir,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}

// buildCompressor prepares the temp directory and the configured engine.
func buildCompressor(ctx context.Context, fs afero.Fs, cfg config.Config, logger *log.Logger) (*pdf.Compressor, error) {
	artifacts, err := tempfile.NewManager(fs, cfg.Server.TempDir)
	if err != nil {
		return nil, err
	}

	removed, err := artifacts.Sweep()
	if err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}
	if removed > 0 {
		logger.Warn("removed leftover temp files", "count", removed, "dir", artifacts.Dir())
	}

	backend, err := pdf.NewBackend(cfg.Server.Engine, cfg.Server.GhostscriptPath, cfg.Server.EngineTimeout, logger)
	if err != nil {
		return nil, err
	}

	// Check ghostscript availability on startup
	if gs, ok := backend.(*pdf.Ghostscript); ok {
		version, err := gs.Probe(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w. Please install ghostscript to continue", err)
		}
		logger.Info("ghostscript is available", "binary", gs.Binary, "version", version)
	}

	return pdf.NewCompressor(artifacts, backend, cfg.Server.MaxConcurrentJobs, logger), nil
}

// writeTimeout leaves room for a full engine run; no engine timeout means no write deadline.
func writeTimeout(engineTimeout time.Duration) time.Duration {
	if engineTimeout <= 0 {
		return 0
	}
	return engineTimeout + writeTimeoutMargin
}
