package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"pdf_compressor/cmd"
)

func main() {
	// Cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCommand(ctx, afero.NewOsFs()).Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}
