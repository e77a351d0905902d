package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewCompressCommand compresses a local file with the configured engine and preset.
func NewCompressCommand(ctx context.Context, fs afero.Fs, flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compress <input.pdf>",
		Short: "Compress a local PDF without starting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(fs, flags, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}

			input := args[0]
			if output == "" {
				output = defaultOutputPath(input)
			}

			compressor, err := buildCompressor(ctx, fs, cfg, logger)
			if err != nil {
				return err
			}

			src, err := fs.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer src.Close()

			result, err := compressor.Compress(ctx, src, cfg.Pdf.Preset)
			if err != nil {
				return err
			}

			if err := afero.WriteFile(fs, output, result.Output, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s (saved %.2f%%)\n", output,
				humanize.IBytes(uint64(result.OriginalSize)), humanize.IBytes(uint64(result.CompressedSize)), result.RatioPercent)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default compressed_<input> next to the input)")
	return cmd
}

func defaultOutputPath(input string) string {
	dir, name := filepath.Split(input)
	if strings.TrimSpace(name) == "" {
		name = "document.pdf"
	}
	return filepath.Join(dir, "compressed_"+name)
}
