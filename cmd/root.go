package cmd

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pdf_compressor/config"
	"pdf_compressor/logging"
)

// Version is set at build time via -ldflags
var Version = "dev"

// flags shared by every command
type rootFlags struct {
	configFile string
	dotEnv     string
}

// NewRootCommand returns the root command with all subcommands attached.
// Running it without a subcommand starts the server.
func NewRootCommand(ctx context.Context, fs afero.Fs) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "pdf-compressor",
		Short: "HTTP service that shrinks uploaded PDFs.",
		Long: `pdf-compressor accepts PDF uploads on POST /compress-pdf, validates them against
the configured size and type limits, rewrites them with ghostscript (or pdfcpu)
and returns the smaller document.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, fs, flags, cmd.Flags().Changed("config"))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", config.DefaultConfigFile,
		"settings file (JSON or YAML); optional unless set explicitly")
	rootCmd.PersistentFlags().StringVar(&flags.dotEnv, "env-file", config.DefaultDotEnvFile,
		".env file with default environment variables")

	rootCmd.AddCommand(NewServeCommand(ctx, fs, flags))
	rootCmd.AddCommand(NewCompressCommand(ctx, fs, flags))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// loadConfig reads the configuration and builds the logger it describes.
func loadConfig(fs afero.Fs, flags *rootFlags, requireFile bool) (config.Config, *log.Logger, error) {
	cfg, err := config.Load(fs, config.Options{
		File:        flags.configFile,
		RequireFile: requireFile,
		DotEnv:      flags.dotEnv,
	})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.New(nil, cfg.Server.LogLevel), nil
}
