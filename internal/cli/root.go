// Package cli provides the linframe command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/paveg/linframe"
	"github.com/paveg/linframe/internal/config"
	"github.com/paveg/linframe/internal/version"
)

// configKey stores the effective config in the command context.
type configKey struct{}

// loggerKey stores the CLI logger in the command context.
type loggerKey struct{}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "linframe",
		Short: "linframe - linear expressions over dimensioned tables",
		Long: `linframe builds linear optimization models from tabular data.

Variables, expressions and constraints are stored as sparse term tables and
combined with joins and group-bys. Models can be printed or written as
CPLEX LP files.`,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := linframe.SetConfig(cfg); err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.VerboseLogging {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if !version.IsRelease() {
				logger.Debug("development build", "version", version.Version)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./linframe.yaml)")
	flags.Int("workers", 0, "Worker goroutines for key encoding (0 = auto)")
	flags.String("default-unmatched", "", "Unmatched policy of new entities (error|keep)")
	flags.Int("max-line-len", 0, "Truncate rendered lines beyond this width")
	flags.Int("max-rows", 0, "Coordinates shown per entity")
	flags.Int("float-precision", 0, "Significant coefficient digits (0 = shortest)")
	flags.BoolP("verbose", "v", false, "Log engine events to stderr")
	flags.Bool("metrics", false, "Print per-operation metrics")

	_ = rootCmd.RegisterFlagCompletionFunc("default-unmatched", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.UnmatchedError, config.UnmatchedKeep}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.SetVersionTemplate(version.Short() + "\n")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newDietCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) config.Config {
	if c, ok := ctx.Value(configKey{}).(config.Config); ok {
		return c
	}
	return config.NewConfig()
}

// getLogger retrieves the logger from the command context.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func newVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Short())
				return err
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.Info().String())
			return err
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only linframe/<version>")
	return cmd
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after layering defaults, the config file,
LINFRAME_* environment variables and flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(getConfig(cmd.Context()))
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
