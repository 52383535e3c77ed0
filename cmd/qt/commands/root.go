package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/quantum-go/quantum/config"
	"github.com/krew-solutions/quantum-go/quantum/telemetry"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	return NewRootCommand(version, commit, buildDate).ExecuteContext(ctx)
}

func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "qt",
		Short: "Quantum data access and scaffolding tool",
		Long: `qt queries the configured database through the quantum DBAL and
generates module scaffolds.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logger, err := telemetry.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			log.Logger = logger
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path")

	rootCmd.AddCommand(newModuleCommand())
	rootCmd.AddCommand(newQueryCommand(opts))
	rootCmd.AddCommand(newCaptchaCommand(opts))
	rootCmd.AddCommand(newVersionCommand(version, commit, buildDate))

	return rootCmd
}

func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qt %s\ncommit: %s\nbuilt: %s\n", version, commit, buildDate)
		},
	}
}
