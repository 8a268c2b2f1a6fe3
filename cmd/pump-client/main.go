package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/pumprand/pump-client/internal/config"
	"github.com/pumprand/pump-client/internal/logger"
)

var (
	configFile string
	envPath    string
	cfg        *config.ClientConfig
)

var rootCmd = &cobra.Command{
	Use:           "pump-client",
	Short:         "Coin sync and trade client for the pump contracts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.ChdirRepoRoot()

		var err error
		cfg, err = config.LoadClientConfig(configFile, envPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// One-shot commands print their results, so only the long running one logs at info
		err = logger.Initialize(logger.Config{
			Debug:           cfg.Debug,
			SentryDSN:       cfg.SentryDSN,
			BreadcrumbLevel: zapcore.InfoLevel,
			Quiet:           cmd.Name() != "run" && !cfg.Debug,
			Tags: map[string]string{
				"service": "pump-client",
				"command": cmd.Name(),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Flush(2 * time.Second)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "config/", "Path to environment files")

	rootCmd.AddCommand(
		runCmd,
		coinsCmd,
		coinCmd,
		buyCmd,
		sellCmd,
		refundCmd,
		createCmd,
		deployCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
