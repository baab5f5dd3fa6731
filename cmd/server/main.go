package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"industrial-ai-backend/internal/ai"
	"industrial-ai-backend/internal/logging"
	"industrial-ai-backend/pkg/config"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger

	// newTransport builds the model transport; tests replace it with a stub
	newTransport = geminiTransport
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Industrial AI backend",
	Long: `Industrial AI backend serving the command center, predictive maintenance
and solution configurator views.

Run without a subcommand to start the HTTP server with the MQTT and ClickHouse
pipelines enabled by configuration.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, cfg.LogDevelopment)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and background services",
	RunE:  runServe,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one predictive maintenance analysis and print the report",
	Long: `Sends sensor readings to the maintenance model and prints the report as JSON.

Without --file the demo readings from the maintenance view are analysed.
The file holds a JSON array of {"sensor","value","unit","status"} objects.`,
	RunE: runAnalyze,
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Generate an automation solution for the given requirements",
	Example: `  server configure --requirements "Automate weld seam inspection on line 3" \
    --priority "Maximum Safety" --timeframe "3-6 Months"`,
	RunE: runConfigure,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	analyzeCmd.Flags().String("file", "", "JSON file with sensor readings")
	analyzeCmd.Flags().String("device", "cli", "Device ID recorded on the report")

	configureCmd.Flags().String("requirements", "", "Plant requirements (required)")
	configureCmd.Flags().String("priority", "", "Top priority, e.g. \"Energy Efficiency\"")
	configureCmd.Flags().String("timeframe", "", "Delivery window, e.g. \"6-12 Months\"")

	rootCmd.AddCommand(serveCmd, analyzeCmd, configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// geminiTransport wires the Gemini client with the configured retry policy
func geminiTransport(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ai.Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gemini, err := ai.NewGeminiTransport(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	return ai.WithRetry(gemini, cfg.RetryPolicy(), logger.Named("gemini")), nil
}

func analyzerConfig(cfg *config.Config) ai.AnalyzerConfig {
	return ai.AnalyzerConfig{
		MaintenanceModel:  cfg.MaintenanceModel,
		ConfiguratorModel: cfg.ConfiguratorModel,
		StrictFields:      cfg.AIStrictFields,
	}
}
