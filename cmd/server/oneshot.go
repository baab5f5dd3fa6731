package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"industrial-ai-backend/internal/ai"
	"industrial-ai-backend/internal/catalog"
	"industrial-ai-backend/internal/models"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	deviceID, _ := cmd.Flags().GetString("device")

	var readings []models.SensorReading
	if path != "" {
		var err error
		if readings, err = loadReadings(path); err != nil {
			return err
		}
	} else {
		cat, err := catalog.Default()
		if err != nil {
			return err
		}
		readings = cat.SensorReadings()
	}

	transport, err := newTransport(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	analyzer := ai.NewAnalyzer(transport, analyzerConfig(cfg), logger.Named("ai"))

	report, err := analyzer.AnalyzeMaintenance(cmd.Context(), deviceID, readings)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	var req models.SolutionRequest
	req.Requirements, _ = cmd.Flags().GetString("requirements")
	req.Priority, _ = cmd.Flags().GetString("priority")
	req.Timeframe, _ = cmd.Flags().GetString("timeframe")

	transport, err := newTransport(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	analyzer := ai.NewAnalyzer(transport, analyzerConfig(cfg), logger.Named("ai"))

	solution, err := analyzer.ConfigureSolution(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), solution)
}

// loadReadings reads a JSON array of sensor readings
func loadReadings(path string) ([]models.SensorReading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var readings []models.SensorReading
	if err := json.Unmarshal(data, &readings); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return readings, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
