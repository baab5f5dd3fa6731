// Package catalog serves the fixed data behind the dashboard views.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"industrial-ai-backend/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the decoded contents of catalog.yaml
type Catalog struct {
	Stats      []models.Stat            `yaml:"stats"`
	Throughput []models.SeriesPoint     `yaml:"throughput"`
	Efficiency []models.EfficiencyPoint `yaml:"efficiency"`
	Alerts     []models.Alert           `yaml:"alerts"`
	Devices    []models.Device          `yaml:"devices"`
	Sensors    []sensorEntry            `yaml:"sensors"`
	Resources  []models.Resource        `yaml:"resources"`
}

type sensorEntry struct {
	Sensor string `yaml:"sensor"`
	Value  string `yaml:"value"`
	Unit   string `yaml:"unit"`
	Status string `yaml:"status"`
}

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	for _, s := range c.Sensors {
		if !models.SensorStatus(s.Status).Valid() {
			return nil, fmt.Errorf("catalog sensor %q has unknown status %q", s.Sensor, s.Status)
		}
	}
	for _, d := range c.Devices {
		switch d.Status {
		case models.DeviceOnline, models.DeviceOffline, models.DeviceWarning:
		default:
			return nil, fmt.Errorf("catalog device %q has unknown status %q", d.ID, d.Status)
		}
	}
	return &c, nil
}

// Dashboard returns the command center payload
func (c *Catalog) Dashboard() models.Dashboard {
	return models.Dashboard{
		Stats:      c.Stats,
		Throughput: c.Throughput,
		Efficiency: c.Efficiency,
		Alerts:     c.Alerts,
	}
}

// SensorReadings returns a fresh copy of the demo sensor readings shown on
// the maintenance view
func (c *Catalog) SensorReadings() []models.SensorReading {
	readings := make([]models.SensorReading, 0, len(c.Sensors))
	for _, s := range c.Sensors {
		readings = append(readings, models.SensorReading{
			Sensor: s.Sensor,
			Value:  s.Value,
			Unit:   s.Unit,
			Status: models.SensorStatus(s.Status),
		})
	}
	return readings
}
