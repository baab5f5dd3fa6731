package models

import "time"

// SensorStatus is the health flag a device attaches to each reading
type SensorStatus string

const (
	StatusNormal  SensorStatus = "normal"
	StatusWarning SensorStatus = "warning"
)

// Valid reports whether s is one of the known statuses
func (s SensorStatus) Valid() bool {
	return s == StatusNormal || s == StatusWarning
}

// SensorReading represents a single sensor value as shown on the maintenance view.
// Values are kept as strings because devices report them preformatted.
type SensorReading struct {
	Sensor string       `json:"sensor"`
	Value  string       `json:"value"`
	Unit   string       `json:"unit"`
	Status SensorStatus `json:"status"`
}

// DeviceReading is a SensorReading received from a device over MQTT
type DeviceReading struct {
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	SensorReading
}

// MaintenanceReport is the predictive maintenance verdict for a set of readings.
// Fields tagged with a schema description are requested from the model; the
// rest are filled in by the server.
type MaintenanceReport struct {
	ID        string    `json:"id,omitempty" schema:"-"`
	DeviceID  string    `json:"device_id,omitempty" schema:"-"`
	Timestamp time.Time `json:"timestamp,omitempty" schema:"-"`
	Model     string    `json:"model,omitempty" schema:"-"`

	Prediction      string   `json:"prediction" schema:"A summary of the maintenance prediction."`
	Confidence      float64  `json:"confidence" schema:"Confidence percentage."`
	Recommendations []string `json:"recommendations" schema:"List of recommended actions."`
}

// AnalysisRequest asks for a maintenance analysis of one device.
// An empty Readings list means "use the latest known readings".
type AnalysisRequest struct {
	DeviceID string          `json:"device_id"`
	Readings []SensorReading `json:"readings,omitempty"`
}
