package aggregator

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"industrial-ai-backend/internal/models"
)

// DeviceState holds the latest reading of every sensor on a device
type DeviceState struct {
	DeviceID         string
	Readings         map[string]models.DeviceReading // keyed by sensor name
	LastSeen         time.Time
	LastAnalysisTime time.Time
}

// SensorBuffer keeps the latest readings per device and decides when a
// device needs a maintenance analysis: whenever one of its sensors moves
// from normal into warning, at most once per cooldown.
type SensorBuffer struct {
	mu       sync.RWMutex
	devices  map[string]*DeviceState
	cooldown time.Duration
	logger   *zap.Logger
	now      func() time.Time

	onAnalysisNeeded func(models.AnalysisRequest)
}

// NewSensorBuffer creates a new sensor buffer
func NewSensorBuffer(cooldown time.Duration, logger *zap.Logger) *SensorBuffer {
	return &SensorBuffer{
		devices:  make(map[string]*DeviceState),
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// SetAnalysisCallback sets the function called when a device needs analysis.
// It is called without the buffer lock held.
func (sb *SensorBuffer) SetAnalysisCallback(callback func(models.AnalysisRequest)) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.onAnalysisNeeded = callback
}

// Update records a reading and triggers an analysis on a warning transition
func (sb *SensorBuffer) Update(reading models.DeviceReading) {
	sb.mu.Lock()

	device, ok := sb.devices[reading.DeviceID]
	if !ok {
		device = &DeviceState{
			DeviceID: reading.DeviceID,
			Readings: make(map[string]models.DeviceReading),
		}
		sb.devices[reading.DeviceID] = device
	}

	previous, seen := device.Readings[reading.Sensor]
	device.Readings[reading.Sensor] = reading
	device.LastSeen = reading.Timestamp

	escalated := reading.Status == models.StatusWarning &&
		(!seen || previous.Status != models.StatusWarning)
	if !escalated {
		sb.mu.Unlock()
		return
	}

	now := sb.now()
	if !device.LastAnalysisTime.IsZero() && now.Sub(device.LastAnalysisTime) < sb.cooldown {
		sb.logger.Debug("Analysis rate limited",
			zap.String("device_id", reading.DeviceID),
			zap.Duration("since_last", now.Sub(device.LastAnalysisTime)))
		sb.mu.Unlock()
		return
	}
	device.LastAnalysisTime = now

	request := models.AnalysisRequest{
		DeviceID: reading.DeviceID,
		Readings: snapshot(device),
	}
	callback := sb.onAnalysisNeeded
	sb.mu.Unlock()

	sb.logger.Info("Sensor entered warning, requesting analysis",
		zap.String("device_id", reading.DeviceID),
		zap.String("sensor", reading.Sensor),
		zap.String("value", reading.Value+reading.Unit))

	if callback == nil {
		sb.logger.Warn("No analysis callback set", zap.String("device_id", reading.DeviceID))
		return
	}
	callback(request)
}

// Readings returns the latest readings of a device sorted by sensor name,
// or nil if the device has not reported
func (sb *SensorBuffer) Readings(deviceID string) []models.SensorReading {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	device, ok := sb.devices[deviceID]
	if !ok {
		return nil
	}
	return snapshot(device)
}

// Devices returns all device IDs seen so far, sorted
func (sb *SensorBuffer) Devices() []string {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	devices := make([]string, 0, len(sb.devices))
	for deviceID := range sb.devices {
		devices = append(devices, deviceID)
	}
	sort.Strings(devices)
	return devices
}

// LastSeen returns when the device last reported
func (sb *SensorBuffer) LastSeen(deviceID string) (time.Time, bool) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	device, ok := sb.devices[deviceID]
	if !ok {
		return time.Time{}, false
	}
	return device.LastSeen, true
}

func snapshot(device *DeviceState) []models.SensorReading {
	readings := make([]models.SensorReading, 0, len(device.Readings))
	for _, r := range device.Readings {
		readings = append(readings, r.SensorReading)
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Sensor < readings[j].Sensor })
	return readings
}
