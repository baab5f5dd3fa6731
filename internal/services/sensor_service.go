package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"industrial-ai-backend/internal/aggregator"
	"industrial-ai-backend/internal/models"
)

// ReadingStore persists live sensor readings and the device registry
type ReadingStore interface {
	SaveSensorReading(ctx context.Context, reading *models.DeviceReading) error
	UpsertDevice(ctx context.Context, device *models.RegisteredDevice) error
}

// SensorService handles sensor data processing, persistence, and forwarding
type SensorService struct {
	store  ReadingStore // optional
	buffer *aggregator.SensorBuffer
	logger *zap.Logger

	// Input channel from the MQTT subscriber
	ReadingChan chan *models.DeviceReading

	registered map[string]time.Time
	now        func() time.Time
}

// SensorServiceConfig holds configuration for sensor service
type SensorServiceConfig struct {
	ReadingChannelSize int
}

// DefaultSensorServiceConfig returns default configuration
func DefaultSensorServiceConfig() SensorServiceConfig {
	return SensorServiceConfig{
		ReadingChannelSize: 100,
	}
}

// NewSensorService creates a new sensor service. store may be nil when
// persistence is disabled.
func NewSensorService(
	store ReadingStore,
	buffer *aggregator.SensorBuffer,
	config SensorServiceConfig,
	logger *zap.Logger,
) *SensorService {
	return &SensorService{
		store:       store,
		buffer:      buffer,
		logger:      logger,
		ReadingChan: make(chan *models.DeviceReading, config.ReadingChannelSize),
		registered:  make(map[string]time.Time),
		now:         time.Now,
	}
}

// Start begins processing sensor data from the channel
// Runs until context is cancelled or the channel is closed
func (s *SensorService) Start(ctx context.Context) {
	s.logger.Info("Starting")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down")
			return
		case reading, ok := <-s.ReadingChan:
			if !ok {
				s.logger.Info("Reading channel closed, shutting down")
				return
			}
			s.processReading(ctx, reading)
		}
	}
}

// processReading handles a single sensor reading
func (s *SensorService) processReading(ctx context.Context, reading *models.DeviceReading) {
	// The buffer sees every reading, even if storage is down
	s.buffer.Update(*reading)

	if s.store == nil {
		return
	}

	if err := s.store.SaveSensorReading(ctx, reading); err != nil {
		s.logger.Error("Error saving sensor reading",
			zap.String("device_id", reading.DeviceID),
			zap.String("sensor", reading.Sensor),
			zap.Error(err))
		return
	}

	s.logger.Debug("Saved sensor reading",
		zap.String("device_id", reading.DeviceID),
		zap.String("sensor", reading.Sensor),
		zap.String("value", reading.Value))

	// Auto-register device
	s.registerDevice(ctx, reading)
}

// registerDevice auto-registers a device and refreshes its last_seen
func (s *SensorService) registerDevice(ctx context.Context, reading *models.DeviceReading) {
	registeredAt, ok := s.registered[reading.DeviceID]
	if !ok {
		registeredAt = s.now()
		s.registered[reading.DeviceID] = registeredAt
	}

	status := models.DeviceOnline
	if reading.Status == models.StatusWarning {
		status = models.DeviceWarning
	}

	device := &models.RegisteredDevice{
		DeviceID:     reading.DeviceID,
		RegisteredAt: registeredAt,
		LastSeen:     reading.Timestamp,
		Status:       status,
	}

	// Best effort - don't fail if registration fails
	if err := s.store.UpsertDevice(ctx, device); err != nil {
		s.logger.Warn("Error registering device", zap.String("device_id", reading.DeviceID), zap.Error(err))
	}
}
