package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"industrial-ai-backend/internal/models"
)

// Subscriber handles MQTT subscriptions and writes messages to channels
type Subscriber struct {
	client mqtt.Client
	logger *zap.Logger

	// Output channels (written by subscriber, read by services)
	ReadingChan  chan *models.DeviceReading
	AnalysisChan chan models.AnalysisRequest

	// Topic patterns
	readingTopic     string
	analysisReqTopic string

	sendTimeout time.Duration
}

// SubscriberConfig holds configuration for MQTT subscriber
type SubscriberConfig struct {
	ReadingTopic     string // e.g., "sensor/+/reading"
	AnalysisReqTopic string // e.g., "maintenance/+/request"
}

// NewSubscriber creates a new MQTT subscriber with channels
func NewSubscriber(
	client mqtt.Client,
	config SubscriberConfig,
	readingChan chan *models.DeviceReading,
	analysisChan chan models.AnalysisRequest,
	logger *zap.Logger,
) *Subscriber {
	return &Subscriber{
		client:           client,
		logger:           logger,
		ReadingChan:      readingChan,
		AnalysisChan:     analysisChan,
		readingTopic:     config.ReadingTopic,
		analysisReqTopic: config.AnalysisReqTopic,
		sendTimeout:      time.Second,
	}
}

// SubscribeAll subscribes to all configured topics
func (s *Subscriber) SubscribeAll() error {
	if s.readingTopic != "" {
		if err := s.subscribeToTopic(s.readingTopic, s.handleReading); err != nil {
			return fmt.Errorf("failed to subscribe to reading topic: %w", err)
		}
		s.logger.Info("Subscribed", zap.String("topic", s.readingTopic))
	}

	if s.analysisReqTopic != "" {
		if err := s.subscribeToTopic(s.analysisReqTopic, s.handleAnalysisRequest); err != nil {
			return fmt.Errorf("failed to subscribe to analysis request topic: %w", err)
		}
		s.logger.Info("Subscribed", zap.String("topic", s.analysisReqTopic))
	}

	return nil
}

// subscribeToTopic is a helper function to subscribe to a topic with a handler
func (s *Subscriber) subscribeToTopic(topic string, handler mqtt.MessageHandler) error {
	token := s.client.Subscribe(topic, 1, handler)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// handleReading processes sensor/{device_id}/reading messages
func (s *Subscriber) handleReading(client mqtt.Client, msg mqtt.Message) {
	reading, err := decodeReading(msg.Topic(), msg.Payload(), time.Now())
	if err != nil {
		s.logger.Warn("Dropping sensor reading", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	s.logger.Debug("Received reading",
		zap.String("device_id", reading.DeviceID),
		zap.String("sensor", reading.Sensor),
		zap.String("status", string(reading.Status)))

	select {
	case s.ReadingChan <- reading:
	case <-time.After(s.sendTimeout):
		s.logger.Warn("Reading channel full, dropping message", zap.String("device_id", reading.DeviceID))
	}
}

// handleAnalysisRequest processes maintenance/{device_id}/request messages.
// An empty payload asks for an analysis of the latest known readings.
func (s *Subscriber) handleAnalysisRequest(client mqtt.Client, msg mqtt.Message) {
	req, err := decodeAnalysisRequest(msg.Topic(), msg.Payload())
	if err != nil {
		s.logger.Warn("Dropping analysis request", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	select {
	case s.AnalysisChan <- req:
	case <-time.After(s.sendTimeout):
		s.logger.Warn("Analysis channel full, dropping request", zap.String("device_id", req.DeviceID))
	}
}

func decodeReading(topic string, payload []byte, received time.Time) (*models.DeviceReading, error) {
	deviceID := extractDeviceID(topic)
	if deviceID == "" {
		return nil, fmt.Errorf("could not extract device ID from topic %q", topic)
	}

	var reading models.SensorReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return nil, fmt.Errorf("invalid reading payload: %w", err)
	}
	if reading.Sensor == "" {
		return nil, fmt.Errorf("reading has no sensor name")
	}
	if !reading.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q", reading.Status)
	}

	// Timestamps are assigned server-side
	return &models.DeviceReading{
		Timestamp:     received,
		DeviceID:      deviceID,
		SensorReading: reading,
	}, nil
}

func decodeAnalysisRequest(topic string, payload []byte) (models.AnalysisRequest, error) {
	deviceID := extractDeviceID(topic)
	if deviceID == "" {
		return models.AnalysisRequest{}, fmt.Errorf("could not extract device ID from topic %q", topic)
	}

	req := models.AnalysisRequest{DeviceID: deviceID}
	if len(strings.TrimSpace(string(payload))) == 0 {
		return req, nil
	}

	if err := json.Unmarshal(payload, &req); err != nil {
		return models.AnalysisRequest{}, fmt.Errorf("invalid analysis request payload: %w", err)
	}
	// the topic is authoritative
	req.DeviceID = deviceID
	return req, nil
}

// extractDeviceID extracts device ID from MQTT topic
// Example: "sensor/press-01/reading" -> "press-01"
// Example: "maintenance/press-01/request" -> "press-01"
func extractDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
