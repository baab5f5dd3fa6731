package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"industrial-ai-backend/internal/models"
)

// Publisher handles MQTT publishing from channels
type Publisher struct {
	client mqtt.Client
	logger *zap.Logger

	// Input channel (read by publisher, written by maintenance service)
	ReportChan chan *models.MaintenanceReport

	// Topic pattern
	reportTopic string // e.g., "maintenance/{device_id}/report"
}

// PublisherConfig holds configuration for MQTT publisher
type PublisherConfig struct {
	ReportTopic string // e.g., "maintenance/{device_id}/report"
}

// NewPublisher creates a new MQTT publisher with channels
func NewPublisher(
	client mqtt.Client,
	config PublisherConfig,
	reportChan chan *models.MaintenanceReport,
	logger *zap.Logger,
) *Publisher {
	return &Publisher{
		client:      client,
		logger:      logger,
		ReportChan:  reportChan,
		reportTopic: config.ReportTopic,
	}
}

// Start begins publishing reports from the channel
// Runs until context is cancelled or channel is closed
func (p *Publisher) Start(ctx context.Context) {
	p.logger.Info("Publisher starting")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Publisher shutting down")
			return

		case report, ok := <-p.ReportChan:
			if !ok {
				p.logger.Info("Report channel closed, publisher shutting down")
				return
			}

			if err := p.publishReport(report); err != nil {
				p.logger.Error("Error publishing report", zap.Error(err))
			}
		}
	}
}

// publishReport publishes a maintenance report for its device
func (p *Publisher) publishReport(report *models.MaintenanceReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal maintenance report: %w", err)
	}

	topic := formatTopic(p.reportTopic, report.DeviceID)

	token := p.client.Publish(topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish maintenance report: %w", token.Error())
	}

	p.logger.Info("Published maintenance report", zap.String("device_id", report.DeviceID), zap.String("topic", topic))
	return nil
}

// formatTopic replaces {device_id} placeholder with actual device ID
func formatTopic(topicPattern, deviceID string) string {
	if deviceID == "" {
		deviceID = "unassigned"
	}
	return strings.ReplaceAll(topicPattern, "{device_id}", deviceID)
}
