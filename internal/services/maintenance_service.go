package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"industrial-ai-backend/internal/ai"
	"industrial-ai-backend/internal/models"
)

// MaintenanceAnalyzer produces a maintenance report from sensor readings
type MaintenanceAnalyzer interface {
	AnalyzeMaintenance(ctx context.Context, deviceID string, readings []models.SensorReading) (*models.MaintenanceReport, error)
}

// ReportStore persists maintenance reports
type ReportStore interface {
	SaveMaintenanceReport(ctx context.Context, report *models.MaintenanceReport, readings []models.SensorReading) error
	RecentReports(ctx context.Context, deviceID string, limit int) ([]models.MaintenanceReport, error)
}

// ReadingSource returns the latest readings known for a device
type ReadingSource interface {
	Readings(deviceID string) []models.SensorReading
}

// MaintenanceService runs maintenance analyses requested over MQTT, by the
// sensor buffer or through the HTTP API, then stores and publishes the report.
type MaintenanceService struct {
	analyzer MaintenanceAnalyzer
	store    ReportStore   // optional
	source   ReadingSource // optional
	fallback []models.SensorReading
	logger   *zap.Logger

	// Input channel (written by the MQTT subscriber and the sensor buffer)
	RequestChan chan models.AnalysisRequest

	// Output channel (read by the MQTT publisher), nil when MQTT is off
	ReportChan chan *models.MaintenanceReport
}

// MaintenanceServiceConfig holds configuration for the maintenance service
type MaintenanceServiceConfig struct {
	RequestChannelSize int

	// FallbackReadings are analysed when a device has no live readings
	FallbackReadings []models.SensorReading
}

// DefaultMaintenanceServiceConfig returns default configuration
func DefaultMaintenanceServiceConfig() MaintenanceServiceConfig {
	return MaintenanceServiceConfig{
		RequestChannelSize: 50,
	}
}

// NewMaintenanceService creates a new maintenance service. store and source
// may be nil.
func NewMaintenanceService(
	analyzer MaintenanceAnalyzer,
	store ReportStore,
	source ReadingSource,
	config MaintenanceServiceConfig,
	logger *zap.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		analyzer:    analyzer,
		store:       store,
		source:      source,
		fallback:    config.FallbackReadings,
		logger:      logger,
		RequestChan: make(chan models.AnalysisRequest, config.RequestChannelSize),
	}
}

// Start processes queued analysis requests one at a time
// Runs until context is cancelled or the channel is closed
func (ms *MaintenanceService) Start(ctx context.Context) {
	ms.logger.Info("Starting")

	for {
		select {
		case <-ctx.Done():
			ms.logger.Info("Shutting down")
			return
		case req, ok := <-ms.RequestChan:
			if !ok {
				ms.logger.Info("Request channel closed, shutting down")
				return
			}
			if _, err := ms.Analyze(ctx, req); err != nil {
				ms.logger.Warn("Queued analysis failed", zap.String("device_id", req.DeviceID), zap.Error(err))
			}
		}
	}
}

// Enqueue queues a request without blocking. It is the sensor buffer's
// analysis callback; requests are dropped when the queue is full.
func (ms *MaintenanceService) Enqueue(req models.AnalysisRequest) {
	select {
	case ms.RequestChan <- req:
	default:
		ms.logger.Warn("Analysis queue full, dropping request", zap.String("device_id", req.DeviceID))
	}
}

// ResolveReadings returns the readings an analysis of req would use: the
// request's own, else the device's live readings, else the fallback set.
func (ms *MaintenanceService) ResolveReadings(req models.AnalysisRequest) []models.SensorReading {
	if len(req.Readings) > 0 {
		return req.Readings
	}
	if ms.source != nil && req.DeviceID != "" {
		if live := ms.source.Readings(req.DeviceID); len(live) > 0 {
			return live
		}
	}
	out := make([]models.SensorReading, len(ms.fallback))
	copy(out, ms.fallback)
	return out
}

// Analyze runs one analysis. Storage and publish failures are logged and
// do not fail the analysis.
func (ms *MaintenanceService) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.MaintenanceReport, error) {
	readings := ms.ResolveReadings(req)
	if len(readings) == 0 {
		return nil, fmt.Errorf("device %q: %w", req.DeviceID, ai.ErrNoReadings)
	}

	report, err := ms.analyzer.AnalyzeMaintenance(ctx, req.DeviceID, readings)
	if err != nil {
		return nil, err
	}

	ms.logger.Info("Maintenance report ready",
		zap.String("device_id", report.DeviceID),
		zap.String("report_id", report.ID),
		zap.Float64("confidence", report.Confidence))

	if ms.store != nil {
		if err := ms.store.SaveMaintenanceReport(ctx, report, readings); err != nil {
			ms.logger.Error("Error saving maintenance report", zap.String("report_id", report.ID), zap.Error(err))
		}
	}

	ms.publish(ctx, report)
	return report, nil
}

// History returns recent stored reports, or nil when persistence is off
func (ms *MaintenanceService) History(ctx context.Context, deviceID string, limit int) ([]models.MaintenanceReport, error) {
	if ms.store == nil {
		return nil, nil
	}
	return ms.store.RecentReports(ctx, deviceID, limit)
}

func (ms *MaintenanceService) publish(ctx context.Context, report *models.MaintenanceReport) {
	if ms.ReportChan == nil {
		return
	}
	select {
	case ms.ReportChan <- report:
	case <-ctx.Done():
	default:
		ms.logger.Warn("Report channel full, report not published", zap.String("report_id", report.ID))
	}
}
