package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"industrial-ai-backend/internal/models"
)

type ClickHouseDB struct {
	conn   driver.Conn
	logger *zap.Logger
}

// Options holds ClickHouse connection settings
type Options struct {
	Addr     string
	Database string
	Username string
	Password string
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(ctx context.Context, opts Options, logger *zap.Logger) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.Info("Connected to ClickHouse", zap.String("addr", opts.Addr), zap.String("database", opts.Database))

	db := &ClickHouseDB{conn: conn, logger: logger}

	if err := db.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// InitSchema creates the necessary tables if they don't exist
func (db *ClickHouseDB) InitSchema(ctx context.Context) error {
	for _, tableSQL := range AllTables() {
		if err := db.conn.Exec(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	db.logger.Info("Database schema initialized")
	return nil
}

// SaveSensorReading saves a reading received from a device
func (db *ClickHouseDB) SaveSensorReading(ctx context.Context, reading *models.DeviceReading) error {
	query := `
		INSERT INTO sensor_readings (timestamp, device_id, sensor, value, unit, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		reading.Timestamp,
		reading.DeviceID,
		reading.Sensor,
		reading.Value,
		reading.Unit,
		string(reading.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sensor reading: %w", err)
	}

	return nil
}

// SaveMaintenanceReport saves a report together with the readings it was based on
func (db *ClickHouseDB) SaveMaintenanceReport(ctx context.Context, report *models.MaintenanceReport, readings []models.SensorReading) error {
	id, err := uuid.Parse(report.ID)
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", report.ID, err)
	}

	readingsJSON, err := json.Marshal(readings)
	if err != nil {
		return fmt.Errorf("failed to marshal readings: %w", err)
	}

	recommendations := report.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	query := `
		INSERT INTO maintenance_reports (id, timestamp, device_id, model, prediction, confidence, recommendations, readings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = db.conn.Exec(ctx, query,
		id,
		report.Timestamp,
		report.DeviceID,
		report.Model,
		report.Prediction,
		report.Confidence,
		recommendations,
		string(readingsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert maintenance report: %w", err)
	}

	db.logger.Debug("Saved maintenance report", zap.String("id", report.ID), zap.String("device_id", report.DeviceID))
	return nil
}

// SaveSolution saves a configurator proposal with the request that produced it
func (db *ClickHouseDB) SaveSolution(ctx context.Context, solution *models.AutomationSolution, req models.SolutionRequest) error {
	id, err := uuid.Parse(solution.ID)
	if err != nil {
		return fmt.Errorf("invalid solution id %q: %w", solution.ID, err)
	}

	components := solution.Components
	if components == nil {
		components = []string{}
	}

	query := `
		INSERT INTO automation_solutions (id, timestamp, model, requirements, priority, timeframe, title, description, components, estimated_roi)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = db.conn.Exec(ctx, query,
		id,
		solution.Timestamp,
		solution.Model,
		req.Requirements,
		req.Priority,
		req.Timeframe,
		solution.Title,
		solution.Description,
		components,
		solution.EstimatedROI,
	)
	if err != nil {
		return fmt.Errorf("failed to insert automation solution: %w", err)
	}

	return nil
}

// UpsertDevice inserts or updates a device in the registry
func (db *ClickHouseDB) UpsertDevice(ctx context.Context, device *models.RegisteredDevice) error {
	query := `
		INSERT INTO device_registry (device_id, registered_at, last_seen, status)
		VALUES (?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		device.DeviceID,
		device.RegisteredAt,
		device.LastSeen,
		string(device.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}

	return nil
}

// ListDevices returns the newest registry row for every device
func (db *ClickHouseDB) ListDevices(ctx context.Context) ([]models.RegisteredDevice, error) {
	query := `
		SELECT device_id, registered_at, last_seen, status
		FROM device_registry FINAL
		ORDER BY device_id
	`

	rows, err := db.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []models.RegisteredDevice
	for rows.Next() {
		var (
			d      models.RegisteredDevice
			status string
		)
		if err := rows.Scan(&d.DeviceID, &d.RegisteredAt, &d.LastSeen, &status); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		d.Status = models.DeviceStatus(status)
		devices = append(devices, d)
	}

	return devices, rows.Err()
}

// RecentReports returns up to limit reports, newest first. An empty
// deviceID matches every device.
func (db *ClickHouseDB) RecentReports(ctx context.Context, deviceID string, limit int) ([]models.MaintenanceReport, error) {
	query := `
		SELECT toString(id), timestamp, device_id, model, prediction, confidence, recommendations
		FROM maintenance_reports
		WHERE (? = '' OR device_id = ?)
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := db.conn.Query(ctx, query, deviceID, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance reports: %w", err)
	}
	defer rows.Close()

	var reports []models.MaintenanceReport
	for rows.Next() {
		var r models.MaintenanceReport
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.DeviceID, &r.Model, &r.Prediction, &r.Confidence, &r.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance report: %w", err)
		}
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

// Close closes the ClickHouse connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		if err := db.conn.Close(); err != nil {
			return fmt.Errorf("failed to close ClickHouse connection: %w", err)
		}
		db.logger.Info("ClickHouse connection closed")
	}
	return nil
}
