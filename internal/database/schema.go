package database

// SQL schemas for all ClickHouse tables

const (
	// SensorReadingsTableSQL creates the sensor_readings table
	SensorReadingsTableSQL = `
		CREATE TABLE IF NOT EXISTS sensor_readings (
			timestamp DateTime64(3),
			device_id String,
			sensor String,
			value String,
			unit String,
			status LowCardinality(String)
		) ENGINE = MergeTree()
		ORDER BY (device_id, sensor, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`

	// MaintenanceReportsTableSQL creates the maintenance_reports table.
	// readings holds the JSON list of readings that were analyzed.
	MaintenanceReportsTableSQL = `
		CREATE TABLE IF NOT EXISTS maintenance_reports (
			id UUID,
			timestamp DateTime64(3),
			device_id String,
			model String,
			prediction String,
			confidence Float64,
			recommendations Array(String),
			readings String
		) ENGINE = MergeTree()
		ORDER BY (device_id, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`

	// AutomationSolutionsTableSQL creates the automation_solutions table
	AutomationSolutionsTableSQL = `
		CREATE TABLE IF NOT EXISTS automation_solutions (
			id UUID,
			timestamp DateTime64(3),
			model String,
			requirements String,
			priority String,
			timeframe String,
			title String,
			description String,
			components Array(String),
			estimated_roi String
		) ENGINE = MergeTree()
		ORDER BY timestamp
	`

	// DeviceRegistryTableSQL creates the device_registry table.
	// ReplacingMergeTree keeps the newest row per device.
	DeviceRegistryTableSQL = `
		CREATE TABLE IF NOT EXISTS device_registry (
			device_id String,
			registered_at DateTime64(3),
			last_seen DateTime64(3),
			status LowCardinality(String)
		) ENGINE = ReplacingMergeTree(last_seen)
		ORDER BY device_id
	`
)

// AllTables returns all table creation SQL statements
func AllTables() []string {
	return []string{
		SensorReadingsTableSQL,
		MaintenanceReportsTableSQL,
		AutomationSolutionsTableSQL,
		DeviceRegistryTableSQL,
	}
}
