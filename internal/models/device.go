package models

import "time"

// DeviceStatus is the connectivity state shown in the IoT device table
type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
	DeviceWarning DeviceStatus = "warning"
)

// Device represents an IoT device in the fleet
type Device struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Status   DeviceStatus `json:"status" yaml:"status"`
	Battery  int          `json:"battery" yaml:"battery"`     // percent
	LastSeen string       `json:"lastSeen" yaml:"last_seen"` // human readable, e.g. "3m ago"
}

// RegisteredDevice is a device that has reported over MQTT
type RegisteredDevice struct {
	DeviceID     string       `json:"device_id"`
	RegisteredAt time.Time    `json:"registered_at"`
	LastSeen     time.Time    `json:"last_seen"`
	Status       DeviceStatus `json:"status"`
}
