package models

import "time"

// Reading represents a single timestamped electricity usage sample
type Reading struct {
	Timestamp   time.Time `json:"datetime"`
	EnergyUsage float64   `json:"energy_usage"` // kWh
}
