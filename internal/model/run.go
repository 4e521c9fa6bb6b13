package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run represents a single recorded analysis run.
type Run struct {
	ID         string    `json:"id"`
	Status     RunStatus `json:"status"`
	EnergyFile string    `json:"energy_file"`
	CO2File    string    `json:"co2_file"`
	Results    *Results  `json:"results,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
