package types

import "time"

// CycleOutcome represents how a monitoring cycle ended
type CycleOutcome string

const (
	CycleNotConnected CycleOutcome = "not_connected"
	CycleLocatorError CycleOutcome = "locator_error"
	CycleScannerError CycleOutcome = "scanner_error"
	CycleCompleted    CycleOutcome = "completed"
	CycleUnclassified CycleOutcome = "unclassified_error"
)

// CycleReport summarizes one monitoring cycle
type CycleReport struct {
	ID                  string         `json:"id"`
	StartedAt           time.Time      `json:"started_at"`
	Duration            time.Duration  `json:"duration"`
	Outcome             CycleOutcome   `json:"outcome"`
	Interface           InterfaceState `json:"interface"`
	Subnet              Subnet         `json:"subnet"`
	Devices             []Device       `json:"devices,omitempty"`
	DeviceCount         int            `json:"device_count"`
	CountWithoutGateway int            `json:"count_without_gateway"`
	PreviousCount       int            `json:"previous_count"`
	Alerted             bool           `json:"alerted"`
	AlertError          string         `json:"alert_error,omitempty"`
	Error               string         `json:"error,omitempty"`
}

// StateUpdated reports whether the cycle replaced the previous device count
func (r *CycleReport) StateUpdated() bool {
	return r.Outcome == CycleCompleted
}
