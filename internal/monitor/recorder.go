package monitor

import (
	"sync"
	"time"

	"wifiwatch/internal/types"
)

// Snapshot is a copy of the recorder contents
type Snapshot struct {
	StartedAt   time.Time                    `json:"started_at"`
	State       types.MonitorState           `json:"state"`
	LastCycle   *types.CycleReport           `json:"last_cycle,omitempty"`
	TotalCycles int64                        `json:"total_cycles"`
	Alerts      int64                        `json:"alerts"`
	Outcomes    map[types.CycleOutcome]int64 `json:"outcomes"`
}

// Recorder keeps the latest cycle report for readers outside the loop.
// It observes the monitor state, it never feeds it back.
type Recorder struct {
	mu          sync.RWMutex
	startedAt   time.Time
	state       types.MonitorState
	last        *types.CycleReport
	totalCycles int64
	alerts      int64
	outcomes    map[types.CycleOutcome]int64
}

// NewRecorder creates a new recorder
func NewRecorder() *Recorder {
	return &Recorder{
		startedAt: time.Now(),
		outcomes:  make(map[types.CycleOutcome]int64),
	}
}

// Record stores the result of a cycle
func (r *Recorder) Record(state types.MonitorState, report types.CycleReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = state
	r.last = &report
	r.totalCycles++
	r.outcomes[report.Outcome]++
	if report.Alerted {
		r.alerts++
	}
}

// Snapshot returns a copy of the recorded data
func (r *Recorder) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Snapshot{
		StartedAt:   r.startedAt,
		State:       r.state,
		TotalCycles: r.totalCycles,
		Alerts:      r.alerts,
		Outcomes:    make(map[types.CycleOutcome]int64, len(r.outcomes)),
	}
	for k, v := range r.outcomes {
		s.Outcomes[k] = v
	}
	if r.last != nil {
		last := *r.last
		last.Devices = append([]types.Device(nil), r.last.Devices...)
		s.LastCycle = &last
	}
	return s
}
