// Package observability aggregates runtime counters for logs, the debug
// endpoint, and the telemetry worker. Counters are atomic; nothing here
// sits on a hot-path lock.
package observability

import (
	"sync/atomic"
	"time"
)

// Stats is the point-in-time view served by the debug endpoint.
type Stats struct {
	Connections   uint64 `json:"connections"`
	Joins         uint64 `json:"joins"`
	Broadcasts    uint64 `json:"broadcasts"`
	DroppedEvents uint64 `json:"dropped_events"`
	Executions    uint64 `json:"executions"`
	ExecRetries   uint64 `json:"exec_retries"`
	ExecFailures  uint64 `json:"exec_failures"`
	RateLimited   uint64 `json:"rate_limited"`
	UptimeSeconds uint64 `json:"uptime_seconds"`
}

// Monitor collects counters from all components. A nil *Monitor is valid
// and counts nothing, so tests can omit it.
type Monitor struct {
	startedAt     time.Time
	connections   uint64
	joins         uint64
	broadcasts    uint64
	droppedEvents uint64
	executions    uint64
	execRetries   uint64
	execFailures  uint64
	rateLimited   uint64
}

func NewMonitor() *Monitor {
	return &Monitor{startedAt: time.Now()}
}

func (m *Monitor) IncrConnections() {
	if m != nil {
		atomic.AddUint64(&m.connections, 1)
	}
}

func (m *Monitor) IncrJoins() {
	if m != nil {
		atomic.AddUint64(&m.joins, 1)
	}
}

func (m *Monitor) IncrBroadcasts() {
	if m != nil {
		atomic.AddUint64(&m.broadcasts, 1)
	}
}

func (m *Monitor) IncrDroppedEvents() {
	if m != nil {
		atomic.AddUint64(&m.droppedEvents, 1)
	}
}

func (m *Monitor) IncrExecutions() {
	if m != nil {
		atomic.AddUint64(&m.executions, 1)
	}
}

func (m *Monitor) IncrExecRetries() {
	if m != nil {
		atomic.AddUint64(&m.execRetries, 1)
	}
}

func (m *Monitor) IncrExecFailures() {
	if m != nil {
		atomic.AddUint64(&m.execFailures, 1)
	}
}

func (m *Monitor) IncrRateLimited() {
	if m != nil {
		atomic.AddUint64(&m.rateLimited, 1)
	}
}

func (m *Monitor) Snapshot() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		Connections:   atomic.LoadUint64(&m.connections),
		Joins:         atomic.LoadUint64(&m.joins),
		Broadcasts:    atomic.LoadUint64(&m.broadcasts),
		DroppedEvents: atomic.LoadUint64(&m.droppedEvents),
		Executions:    atomic.LoadUint64(&m.executions),
		ExecRetries:   atomic.LoadUint64(&m.execRetries),
		ExecFailures:  atomic.LoadUint64(&m.execFailures),
		RateLimited:   atomic.LoadUint64(&m.rateLimited),
		UptimeSeconds: uint64(time.Since(m.startedAt).Seconds()),
	}
}
