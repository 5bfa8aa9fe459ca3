package workers

import (
	"code-lab/contract"
	"code-lab/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs the coordination counters together
// with the process's own memory and CPU figures.
type TelemetryWorker struct {
	log        *slog.Logger
	monitoring *observability.Monitor
	interval   time.Duration
}

var _ contract.Worker = (*TelemetryWorker)(nil)

func NewTelemetryWorker(log *slog.Logger, monitoring *observability.Monitor, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting telemetry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitoring.Snapshot()
			w.log.Info("Telemetry",
				"connections", stats.Connections,
				"joins", stats.Joins,
				"broadcasts", stats.Broadcasts,
				"executions", stats.Executions,
				"exec_retries", stats.ExecRetries,
				"exec_failures", stats.ExecFailures,
				"rate_limited", stats.RateLimited,
				"dropped_events", stats.DroppedEvents,
				"rss_mb", rss/1024/1024,
				"cpu_percent", cpu,
			)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
