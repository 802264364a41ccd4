package bootstrap

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TrackedProcess announces a launched child to the health monitor.
type TrackedProcess struct {
	Name string
	PID  int
}

// HealthMonitorWorker periodically samples CPU, RAM and OS status for every
// tracked child and logs them. A PID that can no longer be resolved is
// dropped from the table; when supervision is enabled the child worker will
// re-announce it after the relaunch.
type HealthMonitorWorker struct {
	mu             sync.Mutex
	log            *slog.Logger
	trackerChan    <-chan TrackedProcess
	metricInterval time.Duration
	processes      map[int]string
}

func NewHealthMonitorWorker(log *slog.Logger, trackerChan <-chan TrackedProcess, metricInterval time.Duration) *HealthMonitorWorker {
	return &HealthMonitorWorker{
		log:            log,
		trackerChan:    trackerChan,
		metricInterval: metricInterval,
		processes:      make(map[int]string),
	}
}

func (w *HealthMonitorWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			w.sample()
		case tracked := <-w.trackerChan:
			w.mu.Lock()
			w.processes[tracked.PID] = tracked.Name
			w.mu.Unlock()
			w.log.Debug("Tracking child process", "name", tracked.Name, "pid", tracked.PID)
		}
	}
}

func (w *HealthMonitorWorker) sample() {
	w.mu.Lock()
	snapshot := make(map[int]string, len(w.processes))
	for pid, name := range w.processes {
		snapshot[pid] = name
	}
	w.mu.Unlock()

	for pid, name := range snapshot {
		p, err := process.NewProcess(int32(pid))
		if err != nil {
			w.mu.Lock()
			delete(w.processes, pid)
			w.mu.Unlock()
			w.log.Debug("Child has left the party", "name", name, "pid", pid)
			continue
		}
		status, err := p.Status()
		if err != nil {
			w.log.Error("Error while finding process status", "err", err)
			continue
		}
		cpu, err := p.CPUPercent()
		if err != nil {
			w.log.Error("Error while finding process cpu usage", "err", err)
			continue
		}
		ram, err := p.MemoryPercent()
		if err != nil {
			w.log.Error("Error while finding process ram usage", "err", err)
			continue
		}
		w.log.Info("Child health", "name", name, "pid", pid, "status", status, "cpu", cpu, "ram", ram)
	}
}
