package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
)

// ChildWorker runs one ProcessSpec under supervision: it launches the
// process, blocks on it, and reports its exit as an error so the supervisor
// relaunches it. A clean exit (code 0) ends supervision for that child.
type ChildWorker struct {
	log          *slog.Logger
	orchestrator *Orchestrator
	spec         ProcessSpec
	tracker      chan<- TrackedProcess
}

// NewChildWorker wires a spec to the orchestrator's launch path. The
// tracker channel is optional; when set, every (re)launch is announced to
// the health monitor.
func NewChildWorker(log *slog.Logger, orchestrator *Orchestrator, spec ProcessSpec, tracker chan<- TrackedProcess) *ChildWorker {
	return &ChildWorker{log: log, orchestrator: orchestrator, spec: spec, tracker: tracker}
}

func (w *ChildWorker) Run(ctx context.Context) error {
	proc, err := w.orchestrator.Launch(ctx, w.spec)
	if err != nil {
		return err
	}

	if w.tracker != nil {
		select {
		case w.tracker <- TrackedProcess{Name: w.spec.Name, PID: proc.PID()}:
		default:
			w.log.Debug("Health tracker channel full, launch not announced", "name", w.spec.Name)
		}
	}

	if err := proc.Wait(); err != nil {
		if ctx.Err() != nil {
			// Shutdown killed the child; not a crash.
			return nil
		}
		return fmt.Errorf("process %s exited: %w", w.spec.Name, err)
	}

	w.log.Info("Process exited cleanly", "name", w.spec.Name)
	return nil
}
