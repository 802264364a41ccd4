package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingWorker struct {
	runs     atomic.Int32
	failures int32
}

// Run fails the first `failures` times, then finishes cleanly.
func (w *countingWorker) Run(ctx context.Context) error {
	n := w.runs.Add(1)
	if n <= w.failures {
		return fmt.Errorf("boom %d", n)
	}
	return nil
}

func TestSupervisor_Restarts_Crashed_Worker_Until_Clean_Exit(t *testing.T) {
	req := require.New(t)
	sup := NewSupervisor(slog.Default(), time.Millisecond)

	worker := &countingWorker{failures: 2}
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not drain after worker finished")
	}

	// Two crashes, then one clean run
	req.Equal(int32(3), worker.runs.Load())
}

type blockingWorker struct {
	started chan struct{}
}

func (w *blockingWorker) Run(ctx context.Context) error {
	close(w.started)
	<-ctx.Done()
	return nil
}

func TestSupervisor_Stop_Cancels_Workers(t *testing.T) {
	req := require.New(t)
	sup := NewSupervisor(slog.Default(), time.Millisecond)

	worker := &blockingWorker{started: make(chan struct{})}
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	<-worker.started
	sup.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
	req.NotNil(sup.Cancel)
}

func TestGetWorkerName(t *testing.T) {
	req := require.New(t)
	req.Equal("countingWorker", GetWorkerName(&countingWorker{}))
	req.Equal("NilWorker", GetWorkerName(nil))
}
