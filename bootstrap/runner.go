//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=../mocks/mock_runner.go -package=mocks
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	liberrors "legal-lab/errors"
)

// ProcessSpec describes one child process the launcher must start.
// Args are passed verbatim; Dir defaults to the launcher's working directory.
// An Interactive child inherits the launcher's terminal instead of having
// its output folded into the log, because it owns the conversation with the
// operator.
type ProcessSpec struct {
	Name        string
	Bin         string
	Args        []string
	Dir         string
	Interactive bool
}

// Process is a minimal handle on a launched child.
type Process interface {
	PID() int
	Wait() error
	Kill() error
}

// Runner abstracts executable lookup and command execution.
// The orchestrator only talks to this interface, which keeps the launch
// sequence testable without spawning real processes.
type Runner interface {
	LookPath(file string) (string, error)
	// Run executes a command and blocks until it exits.
	Run(ctx context.Context, name string, args ...string) error
	// Start launches a child process and returns without waiting.
	Start(ctx context.Context, spec ProcessSpec) (Process, error)
}

// ExecRunner is the production Runner backed by os/exec.
// Child stdout/stderr are redirected into the logger with the child's name
// as prefix, so one terminal shows all three processes.
type ExecRunner struct {
	log *slog.Logger
}

func NewExecRunner(log *slog.Logger) *ExecRunner {
	return &ExecRunner{log: log}
}

func (r *ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &childLogWriter{logger: r.log, prefix: name}
	cmd.Stderr = &childLogWriter{logger: r.log, prefix: name, isError: true}
	return cmd.Run()
}

// Start launches a child linked to the provided context.
// On Linux the kernel kills the child when the launcher dies (Pdeathsig),
// so a crashed launcher cannot leave orphans behind.
func (r *ExecRunner) Start(ctx context.Context, spec ProcessSpec) (Process, error) {
	cmd := exec.CommandContext(ctx, spec.Bin, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &childLogWriter{logger: r.log, prefix: spec.Name}
		cmd.Stderr = &childLogWriter{logger: r.log, prefix: spec.Name, isError: true}
	}
	setPlatformSpecificAttrs(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", liberrors.ErrProcessStartFailed, spec.Name, err)
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
