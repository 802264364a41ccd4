// Package bootstrap prepares the runtime environment and launches the
// sibling processes of the legal-lab deployment: the console chatbot and
// the HTTP tool server. The sequence is strictly linear: runtime checks,
// then dependency installation, then process launch. Any check failure
// aborts before anything is started.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	liberrors "legal-lab/errors"
)

// Plan declares everything a launch needs.
//
// RuntimeBin and ManifestPath are optional: a pure-Go deployment launches
// static binaries and has nothing to install, while a mixed deployment
// (interpreter-based tools next to the Go binaries) names its interpreter,
// package manager and manifest here.
type Plan struct {
	RuntimeBin        string
	PackageManagerBin string
	ManifestPath      string
	Processes         []ProcessSpec
}

// Child pairs a launched process with the spec it was started from.
type Child struct {
	Spec    ProcessSpec
	Process Process
}

// Orchestrator walks a Plan through its launch sequence.
// It owns no long-lived state; children run unsupervised unless the caller
// hands them to a Supervisor afterwards.
type Orchestrator struct {
	log    *slog.Logger
	runner Runner
}

func NewOrchestrator(log *slog.Logger, runner Runner) *Orchestrator {
	return &Orchestrator{log: log, runner: runner}
}

// VerifyRuntime checks that the declared interpreter and package manager are
// present on the search path. Each missing tool gets its own error and log
// line so the operator knows exactly what to install.
// The package manager is only required when a manifest is declared.
func (o *Orchestrator) VerifyRuntime(plan Plan) error {
	if plan.RuntimeBin != "" {
		if _, err := o.runner.LookPath(plan.RuntimeBin); err != nil {
			o.log.Error("Runtime executable is missing", "bin", plan.RuntimeBin)
			return fmt.Errorf("%w: %s", liberrors.ErrRuntimeNotFound, plan.RuntimeBin)
		}
	}

	if plan.ManifestPath != "" {
		if _, err := o.runner.LookPath(plan.PackageManagerBin); err != nil {
			o.log.Error("Package manager is missing", "bin", plan.PackageManagerBin)
			return fmt.Errorf("%w: %s", liberrors.ErrPackageManagerNotFound, plan.PackageManagerBin)
		}
	}

	return nil
}

// InstallDependencies invokes the package manager against the manifest and
// blocks until it exits. A nonzero installer exit aborts the sequence: the
// original shell scripts ignored it, but launching children on top of a
// half-installed environment only moves the failure somewhere harder to read.
func (o *Orchestrator) InstallDependencies(ctx context.Context, plan Plan) error {
	if plan.ManifestPath == "" {
		o.log.Debug("No dependency manifest declared, skipping installation")
		return nil
	}

	o.log.Info("Installing dependencies", "manifest", plan.ManifestPath, "installer", plan.PackageManagerBin)
	if err := o.runner.Run(ctx, plan.PackageManagerBin, "install", "-r", plan.ManifestPath); err != nil {
		return fmt.Errorf("%w: %s: %v", liberrors.ErrInstallFailed, plan.ManifestPath, err)
	}
	return nil
}

// Launch starts one child process. It performs a fail-fast lookup on the
// binary before starting it, mirroring the check done for sidecar binaries:
// a missing executable is reported by the launcher, not by a cryptic OS
// message seconds later.
func (o *Orchestrator) Launch(ctx context.Context, spec ProcessSpec) (Process, error) {
	if _, err := o.runner.LookPath(spec.Bin); err != nil {
		return nil, fmt.Errorf("%w: %s", liberrors.ErrProcessNotFound, spec.Bin)
	}

	proc, err := o.runner.Start(ctx, spec)
	if err != nil {
		return nil, err
	}

	o.log.Info("Process launched", "name", spec.Name, "bin", spec.Bin, "pid", proc.PID())
	return proc, nil
}

// Run executes the full bootstrap sequence:
//
//	START -> RUNTIME_CHECKED -> DEPENDENCIES_INSTALLED -> PROCESSES_LAUNCHED
//
// The installer completes synchronously before any launch call is issued.
// Children are started in declaration order but with no synchronization
// between them; once Run returns, they run on their own.
func (o *Orchestrator) Run(ctx context.Context, plan Plan) ([]Child, error) {
	if err := o.VerifyRuntime(plan); err != nil {
		return nil, err
	}

	if err := o.InstallDependencies(ctx, plan); err != nil {
		return nil, err
	}

	var children []Child
	for _, spec := range plan.Processes {
		proc, err := o.Launch(ctx, spec)
		if err != nil {
			return children, err
		}
		children = append(children, Child{Spec: spec, Process: proc})
	}

	return children, nil
}
