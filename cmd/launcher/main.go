// The launcher bootstraps the legal analysis deployment: it verifies the
// runtime environment, installs the declared dependencies, then starts the
// HTTP tool server and the console chatbot as sibling processes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"legal-lab/bootstrap"
	"legal-lab/internal"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Launcher terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run performs the whole bootstrap sequence and blocks on the children.
// Returning instead of exiting keeps the defers running and the logic
// testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := internal.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The children inherit the launcher's environment, so TOOLSERVER_PORT
	// reaches the tool server without extra plumbing.
	os.Setenv("TOOLSERVER_PORT", strconv.Itoa(config.ToolServerPort))

	// 3. Launch plan: tool server first so the chatbot finds it on 9000.
	plan := bootstrap.Plan{
		RuntimeBin:        config.RuntimeBin,
		PackageManagerBin: config.PackageManagerBin,
		ManifestPath:      config.ManifestPath,
		Processes: []bootstrap.ProcessSpec{
			{
				Name: "toolserver",
				Bin:  config.ToolServerBin,
				Args: splitArgs(config.ToolServerArgs),
			},
			{
				Name:        "chatbot",
				Bin:         config.ChatbotBin,
				Args:        splitArgs(config.ChatbotArgs),
				Interactive: true,
			},
		},
	}

	orchestrator := bootstrap.NewOrchestrator(logger, bootstrap.NewExecRunner(logger))

	if config.Supervise {
		return runSupervised(ctx, logger, orchestrator, plan, config)
	}
	return runOnce(ctx, logger, orchestrator, plan)
}

// runOnce is the default mode: verify, install, launch, then simply wait.
// Children are not restarted; when one exits or a signal arrives, the
// launcher winds down.
func runOnce(ctx context.Context, logger *slog.Logger, orchestrator *bootstrap.Orchestrator,
	plan bootstrap.Plan) (int, error) {
	children, err := orchestrator.Run(ctx, plan)
	if err != nil {
		return exitRuntime, err
	}

	exited := make(chan string, len(children))
	for _, child := range children {
		child := child
		go func() {
			_ = child.Process.Wait()
			exited <- child.Spec.Name
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping children...")
		for _, child := range children {
			_ = child.Process.Kill()
		}
	case name := <-exited:
		logger.Info("Child exited, shutting down", "name", name)
		for _, child := range children {
			_ = child.Process.Kill()
		}
	}

	logger.Info("Launcher stopped cleanly")
	return exitOK, nil
}

// runSupervised wraps every child in a supervised worker: crashes are
// relaunched after the restart interval and a health monitor samples their
// CPU and RAM.
func runSupervised(ctx context.Context, logger *slog.Logger, orchestrator *bootstrap.Orchestrator,
	plan bootstrap.Plan, config Config) (int, error) {
	// Verification and installation happen exactly once, before any launch.
	if err := orchestrator.VerifyRuntime(plan); err != nil {
		return exitRuntime, err
	}
	if err := orchestrator.InstallDependencies(ctx, plan); err != nil {
		return exitRuntime, err
	}

	tracker := make(chan bootstrap.TrackedProcess, len(plan.Processes))

	supervisor := bootstrap.NewSupervisor(logger, config.RestartInterval)
	supervisor.Add(bootstrap.NewHealthMonitorWorker(logger, tracker, config.MetricInterval))
	for _, spec := range plan.Processes {
		supervisor.Add(bootstrap.NewChildWorker(logger, orchestrator, spec, tracker))
	}

	logger.Info("Supervision enabled", "children", len(plan.Processes), "restart_interval", config.RestartInterval)
	supervisor.Run(ctx)

	logger.Info("Launcher stopped cleanly")
	return exitOK, nil
}
