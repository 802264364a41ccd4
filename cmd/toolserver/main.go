// The toolserver exposes the legal document analysis tools over HTTP:
// session initialization, question answering, simplification, risk analysis,
// document validation, key date extraction and clause search.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"legal-lab/ai"
	"legal-lab/auth"
	"legal-lab/internal"
	"legal-lab/search"
	"legal-lab/server"
	"legal-lab/sessions"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Tool server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := internal.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB for sessions, Bluge for the clause index)
	options := buildBadgerOpts(config, logger, ctx)
	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Model client & service
	llm, err := ai.NewClient(ai.Config{APIKey: config.AnthropicAPIKey, Model: config.Model})
	if err != nil {
		return exitConfig, err
	}

	repository := sessions.NewSessionRepository(db, logger, config.SessionTTL)
	index := search.NewClauseIndex(blugeWriter, logger)
	service := server.NewAnalysisService(logger, repository, index, llm)

	serverConfig := server.Config{Port: config.Port, APIKeyHash: config.APIKeyHash}
	if config.TokenSecret != "" {
		serverConfig.Tokens = auth.NewTokenService(config.TokenSecret, config.TokenDuration)
		logger.Info("Session tokens enabled", "duration", config.TokenDuration)
	}

	httpServer := server.NewServer(logger, service, serverConfig)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Serve until signaled
	if err := httpServer.Run(ctx); err != nil {
		return exitRuntime, fmt.Errorf("http server error: %w", err)
	}

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.ERROR)
	}

	return options
}
