// The chatbot is the console side of the legal analysis deployment. It loads
// the configured document, registers it with the tool server, then routes
// each question to the right analysis tool: the model picks the tool, and a
// keyword classifier takes over when the model is unreachable.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"legal-lab/ai"
	"legal-lab/client"
	"legal-lab/docload"
	"legal-lab/domain"
	"legal-lab/intent"
	"legal-lab/internal"
	"legal-lab/ui"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const (
	serverWaitAttempts = 10
	serverWaitDelay    = 500 * time.Millisecond
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chatbot terminated with error: %v\n", err)
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
	console := ui.NewConsole(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Load the document named in the configuration
	document, err := docload.Load(config.DocumentDir, config.LegalDocumentName)
	if err != nil {
		return exitConfig, err
	}

	// 3. Tool router: model first, keyword classifier as fallback
	llm, err := ai.NewClient(ai.Config{APIKey: config.AnthropicAPIKey, Model: config.Model})
	if err != nil {
		return exitConfig, err
	}

	classifier, err := intent.NewDefaultClassifier()
	if err != nil {
		return exitConfig, err
	}

	// 4. Register the document with the tool server. The server is a sibling
	// process started by the same launcher, so give it a moment to come up.
	tools := client.New(config.ServerURL, config.ServerAPIKey)
	if err := waitForServer(ctx, tools); err != nil {
		return exitRuntime, err
	}

	sessionID := uuid.NewString()
	message, err := tools.InitSession(ctx, sessionID, document.Text)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to initialize session: %w", err)
	}
	logger.Debug("Session ready", "session_id", sessionID, "message", message)

	// 5. Conversation loop
	console.Banner(document.Name)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		console.Prompt()
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if isQuit(query) {
			break
		}

		choice := route(ctx, llm, classifier, query)
		console.Routing(choice)
		dispatch(ctx, console, tools, sessionID, choice.Tool, query)
	}

	// 6. Cleanup: the server forgets the session on exit
	resetCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if message, err := tools.ResetSession(resetCtx, sessionID); err != nil {
		logger.Warn("Failed to reset session", "error", err)
	} else {
		console.Info(message)
	}

	return exitOK, scanner.Err()
}

func waitForServer(ctx context.Context, tools *client.Client) error {
	var err error
	for attempt := 0; attempt < serverWaitAttempts; attempt++ {
		if err = tools.Health(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(serverWaitDelay):
		}
	}
	return fmt.Errorf("tool server did not come up: %w", err)
}

// route picks the tool for a query. The model's choice wins; when the call
// fails or names an unknown tool, the keyword classifier decides.
func route(ctx context.Context, llm *ai.Client, classifier *intent.Classifier, query string) domain.ToolChoice {
	choice, err := llm.ChooseTool(ctx, ai.ChooseToolPrompt(query), ai.ChooseToolDefinitions())
	if err == nil && choice.Tool.IsValid() {
		return choice
	}

	tool := classifier.Classify(query)
	return domain.ToolChoice{Tool: tool, Reason: "keyword fallback"}
}

func dispatch(ctx context.Context, console *ui.Console, tools *client.Client,
	sessionID string, tool domain.ToolName, query string) {
	var err error

	switch tool {
	case domain.ToolSimplify:
		var simplified string
		if simplified, err = tools.Simplify(ctx, sessionID); err == nil {
			console.Answer(simplified)
		}
	case domain.ToolComplications:
		var analysis string
		if analysis, err = tools.AnalyzeComplications(ctx, sessionID); err == nil {
			console.Complications(analysis)
		}
	case domain.ToolValidate:
		var validation string
		if validation, err = tools.ValidateDocument(ctx, sessionID); err == nil {
			console.Validation(validation)
		}
	case domain.ToolKeyDates:
		var keyDates string
		if keyDates, err = tools.ExtractKeyDates(ctx, sessionID); err == nil {
			console.KeyDates(keyDates)
		}
	default:
		var answer string
		if answer, err = tools.Ask(ctx, sessionID, query); err == nil {
			console.Answer(answer)
		}
	}

	if err != nil {
		console.Error(err)
	}
}

func isQuit(query string) bool {
	switch strings.ToLower(query) {
	case "quit", "exit":
		return true
	}
	return false
}
