package errors

import "fmt"

var (
	ErrRuntimeNotFound        = fmt.Errorf("runtime executable not found on PATH")
	ErrPackageManagerNotFound = fmt.Errorf("package manager not found on PATH")
	ErrInstallFailed          = fmt.Errorf("dependency installation failed")
	ErrProcessNotFound        = fmt.Errorf("process binary not found")
	ErrProcessStartFailed     = fmt.Errorf("process start failed")
	ErrWorkerPanic            = fmt.Errorf("worker panic")
	ErrSessionNotFound        = fmt.Errorf("session not initialized with a document")
	ErrEmptyDocument          = fmt.Errorf("document is empty")
	ErrNotTextDocument        = fmt.Errorf("document is not plain text")
	ErrUnknownTool            = fmt.Errorf("unknown tool")
	ErrEmptyKeywords          = fmt.Errorf("no intent keywords have been found")
	ErrInvalidAPIKey          = fmt.Errorf("invalid api key")
)
