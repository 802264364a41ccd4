package bootstrap

import (
	"log/slog"
	"strings"
)

// childLogWriter is a custom io.Writer that redirects a child process's
// standard output (stdout/stderr) to the launcher's slog.Logger.
// It prefixes each log entry with the child's name to provide clear
// traceability when several processes share one terminal.
type childLogWriter struct {
	logger  *slog.Logger
	prefix  string
	isError bool
}

// Write implements the io.Writer interface. It captures the bytes from the
// child process, trims the trailing newline children usually add, and logs
// them at the appropriate severity while keeping the child's context.
func (w *childLogWriter) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	msg := strings.TrimRight(string(p), "\n")

	if w.isError {
		w.logger.Error(msg, "process", w.prefix)
	} else {
		w.logger.Info(msg, "process", w.prefix)
	}

	return len(p), nil
}
