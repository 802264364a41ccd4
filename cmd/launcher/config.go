package main

import (
	"strings"
	"time"
)

// Config defines the launcher's environment variables.
//
// RuntimeBin and ManifestPath are empty by default: launching the compiled
// chatbot and toolserver binaries needs no interpreter and nothing to
// install. A mixed deployment sets RUNTIME_BIN=python3,
// MANIFEST_PATH=requirements.txt and points the process binaries at the
// interpreter with the script as argument.
type Config struct {
	RuntimeBin        string `env:"RUNTIME_BIN"`
	PackageManagerBin string `env:"PACKAGE_MANAGER_BIN,default=pip3"`
	ManifestPath      string `env:"MANIFEST_PATH"`

	ChatbotBin     string `env:"CHATBOT_BIN,default=./bin/chatbot"`
	ChatbotArgs    string `env:"CHATBOT_ARGS"`
	ToolServerBin  string `env:"TOOLSERVER_BIN,default=./bin/toolserver"`
	ToolServerArgs string `env:"TOOLSERVER_ARGS"`
	ToolServerPort int    `env:"TOOLSERVER_PORT,default=9000"`

	Supervise       bool          `env:"LAUNCHER_SUPERVISE,default=false"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=5s"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
}

// splitArgs cuts a space-separated argument string into argv parts.
func splitArgs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Fields(raw)
}
