package main

import "time"

type Config struct {
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY,required=true"`
	Model           string        `env:"MODEL"`
	Port            int           `env:"TOOLSERVER_PORT,default=9000"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,default=./data/badger"`
	BlugeFilepath   string        `env:"BLUGE_FILEPATH,default=./data/bluge"`
	SessionTTL      time.Duration `env:"SESSION_TTL"`
	TokenSecret     string        `env:"TOKEN_SECRET"`
	TokenDuration   time.Duration `env:"TOKEN_DURATION,default=24h"`
	APIKeyHash      string        `env:"API_KEY_HASH"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
}
