package main

type Config struct {
	AnthropicAPIKey   string `env:"ANTHROPIC_API_KEY,required=true"`
	LegalDocumentName string `env:"LEGAL_DOCUMENT_NAME,required=true"`
	DocumentDir       string `env:"DOCUMENT_DIR,default=."`
	ServerURL         string `env:"MCP_SERVER_URL,default=http://127.0.0.1:9000"`
	ServerAPIKey      string `env:"SERVER_API_KEY"`
	Model             string `env:"MODEL"`
	LogLevel          string `env:"LOG_LEVEL,default=WARN"`
}
