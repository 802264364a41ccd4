package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of the conversation remembered for a session.
// The history is replayed on every model call so the document only has to
// be sent once, at session initialization.
type ChatMessage struct {
	Role    Role
	Content string
}

// Session binds a legal document to a conversation history.
// The ID is chosen by the client (a UUID in practice) so that the console
// process and the server agree on it without a handshake.
type Session struct {
	ID        string
	Document  string
	Language  string
	CreatedAt time.Time
	History   []ChatMessage
}

// Seed returns the initial history for a freshly initialized session:
// a single user turn that hands the document to the assistant.
func Seed(document string) []ChatMessage {
	return []ChatMessage{
		{
			Role:    RoleUser,
			Content: "You are a legal assistant. Remember this document for future queries:\n" + document,
		},
	}
}
