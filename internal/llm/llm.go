// Package llm abstracts the language-model collaborator behind a single
// synchronous chat-completion call.
package llm

import "context"

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of an ordered chat transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System is a convenience constructor for a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User is a convenience constructor for a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Completer performs one blocking completion call. No streaming, no retries;
// a transient failure surfaces as an error on this one call.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
