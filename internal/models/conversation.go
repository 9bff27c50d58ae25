// internal/models/conversation.go
package models

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ConversationEntry is a single message in the rolling chat history.
type ConversationEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
