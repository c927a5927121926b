package domain

// Role identifies the speaker of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a model conversation.
// An ordered slice of messages forms the dialogue sent to a provider.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
