package store

// MessageRole is the speaker of a message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
	MessageRoleFunction  MessageRole = "function"
)

// Message belongs to exactly one conversation.
//
// The assistant message of a turn is a two-phase entity: it is created as an
// empty placeholder so tool executions can reference it, then finalized
// exactly once when the turn completes. Content must not be treated as final
// until ProcessingTimeMs is set.
type Message struct {
	ID               int32
	ConversationID   int32
	Role             MessageRole
	Content          string
	Metadata         map[string]any
	ParentMessageID  *int32
	TokensUsed       *int32
	ProcessingTimeMs *int32
	CreatedTs        int64
}

type CreateMessage struct {
	ConversationID  int32
	Role            MessageRole
	Content         string
	Metadata        map[string]any
	ParentMessageID *int32
}

type FindMessage struct {
	ID             *int32
	ConversationID *int32
	Roles          []MessageRole
	// Limit restricts the result to the most recent Limit messages.
	// Results are always returned oldest-first.
	Limit int
}

// UpdateMessage finalizes an assistant placeholder.
type UpdateMessage struct {
	ID               int32
	Content          *string
	TokensUsed       *int32
	ProcessingTimeMs *int32
}
