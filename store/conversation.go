package store

import "github.com/google/uuid"

// MintSessionID generates a fresh anonymous session token.
func MintSessionID() string {
	return uuid.NewString()
}

// ConversationStatus is the lifecycle status of a conversation.
// Deletion is a status transition, not a physical removal.
type ConversationStatus string

const (
	ConversationStatusActive   ConversationStatus = "active"
	ConversationStatusArchived ConversationStatus = "archived"
	ConversationStatusDeleted  ConversationStatus = "deleted"
)

// Conversation is owned by either an authenticated user or an anonymous
// session token. At most one of UserID/SessionID is set.
type Conversation struct {
	ID            int32
	UID           string
	UserID        *int32
	SessionID     *string
	Title         *string
	Status        ConversationStatus
	Metadata      map[string]any
	LastMessageTs *int64
	CreatedTs     int64
	UpdatedTs     int64
}

// IsGuest reports whether the conversation belongs to an anonymous session.
func (c *Conversation) IsGuest() bool {
	return c.UserID == nil && c.SessionID != nil
}

type FindConversation struct {
	ID        *int32
	UID       *string
	UserID    *int32
	SessionID *string
	Status    *ConversationStatus
	// ExcludeDeleted filters out soft-deleted conversations. Direct id
	// lookups leave it false so deleted conversations stay retrievable.
	ExcludeDeleted bool
}

type UpdateConversation struct {
	ID            int32
	Title         *string
	Status        *ConversationStatus
	Metadata      map[string]any
	LastMessageTs *int64
	UpdatedTs     *int64
}
