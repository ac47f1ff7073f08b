package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopmind/shopmind/store"
)

type conversationResponse struct {
	ID            int32          `json:"id"`
	UID           string         `json:"uid"`
	UserID        *int32         `json:"user_id,omitempty"`
	SessionID     *string        `json:"session_id,omitempty"`
	Title         *string        `json:"title"`
	Status        string         `json:"status"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	LastMessageTs *int64         `json:"last_message_ts"`
	CreatedTs     int64          `json:"created_ts"`
	UpdatedTs     int64          `json:"updated_ts"`
}

func convertConversation(c *store.Conversation) *conversationResponse {
	return &conversationResponse{
		ID:            c.ID,
		UID:           c.UID,
		UserID:        c.UserID,
		SessionID:     c.SessionID,
		Title:         c.Title,
		Status:        string(c.Status),
		Metadata:      c.Metadata,
		LastMessageTs: c.LastMessageTs,
		CreatedTs:     c.CreatedTs,
		UpdatedTs:     c.UpdatedTs,
	}
}

type messageResponse struct {
	ID               int32          `json:"id"`
	ConversationID   int32          `json:"conversation_id"`
	Role             string         `json:"role"`
	Content          string         `json:"content"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	TokensUsed       *int32         `json:"tokens_used,omitempty"`
	ProcessingTimeMs *int32         `json:"processing_time_ms,omitempty"`
	CreatedTs        int64          `json:"created_ts"`
}

func convertMessage(m *store.Message) *messageResponse {
	return &messageResponse{
		ID:               m.ID,
		ConversationID:   m.ConversationID,
		Role:             string(m.Role),
		Content:          m.Content,
		Metadata:         m.Metadata,
		TokensUsed:       m.TokensUsed,
		ProcessingTimeMs: m.ProcessingTimeMs,
		CreatedTs:        m.CreatedTs,
	}
}

// validateConversationAccess mirrors the orchestrator's ownership rules.
func validateConversationAccess(conversation *store.Conversation, userID *int32, sessionID *string) bool {
	if conversation.UserID != nil {
		return userID != nil && *conversation.UserID == *userID
	}
	if conversation.SessionID != nil && userID == nil {
		return sessionID != nil && *conversation.SessionID == *sessionID
	}
	return true
}

// ListConversations returns the caller's conversations, most recently active
// first. Soft-deleted conversations are excluded.
//
// GET /api/v1/conversations
func (s *APIV1Service) ListConversations(c echo.Context) error {
	userID, sessionID := callerIdentity(c)

	find := &store.FindConversation{ExcludeDeleted: true}
	if userID != nil {
		find.UserID = userID
	} else if sessionID != nil {
		find.SessionID = sessionID
	} else {
		return c.JSON(http.StatusOK, map[string]any{"conversations": []*conversationResponse{}})
	}

	conversations, err := s.Store.ListConversations(c.Request().Context(), find)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to list conversations")
	}

	responses := make([]*conversationResponse, len(conversations))
	for i, conversation := range conversations {
		responses[i] = convertConversation(conversation)
	}
	return c.JSON(http.StatusOK, map[string]any{"conversations": responses})
}

type createConversationRequest struct {
	Title *string `json:"title"`
}

// CreateConversation creates an explicit conversation for the caller. An
// anonymous caller gets a minted session token back in the response.
//
// POST /api/v1/conversations
func (s *APIV1Service) CreateConversation(c echo.Context) error {
	request := &createConversationRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}

	userID, sessionID := callerIdentity(c)

	create := &store.Conversation{
		Title:  request.Title,
		Status: store.ConversationStatusActive,
	}
	if userID != nil {
		create.UserID = userID
	} else {
		if sessionID == nil {
			minted := store.MintSessionID()
			sessionID = &minted
		}
		create.SessionID = sessionID
	}

	conversation, err := s.Store.CreateConversation(c.Request().Context(), create)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to create conversation")
	}
	return c.JSON(http.StatusCreated, map[string]any{"conversation": convertConversation(conversation)})
}

// GetConversation returns one conversation by id. Deleted conversations stay
// retrievable by direct lookup.
//
// GET /api/v1/conversations/:id
func (s *APIV1Service) GetConversation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	conversation, err := s.Store.GetConversation(c.Request().Context(), &store.FindConversation{ID: &id})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get conversation")
	}
	if conversation == nil {
		return errorJSON(c, http.StatusNotFound, "Conversation not found")
	}

	userID, sessionID := callerIdentity(c)
	if !validateConversationAccess(conversation, userID, sessionID) {
		return errorJSON(c, http.StatusForbidden, "Unauthorized")
	}
	return c.JSON(http.StatusOK, map[string]any{"conversation": convertConversation(conversation)})
}

// DeleteConversation soft-deletes a conversation: a status transition, not a
// physical removal.
//
// DELETE /api/v1/conversations/:id
func (s *APIV1Service) DeleteConversation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{ID: &id})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get conversation")
	}
	if conversation == nil {
		return errorJSON(c, http.StatusNotFound, "Conversation not found")
	}

	userID, sessionID := callerIdentity(c)
	if !validateConversationAccess(conversation, userID, sessionID) {
		return errorJSON(c, http.StatusForbidden, "Unauthorized")
	}

	status := store.ConversationStatusDeleted
	if _, err := s.Store.UpdateConversation(ctx, &store.UpdateConversation{ID: id, Status: &status}); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to delete conversation")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Conversation deleted successfully"})
}

// ArchiveConversation transitions a conversation to archived.
//
// POST /api/v1/conversations/:id/archive
func (s *APIV1Service) ArchiveConversation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{ID: &id})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get conversation")
	}
	if conversation == nil {
		return errorJSON(c, http.StatusNotFound, "Conversation not found")
	}

	userID, sessionID := callerIdentity(c)
	if !validateConversationAccess(conversation, userID, sessionID) {
		return errorJSON(c, http.StatusForbidden, "Unauthorized")
	}

	status := store.ConversationStatusArchived
	updated, err := s.Store.UpdateConversation(ctx, &store.UpdateConversation{ID: id, Status: &status})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to archive conversation")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Conversation archived successfully",
		"conversation": convertConversation(updated),
	})
}

// ListConversationMessages returns the full message history of a
// conversation, oldest-first.
//
// GET /api/v1/conversations/:id/messages
func (s *APIV1Service) ListConversationMessages(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{ID: &id})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get conversation")
	}
	if conversation == nil {
		return errorJSON(c, http.StatusNotFound, "Conversation not found")
	}

	userID, sessionID := callerIdentity(c)
	if !validateConversationAccess(conversation, userID, sessionID) {
		return errorJSON(c, http.StatusForbidden, "Unauthorized")
	}

	messages, err := s.Store.ListMessages(ctx, &store.FindMessage{ConversationID: &id})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to list messages")
	}
	responses := make([]*messageResponse, len(messages))
	for i, message := range messages {
		responses[i] = convertMessage(message)
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": responses})
}
