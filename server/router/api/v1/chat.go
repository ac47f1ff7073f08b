package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopmind/shopmind/assistant"
)

type chatMessageRequest struct {
	Prompt         string  `json:"prompt"`
	ConversationID *int32  `json:"conversation_id"`
	SessionID      *string `json:"session_id"`
}

// ChatMessage runs one assistant turn.
//
// POST /api/v1/chat/message
func (s *APIV1Service) ChatMessage(c echo.Context) error {
	if s.Assistant == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "assistant is not configured")
	}

	request := &chatMessageRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(request.Prompt) == "" {
		return errorJSON(c, http.StatusUnprocessableEntity, "prompt is required")
	}

	userID, sessionID := callerIdentity(c)
	if request.SessionID != nil {
		sessionID = request.SessionID
	}

	result, err := s.Assistant.ProcessMessage(c.Request().Context(), &assistant.ProcessRequest{
		Prompt:         request.Prompt,
		ConversationID: request.ConversationID,
		UserID:         userID,
		SessionID:      sessionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrConversationNotFound):
			return errorJSON(c, http.StatusNotFound, err.Error())
		case errors.Is(err, assistant.ErrUnauthorized):
			return errorJSON(c, http.StatusForbidden, err.Error())
		default:
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
	}

	return c.JSON(http.StatusOK, result)
}
