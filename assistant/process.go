// Package assistant drives the function-calling orchestration loop: it takes
// a user prompt, exchanges messages with the generative backend, executes the
// tool calls the model requests against the catalog, and persists the whole
// turn as conversation/message/tool-execution rows.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopmind/shopmind/ai/llm"
	"github.com/shopmind/shopmind/internal/profile"
	"github.com/shopmind/shopmind/internal/strutil"
	"github.com/shopmind/shopmind/metrics"
	"github.com/shopmind/shopmind/notifier"
	"github.com/shopmind/shopmind/store"
)

var (
	// ErrConversationNotFound is returned when a referenced conversation does
	// not exist or was deleted.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrUnauthorized is returned when the caller does not own the referenced
	// conversation.
	ErrUnauthorized = errors.New("unauthorized access to conversation")
)

const (
	// maxIterations bounds the tool-calling loop. Hitting it is degraded but
	// non-fatal: the turn finalizes with whatever text the backend last
	// produced.
	maxIterations = 20
	// contextWindow is the number of recent messages replayed to the backend.
	contextWindow = 20
	// titleMaxLen bounds conversation titles derived from the first prompt.
	titleMaxLen = 50
)

// ProcessRequest is one user turn.
type ProcessRequest struct {
	Prompt         string
	ConversationID *int32
	UserID         *int32
	SessionID      *string
}

// ProcessResult is the outcome of a completed turn.
type ProcessResult struct {
	ConversationID   int32   `json:"conversation_id"`
	SessionID        *string `json:"session_id"`
	Message          string  `json:"message"`
	MessageID        int32   `json:"message_id"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	Iterations       int     `json:"iterations"`
}

// Service is the assistant orchestrator.
type Service struct {
	profile  *profile.Profile
	store    *store.Store
	llm      llm.Service
	registry *Registry
	notifier notifier.Notifier
	metrics  *metrics.Exporter
	locks    *conversationLocks
}

func NewService(p *profile.Profile, st *store.Store, llmService llm.Service, registry *Registry, n notifier.Notifier, m *metrics.Exporter) *Service {
	return &Service{
		profile:  p,
		store:    st,
		llm:      llmService,
		registry: registry,
		notifier: n,
		metrics:  m,
		locks:    newConversationLocks(),
	}
}

// ProcessMessage runs one full assistant turn. Turns for the same
// conversation are serialized; turns for different conversations are
// independent. A backend communication failure aborts the turn and leaves
// already-committed rows in place.
func (s *Service) ProcessMessage(ctx context.Context, request *ProcessRequest) (*ProcessResult, error) {
	startTime := time.Now()

	if s.profile != nil && s.profile.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.profile.TurnTimeout)*time.Second)
		defer cancel()
	}

	sessionID := request.SessionID
	conversation, err := s.resolveConversation(ctx, request, &sessionID)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.acquire(ctx, conversation.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	userMessage, err := s.store.CreateMessage(ctx, &store.CreateMessage{
		ConversationID: conversation.ID,
		Role:           store.MessageRoleUser,
		Content:        request.Prompt,
	})
	if err != nil {
		return nil, err
	}

	if err := s.touchConversation(ctx, conversation.ID); err != nil {
		return nil, err
	}

	if conversation.Title == nil {
		title := strutil.Truncate(request.Prompt, titleMaxLen)
		if _, err := s.store.UpdateConversation(ctx, &store.UpdateConversation{
			ID:    conversation.ID,
			Title: &title,
		}); err != nil {
			return nil, err
		}
	}

	history, err := s.buildHistory(ctx, conversation.ID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, conversation.ID, notifier.EventAssistantProcessing, map[string]any{
		"status":  "started",
		"message": "Processing your request...",
	})

	exchange := llm.NewExchange(s.llm, s.registry.Descriptors(), history)
	response, err := exchange.Send(ctx, llm.UserMessage(request.Prompt))
	if err != nil {
		s.observeTurn("error", startTime, 0)
		return nil, err
	}

	// Placeholder anchors the tool-execution rows; finalized exactly once
	// below.
	assistantMessage, err := s.store.CreateMessage(ctx, &store.CreateMessage{
		ConversationID:  conversation.ID,
		Role:            store.MessageRoleAssistant,
		Content:         "",
		ParentMessageID: &userMessage.ID,
	})
	if err != nil {
		return nil, err
	}

	iteration := 0
	for response.HasToolCalls() && iteration < maxIterations {
		iteration++
		iterationStart := time.Now()

		slog.Info("processing tool calls",
			"conversation_id", conversation.ID,
			"iteration", iteration,
			"calls", len(response.ToolCalls))
		s.emit(ctx, conversation.ID, notifier.EventAssistantProcessing, map[string]any{
			"status":    "processing",
			"iteration": iteration,
		})

		names := make([]string, 0, len(response.ToolCalls))
		results := make([]llm.ToolResult, 0, len(response.ToolCalls))
		for _, call := range response.ToolCalls {
			names = append(names, call.Function.Name)
			result := s.executeToolCall(ctx, assistantMessage.ID, call)
			results = append(results, result)
		}

		response, err = exchange.SendToolResults(ctx, results)
		if err != nil {
			s.observeTurn("error", startTime, iteration)
			return nil, err
		}

		s.emit(ctx, conversation.ID, notifier.EventIterationComplete, map[string]any{
			"iteration":  iteration,
			"functions":  strings.Join(names, ", "),
			"elapsed_ms": time.Since(iterationStart).Milliseconds(),
		})
	}

	outcome := "success"
	if iteration >= maxIterations && response.HasToolCalls() {
		outcome = "degraded"
		slog.Warn("max iterations reached", "conversation_id", conversation.ID)
	}

	finalText := response.Content
	processingTime := time.Since(startTime).Milliseconds()
	processingTimeMs := int32(processingTime)

	update := &store.UpdateMessage{
		ID:               assistantMessage.ID,
		Content:          &finalText,
		ProcessingTimeMs: &processingTimeMs,
	}
	if response.Usage != nil {
		tokens := int32(response.Usage.TotalTokens)
		update.TokensUsed = &tokens
		if s.metrics != nil {
			s.metrics.AddTokens(response.Usage.TotalTokens)
		}
	}
	if _, err := s.store.UpdateMessage(ctx, update); err != nil {
		return nil, err
	}

	if err := s.touchConversation(ctx, conversation.ID); err != nil {
		return nil, err
	}

	s.emit(ctx, conversation.ID, notifier.EventMessageComplete, map[string]any{
		"message":    finalText,
		"message_id": assistantMessage.ID,
	})
	s.observeTurn(outcome, startTime, iteration)

	return &ProcessResult{
		ConversationID:   conversation.ID,
		SessionID:        conversation.SessionID,
		Message:          finalText,
		MessageID:        assistantMessage.ID,
		ProcessingTimeMs: processingTime,
		Iterations:       iteration,
	}, nil
}

// resolveConversation loads and authorizes an existing conversation, or finds
// or creates the active one for the caller's identity. A fresh session token
// is minted for fully anonymous callers and written back through sessionID.
func (s *Service) resolveConversation(ctx context.Context, request *ProcessRequest, sessionID **string) (*store.Conversation, error) {
	if request.ConversationID != nil {
		conversation, err := s.store.GetConversation(ctx, &store.FindConversation{
			ID: request.ConversationID,
		})
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, ErrConversationNotFound
		}
		if err := validateAccess(conversation, request.UserID, request.SessionID); err != nil {
			return nil, err
		}
		return conversation, nil
	}

	if request.UserID == nil && *sessionID == nil {
		minted := store.MintSessionID()
		*sessionID = &minted
	}
	return s.store.FindOrCreateActiveConversation(ctx, request.UserID, *sessionID)
}

// validateAccess rejects callers that do not own the conversation. An
// authenticated user may access their own conversations regardless of
// session; anonymous callers must present the matching session token.
func validateAccess(conversation *store.Conversation, userID *int32, sessionID *string) error {
	if conversation.UserID != nil {
		if userID == nil || *conversation.UserID != *userID {
			return ErrUnauthorized
		}
		return nil
	}
	if conversation.SessionID != nil && userID == nil {
		if sessionID == nil || *conversation.SessionID != *sessionID {
			return ErrUnauthorized
		}
	}
	return nil
}

// executeToolCall records and runs one requested tool call. Handler failures
// are contained: the execution row carries the error and the model receives
// it as a structured result.
func (s *Service) executeToolCall(ctx context.Context, messageID int32, call llm.ToolCall) llm.ToolResult {
	start := time.Now()
	name := call.Function.Name

	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			slog.Warn("malformed tool arguments", "tool", name, "error", err)
			args = map[string]any{}
		}
	}

	execution, err := s.store.CreateToolExecution(ctx, &store.CreateToolExecution{
		MessageID: messageID,
		ToolName:  name,
		Arguments: args,
	})
	if err != nil {
		slog.Error("failed to record tool execution", "tool", name, "error", err)
		return toolResult(call, map[string]any{"error": "internal error"})
	}

	slog.Info("executing tool", "tool", name, "execution_id", execution.ID)
	result, execErr := s.registry.Execute(ctx, name, args)
	elapsed := time.Since(start)

	complete := &store.CompleteToolExecution{
		ID:              execution.ID,
		ExecutionTimeMs: int32(elapsed.Milliseconds()),
	}
	status := "success"
	if execErr != nil {
		status = "failed"
		message := execErr.Error()
		result = map[string]any{"error": message}
		complete.Status = store.ToolExecutionStatusFailed
		complete.ErrorMessage = &message
		complete.Result = result
	} else {
		complete.Status = store.ToolExecutionStatusSuccess
		complete.Result = result
	}
	if _, err := s.store.CompleteToolExecution(ctx, complete); err != nil {
		slog.Error("failed to complete tool execution", "tool", name, "error", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveToolExecution(name, status, elapsed)
	}

	return toolResult(call, result)
}

func toolResult(call llm.ToolCall, result map[string]any) llm.ToolResult {
	content, err := json.Marshal(result)
	if err != nil {
		content = []byte(`{"error": "unencodable result"}`)
	}
	return llm.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Function.Name,
		Content:    string(content),
	}
}

// buildHistory replays the recent conversation context as backend messages.
func (s *Service) buildHistory(ctx context.Context, conversationID int32) ([]llm.Message, error) {
	messages, err := s.store.GetConversationContext(ctx, conversationID, contextWindow)
	if err != nil {
		return nil, err
	}
	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		role := llm.RoleUser
		if m.Role == store.MessageRoleAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}
	return history, nil
}

func (s *Service) touchConversation(ctx context.Context, conversationID int32) error {
	now := time.Now().Unix()
	_, err := s.store.UpdateConversation(ctx, &store.UpdateConversation{
		ID:            conversationID,
		LastMessageTs: &now,
	})
	return err
}

func (s *Service) emit(ctx context.Context, conversationID int32, name string, payload map[string]any) {
	notifier.Emit(ctx, s.notifier, notifier.ConversationTopic(conversationID), notifier.Event{
		Name:    name,
		Payload: payload,
	})
}

func (s *Service) observeTurn(outcome string, startTime time.Time, iterations int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveTurn(outcome, time.Since(startTime), iterations)
}
