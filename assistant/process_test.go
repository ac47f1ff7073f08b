package assistant_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopmind/shopmind/ai/llm"
	"github.com/shopmind/shopmind/assistant"
	"github.com/shopmind/shopmind/catalog"
	"github.com/shopmind/shopmind/internal/profile"
	"github.com/shopmind/shopmind/metrics"
	"github.com/shopmind/shopmind/notifier"
	"github.com/shopmind/shopmind/store"
	"github.com/shopmind/shopmind/store/db"
)

// scriptedLLM returns canned responses in order; when the script runs out it
// either repeats loopResponse or answers with final text.
type scriptedLLM struct {
	responses    []*llm.Response
	loopResponse *llm.Response
	calls        [][]llm.Message
}

func (s *scriptedLLM) Chat(_ context.Context, _ []llm.Message) (string, *llm.CallStats, error) {
	return "", nil, nil
}

func (s *scriptedLLM) ChatWithTools(_ context.Context, messages []llm.Message, _ []llm.ToolDescriptor) (*llm.Response, error) {
	copied := make([]llm.Message, len(messages))
	copy(copied, messages)
	s.calls = append(s.calls, copied)

	if len(s.responses) > 0 {
		response := s.responses[0]
		s.responses = s.responses[1:]
		return response, nil
	}
	if s.loopResponse != nil {
		return s.loopResponse, nil
	}
	return &llm.Response{Content: "All done."}, nil
}

type testEnv struct {
	store    *store.Store
	service  *assistant.Service
	recorder *notifier.Recorder
}

func newTestEnv(t *testing.T, backend llm.Service) *testEnv {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}
	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.SeedDemoData(context.Background()))
	t.Cleanup(func() {
		_ = st.Close()
	})

	recorder := notifier.NewRecorder()
	products := catalog.NewProductService(st, recorder)
	registry := assistant.NewRegistry(products)
	service := assistant.NewService(p, st, backend, registry, recorder, metrics.NewExporter())

	return &testEnv{store: st, service: service, recorder: recorder}
}

func toolCall(id, name, arguments string) llm.ToolCall {
	return llm.ToolCall{
		ID:       id,
		Type:     "function",
		Function: llm.FunctionCall{Name: name, Arguments: arguments},
	}
}

func TestProcessMessageZeroToolTurn(t *testing.T) {
	ctx := context.Background()
	backend := &scriptedLLM{responses: []*llm.Response{
		{Content: "Hello there!", Usage: &llm.CallStats{TotalTokens: 42}},
	}}
	env := newTestEnv(t, backend)

	result, err := env.service.ProcessMessage(ctx, &assistant.ProcessRequest{Prompt: "hi"})
	require.NoError(t, err)
	require.Equal(t, "Hello there!", result.Message)
	require.Equal(t, 0, result.Iterations)
	require.NotNil(t, result.SessionID, "anonymous caller gets a minted session token")
	require.GreaterOrEqual(t, result.ProcessingTimeMs, int64(0))

	messages, err := env.store.ListMessages(ctx, &store.FindMessage{ConversationID: &result.ConversationID})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, store.MessageRoleUser, messages[0].Role)
	require.Equal(t, store.MessageRoleAssistant, messages[1].Role)
	require.Equal(t, "Hello there!", messages[1].Content)
	require.NotNil(t, messages[1].TokensUsed)
	require.Equal(t, int32(42), *messages[1].TokensUsed)

	executions, err := env.store.ListToolExecutions(ctx, &store.FindToolExecution{MessageID: &messages[1].ID})
	require.NoError(t, err)
	require.Empty(t, executions)

	conversation, err := env.store.GetConversation(ctx, &store.FindConversation{ID: &result.ConversationID})
	require.NoError(t, err)
	require.NotNil(t, conversation.Title)
	require.Equal(t, "hi", *conversation.Title)
	require.NotNil(t, conversation.LastMessageTs)

	require.NotEmpty(t, env.recorder.EventsNamed(notifier.EventAssistantProcessing))
	require.NotEmpty(t, env.recorder.EventsNamed(notifier.EventMessageComplete))
}

func TestProcessMessageCombinedToolResults(t *testing.T) {
	ctx := context.Background()
	backend := &scriptedLLM{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{
			toolCall("call_1", "list_products", `{"category": "books"}`),
			toolCall("call_2", "get_product", `{"id": 1}`),
		}},
		{Content: "Found them."},
	}}
	env := newTestEnv(t, backend)

	result, err := env.service.ProcessMessage(ctx, &assistant.ProcessRequest{Prompt: "show me books"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Iterations)
	require.Equal(t, "Found them.", result.Message)

	// Both executions anchor on the same assistant message.
	executions, err := env.store.ListToolExecutions(ctx, &store.FindToolExecution{MessageID: &result.MessageID})
	require.NoError(t, err)
	require.Len(t, executions, 2)
	require.Equal(t, "list_products", executions[0].ToolName)
	require.Equal(t, "get_product", executions[1].ToolName)
	for _, e := range executions {
		require.Equal(t, store.ToolExecutionStatusSuccess, e.Status)
		require.NotNil(t, e.ExecutionTimeMs)
	}

	// The backend received exactly one combined reply carrying both results.
	require.Len(t, backend.calls, 2)
	second := backend.calls[1]
	toolMessages := make([]llm.Message, 0)
	for _, m := range second {
		if m.Role == llm.RoleTool {
			toolMessages = append(toolMessages, m)
		}
	}
	require.Len(t, toolMessages, 2)
	require.Equal(t, "call_1", toolMessages[0].ToolCallID)
	require.Equal(t, "call_2", toolMessages[1].ToolCallID)
}

func TestProcessMessageUnknownFunction(t *testing.T) {
	ctx := context.Background()
	backend := &scriptedLLM{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{toolCall("call_1", "summon_unicorn", `{}`)}},
		{Content: "That didn't work."},
	}}
	env := newTestEnv(t, backend)

	result, err := env.service.ProcessMessage(ctx, &assistant.ProcessRequest{Prompt: "do magic"})
	require.NoError(t, err)
	require.Equal(t, "That didn't work.", result.Message)

	executions, err := env.store.ListToolExecutions(ctx, &store.FindToolExecution{MessageID: &result.MessageID})
	require.NoError(t, err)
	require.Len(t, executions, 1)
	require.Equal(t, "Unknown function", executions[0].Result["error"])

	// The error is surfaced to the backend as a regular result.
	second := backend.calls[1]
	last := second[len(second)-1]
	require.Equal(t, llm.RoleTool, last.Role)
	require.Contains(t, last.Content, "Unknown function")
}

func TestProcessMessageIterationCap(t *testing.T) {
	ctx := context.Background()
	backend := &scriptedLLM{
		loopResponse: &llm.Response{ToolCalls: []llm.ToolCall{
			toolCall("call_n", "list_products", `{}`),
		}},
	}
	env := newTestEnv(t, backend)

	result, err := env.service.ProcessMessage(ctx, &assistant.ProcessRequest{Prompt: "loop forever"})
	require.NoError(t, err, "hitting the cap degrades the turn, it does not fail it")
	require.Equal(t, 20, result.Iterations)

	executions, err := env.store.ListToolExecutions(ctx, &store.FindToolExecution{MessageID: &result.MessageID})
	require.NoError(t, err)
	require.Len(t, executions, 20)
}

func TestProcessMessageConversationResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown conversation", func(t *testing.T) {
		env := newTestEnv(t, &scriptedLLM{})
		missing := int32(9999)
		_, err := env.service.ProcessMessage(ctx, &assistant.ProcessRequest{
			Prompt:         "hi",
			ConversationID: &missing,
		})
		require.ErrorIs(t, err, assistant.ErrConversationNotFound)
	})

	t.Run("foreign user conversation", func(t *testing.T) {
		env := newTestEnv(t, &scriptedLLM{})
		owner := int32(1)
		conversation, err := env.store.FindOrCreateActiveConversation(ctx, &owner, nil)
		require.NoError(t, err)

		intruder := int32(2)
		_, err = env.service.ProcessMessage(ctx, &assistant.ProcessRequest{
			Prompt:         "hi",
			ConversationID: &conversation.ID,
			UserID:         &intruder,
		})
		require.ErrorIs(t, err, assistant.ErrUnauthorized)
	})

	t.Run("session mismatch", func(t *testing.T) {
		env := newTestEnv(t, &scriptedLLM{})
		sessionID := store.MintSessionID()
		conversation, err := env.store.FindOrCreateActiveConversation(ctx, nil, &sessionID)
		require.NoError(t, err)

		wrong := store.MintSessionID()
		_, err = env.service.ProcessMessage(ctx, &assistant.ProcessRequest{
			Prompt:         "hi",
			ConversationID: &conversation.ID,
			SessionID:      &wrong,
		})
		require.ErrorIs(t, err, assistant.ErrUnauthorized)
	})

	t.Run("matching session is allowed", func(t *testing.T) {
		env := newTestEnv(t, &scriptedLLM{})
		sessionID := store.MintSessionID()
		conversation, err := env.store.FindOrCreateActiveConversation(ctx, nil, &sessionID)
		require.NoError(t, err)

		result, err := env.service.ProcessMessage(ctx, &assistant.ProcessRequest{
			Prompt:         "hi",
			ConversationID: &conversation.ID,
			SessionID:      &sessionID,
		})
		require.NoError(t, err)
		require.Equal(t, conversation.ID, result.ConversationID)
	})
}

func TestProcessMessageTitleIdempotence(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &scriptedLLM{})

	userID := int32(5)
	first, err := env.service.ProcessMessage(ctx, &assistant.ProcessRequest{
		Prompt: "What laptops do you sell?",
		UserID: &userID,
	})
	require.NoError(t, err)

	_, err = env.service.ProcessMessage(ctx, &assistant.ProcessRequest{
		Prompt: "And which books?",
		UserID: &userID,
	})
	require.NoError(t, err)

	conversation, err := env.store.GetConversation(ctx, &store.FindConversation{ID: &first.ConversationID})
	require.NoError(t, err)
	require.NotNil(t, conversation.Title)
	require.Equal(t, "What laptops do you sell?", *conversation.Title)
}

func TestProcessMessageTitleTruncation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &scriptedLLM{})

	prompt := "Show me every discounted electronics product we currently have in stock please"
	result, err := env.service.ProcessMessage(ctx, &assistant.ProcessRequest{Prompt: prompt})
	require.NoError(t, err)

	conversation, err := env.store.GetConversation(ctx, &store.FindConversation{ID: &result.ConversationID})
	require.NoError(t, err)
	require.NotNil(t, conversation.Title)
	require.Equal(t, "Show me every discounted electronics product we cu...", *conversation.Title)
}

func TestProcessMessageContextReplay(t *testing.T) {
	ctx := context.Background()
	backend := &scriptedLLM{}
	env := newTestEnv(t, backend)

	userID := int32(3)
	_, err := env.service.ProcessMessage(ctx, &assistant.ProcessRequest{Prompt: "first question", UserID: &userID})
	require.NoError(t, err)
	_, err = env.service.ProcessMessage(ctx, &assistant.ProcessRequest{Prompt: "second question", UserID: &userID})
	require.NoError(t, err)

	// The second turn replays the first turn's user and assistant messages.
	require.Len(t, backend.calls, 2)
	second := backend.calls[1]
	var sawFirstQuestion, sawFirstAnswer bool
	for _, m := range second {
		if m.Role == llm.RoleUser && m.Content == "first question" {
			sawFirstQuestion = true
		}
		if m.Role == llm.RoleAssistant && m.Content == "All done." {
			sawFirstAnswer = true
		}
	}
	require.True(t, sawFirstQuestion)
	require.True(t, sawFirstAnswer)
}
