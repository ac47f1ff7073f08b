package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeService struct {
	responses []*Response
	seen      [][]Message
}

func (f *fakeService) Chat(_ context.Context, _ []Message) (string, *CallStats, error) {
	return "", nil, nil
}

func (f *fakeService) ChatWithTools(_ context.Context, messages []Message, _ []ToolDescriptor) (*Response, error) {
	copied := make([]Message, len(messages))
	copy(copied, messages)
	f.seen = append(f.seen, copied)

	response := f.responses[0]
	f.responses = f.responses[1:]
	return response, nil
}

func TestExchangeAccumulatesHistory(t *testing.T) {
	service := &fakeService{responses: []*Response{
		{ToolCalls: []ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: FunctionCall{Name: "list_products", Arguments: "{}"},
		}}},
		{Content: "final answer"},
	}}

	history := []Message{UserMessage("earlier"), AssistantMessage("earlier reply")}
	exchange := NewExchange(service, nil, history)

	response, err := exchange.Send(context.Background(), UserMessage("new prompt"))
	require.NoError(t, err)
	require.True(t, response.HasToolCalls())

	response, err = exchange.SendToolResults(context.Background(), []ToolResult{
		{ToolCallID: "call_1", Name: "list_products", Content: `{"products": []}`},
	})
	require.NoError(t, err)
	require.False(t, response.HasToolCalls())
	require.Equal(t, "final answer", response.Content)

	// Second completion sees prior history, the assistant tool-call message
	// and the tool result.
	require.Len(t, service.seen, 2)
	second := service.seen[1]
	require.Len(t, second, 5)
	require.Equal(t, RoleAssistant, second[3].Role)
	require.Len(t, second[3].ToolCalls, 1)
	require.Equal(t, RoleTool, second[4].Role)
	require.Equal(t, "call_1", second[4].ToolCallID)

	// History copies are isolated from the exchange's internal state.
	snapshot := exchange.History()
	require.Len(t, snapshot, 6)
	snapshot[0].Content = "mutated"
	require.Equal(t, "earlier", exchange.History()[0].Content)
}
