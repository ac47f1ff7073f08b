package llm

import "context"

// Exchange is a stateful multi-turn conversation with the backend. It keeps
// the declared tool set and the accumulated message history so the
// orchestrator can alternate between user turns and tool-result replies.
//
// An Exchange is not safe for concurrent use; the orchestrator serializes
// turns per conversation.
type Exchange struct {
	service  Service
	tools    []ToolDescriptor
	messages []Message
}

// NewExchange opens an exchange with a declared tool set and prior history.
func NewExchange(service Service, tools []ToolDescriptor, history []Message) *Exchange {
	messages := make([]Message, len(history))
	copy(messages, history)
	return &Exchange{
		service:  service,
		tools:    tools,
		messages: messages,
	}
}

// Send appends a message and requests the next backend response. The
// backend's reply, including any tool-call requests, is recorded in the
// exchange history so a later SendToolResults can answer it.
func (e *Exchange) Send(ctx context.Context, message Message) (*Response, error) {
	e.messages = append(e.messages, message)
	return e.complete(ctx)
}

// SendToolResults returns all results of one iteration to the backend in a
// single combined reply and requests the next response.
func (e *Exchange) SendToolResults(ctx context.Context, results []ToolResult) (*Response, error) {
	for _, r := range results {
		e.messages = append(e.messages, Message{
			Role:       RoleTool,
			Content:    r.Content,
			ToolCallID: r.ToolCallID,
			Name:       r.Name,
		})
	}
	return e.complete(ctx)
}

// History returns a copy of the accumulated exchange messages.
func (e *Exchange) History() []Message {
	history := make([]Message, len(e.messages))
	copy(history, e.messages)
	return history
}

func (e *Exchange) complete(ctx context.Context) (*Response, error) {
	response, err := e.service.ChatWithTools(ctx, e.messages, e.tools)
	if err != nil {
		return nil, err
	}

	assistant := Message{
		Role:      RoleAssistant,
		Content:   response.Content,
		ToolCalls: response.ToolCalls,
	}
	e.messages = append(e.messages, assistant)

	return response, nil
}
