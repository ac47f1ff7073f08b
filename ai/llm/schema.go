// Package llm wraps the generative-language backend behind a small
// tool-calling exchange API. The backend is treated as a remote,
// possibly-slow, possibly-failing dependency: there is no retry or backoff,
// a transport error surfaces immediately to the caller.
package llm

// Message represents a chat message within an exchange.
type Message struct {
	Role    string // system, user, assistant, tool
	Content string

	// ToolCalls is set on assistant messages that request tool invocations.
	ToolCalls []ToolCall

	// ToolCallID links a role=tool message to the assistant tool call it
	// answers.
	ToolCallID string
	// Name is the tool name on role=tool messages.
	Name string
}

// Role constants for Message.Role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolDescriptor declares a callable capability to the model.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  string // JSON Schema string
}

// ToolCall is a backend-issued request to invoke a named capability.
type ToolCall struct {
	ID       string
	Type     string
	Function FunctionCall
}

// FunctionCall carries the requested function name and its raw JSON arguments.
type FunctionCall struct {
	Name      string
	Arguments string
}

// Response is a single backend reply: either final text, or one or more
// requested tool calls (Content may still carry partial text alongside them).
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *CallStats
}

// HasToolCalls reports whether the backend requested tool invocations.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// CallStats carries token usage and timing for one backend call.
type CallStats struct {
	PromptTokens     int   `json:"prompt_tokens"`
	CompletionTokens int   `json:"completion_tokens"`
	TotalTokens      int   `json:"total_tokens"`
	TotalDurationMs  int64 `json:"total_duration_ms"`
}

// ToolResult is one executed tool's outcome, returned to the backend.
type ToolResult struct {
	ToolCallID string
	Name       string
	Content    string // JSON-encoded result map
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
