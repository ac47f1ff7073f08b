package store

// ToolExecutionStatus is the lifecycle status of a tool execution.
type ToolExecutionStatus string

const (
	ToolExecutionStatusPending ToolExecutionStatus = "pending"
	ToolExecutionStatusSuccess ToolExecutionStatus = "success"
	ToolExecutionStatusFailed  ToolExecutionStatus = "failed"
)

// ToolExecution records a single tool invocation requested by the model
// during an assistant turn. A row is created with status=pending when the
// call is dispatched and transitioned exactly once to a terminal status.
type ToolExecution struct {
	ID              int32
	MessageID       int32
	ToolName        string
	Arguments       map[string]any
	Result          map[string]any
	ExecutionTimeMs *int32
	Status          ToolExecutionStatus
	ErrorMessage    *string
	CreatedTs       int64
}

type CreateToolExecution struct {
	MessageID int32
	ToolName  string
	Arguments map[string]any
}

// CompleteToolExecution transitions a pending execution to a terminal status.
type CompleteToolExecution struct {
	ID              int32
	Status          ToolExecutionStatus
	Result          map[string]any
	ErrorMessage    *string
	ExecutionTimeMs int32
}

type FindToolExecution struct {
	ID        *int32
	MessageID *int32
	Status    *ToolExecutionStatus
}
