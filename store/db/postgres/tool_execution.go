package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopmind/shopmind/store"
)

func (d *DB) CreateToolExecution(ctx context.Context, create *store.CreateToolExecution) (*store.ToolExecution, error) {
	arguments := create.Arguments
	if arguments == nil {
		arguments = map[string]any{}
	}
	argumentsJSON, err := marshalJSON(arguments)
	if err != nil {
		return nil, err
	}

	execution := &store.ToolExecution{
		MessageID: create.MessageID,
		ToolName:  create.ToolName,
		Arguments: arguments,
		Status:    store.ToolExecutionStatusPending,
		CreatedTs: time.Now().Unix(),
	}

	fields := []string{"message_id", "tool_name", "arguments", "status", "created_ts"}
	args := []any{execution.MessageID, execution.ToolName, argumentsJSON, execution.Status, execution.CreatedTs}
	stmt := `INSERT INTO tool_execution (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&execution.ID); err != nil {
		return nil, fmt.Errorf("failed to create tool execution: %w", err)
	}

	return execution, nil
}

func (d *DB) ListToolExecutions(ctx context.Context, find *store.FindToolExecution) ([]*store.ToolExecution, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.MessageID != nil {
		where, args = append(where, "message_id = "+placeholder(len(args)+1)), append(args, *find.MessageID)
	}
	if find.Status != nil {
		where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, *find.Status)
	}

	query := `
		SELECT id, message_id, tool_name, arguments, result, execution_time_ms, status, error_message, created_ts
		FROM tool_execution
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tool executions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ToolExecution, 0)
	for rows.Next() {
		e := &store.ToolExecution{}
		var arguments, result sql.NullString
		if err := rows.Scan(
			&e.ID, &e.MessageID, &e.ToolName, &arguments, &result,
			&e.ExecutionTimeMs, &e.Status, &e.ErrorMessage, &e.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tool execution: %w", err)
		}
		if e.Arguments, err = unmarshalJSON(arguments); err != nil {
			return nil, err
		}
		if e.Result, err = unmarshalJSON(result); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tool executions: %w", err)
	}

	return list, nil
}

func (d *DB) CompleteToolExecution(ctx context.Context, complete *store.CompleteToolExecution) (*store.ToolExecution, error) {
	resultJSON, err := marshalJSON(complete.Result)
	if err != nil {
		return nil, err
	}

	// Pending-only guard: a terminal execution is immutable.
	stmt := `
		UPDATE tool_execution
		SET status = $1, result = $2, error_message = $3, execution_time_ms = $4
		WHERE id = $5 AND status = $6
		RETURNING id, message_id, tool_name, arguments, result, execution_time_ms, status, error_message, created_ts`
	e := &store.ToolExecution{}
	var arguments, result sql.NullString
	if err := d.db.QueryRowContext(ctx, stmt,
		complete.Status, resultJSON, complete.ErrorMessage, complete.ExecutionTimeMs,
		complete.ID, store.ToolExecutionStatusPending,
	).Scan(
		&e.ID, &e.MessageID, &e.ToolName, &arguments, &result,
		&e.ExecutionTimeMs, &e.Status, &e.ErrorMessage, &e.CreatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("pending tool execution not found")
		}
		return nil, fmt.Errorf("failed to complete tool execution: %w", err)
	}
	if e.Arguments, err = unmarshalJSON(arguments); err != nil {
		return nil, err
	}
	if e.Result, err = unmarshalJSON(result); err != nil {
		return nil, err
	}

	return e, nil
}
