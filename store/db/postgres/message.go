package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopmind/shopmind/store"
)

func (d *DB) CreateMessage(ctx context.Context, create *store.CreateMessage) (*store.Message, error) {
	metadata, err := marshalJSON(create.Metadata)
	if err != nil {
		return nil, err
	}

	message := &store.Message{
		ConversationID:  create.ConversationID,
		Role:            create.Role,
		Content:         create.Content,
		Metadata:        create.Metadata,
		ParentMessageID: create.ParentMessageID,
		CreatedTs:       time.Now().Unix(),
	}

	fields := []string{"conversation_id", "role", "content", "metadata", "parent_message_id", "created_ts"}
	args := []any{message.ConversationID, message.Role, message.Content, metadata, message.ParentMessageID, message.CreatedTs}
	stmt := `INSERT INTO message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&message.ID); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return message, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = "+placeholder(len(args)+1)), append(args, *find.ConversationID)
	}
	if len(find.Roles) > 0 {
		marks := make([]string, len(find.Roles))
		for i, role := range find.Roles {
			marks[i] = placeholder(len(args) + 1)
			args = append(args, role)
		}
		where = append(where, "role IN ("+strings.Join(marks, ", ")+")")
	}

	query := `
		SELECT id, conversation_id, role, content, metadata, parent_message_id, tokens_used, processing_time_ms, created_ts
		FROM message
		WHERE ` + strings.Join(where, " AND ")
	if find.Limit > 0 {
		// Take the most recent Limit rows, then flip back to oldest-first.
		args = append(args, find.Limit)
		query = `
			SELECT * FROM (` + query + ` ORDER BY created_ts DESC, id DESC LIMIT ` + placeholder(len(args)) + `) AS recent
			ORDER BY created_ts ASC, id ASC`
	} else {
		query += ` ORDER BY created_ts ASC, id ASC`
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Message, 0)
	for rows.Next() {
		m := &store.Message{}
		var metadata sql.NullString
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.Role, &m.Content, &metadata,
			&m.ParentMessageID, &m.TokensUsed, &m.ProcessingTimeMs, &m.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if m.Metadata, err = unmarshalJSON(metadata); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateMessage(ctx context.Context, update *store.UpdateMessage) (*store.Message, error) {
	set, args := []string{}, []any{}

	if update.Content != nil {
		set, args = append(set, "content = "+placeholder(len(args)+1)), append(args, *update.Content)
	}
	if update.TokensUsed != nil {
		set, args = append(set, "tokens_used = "+placeholder(len(args)+1)), append(args, *update.TokensUsed)
	}
	if update.ProcessingTimeMs != nil {
		set, args = append(set, "processing_time_ms = "+placeholder(len(args)+1)), append(args, *update.ProcessingTimeMs)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE message SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, conversation_id, role, content, metadata, parent_message_id, tokens_used, processing_time_ms, created_ts`
	m := &store.Message{}
	var metadata sql.NullString
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&m.ID, &m.ConversationID, &m.Role, &m.Content, &metadata,
		&m.ParentMessageID, &m.TokensUsed, &m.ProcessingTimeMs, &m.CreatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("message not found")
		}
		return nil, fmt.Errorf("failed to update message: %w", err)
	}
	if m.Metadata, err = unmarshalJSON(metadata); err != nil {
		return nil, err
	}

	return m, nil
}
