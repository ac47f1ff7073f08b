package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopmind/shopmind/store"
)

func (d *DB) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	metadata, err := marshalJSON(create.Metadata)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO conversation (uid, user_id, session_id, title, status, metadata, last_message_ts, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID, create.UserID, create.SessionID, create.Title, create.Status,
		metadata, create.LastMessageTs, create.CreatedTs, create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return create, nil
}

func (d *DB) ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = ?"), append(args, *find.UserID)
	}
	if find.SessionID != nil {
		where, args = append(where, "session_id = ?"), append(args, *find.SessionID)
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, *find.Status)
	}
	if find.ExcludeDeleted {
		where, args = append(where, "status != ?"), append(args, store.ConversationStatusDeleted)
	}

	query := `
		SELECT id, uid, user_id, session_id, title, status, metadata, last_message_ts, created_ts, updated_ts
		FROM conversation
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY last_message_ts DESC, updated_ts DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateConversation(ctx context.Context, update *store.UpdateConversation) (*store.Conversation, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = ?"), append(args, *update.Title)
	}
	if update.Status != nil {
		set, args = append(set, "status = ?"), append(args, *update.Status)
	}
	if update.Metadata != nil {
		metadata, err := marshalJSON(update.Metadata)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "metadata = ?"), append(args, metadata)
	}
	if update.LastMessageTs != nil {
		set, args = append(set, "last_message_ts = ?"), append(args, *update.LastMessageTs)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `
		UPDATE conversation SET ` + strings.Join(set, ", ") + `
		WHERE id = ?
		RETURNING id, uid, user_id, session_id, title, status, metadata, last_message_ts, created_ts, updated_ts`
	row := d.db.QueryRowContext(ctx, stmt, args...)
	c, err := scanConversationRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("conversation not found")
		}
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(s rowScanner) (*store.Conversation, error) {
	c := &store.Conversation{}
	var metadata sql.NullString
	if err := s.Scan(
		&c.ID, &c.UID, &c.UserID, &c.SessionID, &c.Title, &c.Status,
		&metadata, &c.LastMessageTs, &c.CreatedTs, &c.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}
	m, err := unmarshalJSON(metadata)
	if err != nil {
		return nil, err
	}
	c.Metadata = m
	return c, nil
}

func scanConversationRow(row *sql.Row) (*store.Conversation, error) {
	c := &store.Conversation{}
	var metadata sql.NullString
	if err := row.Scan(
		&c.ID, &c.UID, &c.UserID, &c.SessionID, &c.Title, &c.Status,
		&metadata, &c.LastMessageTs, &c.CreatedTs, &c.UpdatedTs,
	); err != nil {
		return nil, err
	}
	m, err := unmarshalJSON(metadata)
	if err != nil {
		return nil, err
	}
	c.Metadata = m
	return c, nil
}
