package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopmind/shopmind/internal/profile"
	"github.com/shopmind/shopmind/store"
	"github.com/shopmind/shopmind/store/db"
)

func newTestStore(t *testing.T) *store.Store {
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
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestFindOrCreateActiveConversation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	t.Run("authenticated owner is idempotent", func(t *testing.T) {
		userID := int32(42)
		first, err := st.FindOrCreateActiveConversation(ctx, &userID, nil)
		require.NoError(t, err)
		require.NotNil(t, first.UserID)
		require.Nil(t, first.SessionID)
		require.NotEmpty(t, first.UID)

		second, err := st.FindOrCreateActiveConversation(ctx, &userID, nil)
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
	})

	t.Run("session owner is idempotent", func(t *testing.T) {
		sessionID := store.MintSessionID()
		first, err := st.FindOrCreateActiveConversation(ctx, nil, &sessionID)
		require.NoError(t, err)
		require.Nil(t, first.UserID)
		require.NotNil(t, first.SessionID)
		require.Equal(t, sessionID, *first.SessionID)

		second, err := st.FindOrCreateActiveConversation(ctx, nil, &sessionID)
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
	})

	t.Run("archived conversation is not reused", func(t *testing.T) {
		userID := int32(7)
		first, err := st.FindOrCreateActiveConversation(ctx, &userID, nil)
		require.NoError(t, err)

		archived := store.ConversationStatusArchived
		_, err = st.UpdateConversation(ctx, &store.UpdateConversation{ID: first.ID, Status: &archived})
		require.NoError(t, err)

		second, err := st.FindOrCreateActiveConversation(ctx, &userID, nil)
		require.NoError(t, err)
		require.NotEqual(t, first.ID, second.ID)
	})
}

func TestConversationSoftDelete(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	userID := int32(9)
	conversation, err := st.FindOrCreateActiveConversation(ctx, &userID, nil)
	require.NoError(t, err)

	deleted := store.ConversationStatusDeleted
	_, err = st.UpdateConversation(ctx, &store.UpdateConversation{ID: conversation.ID, Status: &deleted})
	require.NoError(t, err)

	listed, err := st.ListConversations(ctx, &store.FindConversation{UserID: &userID, ExcludeDeleted: true})
	require.NoError(t, err)
	require.Empty(t, listed)

	direct, err := st.GetConversation(ctx, &store.FindConversation{ID: &conversation.ID})
	require.NoError(t, err)
	require.NotNil(t, direct)
	require.Equal(t, store.ConversationStatusDeleted, direct.Status)
}

func TestGetConversationContext(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	userID := int32(1)
	conversation, err := st.FindOrCreateActiveConversation(ctx, &userID, nil)
	require.NoError(t, err)

	t.Run("filters roles and keeps order", func(t *testing.T) {
		for _, m := range []struct {
			role    store.MessageRole
			content string
		}{
			{store.MessageRoleUser, "first"},
			{store.MessageRoleSystem, "never surfaced"},
			{store.MessageRoleAssistant, "second"},
			{store.MessageRoleFunction, "never surfaced"},
			{store.MessageRoleUser, "third"},
		} {
			_, err := st.CreateMessage(ctx, &store.CreateMessage{
				ConversationID: conversation.ID,
				Role:           m.role,
				Content:        m.content,
			})
			require.NoError(t, err)
		}

		context20, err := st.GetConversationContext(ctx, conversation.ID, 20)
		require.NoError(t, err)
		require.Len(t, context20, 3)
		require.Equal(t, "first", context20[0].Content)
		require.Equal(t, "second", context20[1].Content)
		require.Equal(t, "third", context20[2].Content)
	})

	t.Run("returns the most recent window oldest-first", func(t *testing.T) {
		other, err := st.CreateConversation(ctx, &store.Conversation{})
		require.NoError(t, err)
		for i := 0; i < 25; i++ {
			_, err := st.CreateMessage(ctx, &store.CreateMessage{
				ConversationID: other.ID,
				Role:           store.MessageRoleUser,
				Content:        fmt.Sprintf("message %d", i),
			})
			require.NoError(t, err)
		}

		window, err := st.GetConversationContext(ctx, other.ID, 20)
		require.NoError(t, err)
		require.Len(t, window, 20)
		require.Equal(t, "message 5", window[0].Content)
		require.Equal(t, "message 24", window[19].Content)
	})
}

func TestToolExecutionLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	conversation, err := st.CreateConversation(ctx, &store.Conversation{})
	require.NoError(t, err)
	message, err := st.CreateMessage(ctx, &store.CreateMessage{
		ConversationID: conversation.ID,
		Role:           store.MessageRoleAssistant,
	})
	require.NoError(t, err)

	execution, err := st.CreateToolExecution(ctx, &store.CreateToolExecution{
		MessageID: message.ID,
		ToolName:  "list_products",
		Arguments: map[string]any{"category": "electronics"},
	})
	require.NoError(t, err)
	require.Equal(t, store.ToolExecutionStatusPending, execution.Status)

	completed, err := st.CompleteToolExecution(ctx, &store.CompleteToolExecution{
		ID:              execution.ID,
		Status:          store.ToolExecutionStatusSuccess,
		Result:          map[string]any{"products": []any{}},
		ExecutionTimeMs: 12,
	})
	require.NoError(t, err)
	require.Equal(t, store.ToolExecutionStatusSuccess, completed.Status)
	require.NotNil(t, completed.ExecutionTimeMs)

	// Terminal executions are immutable.
	_, err = st.CompleteToolExecution(ctx, &store.CompleteToolExecution{
		ID:     execution.ID,
		Status: store.ToolExecutionStatusFailed,
	})
	require.Error(t, err)
}

func TestAssistantMessageFinalization(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	conversation, err := st.CreateConversation(ctx, &store.Conversation{})
	require.NoError(t, err)
	placeholder, err := st.CreateMessage(ctx, &store.CreateMessage{
		ConversationID: conversation.ID,
		Role:           store.MessageRoleAssistant,
		Content:        "",
	})
	require.NoError(t, err)
	require.Empty(t, placeholder.Content)
	require.Nil(t, placeholder.ProcessingTimeMs)

	content := "Here are your products."
	elapsed := int32(340)
	tokens := int32(128)
	final, err := st.UpdateMessage(ctx, &store.UpdateMessage{
		ID:               placeholder.ID,
		Content:          &content,
		ProcessingTimeMs: &elapsed,
		TokensUsed:       &tokens,
	})
	require.NoError(t, err)
	require.Equal(t, content, final.Content)
	require.Equal(t, elapsed, *final.ProcessingTimeMs)
	require.Equal(t, tokens, *final.TokensUsed)
}

func TestProductSearch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.SeedDemoData(ctx))
	// Seeding is a no-op when the catalog is already populated.
	require.NoError(t, st.SeedDemoData(ctx))

	categories, err := st.ListCategories(ctx, &store.FindCategory{})
	require.NoError(t, err)
	require.Len(t, categories, 5)

	t.Run("by category name", func(t *testing.T) {
		name := "Electronics"
		products, err := st.ListProducts(ctx, &store.FindProduct{CategoryName: &name})
		require.NoError(t, err)
		require.NotEmpty(t, products)
		for _, p := range products {
			require.NotNil(t, p.CategoryID)
		}
	})

	t.Run("by name substring", func(t *testing.T) {
		search := "macbook"
		products, err := st.ListProducts(ctx, &store.FindProduct{NameSearch: &search})
		require.NoError(t, err)
		require.NotEmpty(t, products)
	})

	t.Run("unknown category matches nothing", func(t *testing.T) {
		name := "nonexistent"
		products, err := st.ListProducts(ctx, &store.FindProduct{CategoryName: &name})
		require.NoError(t, err)
		require.Empty(t, products)
	})
}
