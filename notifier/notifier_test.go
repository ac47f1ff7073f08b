package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingNotifier struct {
	calls int
}

func (n *failingNotifier) Publish(_ context.Context, _ string, _ Event) error {
	n.calls++
	return errors.New("broker down")
}

func TestEmitSwallowsFailures(t *testing.T) {
	sink := &failingNotifier{}

	// Emit must never panic or surface the publish error.
	Emit(context.Background(), sink, TopicProducts, Event{Name: EventProductCreated})
	require.Equal(t, 1, sink.calls)

	// A nil sink is a no-op.
	Emit(context.Background(), nil, TopicProducts, Event{Name: EventProductCreated})
}

func TestConversationTopic(t *testing.T) {
	require.Equal(t, "conversation.42", ConversationTopic(42))
}

func TestRecorder(t *testing.T) {
	recorder := NewRecorder()
	ctx := context.Background()

	require.NoError(t, recorder.Publish(ctx, ConversationTopic(1), Event{Name: EventAssistantProcessing}))
	require.NoError(t, recorder.Publish(ctx, ConversationTopic(1), Event{Name: EventMessageComplete}))
	require.NoError(t, recorder.Publish(ctx, TopicProducts, Event{Name: EventProductCreated}))

	require.Len(t, recorder.Events(), 3)
	require.Len(t, recorder.EventsNamed(EventAssistantProcessing), 1)
	require.Len(t, recorder.EventsNamed(EventProductCreated), 1)
	require.Empty(t, recorder.EventsNamed(EventProductDeleted))
}
