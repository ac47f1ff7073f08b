// Package notifier is the fire-and-forget progress event sink. Publishing is
// best-effort: failures are logged and swallowed, they never gate the
// operation that emitted the event.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
)

// Event names published by the assistant and catalog layers.
const (
	EventAssistantProcessing = "assistant.processing"
	EventIterationComplete   = "iteration.complete"
	EventMessageComplete     = "message.complete"
	EventProductCreated      = "product.created"
	EventProductUpdated      = "product.updated"
	EventProductDeleted      = "product.deleted"
	EventProductsListed      = "products.listed"
)

// TopicProducts carries catalog mutation events.
const TopicProducts = "products"

// ConversationTopic returns the per-conversation progress topic.
func ConversationTopic(conversationID int32) string {
	return fmt.Sprintf("conversation.%d", conversationID)
}

// Event is a single published notification.
type Event struct {
	Name    string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Notifier publishes events to a topic. Implementations must be non-blocking
// from the caller's perspective and must never return publish failures to
// business logic; Publish's error is for implementations' internal plumbing
// and is ignored by callers.
type Notifier interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// Emit publishes best-effort, logging failures instead of returning them.
func Emit(ctx context.Context, n Notifier, topic string, event Event) {
	if n == nil {
		return
	}
	if err := n.Publish(ctx, topic, event); err != nil {
		slog.Warn("notification publish failed", "topic", topic, "event", event.Name, "error", err)
	}
}

// SlogNotifier writes events to the structured log. It is the default sink
// when no broker is configured.
type SlogNotifier struct{}

func NewSlogNotifier() *SlogNotifier {
	return &SlogNotifier{}
}

func (n *SlogNotifier) Publish(_ context.Context, topic string, event Event) error {
	slog.Info("notify", "topic", topic, "event", event.Name, "payload", event.Payload)
	return nil
}
