package assistant

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// conversationLocks serializes turns per conversation. Two concurrent
// ProcessMessage calls for the same conversation would otherwise interleave
// their exchange histories and placeholder finalization.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[int32]*semaphore.Weighted
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[int32]*semaphore.Weighted)}
}

func (c *conversationLocks) acquire(ctx context.Context, conversationID int32) (release func(), err error) {
	c.mu.Lock()
	sem, ok := c.locks[conversationID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		c.locks[conversationID] = sem
	}
	c.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}
