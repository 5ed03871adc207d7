package channel

import (
	"sync"

	"github.com/gofrs/uuid"
)

// notifier is the counting semaphore a select invocation parks on. Every
// channel the invocation registers with posts it under that channel's lock,
// so posts that land while the owner is still polling are retained and
// consumed by the next wait rather than lost.
type notifier struct {
	id    uuid.UUID
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func newNotifier() (*notifier, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	n := &notifier{id: id}
	n.cond = sync.NewCond(&n.mu)
	return n, nil
}

// post records one pending wake-up; it never blocks
func (n *notifier) post() {
	n.mu.Lock()
	n.count++
	n.mu.Unlock()
	n.cond.Signal()
}

// wait blocks until at least one post is pending, then consumes it
func (n *notifier) wait() {
	n.mu.Lock()
	for n.count == 0 {
		n.cond.Wait()
	}
	n.count--
	n.mu.Unlock()
}
