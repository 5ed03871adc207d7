// Package channel implements a bounded multi-producer multi-consumer channel
// with blocking, non-blocking and multi-channel select operations. A channel
// is a mutex-guarded FIFO ring buffer plus a closed flag; blocked senders and
// receivers park on condition variables, and select invocations attach a
// counting-semaphore notifier that any progress on the channel posts.
//
// Close is terminal: once a channel is closed every pending and subsequent
// operation returns ErrClosed, including receives while buffered values
// remain.
package channel

import (
	"errors"
	"sync"

	"github.com/thrasher-corp/csp/ring"
)

var (
	// ErrClosed is returned by any operation that observes a closed channel
	ErrClosed = errors.New("channel closed")
	// ErrNotClosed is returned by Release when the channel is still open
	ErrNotClosed = errors.New("channel not closed")
	// ErrFull is returned by TrySend when the buffer is at capacity
	ErrFull = ring.ErrFull
	// ErrEmpty is returned by TryReceive when the buffer holds no values
	ErrEmpty = ring.ErrEmpty
)

// Channel is a bounded FIFO usable by any number of goroutines concurrently.
// A capacity of zero yields a channel whose buffer is permanently full;
// blocking operations on it complete only when the channel closes.
type Channel[T any] struct {
	mu       sync.Mutex
	buf      *ring.Buffer[T]
	closed   bool
	released bool

	// enqueued is signalled after a successful add and wakes receivers;
	// dequeued is signalled after a successful remove and wakes senders.
	// Senders blocked on a full buffer make progress only when a receiver
	// removes a value, and vice versa.
	enqueued *sync.Cond
	dequeued *sync.Cond

	waiters waiterList
}

// New returns an open channel able to buffer up to capacity values
func New[T any](capacity int) (*Channel[T], error) {
	buf, err := ring.New[T](capacity)
	if err != nil {
		return nil, err
	}
	c := &Channel[T]{buf: buf}
	c.enqueued = sync.NewCond(&c.mu)
	c.dequeued = sync.NewCond(&c.mu)
	return c, nil
}

// Send blocks until v is buffered or the channel closes
func (c *Channel[T]) Send(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if c.closed {
			return ErrClosed
		}
		if err := c.buf.Add(v); err == nil {
			c.enqueued.Signal()
			c.notifyWaiters()
			return nil
		}
		c.dequeued.Wait()
	}
}

// Receive blocks until a value is available or the channel closes. A closed
// channel returns ErrClosed even when buffered values remain.
func (c *Channel[T]) Receive() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if c.closed {
			var zero T
			return zero, ErrClosed
		}
		if v, err := c.buf.Remove(); err == nil {
			c.dequeued.Signal()
			c.notifyWaiters()
			return v, nil
		}
		c.enqueued.Wait()
	}
}

// TrySend buffers v without blocking, returning ErrFull when at capacity
func (c *Channel[T]) TrySend(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := c.buf.Add(v); err != nil {
		return err
	}
	c.enqueued.Signal()
	c.notifyWaiters()
	return nil
}

// TryReceive dequeues without blocking, returning ErrEmpty when nothing is
// buffered
func (c *Channel[T]) TryReceive() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if c.closed {
		return zero, ErrClosed
	}
	v, err := c.buf.Remove()
	if err != nil {
		return zero, err
	}
	c.dequeued.Signal()
	c.notifyWaiters()
	return v, nil
}

// Close marks the channel closed and wakes every blocked sender, receiver
// and attached select. Closing an already closed channel returns ErrClosed.
func (c *Channel[T]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.enqueued.Broadcast()
	c.dequeued.Broadcast()
	c.notifyWaiters()
	return nil
}

// Release drops the channel's buffer and waiter list. The channel must be
// closed and no goroutine may still be operating on it; releasing an open
// channel returns ErrNotClosed and changes nothing.
func (c *Channel[T]) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		return ErrNotClosed
	}
	if c.released {
		return nil
	}
	c.released = true
	c.buf = nil
	c.waiters.clear()
	return nil
}

// Len returns the number of values currently buffered
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return 0
	}
	return c.buf.Len()
}

// Cap returns the channel's buffer capacity
func (c *Channel[T]) Cap() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return 0
	}
	return c.buf.Cap()
}

// notifyWaiters posts every attached select notifier; callers hold c.mu
func (c *Channel[T]) notifyWaiters() {
	c.waiters.forEach(func(n *notifier) { n.post() })
}

// registerWaiter attaches n unless the channel is already closed
func (c *Channel[T]) registerWaiter(n *notifier) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.waiters.insert(n)
	return nil
}

func (c *Channel[T]) unregisterWaiter(n *notifier) {
	c.mu.Lock()
	c.waiters.remove(n)
	c.mu.Unlock()
}
