package channel

import "errors"

// Dir selects which operation a case performs on its channel
type Dir uint8

const (
	// DirSend attempts to buffer the case's Value
	DirSend Dir = iota
	// DirRecv attempts to dequeue a value
	DirRecv
)

var (
	// ErrNoCases is returned by Select when given nothing to wait on
	ErrNoCases = errors.New("select requires at least one case")

	errNilChannel       = errors.New("select case channel is nil")
	errInvalidDirection = errors.New("select case direction invalid")
)

// Case binds a channel to the operation a Select invocation should attempt
// on it. Value carries the payload for DirSend and is ignored for DirRecv.
type Case[T any] struct {
	Chan  *Channel[T]
	Dir   Dir
	Value T
}

// Select blocks until one of cases can complete, performs it, and returns
// the case index. For a DirRecv case the dequeued payload is returned; for
// DirSend the returned value is the zero value. When several cases are ready
// at once the lowest index wins. Any terminal error, including ErrClosed
// from a closed channel, is returned together with the index of the case
// that produced it.
//
// Select never holds more than one channel lock at a time: it registers its
// notifier with each target in index order, polls the non-blocking
// operations, and parks on the notifier between rounds. Every successful
// send, successful receive and close on a registered channel posts the
// notifier under that channel's lock, so a wake-up between poll and park is
// retained rather than lost.
func Select[T any](cases []Case[T]) (int, T, error) {
	var zero T
	if len(cases) == 0 {
		return -1, zero, ErrNoCases
	}

	n, err := newNotifier()
	if err != nil {
		return -1, zero, err
	}

	for i := range cases {
		err := registerCase(cases[i], n)
		if err != nil {
			// Unwind registrations made so far; leaving the handle behind
			// would have channels posting a notifier nobody owns.
			for j := 0; j < i; j++ {
				cases[j].Chan.unregisterWaiter(n)
			}
			return i, zero, err
		}
	}

	for {
		for i := range cases {
			var v T
			var err error
			switch cases[i].Dir {
			case DirSend:
				err = cases[i].Chan.TrySend(cases[i].Value)
			case DirRecv:
				v, err = cases[i].Chan.TryReceive()
			default:
				err = errInvalidDirection
			}
			if errors.Is(err, ErrFull) || errors.Is(err, ErrEmpty) {
				continue
			}
			unregisterAll(cases, n)
			return i, v, err
		}
		n.wait()
	}
}

func registerCase[T any](c Case[T], n *notifier) error {
	if c.Chan == nil {
		return errNilChannel
	}
	if c.Dir != DirSend && c.Dir != DirRecv {
		return errInvalidDirection
	}
	return c.Chan.registerWaiter(n)
}

func unregisterAll[T any](cases []Case[T], n *notifier) {
	for i := range cases {
		cases[i].Chan.unregisterWaiter(n)
	}
}
