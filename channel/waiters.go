package channel

import "container/list"

// waiterList tracks the select notifiers currently attached to a channel.
// Access is guarded by the owning channel's mutex. The same handle may be
// held by many lists at once; each list carries at most the entries inserted
// into it and removal matches on notifier identity.
type waiterList struct {
	handles list.List
}

func (w *waiterList) insert(n *notifier) {
	w.handles.PushBack(n)
}

// remove detaches one entry carrying n's identity, if any
func (w *waiterList) remove(n *notifier) {
	for e := w.handles.Front(); e != nil; e = e.Next() {
		if e.Value.(*notifier).id == n.id {
			w.handles.Remove(e)
			return
		}
	}
}

func (w *waiterList) forEach(f func(*notifier)) {
	for e := w.handles.Front(); e != nil; e = e.Next() {
		f(e.Value.(*notifier))
	}
}

func (w *waiterList) len() int {
	return w.handles.Len()
}

func (w *waiterList) clear() {
	w.handles.Init()
}
