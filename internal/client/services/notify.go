package services

import "sync"

// notifier fans state snapshots out to subscribers. Callbacks run on the
// goroutine that changed the state, outside of any flow lock.
type notifier[S any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(S)
}

func (n *notifier[S]) subscribe(fn func(S)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]func(S))
	}
	id := n.next
	n.next++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *notifier[S]) publish(s S) {
	n.mu.Lock()
	fns := make([]func(S), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
