package cache

import "sync"

// hub fans the latest view of an owner out to its live queries. Every
// subscriber channel has room for one value; a newer view replaces one the
// reader has not picked up yet.
type hub[T any] struct {
	mu   sync.Mutex
	subs map[int64]map[chan T]struct{}
}

func newHub[T any]() *hub[T] {
	return &hub[T]{subs: make(map[int64]map[chan T]struct{})}
}

func (h *hub[T]) add(owner int64, initial T) chan T {
	ch := make(chan T, 1)
	ch <- initial

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[chan T]struct{})
	}
	h.subs[owner][ch] = struct{}{}
	return ch
}

func (h *hub[T]) remove(owner int64, ch chan T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[owner]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(h.subs, owner)
	}
	close(ch)
}

func (h *hub[T]) watched(owner int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[owner]) > 0
}

func (h *hub[T]) publish(owner int64, v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[owner] {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

func (h *hub[T]) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for owner, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, owner)
	}
}
