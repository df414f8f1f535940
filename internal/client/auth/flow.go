package auth

import (
	"sync"

	"github.com/atinyakov/ebudget/internal/models"
)

// Status is the phase of an authentication flow.
type Status int

const (
	Idle Status = iota
	Pending
	Authenticated
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// State is a snapshot of a flow. User is set when Authenticated, Reason
// when Failed.
type State struct {
	Status Status
	User   models.User
	Reason string
}

// Flow is the state machine of one kind of sign-in: Idle, then Pending while
// the backend is asked, then Authenticated or Failed.
type Flow struct {
	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

func newFlow() *Flow {
	return &Flow{subs: make(map[int]func(State))}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe calls fn on every transition until the returned function is
// called.
func (f *Flow) Subscribe(fn func(State)) (unsubscribe func()) {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// begin moves the flow to Pending. It reports false when a run is already
// in progress.
func (f *Flow) begin() bool {
	f.mu.Lock()
	if f.state.Status == Pending {
		f.mu.Unlock()
		return false
	}
	s := State{Status: Pending}
	f.state = s
	subs := f.listeners()
	f.mu.Unlock()

	notify(subs, s)
	return true
}

func (f *Flow) succeed(u models.User) { f.set(State{Status: Authenticated, User: u}) }

func (f *Flow) fail(reason string) { f.set(State{Status: Failed, Reason: reason}) }

func (f *Flow) reset() { f.set(State{Status: Idle}) }

func (f *Flow) set(s State) {
	f.mu.Lock()
	f.state = s
	subs := f.listeners()
	f.mu.Unlock()

	notify(subs, s)
}

// listeners must be called with f.mu held.
func (f *Flow) listeners() []func(State) {
	out := make([]func(State), 0, len(f.subs))
	for _, fn := range f.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s)
	}
}
