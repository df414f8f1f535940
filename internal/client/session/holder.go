package session

import (
	"sync/atomic"

	"github.com/atinyakov/ebudget/internal/models"
)

// Holder is the in-memory copy of the session. It is published as a single
// reference so a reader never sees a token from one login and a user id
// from another.
type Holder struct {
	p atomic.Pointer[models.Session]
}

// NewHolder returns an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the session visible to new requests.
func (h *Holder) Current() models.Session {
	if s := h.p.Load(); s != nil {
		return *s
	}
	return models.EmptySession
}

// Set publishes sess. Calls issued after Set returns observe it.
func (h *Holder) Set(sess models.Session) {
	h.p.Store(&sess)
}

// Clear forgets the session.
func (h *Holder) Clear() {
	h.p.Store(nil)
}

// Token returns the current bearer token, or "" when signed out.
func (h *Holder) Token() string {
	return h.Current().Token
}
