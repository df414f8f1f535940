// Package session keeps the credentials of the signed-in user in two forms:
// a durable Store that survives restarts and a volatile Holder read on every
// outgoing request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/atinyakov/ebudget/internal/models"
)

// Store persists the session as a small JSON document and notifies
// subscribers about every change.
type Store struct {
	path string

	mu      sync.Mutex
	current models.Session
	subs    map[chan models.Session]struct{}
}

// Open loads the session kept at path. A missing file yields an empty
// session.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		current: models.EmptySession,
		subs:    make(map[chan models.Session]struct{}),
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer f.Close()

	loaded := models.EmptySession
	if err := json.NewDecoder(f).Decode(&loaded); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if loaded.Token == "" || loaded.UserID <= 0 {
		loaded = models.EmptySession
	}
	s.current = loaded
	return s, nil
}

// Load returns the durable session.
func (s *Store) Load() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Save replaces token and user id together.
func (s *Store) Save(ctx context.Context, sess models.Session) error {
	return s.write(ctx, sess)
}

// Clear removes the persisted credentials.
func (s *Store) Clear(ctx context.Context) error {
	return s.write(ctx, models.EmptySession)
}

func (s *Store) write(ctx context.Context, sess models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFile(s.path, sess); err != nil {
		return err
	}
	s.current = sess
	for ch := range s.subs {
		publish(ch, sess)
	}
	return nil
}

// Subscribe emits the current session and then every saved change until ctx
// is done. A slow reader only sees the newest value.
func (s *Store) Subscribe(ctx context.Context) <-chan models.Session {
	ch := make(chan models.Session, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	publish(ch, s.current)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

// publish replaces whatever is pending in ch with v.
func publish(ch chan models.Session, v models.Session) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// writeFile writes through a temp file so a crash never leaves half a
// session behind.
func writeFile(path string, sess models.Session) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return fmt.Errorf("create session temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	encErr := json.NewEncoder(tmp).Encode(sess)
	closeErr := tmp.Close()
	if err := errors.Join(encErr, closeErr); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
