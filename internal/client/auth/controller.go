// Package auth drives sign-in, registration and sign-out, and keeps the
// durable and in-memory copies of the session in agreement.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/client/session"
	"github.com/atinyakov/ebudget/internal/models"
)

var (
	// ErrInFlight is returned when the same flow is already waiting for the
	// backend.
	ErrInFlight = errors.New("request already in progress")
	// ErrSignedOut is returned by a login or registration that completed
	// after Logout. Its result is discarded.
	ErrSignedOut = errors.New("signed out while the request was in progress")
	// ErrMissingField is returned when a required credential is empty.
	ErrMissingField = errors.New("all fields are required")
)

// Remote is the part of the backend needed to obtain a token.
type Remote interface {
	Login(ctx context.Context, req models.LoginRequest) (models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
}

// SessionStore is the durable home of the session.
type SessionStore interface {
	Load() models.Session
	Save(ctx context.Context, sess models.Session) error
	Clear(ctx context.Context) error
}

// Controller owns the login and register flows.
type Controller struct {
	remote Remote
	store  SessionStore
	holder *session.Holder
	log    *zap.Logger

	login    *Flow
	register *Flow

	// mu orders session publication against Logout; gen counts logouts.
	mu  sync.Mutex
	gen uint64
}

// NewController wires a controller. log may be nil.
func NewController(remote Remote, store SessionStore, holder *session.Holder, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		remote:   remote,
		store:    store,
		holder:   holder,
		log:      log,
		login:    newFlow(),
		register: newFlow(),
	}
}

// LoginFlow exposes the state of the login flow.
func (c *Controller) LoginFlow() *Flow { return c.login }

// RegisterFlow exposes the state of the register flow.
func (c *Controller) RegisterFlow() *Flow { return c.register }

// Session returns the in-memory session used by outgoing requests.
func (c *Controller) Session() models.Session { return c.holder.Current() }

// Restore copies the durable session into memory. It is called once at
// start-up.
func (c *Controller) Restore(ctx context.Context) (models.Session, error) {
	if err := ctx.Err(); err != nil {
		return models.EmptySession, err
	}
	sess := c.store.Load()
	if !sess.Valid() {
		c.holder.Clear()
		return models.EmptySession, nil
	}
	c.holder.Set(sess)
	c.log.Debug("session restored", zap.Int64("user_id", sess.UserID))
	return sess, nil
}

// Login signs in with email and password.
func (c *Controller) Login(ctx context.Context, email, password string) (models.User, error) {
	return c.run(ctx, c.login, func() (models.User, error) {
		email = strings.TrimSpace(email)
		if email == "" || password == "" {
			return models.User{}, ErrMissingField
		}
		return c.remote.Login(ctx, models.LoginRequest{Email: email, Password: password})
	})
}

// Register creates an account and signs in with it.
func (c *Controller) Register(ctx context.Context, name, email, password string) (models.User, error) {
	return c.run(ctx, c.register, func() (models.User, error) {
		name, email = strings.TrimSpace(name), strings.TrimSpace(email)
		if name == "" || email == "" || password == "" {
			return models.User{}, ErrMissingField
		}
		return c.remote.Register(ctx, models.RegisterRequest{Name: name, Email: email, Password: password})
	})
}

func (c *Controller) run(ctx context.Context, f *Flow, call func() (models.User, error)) (models.User, error) {
	c.mu.Lock()
	if !f.begin() {
		c.mu.Unlock()
		return models.User{}, ErrInFlight
	}
	gen := c.gen
	c.mu.Unlock()

	u, err := call()

	// Flow listeners run while mu is held and must not call back into c.
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Info("discarding result of request overtaken by logout", zap.Error(err))
		return models.User{}, ErrSignedOut
	}
	if err != nil {
		c.log.Info("authentication failed", zap.Error(err))
		f.fail(err.Error())
		return models.User{}, err
	}
	sess := models.SessionOf(u)
	if !sess.Valid() {
		err := fmt.Errorf("backend returned no usable token for user %d", u.ID)
		f.fail(err.Error())
		return models.User{}, err
	}

	prev := c.holder.Current()
	c.holder.Set(sess)
	if err := c.store.Save(ctx, sess); err != nil {
		c.holder.Set(prev)
		err = fmt.Errorf("save session: %w", err)
		c.log.Error("session not persisted", zap.Error(err))
		f.fail(err.Error())
		return models.User{}, err
	}

	c.log.Info("signed in", zap.Int64("user_id", u.ID))
	f.succeed(u)
	return u, nil
}

// Logout forgets the session locally. The backend is not contacted.
// Requests still in flight are discarded when they complete.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.holder.Clear()
	err := c.store.Clear(ctx)
	c.login.reset()
	c.register.reset()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
