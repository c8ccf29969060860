// Package session owns the bearer token lifecycle of the client.
//
// A Controller is either Anonymous (no token) or Authenticated (a non-empty
// token). It moves to Authenticated on a successful login and back to
// Anonymous on logout or when any API call made under the current token is
// rejected as unauthorized. Every transition bumps a generation counter;
// callers capture a Snapshot before issuing a request and check it is still
// Current before applying the result.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gtodo/internal/credstore"
	"gtodo/internal/service"
)

// State is the authentication state of a session.
type State int

const (
	// Anonymous means no token is held.
	Anonymous State = iota
	// Authenticated means a non-empty token is held.
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	State      State
	Token      string
	Generation uint64
}

// Authenticated reports whether the snapshot holds a token.
func (s Snapshot) Authenticated() bool {
	return s.State == Authenticated
}

// ErrMissingCredentials is returned when username or password is empty.
var ErrMissingCredentials = errors.New("username and password are required")

// Controller owns the current token and keeps it in sync with a credstore.Store.
type Controller struct {
	mu        sync.Mutex
	store     credstore.Store
	svc       service.Service
	logger    *slog.Logger
	token     string
	gen       uint64
	observers map[int]func(Snapshot)
	nextObs   int
}

// New creates a Controller, restoring the token held by store.
// The session starts Authenticated iff store holds a non-empty token.
func New(store credstore.Store, svc service.Service, logger *slog.Logger) (*Controller, error) {
	token, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{
		store:     store,
		svc:       svc,
		logger:    logger,
		token:     token,
		observers: make(map[int]func(Snapshot)),
	}
	if token != "" {
		c.gen = 1
		logger.Debug("session restored")
	}
	return c, nil
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{Token: c.token, Generation: c.gen}
	if c.token != "" {
		s.State = Authenticated
	}
	return s
}

// Authenticated reports whether the session holds a token.
func (c *Controller) Authenticated() bool {
	return c.Snapshot().Authenticated()
}

// Current reports whether gen is still the live Authenticated generation.
func (c *Controller) Current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != "" && c.gen == gen
}

// Subscribe registers fn to be called with the new snapshot after every
// transition. fn runs on the goroutine that caused the transition and must
// not call back into a blocking Controller method. The returned func
// unsubscribes.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Login exchanges creds for a token and moves to Authenticated.
// The token is stored before the in-memory state changes; if storing fails
// the session is left as it was.
func (c *Controller) Login(ctx context.Context, creds service.Credentials) error {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return ErrMissingCredentials
	}

	token, err := c.svc.Login(ctx, creds)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if err := c.store.Set(token); err != nil {
		c.mu.Unlock()
		return err
	}
	c.token = token
	c.gen++
	snap := c.snapshotLocked()
	obs := c.observersLocked()
	c.mu.Unlock()

	c.logger.Info("session started", "generation", snap.Generation)
	notify(obs, snap)
	return nil
}

// Signup creates an account. It never changes the session state.
func (c *Controller) Signup(ctx context.Context, creds service.Credentials) error {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return ErrMissingCredentials
	}
	return c.svc.Signup(ctx, creds)
}

// Logout moves to Anonymous. The in-memory session is always cleared;
// a failure to clear the store is returned.
func (c *Controller) Logout() error {
	if err := c.end("logout", 0); err != nil {
		return fmt.Errorf("logged out, but %w", err)
	}
	return nil
}

// Observe reports the outcome of an API call made under snap.
// An unauthorized error while snap is still current forces the session to
// Anonymous. err is returned unchanged so callers can write
// `return c.Observe(snap, err)`.
func (c *Controller) Observe(snap Snapshot, err error) error {
	if err == nil || !errors.Is(err, service.ErrUnauthorized) || snap.Generation == 0 {
		return err
	}
	if clearErr := c.end("expired", snap.Generation); clearErr != nil {
		c.logger.Error("failed to clear expired token", "error", clearErr)
	}
	return err
}

// end clears the token in memory and in the store, then notifies observers.
// A non-zero gen restricts the transition to that generation.
func (c *Controller) end(reason string, gen uint64) error {
	c.mu.Lock()
	if gen != 0 && (c.token == "" || c.gen != gen) {
		c.mu.Unlock()
		return nil
	}
	if c.token == "" {
		c.mu.Unlock()
		// Nothing held in memory; still make sure the slot is empty.
		return c.store.Clear()
	}
	storeErr := c.store.Clear()
	c.token = ""
	c.gen++
	snap := c.snapshotLocked()
	obs := c.observersLocked()
	c.mu.Unlock()

	c.logger.Info("session ended", "reason", reason, "generation", snap.Generation)
	notify(obs, snap)
	return storeErr
}

func (c *Controller) observersLocked() []func(Snapshot) {
	obs := make([]func(Snapshot), 0, len(c.observers))
	for i := 0; i < c.nextObs; i++ {
		if fn, ok := c.observers[i]; ok {
			obs = append(obs, fn)
		}
	}
	return obs
}

func notify(obs []func(Snapshot), snap Snapshot) {
	for _, fn := range obs {
		fn(snap)
	}
}
