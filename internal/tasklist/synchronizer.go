// Package tasklist keeps an in-memory copy of the remote task list.
//
// The Synchronizer applies a mutation only after the server confirmed it, so
// the local sequence never diverges from the last confirmed server state
// plus whatever is still in flight. When two results race for the same
// task, the one that arrives last wins.
package tasklist

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"gtodo/internal/service"
	"gtodo/internal/session"
)

var (
	// ErrEmptyName is returned by Add when the name is blank.
	ErrEmptyName = errors.New("task name is required")
	// ErrNotAuthenticated is returned when an operation is attempted while
	// the session is Anonymous.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrStale is returned when a result arrived after the session changed
	// and was discarded.
	ErrStale = errors.New("session changed, result discarded")
)

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// WithAutoRefresh makes the Synchronizer fetch the list in the background
// whenever the session enters Authenticated, and once on construction if it
// already is. ctx bounds those fetches.
func WithAutoRefresh(ctx context.Context) Option {
	return func(s *Synchronizer) { s.autoCtx = ctx }
}

// Synchronizer holds the ordered task sequence of the current session.
type Synchronizer struct {
	svc     service.Service
	session *session.Controller
	logger  *slog.Logger
	autoCtx context.Context

	mu        sync.Mutex
	tasks     []service.Task
	pending   string
	observers map[int]func([]service.Task)
	nextObs   int

	unsubscribe func()
	wg          sync.WaitGroup
}

// New creates a Synchronizer bound to sess.
func New(svc service.Service, sess *session.Controller, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		svc:       svc,
		session:   sess,
		tasks:     []service.Task{},
		observers: make(map[int]func([]service.Task)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	s.unsubscribe = sess.Subscribe(s.sessionChanged)
	if s.autoCtx != nil && sess.Authenticated() {
		s.background()
	}
	return s
}

// Close detaches the Synchronizer from the session and waits for background
// refreshes to finish.
func (s *Synchronizer) Close() {
	s.unsubscribe()
	s.wg.Wait()
}

// sessionChanged drops the sequence of the previous session. Tasks never
// carry over from one token to the next.
func (s *Synchronizer) sessionChanged(snap session.Snapshot) {
	s.mu.Lock()
	s.tasks = []service.Task{}
	s.pending = ""
	obs, tasks := s.observersLocked(), s.copyLocked()
	s.mu.Unlock()
	notify(obs, tasks)

	if snap.Authenticated() && s.autoCtx != nil {
		s.background()
	}
}

func (s *Synchronizer) background() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Refresh(s.autoCtx); err != nil {
			s.logger.Warn("background refresh failed", "error", err)
		}
	}()
}

// Tasks returns a copy of the current sequence.
func (s *Synchronizer) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Find returns the task with the given id.
func (s *Synchronizer) Find(id service.TaskID) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return service.Task{}, false
}

// At returns the task at 1-based position n.
func (s *Synchronizer) At(n int) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n > len(s.tasks) {
		return service.Task{}, false
	}
	return s.tasks[n-1], true
}

// Pending returns the text waiting to be added.
func (s *Synchronizer) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// SetPending records the text waiting to be added.
func (s *Synchronizer) SetPending(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = text
}

// Subscribe registers fn to be called with a copy of the sequence after
// every applied change. The returned func unsubscribes.
func (s *Synchronizer) Subscribe(fn func([]service.Task)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Refresh replaces the sequence with the server's list.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	snap, err := s.snapshot()
	if err != nil {
		return err
	}
	tasks, err := s.svc.ListTasks(ctx, snap.Token)
	if err != nil {
		return s.observe(snap, "refresh", err)
	}
	return s.apply(snap, "refresh", func() {
		s.tasks = append([]service.Task{}, tasks...)
	})
}

// Add creates a task named name and appends it. The pending input is
// cleared on success and kept on failure.
func (s *Synchronizer) Add(ctx context.Context, name string) (service.Task, error) {
	if strings.TrimSpace(name) == "" {
		return service.Task{}, ErrEmptyName
	}
	snap, err := s.snapshot()
	if err != nil {
		return service.Task{}, err
	}
	task, err := s.svc.CreateTask(ctx, snap.Token, name)
	if err != nil {
		return service.Task{}, s.observe(snap, "add", err)
	}
	err = s.apply(snap, "add", func() {
		s.tasks = append(s.tasks, task)
		s.pending = ""
	})
	return task, err
}

// Toggle flips the done flag of task id, taking the new value from the server.
func (s *Synchronizer) Toggle(ctx context.Context, id service.TaskID) (service.Task, error) {
	snap, err := s.snapshot()
	if err != nil {
		return service.Task{}, err
	}
	task, err := s.svc.ToggleTask(ctx, snap.Token, id)
	if err != nil {
		return service.Task{}, s.failed(ctx, snap, "toggle", err)
	}
	err = s.apply(snap, "toggle", func() {
		// A task removed locally while the toggle was in flight stays removed.
		if i := s.indexLocked(id); i >= 0 {
			s.tasks[i].Done = task.Done
		}
	})
	return task, err
}

// Remove deletes task id.
func (s *Synchronizer) Remove(ctx context.Context, id service.TaskID) error {
	snap, err := s.snapshot()
	if err != nil {
		return err
	}
	if err := s.svc.DeleteTask(ctx, snap.Token, id); err != nil {
		return s.failed(ctx, snap, "remove", err)
	}
	return s.apply(snap, "remove", func() {
		if i := s.indexLocked(id); i >= 0 {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		}
	})
}

func (s *Synchronizer) snapshot() (session.Snapshot, error) {
	snap := s.session.Snapshot()
	if !snap.Authenticated() {
		return snap, ErrNotAuthenticated
	}
	return snap, nil
}

// observe reports err to the session. A failure that arrives after the
// session changed is discarded like a late success and yields ErrStale.
func (s *Synchronizer) observe(snap session.Snapshot, op string, err error) error {
	if !s.session.Current(snap.Generation) {
		s.logger.Debug("discarding stale failure", "op", op, "generation", snap.Generation, "error", err)
		return ErrStale
	}
	return s.session.Observe(snap, err)
}

// failed is observe for toggle and remove. When the target is gone the list
// is reloaded once.
func (s *Synchronizer) failed(ctx context.Context, snap session.Snapshot, op string, err error) error {
	err = s.observe(snap, op, err)
	if errors.Is(err, service.ErrNotFound) {
		if rerr := s.Refresh(ctx); rerr != nil {
			s.logger.Warn("refresh after not found failed", "error", rerr)
		}
	}
	return err
}

// apply runs mutate under the lock if snap is still the live session.
func (s *Synchronizer) apply(snap session.Snapshot, op string, mutate func()) error {
	s.mu.Lock()
	if !s.session.Current(snap.Generation) {
		s.mu.Unlock()
		s.logger.Debug("discarding stale result", "op", op, "generation", snap.Generation)
		return ErrStale
	}
	mutate()
	obs, tasks := s.observersLocked(), s.copyLocked()
	s.mu.Unlock()

	s.logger.Debug("applied", "op", op, "tasks", len(tasks))
	notify(obs, tasks)
	return nil
}

func (s *Synchronizer) indexLocked(id service.TaskID) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Synchronizer) copyLocked() []service.Task {
	return append([]service.Task{}, s.tasks...)
}

func (s *Synchronizer) observersLocked() []func([]service.Task) {
	obs := make([]func([]service.Task), 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if fn, ok := s.observers[i]; ok {
			obs = append(obs, fn)
		}
	}
	return obs
}

func notify(obs []func([]service.Task), tasks []service.Task) {
	for _, fn := range obs {
		fn(tasks)
	}
}
