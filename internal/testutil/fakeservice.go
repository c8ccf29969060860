// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"gtodo/internal/service"
)

// Errors returned by FakeService, classified like the HTTP backend's.
var (
	ErrUnauthorized = &service.Error{Op: "fake", Kind: service.KindUnauthorized, Status: 401}
	ErrNotFound     = &service.Error{Op: "fake", Kind: service.KindNotFound, Status: 404, Message: "Task not found"}
	ErrRequest      = &service.Error{Op: "fake", Kind: service.KindRequest, Message: "connection refused"}
)

// FakeService is an in-memory implementation of service.Service for testing.
// Tokens have the form "T<n>" and belong to the user who logged in.
type FakeService struct {
	mu      sync.RWMutex
	users   map[string]string // username -> password
	tokens  map[string]string // token -> username
	tasks   map[string][]service.Task
	nextID  int
	issued  int
	calls   map[string]int
	Blocked chan struct{} // when non-nil, every call waits for a receive or close

	// Error injection for testing
	LoginErr      error
	SignupErr     error
	ListTasksErr  error
	CreateTaskErr error
	ToggleTaskErr error
	DeleteTaskErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]string),
		tokens: make(map[string]string),
		tasks:  make(map[string][]service.Task),
		calls:  make(map[string]int),
		nextID: 1,
	}
}

// AddUser registers a user.
func (f *FakeService) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// AddToken makes token valid for username without a login call.
func (f *FakeService) AddToken(token, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = username
}

// Revoke invalidates token.
func (f *FakeService) Revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = ""
}

// AddTask adds a task for username and returns it.
func (f *FakeService) AddTask(username, name string, done bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: service.TaskID(strconv.Itoa(f.nextID)), Name: name, Done: done}
	f.nextID++
	f.tasks[username] = append(f.tasks[username], t)
	return t
}

// ServerTasks returns the tasks the server holds for username.
func (f *FakeService) ServerTasks(username string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task{}, f.tasks[username]...)
}

// Calls returns how many times op was called.
func (f *FakeService) Calls(op string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *FakeService) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	blocked := f.Blocked
	f.mu.Unlock()
	if blocked != nil {
		select {
		case <-blocked:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// user resolves token to a username. Caller holds f.mu.
func (f *FakeService) user(token string) (string, error) {
	u := f.tokens[token]
	if u == "" {
		return "", ErrUnauthorized
	}
	return u, nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (string, error) {
	if err := f.enter(ctx, "login"); err != nil {
		return "", err
	}
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	pw, ok := f.users[creds.Username]
	if !ok || pw != creds.Password {
		return "", &service.Error{Op: "login", Kind: service.KindInvalidCredentials, Status: 401, Message: "Invalid credentials"}
	}
	// Tokens are never reused, including ones added or revoked by the test.
	var token string
	for {
		f.issued++
		token = "T" + strconv.Itoa(f.issued)
		if _, used := f.tokens[token]; !used {
			break
		}
	}
	f.tokens[token] = creds.Username
	return token, nil
}

// Signup implements service.Service.
func (f *FakeService) Signup(ctx context.Context, creds service.Credentials) error {
	if err := f.enter(ctx, "signup"); err != nil {
		return err
	}
	if f.SignupErr != nil {
		return f.SignupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[creds.Username]; exists {
		return &service.Error{Op: "signup", Kind: service.KindConflict, Status: 400, Message: "Username already exists"}
	}
	f.users[creds.Username] = creds.Password
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, token string) ([]service.Task, error) {
	if err := f.enter(ctx, "list"); err != nil {
		return nil, err
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, err := f.user(token)
	if err != nil {
		return nil, err
	}
	return append([]service.Task{}, f.tasks[u]...), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, token, name string) (service.Task, error) {
	if err := f.enter(ctx, "create"); err != nil {
		return service.Task{}, err
	}
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.user(token)
	if err != nil {
		return service.Task{}, err
	}
	t := service.Task{ID: service.TaskID(strconv.Itoa(f.nextID)), Name: name}
	f.nextID++
	f.tasks[u] = append(f.tasks[u], t)
	return t, nil
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, token string, id service.TaskID) (service.Task, error) {
	if err := f.enter(ctx, "toggle"); err != nil {
		return service.Task{}, err
	}
	if f.ToggleTaskErr != nil {
		return service.Task{}, f.ToggleTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.user(token)
	if err != nil {
		return service.Task{}, err
	}
	for i, t := range f.tasks[u] {
		if t.ID == id {
			f.tasks[u][i].Done = !t.Done
			return f.tasks[u][i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, token string, id service.TaskID) error {
	if err := f.enter(ctx, "delete"); err != nil {
		return err
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.user(token)
	if err != nil {
		return err
	}
	tasks := f.tasks[u]
	for i, t := range tasks {
		if t.ID == id {
			f.tasks[u] = append(tasks[:i:i], tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
