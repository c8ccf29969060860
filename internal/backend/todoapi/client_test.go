package todoapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"gtodo/internal/backend/todoapi"
	"gtodo/internal/config"
	"gtodo/internal/service"
	"gtodo/internal/testutil"
)

func newClient(t *testing.T, api *testutil.FakeAPI) *todoapi.Client {
	t.Helper()
	c, err := todoapi.NewWithHTTPClient(api.URL, api.Client(), nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	cfg.APIURL = "ftp://example.com"
	if _, err := todoapi.New(cfg, nil); err == nil {
		t.Fatal("expected error for non-http url")
	}
}

func TestLogin_Success(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()
	api.AddUser("alice", "secret1")

	c := newClient(t, api)
	token, err := c.Login(context.Background(), service.Credentials{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if id, _ := api.LastRequestID.Load().(string); id == "" {
		t.Error("expected X-Request-Id header")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()
	api.AddUser("alice", "secret1")

	c := newClient(t, api)
	_, err := c.Login(context.Background(), service.Credentials{Username: "alice", Password: "wrong"})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if errors.Is(err, service.ErrUnauthorized) {
		t.Error("login rejection must not look like session expiry")
	}
	want := "login: Invalid credentials (HTTP 401)"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestSignup(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()
	c := newClient(t, api)
	ctx := context.Background()

	if err := c.Signup(ctx, service.Credentials{Username: "bob", Password: "hunter22"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := c.Signup(ctx, service.Credentials{Username: "bob", Password: "hunter22"})
	if !errors.Is(err, service.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	err = c.Signup(ctx, service.Credentials{Username: "carol", Password: "abc"})
	if !errors.Is(err, service.ErrRequest) {
		t.Errorf("expected ErrRequest for weak password, got %v", err)
	}
	var apiErr *service.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "Password must be at least 6 characters long" {
		t.Errorf("expected server message, got %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()
	c := newClient(t, api)
	ctx := context.Background()
	token := api.Issue("alice")
	milk := api.AddTodo("alice", "buy milk", false)

	tasks, err := c.ListTasks(ctx, token)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != service.TaskID(strconv.Itoa(milk)) || tasks[0].Name != "buy milk" || tasks[0].Done {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	created, err := c.CreateTask(ctx, token, "call mom")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" || created.Name != "call mom" || created.Done {
		t.Errorf("unexpected created task: %+v", created)
	}

	toggled, err := c.ToggleTask(ctx, token, created.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !toggled.Done || toggled.ID != created.ID {
		t.Errorf("expected done task, got %+v", toggled)
	}

	if err := c.DeleteTask(ctx, token, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	tasks, _ = c.ListTasks(ctx, token)
	if len(tasks) != 1 {
		t.Errorf("expected 1 task after delete, got %d", len(tasks))
	}
}

func TestListTasks_EmptyIsNonNil(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	tasks, err := newClient(t, api).ListTasks(context.Background(), api.Issue("alice"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestAuthenticatedCalls_Unauthorized(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()
	c := newClient(t, api)
	ctx := context.Background()

	revoked := api.Issue("alice")
	api.Revoke(revoked)

	api.TokenTTL = -time.Minute
	expired := api.Issue("alice")

	tests := []struct {
		name  string
		token string
	}{
		{"revoked token", revoked},
		{"expired token", expired},
		{"malformed token", "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.ListTasks(ctx, tt.token); !errors.Is(err, service.ErrUnauthorized) {
				t.Errorf("list: expected ErrUnauthorized, got %v", err)
			}
			if _, err := c.CreateTask(ctx, tt.token, "x"); !errors.Is(err, service.ErrUnauthorized) {
				t.Errorf("create: expected ErrUnauthorized, got %v", err)
			}
			if _, err := c.ToggleTask(ctx, tt.token, "1"); !errors.Is(err, service.ErrUnauthorized) {
				t.Errorf("toggle: expected ErrUnauthorized, got %v", err)
			}
			if err := c.DeleteTask(ctx, tt.token, "1"); !errors.Is(err, service.ErrUnauthorized) {
				t.Errorf("delete: expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestMutations_NotFound(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()
	c := newClient(t, api)
	token := api.Issue("alice")

	if _, err := c.ToggleTask(context.Background(), token, "999"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("toggle: expected ErrNotFound, got %v", err)
	}
	if err := c.DeleteTask(context.Background(), token, "999"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestBearerHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"task_id":"abc","name":"n","done":true}]`))
	}))
	defer srv.Close()

	c, err := todoapi.NewWithHTTPClient(srv.URL, srv.Client(), nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	tasks, err := c.ListTasks(context.Background(), "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Bearer T1" {
		t.Errorf("expected bearer header, got %q", got)
	}
	if len(tasks) != 1 || tasks[0].ID != "abc" || !tasks[0].Done {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
}

func TestServerError_IsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := todoapi.NewWithHTTPClient(srv.URL, srv.Client(), nil)
	_, err := c.CreateTask(context.Background(), "T1", "x")
	if !errors.Is(err, service.ErrRequest) {
		t.Fatalf("expected ErrRequest, got %v", err)
	}
	if service.KindOf(err) != service.KindRequest {
		t.Errorf("expected KindRequest, got %v", service.KindOf(err))
	}
}

func TestTransportError_IsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := todoapi.NewWithHTTPClient(url, http.DefaultClient, nil)
	_, err := c.ListTasks(context.Background(), "T1")
	if !errors.Is(err, service.ErrRequest) {
		t.Fatalf("expected ErrRequest, got %v", err)
	}
}
