// Package todoapi implements the service.Service interface over the to-do HTTP API.
package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"gtodo/internal/config"
	"gtodo/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = config.DefaultTimeout

	// RequestIDHeader carries a per-request correlation ID.
	RequestIDHeader = "X-Request-Id"

	loginPath  = "/login"
	signupPath = "/signup"
	todosPath  = "/api/todos"
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a client for the API configured in cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	c, err := NewWithHTTPClient(cfg.APIURL, &http.Client{}, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		c.timeout = cfg.Timeout
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url: %s", baseURL)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		timeout:    APITimeout,
		logger:     logger,
	}, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (string, error) {
	const op = "login"
	var reply struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, op, http.MethodPost, loginPath, "", creds, &reply); err != nil {
		return "", err
	}
	if reply.AccessToken == "" {
		return "", &service.Error{Op: op, Kind: service.KindRequest, Message: "no access token in response"}
	}
	return reply.AccessToken, nil
}

// Signup creates an account.
// The API also returns a token on signup; it is ignored so that login stays explicit.
func (c *Client) Signup(ctx context.Context, creds service.Credentials) error {
	return c.do(ctx, "signup", http.MethodPost, signupPath, "", creds, nil)
}

// ListTasks returns the user's tasks in server order.
func (c *Client) ListTasks(ctx context.Context, token string) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, "list tasks", http.MethodGet, todosPath, token, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, token, name string) (service.Task, error) {
	var task service.Task
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := c.do(ctx, "create task", http.MethodPost, todosPath, token, body, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// ToggleTask flips the done flag of a task.
func (c *Client) ToggleTask(ctx context.Context, token string, id service.TaskID) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, "toggle task", http.MethodPut, taskPath(id), token, struct{}{}, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, token string, id service.TaskID) error {
	return c.do(ctx, "delete task", http.MethodDelete, taskPath(id), token, nil, nil)
}

func taskPath(id service.TaskID) string {
	return todosPath + "/" + url.PathEscape(string(id))
}

// do sends one request and decodes a 2xx JSON reply into out.
// An empty token sends no Authorization header.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &service.Error{Op: op, Kind: service.KindRequest, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return &service.Error{Op: op, Kind: service.KindRequest, Err: fmt.Errorf("create request: %w", err)}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "op", op, "method", method, "path", path,
			"request_id", reqID, "error", err)
		return wrapTransportError(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "op", op, "method", method, "path", path,
		"request_id", reqID, "status", resp.StatusCode, "duration", time.Since(start))

	if err := googleapi.CheckResponse(resp); err != nil {
		return classify(op, token != "", err)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &service.Error{Op: op, Kind: service.KindRequest, Status: resp.StatusCode,
			Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// wrapTransportError wraps network errors with user-friendly messages.
func wrapTransportError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &service.Error{Op: op, Kind: service.KindRequest, Message: "request timed out", Err: err}
	}
	return &service.Error{Op: op, Kind: service.KindRequest, Err: err}
}

// classify maps a non-2xx response to the service error taxonomy.
// authenticated reports whether the request carried a bearer token.
func classify(op string, authenticated bool, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &service.Error{Op: op, Kind: service.KindRequest, Err: err}
	}

	e := &service.Error{
		Op:      op,
		Kind:    service.KindRequest,
		Status:  gerr.Code,
		Message: serverMessage(gerr),
	}

	switch {
	case gerr.Code == http.StatusUnauthorized && !authenticated:
		e.Kind = service.KindInvalidCredentials
	case gerr.Code == http.StatusUnauthorized:
		e.Kind = service.KindUnauthorized
	case gerr.Code == http.StatusUnprocessableEntity && authenticated:
		// The server answers 422 for a bearer token it cannot decode.
		e.Kind = service.KindUnauthorized
	case gerr.Code == http.StatusNotFound && authenticated:
		e.Kind = service.KindNotFound
	case gerr.Code == http.StatusConflict:
		e.Kind = service.KindConflict
	case gerr.Code == http.StatusBadRequest && op == "signup" &&
		strings.Contains(strings.ToLower(e.Message), "already exists"):
		e.Kind = service.KindConflict
	}
	return e
}

// serverMessage extracts the human-readable message from an error body.
// The API uses {"msg": ...} for auth routes and {"message": ...} for task routes.
func serverMessage(gerr *googleapi.Error) string {
	var body struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(gerr.Body), &body); err == nil {
		for _, m := range []string{body.Msg, body.Message, body.Error} {
			if m != "" {
				return m
			}
		}
	}
	if gerr.Message != "" {
		return gerr.Message
	}
	return http.StatusText(gerr.Code)
}
