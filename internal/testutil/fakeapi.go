package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// fakeAPISecret signs the tokens issued by FakeAPI.
var fakeAPISecret = []byte("fake-api-secret")

// FakeAPI is an httptest server that behaves like the remote to-do API.
type FakeAPI struct {
	*httptest.Server

	mu      sync.Mutex
	users   map[string]string // username -> password
	todos   map[string][]apiTodo
	revoked map[string]bool
	nextID  int

	// Requests counts every request received.
	Requests atomic.Int64

	// LastRequestID is the X-Request-Id of the most recent request.
	LastRequestID atomic.Value

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration

	issued atomic.Int64
}

type apiTodo struct {
	TaskID int    `json:"task_id"`
	Name   string `json:"name"`
	Done   bool   `json:"done"`
}

type apiClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewFakeAPI starts a FakeAPI. Close it when done.
func NewFakeAPI() *FakeAPI {
	f := &FakeAPI{
		users:    make(map[string]string),
		todos:    make(map[string][]apiTodo),
		revoked:  make(map[string]bool),
		nextID:   1,
		TokenTTL: time.Hour,
	}

	r := chi.NewRouter()
	r.Use(f.count)
	r.Post("/login", f.login)
	r.Post("/signup", f.signup)
	r.Route("/api/todos", func(r chi.Router) {
		r.Use(f.requireToken)
		r.Get("/", f.listTodos)
		r.Post("/", f.addTodo)
		r.Put("/{id}", f.toggleTodo)
		r.Delete("/{id}", f.deleteTodo)
	})

	f.Server = httptest.NewServer(r)
	return f
}

// AddUser registers a user directly.
func (f *FakeAPI) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// AddTodo adds a task for username and returns its ID.
func (f *FakeAPI) AddTodo(username, name string, done bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.todos[username] = append(f.todos[username], apiTodo{TaskID: id, Name: name, Done: done})
	return id
}

// Revoke makes the server reject token from now on.
func (f *FakeAPI) Revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[token] = true
}

// Issue signs a token for username.
func (f *FakeAPI) Issue(username string) string {
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, apiClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        strconv.FormatInt(f.issued.Add(1), 10),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(f.TokenTTL)),
		},
	}).SignedString(fakeAPISecret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (f *FakeAPI) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.Requests.Add(1)
		f.LastRequestID.Store(r.Header.Get("X-Request-Id"))
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
			return
		}

		var claims apiClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
			return fakeAPISecret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
				return
			}
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"msg": "Not enough segments"})
			return
		}

		f.mu.Lock()
		revoked := f.revoked[raw]
		f.mu.Unlock()
		if revoked {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has been revoked"})
			return
		}

		r.Header.Set("X-Fake-User", claims.Username)
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	pw, ok := f.users[body.Username]
	f.mu.Unlock()
	if !ok || pw != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": f.Issue(body.Username)})
}

func (f *FakeAPI) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if body.Username == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Username and password are required"})
		return
	}
	if len(body.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Password must be at least 6 characters long"})
		return
	}

	f.mu.Lock()
	_, exists := f.users[body.Username]
	if !exists {
		f.users[body.Username] = body.Password
	}
	f.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Username already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"msg":          "User created successfully",
		"access_token": f.Issue(body.Username),
	})
}

func (f *FakeAPI) listTodos(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get("X-Fake-User")
	f.mu.Lock()
	todos := append([]apiTodo{}, f.todos[user]...)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, todos)
}

func (f *FakeAPI) addTodo(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get("X-Fake-User")
	var body struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	todo := apiTodo{TaskID: f.nextID, Name: body.Name}
	f.nextID++
	f.todos[user] = append(f.todos[user], todo)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, todo)
}

func (f *FakeAPI) toggleTodo(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get("X-Fake-User")
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.todos[user] {
		if t.TaskID == id {
			f.todos[user][i].Done = !t.Done
			writeJSON(w, http.StatusOK, f.todos[user][i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func (f *FakeAPI) deleteTodo(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get("X-Fake-User")
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	f.mu.Lock()
	defer f.mu.Unlock()
	todos := f.todos[user]
	for i, t := range todos {
		if t.TaskID == id {
			f.todos[user] = append(todos[:i], todos[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
