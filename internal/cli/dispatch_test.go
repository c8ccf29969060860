package cli_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"gtodo/internal/backend/todoapi"
	"gtodo/internal/cli"
	"gtodo/internal/commands"
	"gtodo/internal/config"
	"gtodo/internal/credstore"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
	"gtodo/internal/testutil"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GTODO_API_URL", "")
	t.Setenv("GTODO_TIMEOUT", "")
}

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Service, error) {
		return svc, nil
	}
}

func apiFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Service, error) {
	return todoapi.New(cfg, logger)
}

func run(d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	var out, errOut bytes.Buffer
	code = d.Run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: unknowncmd\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(d, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: --quiet\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(d, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.HasPrefix(stdout, "Usage:") {
		t.Errorf("expected usage, got %q", stdout)
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, _, code := run(d, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "gtodo 0.1.0\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"list", "--unknown"}, "error: unknown flag: -unknown\n"},
		{"missing value", []string{"list", "--config"}, "error: flag needs an argument: -config\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			svc := testutil.NewFakeService()
			d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

			_, stderr, code := run(d, tt.args...)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
			if svc.TotalCalls() != 0 {
				t.Error("expected no backend calls")
			}
		})
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	isolate(t)
	svc := testutil.NewFakeService()
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	for _, args := range [][]string{nil, {"add", "x"}, {"toggle", "1"}, {"rm", "1"}} {
		_, stderr, code := run(d, args...)
		if code != exitcode.AuthError {
			t.Errorf("%v: expected exit code %d, got %d", args, exitcode.AuthError, code)
		}
		if stderr != "error: not logged in (run: gtodo login)\n" {
			t.Errorf("%v: unexpected stderr %q", args, stderr)
		}
	}
	if svc.TotalCalls() != 0 {
		t.Error("expected no backend calls")
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	isolate(t)
	factory := func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Service, error) {
		return nil, errors.New("dial failed")
	}
	d := cli.NewDispatcher(commands.DefaultRegistry, factory)

	_, stderr, code := run(d, "list")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: dial failed\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DebugLogs(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, quietErr, _ := run(d, "version")
	_, debugErr, _ := run(d, "version", "--debug")

	if quietErr != "" {
		t.Errorf("expected no logs without --debug, got %q", quietErr)
	}
	if !strings.Contains(debugErr, "msg=dispatch") || !strings.Contains(debugErr, "command=version") {
		t.Errorf("expected dispatch log, got %q", debugErr)
	}
}

func TestDispatcher_APIURLFlag(t *testing.T) {
	isolate(t)
	var got *config.Config
	factory := func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Service, error) {
		got = cfg
		return testutil.NewFakeService(), nil
	}
	d := cli.NewDispatcher(commands.DefaultRegistry, factory)

	run(d, "status", "--api-url", "http://todo.example:5000/", "--quiet")

	if got == nil {
		t.Fatal("expected factory to be called")
	}
	if got.APIURL != "http://todo.example:5000" {
		t.Errorf("expected API URL override, got %q", got.APIURL)
	}
	if !got.Quiet {
		t.Error("expected quiet set")
	}
}

func TestDispatcher_EndToEnd(t *testing.T) {
	isolate(t)
	api := testutil.NewFakeAPI()
	defer api.Close()
	api.AddUser("alice", "secret")
	t.Setenv("GTODO_API_URL", api.URL)
	d := cli.NewDispatcher(commands.DefaultRegistry, apiFactory)

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"login", "--password", "secret", "alice"}, "ok\n"},
		{[]string{"add", "buy", "milk"}, "ok\n"},
		{[]string{"add", "call mom"}, "ok\n"},
		{nil, "   1  [ ] buy milk\n   2  [ ] call mom\n"},
		{[]string{"toggle", "1"}, "done: buy milk\n"},
		{[]string{"ls"}, "   1  [x] buy milk\n   2  [ ] call mom\n"},
		{[]string{"rm", "2"}, "ok\n"},
		{[]string{"list"}, "   1  [x] buy milk\n"},
		{[]string{"logout"}, "ok\n"},
		{[]string{"status"}, "not logged in\n"},
	}

	for _, step := range steps {
		stdout, stderr, code := run(d, step.args...)
		if code != exitcode.Success {
			t.Fatalf("%v: expected exit code %d, got %d (stderr %q)", step.args, exitcode.Success, code, stderr)
		}
		if stdout != step.want {
			t.Errorf("%v: expected %q, got %q", step.args, step.want, stdout)
		}
	}
}

func TestDispatcher_StatusShowsExpiry(t *testing.T) {
	isolate(t)
	api := testutil.NewFakeAPI()
	defer api.Close()
	api.AddUser("alice", "secret")
	t.Setenv("GTODO_API_URL", api.URL)
	d := cli.NewDispatcher(commands.DefaultRegistry, apiFactory)

	if _, stderr, code := run(d, "login", "-p", "secret", "alice"); code != exitcode.Success {
		t.Fatalf("login failed: %q", stderr)
	}
	stdout, _, code := run(d, "status")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "logged in\ntoken expires ") {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_RevokedTokenExpiresSession(t *testing.T) {
	isolate(t)
	api := testutil.NewFakeAPI()
	defer api.Close()
	api.AddUser("alice", "secret")
	t.Setenv("GTODO_API_URL", api.URL)
	d := cli.NewDispatcher(commands.DefaultRegistry, apiFactory)

	if _, stderr, code := run(d, "login", "--password", "secret", "alice"); code != exitcode.Success {
		t.Fatalf("login failed: %q", stderr)
	}

	cfg, err := config.New("")
	if err != nil {
		t.Fatalf("failed to create config: %v", err)
	}
	token, err := credstore.NewFileStore(cfg.TokenPath()).Get()
	if err != nil || token == "" {
		t.Fatalf("expected stored token after login, got %q (%v)", token, err)
	}
	api.Revoke(token)

	_, stderr, code := run(d, "list")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: gtodo login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if _, err := os.Stat(cfg.TokenPath()); !os.IsNotExist(err) {
		t.Errorf("expected token file removed, got %v", err)
	}
}
