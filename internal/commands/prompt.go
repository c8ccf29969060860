package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"gtodo/internal/service"
)

// prompter asks for missing credentials. Prompts go to errOut so stdout
// stays clean for scripts.
type prompter struct {
	in     io.Reader
	r      *bufio.Reader
	errOut io.Writer
}

func newPrompter(env *Env) *prompter {
	in := env.In
	if in == nil {
		in = strings.NewReader("")
	}
	return &prompter{in: in, r: bufio.NewReader(in), errOut: env.ErrOut}
}

// credentials fills in whatever of username and password is empty.
func (p *prompter) credentials(username, password string) (service.Credentials, error) {
	var err error
	if username == "" {
		if username, err = p.line("username: "); err != nil {
			return service.Credentials{}, err
		}
	}
	if password == "" {
		if password, err = p.secret("password: "); err != nil {
			return service.Credentials{}, err
		}
	}
	return service.Credentials{Username: strings.TrimSpace(username), Password: password}, nil
}

// line reads one line. End of input yields an empty answer.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.errOut, label)
	s, err := p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// secret reads a line without echo when the input is a terminal.
func (p *prompter) secret(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(label)
	}
	fmt.Fprint(p.errOut, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
