// Package tui is the interactive terminal front end.
//
// The screen follows the session: Login and Signup while Anonymous, Tasks
// while Authenticated. Every API call runs as a tea.Cmd and disables the
// affordance that started it until its opDoneMsg arrives.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"gtodo/internal/output"
	"gtodo/internal/service"
	"gtodo/internal/session"
	"gtodo/internal/tasklist"
)

type screen int

const (
	screenLogin screen = iota
	screenSignup
	screenTasks
)

type op int

const (
	opLogin op = iota
	opSignup
	opRefresh
	opAdd
	opToggle
	opRemove
)

// sessionChangedMsg and tasksChangedMsg carry no payload; the model
// re-reads live state so out-of-order delivery is harmless.
type (
	sessionChangedMsg struct{}
	tasksChangedMsg   struct{}
)

// opDoneMsg reports the end of an API call.
type opDoneMsg struct {
	op       op
	id       service.TaskID
	username string
	err      error
}

// Model is the root Bubble Tea model
type Model struct {
	ctx     context.Context
	session *session.Controller
	tasks   *tasklist.Synchronizer

	screen screen

	// Login and signup form
	username textinput.Model
	password textinput.Model
	focus    int

	// Add input on the tasks screen
	addInput textinput.Model
	adding   bool

	items  []service.Task
	cursor int

	busy     map[op]bool
	busyTask map[service.TaskID]bool

	status    string
	statusErr bool

	keys KeyMap
	help help.Model
}

// New creates the root model. ctx bounds every API call it starts.
func New(ctx context.Context, sess *session.Controller, tasks *tasklist.Synchronizer) Model {
	username := textinput.New()
	username.Prompt = "username: "
	username.PromptStyle = InputPromptStyle
	username.CharLimit = 64
	username.Width = 32

	password := textinput.New()
	password.Prompt = "password: "
	password.PromptStyle = InputPromptStyle
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128
	password.Width = 32

	addInput := textinput.New()
	addInput.Placeholder = "New task..."
	addInput.Prompt = "❯ "
	addInput.PromptStyle = InputPromptStyle
	addInput.Width = 60

	m := Model{
		ctx:      ctx,
		session:  sess,
		tasks:    tasks,
		screen:   screenLogin,
		username: username,
		password: password,
		addInput: addInput,
		busy:     make(map[op]bool),
		busyTask: make(map[service.TaskID]bool),
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
	m.focusField(0)
	m.route()
	return m
}

// Init starts the cursor blink. The synchronizer loads the list itself
// whenever the session is Authenticated.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case sessionChangedMsg:
		m.route()
		return m, nil

	case tasksChangedMsg:
		m.reload()
		return m, nil

	case opDoneMsg:
		return m.finish(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Interrupt) {
			return m, tea.Quit
		}
		if m.screen == screenTasks {
			return m.updateTasks(msg)
		}
		return m.updateForm(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Switch):
		if m.screen == screenLogin {
			m.screen = screenSignup
		} else {
			m.screen = screenLogin
		}
		m.password.Reset()
		m.clearStatus()
		return m, m.focusField(0)

	case key.Matches(msg, m.keys.Next):
		return m, m.focusField(1 - m.focus)

	case key.Matches(msg, m.keys.Submit):
		if m.focus == 0 {
			return m, m.focusField(1)
		}
		creds := service.Credentials{
			Username: strings.TrimSpace(m.username.Value()),
			Password: m.password.Value(),
		}
		sess := m.session
		if m.screen == screenSignup {
			return m, m.run(opDoneMsg{op: opSignup, username: creds.Username}, func(ctx context.Context) error {
				return sess.Signup(ctx, creds)
			})
		}
		return m, m.run(opDoneMsg{op: opLogin}, func(ctx context.Context) error {
			return sess.Login(ctx, creds)
		})
	}

	return m.updateInputs(msg)
}

func (m Model) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := m.tasks

	if m.adding {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.adding = false
			m.addInput.Blur()
			m.addInput.Reset()
			tasks.SetPending("")
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			name := m.addInput.Value()
			tasks.SetPending(name)
			return m, m.run(opDoneMsg{op: opAdd}, func(ctx context.Context) error {
				_, err := tasks.Add(ctx, name)
				return err
			})
		}
		return m.updateInputs(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, m.run(opDoneMsg{op: opToggle, id: t.ID}, func(ctx context.Context) error {
				_, err := tasks.Toggle(ctx, t.ID)
				return err
			})
		}

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			return m, m.run(opDoneMsg{op: opRemove, id: t.ID}, func(ctx context.Context) error {
				return tasks.Remove(ctx, t.ID)
			})
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.addInput.SetValue(tasks.Pending())
		return m, m.addInput.Focus()

	case key.Matches(msg, m.keys.Logout):
		if err := m.session.Logout(); err != nil {
			m.fail(err)
		}
		m.route()
	}
	return m, nil
}

// updateInputs forwards msg to whichever text input has focus.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == screenTasks && m.adding:
		m.addInput, cmd = m.addInput.Update(msg)
	case m.screen != screenTasks && m.focus == 0:
		m.username, cmd = m.username.Update(msg)
	case m.screen != screenTasks:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// finish applies the outcome of an API call to the view.
func (m Model) finish(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.id != "" {
		delete(m.busyTask, msg.id)
	} else {
		delete(m.busy, msg.op)
	}

	if msg.err != nil {
		m.fail(msg.err)
	} else {
		m.clearStatus()
	}

	switch msg.op {
	case opLogin:
		m.password.Reset()
		if msg.err == nil {
			m.username.Reset()
		}
	case opSignup:
		m.password.Reset()
		if msg.err == nil {
			m.screen = screenLogin
			m.username.SetValue(msg.username)
			m.focusField(1)
			m.info("account created, log in")
		}
	case opAdd:
		if msg.err == nil {
			m.adding = false
			m.addInput.Blur()
			m.addInput.Reset()
		}
	}

	m.route()
	m.reload()
	return m, nil
}

// route derives the screen from the session state.
func (m *Model) route() {
	if m.session.Authenticated() {
		if m.screen != screenTasks {
			m.screen = screenTasks
			m.cursor = 0
			m.reload()
		}
		return
	}
	if m.screen == screenTasks {
		m.screen = screenLogin
		m.items = nil
		m.cursor = 0
		m.adding = false
		m.addInput.Blur()
		m.addInput.Reset()
		clear(m.busyTask)
		delete(m.busy, opRefresh)
		delete(m.busy, opAdd)
		m.focusField(0)
	}
}

// reload copies the synchronizer's sequence into the view.
func (m *Model) reload() {
	if m.screen != screenTasks {
		return
	}
	m.items = m.tasks.Tasks()
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	tasks := m.tasks
	return m.run(opDoneMsg{op: opRefresh}, tasks.Refresh)
}

// run marks the affordance busy and returns a command performing fn.
// It returns nil while the same affordance is still busy.
func (m *Model) run(done opDoneMsg, fn func(context.Context) error) tea.Cmd {
	if done.id != "" {
		if m.busyTask[done.id] {
			return nil
		}
		m.busyTask[done.id] = true
	} else {
		if m.busy[done.op] {
			return nil
		}
		m.busy[done.op] = true
	}
	ctx := m.ctx
	return func() tea.Msg {
		done.err = fn(ctx)
		return done
	}
}

func (m *Model) focusField(i int) tea.Cmd {
	m.focus = i
	if i == 0 {
		m.password.Blur()
		return m.username.Focus()
	}
	m.username.Blur()
	return m.password.Focus()
}

func (m Model) selected() (service.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return service.Task{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) fail(err error) {
	if errors.Is(err, tasklist.ErrStale) {
		return
	}
	m.status = describe(err)
	m.statusErr = true
}

func (m *Model) info(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

// describe turns an error into a status line.
func describe(err error) string {
	var apiErr *service.Error
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return "session expired, log in again"
	case errors.Is(err, tasklist.ErrNotAuthenticated):
		return "not logged in"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, service.ErrConflict):
		return "username already exists"
	case errors.Is(err, service.ErrNotFound):
		return "task no longer exists, list reloaded"
	case errors.Is(err, tasklist.ErrEmptyName):
		return "task name required"
	case errors.Is(err, session.ErrMissingCredentials):
		return "username and password are required"
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Message != "":
		return apiErr.Message
	default:
		return err.Error()
	}
}

// View renders the model
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("gtodo"))
	b.WriteString("\n\n")

	if m.screen == screenTasks {
		b.WriteString(m.tasksView())
	} else {
		b.WriteString(m.formView())
	}
	b.WriteString("\n")

	if m.status != "" {
		if m.statusErr {
			b.WriteString(StatusErrorStyle.Render(m.status))
		} else {
			b.WriteString(StatusInfoStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	switch {
	case m.screen != screenTasks:
		b.WriteString(m.help.ShortHelpView(m.keys.formHelp()))
	case m.adding:
		b.WriteString(m.help.ShortHelpView(m.keys.addHelp()))
	default:
		b.WriteString(m.help.ShortHelpView(m.keys.tasksHelp()))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) formView() string {
	title, busy, verb := "Log in", m.busy[opLogin], "logging in..."
	if m.screen == screenSignup {
		title, busy, verb = "Sign up", m.busy[opSignup], "creating account..."
	}

	var b strings.Builder
	b.WriteString(ScreenTitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	if busy {
		b.WriteString("\n\n")
		b.WriteString(TaskBusyStyle.Render(verb))
	}
	return PanelStyle.Render(b.String()) + "\n"
}

func (m Model) tasksView() string {
	var b strings.Builder
	b.WriteString(ScreenTitleStyle.Render("Tasks"))
	if m.busy[opRefresh] {
		b.WriteString(MutedStyle.Render("  refreshing..."))
	}
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(MutedStyle.Render("no tasks, press a to add one"))
		b.WriteString("\n")
	}
	for i, t := range m.items {
		pointer := "  "
		style := TaskOpenStyle
		if t.Done {
			style = TaskDoneStyle
		}
		if i == m.cursor {
			pointer = "> "
			style = TaskSelectedStyle
		}
		line := output.Checkbox(t.Done) + " " + output.DisplayName(t.Name)
		if m.busyTask[t.ID] {
			line += TaskBusyStyle.Render(" ...")
		}
		b.WriteString(pointer + style.Render(line) + "\n")
	}

	if m.adding {
		b.WriteString("\n")
		b.WriteString(m.addInput.View())
		if m.busy[opAdd] {
			b.WriteString(TaskBusyStyle.Render("  adding..."))
		}
		b.WriteString("\n")
	}
	return PanelStyle.Render(b.String()) + "\n"
}
