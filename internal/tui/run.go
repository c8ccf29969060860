package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"gtodo/internal/service"
	"gtodo/internal/session"
	"gtodo/internal/tasklist"
)

// Run starts the interactive program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, sess *session.Controller, tasks *tasklist.Synchronizer, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, sess, tasks), opts...)

	// Observers run on whatever goroutine caused the change, which may be
	// the program's own update loop. Send asynchronously.
	unsubscribeSession := sess.Subscribe(func(session.Snapshot) {
		go p.Send(sessionChangedMsg{})
	})
	defer unsubscribeSession()
	unsubscribeTasks := tasks.Subscribe(func([]service.Task) {
		go p.Send(tasksChangedMsg{})
	})
	defer unsubscribeTasks()

	// The list may have loaded before the observers were attached.
	go p.Send(tasksChangedMsg{})

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
