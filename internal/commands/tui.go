package commands

import (
	"context"
	"flag"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gtodo/internal/exitcode"
	"gtodo/internal/tui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd implements the tui command.
type TUICmd struct{}

func (c *TUICmd) Name() string      { return "tui" }
func (c *TUICmd) Aliases() []string { return nil }
func (c *TUICmd) Synopsis() string  { return "Interactive mode" }
func (c *TUICmd) Usage() string     { return "gtodo tui [common flags]" }
func (c *TUICmd) NeedsAuth() bool   { return false }

// AutoRefresh keeps the list loaded across logins.
func (c *TUICmd) AutoRefresh() bool { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, env *Env, args []string) int {
	var opts []tea.ProgramOption
	if env.In != nil {
		opts = append(opts, tea.WithInput(env.In))
	}
	opts = append(opts, tea.WithOutput(env.Out))

	if err := tui.Run(ctx, env.Session, env.Tasks, opts...); err != nil {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
