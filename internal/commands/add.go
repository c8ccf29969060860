package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"gtodo/internal/exitcode"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "gtodo add [common flags] <name...>" }
func (c *AddCmd) NeedsAuth() bool   { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(env.ErrOut, "error: task name required")
		return exitcode.UserError
	}

	// Join args to form the name; it is sent as entered.
	name := strings.Join(args, " ")
	env.Tasks.SetPending(name)
	if _, err := env.Tasks.Add(ctx, name); err != nil {
		return report(env.ErrOut, err)
	}

	env.info("ok")
	return exitcode.Success
}
