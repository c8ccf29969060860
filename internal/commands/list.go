package commands

import (
	"context"
	"flag"
	"fmt"

	"gtodo/internal/exitcode"
	"gtodo/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `gtodo` (no args) and `gtodo list`.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "gtodo list [common flags]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(env.ErrOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if err := env.Tasks.Refresh(ctx); err != nil {
		return report(env.ErrOut, err)
	}

	tasks := env.Tasks.Tasks()
	for i, task := range tasks {
		output.FormatTask(env.Out, i+1, task)
	}
	if len(tasks) == 0 {
		env.info("no tasks found")
	}
	return exitcode.Success
}
