package commands

import (
	"context"
	"flag"

	"gtodo/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "gtodo rm [common flags] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, code, ok := taskFromArgs(ctx, env, args)
	if !ok {
		return code
	}

	if err := env.Tasks.Remove(ctx, id); err != nil {
		return report(env.ErrOut, err)
	}

	env.info("ok")
	return exitcode.Success
}
