package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command. The server decides the new state.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done", "undo"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task done or open again" }
func (c *ToggleCmd) Usage() string     { return "gtodo toggle [common flags] <ref>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, code, ok := taskFromArgs(ctx, env, args)
	if !ok {
		return code
	}

	task, err := env.Tasks.Toggle(ctx, id)
	if err != nil {
		return report(env.ErrOut, err)
	}

	if !env.Config.Quiet {
		output.FormatToggled(env.Out, task)
	}
	return exitcode.Success
}

// taskFromArgs parses and resolves the task reference shared by toggle and rm.
// On failure the error is already printed and code is the exit code.
func taskFromArgs(ctx context.Context, env *Env, args []string) (id service.TaskID, code int, ok bool) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		if err == ErrTaskRefRequired {
			fmt.Fprintln(env.ErrOut, "error: task reference required")
		} else {
			fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		}
		return "", exitcode.UserError, false
	}

	if ref.ID == "" && ref.Num < 1 {
		fmt.Fprintf(env.ErrOut, "error: task number out of range: %d\n", ref.Num)
		return "", exitcode.UserError, false
	}

	id, err = resolveTaskRef(ctx, env.Tasks, ref)
	if err != nil {
		var oor errOutOfRange
		if errors.As(err, &oor) {
			fmt.Fprintf(env.ErrOut, "error: %v\n", err)
			return "", exitcode.UserError, false
		}
		return "", report(env.ErrOut, err), false
	}
	return id, exitcode.Success, true
}
