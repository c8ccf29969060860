package commands

import (
	"context"
	"flag"
	"fmt"
	"time"

	"gtodo/internal/credstore"
	"gtodo/internal/exitcode"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command. It reads local state only.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"whoami"} }
func (c *StatusCmd) Synopsis() string  { return "Show whether a token is stored" }
func (c *StatusCmd) Usage() string     { return "gtodo status [common flags]" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, env *Env, args []string) int {
	snap := env.Session.Snapshot()
	if !snap.Authenticated() {
		fmt.Fprintln(env.Out, "not logged in")
		return exitcode.Success
	}

	fmt.Fprintln(env.Out, "logged in")
	if exp, ok := credstore.Expiry(snap.Token); ok {
		fmt.Fprintf(env.Out, "token expires %s\n", exp.UTC().Format(time.RFC3339))
	}
	return exitcode.Success
}
