package commands

import (
	"context"
	"flag"
	"fmt"

	"gtodo/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "gtodo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string) int {
	fmt.Fprint(env.Out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  gtodo                                           List tasks
  gtodo list [common flags]                       List tasks (alias: ls)
  gtodo add [common flags] <name...>              Create a task (alias: create)
  gtodo toggle [common flags] <ref>               Mark a task done or open (aliases: done, undo)
  gtodo rm [common flags] <ref>                   Delete a task (alias: delete)
  gtodo login [common flags] [--password <pw>] [username]
  gtodo signup [common flags] [--password <pw>] [username]  (alias: register)
  gtodo logout [common flags]
  gtodo status [common flags]                     Show login state (alias: whoami)
  gtodo tui [common flags]                        Interactive mode
  gtodo help
  gtodo version

Task references:
  <n>              Position in the list (1-based)
  id:<task_id>     Server task id

Common flags:
  --config <dir>   Override config directory
  --api-url <url>  Override the API base URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
