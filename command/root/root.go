package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/command/forks"
	"github.com/tronvm/tvm-edge/command/helper"
	"github.com/tronvm/tvm-edge/command/precompile"
	"github.com/tronvm/tvm-edge/command/run"
	"github.com/tronvm/tvm-edge/command/version"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:   "tvm-edge",
			Short: "TVM Edge executes TRON virtual machine bytecode against an in-memory world",
		},
	}

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)
	helper.RegisterLogLevelFlag(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		run.GetCommand(),
		precompile.GetCommand(),
		forks.GetCommand(),
	)
}

// Command returns the cobra command, mostly for tests
func (rc *RootCommand) Command() *cobra.Command {
	return rc.baseCmd
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
