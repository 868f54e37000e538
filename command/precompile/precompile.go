package precompile

import (
	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/command"
	"github.com/tronvm/tvm-edge/command/precompile/call"
	"github.com/tronvm/tvm-edge/command/precompile/list"
)

const (
	forkFlag = "fork"
)

func GetCommand() *cobra.Command {
	precompileCmd := &cobra.Command{
		Use:   "precompile",
		Short: "Top level command for the native contracts of a fork. Only accepts subcommands.",
	}

	precompileCmd.PersistentFlags().String(
		forkFlag,
		command.DefaultFork,
		"the fork whose native contract table is used",
	)

	registerSubcommands(precompileCmd)

	return precompileCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	// precompile list
	baseCmd.AddCommand(list.GetCommand())

	// precompile call
	baseCmd.AddCommand(call.GetCommand())
}
