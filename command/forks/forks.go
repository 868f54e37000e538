package forks

import (
	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/command/forks/diff"
	"github.com/tronvm/tvm-edge/command/forks/list"
	"github.com/tronvm/tvm-edge/command/forks/show"
)

func GetCommand() *cobra.Command {
	forksCmd := &cobra.Command{
		Use:   "forks",
		Short: "Top level command for inspecting fork configs. Only accepts subcommands.",
	}

	registerSubcommands(forksCmd)

	return forksCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	baseCmd.AddCommand(
		// forks list
		list.GetCommand(),
		// forks show
		show.GetCommand(),
		// forks diff
		diff.GetCommand(),
	)
}
