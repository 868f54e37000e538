package list

import (
	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/command"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the known forks in lineage order",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	result := &ForksListResult{
		Forks: make([]ForkInfo, 0, len(chain.Forks())),
	}

	for _, u := range chain.Forks() {
		result.Forks = append(result.Forks, ForkInfo{
			Name:   u.Name,
			Parent: u.Parent,
			Fields: u.Fields,
		})
	}

	outputter.SetCommandResult(result)
}
