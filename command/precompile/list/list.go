package list

import (
	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/command"
	"github.com/tronvm/tvm-edge/state/runtime/precompiled"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the native contracts enabled by the fork",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	fork := cmd.Flag("fork").Value.String()

	config, err := chain.ForkByName(fork)
	if err != nil {
		outputter.SetError(err)

		return
	}

	table := precompiled.New(config)
	result := &PrecompileListResult{
		Fork:      fork,
		Contracts: []ContractInfo{},
	}

	for _, addr := range table.Addresses() {
		result.Contracts = append(result.Contracts, ContractInfo{
			Address:  addr.String(),
			Base58:   addr.Base58(),
			Name:     table.Name(addr),
			Reserved: table.IsReserved(addr),
		})
	}

	outputter.SetCommandResult(result)
}
