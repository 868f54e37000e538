package call

import (
	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/command"
	"github.com/tronvm/tvm-edge/helper/hex"
	"github.com/tronvm/tvm-edge/state/runtime/precompiled"
)

func GetCommand() *cobra.Command {
	callCmd := &cobra.Command{
		Use:   "call",
		Short: "Runs a native contract on the given input",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}

	setFlags(callCmd)
	setRequiredFlags(callCmd)

	return callCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.addressRaw,
		addressFlag,
		"",
		"the native contract address, hex or base58",
	)

	cmd.Flags().StringVar(
		&params.inputRaw,
		inputFlag,
		"",
		"the hex encoded input",
	)

	cmd.Flags().Uint64Var(
		&params.gas,
		gasFlag,
		command.DefaultGas,
		"the gas available to the call",
	)
}

func setRequiredFlags(cmd *cobra.Command) {
	for _, requiredFlag := range params.getRequiredFlags() {
		_ = cmd.MarkFlagRequired(requiredFlag)
	}
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	if err := params.init(); err != nil {
		outputter.SetError(err)

		return
	}

	config, err := chain.ForkByName(cmd.Flag("fork").Value.String())
	if err != nil {
		outputter.SetError(err)

		return
	}

	table := precompiled.New(config)

	res, ok := table.Run(params.address, params.input, &params.gas)
	if !ok {
		outputter.SetError(errNotPrecompile)

		return
	}

	result := &PrecompileCallResult{
		Address: params.address.String(),
		Name:    table.Name(params.address),
		Output:  hex.EncodeToHex(res.ReturnValue),
		Cost:    res.Cost,
		Success: !res.Failed() && res.Cost <= params.gas,
	}

	switch {
	case res.Cost > params.gas:
		result.Error = "out of gas"
	case res.Failed():
		result.Error = res.Err.Error()
	}

	outputter.SetCommandResult(result)
}
