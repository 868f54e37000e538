package run

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/command"
	"github.com/tronvm/tvm-edge/command/helper"
	"github.com/tronvm/tvm-edge/helper/hex"
	"github.com/tronvm/tvm-edge/state"
	"github.com/tronvm/tvm-edge/types"
)

func GetCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Executes a message against an in-memory world",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}

	setFlags(runCmd)
	setRequiredFlags(runCmd)

	return runCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.fork,
		forkFlag,
		command.DefaultFork,
		"the fork the message executes under",
	)

	cmd.Flags().StringVar(
		&params.configPath,
		configFlag,
		"",
		"a fork config file (json, yaml or hcl), overrides --fork",
	)

	cmd.Flags().StringVar(
		&params.allocPath,
		allocFlag,
		"",
		"a json file with the accounts the world starts with",
	)

	cmd.Flags().StringVar(
		&params.fromRaw,
		fromFlag,
		"",
		"the sender address, hex or base58",
	)

	cmd.Flags().StringVar(
		&params.toRaw,
		toFlag,
		"",
		"the receiver address, hex or base58",
	)

	cmd.Flags().StringVar(
		&params.codeRaw,
		codeFlag,
		"",
		"hex code installed at the receiver, or the init code with --create",
	)

	cmd.Flags().StringVar(
		&params.inputRaw,
		inputFlag,
		"",
		"the hex encoded call data",
	)

	cmd.Flags().StringVar(
		&params.valueRaw,
		valueFlag,
		"0",
		"the TRX value sent with the message",
	)

	cmd.Flags().StringVar(
		&params.tokenIDRaw,
		tokenIDFlag,
		"",
		"the id of the TRC-10 token sent with the message",
	)

	cmd.Flags().StringVar(
		&params.tokenValueRaw,
		tokenValueFlag,
		"",
		"the amount of the TRC-10 token sent with the message",
	)

	cmd.Flags().Uint64Var(
		&params.gas,
		gasFlag,
		command.DefaultGas,
		"the gas limit of the message",
	)

	cmd.Flags().BoolVar(
		&params.create,
		createFlag,
		false,
		"deploy --code (or --input) as a new contract",
	)

	cmd.Flags().StringVar(
		&params.trace,
		traceFlag,
		"",
		"attach a tracer to the execution: struct or call",
	)

	cmd.Flags().Uint64Var(
		&params.number,
		numberFlag,
		1,
		"the block number",
	)

	cmd.Flags().Uint64Var(
		&params.timestamp,
		timestampFlag,
		0,
		"the block timestamp",
	)

	cmd.Flags().Uint64Var(
		&params.chainID,
		chainIDFlag,
		0,
		"the chain id returned by CHAINID",
	)
}

func setRequiredFlags(cmd *cobra.Command) {
	_ = cmd.MarkFlagRequired(fromFlag)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	logger, err := helper.NewLogger(cmd)
	if err != nil {
		outputter.SetError(err)

		return
	}

	if err := params.init(); err != nil {
		outputter.SetError(err)

		return
	}

	result, err := execute(params, logger)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(result)
}

// execute builds the world described by p and applies its message
func execute(p *runParams, logger hclog.Logger) (*RunResult, error) {
	world := state.NewWorld()
	world.Seed(p.alloc)

	msg := &state.Message{
		From:  p.from,
		To:    p.to,
		Value: p.value,
		Input: p.input,
		Gas:   p.gas,
	}

	if p.to == nil {
		if len(p.code) != 0 {
			msg.Input = p.code
		}
	} else {
		if len(p.code) != 0 {
			world.SetCode(*p.to, p.code)
			world.Commit()
		}

		msg.TokenID = p.tokenID
		msg.TokenValue = p.tokenValue
	}

	t, err := p.newTracer()
	if err != nil {
		return nil, err
	}

	opts := []state.ExecutorOption{}
	if t != nil {
		opts = append(opts, state.WithTracer(t))
	}

	executor := state.NewExecutor(p.config, world, state.TxContext{
		Origin:    p.from,
		Number:    p.number,
		Timestamp: p.timestamp,
		ChainID:   p.chainID,
		GasLimit:  p.gas,
	}, logger, opts...)

	res, err := executor.Apply(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to apply message: %w", err)
	}

	result := &RunResult{
		Reason:      res.Reason.String(),
		Success:     !res.Failed(),
		GasUsed:     res.GasUsed,
		GasLeft:     res.GasLeft,
		Refund:      res.Refund,
		ReturnValue: hex.EncodeToHex(res.ReturnValue),
		Logs:        res.Logs,
	}

	if result.Logs == nil {
		result.Logs = []*types.Log{}
	}

	if res.Address != nil {
		result.Address = res.Address.String()
		result.Base58 = res.Address.Base58()
	}

	if t != nil {
		if result.Trace, err = t.GetResult(); err != nil {
			return nil, fmt.Errorf("failed to collect trace: %w", err)
		}
	}

	return result, nil
}
