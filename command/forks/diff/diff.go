package diff

import (
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/command"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <fork> <fork>",
		Short: "Lists the config fields that differ between two forks",
		Args:  cobra.ExactArgs(2),
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, args []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	from, err := chain.ForkByName(args[0])
	if err != nil {
		outputter.SetError(err)

		return
	}

	to, err := chain.ForkByName(args[1])
	if err != nil {
		outputter.SetError(err)

		return
	}

	result := &ForksDiffResult{
		From:    args[0],
		To:      args[1],
		Changes: []FieldChange{},
	}

	for _, name := range chain.Diff(from, to) {
		result.Changes = append(result.Changes, FieldChange{
			Field: name,
			From:  fieldValue(from, name),
			To:    fieldValue(to, name),
		})
	}

	outputter.SetCommandResult(result)
}

func fieldValue(config *chain.Config, name string) string {
	v := reflect.ValueOf(config).Elem().FieldByName(name)

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "unlimited"
		}

		v = v.Elem()
	}

	return fmt.Sprintf("%v", v.Interface())
}
