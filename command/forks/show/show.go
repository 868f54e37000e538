package show

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/command"
	"github.com/tronvm/tvm-edge/command/helper"
)

const (
	configFlag = "config"
)

var (
	configPath string
)

func GetCommand() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [fork]",
		Short: "Shows every field of a fork config",
		Args:  cobra.MaximumNArgs(1),
		Run:   runCommand,
	}

	showCmd.Flags().StringVar(
		&configPath,
		configFlag,
		"",
		"a fork config file (json, yaml or hcl) to show instead of a named fork",
	)

	return showCmd
}

func runCommand(cmd *cobra.Command, args []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	fork := command.DefaultFork
	if len(args) == 1 {
		fork = args[0]
	}

	config, err := helper.LoadConfig(fork, configPath)
	if err != nil {
		outputter.SetError(err)

		return
	}

	raw := map[string]interface{}{}
	if err := mapstructure.Decode(config, &raw); err != nil {
		outputter.SetError(fmt.Errorf("failed to decode config: %w", err))

		return
	}

	result := &ForkShowResult{
		Name:   fork,
		Fields: make([]ConfigField, 0, len(raw)),
	}

	if configPath != "" {
		result.Name = configPath
	}

	for name, value := range raw {
		result.Fields = append(result.Fields, ConfigField{
			Name:  name,
			Value: formatValue(value),
		})
	}

	sort.Slice(result.Fields, func(i, j int) bool {
		return result.Fields[i].Name < result.Fields[j].Name
	})

	outputter.SetCommandResult(result)
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case *uint64:
		if val == nil {
			return "unlimited"
		}

		return fmt.Sprintf("%d", *val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
