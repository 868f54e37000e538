package helper

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/command"
)

// FormatList formats a list into a string
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV formats key value pairs:
//
// Key = Value
//
// Key = <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterLogLevelFlag registers the --log-level setting for all child commands
func RegisterLogLevelFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(
		command.LogLevelFlag,
		command.DefaultLogLevel,
		"the log level for console output",
	)
}

// NewLogger builds a stderr logger at the level of the --log-level flag
func NewLogger(cmd *cobra.Command) (hclog.Logger, error) {
	level := command.DefaultLogLevel

	if flag := cmd.Flag(command.LogLevelFlag); flag != nil {
		level = flag.Value.String()
	}

	logLevel := hclog.LevelFromString(level)
	if logLevel == hclog.NoLevel {
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "tvm",
		Level:  logLevel,
		Output: os.Stderr,
	}), nil
}

// LoadConfig returns the config of the named fork, or the config file at path
// when it is set
func LoadConfig(fork, path string) (*chain.Config, error) {
	var (
		config *chain.Config
		err    error
	)

	if path != "" {
		config, err = chain.ReadConfigFile(path)
	} else {
		config, err = chain.ForkByName(fork)
	}

	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
