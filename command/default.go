package command

import "github.com/tronvm/tvm-edge/chain"

const (
	DefaultFork     = chain.GreatVoyage41
	DefaultGas      = 10_000_000
	DefaultLogLevel = "info"
)

const (
	JSONOutputFlag = "json"
	LogLevelFlag   = "log-level"
)
