package chain

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrZeroStackLimit          = errors.New("stack limit must be greater than zero")
	ErrZeroCallStackLimit      = errors.New("call stack limit must be greater than zero")
	ErrZeroMemoryLimit         = errors.New("memory limit must be greater than zero")
	ErrZeroCreateContractLimit = errors.New("create contract limit must be unset or greater than zero")
	ErrShieldedWithoutTRON     = errors.New("shielded precompiles require signature validation precompiles")
)

// Config is the set of gas costs, behaviour switches and resource ceilings of
// one hard fork. A Config is built once per fork and shared read only by every
// runtime executing under it.
type Config struct {
	// Gas paid for EXTCODESIZE/EXTCODECOPY
	GasExtCode uint64 `json:"gas_ext_code" mapstructure:"gas_ext_code"`
	// Gas paid for EXTCODEHASH
	GasExtCodeHash uint64 `json:"gas_ext_code_hash" mapstructure:"gas_ext_code_hash"`
	// Gas paid for SSTORE setting a zero slot
	GasSstoreSet uint64 `json:"gas_sstore_set" mapstructure:"gas_sstore_set"`
	// Gas paid for SSTORE resetting a non zero slot
	GasSstoreReset uint64 `json:"gas_sstore_reset" mapstructure:"gas_sstore_reset"`
	// Refund granted for clearing a slot
	RefundSstoreClears uint64 `json:"refund_sstore_clears" mapstructure:"refund_sstore_clears"`
	// Gas paid for BALANCE and TOKENBALANCE
	GasBalance uint64 `json:"gas_balance" mapstructure:"gas_balance"`
	// Gas paid for SLOAD
	GasSload uint64 `json:"gas_sload" mapstructure:"gas_sload"`
	// Gas paid for SELFDESTRUCT
	GasSuicide uint64 `json:"gas_suicide" mapstructure:"gas_suicide"`
	// Extra gas for SELFDESTRUCT funding a new account
	GasSuicideNewAccount uint64 `json:"gas_suicide_new_account" mapstructure:"gas_suicide_new_account"`
	// Base gas of the CALL family
	GasCall uint64 `json:"gas_call" mapstructure:"gas_call"`
	// Gas paid per byte of EXP exponent
	GasExpByte uint64 `json:"gas_expbyte" mapstructure:"gas_expbyte"`
	// Intrinsic gas of a contract creating transaction
	GasTransactionCreate uint64 `json:"gas_transaction_create" mapstructure:"gas_transaction_create"`
	// Intrinsic gas of a message call transaction
	GasTransactionCall uint64 `json:"gas_transaction_call" mapstructure:"gas_transaction_call"`
	// Intrinsic gas per zero data byte
	GasTransactionZeroData uint64 `json:"gas_transaction_zero_data" mapstructure:"gas_transaction_zero_data"`
	// Intrinsic gas per non zero data byte
	GasTransactionNonZeroData uint64 `json:"gas_transaction_non_zero_data" mapstructure:"gas_transaction_non_zero_data"`

	// SstoreGasMetering enables net gas metering for SSTORE
	SstoreGasMetering bool `json:"sstore_gas_metering" mapstructure:"sstore_gas_metering"`
	// SstoreRevertUnderStipend fails SSTORE when gas left is within the call stipend
	SstoreRevertUnderStipend bool `json:"sstore_revert_under_stipend" mapstructure:"sstore_revert_under_stipend"`
	// ErrOnCallWithMoreGas fails a call requesting more gas than available
	ErrOnCallWithMoreGas bool `json:"err_on_call_with_more_gas" mapstructure:"err_on_call_with_more_gas"`
	// CallL64AfterGas caps forwarded gas to all but one 64th
	CallL64AfterGas bool `json:"call_l64_after_gas" mapstructure:"call_l64_after_gas"`
	// EmptyConsideredExists treats empty accounts as existing
	EmptyConsideredExists bool `json:"empty_considered_exists" mapstructure:"empty_considered_exists"`
	// CreateIncreaseNonce increments the creator nonce on CREATE
	CreateIncreaseNonce bool `json:"create_increase_nonce" mapstructure:"create_increase_nonce"`

	// StackLimit is the maximum number of stack items
	StackLimit uint64 `json:"stack_limit" mapstructure:"stack_limit"`
	// MemoryLimit is the maximum memory size in bytes
	MemoryLimit uint64 `json:"memory_limit" mapstructure:"memory_limit"`
	// CallStackLimit is the maximum call depth
	CallStackLimit uint64 `json:"call_stack_limit" mapstructure:"call_stack_limit"`
	// CreateContractLimit is the maximum deployed code size, nil means unlimited
	CreateContractLimit *uint64 `json:"create_contract_limit,omitempty" mapstructure:"create_contract_limit"`
	// CallStipend is the gas given to a callee receiving value
	CallStipend uint64 `json:"call_stipend" mapstructure:"call_stipend"`

	HasDelegateCall      bool `json:"has_delegate_call" mapstructure:"has_delegate_call"`
	HasCreate2           bool `json:"has_create2" mapstructure:"has_create2"`
	HasRealCreate2       bool `json:"has_real_create2" mapstructure:"has_real_create2"`
	HasRevert            bool `json:"has_revert" mapstructure:"has_revert"`
	HasReturnData        bool `json:"has_return_data" mapstructure:"has_return_data"`
	HasBitwiseShifting   bool `json:"has_bitwise_shifting" mapstructure:"has_bitwise_shifting"`
	HasChainID           bool `json:"has_chain_id" mapstructure:"has_chain_id"`
	HasSelfBalance       bool `json:"has_self_balance" mapstructure:"has_self_balance"`
	HasExtCodeHash       bool `json:"has_ext_code_hash" mapstructure:"has_ext_code_hash"`
	HasTokenTransfer     bool `json:"has_token_transfer" mapstructure:"has_token_transfer"`
	HasIsContract        bool `json:"has_is_contract" mapstructure:"has_is_contract"`
	HasValidateSignature bool `json:"has_validate_signature" mapstructure:"has_validate_signature"`
	HasShielded          bool `json:"has_shielded" mapstructure:"has_shielded"`
	HasRealRipemd160     bool `json:"has_real_ripemd160" mapstructure:"has_real_ripemd160"`
}

// Copy returns a deep copy of the config
func (c *Config) Copy() *Config {
	cc := *c

	if c.CreateContractLimit != nil {
		limit := *c.CreateContractLimit
		cc.CreateContractLimit = &limit
	}

	return &cc
}

// Validate returns every constraint the config violates
func (c *Config) Validate() error {
	var result error

	if c.StackLimit == 0 {
		result = multierror.Append(result, ErrZeroStackLimit)
	}

	if c.CallStackLimit == 0 {
		result = multierror.Append(result, ErrZeroCallStackLimit)
	}

	if c.MemoryLimit == 0 {
		result = multierror.Append(result, ErrZeroMemoryLimit)
	}

	if c.CreateContractLimit != nil && *c.CreateContractLimit == 0 {
		result = multierror.Append(result, ErrZeroCreateContractLimit)
	}

	if c.HasShielded && !c.HasValidateSignature {
		result = multierror.Append(result, ErrShieldedWithoutTRON)
	}

	return result
}

// String returns a short human readable description of the limits
func (c *Config) String() string {
	limit := "unlimited"
	if c.CreateContractLimit != nil {
		limit = fmt.Sprintf("%d", *c.CreateContractLimit)
	}

	memory := fmt.Sprintf("%d", c.MemoryLimit)
	if c.MemoryLimit == math.MaxUint64 {
		memory = "unlimited"
	}

	return fmt.Sprintf("stack=%d memory=%s depth=%d code=%s", c.StackLimit, memory, c.CallStackLimit, limit)
}
