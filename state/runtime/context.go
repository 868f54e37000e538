package runtime

import (
	"fmt"
	"math/big"

	"github.com/tronvm/tvm-edge/types"
)

// Context is the environment of one call frame
type Context struct {
	// Address is the account whose code and storage are executing
	Address types.Address
	// Caller is the account that called into this frame
	Caller types.Address
	// CallValue is the apparent TRX value of the call
	CallValue *big.Int
	// CallTokenID is the TRC-10 token sent along with the call
	CallTokenID *big.Int
	// CallTokenValue is the amount of CallTokenID sent along with the call
	CallTokenValue *big.Int
}

// CallScheme is the kind of a message call
type CallScheme int

const (
	Call CallScheme = iota
	CallCode
	DelegateCall
	StaticCall
	CallToken
)

func (s CallScheme) String() string {
	switch s {
	case Call:
		return "CALL"
	case CallCode:
		return "CALLCODE"
	case DelegateCall:
		return "DELEGATECALL"
	case StaticCall:
		return "STATICCALL"
	case CallToken:
		return "CALLTOKEN"
	default:
		return fmt.Sprintf("CallScheme(%d)", int(s))
	}
}

// CreateKind selects how the address of a new contract is derived
type CreateKind int

const (
	// CreateLegacy derives the address from the transaction root and a nonce
	CreateLegacy CreateKind = iota
	// CreateSalted derives the address from the caller, a salt and the code hash
	CreateSalted
	// CreateFixed creates at a given address
	CreateFixed
)

func (k CreateKind) String() string {
	switch k {
	case CreateLegacy:
		return "legacy"
	case CreateSalted:
		return "create2"
	case CreateFixed:
		return "fixed"
	default:
		return fmt.Sprintf("CreateKind(%d)", int(k))
	}
}

// CreateScheme carries the inputs of the address derivation. Only the
// fields of the selected Kind are set.
type CreateScheme struct {
	Kind CreateKind

	// legacy
	Nonce               uint64
	TransactionRootHash types.Hash

	// create2
	Caller   types.Address
	CodeHash types.Hash
	Salt     types.Hash

	// fixed
	Address types.Address
}

func LegacyScheme(nonce uint64, txRootHash types.Hash) CreateScheme {
	return CreateScheme{Kind: CreateLegacy, Nonce: nonce, TransactionRootHash: txRootHash}
}

func Create2Scheme(caller types.Address, codeHash, salt types.Hash) CreateScheme {
	return CreateScheme{Kind: CreateSalted, Caller: caller, CodeHash: codeHash, Salt: salt}
}

func FixedScheme(addr types.Address) CreateScheme {
	return CreateScheme{Kind: CreateFixed, Address: addr}
}

// Transfer moves TRX, or a TRC-10 token when TokenID is set
type Transfer struct {
	Source  types.Address
	Target  types.Address
	Value   *big.Int
	TokenID *big.Int
}

// IsToken reports whether the transfer moves a TRC-10 token
func (t *Transfer) IsToken() bool {
	return t.TokenID != nil
}
