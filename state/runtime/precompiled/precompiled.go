package precompiled

import (
	"bytes"
	"errors"
	"sort"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/types"
)

var (
	// ErrInvalidInput is returned when a native contract can not decode its input
	ErrInvalidInput = errors.New("invalid precompile input")
	// ErrReserved is returned by addresses reserved for native contracts that
	// are not executed by this machine
	ErrReserved = errors.New("precompile address is reserved")
)

// Result is the outcome of a native contract. Cost is always set, even
// when Err is not nil.
type Result struct {
	ReturnValue []byte
	Cost        uint64
	Err         error
}

// Failed reports whether the native contract failed
func (r *Result) Failed() bool {
	return r.Err != nil
}

type contract interface {
	gas(input []byte) uint64
	run(input []byte) ([]byte, error)
}

// Precompiled dispatches calls to native contracts. It is immutable once
// built and can be shared between runtimes.
type Precompiled struct {
	contracts map[types.Address]contract
	names     map[types.Address]string
}

var (
	ecrecoverAddr        = types.BytesToAddress([]byte{0x01})
	sha256Addr           = types.BytesToAddress([]byte{0x02})
	ripemd160Addr        = types.BytesToAddress([]byte{0x03})
	identityAddr         = types.BytesToAddress([]byte{0x04})
	modExpAddr           = types.BytesToAddress([]byte{0x05})
	bn256AddAddr         = types.BytesToAddress([]byte{0x06})
	bn256MulAddr         = types.BytesToAddress([]byte{0x07})
	bn256PairingAddr     = types.BytesToAddress([]byte{0x08})
	batchValidateSigAddr = types.BytesToAddress([]byte{0x09})
	validateMultiSigAddr = types.BytesToAddress([]byte{0x0a})

	verifyMintProofAddr     = types.BytesToAddress([]byte{0x01, 0x00, 0x00, 0x01})
	verifyTransferProofAddr = types.BytesToAddress([]byte{0x01, 0x00, 0x00, 0x02})
	verifyBurnProofAddr     = types.BytesToAddress([]byte{0x01, 0x00, 0x00, 0x03})
	pedersenHashAddr        = types.BytesToAddress([]byte{0x01, 0x00, 0x00, 0x04})
)

// New builds the native contract table enabled by config
func New(config *chain.Config) *Precompiled {
	p := &Precompiled{}
	p.setupContracts(config)

	return p
}

func (p *Precompiled) setupContracts(config *chain.Config) {
	p.register(ecrecoverAddr, "ecrecover", &ecrecover{})
	p.register(sha256Addr, "sha256", &sha256h{})

	if config.HasRealRipemd160 {
		p.register(ripemd160Addr, "ripemd160", &ripemd160h{})
	} else {
		p.register(ripemd160Addr, "ripemd160", &doubleSha256h{})
	}

	p.register(identityAddr, "identity", &identity{})
	p.register(modExpAddr, "modexp", &modExp{})
	p.register(bn256AddAddr, "bn256Add", &bn256Add{})
	p.register(bn256MulAddr, "bn256ScalarMul", &bn256Mul{})
	p.register(bn256PairingAddr, "bn256Pairing", &bn256Pairing{})

	if config.HasValidateSignature {
		p.register(batchValidateSigAddr, "batchValidateSign", &batchValidateSign{})
		p.register(validateMultiSigAddr, "validateMultiSign", &validateMultiSign{})
	}

	if config.HasShielded {
		p.register(verifyMintProofAddr, "verifyMintProof", &reserved{})
		p.register(verifyTransferProofAddr, "verifyTransferProof", &reserved{})
		p.register(verifyBurnProofAddr, "verifyBurnProof", &reserved{})
		p.register(pedersenHashAddr, "pedersenHash", &reserved{})
	}
}

func (p *Precompiled) register(addr types.Address, name string, c contract) {
	if len(p.contracts) == 0 {
		p.contracts = map[types.Address]contract{}
		p.names = map[types.Address]string{}
	}

	p.contracts[addr] = c
	p.names[addr] = name
}

// Name returns the name of the native contract at addr, or an empty string
func (p *Precompiled) Name(addr types.Address) string {
	return p.names[addr]
}

// IsReserved reports whether addr is reserved but not executed
func (p *Precompiled) IsReserved(addr types.Address) bool {
	_, ok := p.contracts[addr].(*reserved)

	return ok
}

// IsPrecompile reports whether addr is served by a native contract
func (p *Precompiled) IsPrecompile(addr types.Address) bool {
	_, ok := p.contracts[addr]

	return ok
}

// Addresses returns the registered addresses in ascending order
func (p *Precompiled) Addresses() []types.Address {
	addrs := make([]types.Address, 0, len(p.contracts))
	for addr := range p.contracts {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})

	return addrs
}

// Run executes the native contract at addr. It returns false when addr is
// not a native contract. The gas limit is advisory, the result always
// carries the full cost and the caller charges it.
func (p *Precompiled) Run(addr types.Address, input []byte, _ *uint64) (*Result, bool) {
	c, ok := p.contracts[addr]
	if !ok {
		return nil, false
	}

	res := &Result{
		Cost: c.gas(input),
	}

	res.ReturnValue, res.Err = c.run(input)
	if res.Err != nil {
		res.ReturnValue = nil
	}

	return res, true
}

// getData returns size bytes of input starting at offset, right padded
// with zeroes
func getData(input []byte, offset, size uint64) []byte {
	buf := make([]byte, size)

	if offset < uint64(len(input)) {
		copy(buf, input[offset:])
	}

	return buf
}

func baseGasCalc(input []byte, base, word uint64) uint64 {
	return base + uint64(len(input)+31)/32*word
}
