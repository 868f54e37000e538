package precompiled

import (
	"github.com/tronvm/tvm-edge/crypto"
	"github.com/tronvm/tvm-edge/types"
)

const (
	costPerSign = 1500
	// maxBatchResults is the number of results that fit in the output word
	maxBatchResults = 32
)

// signatureGasCalc charges per signature assuming the fixed head of
// five words
func signatureGasCalc(input []byte) uint64 {
	words := uint64(len(input) / wordSize)
	if words < 5 {
		return 0
	}

	return costPerSign * (words - 5) / 6
}

// recoverSigner recovers the signer of hash. The recovery id is the raw
// last byte of the signature.
func recoverSigner(hash, sig []byte) (types.Address, bool) {
	if len(sig) < crypto.ECDSASignatureLength {
		return types.ZeroAddress, false
	}

	addr, err := crypto.RecoverAddress(hash, sig[:crypto.ECDSASignatureLength])
	if err != nil {
		return types.ZeroAddress, false
	}

	return addr, true
}

// batchValidateSign implements
// batchvalidatesign(bytes32 hash, bytes[] signatures, address[] addresses) returns (bytes32)
type batchValidateSign struct {
}

func (b *batchValidateSign) gas(input []byte) uint64 {
	return signatureGasCalc(input)
}

func (b *batchValidateSign) run(input []byte) ([]byte, error) {
	it := NewArgIterator(input)

	hash, ok := it.NextWord()
	if !ok {
		return nil, ErrInvalidInput
	}

	sigs, ok := it.NextArrayOfBytes()
	if !ok {
		return nil, ErrInvalidInput
	}

	addrs, ok := it.NextArrayOfWords()
	if !ok {
		return nil, ErrInvalidInput
	}

	if len(sigs) != len(addrs) {
		return nil, ErrInvalidInput
	}

	ret := make([]byte, wordSize)

	for i := 0; i < len(sigs) && i < maxBatchResults; i++ {
		signer, ok := recoverSigner(hash, sigs[i])
		if !ok {
			continue
		}

		if signer == types.BytesToAddress(addrs[i][wordSize-types.AddressLength:]) {
			ret[i] = 1
		}
	}

	return ret, nil
}

// validateMultiSign implements
// validatemultisign(address addr, uint256 permissionId, bytes32 hash, bytes[] signatures) returns (bool)
// It needs account permissions, which the machine does not have access to.
type validateMultiSign struct {
}

func (v *validateMultiSign) gas(input []byte) uint64 {
	return signatureGasCalc(input)
}

func (v *validateMultiSign) run(_ []byte) ([]byte, error) {
	return nil, ErrReserved
}

// reserved holds an address for a native contract that is not available yet
type reserved struct {
}

func (r *reserved) gas(_ []byte) uint64 {
	return 0
}

func (r *reserved) run(_ []byte) ([]byte, error) {
	return nil, ErrReserved
}
