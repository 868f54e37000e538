package precompiled

import (
	"crypto/sha256"
	"math/big"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck

	"github.com/tronvm/tvm-edge/crypto"
	"github.com/tronvm/tvm-edge/helper/common"
)

type ecrecover struct {
}

func (e *ecrecover) gas(_ []byte) uint64 {
	return 3000
}

func (e *ecrecover) run(input []byte) ([]byte, error) {
	input = getData(input, 0, 128)

	// recover the value v. Expect all zeros except the last byte
	for i := 32; i < 63; i++ {
		if input[i] != 0 {
			return nil, nil
		}
	}

	v := input[63] - 27
	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])

	if !crypto.ValidateSignatureValues(new(big.Int).SetUint64(uint64(v)), r, s, false) {
		return nil, nil
	}

	sig := make([]byte, crypto.ECDSASignatureLength)
	copy(sig, input[64:128])
	sig[64] = v

	addr, err := crypto.RecoverAddress(input[:32], sig)
	if err != nil {
		return nil, nil
	}

	return common.LeftPad(addr.Bytes(), 32), nil
}

type identity struct {
}

func (i *identity) gas(input []byte) uint64 {
	return baseGasCalc(input, 15, 3)
}

func (i *identity) run(in []byte) ([]byte, error) {
	out := make([]byte, len(in))
	copy(out, in)

	return out, nil
}

type sha256h struct {
}

func (s *sha256h) gas(input []byte) uint64 {
	return baseGasCalc(input, 60, 12)
}

func (s *sha256h) run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)

	return h[:], nil
}

type ripemd160h struct {
}

func (r *ripemd160h) gas(input []byte) uint64 {
	return baseGasCalc(input, 600, 120)
}

func (r *ripemd160h) run(input []byte) ([]byte, error) {
	ripemd := ripemd160.New()
	ripemd.Write(input)
	res := ripemd.Sum(nil)

	return common.LeftPad(res, 32), nil
}

// doubleSha256h is served at the ripemd160 address before the real digest
// was activated: sha256 of the first 20 bytes of sha256(input)
type doubleSha256h struct {
}

func (d *doubleSha256h) gas(input []byte) uint64 {
	return baseGasCalc(input, 600, 120)
}

func (d *doubleSha256h) run(input []byte) ([]byte, error) {
	first := sha256.Sum256(input)
	h := sha256.Sum256(first[:20])

	return h[:], nil
}
