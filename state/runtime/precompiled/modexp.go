package precompiled

import (
	"math"
	"math/big"

	"github.com/tronvm/tvm-edge/helper/common"
)

type modExp struct {
}

var (
	big1      = big.NewInt(1)
	big4      = big.NewInt(4)
	big8      = big.NewInt(8)
	big16     = big.NewInt(16)
	big64     = big.NewInt(64)
	big96     = big.NewInt(96)
	big480    = big.NewInt(480)
	big1024   = big.NewInt(1024)
	big3072   = big.NewInt(3072)
	big199680 = big.NewInt(199680)
)

var (
	divisor = big.NewInt(20)
)

// maxModExpLen bounds the operand sizes that are actually computed. Any
// larger operand costs more gas than a block can carry.
const maxModExpLen = 1 << 20

func subMul(x, a, b, c *big.Int) *big.Int {
	// x ** 2 // a + b * x - c
	tmp := new(big.Int)

	// x ** 2 / a
	tmp.Mul(x, x)
	tmp.Div(tmp, a)

	// b * x - c
	x.Mul(x, b)
	x.Sub(x, c)

	return x.Add(x, tmp)
}

func multComplexity(x *big.Int) *big.Int {
	if x.Cmp(big64) <= 0 {
		// x ** 2
		x.Mul(x, x)
	} else if x.Cmp(big1024) <= 0 {
		// x ** 2 // 4 + 96 * x - 3072
		x = subMul(x, big4, big96, big3072)
	} else {
		// x ** 2 // 16 + 480 * x - 199680
		x = subMul(x, big16, big480, big199680)
	}

	return x
}

// modExpInput is the header of a modexp call and its operand region
type modExpInput struct {
	baseLen *big.Int
	expLen  *big.Int
	modLen  *big.Int
	body    []byte
}

func parseModExpInput(input []byte) *modExpInput {
	m := &modExpInput{
		baseLen: new(big.Int).SetBytes(getData(input, 0, 32)),
		expLen:  new(big.Int).SetBytes(getData(input, 32, 32)),
		modLen:  new(big.Int).SetBytes(getData(input, 64, 32)),
	}

	if len(input) > 96 {
		m.body = input[96:]
	}

	return m
}

// operand returns the bytes of body in [offset, offset+length) that are
// present in the input, and how many trailing zero bytes are missing
func (m *modExpInput) operand(offset, length *big.Int) ([]byte, *big.Int) {
	bodyLen := big.NewInt(int64(len(m.body)))

	if offset.Cmp(bodyLen) >= 0 {
		return nil, new(big.Int).Set(length)
	}

	end := new(big.Int).Add(offset, length)
	if end.Cmp(bodyLen) <= 0 {
		return m.body[offset.Uint64():end.Uint64()], new(big.Int)
	}

	return m.body[offset.Uint64():], end.Sub(end, bodyLen)
}

// expBitLen is the bit length of the exponent, missing bytes being zero
func (m *modExpInput) expBitLen() *big.Int {
	present, missing := m.operand(m.baseLen, m.expLen)

	head := new(big.Int).SetBytes(present)
	if head.Sign() == 0 {
		return new(big.Int)
	}

	bits := new(big.Int).Mul(missing, big8)

	return bits.Add(bits, big.NewInt(int64(head.BitLen())))
}

func (m *modExp) gas(input []byte) uint64 {
	in := parseModExpInput(input)

	// a := mult_complexity(max(length_of_MODULUS, length_of_BASE))
	gasCost := new(big.Int)
	if in.modLen.Cmp(in.baseLen) >= 0 {
		gasCost.Set(in.modLen)
	} else {
		gasCost.Set(in.baseLen)
	}

	gasCost = multComplexity(gasCost)

	// a = a * max(bitlen(EXPONENT), 1)
	if bits := in.expBitLen(); bits.Cmp(big1) >= 0 {
		gasCost.Mul(gasCost, bits)
	}

	// a = a / div
	gasCost.Div(gasCost, divisor)

	// cap to the max uint64
	if !gasCost.IsUint64() {
		return math.MaxUint64
	}

	return gasCost.Uint64()
}

func (m *modExp) run(input []byte) ([]byte, error) {
	in := parseModExpInput(input)

	// a zero modulus gives an empty output whatever the base and exponent
	if in.modLen.Sign() == 0 {
		return nil, nil
	}

	present, _ := in.operand(new(big.Int).Add(in.baseLen, in.expLen), in.modLen)
	if new(big.Int).SetBytes(present).Sign() == 0 {
		return nil, nil
	}

	for _, l := range []*big.Int{in.baseLen, in.expLen, in.modLen} {
		if l.Cmp(big.NewInt(maxModExpLen)) > 0 {
			return nil, ErrInvalidInput
		}
	}

	baseLen, expLen, modLen := in.baseLen.Uint64(), in.expLen.Uint64(), in.modLen.Uint64()

	base := new(big.Int).SetBytes(getData(in.body, 0, baseLen))
	exponent := new(big.Int).SetBytes(getData(in.body, baseLen, expLen))
	modulus := new(big.Int).SetBytes(getData(in.body, baseLen+expLen, modLen))

	if modulus.Sign() == 0 {
		return nil, nil
	}

	res := base.Exp(base, exponent, modulus).Bytes()

	return common.LeftPad(res, int(modLen)), nil
}
