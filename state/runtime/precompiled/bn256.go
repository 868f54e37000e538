package precompiled

import (
	"math/big"

	bn256 "github.com/umbracle/go-eth-bn256"
)

const pairSize = 192

var (
	// true32Byte is returned if the bn256 pairing check succeeds
	true32Byte = []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	// false32Byte is returned if the bn256 pairing check fails
	false32Byte = make([]byte, 32)
)

// newCurvePoint unmarshals a binary blob into a bn256 elliptic curve point
func newCurvePoint(blob []byte) (*bn256.G1, error) {
	p := new(bn256.G1)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}

	return p, nil
}

// newTwistPoint unmarshals a binary blob into a bn256 twist point
func newTwistPoint(blob []byte) (*bn256.G2, error) {
	p := new(bn256.G2)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}

	return p, nil
}

type bn256Add struct {
}

func (b *bn256Add) gas(_ []byte) uint64 {
	return 500
}

func (b *bn256Add) run(input []byte) ([]byte, error) {
	x, err := newCurvePoint(getData(input, 0, 64))
	if err != nil {
		return nil, nil
	}

	y, err := newCurvePoint(getData(input, 64, 64))
	if err != nil {
		return nil, nil
	}

	res := new(bn256.G1)
	res.Add(x, y)

	return res.Marshal(), nil
}

type bn256Mul struct {
}

func (b *bn256Mul) gas(_ []byte) uint64 {
	return 40000
}

func (b *bn256Mul) run(input []byte) ([]byte, error) {
	p, err := newCurvePoint(getData(input, 0, 64))
	if err != nil {
		return nil, nil
	}

	res := new(bn256.G1)
	res.ScalarMult(p, new(big.Int).SetBytes(getData(input, 64, 32)))

	return res.Marshal(), nil
}

type bn256Pairing struct {
}

func (b *bn256Pairing) gas(input []byte) uint64 {
	return 100000 + uint64(len(input)/pairSize)*80000
}

func (b *bn256Pairing) run(input []byte) ([]byte, error) {
	if len(input)%pairSize > 0 {
		return nil, nil
	}

	var (
		cs []*bn256.G1
		ts []*bn256.G2
	)

	for i := 0; i < len(input); i += pairSize {
		c, err := newCurvePoint(input[i : i+64])
		if err != nil {
			return nil, nil
		}

		t, err := newTwistPoint(input[i+64 : i+pairSize])
		if err != nil {
			return nil, nil
		}

		cs = append(cs, c)
		ts = append(ts, t)
	}

	if bn256.PairingCheck(cs, ts) {
		return true32Byte, nil
	}

	return false32Byte, nil
}
