package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	btc_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/tronvm/tvm-edge/helper/keccak"
	"github.com/tronvm/tvm-edge/types"
)

const (
	// ECDSASignatureLength is the size of a [R || S || V] signature
	ECDSASignatureLength = 65

	// compactHeader is the offset btcec adds to the recovery id in the
	// compact signature header
	compactHeader = 27
)

var (
	curveOrder     = btcec.S256().N
	curveOrderHalf = new(big.Int).Rsh(btcec.S256().N, 1)

	errHashOfInvalidLength = errors.New("message hash of invalid length")
	errInvalidSignature    = errors.New("invalid signature")
	errInvalidRecoveryID   = errors.New("invalid recovery id")
	errInvalidPrivateKey   = errors.New("invalid private key")
)

// Signature is a secp256k1 signature with its raw recovery id
type Signature struct {
	R *big.Int
	S *big.Int
	V byte
}

// ParseSignature splits a 65 byte [R || S || V] signature
func ParseSignature(raw []byte) (*Signature, error) {
	if len(raw) != ECDSASignatureLength {
		return nil, errInvalidSignature
	}

	return &Signature{
		R: new(big.Int).SetBytes(raw[:32]),
		S: new(big.Int).SetBytes(raw[32:64]),
		V: raw[64],
	}, nil
}

// Bytes encodes the signature as [R || S || V]
func (s *Signature) Bytes() []byte {
	out := make([]byte, ECDSASignatureLength)
	s.R.FillBytes(out[:32])
	s.S.FillBytes(out[32:64])
	out[64] = s.V

	return out
}

// Valid reports whether R and S are inside the curve order and V is a plain
// recovery id. With lowS the upper half of S is rejected.
func (s *Signature) Valid(lowS bool) bool {
	if s.R == nil || s.S == nil || s.V > 1 {
		return false
	}

	if s.R.Sign() <= 0 || s.S.Sign() <= 0 || s.R.Cmp(curveOrder) >= 0 {
		return false
	}

	if lowS {
		return s.S.Cmp(curveOrderHalf) <= 0
	}

	return s.S.Cmp(curveOrder) < 0
}

// ValidateSignatureValues checks v, r and s of a signature
func ValidateSignatureValues(v, r, s *big.Int, lowS bool) bool {
	if v == nil || !v.IsUint64() || v.Uint64() > 1 {
		return false
	}

	sig := &Signature{R: r, S: s, V: byte(v.Uint64())}

	return sig.Valid(lowS)
}

// GenerateECDSAKey generates a new secp256k1 key
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(btcec.S256(), rand.Reader)
}

// PrivateKeyFromScalar builds a secp256k1 key from its 32 byte scalar
func PrivateKeyFromScalar(buf []byte) (*ecdsa.PrivateKey, error) {
	if len(buf) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(buf))
	}

	prv, _ := btcec.PrivKeyFromBytes(buf)
	if prv.Key.IsZero() {
		return nil, errInvalidPrivateKey
	}

	return prv.ToECDSA(), nil
}

// PubKeyToAddress derives the 20 byte account of a public key
func PubKeyToAddress(pub *ecdsa.PublicKey) types.Address {
	raw := make([]byte, 64)
	pub.X.FillBytes(raw[:32])
	pub.Y.FillBytes(raw[32:])

	return pubBytesToAddress(raw)
}

func pubBytesToAddress(raw []byte) types.Address {
	return types.BytesToAddress(Keccak256(raw)[12:])
}

// RecoverAddress recovers the account that signed hash. The recovery id is
// the last byte of sig and must be 0 or 1.
func RecoverAddress(hash, sig []byte) (types.Address, error) {
	pub, err := recoverPubKey(hash, sig)
	if err != nil {
		return types.ZeroAddress, err
	}

	// drop the uncompressed point marker
	return pubBytesToAddress(pub.SerializeUncompressed()[1:]), nil
}

func recoverPubKey(hash, sig []byte) (*btcec.PublicKey, error) {
	if len(hash) != types.HashLength {
		return nil, errHashOfInvalidLength
	}

	if len(sig) != ECDSASignatureLength {
		return nil, errInvalidSignature
	}

	// ids 4 to 7 mean a compressed key to btcec
	v := sig[ECDSASignatureLength-1]
	if v > 3 {
		return nil, errInvalidRecoveryID
	}

	compact := make([]byte, 0, ECDSASignatureLength)
	compact = append(compact, v+compactHeader)
	compact = append(compact, sig[:ECDSASignatureLength-1]...)

	pub, _, err := btc_ecdsa.RecoverCompact(compact, hash)

	return pub, err
}

// Sign signs hash with a secp256k1 key. The result is [R || S || V] with V
// being 0 or 1.
func Sign(priv *ecdsa.PrivateKey, hash []byte) ([]byte, error) {
	if len(hash) != types.HashLength {
		return nil, errHashOfInvalidLength
	}

	if priv.Curve != btcec.S256() {
		return nil, errors.New("private key curve is not secp256k1")
	}

	var key btcec.PrivateKey
	if overflow := key.Key.SetByteSlice(priv.D.Bytes()); overflow || key.Key.IsZero() {
		return nil, errInvalidPrivateKey
	}

	defer key.Zero()

	compact, err := btc_ecdsa.SignCompact(&key, hash, false)
	if err != nil {
		return nil, err
	}

	sig := &Signature{
		R: new(big.Int).SetBytes(compact[1:33]),
		S: new(big.Int).SetBytes(compact[33:65]),
		V: compact[0] - compactHeader,
	}

	return sig.Bytes(), nil
}

// Keccak256 hashes the concatenation of v
func Keccak256(v ...[]byte) []byte {
	return keccak.Keccak256(nil, v...)
}

// Keccak256Hash is Keccak256 as a Hash
func Keccak256Hash(v ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(v...))
}
