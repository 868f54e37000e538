package tests

import (
	"crypto/ecdsa"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tronvm/tvm-edge/crypto"
	"github.com/tronvm/tvm-edge/types"
)

// GenerateKeyAndAddr returns a fresh secp256k1 key and the address it signs for
func GenerateKeyAndAddr(t *testing.T) (*ecdsa.PrivateKey, types.Address) {
	t.Helper()

	key, err := crypto.GenerateECDSAKey()
	require.NoError(t, err)

	return key, crypto.PubKeyToAddress(&key.PublicKey)
}

// SignHash signs hash with a fresh key, returning the 65 byte signature and the signer
func SignHash(t *testing.T, hash []byte) ([]byte, types.Address) {
	t.Helper()

	key, addr := GenerateKeyAndAddr(t)

	sig, err := crypto.Sign(key, hash)
	require.NoError(t, err)

	return sig, addr
}
