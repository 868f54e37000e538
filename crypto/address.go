package crypto

import (
	"encoding/binary"

	"github.com/tronvm/tvm-edge/types"
)

const (
	// Create2Prefix is the EIP-1014 marker byte
	Create2Prefix = byte(0xff)
)

// CreateAddress derives the address of a contract created by an internal
// transaction: keccak256(rootTxHash || bigEndian64(nonce))[12:]
func CreateAddress(txRootHash types.Hash, nonce uint64) types.Address {
	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], nonce)

	return types.BytesToAddress(Keccak256(txRootHash[:], buf[:])[12:])
}

// CreateAddress2 derives a salted contract address. The prefix is 0xff on
// chains with EIP-1014 addressing and the 0x41 address version byte on TRON.
func CreateAddress2(prefix byte, caller types.Address, salt types.Hash, codeHash types.Hash) types.Address {
	return types.BytesToAddress(Keccak256([]byte{prefix}, caller[:], salt[:], codeHash[:])[12:])
}
