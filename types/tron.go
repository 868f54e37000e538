package types

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// TronAddressPrefix is the version byte of mainnet TRON addresses
const TronAddressPrefix = 0x41

var (
	ErrInvalidChecksum = errors.New("invalid base58 checksum")
	ErrInvalidPrefix   = errors.New("invalid tron address prefix")
)

// TronBytes returns the 21 byte form of the address, prefixed with 0x41
func (a Address) TronBytes() []byte {
	buf := make([]byte, 0, AddressLength+1)
	buf = append(buf, TronAddressPrefix)

	return append(buf, a[:]...)
}

// Base58 returns the base58check encoding used by TRON wallets
func (a Address) Base58() string {
	payload := a.TronBytes()

	return base58.Encode(append(payload, checksum(payload)...))
}

// Base58ToAddress decodes a base58check TRON address
func Base58ToAddress(str string) (Address, error) {
	raw, err := base58.Decode(str)
	if err != nil {
		return ZeroAddress, fmt.Errorf("invalid base58 address: %w", err)
	}

	if len(raw) != AddressLength+5 {
		return ZeroAddress, fmt.Errorf("incorrect address length %d", len(raw))
	}

	payload, sum := raw[:AddressLength+1], raw[AddressLength+1:]
	if !bytes.Equal(checksum(payload), sum) {
		return ZeroAddress, ErrInvalidChecksum
	}

	if payload[0] != TronAddressPrefix {
		return ZeroAddress, ErrInvalidPrefix
	}

	return BytesToAddress(payload[1:]), nil
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	return second[:4]
}
