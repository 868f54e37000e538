package types

import (
	"fmt"
	"strings"

	"github.com/tronvm/tvm-edge/helper/hex"
)

const (
	HashLength    = 32
	AddressLength = 20
)

var (
	ZeroAddress = Address{}
	ZeroHash    = Hash{}
)

var (
	// EmptyCodeHash is the keccak256 hash of the empty byte sequence
	EmptyCodeHash = StringToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
)

type Hash [HashLength]byte

type Address [AddressLength]byte

func min(i, j int) int {
	if i < j {
		return i
	}

	return j
}

func BytesToHash(b []byte) Hash {
	var h Hash

	size := len(b)
	min := min(size, HashLength)

	copy(h[HashLength-min:], b[len(b)-min:])

	return h
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

func (a Address) String() string {
	return hex.EncodeToHex(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func StringToHash(str string) Hash {
	return BytesToHash(StringToBytes(str))
}

func StringToAddress(str string) Address {
	return BytesToAddress(StringToBytes(str))
}

func BytesToAddress(b []byte) Address {
	var a Address

	size := len(b)
	min := min(size, AddressLength)

	copy(a[AddressLength-min:], b[len(b)-min:])

	return a
}

// StringToBytes decodes a hex string with an optional 0x prefix.
// Odd length strings are left padded with a zero nibble.
func StringToBytes(str string) []byte {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	b, _ := hex.DecodeString(str)

	return b
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	*h = BytesToHash(StringToBytes(string(input)))

	return nil
}

// UnmarshalText parses an address in hex or TRON base58 syntax.
func (a *Address) UnmarshalText(input []byte) error {
	addr, err := ParseAddress(string(input))
	if err != nil {
		return err
	}

	*a = addr

	return nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAddress accepts a 0x prefixed hex address, a 41 prefixed TRON hex
// address or a base58check TRON address.
func ParseAddress(str string) (Address, error) {
	if strings.HasPrefix(str, "T") {
		return Base58ToAddress(str)
	}

	buf, err := hex.DecodeHex(str)
	if err != nil {
		return ZeroAddress, fmt.Errorf("invalid address %q: %w", str, err)
	}

	switch len(buf) {
	case AddressLength:
		return BytesToAddress(buf), nil
	case AddressLength + 1:
		if buf[0] != TronAddressPrefix {
			return ZeroAddress, fmt.Errorf("invalid address prefix 0x%x", buf[0])
		}

		return BytesToAddress(buf[1:]), nil
	default:
		return ZeroAddress, fmt.Errorf("incorrect address length %d", len(buf))
	}
}
