package types

import (
	"github.com/tronvm/tvm-edge/helper/hex"
)

// HexBytes marshals as a 0x prefixed hex string
type HexBytes []byte

func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToHex(h)), nil
}

func (h *HexBytes) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	*h = buf

	return nil
}

// Log is an event emitted by LOG0 to LOG4
type Log struct {
	Address Address  `json:"address"`
	Topics  []Hash   `json:"topics"`
	Data    HexBytes `json:"data"`
}
