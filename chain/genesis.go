package chain

import (
	"fmt"
	"math/big"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/tronvm/tvm-edge/helper/common"
	"github.com/tronvm/tvm-edge/helper/hex"
	"github.com/tronvm/tvm-edge/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GenesisAccount is an account seeded into the world before execution
type GenesisAccount struct {
	Code    []byte
	Storage map[types.Hash]types.Hash
	Balance *big.Int
	Nonce   uint64
	Tokens  map[uint64]*big.Int
}

// GenesisAlloc specifies the initial world state
type GenesisAlloc map[types.Address]*GenesisAccount

type genesisAccountJSON struct {
	Code    *string                   `json:"code,omitempty"`
	Storage map[types.Hash]types.Hash `json:"storage,omitempty"`
	Balance *string                   `json:"balance"`
	Nonce   *string                   `json:"nonce,omitempty"`
	Tokens  map[string]string         `json:"tokens,omitempty"`
}

func (g *GenesisAccount) MarshalJSON() ([]byte, error) {
	obj := &genesisAccountJSON{}

	if len(g.Code) != 0 {
		code := hex.EncodeToHex(g.Code)
		obj.Code = &code
	}

	if len(g.Storage) != 0 {
		obj.Storage = g.Storage
	}

	if g.Balance != nil {
		balance := hex.EncodeBig(g.Balance)
		obj.Balance = &balance
	}

	if g.Nonce != 0 {
		nonce := hex.EncodeUint64(g.Nonce)
		obj.Nonce = &nonce
	}

	if len(g.Tokens) != 0 {
		obj.Tokens = make(map[string]string, len(g.Tokens))
		for id, value := range g.Tokens {
			obj.Tokens[fmt.Sprintf("%d", id)] = hex.EncodeBig(value)
		}
	}

	return json.Marshal(obj)
}

func (g *GenesisAccount) UnmarshalJSON(data []byte) error {
	var dec genesisAccountJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}

	var err error

	if dec.Code != nil {
		if g.Code, err = common.ParseBytes(dec.Code); err != nil {
			return fmt.Errorf("code: %w", err)
		}
	}

	g.Storage = dec.Storage

	if g.Balance, err = common.ParseUint256orHex(dec.Balance); err != nil {
		return fmt.Errorf("balance: %w", err)
	}

	if g.Nonce, err = common.ParseUint64orHex(dec.Nonce); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}

	if len(dec.Tokens) != 0 {
		g.Tokens = make(map[uint64]*big.Int, len(dec.Tokens))

		for id, value := range dec.Tokens {
			id, value := id, value

			tokenID, err := common.ParseUint64orHex(&id)
			if err != nil {
				return fmt.Errorf("token id %q: %w", id, err)
			}

			if g.Tokens[tokenID], err = common.ParseUint256orHex(&value); err != nil {
				return fmt.Errorf("token %d balance: %w", tokenID, err)
			}
		}
	}

	return nil
}

// ReadGenesisAlloc loads an alloc from a json file of the form
//
//	{"0x41...": {"balance": "0x10", "code": "0x60...", "tokens": {"1000001": "5"}}}
func ReadGenesisAlloc(path string) (GenesisAlloc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	alloc := GenesisAlloc{}
	if err := json.Unmarshal(data, &alloc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return alloc, nil
}
