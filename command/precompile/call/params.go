package call

import (
	"errors"

	"github.com/tronvm/tvm-edge/helper/common"
	"github.com/tronvm/tvm-edge/types"
)

const (
	addressFlag = "address"
	inputFlag   = "input"
	gasFlag     = "gas"
)

var (
	params = &callParams{}
)

var (
	errNotPrecompile = errors.New("address is not a native contract of the fork")
)

type callParams struct {
	addressRaw string
	inputRaw   string
	gas        uint64

	address types.Address
	input   []byte
}

func (p *callParams) getRequiredFlags() []string {
	return []string{
		addressFlag,
	}
}

func (p *callParams) init() (err error) {
	if p.address, err = types.ParseAddress(p.addressRaw); err != nil {
		return
	}

	p.input, err = common.ParseBytes(&p.inputRaw)

	return
}
