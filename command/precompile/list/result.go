package list

import (
	"bytes"
	"fmt"

	"github.com/tronvm/tvm-edge/command/helper"
)

type ContractInfo struct {
	Address  string `json:"address"`
	Base58   string `json:"base58"`
	Name     string `json:"name"`
	Reserved bool   `json:"reserved"`
}

type PrecompileListResult struct {
	Fork      string         `json:"fork"`
	Contracts []ContractInfo `json:"contracts"`
}

func (r *PrecompileListResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := make([]string, len(r.Contracts)+1)
	rows[0] = "Address|Name|Reserved"

	for i, c := range r.Contracts {
		rows[i+1] = fmt.Sprintf("%s|%s|%t", c.Address, c.Name, c.Reserved)
	}

	buffer.WriteString(fmt.Sprintf("\n[NATIVE CONTRACTS %s]\n", r.Fork))
	buffer.WriteString(helper.FormatList(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
