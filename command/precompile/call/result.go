package call

import (
	"bytes"
	"fmt"

	"github.com/tronvm/tvm-edge/command/helper"
)

type PrecompileCallResult struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Output  string `json:"output"`
	Cost    uint64 `json:"cost"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (r *PrecompileCallResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := []string{
		fmt.Sprintf("Address|%s", r.Address),
		fmt.Sprintf("Name|%s", r.Name),
		fmt.Sprintf("Success|%t", r.Success),
		fmt.Sprintf("Cost|%d", r.Cost),
		fmt.Sprintf("Output|%s", r.Output),
	}

	if r.Error != "" {
		rows = append(rows, fmt.Sprintf("Error|%s", r.Error))
	}

	buffer.WriteString("\n[NATIVE CONTRACT CALL]\n")
	buffer.WriteString(helper.FormatKV(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
