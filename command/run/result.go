package run

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/tronvm/tvm-edge/command/helper"
	"github.com/tronvm/tvm-edge/types"
)

type RunResult struct {
	Reason      string       `json:"reason"`
	Success     bool         `json:"success"`
	GasUsed     uint64       `json:"gasUsed"`
	GasLeft     uint64       `json:"gasLeft"`
	Refund      uint64       `json:"refund"`
	ReturnValue string       `json:"returnValue"`
	Address     string       `json:"address,omitempty"`
	Base58      string       `json:"base58,omitempty"`
	Logs        []*types.Log `json:"logs"`
	Trace       interface{}  `json:"trace,omitempty"`
}

func (r *RunResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := []string{
		fmt.Sprintf("Reason|%s", r.Reason),
		fmt.Sprintf("Success|%t", r.Success),
		fmt.Sprintf("Gas used|%d", r.GasUsed),
		fmt.Sprintf("Gas left|%d", r.GasLeft),
		fmt.Sprintf("Refund|%d", r.Refund),
		fmt.Sprintf("Return value|%s", r.ReturnValue),
	}

	if r.Address != "" {
		rows = append(rows, fmt.Sprintf("Contract|%s (%s)", r.Address, r.Base58))
	}

	buffer.WriteString("\n[EXECUTION RESULT]\n")
	buffer.WriteString(helper.FormatKV(rows))

	if len(r.Logs) > 0 {
		logs := make([]string, len(r.Logs)+1)
		logs[0] = "Address|Topics|Data"

		for i, log := range r.Logs {
			logs[i+1] = fmt.Sprintf("%s|%d|%x", log.Address, len(log.Topics), []byte(log.Data))
		}

		buffer.WriteString("\n\n[LOGS]\n")
		buffer.WriteString(helper.FormatList(logs))
	}

	if r.Trace != nil {
		trace, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(r.Trace, "", "  ")
		if err != nil {
			trace = []byte(err.Error())
		}

		buffer.WriteString("\n\n[TRACE]\n")
		buffer.Write(trace)
	}

	buffer.WriteString("\n")

	return buffer.String()
}
