package show

import (
	"bytes"
	"fmt"

	"github.com/tronvm/tvm-edge/command/helper"
)

type ConfigField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ForkShowResult struct {
	Name   string        `json:"name"`
	Fields []ConfigField `json:"fields"`
}

func (r *ForkShowResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		rows[i] = fmt.Sprintf("%s|%s", f.Name, f.Value)
	}

	buffer.WriteString(fmt.Sprintf("\n[FORK %s]\n", r.Name))
	buffer.WriteString(helper.FormatKV(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
