package list

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tronvm/tvm-edge/command/helper"
)

type ForkInfo struct {
	Name   string   `json:"name"`
	Parent string   `json:"parent"`
	Fields []string `json:"fields"`
}

type ForksListResult struct {
	Forks []ForkInfo `json:"forks"`
}

func (r *ForksListResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := make([]string, len(r.Forks)+1)
	rows[0] = "Name|Parent|Changes"

	for i, f := range r.Forks {
		rows[i+1] = fmt.Sprintf("%s|%s|%s", f.Name, f.Parent, strings.Join(f.Fields, ","))
	}

	buffer.WriteString("\n[FORKS]\n")
	buffer.WriteString(helper.FormatList(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
