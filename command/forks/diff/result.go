package diff

import (
	"bytes"
	"fmt"

	"github.com/tronvm/tvm-edge/command/helper"
)

type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

type ForksDiffResult struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Changes []FieldChange `json:"changes"`
}

func (r *ForksDiffResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := make([]string, len(r.Changes)+1)
	rows[0] = fmt.Sprintf("Field|%s|%s", r.From, r.To)

	for i, c := range r.Changes {
		rows[i+1] = fmt.Sprintf("%s|%s|%s", c.Field, c.From, c.To)
	}

	buffer.WriteString("\n[FORK DIFF]\n")
	buffer.WriteString(helper.FormatList(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
