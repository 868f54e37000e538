package main

import (
	"github.com/tronvm/tvm-edge/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}
