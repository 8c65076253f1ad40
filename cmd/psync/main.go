package main

import (
	"os"

	"github.com/named-data/ndn-cpp-sub004/cmd"
)

func main() {
	if err := cmd.CmdPSync.Execute(); err != nil {
		os.Exit(1)
	}
}
