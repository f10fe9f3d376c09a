package main

import (
	"fmt"
	"os"

	_ "github.com/rootnegativeone/tightbeam/logging"

	"github.com/rootnegativeone/tightbeam/cmd"

	_ "github.com/rootnegativeone/tightbeam/cli"
	_ "github.com/rootnegativeone/tightbeam/version"
)

func main() {
	if err := cmd.CMD.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
