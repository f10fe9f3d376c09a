package version

import (
	"fmt"

	"github.com/rootnegativeone/tightbeam/cmd"
	"github.com/spf13/cobra"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

var CMD = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	cmd.CMD.AddCommand(CMD)
}
