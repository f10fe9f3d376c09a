package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "tightbeam",
	Short: "one-way fountain-coded byte transfer",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()
		return nil
	},
}
