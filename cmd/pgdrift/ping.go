package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tordrt/pgdrift"
)

var pingCmd = &cobra.Command{
	Use:   "ping <database-url>",
	Short: "Test a database connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pgdrift.TestConnection(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Connection OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
