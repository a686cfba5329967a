package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tordrt/pgdrift"
)

var infoCmd = &cobra.Command{
	Use:   "info <database-url>",
	Short: "Show database name, user, server version, size and table count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := pgdrift.DatabaseInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Database: %s\n", info.DatabaseName)
		fmt.Printf("User:     %s\n", info.CurrentUser)
		fmt.Printf("Version:  %s\n", info.Version)
		fmt.Printf("Size:     %s\n", info.Size)
		fmt.Printf("Tables:   %d\n", info.TableCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
