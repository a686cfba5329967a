package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tordrt/pgdrift"
)

var migrationsCmd = &cobra.Command{
	Use:   "migrations",
	Short: "List generated migrations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		migrations, err := pgdrift.ListMigrations(cfg.MigrationsDir)
		if err != nil {
			return err
		}
		if len(migrations) == 0 {
			fmt.Println("No migrations found.")
			return nil
		}

		for _, m := range migrations {
			if m.Manifest == nil {
				fmt.Println(m.Name)
				continue
			}
			suffix := ""
			if m.Manifest.HasDangerous {
				suffix = ", dangerous"
			}
			fmt.Printf("%s  (%d items%s)\n", m.Name, m.Manifest.ItemsCount, suffix)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrationsCmd)
}
