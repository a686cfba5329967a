package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tordrt/pgdrift"
)

var introspectOutput string

var introspectCmd = &cobra.Command{
	Use:   "introspect <database-url>",
	Short: "Dump a database's schema as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runIntrospect,
}

func init() {
	introspectCmd.Flags().StringVarP(&introspectOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(introspectCmd)
}

func runIntrospect(cmd *cobra.Command, args []string) error {
	model, err := pgdrift.Introspect(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	if introspectOutput == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(introspectOutput, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	logger.Info("schema written", "path", introspectOutput, "tables", len(model.Tables), "enums", len(model.Enums))
	return nil
}
