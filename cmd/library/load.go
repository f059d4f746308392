// Load command restores entries from a JSONL export.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/internal/sqlite"
)

var loadCmd = &cobra.Command{
	Use:   "load <file.jsonl>",
	Short: "Load entries from a JSONL export",
	Long: `Load applies a JSONL export as one bulk entry mutation. Existing
keys are overwritten with the values from the file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(backend *sqlite.Backend) error {
			if err := backend.ImportJSONL(args[0]); err != nil {
				return fmt.Errorf("load entries: %w", err)
			}
			fmt.Println("Loaded entries from", args[0])
			return nil
		})
	},
}
