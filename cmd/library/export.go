// Export command dumps all entries to a JSONL file.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/internal/sqlite"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.jsonl>",
	Short: "Export all stored entries as JSONL",
	Long: `Export writes every raw key/value entry to a JSONL file, one
[key, value] tuple per line. The file round-trips through "library load".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(backend *sqlite.Backend) error {
			if err := backend.ExportJSONL(args[0]); err != nil {
				return fmt.Errorf("export entries: %w", err)
			}
			fmt.Println("Exported entries to", args[0])
			return nil
		})
	},
}
