// Import command bulk-loads articles from a JSON file.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import articles from a JSON array",
	Long: `Import reads a JSON array of articles and saves them as one bulk
mutation. Articles whose ids already exist are skipped, so re-running an
import is safe.

Example:
  library import pocket-export.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	var articles []*types.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return fmt.Errorf("parse import file: %w", err)
	}

	err = runMutation("importArticles", store.ImportArticlesArgs{Articles: articles})
	if err != nil {
		return fmt.Errorf("import articles: %w", err)
	}
	fmt.Printf("Imported %d articles\n", len(articles))
	return nil
}
