// Progress command reports reading completion.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/internal/sqlite"
	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

var progressTopic string

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show reading progress",
	Long: `Progress reports how many articles were added and completed over
the last three calendar weeks, or within one topic with --topic.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(backend *sqlite.Backend) error {
			return backend.Query(func(tx types.ReadTransaction) error {
				progress, err := store.GetReadingProgress(tx, progressTopic)
				if err != nil {
					return err
				}
				if flagJSON {
					return printJSON(progress)
				}
				fmt.Printf("Completed %d of %d articles\n",
					progress.CompletedCount, progress.ArticleCount)
				return nil
			})
		})
	},
}

func init() {
	progressCmd.Flags().StringVar(&progressTopic, "topic", "", "restrict to one topic id")
}
