// Add command saves a new article.
package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/internal/sqlite"
	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

var (
	addTitle string
	addQueue bool
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Save an article to the library",
	Long: `Add saves a web page to the library. The URL doubles as the
article id, so adding the same page twice keeps the first record.

Example:
  library add https://example.com/essay
  library add https://example.com/essay --title "An Essay" --queue`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "article title")
	addCmd.Flags().BoolVar(&addQueue, "queue", false, "add to the reading queue")
}

func runAdd(cmd *cobra.Command, args []string) error {
	url := args[0]
	article := &types.Article{
		ID:        url,
		URL:       url,
		TimeAdded: time.Now().Unix(),
	}
	if addTitle != "" {
		article.Title = &addTitle
	}

	raw, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}

	return withBackend(func(backend *sqlite.Backend) error {
		if err := backend.Mutate("putArticleIfNotExists", raw); err != nil {
			return fmt.Errorf("save article: %w", err)
		}
		if addQueue {
			queueArgs, err := json.Marshal(store.AddMoveToQueueArgs{
				ArticleID: url,
				IsQueued:  true,
				SortField: types.SortQueue,
			})
			if err != nil {
				return err
			}
			if err := backend.Mutate("articleAddMoveToQueue", queueArgs); err != nil {
				return fmt.Errorf("queue article: %w", err)
			}
		}
		fmt.Println("Saved", url)
		return nil
	})
}
