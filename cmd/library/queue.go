// Queue command adds or removes an article from the reading queue.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

var (
	queueRemove bool
	queueBefore string
	queueAfter  string
)

var queueCmd = &cobra.Command{
	Use:   "queue <id>",
	Short: "Add or remove an article from the reading queue",
	Long: `Queue flags an article for reading and places it in the queue
ordering. Use --before/--after to slot it next to existing queue entries;
without them the article lands at the top.

Example:
  library queue https://example.com/essay
  library queue https://example.com/essay --after https://example.com/other
  library queue https://example.com/essay --remove`,
	Args: cobra.ExactArgs(1),
	RunE: runQueue,
}

func init() {
	queueCmd.Flags().BoolVar(&queueRemove, "remove", false, "remove from the queue")
	queueCmd.Flags().StringVar(&queueBefore, "before", "", "id of the queue entry above the new position")
	queueCmd.Flags().StringVar(&queueAfter, "after", "", "id of the queue entry below the new position")
}

func runQueue(cmd *cobra.Command, args []string) error {
	err := runMutation("articleAddMoveToQueue", store.AddMoveToQueueArgs{
		ArticleID: args[0],
		IsQueued:  !queueRemove,
		BeforeID:  queueBefore,
		AfterID:   queueAfter,
		SortField: types.SortQueue,
	})
	if err != nil {
		return fmt.Errorf("update queue: %w", err)
	}
	if queueRemove {
		fmt.Println("Dequeued", args[0])
	} else {
		fmt.Println("Queued", args[0])
	}
	return nil
}
