// Move command repositions an article within a sort ordering.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

var (
	moveField  string
	moveBefore string
	moveAfter  string
)

var moveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Move an article between two neighbors in a listing",
	Long: `Move assigns the article a position between its new neighbors in
the named ordering. At least one of --before/--after is required.

Example:
  library move <id> --field queue_sort_position --after <other-id>`,
	Args: cobra.ExactArgs(1),
	RunE: runMove,
}

func init() {
	moveCmd.Flags().StringVar(&moveField, "field", string(types.SortQueue),
		"sort field (queue_sort_position, recency_sort_position, topic_sort_position, domain_sort_position, favorites_sort_position)")
	moveCmd.Flags().StringVar(&moveBefore, "before", "", "id of the article above the new position")
	moveCmd.Flags().StringVar(&moveAfter, "after", "", "id of the article below the new position")
}

func runMove(cmd *cobra.Command, args []string) error {
	if moveBefore == "" && moveAfter == "" {
		return fmt.Errorf("at least one of --before or --after is required")
	}
	err := runMutation("moveArticlePosition", store.MovePositionArgs{
		ArticleID: args[0],
		BeforeID:  moveBefore,
		AfterID:   moveAfter,
		SortField: types.SortField(moveField),
	})
	if err != nil {
		return fmt.Errorf("move article: %w", err)
	}
	fmt.Println("Moved", args[0])
	return nil
}
