// Open command marks an article as opened and optionally records progress.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/pkg/types"
)

var openProgress float64

var openCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Mark an article as opened",
	Long: `Open bumps the article to the top of the time-based orderings, as
a reader visiting it would. Use --progress to record how far you read.

Example:
  library open https://example.com/essay
  library open https://example.com/essay --progress 0.6`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().Float64Var(&openProgress, "progress", -1, "reading progress in [0,1]")
}

func runOpen(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := runMutation("articleTrackOpened", id); err != nil {
		return fmt.Errorf("track opened: %w", err)
	}

	if openProgress >= 0 {
		update := types.ArticleUpdate{ID: id, ReadingProgress: &openProgress}
		if err := runMutation("updateArticle", update); err != nil {
			return fmt.Errorf("record progress: %w", err)
		}
	}

	fmt.Println("Opened", id)
	return nil
}
