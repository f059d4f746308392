// Delete command removes an article.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an article and its parsed text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runMutation("deleteArticle", args[0]); err != nil {
			return fmt.Errorf("delete article: %w", err)
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}
