// Favorite command toggles the favorite flag on an article.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/pkg/store"
)

var favoriteRemove bool

var favoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Favorite or unfavorite an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runMutation("articleSetFavorite", store.SetFavoriteArgs{
			ID:         args[0],
			IsFavorite: !favoriteRemove,
		})
		if err != nil {
			return fmt.Errorf("set favorite: %w", err)
		}
		if favoriteRemove {
			fmt.Println("Unfavorited", args[0])
		} else {
			fmt.Println("Favorited", args[0])
		}
		return nil
	},
}

func init() {
	favoriteCmd.Flags().BoolVar(&favoriteRemove, "remove", false, "remove from favorites")
}
