// Topics command shows the topic tree.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/internal/sqlite"
	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Show topic groups and their article counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(backend *sqlite.Backend) error {
			return backend.Query(func(tx types.ReadTransaction) error {
				groups, err := store.GroupTopics(tx)
				if err != nil {
					return err
				}
				if flagJSON {
					return printJSON(groups)
				}
				printTopicGroups(tx, groups)
				return nil
			})
		})
	},
}

func printTopicGroups(tx types.ReadTransaction, groups []store.TopicGroup) {
	if len(groups) == 0 {
		fmt.Println("No topics found.")
		return
	}
	for _, group := range groups {
		fmt.Println(topicLabel(group.GroupTopic))
		for _, child := range group.Children {
			count, err := store.GetTopicArticlesCount(tx, child.ID)
			if err != nil {
				count = 0
			}
			fmt.Printf("  %s (%d)\n", topicLabel(child), count)
		}
	}
}

func topicLabel(topic *types.Topic) string {
	if topic.Emoji != nil && *topic.Emoji != "" {
		return *topic.Emoji + " " + topic.Name
	}
	return topic.Name
}
