// List command queries the article listings.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/internal/sqlite"
	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

var (
	listState string
	listTopic string
	listSince int64
	listGroup bool
	listYears bool
)

var listCmd = &cobra.Command{
	Use:   "list [recent|queue|favorites]",
	Short: "List saved articles",
	Long: `List displays saved articles. The default listing is by recency;
queue and favorites show those orderings instead.

Example:
  library list
  library list --state unread --topic 12
  library list --group --years
  library list queue
  library list favorites --json`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"recent", "queue", "favorites"},
	RunE:      runList,
}

func init() {
	listCmd.Flags().StringVar(&listState, "state", "all", "filter by state (all, unread, read, favorite)")
	listCmd.Flags().StringVar(&listTopic, "topic", "", "filter by topic id")
	listCmd.Flags().Int64Var(&listSince, "since", 0, "only articles added at or after this unix time")
	listCmd.Flags().BoolVar(&listGroup, "group", false, "group by week and month buckets")
	listCmd.Flags().BoolVar(&listYears, "years", false, "aggregate month buckets under years (implies --group)")
}

func runList(cmd *cobra.Command, args []string) error {
	listing := "recent"
	if len(args) == 1 {
		listing = args[0]
	}

	return withBackend(func(backend *sqlite.Backend) error {
		return backend.Query(func(tx types.ReadTransaction) error {
			switch listing {
			case "queue":
				articles, err := store.ListQueueArticles(tx)
				if err != nil {
					return err
				}
				return outputArticles(articles)
			case "favorites":
				articles, err := store.ListFavoriteArticles(tx)
				if err != nil {
					return err
				}
				return outputArticles(articles)
			default:
				return listRecent(tx)
			}
		})
	})
}

func listRecent(tx types.ReadTransaction) error {
	var since time.Time
	if listSince > 0 {
		since = time.Unix(listSince, 0)
	}
	state := store.StateFilter(listState)

	if listGroup || listYears {
		buckets, err := store.GroupRecentArticles(tx, since, state, listTopic, listYears)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(buckets)
		}
		printBuckets(buckets, 0)
		return nil
	}

	articles, err := store.ListRecentArticles(tx, since, state, listTopic)
	if err != nil {
		return err
	}
	return outputArticles(articles)
}

func outputArticles(articles []*types.Article) error {
	if flagJSON {
		return printJSON(articles)
	}
	printArticleTable(articles)
	return nil
}

// printBuckets renders the grouped listing, indenting nested year buckets.
func printBuckets(buckets []*store.ArticleBucket, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, bucket := range buckets {
		fmt.Printf("%s%s (%d)\n", indent, bucket.Title, countBucket(bucket))
		for _, a := range bucket.Articles {
			fmt.Printf("%s  %s\n", indent, articleTitle(a))
		}
		printBuckets(bucket.Children, depth+1)
	}
}

func countBucket(bucket *store.ArticleBucket) int {
	count := len(bucket.Articles)
	for _, child := range bucket.Children {
		count += countBucket(child)
	}
	return count
}
