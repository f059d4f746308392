// Sync command inspects the replication state.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/internal/sqlite"
)

var syncMarkPushed int64

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Show mutations awaiting push",
	Long: `Sync lists the locally applied mutations that have not been
acknowledged by a replication server. Use --mark-pushed to record that a
server accepted one.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().Int64Var(&syncMarkPushed, "mark-pushed", 0, "mark the mutation with this id as pushed")
}

func runSync(cmd *cobra.Command, args []string) error {
	return withBackend(func(backend *sqlite.Backend) error {
		if syncMarkPushed > 0 {
			if err := backend.MarkPushed(syncMarkPushed); err != nil {
				return fmt.Errorf("mark pushed: %w", err)
			}
			fmt.Println("Marked mutation", syncMarkPushed, "as pushed")
			return nil
		}

		pending, err := backend.PendingMutations()
		if err != nil {
			return fmt.Errorf("pending mutations: %w", err)
		}
		if flagJSON {
			return printJSON(pending)
		}
		printMutationTable(pending)
		return nil
	})
}

func printMutationTable(pending []sqlite.Mutation) {
	if len(pending) == 0 {
		fmt.Println("No pending mutations.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tNAME\tAPPLIED")
	for _, m := range pending {
		fmt.Fprintf(w, "%d\t%s\t%s\n", m.ID, m.Name, m.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
	fmt.Print(sb.String())
}
