// Shared helpers for library CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lindylearn/library-store/internal/sqlite"
	"github.com/lindylearn/library-store/pkg/types"
)

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	return backend, nil
}

// withBackend runs fn against an attached backend and detaches afterwards.
func withBackend(fn func(backend *sqlite.Backend) error) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()
	return fn(backend)
}

// runMutation attaches the backend and applies one named mutation with the
// given argument payload.
func runMutation(name string, args any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal %s args: %w", name, err)
	}
	return withBackend(func(backend *sqlite.Backend) error {
		return backend.Mutate(name, raw)
	})
}

// printJSON writes v as indented JSON.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// printArticleTable prints articles in a human-readable table format.
func printArticleTable(articles []*types.Article) {
	if len(articles) == 0 {
		fmt.Println("No articles found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tTITLE\tPROGRESS\tADDED")
	for _, a := range articles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.ID, articleTitle(a), formatProgress(a.ReadingProgress), formatAdded(a.TimeAdded))
	}
	w.Flush()
	fmt.Print(sb.String())
}

// articleTitle returns the display title, falling back to the URL.
func articleTitle(a *types.Article) string {
	if a.Title != nil && *a.Title != "" {
		return *a.Title
	}
	return a.URL
}

func formatProgress(progress float64) string {
	if progress >= types.ReadingProgressFullClamp {
		return "read"
	}
	return fmt.Sprintf("%d%%", int(progress*100))
}

func formatAdded(timeAdded int64) string {
	if timeAdded == 0 {
		return "-"
	}
	return time.Unix(timeAdded, 0).UTC().Format("2006-01-02")
}
