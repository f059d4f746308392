// Serve command runs the HTTP API.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/lindylearn/library-store/internal/api"
	"github.com/lindylearn/library-store/internal/sqlite"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the library over HTTP",
	Long: `Serve exposes the article listings and the mutate endpoint over
HTTP. The port comes from --port, falling back to the LIBRARY_PORT
environment variable.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: LIBRARY_PORT or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := api.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if servePort > 0 {
		config.Port = servePort
	}
	if flagDataDir == "" && config.DataDir != "" {
		flagDataDir = config.DataDir
	}

	return withBackend(func(backend *sqlite.Backend) error {
		addr := fmt.Sprintf(":%d", config.Port)
		log.Println("library API listening on", addr)
		return http.ListenAndServe(addr, api.NewRouter(backend))
	})
}
