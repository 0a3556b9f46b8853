package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadsense/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API.

Routes:
  POST /api/analyze                  {"url": "..."}
  POST /api/sessions/{id}/questions  {"question": "..."}
  GET  /api/sessions/{id}
  GET  /api/history
  GET  /healthz

The server shuts down gracefully on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := httpapi.NewServer(&httpapi.Ports{
		Analysis: analysisService,
		History:  historyService,
	})
	if err != nil {
		return err
	}

	stop := startBackground(cmd.Context())
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}
