package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/custodia-labs/pageform/internal/adapters/driving/http"
	"github.com/custodia-labs/pageform/internal/adapters/driving/mcp"
	"github.com/custodia-labs/pageform/internal/logger"
)

var serveMCPAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Long: `Run the REST API on --host and --port.

With --mcp-addr an MCP server is started alongside it over streamable HTTP,
sharing the same services.

Examples:
  pageform serve --port 8000
  pageform serve --mcp-addr :8081`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveMCPAddr, "mcp-addr", "", "also serve MCP over HTTP on this address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if projectService == nil || formService == nil {
		return errors.New("services not configured")
	}

	api, err := httpapi.NewServer(httpapi.Ports{
		Projects: projectService,
		Forms:    formService,
		Bulk:     bulkDispatcher,
	}, httpapi.Options{MaxUploadBytes: serverOptions.MaxUploadBytes})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	addr := serverOptions.Addr
	if addr == "" {
		addr = ":8000"
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		fmt.Fprintf(cmd.OutOrStdout(), "API listening on http://%s\n", addr)
		return api.Run(ctx, addr)
	})

	if serveMCPAddr != "" {
		server, err := mcp.NewServer(&mcp.Ports{
			Projects: projectService,
			Forms:    formService,
			Bulk:     bulkDispatcher,
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			fmt.Fprintf(cmd.OutOrStdout(), "MCP listening on http://%s\n", serveMCPAddr)
			return server.RunHTTP(ctx, serveMCPAddr)
		})
	}

	err = g.Wait()
	logger.Info("serve stopped: %v", err)
	return err
}
