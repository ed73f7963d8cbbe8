package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/k3ss-official/k3ss-search/internal/adapters/driving/httpapi"
	"github.com/k3ss-official/k3ss-search/internal/core/services"
	"github.com/k3ss-official/k3ss-search/internal/logger"
)

// portSearchRange is how many ports --auto-port tries past the configured one.
const portSearchRange = 100

var (
	serveAddr     string
	serveAutoPort bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the JSON API used by the web front end:

  GET  /api/discover-locations
  POST /api/search
  POST /api/search/{searchId}/cancel
  GET  /api/search/{searchId}/progress
  POST /api/format-llm
  GET  /api/file-content?path=...
  GET  /api/health
  GET  /api/openapi.json

A .env file in the working directory is read first. The listen address comes
from --addr, K3SS_SERVER_ADDR or server.addr in the config file.

Searches leave out hidden files and directories unless search.skip_hidden
is false, so total_files_scanned does not include them.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationDotEnv: "true"},
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :5010)")
	serveCmd.Flags().BoolVar(&serveAutoPort, "auto-port", false, "use the next free port if the configured one is taken")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := settings.Server.Addr
	if serveAutoPort {
		free, err := nextFreeAddr(addr)
		if err != nil {
			return err
		}
		addr = free
	}

	server, err := httpapi.NewServer(httpapi.Config{
		Addr:           addr,
		AllowedOrigins: settings.Server.AllowedOrigins,
		Version:        version,
	}, &httpapi.Ports{
		Discovery: discoveryService,
		Search:    searchService,
		Format:    formatService,
	}, logger.Logger())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "k3ss-search API listening on %s\n", addr)
	return server.Run(cmd.Context())
}

// nextFreeAddr keeps the host of addr and moves its port to the first free
// one at or after it.
func nextFreeAddr(addr string) (string, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("parsing address %q: %w", addr, err)
	}
	start, err := strconv.Atoi(portStr)
	if err != nil || start <= 0 {
		return addr, nil
	}
	port, err := services.FindAvailablePort(host, start, start+portSearchRange)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}
