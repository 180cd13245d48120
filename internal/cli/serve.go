// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/tenderkit/tender-citations/internal/logging"
	"github.com/tenderkit/tender-citations/internal/tool"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the citation tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := tool.NewServer(a.cfg, a.log)
			a.log.Info("serving MCP over stdio",
				logging.String("name", a.cfg.Server.Name),
				logging.String("version", a.cfg.Server.Version),
				logging.Strings("document_roots", a.cfg.Documents.Roots),
			)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
