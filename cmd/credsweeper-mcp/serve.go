// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/credsweeper/credsweeper-mcp/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scanning tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, err := loadTools()
		if err != nil {
			return err
		}

		server := mcp.NewServer(&mcp.Implementation{Name: "credsweeper-mcp", Version: version}, nil)
		tools.Register(server)

		logging.Logger.Infow("serving MCP on stdio", "version", version)
		return server.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}
