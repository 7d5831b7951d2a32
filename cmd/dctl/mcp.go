package main

import (
	"github.com/spf13/cobra"

	"github.com/standardbeagle/dctlforge/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the DCTL tools to an MCP client over stdio",
		Long: `Run an MCP server on stdin/stdout exposing dctl_parse, dctl_generate,
dctl_edit and dctl_validate. Diagnostics go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.parser()
			if err != nil {
				return err
			}
			return mcp.Serve(mcp.NewServer(Version, mcp.NewTools(p, a.limits())))
		},
	}
}
