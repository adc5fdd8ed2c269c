package main

import (
	"github.com/dhamidi/ibpc/lsp"
	"github.com/spf13/cobra"
)

func newLSPCmd() *cobra.Command {
	var opts conversionFlags

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := opts.options()
			if err != nil {
				return err
			}
			server := lsp.NewLSPServer(version, options)
			return server.RunStdio()
		},
	}
	opts.register(cmd)

	return cmd
}
