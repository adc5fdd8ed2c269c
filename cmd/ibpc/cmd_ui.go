package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dhamidi/ibpc/ui"
	"github.com/spf13/cobra"
)

func newUICmd() *cobra.Command {
	var flags conversionFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web playground",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := flags.options()
			if err != nil {
				return err
			}
			server, err := ui.NewServer(options)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://%s\n", displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")

	return cmd
}
