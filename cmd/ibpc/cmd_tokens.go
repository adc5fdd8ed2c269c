package main

import (
	"fmt"

	"github.com/dhamidi/ibpc/format"
	"github.com/dhamidi/ibpc/java/parser"
	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the tokens of a Java source file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := readSource(args)
			if err != nil {
				return err
			}
			tokens, diags := parser.Tokenize(source)
			if err := format.NewTokenEncoder(cmd.OutOrStdout()).Encode(tokens); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			for _, d := range diags {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%v\n", name, d)
			}
			return nil
		},
	}
	return cmd
}
