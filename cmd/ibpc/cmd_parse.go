package main

import (
	"fmt"

	"github.com/dhamidi/ibpc/format"
	"github.com/dhamidi/ibpc/java/parser"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var includeComments bool
	var includePositions bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a Java source file and dump the syntax tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := readSource(args)
			if err != nil {
				return err
			}

			tokens, lexDiags := parser.Tokenize(source)
			var opts []parser.Option
			if includeComments {
				opts = append(opts, parser.WithComments())
			}
			node, parseDiags := parser.Parse(tokens, opts...)

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "json":
				if err := format.NewASTJSONEncoder(out).Encode(node); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
			case "tree":
				if includePositions {
					fmt.Fprintln(out, node.StringWithPositions())
				} else {
					fmt.Fprintln(out, node.String())
				}
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			diags := append(lexDiags, parseDiags...)
			for _, d := range diags {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%v\n", name, d)
			}
			if len(parseDiags) > 0 {
				return fmt.Errorf("%s: %d syntax errors", name, len(parseDiags))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format: tree, json")
	cmd.Flags().BoolVar(&includeComments, "comments", false, "keep comment nodes in the tree")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "include token positions in tree output")

	return cmd
}
