package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/dhamidi/ibpc/convert"
	"github.com/dhamidi/ibpc/format"
	"github.com/spf13/cobra"
)

const defaultMaxSize = 1 << 20

// conversionFlags are shared by every command that runs a conversion.
type conversionFlags struct {
	indent            int
	indentChar        string
	noComments        bool
	notEqual          string
	flatElseIf        bool
	lowercaseBooleans bool
}

func (f *conversionFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.indent, "indent", 4, "indent characters per nesting level")
	cmd.Flags().StringVar(&f.indentChar, "indent-char", " ", "indent character (use \"tab\" for a tab)")
	cmd.Flags().BoolVar(&f.noComments, "no-comments", false, "drop source comments from the output")
	cmd.Flags().StringVar(&f.notEqual, "not-equal", "≠", "rendering of != (\"≠\" or \"<>\")")
	cmd.Flags().BoolVar(&f.flatElseIf, "flat-else-if", false, "render else-if chains inside a single if block")
	cmd.Flags().BoolVar(&f.lowercaseBooleans, "lowercase-booleans", false, "render true/false in lower case")
}

func (f *conversionFlags) options() (convert.Options, error) {
	opts := convert.DefaultOptions()
	if f.indent < 0 {
		return opts, fmt.Errorf("--indent must not be negative, got %d", f.indent)
	}
	opts.IndentSize = f.indent
	opts.PreserveComments = !f.noComments

	switch f.indentChar {
	case "tab", "\t":
		opts.IndentChar = '\t'
	default:
		ch, size := utf8.DecodeRuneInString(f.indentChar)
		if ch == utf8.RuneError || size != len(f.indentChar) {
			return opts, fmt.Errorf("--indent-char must be a single character, got %q", f.indentChar)
		}
		opts.IndentChar = ch
	}

	switch f.notEqual {
	case "≠", "<>":
		opts.Rules.NotEqual = f.notEqual
	default:
		return opts, fmt.Errorf("unsupported --not-equal %q", f.notEqual)
	}
	opts.Rules.FlatElseIf = f.flatElseIf
	opts.Rules.UppercaseBooleans = !f.lowercaseBooleans
	return opts, nil
}

func newConvertCmd() *cobra.Command {
	var flags conversionFlags
	var outputFormat string
	var outputFile string
	var maxSize int
	var stats bool

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a Java source file into IB pseudocode",
		Long: `Convert Java source into IB pseudocode.

If no file is provided, reads Java source from stdin.
Diagnostics are printed to stderr; the command fails when the
conversion reports an error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			source, name, err := readSource(args)
			if err != nil {
				return err
			}
			if len(bytes.TrimSpace(source)) == 0 {
				return fmt.Errorf("%s: no Java source to convert", name)
			}
			if maxSize > 0 && len(source) > maxSize {
				return fmt.Errorf("%s: input is %d bytes, larger than --max-size %d", name, len(source), maxSize)
			}

			out := cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			enc, err := format.NewEncoder(outputFormat, out)
			if err != nil {
				return err
			}

			start := time.Now()
			result := convert.Convert(string(source), opts)
			elapsed := time.Since(start)

			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if outputFormat == "" || outputFormat == "text" {
				for _, d := range result.Diagnostics() {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s:%v\n", name, d)
				}
			}
			if stats {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d lines -> %d lines in %s (%d errors, %d warnings)\n",
					name, result.Metadata.OriginalLines, result.Metadata.ConvertedLines, elapsed,
					len(result.Errors), len(result.Warnings))
			}
			if !result.Success {
				return fmt.Errorf("%s: conversion failed with %d errors", name, len(result.Errors))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format: text, json, line")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the result to this file instead of stdout")
	cmd.Flags().IntVar(&maxSize, "max-size", defaultMaxSize, "reject inputs larger than this many bytes (0 disables)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print conversion statistics to stderr")

	return cmd
}

// readSource reads the named file, or stdin when no file is given.
func readSource(args []string) ([]byte, string, error) {
	if len(args) == 0 {
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return source, "<stdin>", nil
	}
	source, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return source, args[0], nil
}
