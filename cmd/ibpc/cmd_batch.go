package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhamidi/ibpc/batch"
	"github.com/dhamidi/ibpc/format"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var flags conversionFlags
	var write bool

	cmd := &cobra.Command{
		Use:   "batch <dir|file.zip|file.java...>",
		Short: "Convert many Java files at once",
		Long: `Convert every .java file below a directory, inside a zip archive,
or named on the command line.

A summary line is printed per file. With -w the pseudocode of each
successful conversion is written next to its source as a .pseudo file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := flags.options()
			if err != nil {
				return err
			}

			req := batch.Request{Files: args}
			if len(args) == 1 {
				info, err := os.Stat(args[0])
				if err != nil {
					return fmt.Errorf("stat: %w", err)
				}
				switch {
				case info.IsDir():
					req = batch.Request{Path: args[0]}
				case filepath.Ext(args[0]) == ".zip":
					if write {
						return fmt.Errorf("-w cannot write into a zip archive")
					}
					req = batch.Request{ZipFile: args[0]}
				}
			}

			job := batch.Run(req, options)
			for _, e := range job.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}

			out := format.NewLineEncoder(cmd.OutOrStdout())
			for _, f := range job.Files {
				fmt.Fprintf(cmd.OutOrStdout(), "file\t%s\n", f.Path)
				if err := out.Encode(f.Result); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
				if write {
					if err := batch.WriteResult(f); err != nil {
						return err
					}
				}
			}

			if job.Status == batch.StatusFailed {
				return fmt.Errorf("batch failed: %s", job.Error)
			}
			if failed := job.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d files failed to convert", failed, len(job.Files))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write a .pseudo file next to each source")

	return cmd
}
