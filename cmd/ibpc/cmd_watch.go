package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dhamidi/ibpc/batch"
	"github.com/dhamidi/ibpc/convert"
	"github.com/spf13/cobra"
)

// pseudoWriter reconverts changed files and keeps the .pseudo files next
// to them in sync.
type pseudoWriter struct {
	options convert.Options
	log     io.Writer
}

func (p *pseudoWriter) Changed(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(p.log, "%s: %v\n", path, err)
		return
	}
	result := convert.Convert(string(data), p.options)
	for _, d := range result.Diagnostics() {
		fmt.Fprintf(p.log, "%s:%v\n", path, d)
	}
	if err := batch.WriteResult(batch.FileResult{Path: path, Result: result}); err != nil {
		fmt.Fprintln(p.log, err)
		return
	}
	if result.Success {
		fmt.Fprintf(p.log, "%s -> %s\n", path, batch.PseudoPath(path))
	}
}

func (p *pseudoWriter) Removed(path string) {
	out := batch.PseudoPath(path)
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(p.log, err)
	}
}

func newWatchCmd() *cobra.Command {
	var flags conversionFlags
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Reconvert .java files whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := flags.options()
			if err != nil {
				return err
			}
			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("stat: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", args[0])
			}

			w := batch.NewWatcher(args[0], &pseudoWriter{options: options, log: cmd.ErrOrStderr()}, interval)
			w.Start()
			defer w.Stop()

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			<-interrupt
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "polling interval")

	return cmd
}
