package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

func main() {
	var verbose int
	var logFile string

	rootCmd := &cobra.Command{
		Use:          "ibpc",
		Short:        "Convert Java programs into IB pseudocode",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbose, path)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "log verbosity (repeat for more)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newUICmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
