package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("apisurf")

func main() {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "apisurf",
		Short: "Extract, compare and track Java API surfaces",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase log verbosity (repeatable)")

	rootCmd.AddCommand(newPrintCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newAPILevelsCmd())
	rootCmd.AddCommand(newSurfacesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
