package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/apisurf/signature"
)

func newMergeCmd() *cobra.Command {
	var formatSpec string
	var output string

	cmd := &cobra.Command{
		Use:   "merge <signature-file>...",
		Short: "Merge partial signature files into one",
		Long: `Merges several partial signature files into one surface. A member
defined in more than one input keeps the last definition.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := settings()
			format, err := signature.ParseSpecifier(
				resolve(v, "format", formatSpec), signature.SpecifierOptions{})
			if err != nil {
				return err
			}

			cb, err := signature.ParseFiles(args...)
			if err != nil {
				return err
			}

			w, done, err := outputWriter(resolve(v, "output", output))
			if err != nil {
				return err
			}
			defer done()
			printer := &signature.Printer{Format: format}
			return printer.Print(w, cb)
		},
	}

	cmd.Flags().StringVarP(&formatSpec, "format", "f", "", "signature format for the merged output")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}
