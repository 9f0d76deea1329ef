package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/apisurf/signature"
	"github.com/dhamidi/apisurf/surface"
)

func newPrintCmd() *cobra.Command {
	var formatSpec string
	var output string
	var surfaceConfig string
	var surfaceName string
	var migrating bool

	cmd := &cobra.Command{
		Use:   "print <input>...",
		Short: "Emit an API surface as a signature file",
		Long: `Reads signature files, jars, .java files or source directories and
emits the surface as a signature file in the requested format.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := settings()
			format, err := signature.ParseSpecifier(
				resolve(v, "format", formatSpec),
				signature.SpecifierOptions{AllowMigrating: migrating})
			if err != nil {
				return err
			}

			cb, err := loadMerged(args)
			if err != nil {
				return err
			}

			printer := &signature.Printer{Format: format}
			if surfaceName != "" {
				cfg, err := surface.Load(surfaceConfig)
				if err != nil {
					return err
				}
				if printer.Filter, err = cfg.Filter(surfaceName); err != nil {
					return err
				}
			}

			w, done, err := outputWriter(resolve(v, "output", output))
			if err != nil {
				return err
			}
			defer done()
			return printer.Print(w, cb)
		},
	}

	cmd.Flags().StringVarP(&formatSpec, "format", "f", "",
		"signature format specifier, e.g. 2.0 or 5.0:kotlin-style-nulls=no")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&surfaceConfig, "surfaces", "", "surface configuration file")
	cmd.Flags().StringVar(&surfaceName, "surface", "", "emit only the named surface")
	cmd.Flags().BoolVar(&migrating, "migrating", false, "allow the migrating format property")
	cmd.MarkFlagsRequiredTogether("surfaces", "surface")

	return cmd
}
