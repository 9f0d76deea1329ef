package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/apisurf/surface"
)

func newSurfacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surfaces <config-file>",
		Short: "Validate a surface configuration and list its surfaces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := surface.Load(args[0])
			if err != nil {
				return err
			}
			for _, name := range cfg.Names() {
				chain, err := cfg.Chain(name)
				if err != nil {
					return err
				}
				var names []string
				for _, s := range chain {
					names = append(names, s.Name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", name, strings.Join(names, " -> "))
			}
			log.Noticef("%s: %d surfaces", args[0], len(cfg.Names()))
			return nil
		},
	}
	return cmd
}
