package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <input>...",
		Short: "Validate inputs and list the classes they declare",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				cb, err := loadCodebase(path)
				if err != nil {
					return err
				}
				classes := cb.AllClasses()
				declared := 0
				for _, cls := range classes {
					if cls.IsStub() {
						continue
					}
					declared++
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cls.Kind(), cls.QualifiedName())
				}
				log.Noticef("%s: %d classes, %d packages", path, declared, len(cb.Packages()))
			}
			return nil
		},
	}
	return cmd
}
