package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/apisurf/apilevels"
)

func newAPILevelsCmd() *cobra.Command {
	var outputFormat string
	var output string
	var minLevel int
	var versionNames []string
	var sdkSpecs []string
	var removeMissing bool

	cmd := &cobra.Command{
		Use:   "api-levels <input>...",
		Short: "Aggregate API snapshots into a version history",
		Long: `Folds an ordered series of API snapshots (oldest first; jars or
signature files) into one history recording when each class, method and
field appeared, was deprecated and disappeared. Emits XML (internal
names and descriptors) or JSON (source names with version labels).

References to classes missing from the history are a hard error
naming every missing class and its referers; --remove-missing prunes
them instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style := apilevels.InternalNames
			switch outputFormat {
			case "xml":
			case "json":
				style = apilevels.SourceNames
			default:
				return fmt.Errorf("unknown output format %q (expected xml or json)", outputFormat)
			}

			sdks, err := parseSdkSpecs(sdkSpecs)
			if err != nil {
				return err
			}

			api := apilevels.NewApi(minLevel)
			for i, path := range args {
				cb, err := loadCodebase(path)
				if err != nil {
					return err
				}
				level := minLevel + i
				log.Infof("folding %s as level %d", path, level)
				apilevels.AddApisFromCodebase(api, level, cb, style)
			}

			if removeMissing {
				api.Clean()
			} else {
				api.InlineFromHiddenSuperClasses()
				api.RemoveImplicitInterfaces()
				api.RemoveOverridingMethods()
				api.PrunePackagePrivateClasses()
				if err := api.VerifyNoMissingClasses(); err != nil {
					return err
				}
			}

			v := settings()
			w, done, err := outputWriter(resolve(v, "output", output))
			if err != nil {
				return err
			}
			defer done()

			if outputFormat == "json" {
				return apilevels.WriteJSON(w, api, versionNames)
			}
			return apilevels.WriteXML(w, api, sdks)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "xml", "output format (xml, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&minLevel, "min", 1, "API level of the first input")
	cmd.Flags().StringSliceVar(&versionNames, "names", nil,
		"version labels for JSON output, oldest first (e.g. 1.0,1.1,2.0)")
	cmd.Flags().StringArrayVar(&sdkSpecs, "sdk", nil,
		"extension SDK as id:shortname:name[:reference], repeatable")
	cmd.Flags().BoolVar(&removeMissing, "remove-missing", false,
		"prune references to missing classes instead of failing")

	return cmd
}

func parseSdkSpecs(specs []string) ([]apilevels.SdkIdentifier, error) {
	var sdks []apilevels.SdkIdentifier
	for _, spec := range specs {
		parts := strings.SplitN(spec, ":", 4)
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid --sdk %q (expected id:shortname:name[:reference])", spec)
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid --sdk %q: id must be a number", spec)
		}
		sdk := apilevels.SdkIdentifier{ID: id, ShortName: parts[1], Name: parts[2]}
		if len(parts) == 4 {
			sdk.Reference = parts[3]
		}
		sdks = append(sdks, sdk)
	}
	return sdks, nil
}
