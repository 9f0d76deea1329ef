package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/apisurf/check"
	"github.com/dhamidi/apisurf/compare"
	"github.com/dhamidi/apisurf/model"
	"github.com/dhamidi/apisurf/surface"
)

func newCompareCmd() *cobra.Command {
	var surfaceConfig string
	var surfaceName string
	var failOnChanges bool
	var runCheck bool

	cmd := &cobra.Command{
		Use:   "compare <old> <new>",
		Short: "Diff two API surfaces structurally",
		Long: `Compares two surfaces and reports every added, removed and changed
package, class and member. Inputs may be signature files, jars or
source trees in any combination.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Infof("comparing %s", describeInputs(args))
			oldCB, err := loadCodebase(args[0])
			if err != nil {
				return err
			}
			newCB, err := loadCodebase(args[1])
			if err != nil {
				return err
			}

			var filter compare.Filter
			if surfaceName != "" {
				cfg, err := surface.Load(surfaceConfig)
				if err != nil {
					return err
				}
				if filter, err = cfg.Filter(surfaceName); err != nil {
					return err
				}
			}

			if runCheck {
				report := check.Codebases(oldCB, newCB, filter)
				for _, issue := range report.Issues {
					fmt.Fprintln(cmd.OutOrStdout(), issue)
				}
				log.Noticef("%d issues, %d breaking", len(report.Issues), report.BreakingCount())
				if report.HasBreakingChanges() {
					return fmt.Errorf("%d breaking changes between %s and %s",
						report.BreakingCount(), args[0], args[1])
				}
				return nil
			}

			reporter := &eventReporter{out: cmd.OutOrStdout()}
			compare.Codebases(oldCB, newCB, reporter, filter)
			log.Noticef("%d events", reporter.count)

			if failOnChanges && reporter.count > 0 {
				return fmt.Errorf("%d API changes between %s and %s", reporter.count, args[0], args[1])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&surfaceConfig, "surfaces", "", "surface configuration file")
	cmd.Flags().StringVar(&surfaceName, "surface", "", "compare only the named surface")
	cmd.Flags().BoolVar(&failOnChanges, "fail-on-changes", false, "exit non-zero when any event is reported")
	cmd.Flags().BoolVar(&runCheck, "check", false, "grade changes for compatibility and fail on breaking ones")
	cmd.MarkFlagsRequiredTogether("surfaces", "surface")

	return cmd
}

// eventReporter prints one line per comparison event.
type eventReporter struct {
	compare.Base
	out   io.Writer
	count int
}

func (r *eventReporter) event(format string, args ...interface{}) {
	r.count++
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *eventReporter) AddedPackage(p *model.PackageItem) {
	r.event("added package %s", p.Name())
}

func (r *eventReporter) RemovedPackage(p *model.PackageItem) {
	r.event("removed package %s", p.Name())
}

func (r *eventReporter) AddedClass(c *model.ClassItem) {
	r.event("added %s %s", c.Kind(), c.QualifiedName())
}

func (r *eventReporter) RemovedClass(c *model.ClassItem) {
	r.event("removed %s %s", c.Kind(), c.QualifiedName())
}

func (r *eventReporter) ChangedClass(old, new *model.ClassItem) {
	r.event("changed %s %s", new.Kind(), new.QualifiedName())
}

func (r *eventReporter) AddedConstructor(m *model.MethodItem) {
	r.event("added constructor %s", m.Describe())
}

func (r *eventReporter) RemovedConstructor(m *model.MethodItem) {
	r.event("removed constructor %s", m.Describe())
}

func (r *eventReporter) ChangedConstructor(old, new *model.MethodItem) {
	r.event("changed constructor %s", new.Describe())
}

func (r *eventReporter) AddedMethod(m *model.MethodItem) {
	r.event("added method %s", m.Describe())
}

func (r *eventReporter) RemovedMethod(m *model.MethodItem) {
	r.event("removed method %s", m.Describe())
}

func (r *eventReporter) ChangedMethod(old, new *model.MethodItem) {
	r.event("changed method %s", new.Describe())
}

func (r *eventReporter) AddedField(f *model.FieldItem) {
	r.event("added field %s", f.Describe())
}

func (r *eventReporter) RemovedField(f *model.FieldItem) {
	r.event("removed field %s", f.Describe())
}

func (r *eventReporter) ChangedField(old, new *model.FieldItem) {
	r.event("changed field %s", new.Describe())
}

func (r *eventReporter) AddedProperty(p *model.PropertyItem) {
	r.event("added property %s", p.Describe())
}

func (r *eventReporter) RemovedProperty(p *model.PropertyItem) {
	r.event("removed property %s", p.Describe())
}

func (r *eventReporter) ChangedProperty(old, new *model.PropertyItem) {
	r.event("changed property %s", new.Describe())
}
