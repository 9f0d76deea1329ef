// Package check turns structural comparison events into compatibility
// issues: what broke, what merely warrants attention, and what is a
// safe addition.
package check

import (
	"fmt"

	"github.com/dhamidi/apisurf/compare"
	"github.com/dhamidi/apisurf/model"
)

// Severity grades one issue.
type Severity string

const (
	// SeverityBreaking changes break compilation or linkage of
	// consumers.
	SeverityBreaking Severity = "breaking"
	// SeverityWarning changes deserve review but keep consumers
	// compiling (deprecation, constant value drift).
	SeverityWarning Severity = "warning"
	// SeverityInfo changes are safe additions.
	SeverityInfo Severity = "info"
)

// Kind names the category of one issue.
type Kind string

const (
	KindRemoved             Kind = "removed"
	KindAdded               Kind = "added"
	KindAddedAbstract       Kind = "added-abstract"
	KindTypeChanged         Kind = "type-changed"
	KindVisibilityTightened Kind = "visibility-tightened"
	KindModifierChanged     Kind = "modifier-changed"
	KindSuperclassChanged   Kind = "superclass-changed"
	KindThrowsChanged       Kind = "throws-changed"
	KindDeprecated          Kind = "deprecated"
	KindValueChanged        Kind = "value-changed"
)

// Issue is one compatibility finding.
type Issue struct {
	Kind        Kind
	Severity    Severity
	Item        string
	Description string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Item, i.Description)
}

// Report collects the issues of one comparison.
type Report struct {
	Issues []Issue
}

func (r *Report) add(kind Kind, severity Severity, item, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{
		Kind:        kind,
		Severity:    severity,
		Item:        item,
		Description: fmt.Sprintf(format, args...),
	})
}

// BreakingCount returns the number of breaking issues.
func (r *Report) BreakingCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityBreaking {
			n++
		}
	}
	return n
}

func (r *Report) HasBreakingChanges() bool { return r.BreakingCount() > 0 }

// Codebases compares two surfaces and grades every difference. The
// filter scopes both sides the way compare.Codebases does.
func Codebases(oldCB, newCB *model.Codebase, filter compare.Filter) *Report {
	c := &checker{report: &Report{}}
	compare.Codebases(oldCB, newCB, c, filter)
	return c.report
}

type checker struct {
	compare.Base
	report *Report
}

var visibilityRank = map[model.Visibility]int{
	model.VisibilityPrivate:   0,
	model.VisibilityPackage:   1,
	model.VisibilityProtected: 2,
	model.VisibilityPublic:    3,
}

func tightened(old, new *model.Modifiers) bool {
	return visibilityRank[new.Visibility()] < visibilityRank[old.Visibility()]
}

// visName renders package visibility, which Visibility.String elides
// for signature output.
func visName(v model.Visibility) string {
	if v == model.VisibilityPackage {
		return "package-private"
	}
	return string(v)
}

func (c *checker) RemovedClass(cls *model.ClassItem) {
	c.report.add(KindRemoved, SeverityBreaking, cls.QualifiedName(),
		"removed %s", cls.Kind())
}

func (c *checker) AddedClass(cls *model.ClassItem) {
	c.report.add(KindAdded, SeverityInfo, cls.QualifiedName(), "added %s", cls.Kind())
}

func (c *checker) ChangedClass(old, new *model.ClassItem) {
	name := new.QualifiedName()
	if old.Kind() != new.Kind() {
		c.report.add(KindTypeChanged, SeverityBreaking, name,
			"changed from %s to %s", old.Kind(), new.Kind())
	}
	if tightened(old.Modifiers(), new.Modifiers()) {
		c.report.add(KindVisibilityTightened, SeverityBreaking, name,
			"visibility tightened from %s to %s",
			visName(old.Modifiers().Visibility()), visName(new.Modifiers().Visibility()))
	}
	if !old.Modifiers().IsFinal() && new.Modifiers().IsFinal() {
		c.report.add(KindModifierChanged, SeverityBreaking, name, "class made final")
	}
	if !old.Modifiers().IsAbstract() && new.Modifiers().IsAbstract() {
		c.report.add(KindModifierChanged, SeverityBreaking, name, "class made abstract")
	}
	if superName(old) != superName(new) {
		c.report.add(KindSuperclassChanged, SeverityBreaking, name,
			"superclass changed from %s to %s", orNone(superName(old)), orNone(superName(new)))
	}
	if !old.Deprecated() && new.Deprecated() {
		c.report.add(KindDeprecated, SeverityWarning, name, "newly deprecated")
	}
}

func superName(cls *model.ClassItem) string {
	if cls.SuperClassType() == nil {
		return ""
	}
	return cls.SuperClassType().Erasure().String()
}

func orNone(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}

func (c *checker) RemovedConstructor(m *model.MethodItem) {
	c.report.add(KindRemoved, SeverityBreaking, m.Describe(), "removed constructor")
}

func (c *checker) AddedConstructor(m *model.MethodItem) {
	c.report.add(KindAdded, SeverityInfo, m.Describe(), "added constructor")
}

func (c *checker) ChangedConstructor(old, new *model.MethodItem) {
	c.methodChange(old, new, "constructor")
}

func (c *checker) RemovedMethod(m *model.MethodItem) {
	c.report.add(KindRemoved, SeverityBreaking, m.Describe(), "removed method")
}

func (c *checker) AddedMethod(m *model.MethodItem) {
	// A new abstract method forces every implementor to change.
	abstract := m.Modifiers().IsAbstract() ||
		m.ContainingClass().IsInterface() && !m.Modifiers().IsDefault() && !m.Modifiers().IsStatic()
	if abstract && !m.ContainingClass().Modifiers().IsFinal() {
		c.report.add(KindAddedAbstract, SeverityBreaking, m.Describe(),
			"added abstract method to extendable type")
		return
	}
	c.report.add(KindAdded, SeverityInfo, m.Describe(), "added method")
}

func (c *checker) ChangedMethod(old, new *model.MethodItem) {
	c.methodChange(old, new, "method")
}

func (c *checker) methodChange(old, new *model.MethodItem, what string) {
	name := new.Describe()
	if !new.IsConstructor() && old.ReturnType().String() != new.ReturnType().String() {
		c.report.add(KindTypeChanged, SeverityBreaking, name,
			"return type changed from %s to %s", old.ReturnType(), new.ReturnType())
	}
	if tightened(old.Modifiers(), new.Modifiers()) {
		c.report.add(KindVisibilityTightened, SeverityBreaking, name,
			"visibility tightened from %s to %s",
			visName(old.Modifiers().Visibility()), visName(new.Modifiers().Visibility()))
	}
	if !old.Modifiers().IsFinal() && new.Modifiers().IsFinal() {
		c.report.add(KindModifierChanged, SeverityBreaking, name, "%s made final", what)
	}
	if !old.Modifiers().IsAbstract() && new.Modifiers().IsAbstract() {
		c.report.add(KindModifierChanged, SeverityBreaking, name, "%s made abstract", what)
	}
	if old.Modifiers().IsStatic() != new.Modifiers().IsStatic() {
		c.report.add(KindModifierChanged, SeverityBreaking, name, "static modifier changed")
	}
	if added := addedThrows(old, new); len(added) > 0 {
		for _, thrown := range added {
			c.report.add(KindThrowsChanged, SeverityBreaking, name,
				"added checked exception %s", thrown)
		}
	}
	if !old.Deprecated() && new.Deprecated() {
		c.report.add(KindDeprecated, SeverityWarning, name, "newly deprecated")
	}
}

func addedThrows(old, new *model.MethodItem) []string {
	had := make(map[string]bool)
	for _, t := range old.ThrowsTypes() {
		had[t.String()] = true
	}
	var added []string
	for _, t := range new.ThrowsTypes() {
		if !had[t.String()] {
			added = append(added, t.String())
		}
	}
	return added
}

func (c *checker) RemovedField(f *model.FieldItem) {
	c.report.add(KindRemoved, SeverityBreaking, f.Describe(), "removed field")
}

func (c *checker) AddedField(f *model.FieldItem) {
	c.report.add(KindAdded, SeverityInfo, f.Describe(), "added field")
}

func (c *checker) ChangedField(old, new *model.FieldItem) {
	name := new.Describe()
	if old.Type().String() != new.Type().String() {
		c.report.add(KindTypeChanged, SeverityBreaking, name,
			"type changed from %s to %s", old.Type(), new.Type())
	}
	if tightened(old.Modifiers(), new.Modifiers()) {
		c.report.add(KindVisibilityTightened, SeverityBreaking, name,
			"visibility tightened from %s to %s",
			visName(old.Modifiers().Visibility()), visName(new.Modifiers().Visibility()))
	}
	if old.HasConstantValue() && new.HasConstantValue() &&
		old.ConstantValue() != new.ConstantValue() {
		// Inlined at consumer compile time, so a new value silently
		// diverges from already compiled code.
		c.report.add(KindValueChanged, SeverityWarning, name,
			"constant value changed from %s to %s", old.ConstantValue(), new.ConstantValue())
	}
	if !old.Deprecated() && new.Deprecated() {
		c.report.add(KindDeprecated, SeverityWarning, name, "newly deprecated")
	}
}

func (c *checker) RemovedProperty(p *model.PropertyItem) {
	c.report.add(KindRemoved, SeverityBreaking, p.Describe(), "removed property")
}

func (c *checker) AddedProperty(p *model.PropertyItem) {
	c.report.add(KindAdded, SeverityInfo, p.Describe(), "added property")
}

func (c *checker) ChangedProperty(old, new *model.PropertyItem) {
	name := new.Describe()
	if old.Type().String() != new.Type().String() {
		c.report.add(KindTypeChanged, SeverityBreaking, name,
			"type changed from %s to %s", old.Type(), new.Type())
	}
	if !old.Deprecated() && new.Deprecated() {
		c.report.add(KindDeprecated, SeverityWarning, name, "newly deprecated")
	}
}
