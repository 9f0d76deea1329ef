package signature

import (
	"io"
	"sort"
	"strings"

	"github.com/dhamidi/apisurf/model"
)

// Printer emits a codebase as a signature file in one format dialect.
type Printer struct {
	Format FileFormat

	// Filter selects the items to emit. nil keeps public and protected
	// items that are neither hidden nor removed.
	Filter func(model.Item) bool
}

// Print writes the signature file for the codebase. Packages and classes
// are emitted in sorted order regardless of load order; member order
// within a class follows the format's overloaded-method-order property.
func (p *Printer) Print(w io.Writer, cb *model.Codebase) error {
	var sb strings.Builder
	sb.WriteString(p.Format.Header())

	first := true
	for _, pkg := range cb.Packages() {
		classes := p.emittedClasses(pkg)
		if len(classes) == 0 {
			continue
		}
		if !first {
			sb.WriteByte('\n')
		}
		first = false

		sb.WriteString("package ")
		sb.WriteString(pkg.Name())
		sb.WriteString(" {\n")
		for _, cls := range classes {
			sb.WriteByte('\n')
			p.writeClass(&sb, cls)
		}
		sb.WriteString("\n}\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (p *Printer) keep(item model.Item) bool {
	if p.Filter != nil {
		return p.Filter(item)
	}
	if item.Hidden() || item.Removed() {
		return false
	}
	v := item.Modifiers().Visibility()
	return v == model.VisibilityPublic || v == model.VisibilityProtected
}

// emittedClasses flattens a package's class tree (nested classes are
// written as their own blocks) and sorts it by full name.
func (p *Printer) emittedClasses(pkg *model.PackageItem) []*model.ClassItem {
	var classes []*model.ClassItem
	var collect func(cls *model.ClassItem)
	collect = func(cls *model.ClassItem) {
		if cls.IsStub() || !p.keep(cls) {
			return
		}
		classes = append(classes, cls)
		for _, nested := range cls.NestedClasses() {
			collect(nested)
		}
	}
	for _, cls := range pkg.SortedClasses() {
		collect(cls)
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].FullName() < classes[j].FullName()
	})
	return classes
}

func (p *Printer) typeOptions() model.TypeStringOptions {
	return model.TypeStringOptions{
		KotlinStyleNulls:   p.Format.KotlinStyleNulls,
		IncludeAnnotations: !p.Format.KotlinStyleNulls,
	}
}

func (p *Printer) writeClass(sb *strings.Builder, cls *model.ClassItem) {
	sb.WriteString("  ")
	if mods := modifierString(cls, false); mods != "" {
		sb.WriteString(mods)
		sb.WriteByte(' ')
	}
	switch cls.Kind() {
	case model.ClassKindAnnotation:
		sb.WriteString("@interface")
	default:
		sb.WriteString(string(cls.Kind()))
	}
	sb.WriteByte(' ')
	sb.WriteString(cls.FullName())
	sb.WriteString(cls.TypeParameters().String())
	p.writeSupertypes(sb, cls)
	sb.WriteString(" {\n")

	for _, ctor := range p.orderedConstructors(cls) {
		p.writeConstructor(sb, cls, ctor)
	}
	for _, m := range p.orderedMethods(cls) {
		p.writeMethod(sb, m, false)
	}
	if p.Format.AddAdditionalOverrides {
		for _, m := range p.additionalOverrides(cls) {
			p.writeMethod(sb, m, true)
		}
	}
	p.writeFields(sb, cls)
	p.writeProperties(sb, cls)

	sb.WriteString("  }\n")
}

func (p *Printer) writeSupertypes(sb *strings.Builder, cls *model.ClassItem) {
	ifaces := make([]string, 0, len(cls.InterfaceTypes()))
	for _, t := range cls.InterfaceTypes() {
		ifaces = append(ifaces, t.String())
	}
	if p.Format.SortWholeExtendsList {
		sort.Strings(ifaces)
	}

	switch cls.Kind() {
	case model.ClassKindInterface, model.ClassKindAnnotation:
		if len(ifaces) > 0 {
			sb.WriteString(" extends ")
			sb.WriteString(strings.Join(ifaces, ", "))
		}
	case model.ClassKindEnum:
		// The java.lang.Enum supertype is implicit and never written.
		if len(ifaces) > 0 {
			sb.WriteString(" implements ")
			sb.WriteString(strings.Join(ifaces, ", "))
		}
	default:
		if super := cls.SuperClassType(); super != nil && super.Name != "java.lang.Object" {
			sb.WriteString(" extends ")
			sb.WriteString(super.String())
		}
		if len(ifaces) > 0 {
			sb.WriteString(" implements ")
			sb.WriteString(strings.Join(ifaces, ", "))
		}
	}
}

func (p *Printer) orderedConstructors(cls *model.ClassItem) []*model.MethodItem {
	ctors := p.keptMethods(cls.Constructors())
	if p.Format.OverloadedMethodOrder == OrderSignature {
		sort.Slice(ctors, func(i, j int) bool {
			return ctors[i].ParameterSignature() < ctors[j].ParameterSignature()
		})
	}
	return ctors
}

func (p *Printer) orderedMethods(cls *model.ClassItem) []*model.MethodItem {
	methods := p.keptMethods(cls.Methods())
	if p.Format.OverloadedMethodOrder == OrderSignature {
		sort.Slice(methods, func(i, j int) bool {
			if methods[i].Name() != methods[j].Name() {
				return methods[i].Name() < methods[j].Name()
			}
			return methods[i].ParameterSignature() < methods[j].ParameterSignature()
		})
	}
	return methods
}

func (p *Printer) keptMethods(methods []*model.MethodItem) []*model.MethodItem {
	kept := make([]*model.MethodItem, 0, len(methods))
	for _, m := range methods {
		if p.keep(m) {
			kept = append(kept, m)
		}
	}
	return kept
}

// additionalOverrides lists inherited abstract interface methods that a
// concrete class must provide but does not redeclare. Formats with
// add-additional-overrides spell these out so removing an interface from
// the hierarchy cannot silently drop API members.
func (p *Printer) additionalOverrides(cls *model.ClassItem) []*model.MethodItem {
	if !cls.IsClass() || cls.Modifiers().IsAbstract() {
		return nil
	}
	declared := func(name, sig string) bool {
		for c := cls; c != nil; c = c.SuperClass() {
			for _, m := range c.Methods() {
				if m.Name() == name && m.ParameterSignature() == sig {
					return true
				}
			}
		}
		return false
	}

	var extra []*model.MethodItem
	seen := map[string]bool{}
	for _, iface := range cls.AllInterfaces()[1:] {
		for _, m := range iface.Methods() {
			if !m.Modifiers().IsAbstract() || !p.keep(m) {
				continue
			}
			sig := m.Signature()
			if seen[sig] || declared(m.Name(), m.ParameterSignature()) {
				continue
			}
			seen[sig] = true
			extra = append(extra, m)
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		return extra[i].Signature() < extra[j].Signature()
	})
	return extra
}

func (p *Printer) writeConstructor(sb *strings.Builder, cls *model.ClassItem, ctor *model.MethodItem) {
	sb.WriteString("    ctor ")
	if mods := modifierString(ctor, false); mods != "" {
		sb.WriteString(mods)
		sb.WriteByte(' ')
	}
	sb.WriteString(cls.FullName())
	sb.WriteByte('(')
	p.writeParameters(sb, ctor.Parameters())
	sb.WriteByte(')')
	p.writeThrows(sb, ctor)
	sb.WriteString(";\n")
}

func (p *Printer) writeMethod(sb *strings.Builder, m *model.MethodItem, dropAbstract bool) {
	sb.WriteString("    method ")
	if mods := modifierString(m, dropAbstract); mods != "" {
		sb.WriteString(mods)
		sb.WriteByte(' ')
	}
	if tp := m.TypeParameters().String(); tp != "" {
		sb.WriteString(tp)
		sb.WriteByte(' ')
	}
	sb.WriteString(m.ReturnType().TypeString(p.typeOptions()))
	sb.WriteByte(' ')
	sb.WriteString(m.Name())
	sb.WriteByte('(')
	p.writeParameters(sb, m.Parameters())
	sb.WriteByte(')')
	p.writeThrows(sb, m)
	if dv := m.DefaultValue(); dv != "" {
		sb.WriteString(" default ")
		sb.WriteString(dv)
	}
	sb.WriteString(";\n")
}

func (p *Printer) writeThrows(sb *strings.Builder, m *model.MethodItem) {
	if len(m.ThrowsTypes()) == 0 {
		return
	}
	names := make([]string, 0, len(m.ThrowsTypes()))
	for _, t := range m.ThrowsTypes() {
		names = append(names, t.String())
	}
	sort.Strings(names)
	sb.WriteString(" throws ")
	sb.WriteString(strings.Join(names, ", "))
}

func (p *Printer) writeParameters(sb *strings.Builder, params []*model.ParameterItem) {
	for i, param := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		for _, a := range param.Modifiers().Annotations() {
			sb.WriteString(a.SourceString())
			sb.WriteByte(' ')
		}
		concise := p.Format.ConciseDefaultValues
		if param.HasDefaultValue() && (concise || param.DefaultValue() == "") {
			sb.WriteString("optional ")
		}
		sb.WriteString(param.Type().TypeString(p.typeOptions()))
		if param.HasDeclaredName() {
			sb.WriteByte(' ')
			sb.WriteString(param.Name())
		}
		if param.HasDefaultValue() && !concise && param.DefaultValue() != "" {
			sb.WriteString(" = ")
			sb.WriteString(param.DefaultValue())
		}
	}
}

func (p *Printer) writeFields(sb *strings.Builder, cls *model.ClassItem) {
	var constants, fields []*model.FieldItem
	for _, f := range cls.Fields() {
		if !p.keep(f) {
			continue
		}
		if f.IsEnumConstant() {
			constants = append(constants, f)
		} else {
			fields = append(fields, f)
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name() < fields[j].Name() })

	for _, f := range constants {
		p.writeField(sb, "enum_constant", f)
	}
	for _, f := range fields {
		p.writeField(sb, "field", f)
	}
}

func (p *Printer) writeField(sb *strings.Builder, keyword string, f *model.FieldItem) {
	sb.WriteString("    ")
	sb.WriteString(keyword)
	sb.WriteByte(' ')
	if mods := modifierString(f, false); mods != "" {
		sb.WriteString(mods)
		sb.WriteByte(' ')
	}
	sb.WriteString(f.Type().TypeString(p.typeOptions()))
	sb.WriteByte(' ')
	sb.WriteString(f.Name())
	if f.HasConstantValue() {
		sb.WriteString(" = ")
		sb.WriteString(f.ConstantValue())
	}
	sb.WriteString(";\n")
}

func (p *Printer) writeProperties(sb *strings.Builder, cls *model.ClassItem) {
	props := make([]*model.PropertyItem, 0, len(cls.Properties()))
	for _, prop := range cls.Properties() {
		if p.keep(prop) {
			props = append(props, prop)
		}
	}
	sort.Slice(props, func(i, j int) bool { return props[i].Name() < props[j].Name() })
	for _, prop := range props {
		sb.WriteString("    property ")
		if mods := modifierString(prop, false); mods != "" {
			sb.WriteString(mods)
			sb.WriteByte(' ')
		}
		sb.WriteString(prop.Type().TypeString(p.typeOptions()))
		sb.WriteByte(' ')
		sb.WriteString(prop.Name())
		sb.WriteString(";\n")
	}
}

// modifierString renders annotations and keywords in the order the parser
// accepts them back: annotations, visibility, deprecated, then the
// remaining keywords.
func modifierString(item model.Item, dropAbstract bool) string {
	m := item.Modifiers()
	var parts []string
	for _, a := range m.Annotations() {
		parts = append(parts, a.SourceString())
	}
	if kw := m.Visibility().String(); kw != "" {
		parts = append(parts, kw)
	}
	if item.Deprecated() {
		parts = append(parts, "deprecated")
	}
	if m.IsDefault() {
		parts = append(parts, "default")
	}
	if m.IsStatic() {
		parts = append(parts, "static")
	}
	if m.IsFinal() {
		parts = append(parts, "final")
	}
	if m.IsAbstract() && !dropAbstract {
		parts = append(parts, "abstract")
	}
	if m.IsSealed() {
		parts = append(parts, "sealed")
	}
	if m.IsSynchronized() {
		parts = append(parts, "synchronized")
	}
	if m.IsNative() {
		parts = append(parts, "native")
	}
	if m.IsTransient() {
		parts = append(parts, "transient")
	}
	if m.IsVolatile() {
		parts = append(parts, "volatile")
	}
	if m.IsStrictfp() {
		parts = append(parts, "strictfp")
	}
	return strings.Join(parts, " ")
}
