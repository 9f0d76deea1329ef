package apilevels

import (
	"strings"
	"unicode"

	"github.com/dhamidi/apisurf/model"
)

// NameStyle selects how classes and members are keyed in the history.
type NameStyle int

const (
	// InternalNames keys classes by JVM internal name
	// ("android/os/Bundle", nested "Outer$Inner") and methods by
	// descriptor ("getInt(Ljava/lang/String;I)I"). The XML output uses
	// this style.
	InternalNames NameStyle = iota
	// SourceNames keys classes by qualified source name and methods by
	// source signature ("getInt(java.lang.String,int)"). The JSON
	// output uses this style.
	SourceNames
)

// FromCodebases builds a history from a series of snapshots, oldest
// first, numbering them from level 1. Callers still pick the clean-up
// they want afterwards (Clean or VerifyNoMissingClasses).
func FromCodebases(snapshots []*model.Codebase, style NameStyle) *Api {
	api := NewApi(1)
	for i, cb := range snapshots {
		AddApisFromCodebase(api, i+1, cb, style)
	}
	return api
}

// AddApisFromCodebase folds one API snapshot into the history at the
// given level. Snapshots must be folded oldest first. Hidden and removed
// items are skipped; package-private classes are recorded but marked so
// PrunePackagePrivateClasses can relink past them.
func AddApisFromCodebase(api *Api, version int, cb *model.Codebase, style NameStyle) {
	f := folder{api: api, version: version, cb: cb, style: style}
	for _, pkg := range cb.Packages() {
		for _, cls := range pkg.SortedClasses() {
			f.class(cls)
		}
	}
}

type folder struct {
	api     *Api
	version int
	cb      *model.Codebase
	style   NameStyle
}

func (f *folder) class(cls *model.ClassItem) {
	for _, nested := range cls.NestedClasses() {
		f.class(nested)
	}
	if cls.IsStub() || cls.Hidden() || cls.Removed() {
		return
	}

	entry := f.api.AddClass(f.className(cls), f.version, cls.Deprecated())
	if !visibleMember(cls) {
		entry.MarkPackagePrivate()
	}

	if super := cls.SuperClassType(); super != nil {
		entry.AddSuperClass(f.typeName(super), f.version)
	} else if cls.IsClass() && cls.QualifiedName() != "java.lang.Object" {
		entry.AddSuperClass(f.refName("java.lang.Object"), f.version)
	}
	for _, iface := range cls.InterfaceTypes() {
		entry.AddInterface(f.typeName(iface), f.version)
	}

	for _, ctor := range cls.Constructors() {
		if visibleMember(ctor) && !ctor.Synthetic() {
			entry.AddMethod(f.constructorKey(cls, ctor), f.version, ctor.Deprecated())
		}
	}
	for _, m := range cls.Methods() {
		if visibleMember(m) && !m.Synthetic() {
			entry.AddMethod(f.methodKey(m), f.version, m.Deprecated())
		}
	}
	for _, fld := range cls.Fields() {
		if visibleMember(fld) {
			entry.AddField(fld.Name(), f.version, fld.Deprecated())
		}
	}
}

func visibleMember(item model.Item) bool {
	if item.Hidden() || item.Removed() {
		return false
	}
	v := item.Modifiers().Visibility()
	return v == model.VisibilityPublic || v == model.VisibilityProtected
}

func (f *folder) className(cls *model.ClassItem) string {
	if f.style == InternalNames {
		return cls.InternalName()
	}
	return cls.QualifiedName()
}

// typeName renders a supertype reference in the selected style, dropping
// type arguments either way.
func (f *folder) typeName(t *model.TypeItem) string {
	return f.refName(t.Erasure().Name)
}

func (f *folder) refName(qualified string) string {
	if f.style == InternalNames {
		return f.internalName(qualified)
	}
	return qualified
}

func (f *folder) constructorKey(cls *model.ClassItem, ctor *model.MethodItem) string {
	if f.style == InternalNames {
		return "<init>(" + f.descriptors(ctor.Parameters()) + ")V"
	}
	return ctor.Signature()
}

func (f *folder) methodKey(m *model.MethodItem) string {
	if f.style == InternalNames {
		return m.Name() + "(" + f.descriptors(m.Parameters()) + ")" + f.descriptor(m.ReturnType())
	}
	return m.Signature()
}

func (f *folder) descriptors(params []*model.ParameterItem) string {
	var sb strings.Builder
	for _, p := range params {
		sb.WriteString(f.descriptor(p.Type()))
	}
	return sb.String()
}

var primitiveDescriptors = map[string]string{
	"void": "V", "boolean": "Z", "byte": "B", "char": "C",
	"short": "S", "int": "I", "long": "J", "float": "F", "double": "D",
}

// descriptor renders the erasure of a type as a JVM descriptor. Type
// variables erase to their upper bound's place in the descriptor, which
// is java.lang.Object after the model's erasure step.
func (f *folder) descriptor(t *model.TypeItem) string {
	e := t.Erasure()
	switch e.Kind {
	case model.TypePrimitive:
		return primitiveDescriptors[e.Name]
	case model.TypeArray:
		return "[" + f.descriptor(e.Component)
	case model.TypeVariable:
		return "Ljava/lang/Object;"
	default:
		return "L" + f.internalName(e.Name) + ";"
	}
}

// internalName converts a qualified source name to JVM internal form.
// Known classes convert exactly; unknown references fall back to the
// convention that package segments start lowercase.
func (f *folder) internalName(qualified string) string {
	if cls := f.cb.FindClass(qualified); cls != nil {
		return cls.InternalName()
	}
	segments := strings.Split(qualified, ".")
	classStart := len(segments) - 1
	for i, seg := range segments {
		if seg != "" && unicode.IsUpper(rune(seg[0])) {
			classStart = i
			break
		}
	}
	name := strings.Join(segments[classStart:], "$")
	if classStart == 0 {
		return name
	}
	return strings.Join(segments[:classStart], "/") + "/" + name
}
