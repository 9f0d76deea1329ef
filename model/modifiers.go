package model

import "strings"

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityPackage   Visibility = "package"
)

// Rank orders visibilities from most private to most public, so that
// "narrowing" checks reduce to an integer comparison.
func (v Visibility) Rank() int {
	switch v {
	case VisibilityPrivate:
		return 0
	case VisibilityPackage:
		return 1
	case VisibilityProtected:
		return 2
	case VisibilityPublic:
		return 3
	}
	return -1
}

// String returns the keyword form; package-private has no keyword and
// prints as "".
func (v Visibility) String() string {
	if v == VisibilityPackage {
		return ""
	}
	return string(v)
}

// Modifiers holds an item's visibility, flag set and annotations. All
// mutators are gated on the owning codebase not being frozen.
type Modifiers struct {
	item *itemBase

	visibility   Visibility
	static       bool
	final        bool
	abstract     bool
	deflt        bool
	sealed       bool
	synchronized bool
	native       bool
	transient    bool
	volatile     bool
	varargs      bool
	strictfp     bool
	annotations  []*AnnotationItem
}

func (m *Modifiers) Visibility() Visibility { return m.visibility }
func (m *Modifiers) IsPublic() bool         { return m.visibility == VisibilityPublic }
func (m *Modifiers) IsProtected() bool      { return m.visibility == VisibilityProtected }
func (m *Modifiers) IsPrivate() bool        { return m.visibility == VisibilityPrivate }
func (m *Modifiers) IsPackagePrivate() bool { return m.visibility == VisibilityPackage }

func (m *Modifiers) IsStatic() bool       { return m.static }
func (m *Modifiers) IsFinal() bool        { return m.final }
func (m *Modifiers) IsAbstract() bool     { return m.abstract }
func (m *Modifiers) IsDefault() bool      { return m.deflt }
func (m *Modifiers) IsSealed() bool       { return m.sealed }
func (m *Modifiers) IsSynchronized() bool { return m.synchronized }
func (m *Modifiers) IsNative() bool       { return m.native }
func (m *Modifiers) IsTransient() bool    { return m.transient }
func (m *Modifiers) IsVolatile() bool     { return m.volatile }
func (m *Modifiers) IsVarargs() bool      { return m.varargs }
func (m *Modifiers) IsStrictfp() bool     { return m.strictfp }

func (m *Modifiers) SetVisibility(v Visibility) error {
	if err := m.item.checkMutable(); err != nil {
		return err
	}
	m.visibility = v
	return nil
}

func (m *Modifiers) SetStatic(b bool) error       { return m.setFlag(&m.static, b) }
func (m *Modifiers) SetFinal(b bool) error        { return m.setFlag(&m.final, b) }
func (m *Modifiers) SetAbstract(b bool) error     { return m.setFlag(&m.abstract, b) }
func (m *Modifiers) SetDefault(b bool) error      { return m.setFlag(&m.deflt, b) }
func (m *Modifiers) SetSealed(b bool) error       { return m.setFlag(&m.sealed, b) }
func (m *Modifiers) SetSynchronized(b bool) error { return m.setFlag(&m.synchronized, b) }
func (m *Modifiers) SetNative(b bool) error       { return m.setFlag(&m.native, b) }
func (m *Modifiers) SetTransient(b bool) error    { return m.setFlag(&m.transient, b) }
func (m *Modifiers) SetVolatile(b bool) error     { return m.setFlag(&m.volatile, b) }
func (m *Modifiers) SetVarargs(b bool) error      { return m.setFlag(&m.varargs, b) }
func (m *Modifiers) SetStrictfp(b bool) error     { return m.setFlag(&m.strictfp, b) }

func (m *Modifiers) setFlag(flag *bool, value bool) error {
	if err := m.item.checkMutable(); err != nil {
		return err
	}
	*flag = value
	return nil
}

func (m *Modifiers) Annotations() []*AnnotationItem { return m.annotations }

// SetAnnotations replaces the annotation list. Used when re-applying a
// declaration on top of an existing item during merges.
func (m *Modifiers) SetAnnotations(annotations []*AnnotationItem) error {
	if err := m.item.checkMutable(); err != nil {
		return err
	}
	m.annotations = annotations
	return nil
}

func (m *Modifiers) AddAnnotation(a *AnnotationItem) error {
	if err := m.item.checkMutable(); err != nil {
		return err
	}
	m.annotations = append(m.annotations, a)
	return nil
}

// FindAnnotation returns the first annotation with the given qualified
// name, or nil.
func (m *Modifiers) FindAnnotation(qualifiedName string) *AnnotationItem {
	for _, a := range m.annotations {
		if a.QualifiedName() == qualifiedName {
			return a
		}
	}
	return nil
}

// KeywordString renders the modifier keywords in canonical declaration
// order, without annotations. Package-private visibility contributes
// nothing.
func (m *Modifiers) KeywordString() string {
	var parts []string
	if kw := m.visibility.String(); kw != "" {
		parts = append(parts, kw)
	}
	if m.deflt {
		parts = append(parts, "default")
	}
	if m.static {
		parts = append(parts, "static")
	}
	if m.final {
		parts = append(parts, "final")
	}
	if m.abstract {
		parts = append(parts, "abstract")
	}
	if m.sealed {
		parts = append(parts, "sealed")
	}
	if m.synchronized {
		parts = append(parts, "synchronized")
	}
	if m.native {
		parts = append(parts, "native")
	}
	if m.transient {
		parts = append(parts, "transient")
	}
	if m.volatile {
		parts = append(parts, "volatile")
	}
	if m.strictfp {
		parts = append(parts, "strictfp")
	}
	return strings.Join(parts, " ")
}

// EquivalentTo reports whether two modifier sets agree on everything that
// matters for API compatibility: visibility and the flags that change how
// callers may use the member. Annotations are compared by key.
func (m *Modifiers) EquivalentTo(other *Modifiers) bool {
	if m.visibility != other.visibility {
		return false
	}
	if m.static != other.static || m.final != other.final ||
		m.abstract != other.abstract || m.deflt != other.deflt ||
		m.sealed != other.sealed || m.varargs != other.varargs {
		return false
	}
	if len(m.annotations) != len(other.annotations) {
		return false
	}
	for i, a := range m.annotations {
		if a.Key(true) != other.annotations[i].Key(true) {
			return false
		}
	}
	return true
}
