package model

import (
	"strings"
)

type ClassKind string

const (
	ClassKindClass      ClassKind = "class"
	ClassKindInterface  ClassKind = "interface"
	ClassKindEnum       ClassKind = "enum"
	ClassKindAnnotation ClassKind = "annotation"
)

// ClassItem is one class, interface, enum or annotation type. All name
// forms derive from the canonical qualified name plus the containing
// package.
type ClassItem struct {
	itemBase

	qualifiedName string
	fullName      string // name without package: Outer.Inner
	kind          ClassKind

	pkg             *PackageItem
	containingClass *ClassItem

	superClassType *TypeItem
	superClass     *ClassItem

	interfaceTypes   []*TypeItem
	interfaceClasses []*ClassItem

	typeParams TypeParameterList

	constructors []*MethodItem
	methods      []*MethodItem
	fields       []*FieldItem
	properties   []*PropertyItem
	nested       []*ClassItem

	// stub marks a placeholder created for a referenced but not loaded
	// class. Stubs are never emitted in output.
	stub bool
}

func (c *ClassItem) QualifiedName() string { return c.qualifiedName }

// FullName is the class name without its package: "Outer.Inner" for
// nested classes, the simple name otherwise.
func (c *ClassItem) FullName() string { return c.fullName }

func (c *ClassItem) SimpleName() string {
	if i := strings.LastIndexByte(c.fullName, '.'); i >= 0 {
		return c.fullName[i+1:]
	}
	return c.fullName
}

// InternalName is the JVM form: slashes between package components,
// dollar signs between nested class names.
func (c *ClassItem) InternalName() string {
	pkg := strings.ReplaceAll(c.pkg.Name(), ".", "/")
	name := strings.ReplaceAll(c.fullName, ".", "$")
	if pkg == "" {
		return name
	}
	return pkg + "/" + name
}

func (c *ClassItem) Kind() ClassKind { return c.kind }

func (c *ClassItem) IsClass() bool      { return c.kind == ClassKindClass }
func (c *ClassItem) IsInterface() bool  { return c.kind == ClassKindInterface }
func (c *ClassItem) IsEnum() bool       { return c.kind == ClassKindEnum }
func (c *ClassItem) IsAnnotation() bool { return c.kind == ClassKindAnnotation }

func (c *ClassItem) ContainingPackage() *PackageItem { return c.pkg }
func (c *ClassItem) ContainingClass() *ClassItem     { return c.containingClass }
func (c *ClassItem) IsNested() bool                  { return c.containingClass != nil }

func (c *ClassItem) IsStub() bool { return c.stub }

// Emit reports whether the class belongs in emitted output. Stub
// placeholders are load-bearing for resolution but are not part of the
// loaded surface.
func (c *ClassItem) Emit() bool { return !c.stub }

func (c *ClassItem) SuperClassType() *TypeItem { return c.superClassType }

// SuperClass returns the resolved superclass, nil for interfaces and for
// java.lang.Object itself. Resolution happens during post-processing;
// before that only SuperClassType is available.
func (c *ClassItem) SuperClass() *ClassItem { return c.superClass }

func (c *ClassItem) InterfaceTypes() []*TypeItem { return c.interfaceTypes }

// InterfaceClasses returns the resolved directly implemented interfaces in
// declaration order. Unresolvable names appear as stubs.
func (c *ClassItem) InterfaceClasses() []*ClassItem { return c.interfaceClasses }

func (c *ClassItem) TypeParameters() TypeParameterList { return c.typeParams }

func (c *ClassItem) Constructors() []*MethodItem { return c.constructors }
func (c *ClassItem) Methods() []*MethodItem      { return c.methods }
func (c *ClassItem) Fields() []*FieldItem        { return c.fields }
func (c *ClassItem) Properties() []*PropertyItem { return c.properties }
func (c *ClassItem) NestedClasses() []*ClassItem { return c.nested }

// KotlinLikeDescription is a short human-readable identity used in
// diagnostics: "class test.pkg.Foo", "interface test.pkg.Bar", ...
func (c *ClassItem) KotlinLikeDescription() string {
	kind := string(c.kind)
	if c.kind == ClassKindAnnotation {
		kind = "annotation class"
	}
	return kind + " " + c.qualifiedName
}

// ToType returns a type reference to this class, parameterized with its
// own type variables.
func (c *ClassItem) ToType() *TypeItem {
	t := &TypeItem{Kind: TypeClass, Name: c.qualifiedName}
	for _, tp := range c.typeParams {
		t.Arguments = append(t.Arguments, &TypeItem{Kind: TypeVariable, Name: tp.Name()})
	}
	return t
}

func (c *ClassItem) SetSuperClassType(t *TypeItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.superClassType = t
	return nil
}

func (c *ClassItem) AddInterfaceType(t *TypeItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.interfaceTypes = append(c.interfaceTypes, t)
	return nil
}

// SetInterfaceTypes replaces the implemented interface list. Used when a
// later partial declaration of the same class wins over an earlier one.
func (c *ClassItem) SetInterfaceTypes(ts []*TypeItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.interfaceTypes = ts
	c.interfaceClasses = nil
	return nil
}

func (c *ClassItem) SetTypeParameters(params TypeParameterList) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.typeParams = params
	return nil
}

func (c *ClassItem) AddConstructor(m *MethodItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	m.ctor = true
	m.declOrder = len(c.constructors)
	c.constructors = append(c.constructors, m)
	return nil
}

func (c *ClassItem) AddMethod(m *MethodItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	m.declOrder = len(c.methods)
	c.methods = append(c.methods, m)
	return nil
}

func (c *ClassItem) AddField(f *FieldItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.fields = append(c.fields, f)
	return nil
}

func (c *ClassItem) AddProperty(p *PropertyItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.properties = append(c.properties, p)
	return nil
}

// RemoveMethod drops a previously added method. Used by post-processing
// when merged partial files override a member.
func (c *ClassItem) RemoveMethod(m *MethodItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	for i, existing := range c.methods {
		if existing == m {
			c.methods = append(c.methods[:i], c.methods[i+1:]...)
			return nil
		}
	}
	return nil
}

// RemoveConstructor drops a previously added constructor.
func (c *ClassItem) RemoveConstructor(m *MethodItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	for i, existing := range c.constructors {
		if existing == m {
			c.constructors = append(c.constructors[:i], c.constructors[i+1:]...)
			return nil
		}
	}
	return nil
}

// RemoveField drops a previously added field.
func (c *ClassItem) RemoveField(f *FieldItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	for i, existing := range c.fields {
		if existing == f {
			c.fields = append(c.fields[:i], c.fields[i+1:]...)
			return nil
		}
	}
	return nil
}

// RemoveProperty drops a previously added property.
func (c *ClassItem) RemoveProperty(p *PropertyItem) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	for i, existing := range c.properties {
		if existing == p {
			c.properties = append(c.properties[:i], c.properties[i+1:]...)
			return nil
		}
	}
	return nil
}

// FindMethod looks up a method (or constructor, when name matches the
// class's simple name) by name and a comma-separated parameter type list.
//
// The parameter string is split on every comma with no awareness of
// generics, so a search string containing a type with multiple type
// arguments (e.g. "java.util.Map<java.lang.String, java.lang.Integer>")
// never matches. This restriction is deliberate and relied upon by
// callers; do not replace the split with a real parser.
func (c *ClassItem) FindMethod(name, parameters string) *MethodItem {
	wanted := splitParameterList(parameters)
	candidates := c.methods
	if name == c.SimpleName() {
		candidates = c.constructors
	}
	for _, m := range candidates {
		if !m.ctor && m.name != name {
			continue
		}
		if m.matchesParameterStrings(wanted) {
			return m
		}
	}
	return nil
}

// FindField returns the declared field with the given name, or nil.
func (c *ClassItem) FindField(name string) *FieldItem {
	for _, f := range c.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// FindProperty returns the declared property with the given name, or nil.
func (c *ClassItem) FindProperty(name string) *PropertyItem {
	for _, p := range c.properties {
		if p.name == name {
			return p
		}
	}
	return nil
}

func splitParameterList(parameters string) []string {
	parameters = strings.TrimSpace(parameters)
	if parameters == "" {
		return nil
	}
	parts := strings.Split(parameters, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// AllInterfaces returns the reflexive-transitive closure of implemented
// interfaces: the class itself first, then every directly declared
// interface in declaration order, each followed by its own
// super-interfaces (pre-order), then interfaces inherited through the
// superclass chain. Duplicates are skipped via a visited set, which also
// terminates on cyclic inheritance in malformed input.
func (c *ClassItem) AllInterfaces() []*ClassItem {
	result := []*ClassItem{c}
	seen := map[string]bool{c.qualifiedName: true}

	var collect func(cls *ClassItem)
	collect = func(cls *ClassItem) {
		for _, iface := range cls.interfaceClasses {
			if iface == nil || seen[iface.qualifiedName] {
				continue
			}
			seen[iface.qualifiedName] = true
			result = append(result, iface)
			collect(iface)
		}
	}

	collect(c)
	for sup := c.superClass; sup != nil && !seen[sup.qualifiedName]; sup = sup.superClass {
		seen[sup.qualifiedName] = true
		collect(sup)
	}
	return result
}

// MapTypeVariables returns the substitution from the target ancestor's
// type parameter names to the type arguments supplied along the
// inheritance chain from this class. The superclass edge is tried before
// interface edges, interfaces in declaration order; the first path that
// reaches the target wins. For the class itself, for non-ancestors and
// for the reversed direction the result is an empty map.
func (c *ClassItem) MapTypeVariables(target *ClassItem) map[string]string {
	if target == nil || target == c {
		return map[string]string{}
	}

	seen := map[string]bool{c.qualifiedName: true}

	var walk func(cls *ClassItem, subst map[string]string) map[string]string
	walk = func(cls *ClassItem, subst map[string]string) map[string]string {
		edges := make([]*TypeItem, 0, len(cls.interfaceTypes)+1)
		if cls.superClassType != nil {
			edges = append(edges, cls.superClassType)
		}
		edges = append(edges, cls.interfaceTypes...)

		for _, edge := range edges {
			super := edge.ResolveClass(c.codebase)
			if super == nil || seen[super.qualifiedName] {
				continue
			}
			seen[super.qualifiedName] = true

			next := substitutionFor(super, edge, subst)
			if super == target {
				return next
			}
			if found := walk(super, next); found != nil {
				return found
			}
		}
		return nil
	}

	if found := walk(c, map[string]string{}); found != nil {
		return found
	}
	return map[string]string{}
}

// substitutionFor maps super's type parameter names to the arguments used
// in the extends/implements clause, rewriting type variables through the
// substitution accumulated so far.
func substitutionFor(super *ClassItem, edge *TypeItem, subst map[string]string) map[string]string {
	next := make(map[string]string, len(super.typeParams))
	for i, tp := range super.typeParams {
		if i >= len(edge.Arguments) {
			break // raw supertype reference
		}
		next[tp.Name()] = substituteTypeVariables(edge.Arguments[i].String(), subst)
	}
	return next
}

// substituteTypeVariables replaces whole identifiers found in subst inside
// a type string. Identifier boundaries keep "T" from matching inside
// "Tree".
func substituteTypeVariables(typeStr string, subst map[string]string) string {
	if len(subst) == 0 {
		return typeStr
	}
	var sb strings.Builder
	i := 0
	for i < len(typeStr) {
		c := typeStr[i]
		if !isIdentByte(c) {
			sb.WriteByte(c)
			i++
			continue
		}
		start := i
		for i < len(typeStr) && isIdentByte(typeStr[i]) {
			i++
		}
		word := typeStr[start:i]
		// Only free-standing identifiers are variables; a qualified
		// name component is preceded or followed by a dot.
		qualified := (start > 0 && typeStr[start-1] == '.') || (i < len(typeStr) && typeStr[i] == '.')
		if replacement, ok := subst[word]; ok && !qualified {
			sb.WriteString(replacement)
		} else {
			sb.WriteString(word)
		}
	}
	return sb.String()
}
