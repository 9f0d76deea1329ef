package model

import "fmt"

// PostProcess resolves the forward references a single-pass loader leaves
// behind: superclass and interface names become ClassItems (stubs for
// anything unknown), nested classes are wired to their containing class,
// throws clauses are resolved, and interface diamond conflicts get
// synthetic abstract overrides. Loaders call this once after the last
// declaration; it must run before Freeze.
func (cb *Codebase) PostProcess() error {
	if cb.frozen {
		return fmt.Errorf("cannot post-process codebase %q: already frozen", cb.description)
	}

	// Iterate over a snapshot: stub creation extends the index.
	for _, c := range cb.AllClasses() {
		cb.wireNesting(c)
	}
	for _, c := range cb.AllClasses() {
		if err := cb.resolveSupertypes(c); err != nil {
			return err
		}
		if err := cb.resolveThrows(c); err != nil {
			return err
		}
	}
	for _, c := range cb.AllClasses() {
		cb.synthesizeDiamondConflicts(c)
	}
	return nil
}

func (cb *Codebase) wireNesting(c *ClassItem) {
	if c.containingClass != nil {
		return
	}
	fullName := c.fullName
	dot := lastDot(fullName)
	if dot < 0 {
		return
	}
	outerName := qualify(c.pkg.name, fullName[:dot])
	outer := cb.classIndex[outerName]
	if outer == nil {
		return
	}
	c.containingClass = outer
	for _, existing := range outer.nested {
		if existing == c {
			return
		}
	}
	outer.nested = append(outer.nested, c)
}

func (cb *Codebase) resolveSupertypes(c *ClassItem) error {
	if c.superClassType != nil && c.superClass == nil {
		super, err := cb.resolveOrStub(c.superClassType.Name)
		if err != nil {
			return err
		}
		// Object terminates the superclass chain.
		if super != c {
			c.superClass = super
		}
	}
	if len(c.interfaceClasses) == len(c.interfaceTypes) {
		return nil
	}
	c.interfaceClasses = make([]*ClassItem, len(c.interfaceTypes))
	for i, t := range c.interfaceTypes {
		iface, err := cb.resolveOrStub(t.Name)
		if err != nil {
			return err
		}
		c.interfaceClasses[i] = iface
	}
	return nil
}

func (cb *Codebase) resolveThrows(c *ClassItem) error {
	for _, list := range [][]*MethodItem{c.constructors, c.methods} {
		for _, m := range list {
			if len(m.throwsTypes) == 0 || len(m.throwsClasses) == len(m.throwsTypes) {
				continue
			}
			m.throwsClasses = make([]*ClassItem, len(m.throwsTypes))
			for i, t := range m.throwsTypes {
				cls, err := cb.resolveOrStub(t.Name)
				if err != nil {
					return err
				}
				m.throwsClasses[i] = cls
			}
		}
	}
	return nil
}

func (cb *Codebase) resolveOrStub(qualifiedName string) (*ClassItem, error) {
	if c := cb.ResolveClass(qualifiedName); c != nil {
		return c, nil
	}
	return cb.CreateStubClass(qualifiedName)
}

// synthesizeDiamondConflicts adds an abstract override to an interface
// that inherits the same default method signature from two unrelated
// super-interfaces without declaring it itself. Javac requires the
// override, so the API surface must show it.
func (cb *Codebase) synthesizeDiamondConflicts(c *ClassItem) {
	if c.kind != ClassKindInterface {
		return
	}
	inherited := make(map[string]*MethodItem)
	for _, iface := range c.AllInterfaces()[1:] {
		for _, m := range iface.methods {
			if !m.Modifiers().IsDefault() {
				continue
			}
			sig := m.Signature()
			first, seen := inherited[sig]
			if !seen {
				inherited[sig] = m
				continue
			}
			if first.containingClass == m.containingClass {
				continue
			}
			if c.FindMethod(m.name, m.ParameterSignature()) != nil {
				continue
			}
			stub := NewMethod(c, m.name, m.returnType, m.parameters)
			stub.synthetic = true
			stub.modifiers.visibility = VisibilityPublic
			stub.modifiers.abstract = true
			c.AddMethod(stub)
		}
	}
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
