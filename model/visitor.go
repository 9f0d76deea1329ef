package model

import "sort"

// ItemVisitor receives every item of a codebase in a deterministic order:
// packages sorted by name, top-level classes sorted by qualified name,
// nested classes after their containing class, then constructors,
// methods, fields and properties in declaration order.
//
// Embed BaseVisitor to only implement the callbacks of interest.
type ItemVisitor interface {
	VisitPackage(pkg *PackageItem)
	VisitClass(cls *ClassItem)
	AfterVisitClass(cls *ClassItem)
	VisitConstructor(ctor *MethodItem)
	VisitMethod(method *MethodItem)
	VisitField(field *FieldItem)
	VisitProperty(property *PropertyItem)
}

// BaseVisitor is a no-op ItemVisitor for embedding.
type BaseVisitor struct{}

func (BaseVisitor) VisitPackage(*PackageItem)     {}
func (BaseVisitor) VisitClass(*ClassItem)         {}
func (BaseVisitor) AfterVisitClass(*ClassItem)    {}
func (BaseVisitor) VisitConstructor(*MethodItem)  {}
func (BaseVisitor) VisitMethod(*MethodItem)       {}
func (BaseVisitor) VisitField(*FieldItem)         {}
func (BaseVisitor) VisitProperty(*PropertyItem)   {}

// Accept walks the whole codebase through the visitor. Stub classes are
// skipped; they are not part of the loaded surface.
func (cb *Codebase) Accept(v ItemVisitor) {
	for _, pkg := range cb.Packages() {
		if pkg.Empty() {
			continue
		}
		v.VisitPackage(pkg)
		for _, cls := range pkg.SortedClasses() {
			cls.Accept(v)
		}
	}
}

// Accept visits this class, its members and its nested classes.
func (c *ClassItem) Accept(v ItemVisitor) {
	if c.stub {
		return
	}
	v.VisitClass(c)
	for _, ctor := range c.constructors {
		v.VisitConstructor(ctor)
	}
	for _, m := range c.methods {
		v.VisitMethod(m)
	}
	for _, f := range c.fields {
		v.VisitField(f)
	}
	for _, p := range c.properties {
		v.VisitProperty(p)
	}
	for _, nested := range c.sortedNested() {
		nested.Accept(v)
	}
	v.AfterVisitClass(c)
}

func (c *ClassItem) sortedNested() []*ClassItem {
	if len(c.nested) <= 1 {
		return c.nested
	}
	sorted := make([]*ClassItem, len(c.nested))
	copy(sorted, c.nested)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].qualifiedName < sorted[j].qualifiedName
	})
	return sorted
}
