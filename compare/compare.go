// Package compare walks two API snapshots in a deterministic merged
// order and reports their structural differences.
package compare

import (
	"sort"
	"strings"

	"github.com/dhamidi/apisurf/model"
)

// Visitor receives difference events. Events arrive in merged sorted
// order: packages by name, classes by qualified name, constructors and
// methods by name plus parameter signature, fields and properties by
// name. Adding or removing a container reports one event for the
// container only, not one per contained member.
//
// Embed Base to implement only the callbacks of interest.
type Visitor interface {
	AddedPackage(pkg *model.PackageItem)
	RemovedPackage(pkg *model.PackageItem)

	AddedClass(cls *model.ClassItem)
	RemovedClass(cls *model.ClassItem)
	ChangedClass(old, new *model.ClassItem)

	AddedConstructor(ctor *model.MethodItem)
	RemovedConstructor(ctor *model.MethodItem)
	ChangedConstructor(old, new *model.MethodItem)

	AddedMethod(method *model.MethodItem)
	RemovedMethod(method *model.MethodItem)
	ChangedMethod(old, new *model.MethodItem)

	AddedField(field *model.FieldItem)
	RemovedField(field *model.FieldItem)
	ChangedField(old, new *model.FieldItem)

	AddedProperty(property *model.PropertyItem)
	RemovedProperty(property *model.PropertyItem)
	ChangedProperty(old, new *model.PropertyItem)
}

// Base is a no-op Visitor for embedding.
type Base struct{}

func (Base) AddedPackage(*model.PackageItem)                    {}
func (Base) RemovedPackage(*model.PackageItem)                  {}
func (Base) AddedClass(*model.ClassItem)                        {}
func (Base) RemovedClass(*model.ClassItem)                      {}
func (Base) ChangedClass(*model.ClassItem, *model.ClassItem)    {}
func (Base) AddedConstructor(*model.MethodItem)                 {}
func (Base) RemovedConstructor(*model.MethodItem)               {}
func (Base) ChangedConstructor(*model.MethodItem, *model.MethodItem) {
}
func (Base) AddedMethod(*model.MethodItem)                             {}
func (Base) RemovedMethod(*model.MethodItem)                           {}
func (Base) ChangedMethod(*model.MethodItem, *model.MethodItem)        {}
func (Base) AddedField(*model.FieldItem)                               {}
func (Base) RemovedField(*model.FieldItem)                             {}
func (Base) ChangedField(*model.FieldItem, *model.FieldItem)           {}
func (Base) AddedProperty(*model.PropertyItem)                         {}
func (Base) RemovedProperty(*model.PropertyItem)                       {}
func (Base) ChangedProperty(*model.PropertyItem, *model.PropertyItem)  {}

// Filter selects the items that take part in a comparison. Items
// excluded on either side are invisible: they produce no events at all.
type Filter func(item model.Item) bool

// DefaultFilter keeps the emitted API surface: public or protected items
// that are neither hidden nor removed.
func DefaultFilter(item model.Item) bool {
	if item.Hidden() || item.Removed() {
		return false
	}
	v := item.Modifiers().Visibility()
	return v == model.VisibilityPublic || v == model.VisibilityProtected
}

// Codebases compares two snapshots and streams the differences to the
// visitor. A nil filter means DefaultFilter. Both inputs are only read;
// comparing frozen codebases is the normal case.
func Codebases(oldCB, newCB *model.Codebase, visitor Visitor, filter Filter) {
	if filter == nil {
		filter = DefaultFilter
	}
	w := &walker{visitor: visitor, keep: filter}
	w.packages(oldCB, newCB)
}

type walker struct {
	visitor Visitor
	keep    Filter
}

func (w *walker) packages(oldCB, newCB *model.Codebase) {
	oldPkgs := w.packageMap(oldCB)
	newPkgs := w.packageMap(newCB)
	for _, name := range unionKeys(mapKeys(oldPkgs), mapKeys(newPkgs)) {
		o, inOld := oldPkgs[name]
		n, inNew := newPkgs[name]
		switch {
		case inOld && inNew:
			w.classes(o, n)
		case inOld:
			w.visitor.RemovedPackage(o)
		default:
			w.visitor.AddedPackage(n)
		}
	}
}

// packageMap keeps only packages that still contain at least one visible
// class, so stub-only or fully filtered packages never produce events.
func (w *walker) packageMap(cb *model.Codebase) map[string]*model.PackageItem {
	pkgs := make(map[string]*model.PackageItem)
	for _, pkg := range cb.Packages() {
		if len(w.visibleClasses(pkg)) > 0 {
			pkgs[pkg.Name()] = pkg
		}
	}
	return pkgs
}

func (w *walker) visibleClasses(pkg *model.PackageItem) map[string]*model.ClassItem {
	classes := make(map[string]*model.ClassItem)
	var collect func(cls *model.ClassItem)
	collect = func(cls *model.ClassItem) {
		if cls.IsStub() || !w.keep(cls) {
			return
		}
		classes[cls.QualifiedName()] = cls
		for _, nested := range cls.NestedClasses() {
			collect(nested)
		}
	}
	for _, cls := range pkg.SortedClasses() {
		collect(cls)
	}
	return classes
}

func (w *walker) classes(oldPkg, newPkg *model.PackageItem) {
	oldClasses := w.visibleClasses(oldPkg)
	newClasses := w.visibleClasses(newPkg)
	for _, name := range unionKeys(mapKeys(oldClasses), mapKeys(newClasses)) {
		o, inOld := oldClasses[name]
		n, inNew := newClasses[name]
		switch {
		case inOld && inNew:
			w.class(o, n)
		case inOld:
			w.visitor.RemovedClass(o)
		default:
			w.visitor.AddedClass(n)
		}
	}
}

func (w *walker) class(o, n *model.ClassItem) {
	if classChanged(o, n) {
		w.visitor.ChangedClass(o, n)
	}

	w.methodLikes(w.keptMethods(o.Constructors()), w.keptMethods(n.Constructors()),
		w.visitor.AddedConstructor, w.visitor.RemovedConstructor, w.visitor.ChangedConstructor)
	w.methodLikes(w.keptMethods(o.Methods()), w.keptMethods(n.Methods()),
		w.visitor.AddedMethod, w.visitor.RemovedMethod, w.visitor.ChangedMethod)
	w.fields(o, n)
	w.properties(o, n)
}

func (w *walker) keptMethods(methods []*model.MethodItem) map[string]*model.MethodItem {
	kept := make(map[string]*model.MethodItem, len(methods))
	for _, m := range methods {
		if w.keep(m) && !m.Synthetic() {
			kept[m.Signature()] = m
		}
	}
	return kept
}

func (w *walker) methodLikes(oldM, newM map[string]*model.MethodItem,
	added, removed func(*model.MethodItem), changed func(old, new *model.MethodItem)) {
	for _, sig := range unionKeys(mapKeys(oldM), mapKeys(newM)) {
		o, inOld := oldM[sig]
		n, inNew := newM[sig]
		switch {
		case inOld && inNew:
			if methodChanged(o, n) {
				changed(o, n)
			}
		case inOld:
			removed(o)
		default:
			added(n)
		}
	}
}

func (w *walker) fields(o, n *model.ClassItem) {
	oldF := make(map[string]*model.FieldItem)
	for _, f := range o.Fields() {
		if w.keep(f) {
			oldF[f.Name()] = f
		}
	}
	newF := make(map[string]*model.FieldItem)
	for _, f := range n.Fields() {
		if w.keep(f) {
			newF[f.Name()] = f
		}
	}
	for _, name := range unionKeys(mapKeys(oldF), mapKeys(newF)) {
		of, inOld := oldF[name]
		nf, inNew := newF[name]
		switch {
		case inOld && inNew:
			if fieldChanged(of, nf) {
				w.visitor.ChangedField(of, nf)
			}
		case inOld:
			w.visitor.RemovedField(of)
		default:
			w.visitor.AddedField(nf)
		}
	}
}

func (w *walker) properties(o, n *model.ClassItem) {
	oldP := make(map[string]*model.PropertyItem)
	for _, p := range o.Properties() {
		if w.keep(p) {
			oldP[p.Name()] = p
		}
	}
	newP := make(map[string]*model.PropertyItem)
	for _, p := range n.Properties() {
		if w.keep(p) {
			newP[p.Name()] = p
		}
	}
	for _, name := range unionKeys(mapKeys(oldP), mapKeys(newP)) {
		op, inOld := oldP[name]
		np, inNew := newP[name]
		switch {
		case inOld && inNew:
			if propertyChanged(op, np) {
				w.visitor.ChangedProperty(op, np)
			}
		case inOld:
			w.visitor.RemovedProperty(op)
		default:
			w.visitor.AddedProperty(np)
		}
	}
}

// classChanged compares everything API-relevant on the class declaration
// itself; member differences are reported per member, never as a class
// change.
func classChanged(o, n *model.ClassItem) bool {
	if o.Kind() != n.Kind() {
		return true
	}
	if typeString(o.SuperClassType()) != typeString(n.SuperClassType()) {
		return true
	}
	if joinSorted(o.InterfaceTypes()) != joinSorted(n.InterfaceTypes()) {
		return true
	}
	if o.TypeParameters().String() != n.TypeParameters().String() {
		return true
	}
	if !o.Modifiers().EquivalentTo(n.Modifiers()) {
		return true
	}
	return o.Deprecated() != n.Deprecated()
}

func methodChanged(o, n *model.MethodItem) bool {
	if !o.ReturnType().EqualTo(n.ReturnType()) {
		return true
	}
	if !o.Modifiers().EquivalentTo(n.Modifiers()) {
		return true
	}
	if o.Deprecated() != n.Deprecated() {
		return true
	}
	if o.DefaultValue() != n.DefaultValue() {
		return true
	}
	if joinSorted(o.ThrowsTypes()) != joinSorted(n.ThrowsTypes()) {
		return true
	}
	return parameterDefaultsChanged(o, n)
}

func parameterDefaultsChanged(o, n *model.MethodItem) bool {
	oldParams := o.Parameters()
	newParams := n.Parameters()
	// Same signature implies same arity.
	for i := range oldParams {
		if oldParams[i].HasDefaultValue() != newParams[i].HasDefaultValue() {
			return true
		}
		if oldParams[i].DefaultValue() != newParams[i].DefaultValue() {
			return true
		}
	}
	return false
}

func fieldChanged(o, n *model.FieldItem) bool {
	if !o.Type().EqualTo(n.Type()) {
		return true
	}
	if !o.Modifiers().EquivalentTo(n.Modifiers()) {
		return true
	}
	if o.ConstantValue() != n.ConstantValue() {
		return true
	}
	if o.IsEnumConstant() != n.IsEnumConstant() {
		return true
	}
	return o.Deprecated() != n.Deprecated()
}

func propertyChanged(o, n *model.PropertyItem) bool {
	if !o.Type().EqualTo(n.Type()) {
		return true
	}
	if !o.Modifiers().EquivalentTo(n.Modifiers()) {
		return true
	}
	return o.Deprecated() != n.Deprecated()
}

func typeString(t *model.TypeItem) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func joinSorted(types []*model.TypeItem) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func unionKeys(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for _, k := range a {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, k := range b {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func mapKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
