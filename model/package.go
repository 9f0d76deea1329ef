package model

import "sort"

// PackageItem owns the top-level classes of one package within a
// codebase.
type PackageItem struct {
	itemBase

	name    string
	classes []*ClassItem
}

func newPackage(cb *Codebase, name string) *PackageItem {
	p := &PackageItem{name: name}
	display := name
	if display == "" {
		display = "<default package>"
	}
	p.itemBase = newItemBase(cb, "package "+display)
	p.initModifiers()
	return p
}

func (p *PackageItem) Name() string { return p.name }

// Classes returns the top-level classes in insertion order.
func (p *PackageItem) Classes() []*ClassItem { return p.classes }

// SortedClasses returns the top-level classes ordered by qualified name.
func (p *PackageItem) SortedClasses() []*ClassItem {
	sorted := make([]*ClassItem, len(p.classes))
	copy(sorted, p.classes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].qualifiedName < sorted[j].qualifiedName
	})
	return sorted
}

// Empty reports whether the package contains no emittable classes.
func (p *PackageItem) Empty() bool {
	for _, c := range p.classes {
		if c.Emit() {
			return false
		}
	}
	return true
}
