package apilevels

import (
	"fmt"
	"sort"
	"strings"
)

// ApiClass is the version history of one class: the class element itself
// plus the histories of its superclasses, interfaces and members.
// Superclasses and interfaces are kept as versioned elements because a
// class can change its supertype between levels.
type ApiClass struct {
	ApiElement

	superClasses []*ApiElement
	interfaces   []*ApiElement
	methods      map[string]*ApiElement
	fields       map[string]*ApiElement

	// packagePrivate marks classes that entered the history from a
	// backing that includes non-API classes. They are relinked past and
	// pruned by PrunePackagePrivateClasses.
	packagePrivate bool
	// hidden marks classes excluded from output whose members may still
	// need inlining into visible subclasses.
	hidden bool
}

func newClass(name string, version int, deprecated bool) *ApiClass {
	c := &ApiClass{
		methods: make(map[string]*ApiElement),
		fields:  make(map[string]*ApiElement),
	}
	c.name = name
	c.Update(version, deprecated)
	return c
}

func (c *ApiClass) PackagePrivate() bool { return c.packagePrivate }
func (c *ApiClass) Hidden() bool         { return c.hidden }

func (c *ApiClass) MarkPackagePrivate() { c.packagePrivate = true }
func (c *ApiClass) MarkHidden()         { c.hidden = true }

// AddSuperClass records name as the superclass at the given level. A
// repeated name extends the existing history entry; a new name opens a
// new entry, preserving supertype changes across levels.
func (c *ApiClass) AddSuperClass(name string, version int) *ApiElement {
	c.superClasses = appendVersioned(&c.superClasses, name, version)
	return c.superClasses[len(c.superClasses)-1]
}

func (c *ApiClass) AddInterface(name string, version int) *ApiElement {
	c.interfaces = appendVersioned(&c.interfaces, name, version)
	return c.interfaces[len(c.interfaces)-1]
}

func appendVersioned(list *[]*ApiElement, name string, version int) []*ApiElement {
	for _, e := range *list {
		if e.name == name {
			e.Update(version, false)
			return *list
		}
	}
	*list = append(*list, newElement(name, version, false))
	return *list
}

// AddMethod records a method under its signature key at the given level.
// The key format is the caller's choice (JVM descriptor or source
// signature) and only needs to be stable across levels.
func (c *ApiClass) AddMethod(signature string, version int, deprecated bool) *ApiElement {
	if m, ok := c.methods[signature]; ok {
		m.Update(version, deprecated)
		return m
	}
	m := newElement(signature, version, deprecated)
	c.methods[signature] = m
	return m
}

func (c *ApiClass) AddField(name string, version int, deprecated bool) *ApiElement {
	if f, ok := c.fields[name]; ok {
		f.Update(version, deprecated)
		return f
	}
	f := newElement(name, version, deprecated)
	c.fields[name] = f
	return f
}

func (c *ApiClass) FindMethod(signature string) *ApiElement { return c.methods[signature] }
func (c *ApiClass) FindField(name string) *ApiElement       { return c.fields[name] }

// SuperClasses returns the supertype history ordered by appearance level.
func (c *ApiClass) SuperClasses() []*ApiElement {
	return sortedBySince(c.superClasses)
}

func (c *ApiClass) Interfaces() []*ApiElement {
	return sortedBySince(c.interfaces)
}

func (c *ApiClass) Methods() []*ApiElement { return sortedElements(c.methods) }
func (c *ApiClass) Fields() []*ApiElement  { return sortedElements(c.fields) }

func sortedBySince(elements []*ApiElement) []*ApiElement {
	out := make([]*ApiElement, len(elements))
	copy(out, elements)
	sort.Slice(out, func(i, j int) bool {
		if out[i].since != out[j].since {
			return out[i].since < out[j].since
		}
		return out[i].name < out[j].name
	})
	return out
}

func sortedElements(m map[string]*ApiElement) []*ApiElement {
	out := make([]*ApiElement, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Api is the accumulated history of a whole surface across levels.
type Api struct {
	classes map[string]*ApiClass
	min     int
	max     int
}

// NewApi starts an empty history whose first known level is min.
func NewApi(min int) *Api {
	return &Api{classes: make(map[string]*ApiClass), min: min, max: min}
}

func (a *Api) MinVersion() int { return a.min }

// MaxVersion is the newest level any element was seen in.
func (a *Api) MaxVersion() int { return a.max }

// AddClass records the class at the given level, creating its history
// entry on first sight.
func (a *Api) AddClass(name string, version int, deprecated bool) *ApiClass {
	if version > a.max {
		a.max = version
	}
	if c, ok := a.classes[name]; ok {
		c.Update(version, deprecated)
		return c
	}
	c := newClass(name, version, deprecated)
	a.classes[name] = c
	return c
}

func (a *Api) FindClass(name string) *ApiClass { return a.classes[name] }

// Classes returns all class histories sorted by name.
func (a *Api) Classes() []*ApiClass {
	out := make([]*ApiClass, 0, len(a.classes))
	for _, c := range a.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Clean applies every pruning pass in the order the output format
// expects, dropping references to classes absent from the history.
func (a *Api) Clean() {
	a.InlineFromHiddenSuperClasses()
	a.RemoveImplicitInterfaces()
	a.RemoveOverridingMethods()
	a.PrunePackagePrivateClasses()
	a.RemoveMissingClasses()
}

// InlineFromHiddenSuperClasses copies members that visible classes
// inherit from hidden superclasses into the visible class, so hiding the
// superclass does not lose the member history.
func (a *Api) InlineFromHiddenSuperClasses() {
	for _, cls := range a.classes {
		if cls.hidden {
			continue
		}
		for _, super := range cls.superClasses {
			hiddenSuper := a.classes[super.name]
			if hiddenSuper == nil || !hiddenSuper.hidden {
				continue
			}
			for sig, m := range hiddenSuper.methods {
				if _, ok := cls.methods[sig]; !ok {
					cls.methods[sig] = m.clone()
				}
			}
			for name, f := range hiddenSuper.fields {
				if _, ok := cls.fields[name]; !ok {
					cls.fields[name] = f.clone()
				}
			}
		}
	}
}

// RemoveImplicitInterfaces drops interface entries already implied by an
// ancestor that declared the same interface at the same level or earlier.
func (a *Api) RemoveImplicitInterfaces() {
	for _, cls := range a.classes {
		if len(cls.interfaces) == 0 {
			continue
		}
		kept := cls.interfaces[:0]
		for _, iface := range cls.interfaces {
			if !a.ancestorDeclaresInterface(cls, iface, map[string]bool{cls.name: true}) {
				kept = append(kept, iface)
			}
		}
		cls.interfaces = kept
	}
}

func (a *Api) ancestorDeclaresInterface(cls *ApiClass, iface *ApiElement, seen map[string]bool) bool {
	for _, super := range cls.superClasses {
		ancestor := a.classes[super.name]
		if ancestor == nil || seen[ancestor.name] {
			continue
		}
		seen[ancestor.name] = true
		for _, declared := range ancestor.interfaces {
			if declared.name == iface.name && declared.introducedNotLaterThan(iface) {
				return true
			}
		}
		if a.ancestorDeclaresInterface(ancestor, iface, seen) {
			return true
		}
	}
	return false
}

// RemoveOverridingMethods drops methods whose history adds nothing over
// the same method on an ancestor. Constructors are never dropped.
func (a *Api) RemoveOverridingMethods() {
	for _, cls := range a.classes {
		for sig, m := range cls.methods {
			if strings.HasPrefix(sig, "<init>") {
				continue
			}
			if a.ancestorHasMethod(cls, sig, m, map[string]bool{cls.name: true}) {
				delete(cls.methods, sig)
			}
		}
	}
}

func (a *Api) ancestorHasMethod(cls *ApiClass, sig string, m *ApiElement, seen map[string]bool) bool {
	for _, super := range cls.superClasses {
		ancestor := a.classes[super.name]
		if ancestor == nil || seen[ancestor.name] {
			continue
		}
		seen[ancestor.name] = true
		if inherited, ok := ancestor.methods[sig]; ok &&
			inherited.introducedNotLaterThan(m) && inherited.deprecatedIn == m.deprecatedIn {
			return true
		}
		if a.ancestorHasMethod(ancestor, sig, m, seen) {
			return true
		}
	}
	return false
}

// PrunePackagePrivateClasses relinks every superclass reference past
// package-private ancestors, then removes those classes from the history.
func (a *Api) PrunePackagePrivateClasses() {
	hasPrivate := false
	for _, cls := range a.classes {
		if cls.packagePrivate {
			hasPrivate = true
			break
		}
	}
	if !hasPrivate {
		return
	}
	for _, cls := range a.classes {
		if cls.packagePrivate {
			continue
		}
		var relinked []*ApiElement
		for _, super := range cls.superClasses {
			resolved := a.firstVisibleAncestor(super, map[string]bool{cls.name: true})
			if resolved == nil {
				continue
			}
			// The edge keeps its own lifetime; only the target changes.
			edge := super.clone()
			edge.name = resolved.name
			merged := false
			for _, existing := range relinked {
				if existing.name == edge.name {
					existing.Update(edge.since, false)
					existing.Update(edge.lastPresentIn, false)
					merged = true
					break
				}
			}
			if !merged {
				relinked = append(relinked, edge)
			}
		}
		cls.superClasses = relinked
	}
	for name, cls := range a.classes {
		if cls.packagePrivate {
			delete(a.classes, name)
		}
	}
}

func (a *Api) firstVisibleAncestor(super *ApiElement, seen map[string]bool) *ApiElement {
	cls := a.classes[super.name]
	if cls == nil || !cls.packagePrivate {
		return super
	}
	if seen[super.name] {
		return nil
	}
	seen[super.name] = true
	for _, next := range cls.superClasses {
		if resolved := a.firstVisibleAncestor(next, seen); resolved != nil {
			return resolved
		}
	}
	return nil
}

// RemoveMissingClasses drops superclass and interface references that
// name classes absent from the history.
func (a *Api) RemoveMissingClasses() {
	for _, cls := range a.classes {
		cls.superClasses = keepPresent(cls.superClasses, a.classes)
		cls.interfaces = keepPresent(cls.interfaces, a.classes)
	}
}

func keepPresent(refs []*ApiElement, classes map[string]*ApiClass) []*ApiElement {
	kept := refs[:0]
	for _, ref := range refs {
		if _, ok := classes[ref.name]; ok {
			kept = append(kept, ref)
		}
	}
	return kept
}

// MissingClassError reports dangling supertype references, each missing
// class paired with the classes that refer to it.
type MissingClassError struct {
	Missing map[string][]string // missing class name -> sorted referers
}

func (e *MissingClassError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for name := range e.Missing {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	fmt.Fprintf(&b, "%d missing classes:", len(names))
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s referenced by %s", name, strings.Join(e.Missing[name], ", "))
	}
	return b.String()
}

// VerifyNoMissingClasses is the strict alternative to
// RemoveMissingClasses: any dangling reference is an error.
func (a *Api) VerifyNoMissingClasses() error {
	missing := make(map[string][]string)
	for _, cls := range a.classes {
		for _, ref := range cls.superClasses {
			if _, ok := a.classes[ref.name]; !ok {
				missing[ref.name] = append(missing[ref.name], cls.name)
			}
		}
		for _, ref := range cls.interfaces {
			if _, ok := a.classes[ref.name]; !ok {
				missing[ref.name] = append(missing[ref.name], cls.name)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	for name := range missing {
		sort.Strings(missing[name])
	}
	return &MissingClassError{Missing: missing}
}
