package model

import (
	"sort"
	"strings"
)

// ClassResolver resolves qualified names that are absent from the current
// codebase, typically against a dependency classpath. A nil result means
// "not found" and is not an error; callers fall back to stubs.
type ClassResolver interface {
	ResolveClass(qualifiedName string) *ClassItem
}

// Codebase is one complete loaded API snapshot: every package and class of
// one surface, plus provenance. A class belongs to exactly one codebase;
// cross-codebase references go through a ClassResolver, never through
// shared items.
type Codebase struct {
	description string
	origin      Origin

	packages   map[string]*PackageItem
	classIndex map[string]*ClassItem

	typeCache *TypeCache
	resolver  ClassResolver

	frozen  bool
	trusted bool
}

// NewCodebase creates an empty codebase. The description names the input
// in errors ("api/current.txt", "android.jar", ...).
func NewCodebase(description string, origin Origin) *Codebase {
	return &Codebase{
		description: description,
		origin:      origin,
		packages:    make(map[string]*PackageItem),
		classIndex:  make(map[string]*ClassItem),
		typeCache:   newTypeCache(),
	}
}

func (cb *Codebase) Description() string { return cb.description }
func (cb *Codebase) Origin() Origin      { return cb.origin }

// SupportsDocumentation reports whether items in this codebase can carry
// doc comments. Only source-backed codebases do; signature files and
// bytecode have no documentation syntax.
func (cb *Codebase) SupportsDocumentation() bool {
	return cb.origin == OriginSource
}

// Trusted marks a codebase as already checked (e.g. a previously released
// API), so consumers can skip validation passes.
func (cb *Codebase) Trusted() bool { return cb.trusted }

func (cb *Codebase) MarkTrusted() { cb.trusted = true }

// Freeze makes the codebase read-only. Every subsequent mutation of any
// contained item fails with a FrozenError. Freezing is one-way.
func (cb *Codebase) Freeze() { cb.frozen = true }

func (cb *Codebase) Frozen() bool { return cb.frozen }

func (cb *Codebase) SetResolver(r ClassResolver) { cb.resolver = r }

// FindPackage returns the package with the given name, or nil.
func (cb *Codebase) FindPackage(name string) *PackageItem {
	return cb.packages[name]
}

// Packages returns all packages sorted by name.
func (cb *Codebase) Packages() []*PackageItem {
	names := make([]string, 0, len(cb.packages))
	for name := range cb.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	pkgs := make([]*PackageItem, len(names))
	for i, name := range names {
		pkgs[i] = cb.packages[name]
	}
	return pkgs
}

// FindClass returns the class with the given qualified name, or nil. The
// lookup covers nested classes through the flat index.
func (cb *Codebase) FindClass(qualifiedName string) *ClassItem {
	return cb.classIndex[qualifiedName]
}

// ResolveClass finds a class in this codebase or, failing that, through
// the configured resolver. Returns nil when neither knows the name.
func (cb *Codebase) ResolveClass(qualifiedName string) *ClassItem {
	if c := cb.classIndex[qualifiedName]; c != nil {
		return c
	}
	if cb.resolver != nil {
		return cb.resolver.ResolveClass(qualifiedName)
	}
	return nil
}

// AllClasses returns every class, nested ones included, sorted by
// qualified name.
func (cb *Codebase) AllClasses() []*ClassItem {
	names := make([]string, 0, len(cb.classIndex))
	for name := range cb.classIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	classes := make([]*ClassItem, len(names))
	for i, name := range names {
		classes[i] = cb.classIndex[name]
	}
	return classes
}

// FindOrCreatePackage returns the named package, creating it on first
// use.
func (cb *Codebase) FindOrCreatePackage(name string) *PackageItem {
	if p := cb.packages[name]; p != nil {
		return p
	}
	p := newPackage(cb, name)
	cb.packages[name] = p
	return p
}

// CreateClass registers a new class. fullName is the package-less name and
// uses dots for nesting ("Outer.Inner"); nested classes are wired to their
// containing class during PostProcess. A qualified name maps to exactly
// one class per codebase; duplicates fail.
func (cb *Codebase) CreateClass(pkgName, fullName string, kind ClassKind) (*ClassItem, error) {
	if cb.frozen {
		return nil, &FrozenError{Item: qualify(pkgName, fullName), Codebase: cb.description}
	}
	qualifiedName := qualify(pkgName, fullName)
	if _, exists := cb.classIndex[qualifiedName]; exists {
		return nil, &DuplicateClassError{QualifiedName: qualifiedName, Codebase: cb.description}
	}

	pkg := cb.FindOrCreatePackage(pkgName)
	c := &ClassItem{
		qualifiedName: qualifiedName,
		fullName:      fullName,
		kind:          kind,
		pkg:           pkg,
	}
	c.itemBase = newItemBase(cb, qualifiedName)
	c.initModifiers()

	cb.classIndex[qualifiedName] = c
	if !strings.Contains(fullName, ".") {
		pkg.classes = append(pkg.classes, c)
	}
	return c, nil
}

// CreateStubClass creates a placeholder for a referenced but unloaded
// class. Stubs resolve lookups and inheritance walks but are never
// emitted. The package/class split of the qualified name follows the
// usual convention: package components are the leading lower-case dotted
// parts.
func (cb *Codebase) CreateStubClass(qualifiedName string) (*ClassItem, error) {
	if existing := cb.classIndex[qualifiedName]; existing != nil {
		return existing, nil
	}
	pkgName, fullName := splitQualifiedName(qualifiedName)
	c, err := cb.CreateClass(pkgName, fullName, ClassKindClass)
	if err != nil {
		return nil, err
	}
	c.stub = true
	c.modifiers.visibility = VisibilityPublic
	return c, nil
}

// ParseType parses a canonical type string against this codebase's intern
// cache. scope supplies the type variable names in effect at the usage
// site; nil means no variables are in scope.
func (cb *Codebase) ParseType(s string, scope TypeVariableScope) (*TypeItem, error) {
	return cb.typeCache.get(s, scope)
}

func qualify(pkgName, fullName string) string {
	if pkgName == "" {
		return fullName
	}
	return pkgName + "." + fullName
}

// splitQualifiedName splits "a.b.Outer.Inner" into package "a.b" and class
// name "Outer.Inner". The package is the run of leading components that do
// not start with an upper-case letter; a name with no such components is
// in the default package.
func splitQualifiedName(qualifiedName string) (pkgName, fullName string) {
	parts := strings.Split(qualifiedName, ".")
	for i, part := range parts {
		if len(part) > 0 && part[0] >= 'A' && part[0] <= 'Z' {
			return strings.Join(parts[:i], "."), strings.Join(parts[i:], ".")
		}
	}
	if len(parts) == 1 {
		return "", qualifiedName
	}
	return strings.Join(parts[:len(parts)-1], "."), parts[len(parts)-1]
}
