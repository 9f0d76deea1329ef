package model

import "strings"

type TypeKind int

const (
	TypePrimitive TypeKind = iota
	TypeClass
	TypeArray
	TypeVariable
	TypeWildcard
)

// Nullability is the declared nullness of a type usage. Platform means no
// declaration either way, which is the default for Java types.
type Nullability int

const (
	NullPlatform Nullability = iota
	NullNullable
	NullNonNull
)

// TypeItem represents one type usage: a primitive, a class reference with
// type arguments, an array, a bound type variable or a wildcard.
//
// TypeItems are immutable after construction and may be shared through the
// codebase's type cache; callers must never modify one in place.
type TypeItem struct {
	Kind TypeKind

	// Name is the primitive keyword, the qualified class name, or the
	// type variable name, depending on Kind.
	Name string

	// Outer is set for an inner class whose outer class carries type
	// arguments of its own (a.b.Outer<T>.Inner).
	Outer *TypeItem

	// Arguments are the type arguments of a class reference.
	Arguments []*TypeItem

	// Component is the element type of an array.
	Component *TypeItem

	// Varargs marks an array that was declared with "..." rather than
	// "[]". It is still an array for every structural purpose.
	Varargs bool

	// ExtendsBound and SuperBound apply to wildcards; both nil means an
	// unbounded "?".
	ExtendsBound *TypeItem
	SuperBound   *TypeItem

	Null Nullability
	// NullDeclared distinguishes an explicit nullness marker from the
	// platform default; kotlin-style readers default undeclared nullness
	// to non-null.
	NullDeclared bool

	Annotations []*AnnotationItem
}

// TypeStringOptions controls the textual rendering of a type.
type TypeStringOptions struct {
	// KotlinStyleNulls renders nullability as ?/! suffixes; otherwise
	// nullability renders as @Nullable/@NonNull annotation prefixes.
	KotlinStyleNulls bool
	// IncludeAnnotations includes type-use annotations (and, when
	// KotlinStyleNulls is off, nullability annotations).
	IncludeAnnotations bool
}

const (
	nullableAnnotation = "androidx.annotation.Nullable"
	nonNullAnnotation  = "androidx.annotation.NonNull"
)

// String renders the canonical form: no nullability markers, no
// annotations. Two types are interchangeable for comparison purposes iff
// their String forms match.
func (t *TypeItem) String() string {
	return t.TypeString(TypeStringOptions{})
}

func (t *TypeItem) TypeString(opts TypeStringOptions) string {
	var sb strings.Builder
	t.writeTo(&sb, opts)
	return sb.String()
}

func (t *TypeItem) writeTo(sb *strings.Builder, opts TypeStringOptions) {
	if opts.IncludeAnnotations {
		for _, a := range t.Annotations {
			sb.WriteString(a.SourceString())
			sb.WriteByte(' ')
		}
		if !opts.KotlinStyleNulls && t.Kind != TypePrimitive {
			switch t.Null {
			case NullNullable:
				sb.WriteString("@" + nullableAnnotation + " ")
			case NullNonNull:
				sb.WriteString("@" + nonNullAnnotation + " ")
			}
		}
	}

	switch t.Kind {
	case TypePrimitive, TypeVariable:
		sb.WriteString(t.Name)
	case TypeClass:
		if t.Outer != nil {
			t.Outer.writeTo(sb, opts)
			sb.WriteByte('.')
			sb.WriteString(simpleNameOf(t.Name))
		} else {
			sb.WriteString(t.Name)
		}
		if len(t.Arguments) > 0 {
			sb.WriteByte('<')
			for i, arg := range t.Arguments {
				if i > 0 {
					sb.WriteByte(',')
				}
				arg.writeTo(sb, opts)
			}
			sb.WriteByte('>')
		}
	case TypeArray:
		t.Component.writeTo(sb, opts)
		if t.Varargs {
			sb.WriteString("...")
		} else {
			sb.WriteString("[]")
		}
	case TypeWildcard:
		sb.WriteByte('?')
		if t.ExtendsBound != nil {
			sb.WriteString(" extends ")
			t.ExtendsBound.writeTo(sb, opts)
		} else if t.SuperBound != nil {
			sb.WriteString(" super ")
			t.SuperBound.writeTo(sb, opts)
		}
	}

	if opts.KotlinStyleNulls && t.Kind != TypePrimitive && t.Kind != TypeWildcard {
		switch t.Null {
		case NullNullable:
			sb.WriteByte('?')
		case NullPlatform:
			sb.WriteByte('!')
		}
	}
}

// Erasure strips type arguments, annotations, nullability and wildcard
// bounds, yielding the raw runtime type. A wildcard erases to its extends
// bound, or java.lang.Object when unbounded.
func (t *TypeItem) Erasure() *TypeItem {
	switch t.Kind {
	case TypePrimitive, TypeVariable:
		return &TypeItem{Kind: t.Kind, Name: t.Name}
	case TypeClass:
		return &TypeItem{Kind: TypeClass, Name: t.Name}
	case TypeArray:
		return &TypeItem{Kind: TypeArray, Component: t.Component.Erasure()}
	case TypeWildcard:
		if t.ExtendsBound != nil {
			return t.ExtendsBound.Erasure()
		}
		return &TypeItem{Kind: TypeClass, Name: "java.lang.Object"}
	}
	return t
}

// WithNullability returns a copy of the type carrying the given
// nullability marker. The receiver is unchanged; types are immutable.
func (t *TypeItem) WithNullability(n Nullability) *TypeItem {
	if t.Null == n && t.NullDeclared {
		return t
	}
	copied := *t
	copied.Null = n
	copied.NullDeclared = true
	return &copied
}

// Dimensions returns the array dimension count, 0 for non-arrays.
func (t *TypeItem) Dimensions() int {
	n := 0
	for cur := t; cur.Kind == TypeArray; cur = cur.Component {
		n++
	}
	return n
}

func (t *TypeItem) IsPrimitive() bool { return t.Kind == TypePrimitive }
func (t *TypeItem) IsArray() bool     { return t.Kind == TypeArray }

func (t *TypeItem) IsVoid() bool {
	return t.Kind == TypePrimitive && t.Name == "void"
}

// EqualTo compares two type usages structurally, ignoring nullability and
// annotations.
func (t *TypeItem) EqualTo(other *TypeItem) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.String() == other.String()
}

// ResolveClass looks up the ClassItem behind a class or array-of-class
// type in the given codebase. Returns nil for primitives, variables and
// unknown classes.
func (t *TypeItem) ResolveClass(cb *Codebase) *ClassItem {
	switch t.Kind {
	case TypeClass:
		return cb.FindClass(t.Name)
	case TypeArray:
		return t.Component.ResolveClass(cb)
	}
	return nil
}

func simpleNameOf(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

var primitiveNames = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// PrimitiveType returns the shared representation of a primitive keyword.
func PrimitiveType(name string) *TypeItem {
	return &TypeItem{Kind: TypePrimitive, Name: name}
}

// ClassType returns a plain (non-generic) class reference.
func ClassType(qualifiedName string) *TypeItem {
	return &TypeItem{Kind: TypeClass, Name: qualifiedName}
}
