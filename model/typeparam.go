package model

import "strings"

// TypeParameterItem is one declared type parameter (the T in class
// Foo<T extends Number>).
type TypeParameterItem struct {
	name   string
	bounds []*TypeItem
}

func NewTypeParameter(name string, bounds ...*TypeItem) *TypeParameterItem {
	return &TypeParameterItem{name: name, bounds: bounds}
}

func (tp *TypeParameterItem) Name() string       { return tp.name }
func (tp *TypeParameterItem) Bounds() []*TypeItem { return tp.bounds }

func (tp *TypeParameterItem) String() string {
	if len(tp.bounds) == 0 {
		return tp.name
	}
	var parts []string
	for _, b := range tp.bounds {
		parts = append(parts, b.String())
	}
	return tp.name + " extends " + strings.Join(parts, " & ")
}

// TypeParameterList is an ordered type parameter declaration list. It
// doubles as a TypeVariableScope for parsing types declared inside it.
type TypeParameterList []*TypeParameterItem

func (l TypeParameterList) IsTypeVariable(name string) bool {
	for _, tp := range l {
		if tp.name == name {
			return true
		}
	}
	return false
}

// Find returns the parameter with the given name, or nil.
func (l TypeParameterList) Find(name string) *TypeParameterItem {
	for _, tp := range l {
		if tp.name == name {
			return tp
		}
	}
	return nil
}

// String renders "<A, B extends X>", or "" for an empty list.
func (l TypeParameterList) String() string {
	if len(l) == 0 {
		return ""
	}
	var parts []string
	for _, tp := range l {
		parts = append(parts, tp.String())
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// CombineScopes joins an outer scope (class type parameters) with an
// inner list (method type parameters); the inner list shadows the outer.
func CombineScopes(inner TypeParameterList, outer TypeVariableScope) TypeVariableScope {
	if len(inner) == 0 {
		return outer
	}
	return combinedScope{inner: inner, outer: outer}
}

// combinedScope joins an outer scope (class type parameters) with an inner
// one (method type parameters); the inner list shadows the outer.
type combinedScope struct {
	inner TypeParameterList
	outer TypeVariableScope
}

func (s combinedScope) IsTypeVariable(name string) bool {
	if s.inner.IsTypeVariable(name) {
		return true
	}
	return s.outer != nil && s.outer.IsTypeVariable(name)
}
