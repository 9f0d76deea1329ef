package javasrc

import "strings"

// javaLangNames are the implicitly imported java.lang types a surface
// realistically references. Anything absent resolves through the
// package fallback and surfaces as a stub, which comparison and
// emission treat the same way.
var javaLangNames = map[string]bool{
	"Object": true, "String": true, "Class": true, "System": true,
	"Throwable": true, "Exception": true, "RuntimeException": true, "Error": true,
	"IllegalArgumentException": true, "IllegalStateException": true,
	"UnsupportedOperationException": true, "NullPointerException": true,
	"IndexOutOfBoundsException": true, "ClassCastException": true,
	"InterruptedException": true, "ClassNotFoundException": true,
	"Integer": true, "Long": true, "Short": true, "Byte": true,
	"Float": true, "Double": true, "Character": true, "Boolean": true, "Void": true,
	"Number": true, "Comparable": true, "CharSequence": true, "Appendable": true,
	"Iterable": true, "Cloneable": true, "Runnable": true, "AutoCloseable": true,
	"Thread": true, "ThreadLocal": true, "StringBuilder": true, "StringBuffer": true,
	"Math": true, "Enum": true, "Record": true,
	"Override": true, "Deprecated": true, "SuppressWarnings": true,
	"SafeVarargs": true, "FunctionalInterface": true,
}

var primitiveNames = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// resolver qualifies simple type names against the file's imports, the
// types declared across the loaded sources, java.lang, and finally the
// file's own package.
type resolver struct {
	pkg       string
	imports   []importDecl
	wildcards []string
	typeNames map[string]string // simple or dotted declared name -> qualified name
}

func newResolver(pkg string, imports []importDecl, typeNames map[string]string) *resolver {
	r := &resolver{pkg: pkg, imports: imports, typeNames: typeNames}
	for _, imp := range imports {
		if imp.wildcard && !imp.static {
			r.wildcards = append(r.wildcards, imp.qualifiedName)
		}
	}
	return r
}

// qualifyType rewrites every type name inside a rendered type string to
// its qualified form, leaving type variables from scope alone.
func (r *resolver) qualifyType(raw string, scope map[string]bool) string {
	var sb strings.Builder
	for i := 0; i < len(raw); {
		c := raw[i]
		if !isIdentStart(c) {
			sb.WriteByte(c)
			i++
			continue
		}
		j := i
		for j < len(raw) && (isIdentPart(raw[j]) || raw[j] == '.') {
			j++
		}
		sb.WriteString(r.resolveWord(raw[i:j], scope))
		i = j
	}
	return sb.String()
}

func (r *resolver) resolveWord(word string, scope map[string]bool) string {
	switch word {
	case "extends", "super":
		return word
	}
	if primitiveNames[word] {
		return word
	}

	head := word
	rest := ""
	if i := strings.IndexByte(word, '.'); i >= 0 {
		head, rest = word[:i], word[i:]
	}
	if scope != nil && scope[head] && rest == "" {
		return word
	}

	// Declared types win: a whole dotted name first ("Outer.Inner"),
	// then the head segment of a partially qualified one.
	if qualified, ok := r.typeNames[word]; ok {
		return qualified
	}
	if qualified, ok := r.typeNames[head]; ok {
		return qualified + rest
	}

	if rest != "" {
		// Already package qualified.
		return word
	}
	for _, imp := range r.imports {
		if imp.wildcard || imp.static {
			continue
		}
		if simpleNameOf(imp.qualifiedName) == word {
			return imp.qualifiedName
		}
	}
	for _, pkg := range r.wildcards {
		if qualified, ok := r.typeNames[pkg+"."+word]; ok {
			return qualified
		}
	}
	if javaLangNames[word] {
		return "java.lang." + word
	}
	if r.pkg != "" {
		return r.pkg + "." + word
	}
	return word
}

func simpleNameOf(qualifiedName string) string {
	if i := strings.LastIndexByte(qualifiedName, '.'); i >= 0 {
		return qualifiedName[i+1:]
	}
	return qualifiedName
}
