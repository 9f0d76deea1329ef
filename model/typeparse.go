package model

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// typeCacheSize bounds the per-codebase intern cache. Large classpaths
// reference tens of thousands of distinct type strings; the bound keeps
// the cache from scaling with classpath size.
const typeCacheSize = 16384

// TypeCache interns parsed types per codebase. It is deliberately owned by
// a single Codebase instance; there is no process-wide cache, so types
// never leak between codebases.
type TypeCache struct {
	parsed *lru.Cache[string, *TypeItem]
}

func newTypeCache() *TypeCache {
	cache, err := lru.New[string, *TypeItem](typeCacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &TypeCache{parsed: cache}
}

// get parses a type string, consulting the cache for scope-free lookups.
// Parses that depend on a type-variable scope are not cached, since the
// same string means different things under different scopes.
func (tc *TypeCache) get(s string, scope TypeVariableScope) (*TypeItem, error) {
	cacheable := scope == nil
	if cacheable {
		if t, ok := tc.parsed.Get(s); ok {
			return t, nil
		}
	}
	t, err := parseTypeString(s, scope)
	if err != nil {
		return nil, err
	}
	if cacheable {
		tc.parsed.Add(s, t)
	}
	return t, nil
}

// TypeVariableScope answers whether a bare name is a type variable at the
// point of use. Class and method type parameter lists implement this.
type TypeVariableScope interface {
	IsTypeVariable(name string) bool
}

// typeVariableSet is a plain name-set scope.
type typeVariableSet map[string]bool

func (s typeVariableSet) IsTypeVariable(name string) bool { return s[name] }

// NewTypeVariableScope builds a scope from explicit names, mostly for
// tests and builders.
func NewTypeVariableScope(names ...string) TypeVariableScope {
	set := make(typeVariableSet, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// ParseTypeString parses a canonical type string without any codebase
// cache. The grammar covers everything the signature format and the
// bytecode signature attribute can produce: qualified names, nested type
// arguments, arrays, varargs, wildcards, kotlin-style null suffixes and
// type-use annotations.
func parseTypeString(s string, scope TypeVariableScope) (*TypeItem, error) {
	p := &typeParser{input: s, scope: scope}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("invalid type %q: trailing %q", s, p.input[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	input string
	pos   int
	scope TypeVariableScope
}

func (p *typeParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *typeParser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *typeParser) parseType() (*TypeItem, error) {
	p.skipSpaces()

	var annotations []*AnnotationItem
	for p.peek() == '@' {
		a, err := p.parseAnnotation()
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
		p.skipSpaces()
	}

	// A '?' before any base type has been read is a wildcard; after a
	// base type it is a nullability suffix (handled in parseSuffixes).
	if p.peek() == '?' {
		t, err := p.parseWildcard()
		if err != nil {
			return nil, err
		}
		t.Annotations = annotations
		return t, nil
	}

	t, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}
	t, err = p.parseSuffixes(t)
	if err != nil {
		return nil, err
	}
	t.Annotations = annotations
	return t, nil
}

func (p *typeParser) parseWildcard() (*TypeItem, error) {
	p.pos++ // '?'
	t := &TypeItem{Kind: TypeWildcard}
	p.skipSpaces()
	switch {
	case p.hasPrefix("extends "):
		p.pos += len("extends ")
		bound, err := p.parseType()
		if err != nil {
			return nil, err
		}
		t.ExtendsBound = bound
	case p.hasPrefix("super "):
		p.pos += len("super ")
		bound, err := p.parseType()
		if err != nil {
			return nil, err
		}
		t.SuperBound = bound
	}
	return t, nil
}

func (p *typeParser) parseBaseType() (*TypeItem, error) {
	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}

	if primitiveNames[name] {
		return &TypeItem{Kind: TypePrimitive, Name: name}, nil
	}
	if p.scope != nil && !strings.Contains(name, ".") && p.scope.IsTypeVariable(name) {
		return &TypeItem{Kind: TypeVariable, Name: name}, nil
	}

	t := &TypeItem{Kind: TypeClass, Name: name}
	for p.peek() == '<' {
		args, err := p.parseTypeArguments()
		if err != nil {
			return nil, err
		}
		t.Arguments = args
		// A dot after a parameterized type starts an inner class whose
		// outer type carries arguments: a.b.Outer<T>.Inner
		if p.peek() == '.' {
			p.pos++
			inner, err := p.parseQualifiedName()
			if err != nil {
				return nil, err
			}
			t = &TypeItem{Kind: TypeClass, Name: t.Name + "." + inner, Outer: t}
		} else {
			break
		}
	}
	return t, nil
}

func (p *typeParser) parseTypeArguments() ([]*TypeItem, error) {
	p.pos++ // '<'
	var args []*TypeItem
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpaces()
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return args, nil
		default:
			return nil, fmt.Errorf("invalid type %q: expected ',' or '>' at offset %d", p.input, p.pos)
		}
	}
}

func (p *typeParser) parseSuffixes(t *TypeItem) (*TypeItem, error) {
	for {
		switch {
		case p.hasPrefix("..."):
			p.pos += 3
			t = &TypeItem{Kind: TypeArray, Component: t, Varargs: true}
		case p.hasPrefix("[]"):
			p.pos += 2
			t = &TypeItem{Kind: TypeArray, Component: t}
		case p.peek() == '?':
			p.pos++
			t.Null = NullNullable
			t.NullDeclared = true
		case p.peek() == '!':
			p.pos++
			t.Null = NullPlatform
			t.NullDeclared = true
		default:
			return t, nil
		}
	}
}

func (p *typeParser) parseQualifiedName() (string, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if isIdentByte(c) {
			p.pos++
			continue
		}
		if c == '.' && !p.hasPrefix("...") && p.pos+1 < len(p.input) && isIdentByte(p.input[p.pos+1]) {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", fmt.Errorf("invalid type %q: expected name at offset %d", p.input, start)
	}
	return p.input[start:p.pos], nil
}

func (p *typeParser) parseAnnotation() (*AnnotationItem, error) {
	p.pos++ // '@'
	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	var attrs []AnnotationAttribute
	if p.peek() == '(' {
		depth := 0
		start := p.pos + 1
		for ; p.pos < len(p.input); p.pos++ {
			if p.input[p.pos] == '(' {
				depth++
			} else if p.input[p.pos] == ')' {
				depth--
				if depth == 0 {
					break
				}
			}
		}
		if depth != 0 {
			return nil, fmt.Errorf("invalid type %q: unterminated annotation", p.input)
		}
		body := p.input[start:p.pos]
		p.pos++ // ')'
		attrs = parseAnnotationAttributes(body)
	}
	return NewAnnotation(name, attrs...), nil
}

// parseAnnotationAttributes splits "a=1, b={2, 3}" into pairs. Braces and
// quotes protect commas; a bare value becomes the "value" attribute.
func parseAnnotationAttributes(body string) []AnnotationAttribute {
	var attrs []AnnotationAttribute
	for _, part := range splitTopLevel(body, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if eq := indexTopLevel(part, '='); eq >= 0 {
			attrs = append(attrs, AnnotationAttribute{
				Name:  strings.TrimSpace(part[:eq]),
				Value: strings.TrimSpace(part[eq+1:]),
			})
		} else {
			attrs = append(attrs, AnnotationAttribute{Name: "value", Value: part})
		}
	}
	return attrs
}

// splitTopLevel splits on sep outside of braces, brackets, angle brackets
// and string literals.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '(', '<', '[':
			depth++
		case '}', ')', '>', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func indexTopLevel(s string, sep byte) int {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '(', '<', '[':
			depth++
		case '}', ')', '>', ']':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
