package classfile

import (
	"fmt"
	"strings"
)

// TypeSigKind classifies one node of a parsed descriptor or generic
// signature.
type TypeSigKind int

const (
	SigPrimitive TypeSigKind = iota
	SigClass
	SigArray
	SigVariable
	SigWildcard
)

// TypeSig is one type from a descriptor or generic signature. Class
// names stay in internal form; converting to source names is the model
// builder's job.
type TypeSig struct {
	Kind TypeSigKind

	// Name is the primitive keyword ("int", "void"), the internal class
	// name, or the type variable name.
	Name string

	// Args are the type arguments of a parameterized class reference.
	Args []*TypeSig

	// Outer carries a parameterized enclosing class for signatures like
	// La/b/Outer<TT;>.Inner;.
	Outer *TypeSig

	// Component is the element type of an array.
	Component *TypeSig

	// Bound and BoundKind describe wildcards: '+' extends, '-' super,
	// '*' unbounded (Bound nil).
	Bound     *TypeSig
	BoundKind byte
}

// TypeParamSig is one declared type parameter with its bounds. An
// absent class bound is nil; annotation of intent only, interface
// bounds may be empty.
type TypeParamSig struct {
	Name            string
	ClassBound      *TypeSig
	InterfaceBounds []*TypeSig
}

// ClassSig is a parsed class Signature attribute.
type ClassSig struct {
	TypeParams []TypeParamSig
	SuperClass *TypeSig
	Interfaces []*TypeSig
}

// MethodSig is a parsed method Signature attribute or descriptor.
type MethodSig struct {
	TypeParams []TypeParamSig
	Parameters []*TypeSig
	Return     *TypeSig
	Throws     []*TypeSig
}

// SigError reports a malformed descriptor or signature.
type SigError struct {
	Input   string
	Offset  int
	Message string
}

func (e *SigError) Error() string {
	return fmt.Sprintf("invalid signature %q at offset %d: %s", e.Input, e.Offset, e.Message)
}

// ParseClassSig parses a class Signature attribute:
// [TypeParams] SuperclassSignature InterfaceSignature*.
func ParseClassSig(input string) (*ClassSig, error) {
	s := &sigScanner{input: input}
	sig := &ClassSig{}
	var err error
	if sig.TypeParams, err = s.typeParams(); err != nil {
		return nil, err
	}
	if sig.SuperClass, err = s.referenceType(); err != nil {
		return nil, err
	}
	for !s.done() {
		iface, err := s.referenceType()
		if err != nil {
			return nil, err
		}
		sig.Interfaces = append(sig.Interfaces, iface)
	}
	return sig, nil
}

// ParseMethodSig parses a method Signature attribute:
// [TypeParams] (ParamType*) ReturnType ThrowsSignature*.
// Plain method descriptors parse with the same grammar.
func ParseMethodSig(input string) (*MethodSig, error) {
	s := &sigScanner{input: input}
	sig := &MethodSig{}
	var err error
	if sig.TypeParams, err = s.typeParams(); err != nil {
		return nil, err
	}
	if err := s.expect('('); err != nil {
		return nil, err
	}
	for s.peek() != ')' {
		param, err := s.typeSig()
		if err != nil {
			return nil, err
		}
		sig.Parameters = append(sig.Parameters, param)
	}
	s.pos++
	if sig.Return, err = s.typeSig(); err != nil {
		return nil, err
	}
	for !s.done() {
		if err := s.expect('^'); err != nil {
			return nil, err
		}
		thrown, err := s.referenceType()
		if err != nil {
			return nil, err
		}
		sig.Throws = append(sig.Throws, thrown)
	}
	return sig, nil
}

// ParseTypeSig parses a field Signature attribute or field descriptor.
func ParseTypeSig(input string) (*TypeSig, error) {
	s := &sigScanner{input: input}
	t, err := s.typeSig()
	if err != nil {
		return nil, err
	}
	if !s.done() {
		return nil, s.errorf("trailing input")
	}
	return t, nil
}

type sigScanner struct {
	input string
	pos   int
}

func (s *sigScanner) done() bool { return s.pos >= len(s.input) }

func (s *sigScanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.input[s.pos]
}

func (s *sigScanner) errorf(format string, args ...interface{}) error {
	return &SigError{Input: s.input, Offset: s.pos, Message: fmt.Sprintf(format, args...)}
}

func (s *sigScanner) expect(c byte) error {
	if s.peek() != c {
		return s.errorf("expected %q", string(c))
	}
	s.pos++
	return nil
}

func (s *sigScanner) typeParams() ([]TypeParamSig, error) {
	if s.peek() != '<' {
		return nil, nil
	}
	s.pos++
	var params []TypeParamSig
	for s.peek() != '>' {
		name, err := s.identifier()
		if err != nil {
			return nil, err
		}
		if err := s.expect(':'); err != nil {
			return nil, err
		}
		param := TypeParamSig{Name: name}
		// The class bound may be elided: "T::Ljava/lang/Comparable;".
		if s.peek() != ':' && s.peek() != '>' {
			if param.ClassBound, err = s.referenceType(); err != nil {
				return nil, err
			}
		}
		for s.peek() == ':' {
			s.pos++
			bound, err := s.referenceType()
			if err != nil {
				return nil, err
			}
			param.InterfaceBounds = append(param.InterfaceBounds, bound)
		}
		params = append(params, param)
	}
	s.pos++
	return params, nil
}

var sigPrimitives = map[byte]string{
	'B': "byte", 'C': "char", 'D': "double", 'F': "float",
	'I': "int", 'J': "long", 'S': "short", 'Z': "boolean", 'V': "void",
}

func (s *sigScanner) typeSig() (*TypeSig, error) {
	if name, ok := sigPrimitives[s.peek()]; ok {
		s.pos++
		return &TypeSig{Kind: SigPrimitive, Name: name}, nil
	}
	return s.referenceType()
}

func (s *sigScanner) referenceType() (*TypeSig, error) {
	switch s.peek() {
	case 'L':
		return s.classType()
	case 'T':
		s.pos++
		name, err := s.identifierUntil(';')
		if err != nil {
			return nil, err
		}
		return &TypeSig{Kind: SigVariable, Name: name}, nil
	case '[':
		s.pos++
		component, err := s.typeSig()
		if err != nil {
			return nil, err
		}
		return &TypeSig{Kind: SigArray, Component: component}, nil
	case '*':
		s.pos++
		return &TypeSig{Kind: SigWildcard, BoundKind: '*'}, nil
	case '+', '-':
		kind := s.peek()
		s.pos++
		bound, err := s.referenceType()
		if err != nil {
			return nil, err
		}
		return &TypeSig{Kind: SigWildcard, BoundKind: kind, Bound: bound}, nil
	}
	return nil, s.errorf("expected a type")
}

// classType parses L Pkg/Name [<Args>] (. Inner [<Args>])* ; into a
// TypeSig whose Name is the full internal name ("a/b/Outer$Inner").
// When an enclosing segment carries its own type arguments it is kept
// on Outer so the generic nesting survives.
func (s *sigScanner) classType() (*TypeSig, error) {
	if err := s.expect('L'); err != nil {
		return nil, err
	}
	t := &TypeSig{Kind: SigClass}
	var name strings.Builder
	for {
		segment, err := s.segmentName()
		if err != nil {
			return nil, err
		}
		name.WriteString(segment)
		if s.peek() == '<' {
			args, err := s.typeArgs()
			if err != nil {
				return nil, err
			}
			t.Args = args
		}
		switch s.peek() {
		case ';':
			s.pos++
			t.Name = name.String()
			return t, nil
		case '.':
			s.pos++
			if len(t.Args) > 0 {
				t = &TypeSig{Kind: SigClass, Outer: &TypeSig{
					Kind: SigClass, Name: name.String(), Args: t.Args, Outer: t.Outer,
				}}
			}
			name.WriteByte('$')
		default:
			return nil, s.errorf("expected %q or %q in class type", ";", ".")
		}
	}
}

func (s *sigScanner) typeArgs() ([]*TypeSig, error) {
	s.pos++
	var args []*TypeSig
	for s.peek() != '>' {
		if s.done() {
			return nil, s.errorf("unterminated type arguments")
		}
		arg, err := s.referenceType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	s.pos++
	return args, nil
}

// segmentName reads one package or class segment, stopping before any
// signature metacharacter.
func (s *sigScanner) segmentName() (string, error) {
	start := s.pos
	for !s.done() {
		switch s.input[s.pos] {
		case ';', '<', '>', ':', '.':
			if s.pos == start {
				return "", s.errorf("empty name segment")
			}
			return s.input[start:s.pos], nil
		default:
			s.pos++
		}
	}
	return "", s.errorf("unterminated class type")
}

func (s *sigScanner) identifier() (string, error) {
	start := s.pos
	for !s.done() {
		c := s.input[s.pos]
		if c == ':' || c == '>' || c == ';' || c == '<' {
			break
		}
		s.pos++
	}
	if s.pos == start {
		return "", s.errorf("empty identifier")
	}
	return s.input[start:s.pos], nil
}

func (s *sigScanner) identifierUntil(terminator byte) (string, error) {
	start := s.pos
	for !s.done() && s.input[s.pos] != terminator {
		s.pos++
	}
	if s.done() {
		return "", s.errorf("expected %q", string(terminator))
	}
	name := s.input[start:s.pos]
	s.pos++
	if name == "" {
		return "", s.errorf("empty identifier")
	}
	return name, nil
}

// SourceName converts an internal class name to source form, turning
// both package separators and nesting separators into dots.
func SourceName(internal string) string {
	return strings.ReplaceAll(strings.ReplaceAll(internal, "/", "."), "$", ".")
}
