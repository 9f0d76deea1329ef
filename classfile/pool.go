package classfile

import (
	"fmt"
	"strconv"
)

// poolEntry keeps the decoded payload of one constant pool slot. Only
// the constants that class-level resolution consults carry data; the
// reference kinds exist so the reader can walk past them.
type poolEntry struct {
	tag  constantTag
	utf8 string
	// ref holds a single pool index (Class name, String value,
	// MethodType descriptor, Module/Package name).
	ref uint16

	intValue    int32
	longValue   int64
	floatValue  float32
	doubleValue float64
}

// pool is 1-indexed like the class file format; slot 0 is unused and
// the slot after a long or double constant stays nil.
type pool []*poolEntry

func (p pool) entry(index uint16) *poolEntry {
	if index == 0 || int(index) >= len(p) {
		return nil
	}
	return p[index]
}

func (p pool) utf8(index uint16) string {
	if e := p.entry(index); e != nil && e.tag == constantUtf8 {
		return e.utf8
	}
	return ""
}

func (p pool) className(index uint16) string {
	if e := p.entry(index); e != nil && e.tag == constantClass {
		return p.utf8(e.ref)
	}
	return ""
}

// constantLiteral renders an Integer, Long, Float, Double or String
// constant as a source literal, for ConstantValue attributes.
func (p pool) constantLiteral(index uint16) (string, bool) {
	e := p.entry(index)
	if e == nil {
		return "", false
	}
	switch e.tag {
	case constantInteger:
		return strconv.FormatInt(int64(e.intValue), 10), true
	case constantLong:
		return strconv.FormatInt(e.longValue, 10) + "L", true
	case constantFloat:
		return strconv.FormatFloat(float64(e.floatValue), 'g', -1, 32) + "f", true
	case constantDouble:
		return strconv.FormatFloat(e.doubleValue, 'g', -1, 64), true
	case constantString:
		return fmt.Sprintf("%q", p.utf8(e.ref)), true
	}
	return "", false
}
