package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

func ParseFile(path string) (*Class, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads one class file and resolves it to API facts.
func Parse(rd io.Reader) (*Class, error) {
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	cls := &Class{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read version: %w", r.err)
	}

	cp, err := readPool(r)
	if err != nil {
		return nil, err
	}

	cls.AccessFlags = AccessFlags(r.readU2())
	cls.Name = cp.className(r.readU2())
	cls.SuperClass = cp.className(r.readU2())

	interfacesCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}
	cls.Interfaces = make([]string, interfacesCount)
	for i := range cls.Interfaces {
		cls.Interfaces[i] = cp.className(r.readU2())
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read interfaces: %w", r.err)
	}

	fieldsCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read fields count: %w", r.err)
	}
	cls.Fields = make([]Field, fieldsCount)
	for i := range cls.Fields {
		if err := readField(r, cp, &cls.Fields[i]); err != nil {
			return nil, fmt.Errorf("failed to read field %d: %w", i, err)
		}
	}

	methodsCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read methods count: %w", r.err)
	}
	cls.Methods = make([]Method, methodsCount)
	for i := range cls.Methods {
		if err := readMethod(r, cp, &cls.Methods[i]); err != nil {
			return nil, fmt.Errorf("failed to read method %d: %w", i, err)
		}
	}

	attributesCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read attributes count: %w", r.err)
	}
	for i := uint16(0); i < attributesCount; i++ {
		name, info, err := readAttribute(r, cp)
		if err != nil {
			return nil, fmt.Errorf("failed to read attribute %d: %w", i, err)
		}
		switch name {
		case "SourceFile":
			if len(info) >= 2 {
				cls.SourceFile = cp.utf8(binary.BigEndian.Uint16(info[0:2]))
			}
		case "Signature":
			if len(info) >= 2 {
				cls.Signature = cp.utf8(binary.BigEndian.Uint16(info[0:2]))
			}
		case "Deprecated":
			cls.Deprecated = true
		case "InnerClasses":
			cls.InnerClasses = readInnerClasses(info, cp)
		case "RuntimeVisibleAnnotations":
			cls.Annotations = readAnnotations(info, cp)
		}
	}

	return cls, nil
}

func readPool(r *reader) (pool, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", r.err)
	}

	cp := make(pool, count)
	for i := uint16(1); i < count; i++ {
		entry, wide, err := readPoolEntry(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, err)
		}
		cp[i] = entry
		if wide {
			// Longs and doubles occupy two slots.
			i++
		}
	}
	return cp, nil
}

func readPoolEntry(r *reader) (*poolEntry, bool, error) {
	tag := constantTag(r.readU1())
	if r.err != nil {
		return nil, false, r.err
	}

	e := &poolEntry{tag: tag}
	switch tag {
	case constantUtf8:
		length := r.readU2()
		e.utf8 = decodeModifiedUtf8(r.readBytes(int(length)))
	case constantInteger:
		e.intValue = int32(r.readU4())
	case constantFloat:
		e.floatValue = math.Float32frombits(r.readU4())
	case constantLong:
		high, low := r.readU4(), r.readU4()
		e.longValue = (int64(high) << 32) | int64(low)
	case constantDouble:
		high, low := r.readU4(), r.readU4()
		e.doubleValue = math.Float64frombits((uint64(high) << 32) | uint64(low))
	case constantClass, constantString, constantMethodType, constantModule, constantPackage:
		e.ref = r.readU2()
	case constantFieldref, constantMethodref, constantInterfaceMethodref,
		constantNameAndType, constantDynamic, constantInvokeDynamic:
		r.readU2()
		r.readU2()
	case constantMethodHandle:
		r.readU1()
		r.readU2()
	default:
		return nil, false, fmt.Errorf("unknown constant pool tag: %d", tag)
	}
	if r.err != nil {
		return nil, false, r.err
	}
	return e, tag == constantLong || tag == constantDouble, nil
}

func readField(r *reader, cp pool, field *Field) error {
	field.AccessFlags = AccessFlags(r.readU2())
	field.Name = cp.utf8(r.readU2())
	field.Descriptor = cp.utf8(r.readU2())

	attributesCount := r.readU2()
	if r.err != nil {
		return r.err
	}
	for i := uint16(0); i < attributesCount; i++ {
		name, info, err := readAttribute(r, cp)
		if err != nil {
			return err
		}
		switch name {
		case "ConstantValue":
			if len(info) >= 2 {
				field.ConstantValue, field.HasConstant = cp.constantLiteral(binary.BigEndian.Uint16(info[0:2]))
			}
		case "Signature":
			if len(info) >= 2 {
				field.Signature = cp.utf8(binary.BigEndian.Uint16(info[0:2]))
			}
		case "Deprecated":
			field.Deprecated = true
		case "RuntimeVisibleAnnotations":
			field.Annotations = readAnnotations(info, cp)
		}
	}
	return nil
}

func readMethod(r *reader, cp pool, method *Method) error {
	method.AccessFlags = AccessFlags(r.readU2())
	method.Name = cp.utf8(r.readU2())
	method.Descriptor = cp.utf8(r.readU2())

	attributesCount := r.readU2()
	if r.err != nil {
		return r.err
	}
	for i := uint16(0); i < attributesCount; i++ {
		name, info, err := readAttribute(r, cp)
		if err != nil {
			return err
		}
		switch name {
		case "Exceptions":
			method.Exceptions = readExceptions(info, cp)
		case "Signature":
			if len(info) >= 2 {
				method.Signature = cp.utf8(binary.BigEndian.Uint16(info[0:2]))
			}
		case "Deprecated":
			method.Deprecated = true
		case "MethodParameters":
			method.ParameterNames = readParameterNames(info, cp)
		case "AnnotationDefault":
			if value, _, ok := readElementValue(info, 0, cp); ok {
				method.AnnotationDefault = value
			}
		case "RuntimeVisibleAnnotations":
			method.Annotations = readAnnotations(info, cp)
		}
	}
	return nil
}

// readAttribute returns the attribute name and raw payload; payloads of
// attributes the package does not model are read and dropped by the
// caller.
func readAttribute(r *reader, cp pool) (string, []byte, error) {
	nameIndex := r.readU2()
	length := r.readU4()
	info := r.readBytes(int(length))
	if r.err != nil {
		return "", nil, r.err
	}
	return cp.utf8(nameIndex), info, nil
}

func readExceptions(info []byte, cp pool) []string {
	if len(info) < 2 {
		return nil
	}
	count := binary.BigEndian.Uint16(info[0:2])
	if len(info) < 2+int(count)*2 {
		return nil
	}
	exceptions := make([]string, count)
	offset := 2
	for i := range exceptions {
		exceptions[i] = cp.className(binary.BigEndian.Uint16(info[offset : offset+2]))
		offset += 2
	}
	return exceptions
}

func readInnerClasses(info []byte, cp pool) []InnerClass {
	if len(info) < 2 {
		return nil
	}
	count := binary.BigEndian.Uint16(info[0:2])
	if len(info) < 2+int(count)*8 {
		return nil
	}
	classes := make([]InnerClass, count)
	offset := 2
	for i := range classes {
		classes[i] = InnerClass{
			Inner:       cp.className(binary.BigEndian.Uint16(info[offset : offset+2])),
			Outer:       cp.className(binary.BigEndian.Uint16(info[offset+2 : offset+4])),
			InnerName:   cp.utf8(binary.BigEndian.Uint16(info[offset+4 : offset+6])),
			AccessFlags: AccessFlags(binary.BigEndian.Uint16(info[offset+6 : offset+8])),
		}
		offset += 8
	}
	return classes
}

func readParameterNames(info []byte, cp pool) []string {
	if len(info) < 1 {
		return nil
	}
	count := int(info[0])
	if len(info) < 1+count*4 {
		return nil
	}
	names := make([]string, count)
	offset := 1
	for i := range names {
		names[i] = cp.utf8(binary.BigEndian.Uint16(info[offset : offset+2]))
		offset += 4
	}
	return names
}

func readAnnotations(info []byte, cp pool) []Annotation {
	if len(info) < 2 {
		return nil
	}
	count := binary.BigEndian.Uint16(info[0:2])
	annotations := make([]Annotation, 0, count)
	offset := 2
	for i := uint16(0); i < count; i++ {
		annotation, next, ok := readAnnotation(info, offset, cp)
		if !ok {
			break
		}
		annotations = append(annotations, annotation)
		offset = next
	}
	return annotations
}

func readAnnotation(info []byte, offset int, cp pool) (Annotation, int, bool) {
	if len(info) < offset+4 {
		return Annotation{}, offset, false
	}
	typeDescriptor := cp.utf8(binary.BigEndian.Uint16(info[offset : offset+2]))
	pairCount := binary.BigEndian.Uint16(info[offset+2 : offset+4])
	offset += 4

	annotation := Annotation{Type: annotationTypeName(typeDescriptor)}
	for i := uint16(0); i < pairCount; i++ {
		if len(info) < offset+2 {
			return annotation, offset, false
		}
		name := cp.utf8(binary.BigEndian.Uint16(info[offset : offset+2]))
		value, next, ok := readElementValue(info, offset+2, cp)
		if !ok {
			return annotation, offset, false
		}
		annotation.Elements = append(annotation.Elements, AnnotationElement{Name: name, Value: value})
		offset = next
	}
	return annotation, offset, true
}

// annotationTypeName strips the descriptor wrapping from an annotation
// type: "Landroidx/annotation/Nullable;" becomes the internal name.
func annotationTypeName(descriptor string) string {
	if strings.HasPrefix(descriptor, "L") && strings.HasSuffix(descriptor, ";") {
		return descriptor[1 : len(descriptor)-1]
	}
	return descriptor
}

// readElementValue renders one element_value to source form and returns
// the offset past it.
func readElementValue(info []byte, offset int, cp pool) (string, int, bool) {
	if len(info) <= offset {
		return "", offset, false
	}
	tag := info[offset]
	offset++

	readIndex := func() (uint16, bool) {
		if len(info) < offset+2 {
			return 0, false
		}
		index := binary.BigEndian.Uint16(info[offset : offset+2])
		offset += 2
		return index, true
	}

	switch tag {
	case 'B', 'I', 'S':
		index, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		if e := cp.entry(index); e != nil {
			return strconv.FormatInt(int64(e.intValue), 10), offset, true
		}
	case 'C':
		index, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		if e := cp.entry(index); e != nil {
			return strconv.QuoteRune(rune(e.intValue)), offset, true
		}
	case 'Z':
		index, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		if e := cp.entry(index); e != nil {
			if e.intValue != 0 {
				return "true", offset, true
			}
			return "false", offset, true
		}
	case 'J':
		index, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		if e := cp.entry(index); e != nil {
			return strconv.FormatInt(e.longValue, 10) + "L", offset, true
		}
	case 'F':
		index, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		if e := cp.entry(index); e != nil {
			return strconv.FormatFloat(float64(e.floatValue), 'g', -1, 32) + "f", offset, true
		}
	case 'D':
		index, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		if e := cp.entry(index); e != nil {
			return strconv.FormatFloat(e.doubleValue, 'g', -1, 64), offset, true
		}
	case 's':
		index, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		return fmt.Sprintf("%q", cp.utf8(index)), offset, true
	case 'e':
		typeIndex, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		constIndex, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		enumType := strings.ReplaceAll(annotationTypeName(cp.utf8(typeIndex)), "/", ".")
		return enumType + "." + cp.utf8(constIndex), offset, true
	case 'c':
		index, ok := readIndex()
		if !ok {
			return "", offset, false
		}
		return strings.ReplaceAll(annotationTypeName(cp.utf8(index)), "/", ".") + ".class", offset, true
	case '@':
		annotation, next, ok := readAnnotation(info, offset, cp)
		if !ok {
			return "", offset, false
		}
		return "@" + strings.ReplaceAll(annotation.Type, "/", "."), next, true
	case '[':
		if len(info) < offset+2 {
			return "", offset, false
		}
		count := binary.BigEndian.Uint16(info[offset : offset+2])
		offset += 2
		values := make([]string, 0, count)
		for i := uint16(0); i < count; i++ {
			value, next, ok := readElementValue(info, offset, cp)
			if !ok {
				return "", offset, false
			}
			values = append(values, value)
			offset = next
		}
		return "{" + strings.Join(values, ", ") + "}", offset, true
	}
	return "", offset, false
}

// decodeModifiedUtf8 decodes the JVM's modified UTF-8, including
// surrogate pairs encoded as two three-byte sequences.
func decodeModifiedUtf8(bytes []byte) string {
	runes := make([]rune, 0, len(bytes))
	i := 0
	for i < len(bytes) {
		b := bytes[i]
		if b&0x80 == 0 {
			runes = append(runes, rune(b))
			i++
		} else if b&0xE0 == 0xC0 {
			if i+1 >= len(bytes) {
				break
			}
			r := rune(b&0x1F)<<6 | rune(bytes[i+1]&0x3F)
			runes = append(runes, r)
			i += 2
		} else if b&0xF0 == 0xE0 {
			if i+2 >= len(bytes) {
				break
			}
			r := rune(b&0x0F)<<12 | rune(bytes[i+1]&0x3F)<<6 | rune(bytes[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(bytes) && bytes[i+3] == 0xED {
				high := r
				low := rune(bytes[i+3]&0x0F)<<12 | rune(bytes[i+4]&0x3F)<<6 | rune(bytes[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+((high-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		} else {
			runes = append(runes, rune(b))
			i++
		}
	}
	return string(runes)
}
