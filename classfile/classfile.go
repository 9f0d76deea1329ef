// Package classfile reads JVM class files down to the facts an API
// surface needs: names, flags, descriptors, generic signatures and the
// handful of attributes that affect an API (ConstantValue, Exceptions,
// InnerClasses, Signature, Deprecated, MethodParameters, runtime-visible
// annotations). Code, debug tables and module attributes are skipped.
package classfile

// Class is one parsed class file with constant pool references resolved
// to names. Class names are in internal form ("java/lang/String",
// nested "Outer$Inner").
type Class struct {
	MinorVersion uint16
	MajorVersion uint16

	AccessFlags AccessFlags
	Name        string
	SuperClass  string // "" for java/lang/Object and for modules
	Interfaces  []string

	// Signature is the generic signature attribute, "" when the class
	// has no type parameters and no generic supertypes.
	Signature  string
	SourceFile string
	Deprecated bool

	Annotations  []Annotation
	InnerClasses []InnerClass
	Fields       []Field
	Methods      []Method
}

// InnerClass is one entry of the InnerClasses attribute. Anonymous and
// local classes have an empty InnerName.
type InnerClass struct {
	Inner       string
	Outer       string
	InnerName   string
	AccessFlags AccessFlags
}

type Field struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Signature   string

	// ConstantValue is the compile-time constant in source-literal form;
	// HasConstant distinguishes an absent value from an empty string.
	ConstantValue string
	HasConstant   bool

	Deprecated  bool
	Annotations []Annotation
}

type Method struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Signature   string

	// Exceptions are the declared throws, as internal class names.
	Exceptions []string

	// ParameterNames comes from the MethodParameters attribute when the
	// class was compiled with -parameters; empty otherwise.
	ParameterNames []string

	// AnnotationDefault is the default of an annotation interface
	// member, rendered to source form; "" when absent.
	AnnotationDefault string

	Deprecated  bool
	Annotations []Annotation
}

func (m *Method) IsConstructor() bool       { return m.Name == "<init>" }
func (m *Method) IsStaticInitializer() bool { return m.Name == "<clinit>" }

// Annotation is one runtime-visible annotation with its element values
// rendered to source form.
type Annotation struct {
	// Type is the annotation interface in internal form.
	Type     string
	Elements []AnnotationElement
}

type AnnotationElement struct {
	Name  string
	Value string
}

// FindInnerClass returns the InnerClasses entry describing the given
// class, nil when the class is top level.
func (c *Class) FindInnerClass(internalName string) *InnerClass {
	for i := range c.InnerClasses {
		if c.InnerClasses[i].Inner == internalName {
			return &c.InnerClasses[i]
		}
	}
	return nil
}

func (c *Class) IsInterface() bool  { return c.AccessFlags.IsInterface() && !c.AccessFlags.IsAnnotation() }
func (c *Class) IsAnnotation() bool { return c.AccessFlags.IsAnnotation() }
func (c *Class) IsEnum() bool       { return c.AccessFlags.IsEnum() }
func (c *Class) IsModule() bool     { return c.AccessFlags.IsModule() }
