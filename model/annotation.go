package model

import "strings"

// AnnotationAttribute is one name/value pair on an annotation. Values are
// stored in their source form ("\"text\"", "3", "{1, 2}", ...).
type AnnotationAttribute struct {
	Name  string
	Value string
}

// AnnotationItem is an annotation usage attached to a modifier list.
type AnnotationItem struct {
	qualifiedName string
	attributes    []AnnotationAttribute
}

func NewAnnotation(qualifiedName string, attributes ...AnnotationAttribute) *AnnotationItem {
	return &AnnotationItem{qualifiedName: qualifiedName, attributes: attributes}
}

func (a *AnnotationItem) QualifiedName() string { return a.qualifiedName }

func (a *AnnotationItem) SimpleName() string {
	if i := strings.LastIndexByte(a.qualifiedName, '.'); i >= 0 {
		return a.qualifiedName[i+1:]
	}
	return a.qualifiedName
}

func (a *AnnotationItem) Attributes() []AnnotationAttribute { return a.attributes }

// Attribute returns the value of the named attribute and whether it was
// present.
func (a *AnnotationItem) Attribute(name string) (string, bool) {
	for _, attr := range a.attributes {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Key returns the identity used when matching annotations against filter
// sets. With attributeSensitive set the key is the full source form, so
// two usages of the same annotation with different attributes compare
// unequal; otherwise it is the bare qualified name.
func (a *AnnotationItem) Key(attributeSensitive bool) string {
	if !attributeSensitive || len(a.attributes) == 0 {
		return a.qualifiedName
	}
	return a.SourceString()
}

// SourceString renders the annotation the way it appears in source:
// @name(attr=value, ...). A single attribute named "value" is printed
// without its name.
func (a *AnnotationItem) SourceString() string {
	var sb strings.Builder
	sb.WriteByte('@')
	sb.WriteString(a.qualifiedName)
	if len(a.attributes) == 0 {
		return sb.String()
	}
	sb.WriteByte('(')
	if len(a.attributes) == 1 && a.attributes[0].Name == "value" {
		sb.WriteString(a.attributes[0].Value)
	} else {
		for i, attr := range a.attributes {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(attr.Name)
			sb.WriteByte('=')
			sb.WriteString(attr.Value)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func (a *AnnotationItem) String() string { return a.SourceString() }
