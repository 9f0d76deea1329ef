package model

import "strings"

// MethodItem is a method or constructor. Constructors are method items
// whose IsConstructor reports true; they live in their containing class's
// constructor list.
type MethodItem struct {
	itemBase

	name            string
	containingClass *ClassItem
	returnType      *TypeItem
	parameters      []*ParameterItem
	typeParams      TypeParameterList
	throwsTypes     []*TypeItem
	throwsClasses   []*ClassItem

	// defaultValue is the default of an annotation type member, in
	// source form; "" when absent.
	defaultValue string

	ctor      bool
	declOrder int
}

// NewMethod creates a method attached to nothing; callers register it via
// ClassItem.AddMethod or AddConstructor.
func NewMethod(cls *ClassItem, name string, returnType *TypeItem, parameters []*ParameterItem) *MethodItem {
	m := &MethodItem{
		name:            name,
		containingClass: cls,
		returnType:      returnType,
		parameters:      parameters,
	}
	m.itemBase = newItemBase(cls.codebase, cls.qualifiedName+"."+name+"("+parameterTypeList(parameters)+")")
	m.initModifiers()
	return m
}

func (m *MethodItem) Name() string                { return m.name }
func (m *MethodItem) ContainingClass() *ClassItem { return m.containingClass }
func (m *MethodItem) ReturnType() *TypeItem       { return m.returnType }
func (m *MethodItem) Parameters() []*ParameterItem {
	return m.parameters
}
func (m *MethodItem) TypeParameters() TypeParameterList { return m.typeParams }
func (m *MethodItem) IsConstructor() bool               { return m.ctor }
func (m *MethodItem) DefaultValue() string              { return m.defaultValue }

// DeclarationOrder is the position among the containing class's methods
// (or constructors) as declared in the input. Only textual emission with
// overloaded-method-order=source consults it; comparison never does.
func (m *MethodItem) DeclarationOrder() int { return m.declOrder }

func (m *MethodItem) ThrowsTypes() []*TypeItem { return m.throwsTypes }

// ThrowsClasses returns the resolved throws clause; unresolvable names
// appear as stubs. Populated during post-processing.
func (m *MethodItem) ThrowsClasses() []*ClassItem { return m.throwsClasses }

func (m *MethodItem) SetTypeParameters(params TypeParameterList) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.typeParams = params
	return nil
}

func (m *MethodItem) AddThrowsType(t *TypeItem) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.throwsTypes = append(m.throwsTypes, t)
	return nil
}

func (m *MethodItem) SetDefaultValue(value string) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.defaultValue = value
	return nil
}

// ParameterSignature is the comma-joined canonical parameter type list,
// the per-kind identity key for methods and constructors.
func (m *MethodItem) ParameterSignature() string {
	return parameterTypeList(m.parameters)
}

// Signature is name plus parameter signature: "name(a.b.C,int)".
func (m *MethodItem) Signature() string {
	return m.name + "(" + m.ParameterSignature() + ")"
}

func (m *MethodItem) KotlinLikeDescription() string {
	if m.ctor {
		return "constructor " + m.containingClass.qualifiedName + "(" + m.ParameterSignature() + ")"
	}
	return "fun " + m.name + "(" + m.ParameterSignature() + ")"
}

// matchesParameterStrings checks each supplied parameter string against
// the canonical or erased form of the parameter at the same position.
func (m *MethodItem) matchesParameterStrings(wanted []string) bool {
	if len(wanted) != len(m.parameters) {
		return false
	}
	for i, want := range wanted {
		t := m.parameters[i].Type()
		if t.String() != want && t.Erasure().String() != want {
			return false
		}
	}
	return true
}

func parameterTypeList(parameters []*ParameterItem) string {
	var sb strings.Builder
	for i, p := range parameters {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.Type().String())
	}
	return sb.String()
}
