package model

import "fmt"

// PropertyItem is a Kotlin property as seen through the API surface. Each
// of the linked accessors may be absent depending on declaration style: an
// abstract interface property has a getter and no backing field, a
// constant has a field and no accessors, a constructor property links its
// parameter.
type PropertyItem struct {
	itemBase

	name            string
	containingClass *ClassItem
	typ             *TypeItem

	getter       *MethodItem
	setter       *MethodItem
	backingField *FieldItem
	ctorParam    *ParameterItem
}

// NewProperty creates a property. At least one of getter or backing field
// must be linked for the property to be observable (checked by Validate);
// no other accessor combination is validated.
func NewProperty(cls *ClassItem, name string, typ *TypeItem) *PropertyItem {
	p := &PropertyItem{name: name, containingClass: cls, typ: typ}
	p.itemBase = newItemBase(cls.codebase, cls.qualifiedName+"."+name)
	p.initModifiers()
	return p
}

func (p *PropertyItem) Name() string                { return p.name }
func (p *PropertyItem) ContainingClass() *ClassItem { return p.containingClass }
func (p *PropertyItem) Type() *TypeItem             { return p.typ }

func (p *PropertyItem) Getter() *MethodItem           { return p.getter }
func (p *PropertyItem) Setter() *MethodItem           { return p.setter }
func (p *PropertyItem) BackingField() *FieldItem      { return p.backingField }
func (p *PropertyItem) ConstructorParameter() *ParameterItem {
	return p.ctorParam
}

func (p *PropertyItem) SetGetter(m *MethodItem) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	p.getter = m
	return nil
}

func (p *PropertyItem) SetSetter(m *MethodItem) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	p.setter = m
	return nil
}

func (p *PropertyItem) SetBackingField(f *FieldItem) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	p.backingField = f
	return nil
}

func (p *PropertyItem) SetConstructorParameter(param *ParameterItem) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	p.ctorParam = param
	return nil
}

// Validate checks the one observability rule: a property must be readable
// through a getter or a backing field.
func (p *PropertyItem) Validate() error {
	if p.getter == nil && p.backingField == nil {
		return fmt.Errorf("property %s has neither getter nor backing field", p.name)
	}
	return nil
}

func (p *PropertyItem) KotlinLikeDescription() string {
	kw := "val"
	if p.setter != nil {
		kw = "var"
	}
	return kw + " " + p.containingClass.qualifiedName + "." + p.name + ": " + p.typ.String()
}
