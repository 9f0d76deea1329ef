package model

// FieldItem is a field declaration, including enum constants.
type FieldItem struct {
	itemBase

	name            string
	containingClass *ClassItem
	typ             *TypeItem

	// constantValue is the compile-time constant in Java literal form
	// ("\"text\"", "3", "9223372036854775807L"), or "" when the field
	// has none.
	constantValue string

	enumConstant bool
}

func NewField(cls *ClassItem, name string, typ *TypeItem) *FieldItem {
	f := &FieldItem{name: name, containingClass: cls, typ: typ}
	f.itemBase = newItemBase(cls.codebase, cls.qualifiedName+"."+name)
	f.initModifiers()
	return f
}

func (f *FieldItem) Name() string                { return f.name }
func (f *FieldItem) ContainingClass() *ClassItem { return f.containingClass }
func (f *FieldItem) Type() *TypeItem             { return f.typ }
func (f *FieldItem) IsEnumConstant() bool        { return f.enumConstant }

func (f *FieldItem) ConstantValue() string    { return f.constantValue }
func (f *FieldItem) HasConstantValue() bool   { return f.constantValue != "" }

func (f *FieldItem) SetConstantValue(literal string) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.constantValue = literal
	return nil
}

func (f *FieldItem) SetEnumConstant(b bool) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.enumConstant = b
	return nil
}

func (f *FieldItem) KotlinLikeDescription() string {
	return "val " + f.containingClass.qualifiedName + "." + f.name + ": " + f.typ.String()
}
