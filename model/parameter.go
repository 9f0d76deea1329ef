package model

import "strconv"

// ParameterItem is one method or constructor parameter.
type ParameterItem struct {
	itemBase

	name  string
	typ   *TypeItem
	index int

	// defaultValue is the source form of a default argument expression;
	// hasDefault distinguishes "no default" from a default whose
	// expression was elided by the input (concise-default-values).
	defaultValue string
	hasDefault   bool
}

// NewParameter creates a parameter. The name may be "" for backings that
// do not record parameter names (bytecode without MethodParameters).
func NewParameter(cb *Codebase, index int, name string, typ *TypeItem) *ParameterItem {
	p := &ParameterItem{name: name, typ: typ, index: index}
	p.itemBase = newItemBase(cb, "parameter "+strconv.Itoa(index)+" ("+typ.String()+")")
	p.initModifiers()
	return p
}

// Name returns the declared parameter name, or a positional placeholder
// ("arg0") when the backing recorded none.
func (p *ParameterItem) Name() string {
	if p.name == "" {
		return "arg" + strconv.Itoa(p.index)
	}
	return p.name
}

func (p *ParameterItem) HasDeclaredName() bool { return p.name != "" }
func (p *ParameterItem) Type() *TypeItem       { return p.typ }
func (p *ParameterItem) Index() int            { return p.index }
func (p *ParameterItem) IsVarargs() bool       { return p.typ.Kind == TypeArray && p.typ.Varargs }

func (p *ParameterItem) HasDefaultValue() bool { return p.hasDefault }

// DefaultValue returns the default argument expression in source form, or
// "" when the input elided the expression.
func (p *ParameterItem) DefaultValue() string { return p.defaultValue }

// SetDefaultValue marks the parameter as defaulted. expr may be "" when
// only the presence of a default is known.
func (p *ParameterItem) SetDefaultValue(expr string) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	p.defaultValue = expr
	p.hasDefault = true
	return nil
}
