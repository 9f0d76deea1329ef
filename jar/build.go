package jar

import (
	"fmt"
	"strings"

	"github.com/dhamidi/apisurf/classfile"
	"github.com/dhamidi/apisurf/model"
)

// AddClass folds one parsed class file into the codebase. Synthetic
// classes and anonymous or local nested classes are skipped entirely;
// synthetic and bridge members are loaded but marked, so emission and
// comparison can ignore them while inheritance walks still see them.
func AddClass(cb *model.Codebase, cf *classfile.Class, path string) error {
	if cf.IsModule() || cf.AccessFlags.IsSynthetic() {
		return nil
	}
	pkgName, fullName, ok := splitInternalName(cf.Name)
	if !ok {
		return nil
	}

	cls, err := cb.CreateClass(pkgName, fullName, classKind(cf))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := cls.SetPosition(model.Position{File: path}); err != nil {
		return err
	}

	flags := cf.AccessFlags
	if inner := cf.FindInnerClass(cf.Name); inner != nil {
		// Nested classes carry their real modifiers on the
		// InnerClasses entry; the class-level flags lose private,
		// protected and static.
		flags = inner.AccessFlags
	}
	if err := applyClassModifiers(cls, cf, flags); err != nil {
		return err
	}

	var classSig *classfile.ClassSig
	if cf.Signature != "" {
		if classSig, err = classfile.ParseClassSig(cf.Signature); err != nil {
			return fmt.Errorf("%s: class %s: %w", path, cf.Name, err)
		}
	}
	scope, err := applySupertypes(cls, cf, classSig)
	if err != nil {
		return fmt.Errorf("%s: class %s: %w", path, cf.Name, err)
	}

	for i := range cf.Fields {
		if err := addField(cls, &cf.Fields[i], scope); err != nil {
			return fmt.Errorf("%s: field %s.%s: %w", path, cf.Name, cf.Fields[i].Name, err)
		}
	}
	for i := range cf.Methods {
		if err := addMethod(cls, &cf.Methods[i], scope); err != nil {
			return fmt.Errorf("%s: method %s.%s: %w", path, cf.Name, cf.Methods[i].Name, err)
		}
	}
	return nil
}

// splitInternalName splits "a/b/Outer$Inner" into package "a.b" and
// class name "Outer.Inner". Anonymous and local classes (numeric or
// digit-led nested segments) report ok=false.
func splitInternalName(internal string) (pkgName, fullName string, ok bool) {
	base := internal
	if i := strings.LastIndexByte(internal, '/'); i >= 0 {
		pkgName = strings.ReplaceAll(internal[:i], "/", ".")
		base = internal[i+1:]
	}
	segments := strings.Split(base, "$")
	for _, seg := range segments {
		if seg == "" || seg[0] >= '0' && seg[0] <= '9' {
			return "", "", false
		}
	}
	return pkgName, strings.Join(segments, "."), true
}

func classKind(cf *classfile.Class) model.ClassKind {
	switch {
	case cf.IsAnnotation():
		return model.ClassKindAnnotation
	case cf.IsInterface():
		return model.ClassKindInterface
	case cf.IsEnum():
		return model.ClassKindEnum
	default:
		return model.ClassKindClass
	}
}

func visibilityOf(flags classfile.AccessFlags) model.Visibility {
	switch {
	case flags.IsPublic():
		return model.VisibilityPublic
	case flags.IsProtected():
		return model.VisibilityProtected
	case flags.IsPrivate():
		return model.VisibilityPrivate
	default:
		return model.VisibilityPackage
	}
}

func applyClassModifiers(cls *model.ClassItem, cf *classfile.Class, flags classfile.AccessFlags) error {
	mods := cls.Modifiers()
	if err := mods.SetVisibility(visibilityOf(flags)); err != nil {
		return err
	}
	if err := mods.SetStatic(flags.IsStatic()); err != nil {
		return err
	}
	if err := mods.SetFinal(flags.IsFinal() && !cf.IsEnum()); err != nil {
		return err
	}
	if err := mods.SetAbstract(flags.IsAbstract() && !cf.IsInterface() && !cf.IsAnnotation()); err != nil {
		return err
	}
	if err := mods.SetAnnotations(buildAnnotations(cf.Annotations)); err != nil {
		return err
	}
	cls.MarkOriginallyDeprecated(cf.Deprecated || hasDeprecatedAnnotation(cf.Annotations))
	return nil
}

// applySupertypes wires type parameters, the superclass and interfaces
// from the generic signature when present, falling back to the erased
// descriptor-level names.
func applySupertypes(cls *model.ClassItem, cf *classfile.Class, sig *classfile.ClassSig) (model.TypeVariableScope, error) {
	cb := cls.Codebase()

	var scope model.TypeVariableScope
	if sig != nil {
		params, err := buildTypeParameters(cb, sig.TypeParams)
		if err != nil {
			return nil, err
		}
		if err := cls.SetTypeParameters(params); err != nil {
			return nil, err
		}
		scope = params
	}

	if sig != nil {
		if sig.SuperClass != nil && sig.SuperClass.Name != "java/lang/Object" {
			super, err := cb.ParseType(sigString(sig.SuperClass), scope)
			if err != nil {
				return nil, err
			}
			if err := cls.SetSuperClassType(super); err != nil {
				return nil, err
			}
		}
		for _, iface := range sig.Interfaces {
			t, err := cb.ParseType(sigString(iface), scope)
			if err != nil {
				return nil, err
			}
			if err := cls.AddInterfaceType(t); err != nil {
				return nil, err
			}
		}
		return scope, nil
	}

	if cf.SuperClass != "" && cf.SuperClass != "java/lang/Object" {
		super, err := cb.ParseType(classfile.SourceName(cf.SuperClass), nil)
		if err != nil {
			return nil, err
		}
		if err := cls.SetSuperClassType(super); err != nil {
			return nil, err
		}
	}
	for _, iface := range cf.Interfaces {
		t, err := cb.ParseType(classfile.SourceName(iface), nil)
		if err != nil {
			return nil, err
		}
		if err := cls.AddInterfaceType(t); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func addField(cls *model.ClassItem, cf *classfile.Field, scope model.TypeVariableScope) error {
	if cf.AccessFlags.IsSynthetic() {
		return nil
	}
	cb := cls.Codebase()

	typeSource := cf.Descriptor
	if cf.Signature != "" {
		typeSource = cf.Signature
	}
	sig, err := classfile.ParseTypeSig(typeSource)
	if err != nil {
		return err
	}
	typ, err := cb.ParseType(sigString(sig), scope)
	if err != nil {
		return err
	}

	field := model.NewField(cls, cf.Name, typ)
	mods := field.Modifiers()
	if err := mods.SetVisibility(visibilityOf(cf.AccessFlags)); err != nil {
		return err
	}
	if err := mods.SetStatic(cf.AccessFlags.IsStatic()); err != nil {
		return err
	}
	if err := mods.SetFinal(cf.AccessFlags.IsFinal()); err != nil {
		return err
	}
	if err := mods.SetTransient(cf.AccessFlags.IsTransient()); err != nil {
		return err
	}
	if err := mods.SetVolatile(cf.AccessFlags.IsVolatile()); err != nil {
		return err
	}
	if err := mods.SetAnnotations(buildAnnotations(cf.Annotations)); err != nil {
		return err
	}
	field.MarkOriginallyDeprecated(cf.Deprecated || hasDeprecatedAnnotation(cf.Annotations))
	if cf.HasConstant {
		if err := field.SetConstantValue(cf.ConstantValue); err != nil {
			return err
		}
	}
	if cf.AccessFlags.IsEnum() {
		if err := field.SetEnumConstant(true); err != nil {
			return err
		}
	}
	return cls.AddField(field)
}

func addMethod(cls *model.ClassItem, cf *classfile.Method, scope model.TypeVariableScope) error {
	if cf.IsStaticInitializer() {
		return nil
	}
	cb := cls.Codebase()

	source := cf.Descriptor
	if cf.Signature != "" {
		source = cf.Signature
	}
	sig, err := classfile.ParseMethodSig(source)
	if err != nil {
		return err
	}

	methodParams, err := buildTypeParameters(cb, sig.TypeParams)
	if err != nil {
		return err
	}
	methodScope := model.CombineScopes(methodParams, scope)

	params := make([]*model.ParameterItem, 0, len(sig.Parameters))
	for i, paramSig := range sig.Parameters {
		t, err := cb.ParseType(sigString(paramSig), methodScope)
		if err != nil {
			return err
		}
		params = append(params, model.NewParameter(cb, i, parameterName(cf, i), t))
	}

	name := cf.Name
	returnType, err := cb.ParseType(sigString(sig.Return), methodScope)
	if err != nil {
		return err
	}
	if cf.IsConstructor() {
		name = cls.SimpleName()
		returnType = cls.ToType()
	}

	method := model.NewMethod(cls, name, returnType, params)
	if err := method.SetTypeParameters(methodParams); err != nil {
		return err
	}

	mods := method.Modifiers()
	if err := mods.SetVisibility(visibilityOf(cf.AccessFlags)); err != nil {
		return err
	}
	if err := mods.SetStatic(cf.AccessFlags.IsStatic()); err != nil {
		return err
	}
	if err := mods.SetFinal(cf.AccessFlags.IsFinal()); err != nil {
		return err
	}
	if err := mods.SetAbstract(cf.AccessFlags.IsAbstract() && !cls.IsInterface() && !cls.IsAnnotation()); err != nil {
		return err
	}
	if err := mods.SetSynchronized(cf.AccessFlags.IsSynchronized()); err != nil {
		return err
	}
	if err := mods.SetNative(cf.AccessFlags.IsNative()); err != nil {
		return err
	}
	if err := mods.SetVarargs(cf.AccessFlags.IsVarargs()); err != nil {
		return err
	}
	if err := mods.SetAnnotations(buildAnnotations(cf.Annotations)); err != nil {
		return err
	}
	method.MarkOriginallyDeprecated(cf.Deprecated || hasDeprecatedAnnotation(cf.Annotations))
	if err := method.SetSynthetic(cf.AccessFlags.IsSynthetic() || cf.AccessFlags.IsBridge()); err != nil {
		return err
	}

	// Throws come from the generic signature when it declares them
	// (generic exceptions), from the Exceptions attribute otherwise.
	if len(sig.Throws) > 0 {
		for _, thrown := range sig.Throws {
			t, err := cb.ParseType(sigString(thrown), methodScope)
			if err != nil {
				return err
			}
			if err := method.AddThrowsType(t); err != nil {
				return err
			}
		}
	} else {
		for _, exception := range cf.Exceptions {
			t, err := cb.ParseType(classfile.SourceName(exception), nil)
			if err != nil {
				return err
			}
			if err := method.AddThrowsType(t); err != nil {
				return err
			}
		}
	}

	if cf.AnnotationDefault != "" {
		if err := method.SetDefaultValue(cf.AnnotationDefault); err != nil {
			return err
		}
	}

	if cf.IsConstructor() {
		return cls.AddConstructor(method)
	}
	return cls.AddMethod(method)
}

func parameterName(cf *classfile.Method, index int) string {
	if index < len(cf.ParameterNames) && cf.ParameterNames[index] != "" {
		return cf.ParameterNames[index]
	}
	return fmt.Sprintf("arg%d", index)
}

func buildTypeParameters(cb *model.Codebase, params []classfile.TypeParamSig) (model.TypeParameterList, error) {
	if len(params) == 0 {
		return nil, nil
	}
	// Bounds may refer to the parameters being declared, so the scope
	// exists before any bound is parsed.
	list := make(model.TypeParameterList, 0, len(params))
	names := make(model.TypeParameterList, 0, len(params))
	for _, p := range params {
		names = append(names, model.NewTypeParameter(p.Name))
	}
	for _, p := range params {
		var bounds []*model.TypeItem
		boundSigs := p.InterfaceBounds
		if p.ClassBound != nil && p.ClassBound.Name != "java/lang/Object" {
			boundSigs = append([]*classfile.TypeSig{p.ClassBound}, boundSigs...)
		}
		for _, boundSig := range boundSigs {
			t, err := cb.ParseType(sigString(boundSig), names)
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, t)
		}
		list = append(list, model.NewTypeParameter(p.Name, bounds...))
	}
	return list, nil
}

func buildAnnotations(annotations []classfile.Annotation) []*model.AnnotationItem {
	if len(annotations) == 0 {
		return nil
	}
	items := make([]*model.AnnotationItem, 0, len(annotations))
	for _, a := range annotations {
		if a.Type == "java/lang/Deprecated" {
			continue
		}
		attrs := make([]model.AnnotationAttribute, 0, len(a.Elements))
		for _, element := range a.Elements {
			attrs = append(attrs, model.AnnotationAttribute{Name: element.Name, Value: element.Value})
		}
		items = append(items, model.NewAnnotation(classfile.SourceName(a.Type), attrs...))
	}
	return items
}

func hasDeprecatedAnnotation(annotations []classfile.Annotation) bool {
	for _, a := range annotations {
		if a.Type == "java/lang/Deprecated" {
			return true
		}
	}
	return false
}

// sigString renders a parsed signature type as the canonical source form
// the model's type parser accepts.
func sigString(sig *classfile.TypeSig) string {
	var sb strings.Builder
	writeSigString(&sb, sig)
	return sb.String()
}

func writeSigString(sb *strings.Builder, sig *classfile.TypeSig) {
	switch sig.Kind {
	case classfile.SigPrimitive, classfile.SigVariable:
		sb.WriteString(sig.Name)
	case classfile.SigArray:
		writeSigString(sb, sig.Component)
		sb.WriteString("[]")
	case classfile.SigWildcard:
		sb.WriteByte('?')
		if sig.Bound != nil {
			if sig.BoundKind == '-' {
				sb.WriteString(" super ")
			} else {
				sb.WriteString(" extends ")
			}
			writeSigString(sb, sig.Bound)
		}
	case classfile.SigClass:
		if sig.Outer != nil {
			writeSigString(sb, sig.Outer)
			rest := strings.TrimPrefix(sig.Name, sig.Outer.Name)
			sb.WriteString(strings.ReplaceAll(rest, "$", "."))
		} else {
			sb.WriteString(classfile.SourceName(sig.Name))
		}
		if len(sig.Args) > 0 {
			sb.WriteByte('<')
			for i, arg := range sig.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeSigString(sb, arg)
			}
			sb.WriteByte('>')
		}
	}
}
