// Package javasrc builds source-backed codebases from .java files. It
// reads declarations only: package and import directives, type headers
// and member signatures, with doc comments attached. Method bodies are
// never interpreted.
package javasrc

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhamidi/apisurf/model"
)

// Read loads Java source files into a new frozen codebase. Each path is
// a .java file or a directory walked recursively for .java files.
// package-info.java files contribute nothing to the surface and are
// skipped.
func Read(paths ...string) (*model.Codebase, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no source paths given")
	}
	sourceFiles, err := collectSources(paths)
	if err != nil {
		return nil, err
	}
	if len(sourceFiles) == 0 {
		return nil, fmt.Errorf("no .java files under %s", strings.Join(paths, ", "))
	}

	files := make([]*fileDecl, 0, len(sourceFiles))
	for _, path := range sourceFiles {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		file, err := parseSource(path, src)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return Build(strings.Join(paths, ":"), files)
}

// ReadSource parses a single in-memory compilation unit into a frozen
// codebase.
func ReadSource(path string, src []byte) (*model.Codebase, error) {
	file, err := parseSource(path, src)
	if err != nil {
		return nil, err
	}
	return Build(path, []*fileDecl{file})
}

// Build assembles parsed compilation units into one frozen codebase.
// All files are registered before any is built, so cross-file
// references resolve no matter the order.
func Build(description string, parsed []*fileDecl) (*model.Codebase, error) {
	cb := model.NewCodebase(description, model.OriginSource)
	typeNames := make(map[string]string)
	for _, file := range parsed {
		registerTypeNames(file.pkg, "", file.types, typeNames)
	}
	for _, file := range parsed {
		b := &builder{
			cb:       cb,
			path:     file.path,
			pkg:      file.pkg,
			resolver: newResolver(file.pkg, file.imports, typeNames),
		}
		for _, decl := range file.types {
			if err := b.buildClass("", decl, model.VisibilityPackage); err != nil {
				return nil, fmt.Errorf("%s: %w", file.path, err)
			}
		}
	}
	if err := cb.PostProcess(); err != nil {
		return nil, err
	}
	cb.Freeze()
	return cb, nil
}

func collectSources(paths []string) ([]string, error) {
	var sourceFiles []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			sourceFiles = append(sourceFiles, path)
			continue
		}
		err = filepath.WalkDir(path, func(entry string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(entry, ".java") {
				return nil
			}
			if filepath.Base(entry) == "package-info.java" {
				return nil
			}
			sourceFiles = append(sourceFiles, entry)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(sourceFiles)
	return sourceFiles, nil
}

// registerTypeNames indexes every declared type under its simple name,
// its dotted nested name and its qualified name, so the resolver can
// qualify references in any of those spellings.
func registerTypeNames(pkg, prefix string, decls []*typeDecl, names map[string]string) {
	for _, decl := range decls {
		fullName := decl.name
		if prefix != "" {
			fullName = prefix + "." + decl.name
		}
		qualified := fullName
		if pkg != "" {
			qualified = pkg + "." + fullName
		}
		names[decl.name] = qualified
		names[fullName] = qualified
		names[qualified] = qualified
		registerTypeNames(pkg, fullName, decl.nested, names)
	}
}

type builder struct {
	cb       *model.Codebase
	path     string
	pkg      string
	resolver *resolver
}

func (b *builder) buildClass(prefix string, decl *typeDecl, defaultVis model.Visibility) error {
	fullName := decl.name
	if prefix != "" {
		fullName = prefix + "." + decl.name
	}
	cls, err := b.cb.CreateClass(b.pkg, fullName, decl.kind)
	if err != nil {
		return err
	}
	if err := cls.SetPosition(model.Position{File: b.path, Line: decl.line}); err != nil {
		return err
	}

	mods := cls.Modifiers()
	if err := mods.SetVisibility(visibilityOf(decl.mods, defaultVis)); err != nil {
		return err
	}
	if err := mods.SetStatic(decl.mods.static); err != nil {
		return err
	}
	if err := mods.SetFinal(decl.mods.final || decl.isRecord); err != nil {
		return err
	}
	interfaceLike := decl.kind == model.ClassKindInterface || decl.kind == model.ClassKindAnnotation
	if err := mods.SetAbstract(decl.mods.abstract && !interfaceLike); err != nil {
		return err
	}
	if err := mods.SetSealed(decl.mods.sealed); err != nil {
		return err
	}
	if err := mods.SetAnnotations(b.buildAnnotations(decl.annotations)); err != nil {
		return err
	}
	if err := b.applyDoc(cls, decl.doc, decl.annotations); err != nil {
		return err
	}

	scope, scopeNames, err := b.buildTypeParameters(decl.typeParams, nil, nil)
	if err != nil {
		return err
	}
	if scope != nil {
		if err := cls.SetTypeParameters(scope); err != nil {
			return err
		}
	}
	if err := b.applySupertypes(cls, decl, scope, scopeNames); err != nil {
		return err
	}

	for _, constant := range decl.enumConstants {
		if err := b.addEnumConstant(cls, constant); err != nil {
			return fmt.Errorf("enum constant %s.%s: %w", fullName, constant.name, err)
		}
	}
	for _, field := range decl.fields {
		if err := b.addField(cls, decl, field, scope, scopeNames); err != nil {
			return fmt.Errorf("field %s.%s: %w", fullName, field.name, err)
		}
	}
	for _, method := range decl.methods {
		if err := b.addMethod(cls, decl, method, scope, scopeNames); err != nil {
			return fmt.Errorf("method %s.%s: %w", fullName, method.name, err)
		}
	}
	if decl.isRecord {
		if err := b.addRecordMembers(cls, decl, scope, scopeNames); err != nil {
			return err
		}
	}

	memberVis := model.VisibilityPackage
	if interfaceLike {
		memberVis = model.VisibilityPublic
	}
	for _, nested := range decl.nested {
		if err := b.buildClass(fullName, nested, memberVis); err != nil {
			return err
		}
	}
	return nil
}

func visibilityOf(mods modifierSet, defaultVis model.Visibility) model.Visibility {
	if mods.hasVisibility {
		return mods.visibility
	}
	return defaultVis
}

func (b *builder) applySupertypes(cls *model.ClassItem, decl *typeDecl, scope model.TypeParameterList, scopeNames map[string]bool) error {
	interfaces := decl.implements
	if decl.kind == model.ClassKindInterface {
		interfaces = decl.extends
	} else if len(decl.extends) > 0 {
		super := b.resolver.qualifyType(decl.extends[0], scopeNames)
		if super != "java.lang.Object" {
			t, err := b.cb.ParseType(super, scope)
			if err != nil {
				return err
			}
			if err := cls.SetSuperClassType(t); err != nil {
				return err
			}
		}
	}
	for _, iface := range interfaces {
		t, err := b.cb.ParseType(b.resolver.qualifyType(iface, scopeNames), scope)
		if err != nil {
			return err
		}
		if err := cls.AddInterfaceType(t); err != nil {
			return err
		}
	}
	return nil
}

// buildTypeParameters declares the parameter names before parsing any
// bound, so self-referential bounds resolve. outer supplies enclosing
// scopes for method-level parameters.
func (b *builder) buildTypeParameters(params []typeParamDecl, outer model.TypeVariableScope, outerNames map[string]bool) (model.TypeParameterList, map[string]bool, error) {
	if len(params) == 0 {
		return nil, outerNames, nil
	}
	names := make(map[string]bool, len(params))
	for name := range outerNames {
		names[name] = true
	}
	nameScope := make(model.TypeParameterList, 0, len(params))
	for _, p := range params {
		names[p.name] = true
		nameScope = append(nameScope, model.NewTypeParameter(p.name))
	}
	boundScope := model.CombineScopes(nameScope, outer)

	list := make(model.TypeParameterList, 0, len(params))
	for _, p := range params {
		var bounds []*model.TypeItem
		for _, bound := range p.bounds {
			qualified := b.resolver.qualifyType(bound, names)
			if qualified == "java.lang.Object" {
				continue
			}
			t, err := b.cb.ParseType(qualified, boundScope)
			if err != nil {
				return nil, nil, err
			}
			bounds = append(bounds, t)
		}
		list = append(list, model.NewTypeParameter(p.name, bounds...))
	}
	return list, names, nil
}

func (b *builder) addEnumConstant(cls *model.ClassItem, constant enumConstantDecl) error {
	field := model.NewField(cls, constant.name, cls.ToType())
	mods := field.Modifiers()
	if err := mods.SetVisibility(model.VisibilityPublic); err != nil {
		return err
	}
	if err := mods.SetStatic(true); err != nil {
		return err
	}
	if err := mods.SetFinal(true); err != nil {
		return err
	}
	if err := mods.SetAnnotations(b.buildAnnotations(constant.annotations)); err != nil {
		return err
	}
	if err := field.SetEnumConstant(true); err != nil {
		return err
	}
	if err := field.SetPosition(model.Position{File: b.path, Line: constant.line}); err != nil {
		return err
	}
	if err := b.applyDoc(field, constant.doc, constant.annotations); err != nil {
		return err
	}
	return cls.AddField(field)
}

func (b *builder) addField(cls *model.ClassItem, decl *typeDecl, fd *fieldDecl, scope model.TypeParameterList, scopeNames map[string]bool) error {
	typ, err := b.cb.ParseType(b.resolver.qualifyType(fd.typ, scopeNames), scope)
	if err != nil {
		return err
	}
	field := model.NewField(cls, fd.name, typ)
	interfaceLike := decl.kind == model.ClassKindInterface || decl.kind == model.ClassKindAnnotation

	mods := field.Modifiers()
	vis := visibilityOf(fd.mods, model.VisibilityPackage)
	static := fd.mods.static
	final := fd.mods.final
	if interfaceLike {
		// Interface fields are implicitly public constants.
		vis = visibilityOf(fd.mods, model.VisibilityPublic)
		static = true
		final = true
	}
	if err := mods.SetVisibility(vis); err != nil {
		return err
	}
	if err := mods.SetStatic(static); err != nil {
		return err
	}
	if err := mods.SetFinal(final); err != nil {
		return err
	}
	if err := mods.SetTransient(fd.mods.transient); err != nil {
		return err
	}
	if err := mods.SetVolatile(fd.mods.volatile); err != nil {
		return err
	}
	if err := mods.SetAnnotations(b.buildAnnotations(fd.annotations)); err != nil {
		return err
	}
	if fd.hasConstant && static && final {
		if err := field.SetConstantValue(fd.constant); err != nil {
			return err
		}
	}
	if err := field.SetPosition(model.Position{File: b.path, Line: fd.line}); err != nil {
		return err
	}
	if err := b.applyDoc(field, fd.doc, fd.annotations); err != nil {
		return err
	}
	return cls.AddField(field)
}

func (b *builder) addMethod(cls *model.ClassItem, decl *typeDecl, md *methodDecl, classScope model.TypeParameterList, classNames map[string]bool) error {
	methodParams, scopeNames, err := b.buildTypeParameters(md.typeParams, classScope, classNames)
	if err != nil {
		return err
	}
	scope := model.CombineScopes(methodParams, classScope)

	params := make([]*model.ParameterItem, 0, len(md.params))
	varargs := false
	for i, pd := range md.params {
		t, err := b.cb.ParseType(b.resolver.qualifyType(pd.typ, scopeNames), scope)
		if err != nil {
			return err
		}
		params = append(params, model.NewParameter(b.cb, i, pd.name, t))
		varargs = varargs || pd.varargs
	}

	name := md.name
	var returnType *model.TypeItem
	if md.ctor {
		name = cls.SimpleName()
		returnType = cls.ToType()
	} else {
		returnType, err = b.cb.ParseType(b.resolver.qualifyType(md.returnType, scopeNames), scope)
		if err != nil {
			return err
		}
	}

	method := model.NewMethod(cls, name, returnType, params)
	if err := method.SetTypeParameters(methodParams); err != nil {
		return err
	}

	interfaceLike := decl.kind == model.ClassKindInterface || decl.kind == model.ClassKindAnnotation
	vis := visibilityOf(md.mods, model.VisibilityPackage)
	if interfaceLike {
		vis = visibilityOf(md.mods, model.VisibilityPublic)
	}
	mods := method.Modifiers()
	if err := mods.SetVisibility(vis); err != nil {
		return err
	}
	if err := mods.SetStatic(md.mods.static); err != nil {
		return err
	}
	if err := mods.SetFinal(md.mods.final); err != nil {
		return err
	}
	if err := mods.SetAbstract(md.mods.abstract && !interfaceLike); err != nil {
		return err
	}
	if err := mods.SetDefault(md.mods.deflt); err != nil {
		return err
	}
	if err := mods.SetSynchronized(md.mods.synchronized); err != nil {
		return err
	}
	if err := mods.SetNative(md.mods.native); err != nil {
		return err
	}
	if err := mods.SetStrictfp(md.mods.strictfp); err != nil {
		return err
	}
	if err := mods.SetVarargs(varargs); err != nil {
		return err
	}
	if err := mods.SetAnnotations(b.buildAnnotations(md.annotations)); err != nil {
		return err
	}

	for _, thrown := range md.throws {
		t, err := b.cb.ParseType(b.resolver.qualifyType(thrown, scopeNames), scope)
		if err != nil {
			return err
		}
		if err := method.AddThrowsType(t); err != nil {
			return err
		}
	}
	if md.defaultValue != "" {
		if err := method.SetDefaultValue(md.defaultValue); err != nil {
			return err
		}
	}
	if err := method.SetPosition(model.Position{File: b.path, Line: md.line}); err != nil {
		return err
	}
	if err := b.applyDoc(method, md.doc, md.annotations); err != nil {
		return err
	}

	if md.ctor {
		return cls.AddConstructor(method)
	}
	return cls.AddMethod(method)
}

// addRecordMembers supplies the canonical constructor and component
// accessors a record declares implicitly. Explicit members of the same
// shape take precedence.
func (b *builder) addRecordMembers(cls *model.ClassItem, decl *typeDecl, scope model.TypeParameterList, scopeNames map[string]bool) error {
	if len(cls.Constructors()) == 0 {
		ctor := &methodDecl{
			name:   decl.name,
			ctor:   true,
			line:   decl.line,
			mods:   modifierSet{visibility: model.VisibilityPublic, hasVisibility: true},
			params: decl.recordComponents,
		}
		if err := b.addMethod(cls, decl, ctor, scope, scopeNames); err != nil {
			return err
		}
	}
	for _, component := range decl.recordComponents {
		if hasZeroArgMethod(decl, component.name) {
			continue
		}
		accessor := &methodDecl{
			name:       component.name,
			line:       decl.line,
			mods:       modifierSet{visibility: model.VisibilityPublic, hasVisibility: true},
			returnType: component.typ,
		}
		if err := b.addMethod(cls, decl, accessor, scope, scopeNames); err != nil {
			return err
		}
	}
	return nil
}

func hasZeroArgMethod(decl *typeDecl, name string) bool {
	for _, md := range decl.methods {
		if !md.ctor && md.name == name && len(md.params) == 0 {
			return true
		}
	}
	return false
}

func (b *builder) buildAnnotations(decls []annotationDecl) []*model.AnnotationItem {
	var items []*model.AnnotationItem
	for _, ann := range decls {
		qualified := b.resolver.resolveWord(ann.name, nil)
		if qualified == "java.lang.Deprecated" {
			continue
		}
		attrs := make([]model.AnnotationAttribute, 0, len(ann.attrs))
		for _, attr := range ann.attrs {
			attrs = append(attrs, model.AnnotationAttribute{Name: attr.name, Value: attr.value})
		}
		items = append(items, model.NewAnnotation(qualified, attrs...))
	}
	return items
}

type docTarget interface {
	SetDocumentation(doc string) error
	MarkOriginallyDeprecated(deprecated bool)
	MarkOriginallyHidden(hidden bool)
}

// applyDoc attaches the doc comment and folds its marker tags into the
// item state: @deprecated matches the annotation's effect, @hide takes
// the item off the surface.
func (b *builder) applyDoc(item docTarget, doc string, annotations []annotationDecl) error {
	if doc != "" {
		if err := item.SetDocumentation(doc); err != nil {
			return err
		}
	}
	deprecated := docHasTag(doc, "@deprecated")
	for _, ann := range annotations {
		if b.resolver.resolveWord(ann.name, nil) == "java.lang.Deprecated" {
			deprecated = true
		}
	}
	item.MarkOriginallyDeprecated(deprecated)
	if docHasTag(doc, "@hide") {
		item.MarkOriginallyHidden(true)
	}
	return nil
}

func docHasTag(doc, tag string) bool {
	for offset := 0; ; {
		i := strings.Index(doc[offset:], tag)
		if i < 0 {
			return false
		}
		end := offset + i + len(tag)
		if end >= len(doc) || !isIdentPart(doc[end]) {
			return true
		}
		offset = end
	}
}
