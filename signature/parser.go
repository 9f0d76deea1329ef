package signature

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dhamidi/apisurf/model"
)

// FormatError is a syntax or format violation in a signature file,
// located by path and one-based line number.
type FormatError struct {
	Path    string
	Line    int
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
}

// Parse reads one signature file into a fresh post-processed, frozen
// codebase and reports the format declared in its header.
func Parse(path string, r io.Reader) (*model.Codebase, FileFormat, error) {
	cb := model.NewCodebase(path, model.OriginSignature)
	p := &parser{cb: cb, path: path}
	format, err := p.parse(r)
	if err != nil {
		return nil, FileFormat{}, err
	}
	if err := cb.PostProcess(); err != nil {
		return nil, FileFormat{}, err
	}
	cb.Freeze()
	return cb, format, nil
}

// ParseFiles reads and merges several signature files into one codebase.
// Files are applied in order; a class or member declared again in a later
// file replaces the earlier declaration.
func ParseFiles(paths ...string) (*model.Codebase, error) {
	cb := model.NewCodebase(strings.Join(paths, ","), model.OriginSignature)
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		p := &parser{cb: cb, path: path}
		_, err = p.parse(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	if err := cb.PostProcess(); err != nil {
		return nil, err
	}
	cb.Freeze()
	return cb, nil
}

// ParseInto applies one signature file on top of an existing unfrozen
// codebase, with the same last-wins semantics as ParseFiles. The caller
// runs PostProcess and Freeze after the final file.
func ParseInto(cb *model.Codebase, path string, r io.Reader) (FileFormat, error) {
	p := &parser{cb: cb, path: path}
	return p.parse(r)
}

const headerPrefix = "// Signature format: "

type parser struct {
	cb     *model.Codebase
	path   string
	format FileFormat

	lines  *bufio.Scanner
	lineno int
	text   string

	pending    string
	hasPending bool
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &FormatError{Path: p.path, Line: p.lineno, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) next() bool {
	if p.hasPending {
		p.hasPending = false
		p.text = p.pending
		return true
	}
	if !p.lines.Scan() {
		return false
	}
	p.lineno++
	p.text = p.lines.Text()
	return true
}

// pushBack makes the current line the next one returned by next().
func (p *parser) pushBack() {
	p.pending = p.text
	p.hasPending = true
}

func (p *parser) parse(r io.Reader) (FileFormat, error) {
	p.lines = bufio.NewScanner(r)
	p.lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if err := p.parseHeader(); err != nil {
		return FileFormat{}, err
	}

	var pkgName string
	inPackage := false
	var cls *model.ClassItem

	for p.next() {
		line := strings.TrimSpace(p.text)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		switch {
		case cls != nil && line == "}":
			cls = nil
		case inPackage && line == "}":
			inPackage = false
			pkgName = ""
		case line == "}":
			return FileFormat{}, p.errf("unbalanced '}'")
		case strings.HasPrefix(line, "package "):
			if inPackage {
				return FileFormat{}, p.errf("package block inside package %s", pkgName)
			}
			name, ok := strings.CutSuffix(strings.TrimPrefix(line, "package "), "{")
			if !ok {
				return FileFormat{}, p.errf("expected '{' at end of package declaration")
			}
			pkgName = strings.TrimSpace(name)
			if pkgName == "" {
				return FileFormat{}, p.errf("package declaration has no name")
			}
			p.cb.FindOrCreatePackage(pkgName)
			inPackage = true
		case cls == nil:
			if !inPackage {
				return FileFormat{}, p.errf("class declaration outside any package block, found %q", line)
			}
			parsed, err := p.parseClassHeader(pkgName, line)
			if err != nil {
				return FileFormat{}, err
			}
			cls = parsed
		default:
			if err := p.parseMember(cls, line); err != nil {
				return FileFormat{}, err
			}
		}
	}
	if err := p.lines.Err(); err != nil {
		return FileFormat{}, err
	}
	if cls != nil || inPackage {
		return FileFormat{}, p.errf("unexpected end of file inside a block")
	}
	return p.format, nil
}

// parseHeader consumes the version line and any property continuation
// lines ("// - name=value"). Reading always accepts the migrating
// property; write-side policy lives in ParseSpecifier.
func (p *parser) parseHeader() error {
	if !p.next() {
		return p.errf("empty signature file")
	}
	if !strings.HasPrefix(p.text, headerPrefix) {
		return p.errf("signature file must start with %q, found %q", headerPrefix+"<version>", p.text)
	}
	version, err := ParseVersion(strings.TrimSpace(strings.TrimPrefix(p.text, headerPrefix)))
	if err != nil {
		return p.errf("%v", err)
	}
	p.format = Defaults(version)

	for p.next() {
		rest, ok := strings.CutPrefix(p.text, "// - ")
		if !ok {
			p.pushBack()
			return nil
		}
		name, value, found := strings.Cut(rest, "=")
		if !found {
			return p.errf("expected <name>=<value> in format property line, found %q", rest)
		}
		structural, err := p.format.applyProperty(strings.TrimSpace(name), strings.TrimSpace(value))
		if err != nil {
			return p.errf("%v", err)
		}
		if structural && p.format.Version < Version2 {
			return p.errf("format %s does not support property %s", p.format.Version, strings.TrimSpace(name))
		}
	}
	return nil
}

func (p *parser) parseClassHeader(pkgName, line string) (*model.ClassItem, error) {
	body, ok := strings.CutSuffix(line, "{")
	if !ok {
		return nil, p.errf("expected '{' at end of class declaration, found %q", line)
	}
	tokens := tokenize(strings.TrimSpace(body))
	i := 0
	mods, err := p.collectModifiers(tokens, &i)
	if err != nil {
		return nil, err
	}

	if i >= len(tokens) {
		return nil, p.errf("class declaration has no kind keyword")
	}
	var kind model.ClassKind
	switch tokens[i] {
	case "class":
		kind = model.ClassKindClass
	case "interface":
		kind = model.ClassKindInterface
	case "enum":
		kind = model.ClassKindEnum
	case "@interface", "annotation":
		kind = model.ClassKindAnnotation
	default:
		return nil, p.errf("expected class, interface, enum or @interface, found %q", tokens[i])
	}
	i++

	if i >= len(tokens) {
		return nil, p.errf("class declaration has no name")
	}
	nameToken := tokens[i]
	i++
	fullName := nameToken
	typeParamsSrc := ""
	if lt := strings.IndexByte(nameToken, '<'); lt >= 0 {
		fullName = nameToken[:lt]
		if !strings.HasSuffix(nameToken, ">") {
			return nil, p.errf("malformed type parameter list in %q", nameToken)
		}
		typeParamsSrc = nameToken[lt+1 : len(nameToken)-1]
	}

	cls, err := p.cb.CreateClass(pkgName, fullName, kind)
	if err != nil {
		var dup *model.DuplicateClassError
		if !errors.As(err, &dup) {
			return nil, err
		}
		// Same class declared again in a merged file: reuse the item and
		// let the new declaration win.
		cls = p.cb.FindClass(dup.QualifiedName)
	}

	typeParams, err := p.parseTypeParameterList(typeParamsSrc)
	if err != nil {
		return nil, err
	}
	if err := cls.SetTypeParameters(typeParams); err != nil {
		return nil, err
	}
	scope := model.TypeVariableScope(typeParams)

	var extendsList, implementsList []string
	for i < len(tokens) {
		switch tokens[i] {
		case "extends":
			i++
			extendsList, i = p.collectTypeList(tokens, i)
		case "implements":
			i++
			implementsList, i = p.collectTypeList(tokens, i)
		default:
			return nil, p.errf("unexpected token %q in class declaration", tokens[i])
		}
	}

	// Interfaces and annotation types list their super-interfaces after
	// extends; classes and enums have a single superclass there.
	if kind == model.ClassKindInterface || kind == model.ClassKindAnnotation {
		implementsList = append(extendsList, implementsList...)
		extendsList = nil
	}
	if len(extendsList) > 1 {
		return nil, p.errf("class %s extends more than one class", fullName)
	}
	if len(extendsList) == 1 {
		super, err := p.parseTypeIn(extendsList[0], scope)
		if err != nil {
			return nil, err
		}
		if err := cls.SetSuperClassType(super); err != nil {
			return nil, err
		}
	} else {
		cls.SetSuperClassType(nil)
	}
	ifaceTypes := make([]*model.TypeItem, 0, len(implementsList))
	for _, src := range implementsList {
		t, err := p.parseTypeIn(src, scope)
		if err != nil {
			return nil, err
		}
		ifaceTypes = append(ifaceTypes, t)
	}
	if err := cls.SetInterfaceTypes(ifaceTypes); err != nil {
		return nil, err
	}

	if err := p.applyModifiers(cls, mods); err != nil {
		return nil, err
	}
	cls.SetPosition(model.Position{File: p.path, Line: p.lineno})
	return cls, nil
}

// collectTypeList gathers tokens until the next structural keyword and
// splits them on top-level commas.
func (p *parser) collectTypeList(tokens []string, i int) ([]string, int) {
	var parts []string
	for i < len(tokens) && tokens[i] != "extends" && tokens[i] != "implements" {
		parts = append(parts, tokens[i])
		i++
	}
	var list []string
	for _, entry := range splitTop(strings.Join(parts, " "), ',') {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			list = append(list, entry)
		}
	}
	return list, i
}

func (p *parser) parseMember(cls *model.ClassItem, line string) error {
	semi := lastIndexOutsideQuotes(line, ';')
	if semi < 0 {
		return p.errf("expected ';' at end of member declaration, found %q", line)
	}
	body := strings.TrimSpace(line[:semi])

	keyword, rest, _ := strings.Cut(body, " ")
	switch keyword {
	case "ctor":
		return p.parseConstructor(cls, rest)
	case "method":
		return p.parseMethod(cls, rest)
	case "field":
		return p.parseField(cls, rest, false)
	case "enum_constant":
		return p.parseField(cls, rest, true)
	case "property":
		return p.parseProperty(cls, rest)
	}
	return p.errf("expected ctor, method, field, enum_constant or property, found %q", keyword)
}

func (p *parser) parseConstructor(cls *model.ClassItem, rest string) error {
	tokens := tokenize(rest)
	i := 0
	mods, err := p.collectModifiers(tokens, &i)
	if err != nil {
		return err
	}
	if i >= len(tokens) {
		return p.errf("constructor declaration has no name")
	}
	nameToken := tokens[i]
	i++
	name, paramsSrc, err := p.splitNameAndParams(nameToken)
	if err != nil {
		return err
	}
	if name != cls.FullName() && name != cls.SimpleName() {
		return p.errf("constructor name %q does not match class %s", name, cls.FullName())
	}

	scope := model.TypeVariableScope(cls.TypeParameters())
	params, err := p.parseParameters(scope, paramsSrc)
	if err != nil {
		return err
	}
	m := model.NewMethod(cls, cls.SimpleName(), cls.ToType(), params)
	if err := p.parseMethodTail(m, scope, tokens, i); err != nil {
		return err
	}
	if err := p.applyModifiers(m, mods); err != nil {
		return err
	}
	m.SetPosition(model.Position{File: p.path, Line: p.lineno})

	for _, existing := range cls.Constructors() {
		if existing.ParameterSignature() == m.ParameterSignature() {
			cls.RemoveConstructor(existing)
			break
		}
	}
	return cls.AddConstructor(m)
}

func (p *parser) parseMethod(cls *model.ClassItem, rest string) error {
	tokens := tokenize(rest)
	i := 0
	mods, err := p.collectModifiers(tokens, &i)
	if err != nil {
		return err
	}

	var methodParams model.TypeParameterList
	if i < len(tokens) && strings.HasPrefix(tokens[i], "<") {
		src, ok := strings.CutSuffix(strings.TrimPrefix(tokens[i], "<"), ">")
		if !ok {
			return p.errf("malformed type parameter list %q", tokens[i])
		}
		methodParams, err = p.parseTypeParameterList(src)
		if err != nil {
			return err
		}
		i++
	}
	scope := model.CombineScopes(methodParams, cls.TypeParameters())

	if i >= len(tokens) {
		return p.errf("method declaration has no return type")
	}
	returnType, err := p.parseTypeIn(tokens[i], scope)
	if err != nil {
		return err
	}
	if mods.hasNull {
		returnType = returnType.WithNullability(mods.null)
	}
	i++

	if i >= len(tokens) {
		return p.errf("method declaration has no name")
	}
	name, paramsSrc, err := p.splitNameAndParams(tokens[i])
	if err != nil {
		return err
	}
	i++

	params, err := p.parseParameters(scope, paramsSrc)
	if err != nil {
		return err
	}
	m := model.NewMethod(cls, name, returnType, params)
	if err := m.SetTypeParameters(methodParams); err != nil {
		return err
	}
	if err := p.parseMethodTail(m, scope, tokens, i); err != nil {
		return err
	}
	if err := p.applyModifiers(m, mods); err != nil {
		return err
	}
	m.SetPosition(model.Position{File: p.path, Line: p.lineno})

	for _, existing := range cls.Methods() {
		if existing.Signature() == m.Signature() {
			cls.RemoveMethod(existing)
			break
		}
	}
	return cls.AddMethod(m)
}

// parseMethodTail handles the optional throws clause and annotation member
// default that follow the parameter list.
func (p *parser) parseMethodTail(m *model.MethodItem, scope model.TypeVariableScope, tokens []string, i int) error {
	for i < len(tokens) {
		switch tokens[i] {
		case "throws":
			i++
			list, next := p.collectThrowsList(tokens, i)
			i = next
			for _, src := range list {
				t, err := p.parseTypeIn(src, scope)
				if err != nil {
					return err
				}
				if err := m.AddThrowsType(t); err != nil {
					return err
				}
			}
		case "default":
			i++
			if i >= len(tokens) {
				return p.errf("default clause has no value")
			}
			return m.SetDefaultValue(strings.Join(tokens[i:], " "))
		default:
			return p.errf("unexpected token %q after parameter list", tokens[i])
		}
	}
	return nil
}

func (p *parser) collectThrowsList(tokens []string, i int) ([]string, int) {
	var parts []string
	for i < len(tokens) && tokens[i] != "default" {
		parts = append(parts, tokens[i])
		i++
	}
	var list []string
	for _, entry := range splitTop(strings.Join(parts, " "), ',') {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			list = append(list, entry)
		}
	}
	return list, i
}

func (p *parser) parseField(cls *model.ClassItem, rest string, enumConstant bool) error {
	tokens := tokenize(rest)
	i := 0
	mods, err := p.collectModifiers(tokens, &i)
	if err != nil {
		return err
	}
	scope := model.TypeVariableScope(cls.TypeParameters())

	if i >= len(tokens) {
		return p.errf("field declaration has no type")
	}
	typ, err := p.parseTypeIn(tokens[i], scope)
	if err != nil {
		return err
	}
	if mods.hasNull {
		typ = typ.WithNullability(mods.null)
	}
	i++

	if i >= len(tokens) {
		return p.errf("field declaration has no name")
	}
	name := tokens[i]
	i++

	f := model.NewField(cls, name, typ)
	if i < len(tokens) {
		if tokens[i] != "=" {
			return p.errf("unexpected token %q after field name", tokens[i])
		}
		i++
		if i >= len(tokens) {
			return p.errf("field initializer has no value")
		}
		if err := f.SetConstantValue(strings.Join(tokens[i:], " ")); err != nil {
			return err
		}
	}
	if enumConstant {
		if err := f.SetEnumConstant(true); err != nil {
			return err
		}
	}
	if err := p.applyModifiers(f, mods); err != nil {
		return err
	}
	f.SetPosition(model.Position{File: p.path, Line: p.lineno})

	if existing := cls.FindField(name); existing != nil {
		cls.RemoveField(existing)
	}
	return cls.AddField(f)
}

func (p *parser) parseProperty(cls *model.ClassItem, rest string) error {
	tokens := tokenize(rest)
	i := 0
	mods, err := p.collectModifiers(tokens, &i)
	if err != nil {
		return err
	}
	scope := model.TypeVariableScope(cls.TypeParameters())

	if i+1 >= len(tokens) {
		return p.errf("property declaration needs a type and a name")
	}
	typ, err := p.parseTypeIn(tokens[i], scope)
	if err != nil {
		return err
	}
	if mods.hasNull {
		typ = typ.WithNullability(mods.null)
	}
	name := tokens[i+1]
	if i+2 != len(tokens) {
		return p.errf("unexpected token %q after property name", tokens[i+2])
	}

	prop := model.NewProperty(cls, name, typ)
	if err := p.applyModifiers(prop, mods); err != nil {
		return err
	}
	prop.SetPosition(model.Position{File: p.path, Line: p.lineno})

	if existing := cls.FindProperty(name); existing != nil {
		cls.RemoveProperty(existing)
	}
	return cls.AddProperty(prop)
}

func (p *parser) parseParameters(scope model.TypeVariableScope, src string) ([]*model.ParameterItem, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	var params []*model.ParameterItem
	for index, entry := range splitTop(src, ',') {
		param, err := p.parseParameter(scope, index, strings.TrimSpace(entry))
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	return params, nil
}

func (p *parser) parseParameter(scope model.TypeVariableScope, index int, entry string) (*model.ParameterItem, error) {
	tokens := tokenize(entry)
	i := 0
	mods, err := p.collectModifiers(tokens, &i)
	if err != nil {
		return nil, err
	}

	optional := false
	if i < len(tokens) && tokens[i] == "optional" {
		optional = true
		i++
	}
	if i >= len(tokens) {
		return nil, p.errf("parameter %d has no type in %q", index, entry)
	}
	typ, err := p.parseTypeIn(tokens[i], scope)
	if err != nil {
		return nil, err
	}
	if mods.hasNull {
		typ = typ.WithNullability(mods.null)
	}
	i++

	name := ""
	if i < len(tokens) && tokens[i] != "=" {
		name = tokens[i]
		i++
	}

	param := model.NewParameter(p.cb, index, name, typ)
	for _, a := range mods.annotations {
		if err := param.Modifiers().AddAnnotation(a); err != nil {
			return nil, err
		}
	}
	if i < len(tokens) {
		if tokens[i] != "=" {
			return nil, p.errf("unexpected token %q in parameter %q", tokens[i], entry)
		}
		i++
		if i >= len(tokens) {
			return nil, p.errf("parameter default has no value in %q", entry)
		}
		if err := param.SetDefaultValue(strings.Join(tokens[i:], " ")); err != nil {
			return nil, err
		}
	} else if optional {
		if err := param.SetDefaultValue(""); err != nil {
			return nil, err
		}
	}
	return param, nil
}

// parseTypeParameterList parses "T, U extends A & B" into a declaration
// list. All names enter scope before bounds are parsed, so bounds may
// reference sibling parameters.
func (p *parser) parseTypeParameterList(src string) (model.TypeParameterList, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	entries := splitTop(src, ',')
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name, _, _ := strings.Cut(strings.TrimSpace(entry), " ")
		names = append(names, name)
	}
	scope := model.NewTypeVariableScope(names...)

	list := make(model.TypeParameterList, 0, len(entries))
	for idx, entry := range entries {
		entry = strings.TrimSpace(entry)
		_, boundsSrc, hasBounds := strings.Cut(entry, " extends ")
		var bounds []*model.TypeItem
		if hasBounds {
			for _, b := range strings.Split(boundsSrc, " & ") {
				t, err := p.parseTypeIn(strings.TrimSpace(b), scope)
				if err != nil {
					return nil, err
				}
				bounds = append(bounds, t)
			}
		}
		list = append(list, model.NewTypeParameter(names[idx], bounds...))
	}
	return list, nil
}

func (p *parser) parseTypeIn(src string, scope model.TypeVariableScope) (*model.TypeItem, error) {
	t, err := p.cb.ParseType(src, scope)
	if err != nil {
		return nil, p.errf("%v", err)
	}
	if p.format.KotlinStyleNulls {
		t = kotlinDefaultNullness(t)
	}
	return t, nil
}

// kotlinDefaultNullness rewrites undeclared platform nullness to non-null
// throughout a type, the reading convention of kotlin-style formats: a
// bare type means non-null, platform nullness must be spelled with '!'.
// The input is never mutated; it may be shared through the type cache.
func kotlinDefaultNullness(t *model.TypeItem) *model.TypeItem {
	if t == nil {
		return nil
	}
	copied := *t
	copied.Outer = kotlinDefaultNullness(t.Outer)
	copied.Component = kotlinDefaultNullness(t.Component)
	copied.ExtendsBound = kotlinDefaultNullness(t.ExtendsBound)
	copied.SuperBound = kotlinDefaultNullness(t.SuperBound)
	if len(t.Arguments) > 0 {
		copied.Arguments = make([]*model.TypeItem, len(t.Arguments))
		for i, arg := range t.Arguments {
			copied.Arguments[i] = kotlinDefaultNullness(arg)
		}
	}
	if copied.Kind != model.TypePrimitive && copied.Kind != model.TypeWildcard && !copied.NullDeclared {
		copied.Null = model.NullNonNull
		copied.NullDeclared = true
	}
	return &copied
}

func (p *parser) splitNameAndParams(token string) (name, params string, err error) {
	open := strings.IndexByte(token, '(')
	if open < 0 || !strings.HasSuffix(token, ")") {
		return "", "", p.errf("expected name(parameters), found %q", token)
	}
	return token[:open], token[open+1 : len(token)-1], nil
}

// modifierSet is the decoded modifier run of one declaration. Nullness
// annotations are lifted out into a type marker instead of being kept as
// annotations, so nullability survives format conversion.
type modifierSet struct {
	visibility model.Visibility

	static, final, abstract, deflt, sealed   bool
	synchronized, native, transient          bool
	volatileFlag, strictfp                   bool
	deprecated                               bool

	annotations []*model.AnnotationItem

	null    model.Nullability
	hasNull bool
}

func (p *parser) collectModifiers(tokens []string, i *int) (modifierSet, error) {
	mods := modifierSet{visibility: model.VisibilityPackage}
	for *i < len(tokens) {
		token := tokens[*i]
		if strings.HasPrefix(token, "@") && token != "@interface" {
			a, err := p.parseAnnotationToken(token)
			if err != nil {
				return mods, err
			}
			if n, ok := nullabilityOf(a.QualifiedName()); ok {
				mods.null = n
				mods.hasNull = true
			} else {
				mods.annotations = append(mods.annotations, a)
			}
			(*i)++
			continue
		}
		switch token {
		case "public":
			mods.visibility = model.VisibilityPublic
		case "protected":
			mods.visibility = model.VisibilityProtected
		case "private":
			mods.visibility = model.VisibilityPrivate
		case "static":
			mods.static = true
		case "final":
			mods.final = true
		case "abstract":
			mods.abstract = true
		case "default":
			mods.deflt = true
		case "sealed":
			mods.sealed = true
		case "synchronized":
			mods.synchronized = true
		case "native":
			mods.native = true
		case "transient":
			mods.transient = true
		case "volatile":
			mods.volatileFlag = true
		case "strictfp":
			mods.strictfp = true
		case "deprecated":
			mods.deprecated = true
		default:
			return mods, nil
		}
		(*i)++
	}
	return mods, nil
}

func (p *parser) parseAnnotationToken(token string) (*model.AnnotationItem, error) {
	t, err := p.cb.ParseType(token+" java.lang.Object", nil)
	if err != nil || len(t.Annotations) != 1 {
		return nil, p.errf("malformed annotation %q", token)
	}
	return t.Annotations[0], nil
}

// applyModifiers writes a decoded modifier run onto an item. Every flag is
// written, set or cleared, so re-applying a declaration during merges
// fully overwrites the previous one.
func (p *parser) applyModifiers(item model.Item, mods modifierSet) error {
	m := item.Modifiers()
	steps := []error{
		m.SetVisibility(mods.visibility),
		m.SetStatic(mods.static),
		m.SetFinal(mods.final),
		m.SetAbstract(mods.abstract),
		m.SetDefault(mods.deflt),
		m.SetSealed(mods.sealed),
		m.SetSynchronized(mods.synchronized),
		m.SetNative(mods.native),
		m.SetTransient(mods.transient),
		m.SetVolatile(mods.volatileFlag),
		m.SetStrictfp(mods.strictfp),
		m.SetAnnotations(mods.annotations),
		item.SetDeprecated(mods.deprecated),
	}
	for _, err := range steps {
		if err != nil {
			return err
		}
	}
	return nil
}

// nullabilityOf recognizes the nullness annotations emitted by
// annotation-style formats and maps them to a type marker.
func nullabilityOf(qualifiedName string) (model.Nullability, bool) {
	simple := qualifiedName
	if i := strings.LastIndexByte(simple, '.'); i >= 0 {
		simple = simple[i+1:]
	}
	switch simple {
	case "Nullable":
		return model.NullNullable, true
	case "NonNull", "NotNull":
		return model.NullNonNull, true
	}
	return 0, false
}

// tokenize splits a declaration on spaces outside of brackets, parens,
// braces, angle brackets and string literals, so "Map<K, V>" and
// "foo(int, int)" stay single tokens.
func tokenize(s string) []string {
	var tokens []string
	depth := 0
	inString := false
	start := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '(', '<', '[':
			depth++
		case '}', ')', '>', ']':
			depth--
		case ' ':
			if depth == 0 {
				if start >= 0 {
					tokens = append(tokens, s[start:i])
					start = -1
				}
				continue
			}
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

// splitTop splits on sep outside of brackets, parens, braces, angle
// brackets and string literals.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '(', '<', '[':
			depth++
		case '}', ')', '>', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func lastIndexOutsideQuotes(s string, sep byte) int {
	last := -1
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
		} else if c == sep {
			last = i
		}
	}
	return last
}
