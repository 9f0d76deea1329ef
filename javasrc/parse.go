package javasrc

import (
	"fmt"
	"strings"

	"github.com/dhamidi/apisurf/model"
)

// The parser reads declarations only: package, imports, type headers and
// member signatures. Method bodies, initializer blocks and field
// initializers are skipped by token balancing, so expression syntax
// never has to be understood.

type fileDecl struct {
	path    string
	pkg     string
	imports []importDecl
	types   []*typeDecl
}

type importDecl struct {
	qualifiedName string
	static        bool
	wildcard      bool
}

type annotationDecl struct {
	name  string
	attrs []attrDecl
}

type attrDecl struct {
	name  string
	value string
}

type modifierSet struct {
	visibility    model.Visibility
	hasVisibility bool
	static        bool
	final         bool
	abstract      bool
	sealed        bool
	deflt         bool
	synchronized  bool
	native        bool
	transient     bool
	volatile      bool
	strictfp      bool
}

type typeParamDecl struct {
	name   string
	bounds []string
}

type typeDecl struct {
	kind        model.ClassKind
	isRecord    bool
	name        string
	line        int
	doc         string
	mods        modifierSet
	annotations []annotationDecl
	typeParams  []typeParamDecl
	extends     []string
	implements  []string

	recordComponents []paramDecl
	enumConstants    []enumConstantDecl
	fields           []*fieldDecl
	methods          []*methodDecl
	nested           []*typeDecl
}

type enumConstantDecl struct {
	name        string
	line        int
	doc         string
	annotations []annotationDecl
}

type fieldDecl struct {
	name        string
	typ         string
	line        int
	doc         string
	mods        modifierSet
	annotations []annotationDecl
	constant    string
	hasConstant bool
}

type methodDecl struct {
	name         string
	ctor         bool
	line         int
	doc          string
	mods         modifierSet
	annotations  []annotationDecl
	typeParams   []typeParamDecl
	returnType   string
	params       []paramDecl
	throws       []string
	defaultValue string
}

type paramDecl struct {
	name    string
	typ     string
	varargs bool
}

type docIndex struct {
	docs []*docComment
}

// take claims the doc comment immediately above the declaration starting
// at line. A gap of more than one blank line detaches the comment.
func (d *docIndex) take(line int) string {
	for i := len(d.docs) - 1; i >= 0; i-- {
		doc := d.docs[i]
		if doc.endLine >= line {
			continue
		}
		if doc.used || line-doc.endLine > 2 {
			return ""
		}
		doc.used = true
		return doc.text
	}
	return ""
}

type parser struct {
	path string
	toks []token
	pos  int
	docs docIndex
}

func parseSource(path string, src []byte) (*fileDecl, error) {
	toks, docs, err := scan(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p := &parser{path: path, toks: toks, docs: docIndex{docs: docs}}
	return p.parseFile()
}

func (p *parser) cur() token {
	return p.at(0)
}

func (p *parser) at(offset int) token {
	if p.pos+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+offset]
}

func (p *parser) advance() token {
	tok := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d: %s", p.path, p.cur().line, fmt.Sprintf(format, args...))
}

func (p *parser) expectSymbol(text string) error {
	if !p.cur().is(text) {
		return p.errorf("expected %q, found %q", text, p.cur().text)
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent() (token, error) {
	if p.cur().kind != tokenIdent {
		return token{}, p.errorf("expected identifier, found %q", p.cur().text)
	}
	return p.advance(), nil
}

func (p *parser) parseFile() (*fileDecl, error) {
	file := &fileDecl{path: p.path}

	// package-info.java carries annotations before the package keyword.
	for p.cur().is("@") && !p.at(1).isIdent("interface") {
		if _, err := p.parseAnnotation(); err != nil {
			return nil, err
		}
	}
	if p.cur().isIdent("package") {
		p.advance()
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		file.pkg = name
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
	}

	for p.cur().isIdent("import") {
		p.advance()
		imp := importDecl{}
		if p.cur().isIdent("static") {
			p.advance()
			imp.static = true
		}
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		if p.cur().is(".") && p.at(1).is("*") {
			p.advance()
			p.advance()
			imp.wildcard = true
		}
		imp.qualifiedName = name
		file.imports = append(file.imports, imp)
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
	}

	for p.cur().kind != tokenEOF {
		if p.cur().is(";") {
			p.advance()
			continue
		}
		decl, err := p.parseTypeDecl()
		if err != nil {
			return nil, err
		}
		file.types = append(file.types, decl)
	}
	return file, nil
}

func (p *parser) parseQualifiedName() (string, error) {
	first, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	name := first.text
	for p.cur().is(".") && p.at(1).kind == tokenIdent {
		p.advance()
		part, _ := p.expectIdent()
		name += "." + part.text
	}
	return name, nil
}

func (p *parser) parseTypeDecl() (*typeDecl, error) {
	startLine := p.cur().line
	mods, annotations, err := p.parseModifiers()
	if err != nil {
		return nil, err
	}
	return p.parseTypeRest(startLine, mods, annotations)
}

func (p *parser) parseTypeRest(startLine int, mods modifierSet, annotations []annotationDecl) (*typeDecl, error) {
	decl := &typeDecl{
		line:        startLine,
		mods:        mods,
		annotations: annotations,
		doc:         p.docs.take(startLine),
	}
	switch {
	case p.cur().isIdent("class"):
		decl.kind = model.ClassKindClass
	case p.cur().isIdent("interface"):
		decl.kind = model.ClassKindInterface
	case p.cur().isIdent("enum"):
		decl.kind = model.ClassKindEnum
	case p.cur().isIdent("record"):
		decl.kind = model.ClassKindClass
		decl.isRecord = true
	case p.cur().is("@") && p.at(1).isIdent("interface"):
		decl.kind = model.ClassKindAnnotation
		p.advance()
	default:
		return nil, p.errorf("expected type declaration, found %q", p.cur().text)
	}
	p.advance()

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	decl.name = name.text

	if p.cur().is("<") {
		if decl.typeParams, err = p.parseTypeParams(); err != nil {
			return nil, err
		}
	}
	if decl.isRecord && p.cur().is("(") {
		if decl.recordComponents, err = p.parseParams(); err != nil {
			return nil, err
		}
	}
	if p.cur().isIdent("extends") {
		p.advance()
		if decl.extends, err = p.parseTypeList(); err != nil {
			return nil, err
		}
	}
	if p.cur().isIdent("implements") {
		p.advance()
		if decl.implements, err = p.parseTypeList(); err != nil {
			return nil, err
		}
	}
	if p.cur().isIdent("permits") {
		p.advance()
		if _, err := p.parseTypeList(); err != nil {
			return nil, err
		}
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	if err := p.parseBody(decl); err != nil {
		return nil, err
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseModifiers() (modifierSet, []annotationDecl, error) {
	var mods modifierSet
	var annotations []annotationDecl
	for {
		tok := p.cur()
		switch {
		case tok.is("@") && !p.at(1).isIdent("interface"):
			ann, err := p.parseAnnotation()
			if err != nil {
				return mods, nil, err
			}
			annotations = append(annotations, ann)
		case tok.isIdent("public"):
			mods.visibility, mods.hasVisibility = model.VisibilityPublic, true
			p.advance()
		case tok.isIdent("protected"):
			mods.visibility, mods.hasVisibility = model.VisibilityProtected, true
			p.advance()
		case tok.isIdent("private"):
			mods.visibility, mods.hasVisibility = model.VisibilityPrivate, true
			p.advance()
		case tok.isIdent("static"):
			mods.static = true
			p.advance()
		case tok.isIdent("final"):
			mods.final = true
			p.advance()
		case tok.isIdent("abstract"):
			mods.abstract = true
			p.advance()
		case tok.isIdent("sealed"):
			mods.sealed = true
			p.advance()
		case tok.isIdent("non") && p.at(1).is("-") && p.at(2).isIdent("sealed"):
			p.advance()
			p.advance()
			p.advance()
		case tok.isIdent("default"):
			mods.deflt = true
			p.advance()
		case tok.isIdent("synchronized"):
			mods.synchronized = true
			p.advance()
		case tok.isIdent("native"):
			mods.native = true
			p.advance()
		case tok.isIdent("transient"):
			mods.transient = true
			p.advance()
		case tok.isIdent("volatile"):
			mods.volatile = true
			p.advance()
		case tok.isIdent("strictfp"):
			mods.strictfp = true
			p.advance()
		default:
			return mods, annotations, nil
		}
	}
}

func (p *parser) parseAnnotation() (annotationDecl, error) {
	if err := p.expectSymbol("@"); err != nil {
		return annotationDecl{}, err
	}
	name, err := p.parseQualifiedName()
	if err != nil {
		return annotationDecl{}, err
	}
	ann := annotationDecl{name: name}
	if !p.cur().is("(") {
		return ann, nil
	}
	p.advance()
	for !p.cur().is(")") {
		if p.cur().kind == tokenEOF {
			return ann, p.errorf("unterminated annotation %s", name)
		}
		attr := attrDecl{name: "value"}
		if p.cur().kind == tokenIdent && p.at(1).is("=") {
			attr.name = p.advance().text
			p.advance()
		}
		attr.value = p.captureValue(",", ")")
		ann.attrs = append(ann.attrs, attr)
		if p.cur().is(",") {
			p.advance()
		}
	}
	p.advance()
	return ann, nil
}

func (p *parser) parseTypeParams() ([]typeParamDecl, error) {
	if err := p.expectSymbol("<"); err != nil {
		return nil, err
	}
	var params []typeParamDecl
	for {
		for p.cur().is("@") {
			if _, err := p.parseAnnotation(); err != nil {
				return nil, err
			}
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		param := typeParamDecl{name: name.text}
		if p.cur().isIdent("extends") {
			p.advance()
			for {
				bound, err := p.parseType()
				if err != nil {
					return nil, err
				}
				param.bounds = append(param.bounds, bound)
				if !p.cur().is("&") {
					break
				}
				p.advance()
			}
		}
		params = append(params, param)
		if p.cur().is(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectSymbol(">"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) parseTypeList() ([]string, error) {
	var types []string
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		if !p.cur().is(",") {
			return types, nil
		}
		p.advance()
	}
}

// parseType consumes one type and renders it in canonical source form
// ("a.b.Foo<? extends K, V>[]"). Type-use annotations are dropped.
func (p *parser) parseType() (string, error) {
	for p.cur().is("@") {
		if _, err := p.parseAnnotation(); err != nil {
			return "", err
		}
	}
	var sb strings.Builder
	if p.cur().is("?") {
		p.advance()
		sb.WriteByte('?')
		if p.cur().isIdent("extends") || p.cur().isIdent("super") {
			bound := p.advance().text
			t, err := p.parseType()
			if err != nil {
				return "", err
			}
			sb.WriteString(" " + bound + " " + t)
		}
		return sb.String(), nil
	}

	name, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	sb.WriteString(name.text)
	for {
		if p.cur().is("<") {
			args, err := p.parseTypeArgs()
			if err != nil {
				return "", err
			}
			sb.WriteString(args)
		}
		if p.cur().is(".") && p.at(1).kind == tokenIdent {
			p.advance()
			part, _ := p.expectIdent()
			sb.WriteByte('.')
			sb.WriteString(part.text)
			continue
		}
		break
	}
	for p.cur().is("[") && p.at(1).is("]") {
		p.advance()
		p.advance()
		sb.WriteString("[]")
	}
	return sb.String(), nil
}

func (p *parser) parseTypeArgs() (string, error) {
	if err := p.expectSymbol("<"); err != nil {
		return "", err
	}
	if p.cur().is(">") {
		p.advance()
		return "<>", nil
	}
	var sb strings.Builder
	sb.WriteByte('<')
	for {
		arg, err := p.parseType()
		if err != nil {
			return "", err
		}
		sb.WriteString(arg)
		if p.cur().is(",") {
			p.advance()
			sb.WriteString(", ")
			continue
		}
		break
	}
	if err := p.expectSymbol(">"); err != nil {
		return "", err
	}
	sb.WriteByte('>')
	return sb.String(), nil
}

func (p *parser) parseBody(decl *typeDecl) error {
	if decl.kind == model.ClassKindEnum {
		if err := p.parseEnumConstants(decl); err != nil {
			return err
		}
	}
	for !p.cur().is("}") {
		if p.cur().kind == tokenEOF {
			return p.errorf("unterminated body of %s", decl.name)
		}
		if p.cur().is(";") {
			p.advance()
			continue
		}
		startLine := p.cur().line
		mods, annotations, err := p.parseModifiers()
		if err != nil {
			return err
		}
		// Instance and static initializer blocks.
		if p.cur().is("{") {
			p.skipBlock()
			continue
		}
		if p.isTypeKeyword() {
			nested, err := p.parseTypeRest(startLine, mods, annotations)
			if err != nil {
				return err
			}
			decl.nested = append(decl.nested, nested)
			continue
		}
		if err := p.parseMember(decl, startLine, mods, annotations); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) isTypeKeyword() bool {
	tok := p.cur()
	if tok.is("@") && p.at(1).isIdent("interface") {
		return true
	}
	if tok.kind != tokenIdent {
		return false
	}
	switch tok.text {
	case "class", "interface", "enum":
		return true
	case "record":
		// Contextual keyword: a declaration, not a type named
		// "record", when followed by name and header.
		return p.at(1).kind == tokenIdent && (p.at(2).is("(") || p.at(2).is("<"))
	}
	return false
}

func (p *parser) parseMember(decl *typeDecl, startLine int, mods modifierSet, annotations []annotationDecl) error {
	member := &methodDecl{
		line:        startLine,
		doc:         p.docs.take(startLine),
		mods:        mods,
		annotations: annotations,
	}
	var err error
	if p.cur().is("<") {
		if member.typeParams, err = p.parseTypeParams(); err != nil {
			return err
		}
	}

	if p.cur().isIdent(decl.name) && p.at(1).is("(") {
		member.ctor = true
		member.name = p.advance().text
		return p.finishMethod(decl, member)
	}

	if member.returnType, err = p.parseType(); err != nil {
		return err
	}
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	member.name = name.text
	if p.cur().is("(") {
		return p.finishMethod(decl, member)
	}
	return p.parseFieldDeclarators(decl, member)
}

func (p *parser) finishMethod(decl *typeDecl, member *methodDecl) error {
	var err error
	if member.params, err = p.parseParams(); err != nil {
		return err
	}
	// C-style array suffix on the method name.
	for p.cur().is("[") && p.at(1).is("]") {
		p.advance()
		p.advance()
		member.returnType += "[]"
	}
	if p.cur().isIdent("throws") {
		p.advance()
		if member.throws, err = p.parseTypeList(); err != nil {
			return err
		}
	}
	switch {
	case p.cur().is("{"):
		p.skipBlock()
	case p.cur().isIdent("default"):
		p.advance()
		member.defaultValue = p.captureValue(";")
		if err := p.expectSymbol(";"); err != nil {
			return err
		}
	default:
		if err := p.expectSymbol(";"); err != nil {
			return err
		}
	}
	decl.methods = append(decl.methods, member)
	return nil
}

func (p *parser) parseParams() ([]paramDecl, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var params []paramDecl
	for !p.cur().is(")") {
		if p.cur().kind == tokenEOF {
			return nil, p.errorf("unterminated parameter list")
		}
		for p.cur().is("@") {
			if _, err := p.parseAnnotation(); err != nil {
				return nil, err
			}
		}
		if p.cur().isIdent("final") {
			p.advance()
		}
		param := paramDecl{}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.cur().is("...") {
			p.advance()
			param.varargs = true
			typ += "[]"
		}
		// Receiver parameters declare no API surface.
		if p.cur().isIdent("this") {
			p.advance()
			if p.cur().is(",") {
				p.advance()
			}
			continue
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		param.name = name.text
		for p.cur().is("[") && p.at(1).is("]") {
			p.advance()
			p.advance()
			typ += "[]"
		}
		param.typ = typ
		params = append(params, param)
		if p.cur().is(",") {
			p.advance()
		}
	}
	p.advance()
	return params, nil
}

func (p *parser) parseFieldDeclarators(decl *typeDecl, member *methodDecl) error {
	name := member.name
	for {
		field := &fieldDecl{
			name:        name,
			typ:         member.returnType,
			line:        member.line,
			doc:         member.doc,
			mods:        member.mods,
			annotations: member.annotations,
		}
		for p.cur().is("[") && p.at(1).is("]") {
			p.advance()
			p.advance()
			field.typ += "[]"
		}
		if p.cur().is("=") {
			p.advance()
			field.constant, field.hasConstant = p.captureConstant()
		}
		decl.fields = append(decl.fields, field)
		if p.cur().is(",") {
			p.advance()
			tok, err := p.expectIdent()
			if err != nil {
				return err
			}
			name = tok.text
			// Only the first declarator owns the doc comment.
			member.doc = ""
			continue
		}
		return p.expectSymbol(";")
	}
}

// captureConstant consumes a field initializer and reports it as a
// constant value when it is a bare literal. Computed initializers are
// skipped; bytecode would fold them, source reading does not.
func (p *parser) captureConstant() (string, bool) {
	start := p.pos
	text := p.captureValue(",", ";")
	captured := p.toks[start:p.pos]
	switch len(captured) {
	case 1:
		tok := captured[0]
		if tok.kind == tokenNumber || tok.kind == tokenString || tok.kind == tokenChar ||
			tok.isIdent("true") || tok.isIdent("false") {
			return text, true
		}
	case 2:
		if captured[0].is("-") && captured[1].kind == tokenNumber {
			return text, true
		}
	}
	return "", false
}

// captureValue consumes tokens up to one of the stop symbols at nesting
// depth zero and renders them as compact source text.
func (p *parser) captureValue(stops ...string) string {
	depth := 0
	var parts []token
	for {
		tok := p.cur()
		if tok.kind == tokenEOF {
			break
		}
		if depth == 0 && tok.kind == tokenSymbol {
			stopped := false
			for _, stop := range stops {
				if tok.text == stop {
					stopped = true
					break
				}
			}
			if stopped {
				break
			}
		}
		switch {
		case tok.is("(") || tok.is("{") || tok.is("["):
			depth++
		case tok.is(")") || tok.is("}") || tok.is("]"):
			depth--
		}
		parts = append(parts, p.advance())
	}
	return joinTokens(parts)
}

func joinTokens(toks []token) string {
	var sb strings.Builder
	for i, tok := range toks {
		if i > 0 && needsSpace(toks[i-1], tok) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.text)
	}
	return sb.String()
}

func needsSpace(prev, cur token) bool {
	if prev.is(".") || cur.is(".") || cur.is(",") || cur.is(")") || cur.is("]") {
		return false
	}
	if prev.is("(") || prev.is("[") || prev.is("@") || prev.is("-") {
		return false
	}
	if cur.is("(") && prev.kind == tokenIdent {
		return false
	}
	return true
}

func (p *parser) parseEnumConstants(decl *typeDecl) error {
	for {
		tok := p.cur()
		if tok.is(";") {
			p.advance()
			return nil
		}
		if tok.is("}") || tok.kind == tokenEOF {
			return nil
		}
		startLine := tok.line
		var annotations []annotationDecl
		for p.cur().is("@") {
			ann, err := p.parseAnnotation()
			if err != nil {
				return err
			}
			annotations = append(annotations, ann)
		}
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		constant := enumConstantDecl{
			name:        name.text,
			line:        startLine,
			doc:         p.docs.take(startLine),
			annotations: annotations,
		}
		if p.cur().is("(") {
			p.skipParens()
		}
		if p.cur().is("{") {
			p.skipBlock()
		}
		decl.enumConstants = append(decl.enumConstants, constant)
		if p.cur().is(",") {
			p.advance()
		}
	}
}

func (p *parser) skipBlock() {
	p.skipBalanced("{", "}")
}

func (p *parser) skipParens() {
	p.skipBalanced("(", ")")
}

func (p *parser) skipBalanced(open, close string) {
	if !p.cur().is(open) {
		return
	}
	depth := 0
	for p.cur().kind != tokenEOF {
		tok := p.advance()
		if tok.is(open) {
			depth++
		}
		if tok.is(close) {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}
