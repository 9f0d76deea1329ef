package javasrc

import "fmt"

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenChar
	tokenSymbol
)

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) is(text string) bool {
	return t.kind == tokenSymbol && t.text == text
}

func (t token) isIdent(text string) bool {
	return t.kind == tokenIdent && t.text == text
}

// docComment is a /** ... */ block kept out of the token stream; the
// parser attaches it to the following declaration by line distance.
type docComment struct {
	text    string
	endLine int
	used    bool
}

// lexer tokenizes one .java file. Comments and whitespace never reach
// the token stream; doc comments are collected on the side.
type lexer struct {
	input []byte
	pos   int
	line  int

	tokens []token
	docs   []*docComment
}

func scan(input []byte) ([]token, []*docComment, error) {
	l := &lexer{input: input, line: 1}
	for {
		tok, err := l.next()
		if err != nil {
			return nil, nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.kind == tokenEOF {
			return l.tokens, l.docs, nil
		}
	}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) advance() byte {
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			l.skipLineComment()
		case c == '/' && l.peekAt(1) == '*':
			if err := l.scanBlockComment(); err != nil {
				return token{}, err
			}
		default:
			return l.scanToken()
		}
	}
	return token{kind: tokenEOF, line: l.line}, nil
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.input) && l.peek() != '\n' {
		l.advance()
	}
}

// scanBlockComment consumes a block comment, recording it as a doc
// comment when it opens with /**.
func (l *lexer) scanBlockComment() error {
	startLine := l.line
	start := l.pos
	l.advance() // '/'
	l.advance() // '*'
	isDoc := l.peek() == '*' && l.peekAt(1) != '/'
	for l.pos < len(l.input) {
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			if isDoc {
				l.docs = append(l.docs, &docComment{
					text:    string(l.input[start:l.pos]),
					endLine: l.line,
				})
			}
			return nil
		}
		l.advance()
	}
	return fmt.Errorf("line %d: unterminated block comment", startLine)
}

func (l *lexer) scanToken() (token, error) {
	c := l.peek()
	switch {
	case isIdentStart(c):
		return l.scanIdent(), nil
	case c >= '0' && c <= '9':
		return l.scanNumber(), nil
	case c == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9':
		return l.scanNumber(), nil
	case c == '"':
		return l.scanString()
	case c == '\'':
		return l.scanChar()
	case c == '.' && l.peekAt(1) == '.' && l.peekAt(2) == '.':
		line := l.line
		l.pos += 3
		return token{kind: tokenSymbol, text: "...", line: line}, nil
	default:
		line := l.line
		l.advance()
		return token{kind: tokenSymbol, text: string(c), line: line}, nil
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func (l *lexer) scanIdent() token {
	line := l.line
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.peek()) {
		l.advance()
	}
	return token{kind: tokenIdent, text: string(l.input[start:l.pos]), line: line}
}

// scanNumber accepts the union of Java numeric literal shapes; the
// parser never interprets the digits, so precision here buys nothing.
func (l *lexer) scanNumber() token {
	line := l.line
	start := l.pos
	for l.pos < len(l.input) {
		c := l.peek()
		if c >= '0' && c <= '9' || c == '.' || c == '_' ||
			c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' ||
			c == 'x' || c == 'X' || c == 'l' || c == 'L' {
			l.advance()
			continue
		}
		// Exponent sign.
		if (c == '+' || c == '-') && l.pos > start {
			prev := l.input[l.pos-1]
			if prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P' {
				l.advance()
				continue
			}
		}
		break
	}
	return token{kind: tokenNumber, text: string(l.input[start:l.pos]), line: line}
}

func (l *lexer) scanString() (token, error) {
	line := l.line
	start := l.pos
	if l.peekAt(1) == '"' && l.peekAt(2) == '"' {
		return l.scanTextBlock()
	}
	l.advance() // opening quote
	for l.pos < len(l.input) {
		c := l.advance()
		if c == '\\' && l.pos < len(l.input) {
			l.advance()
			continue
		}
		if c == '"' && l.pos > start+1 {
			return token{kind: tokenString, text: string(l.input[start:l.pos]), line: line}, nil
		}
		if c == '\n' {
			break
		}
	}
	return token{}, fmt.Errorf("line %d: unterminated string literal", line)
}

func (l *lexer) scanTextBlock() (token, error) {
	line := l.line
	start := l.pos
	l.pos += 3
	for l.pos < len(l.input) {
		if l.peek() == '"' && l.peekAt(1) == '"' && l.peekAt(2) == '"' {
			l.advance()
			l.advance()
			l.advance()
			return token{kind: tokenString, text: string(l.input[start:l.pos]), line: line}, nil
		}
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	return token{}, fmt.Errorf("line %d: unterminated text block", line)
}

func (l *lexer) scanChar() (token, error) {
	line := l.line
	start := l.pos
	l.advance() // opening quote
	for l.pos < len(l.input) {
		c := l.advance()
		if c == '\\' && l.pos < len(l.input) {
			l.advance()
			continue
		}
		if c == '\'' {
			return token{kind: tokenChar, text: string(l.input[start:l.pos]), line: line}, nil
		}
		if c == '\n' {
			break
		}
	}
	return token{}, fmt.Errorf("line %d: unterminated character literal", line)
}
