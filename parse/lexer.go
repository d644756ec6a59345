// Package parse implements the SQL subset's lexer, recursive-descent
// parser, and AST data types (§4.12).
package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is the sentinel every syntax error wraps.
var ErrParse = errors.New("parse: syntax error")

func errAt(lexer *lexer, format string, args ...any) error {
	return fmt.Errorf("%w: %s (at %q)", ErrParse, fmt.Sprintf(format, args...), lexer.remainder())
}

var keywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true,
	"insert": true, "into": true, "values": true,
	"delete": true, "update": true, "set": true,
	"create": true, "table": true, "view": true, "as": true, "index": true, "on": true,
	"int": true, "varchar": true, "int8": true, "int16": true, "bool": true, "date": true,
	"true": true, "false": true,
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokKeyword
	tokIdentifier
	tokStringConst
	tokIntConst
	tokDelim
)

type token struct {
	kind tokKind
	text string
	ival int32
}

// lexer tokenizes SQL text on demand; one token of lookahead is held in
// cur.
type lexer struct {
	src string
	pos int
	cur token
}

func newLexer(s string) *lexer {
	l := &lexer{src: s}
	l.advance()
	return l
}

func (l *lexer) remainder() string {
	if l.pos >= len(l.src) {
		return ""
	}
	return l.src[l.pos:]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
		l.pos++
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_'
}

func (l *lexer) advance() {
	l.skipSpace()
	if l.pos >= len(l.src) {
		l.cur = token{kind: tokEOF}
		return
	}
	c := l.src[l.pos]
	switch {
	case c == '\'':
		end := l.pos + 1
		for end < len(l.src) && l.src[end] != '\'' {
			end++
		}
		l.cur = token{kind: tokStringConst, text: l.src[l.pos+1 : end]}
		l.pos = end + 1
	case isDigit(c):
		end := l.pos
		for end < len(l.src) && isDigit(l.src[end]) {
			end++
		}
		n, _ := strconv.Atoi(l.src[l.pos:end])
		l.cur = token{kind: tokIntConst, ival: int32(n)}
		l.pos = end
	case isLetter(c):
		end := l.pos
		for end < len(l.src) && (isLetter(l.src[end]) || isDigit(l.src[end])) {
			end++
		}
		word := l.src[l.pos:end]
		lower := strings.ToLower(word)
		if keywords[lower] {
			l.cur = token{kind: tokKeyword, text: lower}
		} else {
			l.cur = token{kind: tokIdentifier, text: lower}
		}
		l.pos = end
	default:
		l.cur = token{kind: tokDelim, text: string(c)}
		l.pos++
	}
}

func (l *lexer) matchKeyword(kw string) bool {
	return l.cur.kind == tokKeyword && l.cur.text == kw
}

func (l *lexer) matchDelim(d string) bool {
	return l.cur.kind == tokDelim && l.cur.text == d
}

func (l *lexer) matchIdentifier() bool { return l.cur.kind == tokIdentifier }
func (l *lexer) matchIntConst() bool   { return l.cur.kind == tokIntConst }
func (l *lexer) matchStringConst() bool { return l.cur.kind == tokStringConst }

func (l *lexer) eatKeyword(kw string) error {
	if !l.matchKeyword(kw) {
		return errAt(l, "expected keyword %q", kw)
	}
	l.advance()
	return nil
}

func (l *lexer) eatDelim(d string) error {
	if !l.matchDelim(d) {
		return errAt(l, "expected %q", d)
	}
	l.advance()
	return nil
}

func (l *lexer) eatIdentifier() (string, error) {
	if !l.matchIdentifier() {
		return "", errAt(l, "expected identifier")
	}
	s := l.cur.text
	l.advance()
	return s, nil
}

func (l *lexer) eatIntConst() (int32, error) {
	if !l.matchIntConst() {
		return 0, errAt(l, "expected integer")
	}
	v := l.cur.ival
	l.advance()
	return v, nil
}

func (l *lexer) eatStringConst() (string, error) {
	if !l.matchStringConst() {
		return "", errAt(l, "expected string literal")
	}
	s := l.cur.text
	l.advance()
	return s, nil
}
