package parser

import (
	"strings"

	"github.com/roach88/nysm/internal/parser/token"
)

// lexer scans query text into token.Token values one at a time. It
// tracks 1-based line/column for error positions, the way
// cuelang.org/go/cue/token.File tracks line boundaries for Pos lookups.
type lexer struct {
	input string
	pos   int // current byte offset
	line  int
	col   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input, pos: 0, line: 1, col: 1}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) peekByteAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) advance() byte {
	c := l.peekByte()
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipSpaceAndComments() {
	for {
		switch l.peekByte() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '-':
			if l.peekByteAt(1) == '-' {
				for l.peekByte() != '\n' && l.peekByte() != 0 {
					l.advance()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

// next scans and returns the next token.
func (l *lexer) next() token.Token {
	l.skipSpaceAndComments()
	line, col := l.line, l.col

	c := l.peekByte()
	if c == 0 {
		return token.Token{Type: token.EOF, Line: line, Column: col}
	}

	switch {
	case isDigit(c):
		return l.scanNumber(line, col)
	case isIdentStart(c):
		return l.scanIdent(line, col)
	case c == '\'':
		return l.scanString(line, col)
	}

	switch c {
	case '+':
		l.advance()
		return token.Token{Type: token.PLUS, Literal: "+", Line: line, Column: col}
	case '-':
		l.advance()
		return token.Token{Type: token.MINUS, Literal: "-", Line: line, Column: col}
	case '*':
		l.advance()
		return token.Token{Type: token.ASTERISK, Literal: "*", Line: line, Column: col}
	case '/':
		l.advance()
		return token.Token{Type: token.SLASH, Literal: "/", Line: line, Column: col}
	case '%':
		l.advance()
		return token.Token{Type: token.PERCENT, Literal: "%", Line: line, Column: col}
	case ',':
		l.advance()
		return token.Token{Type: token.COMMA, Literal: ",", Line: line, Column: col}
	case '.':
		l.advance()
		return token.Token{Type: token.DOT, Literal: ".", Line: line, Column: col}
	case '(':
		l.advance()
		return token.Token{Type: token.LPAREN, Literal: "(", Line: line, Column: col}
	case ')':
		l.advance()
		return token.Token{Type: token.RPAREN, Literal: ")", Line: line, Column: col}
	case '=':
		l.advance()
		return token.Token{Type: token.EQ, Literal: "=", Line: line, Column: col}
	case '<':
		l.advance()
		switch l.peekByte() {
		case '>':
			l.advance()
			return token.Token{Type: token.NEQ, Literal: "<>", Line: line, Column: col}
		case '=':
			l.advance()
			return token.Token{Type: token.LTE, Literal: "<=", Line: line, Column: col}
		default:
			return token.Token{Type: token.LT, Literal: "<", Line: line, Column: col}
		}
	case '>':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Type: token.GTE, Literal: ">=", Line: line, Column: col}
		}
		return token.Token{Type: token.GT, Literal: ">", Line: line, Column: col}
	case '!':
		if l.peekByteAt(1) == '=' {
			l.advance()
			l.advance()
			return token.Token{Type: token.NEQ, Literal: "!=", Line: line, Column: col}
		}
	}

	l.advance()
	return token.Token{Type: token.ILLEGAL, Literal: string(c), Line: line, Column: col}
}

func (l *lexer) scanNumber(line, col int) token.Token {
	start := l.pos
	isFloat := false
	for isDigit(l.peekByte()) {
		l.advance()
	}
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peekByte()) {
			l.advance()
		}
	}
	lit := l.input[start:l.pos]
	typ := token.INT
	if isFloat {
		typ = token.FLOAT
	}
	return token.Token{Type: typ, Literal: lit, Line: line, Column: col}
}

func (l *lexer) scanIdent(line, col int) token.Token {
	start := l.pos
	for isIdentPart(l.peekByte()) {
		l.advance()
	}
	lit := l.input[start:l.pos]
	return token.Token{Type: token.LookupIdent(lit), Literal: lit, Line: line, Column: col}
}

func (l *lexer) scanString(line, col int) token.Token {
	l.advance() // opening quote
	var b strings.Builder
	for {
		c := l.peekByte()
		if c == 0 {
			break
		}
		if c == '\'' {
			if l.peekByteAt(1) == '\'' {
				b.WriteByte('\'')
				l.advance()
				l.advance()
				continue
			}
			l.advance()
			break
		}
		b.WriteByte(c)
		l.advance()
	}
	return token.Token{Type: token.STRING, Literal: b.String(), Line: line, Column: col}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
