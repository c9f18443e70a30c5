package parser

import (
	"testing"

	"github.com/roach88/nysm/internal/parser/token"
)

func lexAll(t *testing.T, input string) []token.Token {
	t.Helper()
	l := newLexer(input)
	var toks []token.Token
	for {
		tok := l.next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func typesOf(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func assertTypes(t *testing.T, got []token.Type, want ...token.Type) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerKeywordsAreCaseInsensitive(t *testing.T) {
	toks := lexAll(t, "select FROM Where")
	assertTypes(t, typesOf(toks), token.SELECT, token.FROM, token.WHERE, token.EOF)
}

func TestLexerNumericLiterals(t *testing.T) {
	toks := lexAll(t, "42 3.14 7")
	assertTypes(t, typesOf(toks), token.INT, token.FLOAT, token.INT, token.EOF)
	if toks[0].Literal != "42" || toks[1].Literal != "3.14" {
		t.Fatalf("unexpected literals: %+v", toks[:2])
	}
}

func TestLexerStringLiteralWithEscapedQuote(t *testing.T) {
	toks := lexAll(t, "'it''s here'")
	assertTypes(t, typesOf(toks), token.STRING, token.EOF)
	if toks[0].Literal != "it's here" {
		t.Fatalf("got literal %q", toks[0].Literal)
	}
}

func TestLexerMultiCharOperators(t *testing.T) {
	toks := lexAll(t, "<> <= >= != < > =")
	assertTypes(t, typesOf(toks),
		token.NEQ, token.LTE, token.GTE, token.NEQ, token.LT, token.GT, token.EQ, token.EOF)
}

func TestLexerSkipsLineComments(t *testing.T) {
	toks := lexAll(t, "SELECT -- trailing comment\nFROM")
	assertTypes(t, typesOf(toks), token.SELECT, token.FROM, token.EOF)
}

func TestLexerTracksLineAndColumn(t *testing.T) {
	toks := lexAll(t, "SELECT\n  x")
	if toks[1].Line != 2 || toks[1].Column != 3 {
		t.Fatalf("got line=%d col=%d, want line=2 col=3", toks[1].Line, toks[1].Column)
	}
}

func TestLexerQualifiedIdentifier(t *testing.T) {
	toks := lexAll(t, "orders.price")
	assertTypes(t, typesOf(toks), token.IDENT, token.DOT, token.IDENT, token.EOF)
}
