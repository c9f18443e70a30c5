// Package parser implements a hand-rolled recursive-descent parser for
// the query language: SELECT/CREATE STREAM/DROP/EXPLAIN/DESCRIBE/SHOW
// over the expression grammar internal/ast declares. The grammar is
// treated as an external collaborator by spec.md §1 — this package
// specifies only the AST it must emit and the ParseError it raises on
// the first syntax failure, one statement per submission (spec.md §6).
package parser

import (
	"fmt"
	"strconv"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/parser/token"
)

// Parse scans and parses exactly one statement from input. Trailing
// input after the statement is rejected.
func Parse(input string) (ast.Statement, error) {
	p := &parser{lex: newLexer(input)}
	p.advance()
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != token.EOF {
		return nil, p.errorf("unexpected trailing input after statement")
	}
	return stmt, nil
}

type parser struct {
	lex *lexer
	tok token.Token
}

func (p *parser) advance() {
	p.tok = p.lex.next()
}

// pos returns the current token's position, for stamping onto the
// expression node about to be built from it.
func (p *parser) pos() ast.Position {
	return ast.Position{Line: p.tok.Line, Column: p.tok.Column}
}

// withPos stamps pos onto e and returns it, so a node literal can be
// position-tagged inline at its construction site.
func withPos(e ast.Expr, pos ast.Position) ast.Expr {
	e.SetPos(pos)
	return e
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Line: p.tok.Line, Column: p.tok.Column}
}

func (p *parser) expect(t token.Type) (token.Token, error) {
	if p.tok.Type != t {
		return token.Token{}, p.errorf("expected %s, got %s %q", t, p.tok.Type, p.tok.Literal)
	}
	tok := p.tok
	p.advance()
	return tok, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	switch p.tok.Type {
	case token.SELECT:
		return p.parseSelect()
	case token.CREATE:
		return p.parseCreateStream()
	case token.DROP:
		return p.parseDrop()
	case token.EXPLAIN:
		p.advance()
		inner, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.ExplainStatement{Inner: inner}, nil
	case token.DESCRIBE:
		p.advance()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &ast.DescribeStatement{Name: name.Literal}, nil
	case token.SHOW:
		return p.parseShow()
	default:
		return nil, p.errorf("expected a statement, got %s %q", p.tok.Type, p.tok.Literal)
	}
}

func (p *parser) parseShow() (ast.Statement, error) {
	p.advance() // SHOW
	switch p.tok.Type {
	case token.STREAMS:
		p.advance()
		return &ast.ShowStatement{Kind: ast.ShowStreams}, nil
	case token.FLOWS:
		p.advance()
		return &ast.ShowStatement{Kind: ast.ShowFlows}, nil
	default:
		return nil, p.errorf("expected STREAMS or FLOWS after SHOW, got %s %q", p.tok.Type, p.tok.Literal)
	}
}

func (p *parser) parseDrop() (ast.Statement, error) {
	p.advance() // DROP
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.DropStatement{Name: name.Literal}, nil
}

func (p *parser) parseCreateStream() (ast.Statement, error) {
	p.advance() // CREATE
	if _, err := p.expect(token.STREAM); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var cols []ast.ColumnDef
	for {
		colName, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		typeName, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		cols = append(cols, ast.ColumnDef{Name: colName.Literal, Type: typeName})
		if p.tok.Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.CreateStreamStatement{Name: name.Literal, Columns: cols}, nil
}

// parseTypeName accepts a bare primitive type keyword (INT, BIGINT,
// FLOAT, DOUBLE, STRING, BOOLEAN, TIMESTAMP, TIMESPAN) or a
// "NULLABLE <type>" wrapper, matching compiler.primitiveFromName.
func (p *parser) parseTypeName() (string, error) {
	if p.tok.Type == token.NULLABLE {
		p.advance()
		inner, err := p.expect(token.IDENT)
		if err != nil {
			return "", err
		}
		return "NULLABLE " + inner.Literal, nil
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return "", err
	}
	return name.Literal, nil
}

func (p *parser) parseSelect() (*ast.SelectStatement, error) {
	p.advance() // SELECT

	projection, err := p.parseProjectionList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	from, err := p.parseSourceClause()
	if err != nil {
		return nil, err
	}

	stmt := &ast.SelectStatement{Projection: projection, From: from}

	for p.tok.Type == token.JOIN || p.tok.Type == token.INNER || p.tok.Type == token.LEFT ||
		p.tok.Type == token.RIGHT || p.tok.Type == token.FULL {
		join, err := p.parseJoinClause()
		if err != nil {
			return nil, err
		}
		stmt.Joins = append(stmt.Joins, join)
	}

	if p.tok.Type == token.WHERE {
		p.advance()
		pred, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = &ast.WhereClause{Predicate: pred}
	}

	if p.tok.Type == token.GROUP {
		p.advance()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		keys, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = &ast.GroupByClause{Keys: keys}
	}

	if p.tok.Type == token.HAVING {
		p.advance()
		pred, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Having = &ast.HavingClause{Predicate: pred}
	}

	if p.tok.Type == token.INTO {
		p.advance()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		stmt.Into = name.Literal
	}

	return stmt, nil
}

func (p *parser) parseProjectionList() ([]*ast.AliasedExpr, error) {
	var out []*ast.AliasedExpr
	for {
		item, err := p.parseAliasedExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		if p.tok.Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseAliasedExpr() (*ast.AliasedExpr, error) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.tok.Type == token.AS {
		p.advance()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		alias = name.Literal
	} else if p.tok.Type == token.IDENT {
		alias = p.tok.Literal
		p.advance()
	}
	return withPos(&ast.AliasedExpr{Inner: e, Alias: alias}, e.Pos()).(*ast.AliasedExpr), nil
}

func (p *parser) parseExprList() ([]ast.Expr, error) {
	var out []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.tok.Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseSourceClause() (ast.SourceClause, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return ast.SourceClause{}, err
	}
	src := ast.SourceClause{Stream: name.Literal}
	if p.tok.Type == token.AS {
		p.advance()
		alias, err := p.expect(token.IDENT)
		if err != nil {
			return ast.SourceClause{}, err
		}
		src.Alias = alias.Literal
	} else if p.tok.Type == token.IDENT {
		src.Alias = p.tok.Literal
		p.advance()
	}
	return src, nil
}

func (p *parser) parseJoinClause() (ast.JoinClause, error) {
	jt := ast.JoinInner
	switch p.tok.Type {
	case token.LEFT:
		jt = ast.JoinLeft
		p.advance()
	case token.RIGHT:
		jt = ast.JoinRight
		p.advance()
	case token.FULL:
		jt = ast.JoinFull
		p.advance()
	case token.INNER:
		p.advance()
	}
	if _, err := p.expect(token.JOIN); err != nil {
		return ast.JoinClause{}, err
	}
	source, err := p.parseSourceClause()
	if err != nil {
		return ast.JoinClause{}, err
	}
	if _, err := p.expect(token.ON); err != nil {
		return ast.JoinClause{}, err
	}
	on, err := p.parseExpr()
	if err != nil {
		return ast.JoinClause{}, err
	}
	return ast.JoinClause{Type: jt, Source: source, On: on}, nil
}

// Expression grammar, loosest to tightest:
//
//	expr       := orExpr
//	orExpr     := andExpr (OR andExpr)*
//	andExpr    := notExpr (AND notExpr)*
//	notExpr    := NOT notExpr | comparison
//	comparison := additive ((= | <> | < | <= | > | >=) additive)? (IS NOT? NULL)?
//	additive   := multiplicative ((+ | -) multiplicative)*
//	multiplicative := unary ((* | / | %) unary)*
//	unary      := - unary | primary
//	primary    := literal | ident ('.' ident)? | ident '(' args ')' | '(' expr ')'
func (p *parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == token.OR {
		pos := p.pos()
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = withPos(&ast.BinaryExpr{Op: ast.OpOr, Left: left, Right: right}, pos)
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == token.AND {
		pos := p.pos()
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = withPos(&ast.BinaryExpr{Op: ast.OpAnd, Left: left, Right: right}, pos)
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Expr, error) {
	if p.tok.Type == token.NOT {
		pos := p.pos()
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return withPos(&ast.UnaryExpr{Op: ast.OpNot, Operand: operand}, pos), nil
	}
	return p.parseComparison()
}

var comparisonOps = map[token.Type]ast.BinaryOp{
	token.EQ:  ast.OpEq,
	token.NEQ: ast.OpNeq,
	token.LT:  ast.OpLt,
	token.LTE: ast.OpLte,
	token.GT:  ast.OpGt,
	token.GTE: ast.OpGte,
}

func (p *parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if op, ok := comparisonOps[p.tok.Type]; ok {
		pos := p.pos()
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = withPos(&ast.BinaryExpr{Op: op, Left: left, Right: right}, pos)
	}
	if p.tok.Type == token.IS {
		pos := p.pos()
		p.advance()
		notNull := false
		if p.tok.Type == token.NOT {
			notNull = true
			p.advance()
		}
		if _, err := p.expect(token.NULL_KW); err != nil {
			return nil, err
		}
		op := ast.OpIsNull
		if notNull {
			op = ast.OpIsNotNull
		}
		left = withPos(&ast.UnaryExpr{Op: op, Operand: left}, pos)
	}
	return left, nil
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == token.PLUS || p.tok.Type == token.MINUS {
		op := ast.OpAdd
		if p.tok.Type == token.MINUS {
			op = ast.OpSub
		}
		pos := p.pos()
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = withPos(&ast.BinaryExpr{Op: op, Left: left, Right: right}, pos)
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == token.ASTERISK || p.tok.Type == token.SLASH || p.tok.Type == token.PERCENT {
		var op ast.BinaryOp
		switch p.tok.Type {
		case token.ASTERISK:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		case token.PERCENT:
			op = ast.OpMod
		}
		pos := p.pos()
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = withPos(&ast.BinaryExpr{Op: op, Left: left, Right: right}, pos)
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.tok.Type == token.MINUS {
		pos := p.pos()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return withPos(&ast.UnaryExpr{Op: ast.OpNeg, Operand: operand}, pos), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	pos := p.pos()
	switch p.tok.Type {
	case token.INT:
		lit := p.tok.Literal
		p.advance()
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", lit)
		}
		return withPos(&ast.ConstantExpr{Value: n}, pos), nil
	case token.FLOAT:
		lit := p.tok.Literal
		p.advance()
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, p.errorf("invalid float literal %q", lit)
		}
		return withPos(&ast.ConstantExpr{Value: f}, pos), nil
	case token.STRING:
		lit := p.tok.Literal
		p.advance()
		return withPos(&ast.ConstantExpr{Value: lit}, pos), nil
	case token.TRUE:
		p.advance()
		return withPos(&ast.ConstantExpr{Value: true}, pos), nil
	case token.FALSE:
		p.advance()
		return withPos(&ast.ConstantExpr{Value: false}, pos), nil
	case token.NULL_KW:
		p.advance()
		return withPos(&ast.ConstantExpr{Value: nil}, pos), nil
	case token.LPAREN:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case token.IDENT:
		return p.parseIdentOrCall()
	default:
		return nil, p.errorf("expected an expression, got %s %q", p.tok.Type, p.tok.Literal)
	}
}

func (p *parser) parseIdentOrCall() (ast.Expr, error) {
	pos := p.pos()
	first := p.tok.Literal
	p.advance()

	if p.tok.Type == token.LPAREN {
		p.advance()
		var args []ast.Expr
		if p.tok.Type != token.RPAREN {
			list, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			args = list
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return withPos(&ast.CallExpr{Function: first, Args: args}, pos), nil
	}

	if p.tok.Type == token.DOT {
		p.advance()
		field, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return withPos(&ast.IdentifierExpr{Qualifier: first, Name: field.Literal}, pos), nil
	}

	return withPos(&ast.IdentifierExpr{Name: first}, pos), nil
}
