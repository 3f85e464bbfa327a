package quackparse

import (
	"fmt"

	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/token"
)

// Parser consumes a Lexer's token stream and builds the tagged-sum-type
// AST internal/check and internal/emit dispatch over.
type Parser struct {
	lex *Lexer
	cur token.Token
	nxt token.Token

	errs []error
}

// NewParser constructs a parser over src.
func NewParser(src string) *Parser {
	p := &Parser{lex: NewLexer(src)}
	p.advance()
	p.advance()
	return p
}

// Errors returns every syntax error accumulated while parsing.
func (p *Parser) Errors() []error { return p.errs }

func (p *Parser) advance() {
	p.cur = p.nxt
	p.nxt = p.lex.Next()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, fmt.Errorf("%d: %s", p.cur.Line, fmt.Sprintf(format, args...)))
}

func (p *Parser) expect(t token.Type) token.Token {
	tok := p.cur
	if p.cur.Type != t {
		p.errorf("unexpected token %q", p.cur.Lexeme)
	}
	p.advance()
	return tok
}

// ParseProgram parses a full source file into a Program node.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Ln: 1}

	for p.cur.Type == token.CLASS {
		prog.Classes = append(prog.Classes, p.parseClass())
	}

	for p.cur.Type != token.EOF {
		prog.Statements = append(prog.Statements, p.parseStatement())
	}

	return prog
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	p.expect(token.LPAREN)
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
		nameTok := p.expect(token.IDENT)
		p.expect(token.COLON)
		typeTok := p.expect(token.IDENT)
		params = append(params, &ast.Param{Name: nameTok.Lexeme, Type: typeTok.Lexeme, Ln: nameTok.Line})
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseArgs() []ast.RExpr {
	var args []ast.RExpr
	p.expect(token.LPAREN)
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
		args = append(args, p.parseExpr())
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parseClass() *ast.Class {
	ln := p.cur.Line
	p.expect(token.CLASS)
	name := p.expect(token.IDENT).Lexeme
	formals := p.parseParams()

	extends := ""
	if p.cur.Type == token.EXTENDS {
		p.advance()
		extends = p.expect(token.IDENT).Lexeme
	}

	cls := &ast.Class{Name: name, FormalArgs: formals, Extends: extends, Ln: ln}

	p.expect(token.LBRACE)
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		if p.cur.Type == token.DEF {
			cls.Methods = append(cls.Methods, p.parseMethod())
			continue
		}
		cls.Stmts = append(cls.Stmts, p.parseStatement())
	}
	p.expect(token.RBRACE)

	return cls
}

func (p *Parser) parseMethod() *ast.Method {
	ln := p.cur.Line
	p.expect(token.DEF)
	name := p.expect(token.IDENT).Lexeme
	formals := p.parseParams()

	declaredReturn := ""
	if p.cur.Type == token.COLON {
		p.advance()
		declaredReturn = p.expect(token.IDENT).Lexeme
	}

	m := &ast.Method{Name: name, FormalArgs: formals, DeclaredReturn: declaredReturn, Ln: ln}

	p.expect(token.LBRACE)
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		m.Stmts = append(m.Stmts, p.parseStatement())
	}
	p.expect(token.RBRACE)

	return m
}

func (p *Parser) parseBlock() []ast.Statement {
	p.expect(token.LBRACE)
	var stmts []ast.Statement
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(token.RBRACE)
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.RETURN:
		return p.parseReturn()
	case token.WHILE:
		return p.parseWhile()
	case token.IF:
		return p.parseIfBlock()
	default:
		return p.parseAssignOrExprStmt()
	}
}

func (p *Parser) parseReturn() *ast.Return {
	ln := p.cur.Line
	p.expect(token.RETURN)
	var expr ast.RExpr = &ast.Empty{Ln: ln}
	if p.cur.Type != token.SEMI {
		expr = p.parseExpr()
	}
	p.expect(token.SEMI)
	return &ast.Return{Expr: expr, Ln: ln}
}

func (p *Parser) parseWhile() *ast.While {
	ln := p.cur.Line
	p.expect(token.WHILE)
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Ln: ln}
}

func (p *Parser) parseIfBlock() *ast.IfBlock {
	ln := p.cur.Line
	p.expect(token.IF)
	cond := p.parseExpr()
	stmts := p.parseBlock()
	block := &ast.IfBlock{If: &ast.IfClause{Cond: cond, Stmts: stmts, Ln: ln}, Ln: ln}

	for p.cur.Type == token.ELIF {
		elifLn := p.cur.Line
		p.advance()
		elifCond := p.parseExpr()
		elifStmts := p.parseBlock()
		block.Elifs = append(block.Elifs, &ast.ElifClause{Cond: elifCond, Stmts: elifStmts, Ln: elifLn})
	}

	if p.cur.Type == token.ELSE {
		elseLn := p.cur.Line
		p.advance()
		block.Else = &ast.ElseClause{Stmts: p.parseBlock(), Ln: elseLn}
	}

	return block
}

// parseAssignOrExprStmt parses either `lhs [: T] = rhs;` or a bare
// expression statement, disambiguating by what follows the first parsed
// expression.
func (p *Parser) parseAssignOrExprStmt() ast.Statement {
	ln := p.cur.Line
	expr := p.parseExpr()

	if p.cur.Type == token.COLON || p.cur.Type == token.ASSIGN {
		lhs := exprToLExpr(expr)
		if lhs == nil {
			p.errorf("left-hand side of assignment is not assignable")
		}
		annotated := ""
		if p.cur.Type == token.COLON {
			p.advance()
			annotated = p.expect(token.IDENT).Lexeme
		}
		p.expect(token.ASSIGN)
		rhs := p.parseExpr()
		p.expect(token.SEMI)
		return &ast.Assign{Lhs: lhs, AnnotatedType: annotated, Rhs: rhs, Ln: ln}
	}

	p.expect(token.SEMI)
	return &ast.RExprStmt{Expr: expr, Ln: ln}
}

// exprToLExpr recovers the LExpr an AsLExpr-wrapped read expression came
// from, for use as an assignment's left-hand side.
func exprToLExpr(e ast.RExpr) ast.LExpr {
	if wrapped, ok := e.(*ast.AsLExpr); ok {
		return wrapped.LExpr
	}
	return nil
}

// Precedence climbing: or < and < comparison < additive < multiplicative < unary < primary/postfix.

func (p *Parser) parseExpr() ast.RExpr { return p.parseOr() }

func (p *Parser) parseOr() ast.RExpr {
	left := p.parseAnd()
	for p.cur.Type == token.OR {
		ln := p.cur.Line
		p.advance()
		right := p.parseAnd()
		left = &ast.Binary{Op: ast.OpOr, Left: left, Right: right, Ln: ln}
	}
	return left
}

func (p *Parser) parseAnd() ast.RExpr {
	left := p.parseComparison()
	for p.cur.Type == token.AND {
		ln := p.cur.Line
		p.advance()
		right := p.parseComparison()
		left = &ast.Binary{Op: ast.OpAnd, Left: left, Right: right, Ln: ln}
	}
	return left
}

var comparisonOps = map[token.Type]ast.BinOp{
	token.EQUALS:  ast.OpEquals,
	token.ATMOST:  ast.OpAtMost,
	token.LESS:    ast.OpLess,
	token.ATLEAST: ast.OpAtLeast,
	token.MORE:    ast.OpMore,
}

func (p *Parser) parseComparison() ast.RExpr {
	left := p.parseAdditive()
	for {
		op, ok := comparisonOps[p.cur.Type]
		if !ok {
			return left
		}
		ln := p.cur.Line
		p.advance()
		right := p.parseAdditive()
		left = &ast.Binary{Op: op, Left: left, Right: right, Ln: ln}
	}
}

func (p *Parser) parseAdditive() ast.RExpr {
	left := p.parseMultiplicative()
	for p.cur.Type == token.PLUS || p.cur.Type == token.MINUS {
		op := ast.OpPlus
		if p.cur.Type == token.MINUS {
			op = ast.OpMinus
		}
		ln := p.cur.Line
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.Binary{Op: op, Left: left, Right: right, Ln: ln}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.RExpr {
	left := p.parseUnary()
	for p.cur.Type == token.STAR || p.cur.Type == token.SLASH {
		op := ast.OpTimes
		if p.cur.Type == token.SLASH {
			op = ast.OpDivide
		}
		ln := p.cur.Line
		p.advance()
		right := p.parseUnary()
		left = &ast.Binary{Op: op, Left: left, Right: right, Ln: ln}
	}
	return left
}

func (p *Parser) parseUnary() ast.RExpr {
	if p.cur.Type == token.NOT {
		ln := p.cur.Line
		p.advance()
		return &ast.Not{Expr: p.parseUnary(), Ln: ln}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.RExpr {
	expr := p.parsePrimary()
	for p.cur.Type == token.DOT {
		p.advance()
		nameTok := p.expect(token.IDENT)
		if p.cur.Type == token.LPAREN {
			args := p.parseArgs()
			expr = &ast.DotCall{Recv: expr, Method: nameTok.Lexeme, Args: args, Ln: nameTok.Line}
		} else {
			expr = &ast.AsLExpr{LExpr: &ast.Field{Recv: expr, Name: nameTok.Lexeme, Ln: nameTok.Line}, Ln: nameTok.Line}
		}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.RExpr {
	tok := p.cur
	switch tok.Type {
	case token.INT:
		p.advance()
		var v int64
		fmt.Sscanf(tok.Lexeme, "%d", &v)
		return &ast.IntLit{Value: v, Ln: tok.Line}
	case token.STRING:
		p.advance()
		return &ast.StringLit{Value: tok.Lexeme, Ln: tok.Line}
	case token.THIS, token.TRUE, token.FALSE, token.IDENT:
		p.advance()
		name := tok.Lexeme
		switch tok.Type {
		case token.THIS:
			name = "this"
		case token.TRUE:
			name = "true"
		case token.FALSE:
			name = "false"
		}
		if p.cur.Type == token.LPAREN && tok.Type == token.IDENT {
			args := p.parseArgs()
			return &ast.Constructor{Type: name, Args: args, Ln: tok.Line}
		}
		return &ast.AsLExpr{LExpr: &ast.Ident{Name: name, Ln: tok.Line}, Ln: tok.Line}
	case token.LPAREN:
		p.advance()
		expr := p.parseExpr()
		p.expect(token.RPAREN)
		return expr
	default:
		p.errorf("unexpected token %q in expression", tok.Lexeme)
		p.advance()
		return &ast.Empty{Ln: tok.Line}
	}
}
