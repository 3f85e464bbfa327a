package emit

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/symtab"
)

// stmtEmitter emits statements and expressions into the body of a
// constructor, method, or main. Kept separate from Emitter (which owns
// per-class declarations) since it carries only an indentation cursor.
type stmtEmitter struct {
	w      *bufio.Writer
	indent int
}

func (e *stmtEmitter) pad() string {
	return strings.Repeat("    ", e.indent)
}

func (e *stmtEmitter) emitStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		e.emitStatement(s)
	}
}

func (e *stmtEmitter) emitStatement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.Assign:
		fmt.Fprintf(e.w, "%s%s = %s;\n", e.pad(), e.emitLExpr(n.Lhs), e.emitExpr(n.Rhs))
	case *ast.Return:
		fmt.Fprintf(e.w, "%sreturn %s;\n", e.pad(), e.emitExpr(n.Expr))
	case *ast.RExprStmt:
		fmt.Fprintf(e.w, "%s%s;\n", e.pad(), e.emitExpr(n.Expr))
	case *ast.While:
		e.emitWhile(n)
	case *ast.IfBlock:
		e.emitIfBlock(n)
	}
}

// boolValue normalises any condition expression to the uniform boolean
// dereference the design notes call for, rather than the source's
// inconsistent ((cond)->value) vs. bare-cond dispatch between If and Elif.
func (e *stmtEmitter) boolValue(cond ast.RExpr) string {
	return "((" + e.emitExpr(cond) + ")->value)"
}

func (e *stmtEmitter) emitWhile(w *ast.While) {
	fmt.Fprintf(e.w, "%swhile (%s) {\n", e.pad(), e.boolValue(w.Cond))
	e.indent++
	e.emitStatements(w.Body)
	e.indent--
	fmt.Fprintf(e.w, "%s}\n", e.pad())
}

func (e *stmtEmitter) emitIfBlock(b *ast.IfBlock) {
	fmt.Fprintf(e.w, "%sif (%s) {\n", e.pad(), e.boolValue(b.If.Cond))
	e.indent++
	e.emitBranchDecls(b.If.AttachedScope)
	e.emitStatements(b.If.Stmts)
	e.indent--
	fmt.Fprintf(e.w, "%s}\n", e.pad())

	for _, el := range b.Elifs {
		fmt.Fprintf(e.w, "%selse if (%s) {\n", e.pad(), e.boolValue(el.Cond))
		e.indent++
		e.emitBranchDecls(el.AttachedScope)
		e.emitStatements(el.Stmts)
		e.indent--
		fmt.Fprintf(e.w, "%s}\n", e.pad())
	}

	if b.Else != nil {
		fmt.Fprintf(e.w, "%selse {\n", e.pad())
		e.indent++
		e.emitBranchDecls(b.Else.AttachedScope)
		e.emitStatements(b.Else.Stmts)
		e.indent--
		fmt.Fprintf(e.w, "%s}\n", e.pad())
	}
}

// emitBranchDecls declares the locals a branch introduced beyond the
// joined scope (its attached difference, per spec §4.6), so the emitted C
// block has storage for bindings that never escaped into the outer scope.
func (e *stmtEmitter) emitBranchDecls(scope *symtab.Scope) {
	for _, name := range sortedNames(scope) {
		typ, _ := scope.LookupLocal(name)
		if typ == "" {
			continue
		}
		fmt.Fprintf(e.w, "%s%s %s;\n", e.pad(), cType(typ), name)
	}
}

// emitExpr implements spec §4.7's expression emission rules.
func (e *stmtEmitter) emitExpr(expr ast.RExpr) string {
	switch n := expr.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("int_literal(%d)", n.Value)
	case *ast.StringLit:
		return fmt.Sprintf("str_literal(%q)", n.Value)
	case *ast.Empty:
		return "nothing"
	case *ast.Not:
		inner := e.emitExpr(n.Expr)
		return fmt.Sprintf("(((%s)->value) ? lit_false : lit_true)", inner)
	case *ast.Constructor:
		return fmt.Sprintf("new_%s(%s)", n.Type, e.emitArgs(n.Args))
	case *ast.DotCall:
		recv := e.emitExpr(n.Recv)
		if len(n.Args) == 0 {
			return fmt.Sprintf("(%s)->clazz->%s((%s))", recv, n.Method, recv)
		}
		return fmt.Sprintf("(%s)->clazz->%s((%s), %s)", recv, n.Method, recv, e.emitArgs(n.Args))
	case *ast.Binary:
		return e.emitBinary(n)
	case *ast.AsLExpr:
		return e.emitLExpr(n.LExpr)
	}
	return ""
}

func (e *stmtEmitter) emitBinary(n *ast.Binary) string {
	l := e.emitExpr(n.Left)
	r := e.emitExpr(n.Right)
	switch n.Op {
	case ast.OpAnd:
		return fmt.Sprintf("(((%s)->value) ? (%s) : lit_false)", l, r)
	case ast.OpOr:
		return fmt.Sprintf("(((%s)->value) ? lit_true : (%s))", l, r)
	default:
		return fmt.Sprintf("(%s)->clazz->%s((%s), (%s))", l, n.Op.MethodName(), l, r)
	}
}

func (e *stmtEmitter) emitArgs(args []ast.RExpr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = e.emitExpr(a)
	}
	return strings.Join(parts, ", ")
}

// emitLExpr implements the Ident/Field emission rules, rewriting the
// reserved identifiers true/false to the runtime's boolean singletons.
func (e *stmtEmitter) emitLExpr(expr ast.LExpr) string {
	switch n := expr.(type) {
	case *ast.Ident:
		switch n.Name {
		case "true":
			return "lit_true"
		case "false":
			return "lit_false"
		case "this":
			return "self"
		default:
			return n.Name
		}
	case *ast.Field:
		return fmt.Sprintf("(%s)->%s", e.emitExpr(n.Recv), n.Name)
	}
	return ""
}
