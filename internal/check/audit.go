package check

import (
	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/diag"
	"github.com/alexanderowen/quackc/internal/token"
	"github.com/alexanderowen/quackc/internal/typetree"
)

// AuditConstructors is C4, the first pre-pass: every class named in a
// Constructor expression anywhere in the program must be declared, either
// as a built-in or as one of the program's own class signatures. It is a
// pure name-level check -- no type information is required or available
// yet, since C5 hasn't built the lattice.
func AuditConstructors(prog *ast.Program, bag *diag.Bag) bool {
	declared := map[string]bool{
		typetree.Obj:     true,
		typetree.Int:     true,
		typetree.String:  true,
		typetree.Boolean: true,
		typetree.Nothing: true,
	}
	for _, c := range prog.Classes {
		declared[c.Name] = true
	}

	ok := true
	var walkStmts func(stmts []ast.Statement)
	var walkRExpr func(e ast.RExpr)
	var walkLExpr func(e ast.LExpr)

	walkRExpr = func(e ast.RExpr) {
		switch n := e.(type) {
		case *ast.Constructor:
			if !declared[n.Type] {
				bag.Add(diag.New(diag.ErrStructural, token.Token{Line: n.Ln}, "constructor for undeclared class %s", n.Type))
				ok = false
			}
			for _, a := range n.Args {
				walkRExpr(a)
			}
		case *ast.Binary:
			walkRExpr(n.Left)
			walkRExpr(n.Right)
		case *ast.Not:
			walkRExpr(n.Expr)
		case *ast.DotCall:
			walkRExpr(n.Recv)
			for _, a := range n.Args {
				walkRExpr(a)
			}
		case *ast.AsLExpr:
			walkLExpr(n.LExpr)
		}
	}

	walkLExpr = func(e ast.LExpr) {
		if f, ok := e.(*ast.Field); ok {
			walkRExpr(f.Recv)
		}
	}

	walkStmts = func(stmts []ast.Statement) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *ast.Assign:
				walkLExpr(n.Lhs)
				walkRExpr(n.Rhs)
			case *ast.Return:
				walkRExpr(n.Expr)
			case *ast.RExprStmt:
				walkRExpr(n.Expr)
			case *ast.While:
				walkRExpr(n.Cond)
				walkStmts(n.Body)
			case *ast.IfBlock:
				walkRExpr(n.If.Cond)
				walkStmts(n.If.Stmts)
				for _, el := range n.Elifs {
					walkRExpr(el.Cond)
					walkStmts(el.Stmts)
				}
				if n.Else != nil {
					walkStmts(n.Else.Stmts)
				}
			}
		}
	}

	for _, c := range prog.Classes {
		walkStmts(c.Stmts)
		for _, m := range c.Methods {
			walkStmts(m.Stmts)
		}
	}
	walkStmts(prog.Statements)

	return ok
}
