package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderowen/quackc/internal/ast"
)

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }
func asRead(name string) ast.RExpr { return &ast.AsLExpr{LExpr: ident(name)} }

func TestJoinCorrectness(t *testing.T) {
	// x = 3; if true { x = "hi"; } else { x = 4; } -- spec §8 scenario 3.
	prog := &ast.Program{
		Statements: []ast.Statement{
			&ast.Assign{Lhs: ident("x"), Rhs: &ast.IntLit{Value: 3}},
			&ast.IfBlock{
				If: &ast.IfClause{
					Cond:  asRead("true"),
					Stmts: []ast.Statement{&ast.Assign{Lhs: ident("x"), Rhs: &ast.StringLit{Value: "hi"}}},
				},
				Else: &ast.ElseClause{
					Stmts: []ast.Statement{&ast.Assign{Lhs: ident("x"), Rhs: &ast.IntLit{Value: 4}}},
				},
			},
			&ast.RExprStmt{Expr: &ast.DotCall{Recv: asRead("x"), Method: "PRINT"}},
		},
	}

	res := Run(prog)
	require.True(t, res.OK, "expected no diagnostics, got: %v", res.Bag.Errors())

	typ, ok := prog.AttachedScope.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "Obj", typ, "after the join x must widen to Obj")
}

func TestJoinDropsBranchOnlyBinding(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Statement{
			&ast.IfBlock{
				If: &ast.IfClause{
					Cond:  asRead("true"),
					Stmts: []ast.Statement{&ast.Assign{Lhs: ident("onlyIf"), Rhs: &ast.IntLit{Value: 1}}},
				},
			},
		},
	}

	res := Run(prog)
	require.True(t, res.OK)

	_, ok := prog.AttachedScope.Lookup("onlyIf")
	assert.False(t, ok, "a binding introduced in only one branch must not survive the join")
}

func TestWhileFixpointKeepsIntLoopVariable(t *testing.T) {
	// x = 1; while x < 10 { x = x + 1; }  (Int throughout, per spec §8 scenario 4)
	prog := &ast.Program{
		Statements: []ast.Statement{
			&ast.Assign{Lhs: ident("x"), Rhs: &ast.IntLit{Value: 1}},
			&ast.While{
				Cond: &ast.Binary{Op: ast.OpLess, Left: asRead("x"), Right: &ast.IntLit{Value: 10}},
				Body: []ast.Statement{
					&ast.Assign{Lhs: ident("x"), Rhs: &ast.Binary{Op: ast.OpPlus, Left: asRead("x"), Right: &ast.IntLit{Value: 1}}},
				},
			},
		},
	}

	res := Run(prog)
	require.True(t, res.OK, "expected no diagnostics, got: %v", res.Bag.Errors())

	typ, ok := prog.AttachedScope.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "Int", typ)
}

func TestUninitializedVariableIsRejected(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Statement{
			&ast.Assign{Lhs: ident("y"), Rhs: asRead("foo")},
		},
	}

	res := Run(prog)
	assert.False(t, res.OK)
	require.Equal(t, 1, res.Bag.Len())
	assert.Contains(t, res.Bag.Errors()[0].Message, "foo")
}

func TestOverrideReturnCovarianceIsEnforced(t *testing.T) {
	// class A() { def f(): Int { return 1; } }
	// class B() extends A { def f(): String { return "x"; } } -- spec §8 scenario 5.
	classA := &ast.Class{
		Name: "A",
		Methods: []*ast.Method{
			{Name: "f", DeclaredReturn: "Int", Stmts: []ast.Statement{&ast.Return{Expr: &ast.IntLit{Value: 1}}}},
		},
	}
	classB := &ast.Class{
		Name:    "B",
		Extends: "A",
		Methods: []*ast.Method{
			{Name: "f", DeclaredReturn: "String", Stmts: []ast.Statement{&ast.Return{Expr: &ast.StringLit{Value: "x"}}}},
		},
	}
	prog := &ast.Program{Classes: []*ast.Class{classA, classB}}

	res := Run(prog)
	assert.False(t, res.OK)
	require.NotEmpty(t, res.Bag.Errors())
}

func TestConstructorFieldAssignmentRecordsInstanceVar(t *testing.T) {
	// class Pt(x: Int, y: Int) { this.x = x; this.y = y; } -- spec §8 scenario 2.
	cls := &ast.Class{
		Name: "Pt",
		FormalArgs: []*ast.Param{
			{Name: "x", Type: "Int"},
			{Name: "y", Type: "Int"},
		},
		Stmts: []ast.Statement{
			&ast.Assign{Lhs: &ast.Field{Recv: asRead("this"), Name: "x"}, Rhs: asRead("x")},
			&ast.Assign{Lhs: &ast.Field{Recv: asRead("this"), Name: "y"}, Rhs: asRead("y")},
		},
	}
	prog := &ast.Program{
		Classes: []*ast.Class{cls},
		Statements: []ast.Statement{
			&ast.Assign{Lhs: ident("p"), Rhs: &ast.Constructor{Type: "Pt", Args: []ast.RExpr{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}}}},
			&ast.RExprStmt{Expr: &ast.DotCall{
				Recv:   &ast.AsLExpr{LExpr: &ast.Field{Recv: asRead("p"), Name: "x"}},
				Method: "PRINT",
			}},
		},
	}

	res := Run(prog)
	require.True(t, res.OK, "expected no diagnostics, got: %v", res.Bag.Errors())

	typ, ok := res.Lattice.GetVarFromType("Pt", "x")
	require.True(t, ok)
	assert.Equal(t, "Int", typ)
}

func TestConstructorAuditRejectsUndeclaredClass(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Statement{
			&ast.Assign{Lhs: ident("x"), Rhs: &ast.Constructor{Type: "Nope"}},
		},
	}

	res := Run(prog)
	assert.False(t, res.OK)
	require.NotEmpty(t, res.Bag.Errors())
}
