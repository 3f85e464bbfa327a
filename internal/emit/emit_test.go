package emit

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/check"
)

// expectedMarkers loads the line-oriented "must contain" fixture for a
// golden case out of a txtar archive, one file per case. Fixtures store
// expected C fragments rather than a byte-exact golden file, since the
// emitter's whitespace is not itself part of the contract.
func expectedMarkers(t *testing.T, archive string, file string) []string {
	t.Helper()
	a := txtar.Parse([]byte(archive))
	for _, f := range a.Files {
		if f.Name == file {
			return splitNonEmptyLines(string(f.Data))
		}
	}
	t.Fatalf("txtar fixture missing file %q", file)
	return nil
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			line := s[start:i]
			if line != "" {
				out = append(out, line)
			}
			start = i + 1
		}
	}
	return out
}

const pointClassFixture = `
-- markers.txt --
typedef struct class_Pt_struct *the_class_Pt;
typedef struct obj_Pt_struct {
obj_Pt new_Pt(obj_Int x, obj_Int y) {
self->clazz = the_class_Pt;
(self)->x = x;
(self)->y = y;
return self;
struct class_Pt_struct the_class_Pt_struct = {
.construct = new_Pt,
`

func TestEmitConstructorAndObjectLayout(t *testing.T) {
	cls := &ast.Class{
		Name: "Pt",
		FormalArgs: []*ast.Param{
			{Name: "x", Type: "Int"},
			{Name: "y", Type: "Int"},
		},
		Stmts: []ast.Statement{
			&ast.Assign{Lhs: &ast.Field{Recv: &ast.AsLExpr{LExpr: &ast.Ident{Name: "this"}}, Name: "x"}, Rhs: &ast.AsLExpr{LExpr: &ast.Ident{Name: "x"}}},
			&ast.Assign{Lhs: &ast.Field{Recv: &ast.AsLExpr{LExpr: &ast.Ident{Name: "this"}}, Name: "y"}, Rhs: &ast.AsLExpr{LExpr: &ast.Ident{Name: "y"}}},
		},
	}
	prog := &ast.Program{Classes: []*ast.Class{cls}}

	res := check.Run(prog)
	require.True(t, res.OK, "expected no diagnostics, got: %v", res.Bag.Errors())

	var buf bytes.Buffer
	require.NoError(t, New(res.Lattice, uuid.New()).Emit(prog, &buf))
	out := buf.String()

	for _, marker := range expectedMarkers(t, pointClassFixture, "markers.txt") {
		assert.Contains(t, out, marker)
	}
}

func TestEmitIfBlockUsesUniformBoolDereference(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Statement{
			&ast.Assign{Lhs: &ast.Ident{Name: "x"}, Rhs: &ast.IntLit{Value: 3}},
			&ast.IfBlock{
				If: &ast.IfClause{
					Cond:  &ast.AsLExpr{LExpr: &ast.Ident{Name: "true"}},
					Stmts: []ast.Statement{&ast.Assign{Lhs: &ast.Ident{Name: "x"}, Rhs: &ast.StringLit{Value: "hi"}}},
				},
				Else: &ast.ElseClause{
					Stmts: []ast.Statement{&ast.Assign{Lhs: &ast.Ident{Name: "x"}, Rhs: &ast.IntLit{Value: 4}}},
				},
			},
		},
	}

	res := check.Run(prog)
	require.True(t, res.OK, "expected no diagnostics, got: %v", res.Bag.Errors())

	var buf bytes.Buffer
	require.NoError(t, New(res.Lattice, uuid.New()).Emit(prog, &buf))
	out := buf.String()

	assert.Contains(t, out, "if (((lit_true)->value)) {")
	assert.Contains(t, out, "else {")
}

func TestEmitShortCircuitsAndOr(t *testing.T) {
	e := &stmtEmitter{w: nil}
	left := &ast.AsLExpr{LExpr: &ast.Ident{Name: "true"}}
	right := &ast.AsLExpr{LExpr: &ast.Ident{Name: "false"}}

	and := e.emitBinary(&ast.Binary{Op: ast.OpAnd, Left: left, Right: right})
	assert.Equal(t, "(((lit_true)->value) ? (lit_false) : lit_false)", and)

	or := e.emitBinary(&ast.Binary{Op: ast.OpOr, Left: left, Right: right})
	assert.Equal(t, "(((lit_true)->value) ? lit_true : (lit_false))", or)
}
