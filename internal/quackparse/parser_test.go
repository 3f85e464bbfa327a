package quackparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/check"
)

func TestParsePointClassEndToEnd(t *testing.T) {
	src := `
class Pt(x: Int, y: Int) {
    this.x = x;
    this.y = y;
}
p = Pt(1, 2);
p.x.PRINT();
`
	p := NewParser(src)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	require.Len(t, prog.Classes, 1)
	assert.Equal(t, "Pt", prog.Classes[0].Name)

	res := check.Run(prog)
	require.True(t, res.OK, "expected no diagnostics, got: %v", res.Bag.Errors())
}

func TestParseIfElifElse(t *testing.T) {
	src := `
x = 3;
if x < 1 {
    x = "a";
} elif x < 2 {
    x = "b";
} else {
    x = 4;
}
`
	p := NewParser(src)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	require.Len(t, prog.Statements, 2)

	block, ok := prog.Statements[1].(*ast.IfBlock)
	require.True(t, ok)
	assert.Len(t, block.Elifs, 1)
	require.NotNil(t, block.Else)
}

func TestParseWhileLoopChecks(t *testing.T) {
	src := `
x = 1;
while x < 10 {
    x = x + 1;
}
`
	p := NewParser(src)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())

	res := check.Run(prog)
	require.True(t, res.OK, "expected no diagnostics, got: %v", res.Bag.Errors())
}

func TestParseMethodWithOverride(t *testing.T) {
	src := `
class A() {
    def f(): Int {
        return 1;
    }
}
class B() extends A {
    def f(): String {
        return "x";
    }
}
`
	p := NewParser(src)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())

	res := check.Run(prog)
	assert.False(t, res.OK, "covariance violation must be rejected")
}

func TestUninitializedVariableRejected(t *testing.T) {
	src := `y = foo;`
	p := NewParser(src)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())

	res := check.Run(prog)
	assert.False(t, res.OK)
	require.NotEmpty(t, res.Bag.Errors())
	assert.Contains(t, res.Bag.Errors()[0].Message, "foo")
}
