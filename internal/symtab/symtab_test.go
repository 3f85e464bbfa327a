package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLattice struct {
	lca map[[2]string]string
}

func (f fakeLattice) LCA(a, b string) string {
	if a == b {
		return a
	}
	if v, ok := f.lca[[2]string{a, b}]; ok {
		return v
	}
	if v, ok := f.lca[[2]string{b, a}]; ok {
		return v
	}
	return "Obj"
}

func TestLookupWalksChain(t *testing.T) {
	root := New()
	root.Define("x", "Int")
	child := NewChild(root)

	typ, ok := child.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "Int", typ)

	_, ok = child.LookupLocal("x")
	assert.False(t, ok, "LookupLocal must not see parent bindings")
}

func TestIntersectionJoinsAndDrops(t *testing.T) {
	lat := fakeLattice{lca: map[[2]string]string{{"String", "Int"}: "Obj"}}

	base := New()
	base.Define("x", "Int")

	ifBranch := NewChild(base)
	ifBranch.Define("x", "String")
	ifBranch.Define("onlyIf", "Int")

	elseBranch := NewChild(base)
	elseBranch.Define("x", "Int")

	joined := Intersection(base, []*Scope{ifBranch, elseBranch}, lat)

	typ, ok := joined.LookupLocal("x")
	require.True(t, ok)
	assert.Equal(t, "Obj", typ)

	_, ok = joined.LookupLocal("onlyIf")
	assert.False(t, ok, "branch-only locals must be dropped from the join")
}

func TestDifferenceIsBranchLocalBeyondJoin(t *testing.T) {
	joined := New()
	joined.Define("x", "Obj")

	branch := NewChild(joined)
	branch.Define("x", "String")
	branch.Define("y", "Int")

	diff := Difference(branch, joined)
	_, hasX := diff.LookupLocal("x")
	assert.False(t, hasX)
	yType, hasY := diff.LookupLocal("y")
	require.True(t, hasY)
	assert.Equal(t, "Int", yType)
}

func TestMergeIsOneLevelAndDoesNotOverwrite(t *testing.T) {
	s := New()
	s.Define("x", "Int")

	other := New()
	other.Define("x", "String")
	other.Define("z", "Boolean")

	s.Merge(other)

	typ, _ := s.LookupLocal("x")
	assert.Equal(t, "Int", typ, "merge must not overwrite an existing local")
	typ, ok := s.LookupLocal("z")
	require.True(t, ok)
	assert.Equal(t, "Boolean", typ)
}
