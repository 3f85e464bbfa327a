package typetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAnimalHierarchy(t *testing.T) *Lattice {
	lat := New()
	require.True(t, lat.AddSubtype("Animal", Obj))
	require.True(t, lat.AddSubtype("Dog", "Animal"))
	require.True(t, lat.AddSubtype("Cat", "Animal"))
	require.True(t, lat.AddSubtype("Poodle", "Dog"))
	return lat
}

func TestBuiltinsPrepopulated(t *testing.T) {
	lat := New()
	assert.True(t, lat.TypeHasMethod(Int, "PLUS"))
	assert.True(t, lat.TypeHasMethod(Int, "PRINT")) // inherited from Obj
	assert.True(t, lat.TypeHasMethod(String, "LESS"))
	assert.True(t, lat.TypeHasMethod(Boolean, "EQUALS"))
	assert.False(t, lat.TypeHasMethod(String, "PLUS"))
}

func TestLCALaws(t *testing.T) {
	lat := buildAnimalHierarchy(t)

	// LCA(a,a) = a
	assert.Equal(t, "Dog", lat.LCA("Dog", "Dog"))

	// LCA(a,b) = LCA(b,a)
	assert.Equal(t, lat.LCA("Dog", "Cat"), lat.LCA("Cat", "Dog"))

	// LCA(a, LCA(b,c)) = LCA(LCA(a,b), c)
	left := lat.LCA("Poodle", lat.LCA("Dog", "Cat"))
	right := lat.LCA(lat.LCA("Poodle", "Dog"), "Cat")
	assert.Equal(t, left, right)

	// LCA(a, Obj) = Obj
	assert.Equal(t, Obj, lat.LCA("Poodle", Obj))

	assert.Equal(t, "Animal", lat.LCA("Dog", "Cat"))
	assert.Equal(t, "Dog", lat.LCA("Poodle", "Dog"))
}

func TestSubtypeReflexivityAndTransitivity(t *testing.T) {
	lat := buildAnimalHierarchy(t)

	assert.True(t, lat.IsSubtype("Poodle", "Poodle"))
	assert.True(t, lat.IsSubtype("Poodle", "Dog"))
	assert.True(t, lat.IsSubtype("Dog", "Animal"))
	assert.True(t, lat.IsSubtype("Poodle", "Animal"))
	assert.False(t, lat.IsSubtype("Cat", "Dog"))
	assert.True(t, lat.IsSupertype("Animal", "Dog"))
}

func TestAddSubtypeRejectsUndefinedParent(t *testing.T) {
	lat := New()
	assert.False(t, lat.AddSubtype("Foo", "Bar"))
}

func TestInstanceVarWidening(t *testing.T) {
	lat := buildAnimalHierarchy(t)
	require.True(t, lat.AddSubtype("Shelter", Obj))

	assert.True(t, lat.AddInstanceVar("Shelter", "pet", "Dog"))
	typ, ok := lat.GetVarFromType("Shelter", "pet")
	require.True(t, ok)
	assert.Equal(t, "Dog", typ)

	// Second assignment under a different dynamic context widens via LCA.
	assert.True(t, lat.AddInstanceVar("Shelter", "pet", "Cat"))
	typ, ok = lat.GetVarFromType("Shelter", "pet")
	require.True(t, ok)
	assert.Equal(t, "Animal", typ)
}

func TestMethodLookupWalksToParent(t *testing.T) {
	lat := buildAnimalHierarchy(t)
	bark := &Method{ID: "bark", ArgTypes: nil, ReturnType: Nothing}
	require.True(t, lat.AddMethodToType("Dog", bark))

	m, ok := lat.TypeGetMethod("Poodle", "bark")
	require.True(t, ok)
	assert.Equal(t, "bark", m.ID)

	_, ok = lat.TypeGetMethod("Cat", "bark")
	assert.False(t, ok)
}

func TestFirstDeclaredMethodWins(t *testing.T) {
	lat := New()
	require.True(t, lat.AddSubtype("A", Obj))
	first := &Method{ID: "f", ReturnType: Int}
	second := &Method{ID: "f", ReturnType: String}
	assert.True(t, lat.AddMethodToType("A", first))
	assert.False(t, lat.AddMethodToType("A", second))

	m, _ := lat.TypeGetMethod("A", "f")
	assert.Equal(t, Int, m.ReturnType)
}
