package check

import (
	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/diag"
	"github.com/alexanderowen/quackc/internal/token"
	"github.com/alexanderowen/quackc/internal/typetree"
)

// BuildHierarchy is C5, the second pre-pass: walks class declarations in
// source order and constructs the type lattice (C1) from their signatures.
// A class whose extends target isn't yet resolvable (a forward reference
// to a class declared later in the same file) is deferred onto a
// to-be-defined queue and retried once more classes have landed; a queue
// that is still non-empty after a full pass over the remaining classes
// indicates either a genuinely undefined supertype or a cycle, and is
// reported as a structural error.
func BuildHierarchy(prog *ast.Program, bag *diag.Bag) *typetree.Lattice {
	lat := typetree.New()

	pending := append([]*ast.Class(nil), prog.Classes...)
	for {
		progressed := false
		var stillPending []*ast.Class
		for _, c := range pending {
			super := c.Extends
			if super == "" {
				super = typetree.Obj
			}
			if lat.AddSubtype(c.Name, super) {
				progressed = true
				recordMethodSignatures(lat, c)
				continue
			}
			stillPending = append(stillPending, c)
		}
		pending = stillPending
		if len(pending) == 0 || !progressed {
			break
		}
	}

	if len(pending) > 0 {
		for _, c := range pending {
			bag.Add(diag.New(diag.ErrStructural, token.Token{Line: c.Ln},
				"class %s has an undefined or cyclic supertype %s", c.Name, c.Extends))
		}
		return nil
	}

	return lat
}

// recordMethodSignatures records each method's parameter and return types,
// taken verbatim from source, on the class's freshly created lattice node.
// First-declared wins within a class body, matching typetree.AddMethodToType.
func recordMethodSignatures(lat *typetree.Lattice, c *ast.Class) {
	for _, m := range c.Methods {
		argTypes := make([]string, len(m.FormalArgs))
		for i, p := range m.FormalArgs {
			argTypes[i] = p.Type
		}
		ret := m.DeclaredReturn
		if ret == "" {
			ret = typetree.Nothing
		}
		lat.AddMethodToType(c.Name, &typetree.Method{
			ID:         m.Name,
			ArgTypes:   argTypes,
			ReturnType: ret,
		})
	}
}
