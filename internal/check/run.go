package check

import (
	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/diag"
	"github.com/alexanderowen/quackc/internal/typetree"
)

// Result bundles the outcome of running the full C4->C5->C6 sequence.
type Result struct {
	Lattice *typetree.Lattice
	Bag     *diag.Bag
	OK      bool
}

// Run sequences the three semantic passes over prog, matching spec §2's
// data flow: AST -> C4 (audit) -> C5 (build lattice) -> C6 (infer & check,
// annotate AST). Any pre-pass failure aborts immediately, before the
// lattice or the checker ever run; the type checker itself always runs to
// completion (bounded by the diagnostic bag's soft cap) so a single
// invocation surfaces as many errors as it can.
func Run(prog *ast.Program) Result {
	bag := diag.NewBag()

	if !AuditConstructors(prog, bag) {
		return Result{Bag: bag, OK: false}
	}

	lat := BuildHierarchy(prog, bag)
	if lat == nil {
		return Result{Bag: bag, OK: false}
	}

	checker := NewChecker(lat, bag)
	ok := checker.Check(prog)
	return Result{Lattice: lat, Bag: bag, OK: ok}
}
