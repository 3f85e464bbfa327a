// Package check implements the compiler's three semantic passes: the
// constructor audit (C4, audit.go), the hierarchy builder (C5,
// hierarchy.go), and the flow-sensitive type checker (C6, this file and
// expr.go). All three are grounded on funvibe/funxy's internal/analyzer
// multi-pass design (Naming -> Headers -> Instances -> Bodies, each pass
// recorded as a distinct function over the whole AST rather than a single
// recursive walk that does everything at once) and, for the exact join
// and fixpoint semantics, on original_source/TranslatorVisitor.cpp and
// visitors.cpp -- the "qc" compiler this package's behavior is distilled
// from.
package check

import (
	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/diag"
	"github.com/alexanderowen/quackc/internal/symtab"
	"github.com/alexanderowen/quackc/internal/token"
	"github.com/alexanderowen/quackc/internal/typetree"
)

// Checker carries the main pass's state (spec §4.6): the current scope
// plus the flags that change meaning as the walk descends into class
// bodies, methods, and while loops.
type Checker struct {
	lat *typetree.Lattice
	bag *diag.Bag

	programScope *symtab.Scope
	scope        *symtab.Scope

	inMethod bool
	inWhile  bool
	inClass  bool

	mustRepeat bool
	returned   bool

	className  string
	supertype  string
	returnType string
}

// NewChecker constructs a checker over a lattice already built by C5.
func NewChecker(lat *typetree.Lattice, bag *diag.Bag) *Checker {
	return &Checker{lat: lat, bag: bag, programScope: symtab.New()}
}

// Check runs C6 over the whole program: every class's constructor body,
// then every method body, then the top-level statements. It reports true
// iff no diagnostic was recorded.
func (c *Checker) Check(prog *ast.Program) bool {
	c.scope = c.programScope

	for _, cls := range prog.Classes {
		if c.bag.Full() {
			break
		}
		c.checkClass(cls)
	}

	for _, cls := range prog.Classes {
		if c.bag.Full() {
			break
		}
		for _, m := range cls.Methods {
			if c.bag.Full() {
				break
			}
			c.checkMethod(cls, m)
		}
	}

	c.scope = c.programScope
	c.inClass = false
	c.inMethod = false
	c.className = ""
	c.supertype = ""
	c.checkStmts(prog.Statements)
	prog.AttachedScope = c.scope

	return c.bag.Len() == 0
}

// checkClass checks one class's constructor body (the class's own
// statements), per spec §4.6's "Class" rule: a fresh scope parented at the
// program scope, seeded with the class's formals, in which `this.field =
// e` assignments populate the lattice's instance variables.
func (c *Checker) checkClass(cls *ast.Class) {
	classScope := symtab.NewChild(c.programScope)
	for _, p := range cls.FormalArgs {
		classScope.Define(p.Name, p.Type)
	}

	supertype := cls.Extends
	if supertype == "" {
		supertype = typetree.Obj
	}

	savedScope, savedInClass, savedClassName, savedSupertype := c.scope, c.inClass, c.className, c.supertype
	c.scope = classScope
	c.inClass = true
	c.className = cls.Name
	c.supertype = supertype

	c.checkStmts(cls.Stmts)
	cls.AttachedScope = c.scope

	c.scope, c.inClass, c.className, c.supertype = savedScope, savedInClass, savedClassName, savedSupertype
}

// checkMethod checks one method body, per spec §4.6's "Method" rule:
// override validation against the supertype's same-named method
// (contravariant formals, covariant return), then body statements, then a
// return-coverage check.
func (c *Checker) checkMethod(cls *ast.Class, m *ast.Method) {
	methodScope := symtab.NewChild(c.programScope)
	for _, p := range m.FormalArgs {
		methodScope.Define(p.Name, p.Type)
	}

	returnType := m.DeclaredReturn
	implicitNothing := returnType == ""
	if implicitNothing {
		returnType = typetree.Nothing
	}

	supertype := cls.Extends
	if supertype == "" {
		supertype = typetree.Obj
	}
	c.checkOverride(m, supertype, returnType)

	savedScope, savedInMethod, savedReturnType, savedReturned, savedClassName, savedSupertype :=
		c.scope, c.inMethod, c.returnType, c.returned, c.className, c.supertype

	c.scope = methodScope
	c.inMethod = true
	c.returnType = returnType
	c.returned = implicitNothing
	c.className = cls.Name
	c.supertype = supertype

	c.checkStmts(m.Stmts)

	if !c.returned {
		c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: m.Ln},
			"method %s does not return on every path", m.Name))
	}

	c.scope, c.inMethod, c.returnType, c.returned, c.className, c.supertype =
		savedScope, savedInMethod, savedReturnType, savedReturned, savedClassName, savedSupertype
}

func (c *Checker) checkOverride(m *ast.Method, supertype, returnType string) {
	super, ok := c.lat.TypeGetMethod(supertype, m.Name)
	if !ok {
		return
	}
	if len(m.FormalArgs) != len(super.ArgTypes) {
		c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: m.Ln},
			"override %s has %d parameters, overridden method has %d", m.Name, len(m.FormalArgs), len(super.ArgTypes)))
		return
	}
	for i, p := range m.FormalArgs {
		if !c.lat.IsSupertype(p.Type, super.ArgTypes[i]) {
			c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: p.Ln},
				"override %s parameter %d must be %s or a supertype, got %s", m.Name, i+1, super.ArgTypes[i], p.Type))
		}
	}
	if !c.lat.IsSubtype(returnType, super.ReturnType) {
		c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: m.Ln},
			"override %s return type must be %s or a subtype, got %s", m.Name, super.ReturnType, returnType))
	}
}

// isThis reports whether an RExpr is a bare reference to `this`, whether
// expressed directly as an Ident or wrapped as an AsLExpr around one --
// both shapes a parser may produce for a receiver expression.
func isThis(e ast.RExpr) bool {
	if id, ok := e.(*ast.Ident); ok {
		return id.Name == "this"
	}
	if wrapped, ok := e.(*ast.AsLExpr); ok {
		if id, ok := wrapped.LExpr.(*ast.Ident); ok {
			return id.Name == "this"
		}
	}
	return false
}

func (c *Checker) checkStmts(stmts []ast.Statement) {
	for _, s := range stmts {
		if c.bag.Full() {
			return
		}
		c.checkStmt(s)
	}
}

func (c *Checker) checkStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.Assign:
		c.checkAssign(n)
	case *ast.Return:
		c.checkReturn(n)
	case *ast.RExprStmt:
		c.typeOf(n.Expr)
	case *ast.While:
		c.checkWhile(n)
	case *ast.IfBlock:
		c.checkIfBlock(n)
	}
}

func (c *Checker) checkReturn(r *ast.Return) {
	if !c.inMethod {
		c.bag.Add(diag.New(diag.ErrStructural, token.Token{Line: r.Ln}, "return outside a method"))
		return
	}
	t := c.typeOf(r.Expr)
	if t == "" {
		return
	}
	if c.lat.IsSubtype(t, c.returnType) {
		c.returned = true
		return
	}
	c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: r.Ln},
		"return type %s is not %s or a subtype", t, c.returnType))
}

// checkAssign implements spec §4.6's assignment rule, including the
// annotation/existing-binding/widening decision table and the while-loop
// mustRepeat trigger.
func (c *Checker) checkAssign(a *ast.Assign) {
	rhsType := c.typeOf(a.Rhs)

	switch lhs := a.Lhs.(type) {
	case *ast.Ident:
		if rhsType == "" {
			return
		}
		existing, bound := c.scope.Lookup(lhs.Name)
		annotated := a.AnnotatedType != ""

		var t string
		switch {
		case annotated && bound:
			t = c.lat.LCA(a.AnnotatedType, c.lat.LCA(existing, rhsType))
		case bound:
			t = c.lat.LCA(existing, rhsType)
			if t != existing && c.inWhile && t != typetree.Obj {
				c.mustRepeat = true
			}
		case annotated:
			t = c.lat.LCA(a.AnnotatedType, rhsType)
		default:
			t = rhsType
		}
		c.scope.Define(lhs.Name, t)

	case *ast.Field:
		if isThis(lhs.Recv) && c.inClass {
			if rhsType != "" {
				c.lat.AddInstanceVar(c.className, lhs.Name, rhsType)
			}
			return
		}
		recvType := c.typeOf(lhs.Recv)
		if recvType == "" {
			return
		}
		if _, ok := c.lat.GetVarFromType(recvType, lhs.Name); !ok {
			c.bag.Add(diag.New(diag.ErrNameNotFound, token.Token{Line: lhs.Ln},
				"%s has no instance variable %s", recvType, lhs.Name))
		}
	}
}

// checkWhile implements spec §4.6's "While" rule: a condition-Boolean
// check, then a per-statement local fixpoint that re-checks a statement
// while it keeps widening a loop-carried variable.
func (c *Checker) checkWhile(w *ast.While) {
	condType := c.typeOf(w.Cond)
	if condType != "" && condType != typetree.Boolean {
		c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: w.Cond.Line()},
			"while condition must be Boolean, got %s", condType))
	}

	savedInWhile := c.inWhile
	c.inWhile = true
	for _, stmt := range w.Body {
		if c.bag.Full() {
			break
		}
		c.mustRepeat = false
		c.checkStmt(stmt)
		for c.mustRepeat {
			c.mustRepeat = false
			c.checkStmt(stmt)
		}
	}
	c.inWhile = savedInWhile

	w.AttachedScope = c.scope
}

// checkIfBlock implements spec §4.6's "If-blocks" rule. Every branch gets
// its own child scope parented directly at the outer scope (so later
// elif/else branches never observe an earlier branch's locals); after all
// branches are checked, the branch scopes (the if-scope standing in twice
// when no else is present) are joined by intersection, the joined scope
// becomes the new enclosing scope merged with the outer scope's own
// bindings, and each branch's novel locals are attached to its node via
// difference for the emitter to declare.
func (c *Checker) checkIfBlock(b *ast.IfBlock) {
	outer := c.scope

	checkCond := func(cond ast.RExpr) {
		t := c.typeOf(cond)
		if t != "" && t != typetree.Boolean {
			c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: cond.Line()},
				"if/elif condition must be Boolean, got %s", t))
		}
	}

	c.scope = outer
	checkCond(b.If.Cond)
	ifScope := symtab.NewChild(outer)
	c.scope = ifScope
	c.checkStmts(b.If.Stmts)

	elifScopes := make([]*symtab.Scope, len(b.Elifs))
	for i, el := range b.Elifs {
		c.scope = outer
		checkCond(el.Cond)
		elifScope := symtab.NewChild(outer)
		c.scope = elifScope
		c.checkStmts(el.Stmts)
		elifScopes[i] = elifScope
	}

	var elseScope *symtab.Scope
	if b.Else != nil {
		elseScope = symtab.NewChild(outer)
		c.scope = elseScope
		c.checkStmts(b.Else.Stmts)
	}

	siblings := append([]*symtab.Scope{ifScope}, elifScopes...)
	standIn := ifScope
	if elseScope != nil {
		standIn = elseScope
	}
	siblings = append(siblings, standIn)

	joined := symtab.Intersection(outer, siblings, c.lat)
	joined.WithParent(outer.Parent())
	joined.Merge(outer)
	c.scope = joined

	b.If.AttachedScope = symtab.Difference(ifScope, joined)
	for i, el := range b.Elifs {
		el.AttachedScope = symtab.Difference(elifScopes[i], joined)
	}
	if b.Else != nil {
		b.Else.AttachedScope = symtab.Difference(elseScope, joined)
	}
}
