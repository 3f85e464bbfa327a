package check

import (
	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/diag"
	"github.com/alexanderowen/quackc/internal/token"
	"github.com/alexanderowen/quackc/internal/typetree"
)

// typeOf implements spec §4.5's expression typing. It returns "" on a
// recorded error, allowing callers to propagate the failure silently
// rather than cascade a second diagnostic off a bogus type.
func (c *Checker) typeOf(e ast.RExpr) string {
	switch n := e.(type) {
	case *ast.IntLit:
		return typetree.Int
	case *ast.StringLit:
		return typetree.String
	case *ast.Empty:
		return typetree.Nothing
	case *ast.Not:
		t := c.typeOf(n.Expr)
		if t != "" && t != typetree.Boolean {
			c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: n.Ln}, "not requires a Boolean operand, got %s", t))
		}
		return typetree.Boolean
	case *ast.Constructor:
		for _, a := range n.Args {
			c.typeOf(a)
		}
		return n.Type
	case *ast.Binary:
		return c.typeOfBinary(n)
	case *ast.DotCall:
		return c.typeOfDotCall(n)
	case *ast.AsLExpr:
		return c.typeOfL(n.LExpr)
	}
	return ""
}

func (c *Checker) typeOfBinary(n *ast.Binary) string {
	lt := c.typeOf(n.Left)
	rt := c.typeOf(n.Right)
	if lt == "" || rt == "" {
		return ""
	}
	if lt != rt {
		c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: n.Ln},
			"operands of %s disagree: %s vs %s", n.Op.MethodName(), lt, rt))
		return ""
	}
	// AND/OR never reach the vtable: the emitter short-circuits them as
	// ternaries on the runtime boolean singleton (spec §4.7), so they have
	// no corresponding entry in the method table to resolve.
	if n.Op.IsLogical() {
		if lt != typetree.Boolean {
			c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: n.Ln},
				"operands of %s must be Boolean, got %s", n.Op.MethodName(), lt))
			return ""
		}
		return typetree.Boolean
	}
	if !c.lat.TypeHasMethod(lt, n.Op.MethodName()) {
		c.bag.Add(diag.New(diag.ErrNameNotFound, token.Token{Line: n.Ln},
			"%s has no method %s", lt, n.Op.MethodName()))
		return ""
	}
	if n.Op.IsComparison() {
		return typetree.Boolean
	}
	return lt
}

func (c *Checker) typeOfDotCall(n *ast.DotCall) string {
	recvType := c.typeOf(n.Recv)
	if recvType == "" {
		return ""
	}
	m, ok := c.lat.TypeGetMethod(recvType, n.Method)
	if !ok {
		c.bag.Add(diag.New(diag.ErrNameNotFound, token.Token{Line: n.Ln},
			"%s has no method %s", recvType, n.Method))
		return ""
	}
	if len(n.Args) != len(m.ArgTypes) {
		c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: n.Ln},
			"%s expects %d arguments, got %d", n.Method, len(m.ArgTypes), len(n.Args)))
		return m.ReturnType
	}
	for i, a := range n.Args {
		at := c.typeOf(a)
		if at == "" {
			continue
		}
		if !c.lat.IsSubtype(at, m.ArgTypes[i]) {
			c.bag.Add(diag.New(diag.ErrTypeMismatch, token.Token{Line: a.Line()},
				"argument %d to %s must be %s or a subtype, got %s", i+1, n.Method, m.ArgTypes[i], at))
		}
	}
	return m.ReturnType
}

// typeOfL types an LExpr used in value position: a bare variable read or a
// field read.
func (c *Checker) typeOfL(e ast.LExpr) string {
	switch n := e.(type) {
	case *ast.Ident:
		if n.Name == "this" {
			return c.className
		}
		if n.Name == "true" || n.Name == "false" {
			return typetree.Boolean
		}
		t, ok := c.scope.Lookup(n.Name)
		if !ok {
			c.bag.Add(diag.New(diag.ErrNameNotFound, token.Token{Line: n.Ln},
				"use of uninitialized variable %s", n.Name))
			return ""
		}
		return t
	case *ast.Field:
		recvType := c.typeOf(n.Recv)
		if recvType == "" {
			return ""
		}
		t, ok := c.lat.GetVarFromType(recvType, n.Name)
		if !ok {
			c.bag.Add(diag.New(diag.ErrNameNotFound, token.Token{Line: n.Ln},
				"%s has no instance variable %s", recvType, n.Name))
			return ""
		}
		return t
	}
	return ""
}
