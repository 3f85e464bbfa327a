// Package driver implements C8: it sequences the constructor audit,
// hierarchy builder, and type checker, then the C emitter, then invokes
// the external C toolchain, per spec §2's data flow
// AST -> C4 -> C5 -> C6 -> C7 -> toolchain.
//
// Grounded on funvibe/funxy's internal/pipeline package for the
// Pipeline/Processor/Context shape: a fixed list of stages each taking and
// returning the same mutable context, run unconditionally in sequence.
// Unlike funxy's pipeline (built for an LSP that wants every stage's
// diagnostics even after a failure), spec §5 requires strict sequential
// abort: a failing pre-pass must skip every later stage. Each Processor
// here honors that by checking ctx.Aborted() before doing any work, so the
// Pipeline itself can stay a plain unconditional loop in the teacher's
// style while the abort discipline lives in the stages.
package driver

import (
	"github.com/google/uuid"

	"github.com/alexanderowen/quackc/internal/ast"
	"github.com/alexanderowen/quackc/internal/diag"
	"github.com/alexanderowen/quackc/internal/typetree"
)

// Context carries state threaded through every pipeline stage.
type Context struct {
	RunID uuid.UUID

	SourcePath string
	Source     []byte

	Program *ast.Program
	Lattice *typetree.Lattice
	Bag     *diag.Bag

	GeneratedCPath string
	OutputBinary   string

	err error
}

// NewContext constructs a fresh context for one compiler invocation.
func NewContext(sourcePath string) *Context {
	return &Context{
		RunID:      uuid.New(),
		SourcePath: sourcePath,
		Bag:        diag.NewBag(),
	}
}

// Abort records a hard failure (I/O, parse, toolchain) that stops every
// subsequent stage.
func (c *Context) Abort(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Aborted reports whether a prior stage recorded a hard failure or the
// diagnostic bag is non-empty.
func (c *Context) Aborted() bool {
	return c.err != nil || c.Bag.Len() > 0
}

// Err returns the first hard failure recorded, if any.
func (c *Context) Err() error { return c.err }

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs a fixed sequence of Processors over one Context.
type Pipeline struct {
	processors []Processor
}

// NewPipeline constructs a pipeline from an ordered list of stages.
func NewPipeline(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order. Stages are responsible for
// no-op'ing once ctx.Aborted() is true.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	return ctx
}
