package driver

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/alexanderowen/quackc/internal/check"
	"github.com/alexanderowen/quackc/internal/config"
	"github.com/alexanderowen/quackc/internal/diag"
	"github.com/alexanderowen/quackc/internal/emit"
	"github.com/alexanderowen/quackc/internal/quackparse"
)

// ReadSourceProcessor loads the source file named by ctx.SourcePath.
type ReadSourceProcessor struct{}

func (ReadSourceProcessor) Process(ctx *Context) *Context {
	if ctx.Aborted() {
		return ctx
	}
	data, err := os.ReadFile(ctx.SourcePath)
	if err != nil {
		ctx.Abort(errors.Wrapf(err, "reading %s", ctx.SourcePath))
		return ctx
	}
	ctx.Source = data
	return ctx
}

// ParseProcessor runs the test-convenience lexer/parser (internal/quackparse)
// over the source, producing the AST the later stages annotate.
type ParseProcessor struct{}

func (ParseProcessor) Process(ctx *Context) *Context {
	if ctx.Aborted() {
		return ctx
	}
	p := quackparse.NewParser(string(ctx.Source))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		ctx.Abort(errors.Errorf("parse failure: %v", errs[0]))
		return ctx
	}
	ctx.Program = prog
	return ctx
}

// SemanticProcessor runs C4 (constructor audit), C5 (hierarchy builder),
// and C6 (type checker) in strict sequence, matching spec §2's data flow.
// A pre-pass failure aborts before the next stage runs; the checker
// itself always runs to completion, accumulating diagnostics in ctx.Bag.
type SemanticProcessor struct{}

func (SemanticProcessor) Process(ctx *Context) *Context {
	if ctx.Aborted() {
		return ctx
	}

	if !check.AuditConstructors(ctx.Program, ctx.Bag) {
		return ctx
	}

	lat := check.BuildHierarchy(ctx.Program, ctx.Bag)
	if lat == nil {
		return ctx
	}
	ctx.Lattice = lat

	checker := check.NewChecker(lat, ctx.Bag)
	checker.Check(ctx.Program)
	return ctx
}

// EmitProcessor writes the checked AST's C translation unit to
// ctx.GeneratedCPath, per C7. It does nothing if a prior stage aborted or
// recorded diagnostics -- the emitter is total on a well-typed AST and
// must never run on one that isn't.
type EmitProcessor struct{}

func (EmitProcessor) Process(ctx *Context) *Context {
	if ctx.Aborted() {
		return ctx
	}
	f, err := os.Create(ctx.GeneratedCPath)
	if err != nil {
		ctx.Abort(errors.Wrapf(err, "creating %s", ctx.GeneratedCPath))
		return ctx
	}
	defer f.Close()

	if err := emit.New(ctx.Lattice, ctx.RunID).Emit(ctx.Program, f); err != nil {
		ctx.Abort(errors.Wrap(err, "emitting C translation unit"))
	}
	return ctx
}

// ToolchainProcessor compiles the generated translation unit and links it
// against the runtime object file, per spec §6's output contract: compile
// q.c to q.o, link q.o with Builtins.o to produce the named binary.
type ToolchainProcessor struct {
	Cfg *config.Config
}

func (t ToolchainProcessor) Process(ctx *Context) *Context {
	if ctx.Aborted() {
		return ctx
	}

	objPath := ctx.GeneratedCPath + ".o"
	if n := len(ctx.GeneratedCPath); n > 2 && ctx.GeneratedCPath[n-2:] == ".c" {
		objPath = ctx.GeneratedCPath[:n-2] + ".o"
	}
	if err := run(t.Cfg.CC, "-c", ctx.GeneratedCPath, "-o", objPath); err != nil {
		ctx.Abort(errors.Wrap(err, "compiling generated translation unit"))
		return ctx
	}

	if err := run(t.Cfg.CC, objPath, t.Cfg.RuntimeObj, "-o", ctx.OutputBinary); err != nil {
		ctx.Abort(errors.Wrap(err, "linking against the runtime object"))
		return ctx
	}

	if !t.Cfg.KeepGeneratedC {
		os.Remove(ctx.GeneratedCPath)
		os.Remove(objPath)
	}
	return ctx
}

// PrintDiagnostics writes every recorded diagnostic to stderr, one per line,
// prefixed with its source line number per spec §6.
func PrintDiagnostics(bag *diag.Bag) {
	for _, e := range bag.Errors() {
		fmt.Fprintln(os.Stderr, e.Error())
	}
}
