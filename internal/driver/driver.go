package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/alexanderowen/quackc/internal/cache"
	"github.com/alexanderowen/quackc/internal/config"
)

// Exit codes per spec §6: 0 on successful compilation, -1 on argument
// misuse, unreadable input, parse failure, or type errors.
const (
	ExitOK      = 0
	ExitFailure = -1
)

// Driver owns one compiler invocation's configuration and optional cache.
type Driver struct {
	Cfg   *config.Config
	Cache *cache.Cache
}

// New constructs a Driver from a loaded configuration. cacheHandle may be
// nil to disable the compile cache.
func New(cfg *config.Config, cacheHandle *cache.Cache) *Driver {
	return &Driver{Cfg: cfg, Cache: cacheHandle}
}

// Compile runs the pipeline for sourcePath and returns a process exit
// code, per spec §6. A cache hit skips straight from C4-C7 to the
// toolchain step by re-emitting the cached C text; the toolchain always
// runs against THIS invocation's own configuration (output binary, cc
// driver, runtime object), so a cache hit never short-circuits a request
// that names a different output than a previous run against the same
// source recorded.
func (d *Driver) Compile(sourcePath string) int {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quackc: %v\n", err)
		return ExitFailure
	}
	hash := sourceHash(data)

	ctx := NewContext(sourcePath)
	ctx.GeneratedCPath = config.DefaultGeneratedC
	ctx.OutputBinary = d.Cfg.OutputBinary

	if d.Cache != nil {
		if cSource, ok, _ := d.Cache.Lookup(hash); ok {
			if writeErr := os.WriteFile(ctx.GeneratedCPath, []byte(cSource), 0o644); writeErr == nil {
				return d.runToolchain(ctx)
			}
		}
	}

	pipeline := NewPipeline(
		ReadSourceProcessor{},
		ParseProcessor{},
		SemanticProcessor{},
		EmitProcessor{},
	)
	ctx = pipeline.Run(ctx)

	if ctx.Bag.Len() > 0 {
		PrintDiagnostics(ctx.Bag)
		return ExitFailure
	}
	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "quackc: %v\n", ctx.Err())
		return ExitFailure
	}

	if d.Cache != nil {
		if generated, readErr := os.ReadFile(ctx.GeneratedCPath); readErr == nil {
			d.Cache.Record(hash, string(generated), time.Now())
		}
	}

	return d.runToolchain(ctx)
}

// runToolchain invokes C's compile-and-link step on the translation unit
// already sitting at ctx.GeneratedCPath, against ctx.OutputBinary.
func (d *Driver) runToolchain(ctx *Context) int {
	toolchain := NewPipeline(ToolchainProcessor{Cfg: d.Cfg})
	ctx = toolchain.Run(ctx)
	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "quackc: %v\n", ctx.Err())
		return ExitFailure
	}
	return ExitOK
}

func sourceHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
