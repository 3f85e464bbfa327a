// Package diag implements the compiler's diagnostic taxonomy and the
// per-pass error accumulator used by internal/check.
//
// The shape (an error code, a source Token, a message, deduplicated and
// sorted by position) is grounded on funvibe/funxy's
// internal/diagnostics.DiagnosticError and internal/analyzer.walker's
// errorSet/getErrors pair.
package diag

import (
	"fmt"
	"sort"

	"github.com/alexanderowen/quackc/internal/token"
)

// Code classifies a diagnostic per spec §7's error taxonomy.
type Code string

const (
	ErrStructural    Code = "structural"    // malformed hierarchy, undefined constructor target
	ErrTypeMismatch  Code = "type-mismatch" // operand/condition/argument/return type errors
	ErrNameNotFound  Code = "name"          // uninitialized variable, missing method/field
	ErrInternal      Code = "internal"      // compiler failed to compute a type for one expression
)

// Error is a single reported diagnostic, always attached to a source line.
type Error struct {
	Code    Code
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Token.Line, e.Message)
}

// New builds a diagnostic Error.
func New(code Code, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{Code: code, Token: tok, Message: fmt.Sprintf(format, args...)}
}

// MaxReported bounds how many diagnostics a single checker run keeps before
// short-circuiting further work, per spec §5 ("a soft cap (ten)").
const MaxReported = 10

// Bag accumulates diagnostics for one checker run, deduplicating by
// (line, code, message) the way funxy's walker.errorSet does by
// (line, column, code).
type Bag struct {
	seen   map[string]*Error
	ordered []*Error
}

// NewBag returns an empty diagnostic accumulator.
func NewBag() *Bag {
	return &Bag{seen: make(map[string]*Error)}
}

// Add records a diagnostic. Once MaxReported distinct diagnostics have been
// recorded, further additions are dropped so a single malformed program
// cannot produce unbounded output.
func (b *Bag) Add(err *Error) {
	if len(b.ordered) >= MaxReported {
		return
	}
	key := fmt.Sprintf("%d:%s:%s", err.Token.Line, err.Code, err.Message)
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = err
	b.ordered = append(b.ordered, err)
}

// Full reports whether the soft cap has been reached; callers may use this
// to short-circuit further per-expression analysis.
func (b *Bag) Full() bool {
	return len(b.ordered) >= MaxReported
}

// Errors returns all recorded diagnostics sorted by source line, then by
// insertion order for ties.
func (b *Bag) Errors() []*Error {
	result := make([]*Error, len(b.ordered))
	copy(result, b.ordered)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Token.Line < result[j].Token.Line
	})
	return result
}

// Len reports how many diagnostics have been recorded.
func (b *Bag) Len() int {
	return len(b.ordered)
}
