// Package session provides the statement handle passed alongside engine
// objects at every materialization and drill call.
//
// Views built by the axis and drill packages hold no reference to a
// statement. Callers pass the handle explicitly; once the statement is
// closed every call fails with a CLOSED error instead of reading engine
// objects that may no longer be valid.
package session

import (
	"log/slog"
	"sync/atomic"

	"github.com/roach88/mdxbridge/internal/fault"
)

// Handle is what views need from a statement: whether it is still open.
type Handle interface {
	// Err returns nil while the statement is open, and a CLOSED error after.
	Err() error
}

// Statement is one prepared and executed query.
//
// Close may be called from another goroutine than the one reading
// positions; readers observe the closed state on their next call.
type Statement struct {
	id     string
	closed atomic.Bool
}

var _ Handle = (*Statement)(nil)

// NewStatement opens a statement with an ID from gen. A nil gen uses
// UUIDv7Generator.
func NewStatement(gen IDGenerator) *Statement {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	s := &Statement{id: gen.Generate()}
	slog.Debug("statement opened", "statement", s.id)
	return s
}

// ID returns the statement identifier.
func (s *Statement) ID() string {
	return s.id
}

// Close invalidates the statement. Closing twice is a no-op.
func (s *Statement) Close() {
	if s.closed.CompareAndSwap(false, true) {
		slog.Debug("statement closed", "statement", s.id)
	}
}

// Closed reports whether Close has been called.
func (s *Statement) Closed() bool {
	return s.closed.Load()
}

// Err implements Handle.
func (s *Statement) Err() error {
	if s.closed.Load() {
		return fault.Closed(s.id)
	}
	return nil
}
