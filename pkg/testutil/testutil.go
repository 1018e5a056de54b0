// Package testutil contains common test utilities.
package testutil

import "sync/atomic"

// Cleanuper wraps the Cleanup method. It is a subset of [testing.TB], thus
// satisfied by [*testing.T] and [*testing.B].
type Cleanuper interface {
	Cleanup(func())
}

// Set sets *p to v, and restores the old value when the test finishes.
func Set[T any](c Cleanuper, p *T, v T) {
	old := *p
	*p = v
	c.Cleanup(func() { *p = old })
}

// Calls counts invocations. It is safe for concurrent use.
type Calls struct {
	n atomic.Int64
}

// Inc records one call.
func (c *Calls) Inc() { c.n.Add(1) }

// N returns the number of calls recorded so far.
func (c *Calls) N() int { return int(c.n.Load()) }
