// Package oerrors re-exports github.com/cockroachdb/errors so the rest of
// wotpulse gets stack traces, wrapping, and hints without importing the
// upstream package directly everywhere.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return oerrors.Wrap(err, "failed to do something")
//	}
package oerrors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New         = crdb.New
	Newf        = crdb.Newf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithStack   = crdb.WithStack
	WithMessage = crdb.WithMessage
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithDetail  = crdb.WithDetail
	GetAllHints = crdb.GetAllHints
)

// Error inspection
var (
	Is     = crdb.Is
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// ErrSchedulerBackpressure indicates the ticker or executor rejected a
// submission. Not returned across the DelayedJob boundary (spec section 7
// says trigger/terminate never error); used internally by adapters.
var ErrSchedulerBackpressure = New("scheduler back-pressure")
