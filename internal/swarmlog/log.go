// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swarmlog is the thin logging wrapper used by every component
// of the holonic coordination core. It standardizes on
// github.com/luxfi/log the way the teacher's own packages (poll,
// networking/handler, networking/router) already do, rather than
// introducing a second logging library.
package swarmlog

import (
	"github.com/luxfi/log"
)

// Logger is an alias so callers only need to import this package.
type Logger = log.Logger

// New returns a named logger for a component (e.g. "board", "vote").
func New(component string) Logger {
	return log.NewLogger(component)
}

// NoOp returns a logger that discards everything, for tests and
// components that have not been given an explicit logger.
func NoOp() Logger {
	return log.NewNoOpLogger()
}

// Field constructors re-exported for call sites that don't want to
// import github.com/luxfi/log directly.
var (
	Err      = log.Err
	String   = log.String
	Int      = log.Int
	Stringer = log.Stringer
)
