// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"github.com/jessevdk/go-flags"
)

// Command is implemented by each imxim verb (create, show, validate, ...).
type Command interface {
	flags.Commander

	// ShortDescription explains what this command does in one line.
	ShortDescription() string

	// LongDescription explains what this verb does in full.
	LongDescription() string
}

// ErrArgs wraps a usage error in the positional arguments left over after
// flag parsing, distinguishing it from a flags.Error (which go-flags
// already reports with its own exit behavior).
type ErrArgs struct {
	Err error
}

func (e ErrArgs) Error() string { return e.Err.Error() }
func (e ErrArgs) Unwrap() error { return e.Err }
