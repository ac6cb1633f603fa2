// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcd

import "errors"

var (
	// ErrMalformedHeader is returned when a command header fails to parse,
	// or when text-form parsing encounters a numeric literal that is not a
	// valid integer.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrUnknownCommandTag is returned when a command record's tag does not
	// match any recognized Tag value.
	ErrUnknownCommandTag = errors.New("unknown command tag")

	// ErrOversizeSegment is returned when a DCD segment's exported size
	// exceeds the 1768-byte ROM limit.
	ErrOversizeSegment = errors.New("oversize DCD segment")

	// ErrInvalidWidth is returned when a WriteData/CheckData width is not
	// one of 1, 2 or 4 bytes.
	ErrInvalidWidth = errors.New("invalid operand width")

	// ErrInvalidOps is returned when a WriteData/CheckData ops field does
	// not match any recognized operation.
	ErrInvalidOps = errors.New("invalid operation")

	// ErrUnknownEngine is returned when an Unlock command's engine field
	// does not match any recognized Engine value.
	ErrUnknownEngine = errors.New("unknown engine")

	// ErrIllegalInDCD is returned when a CSF-only command tag (Set,
	// InstallKey, AuthData, Initialize) is found inside a DCD segment.
	ErrIllegalInDCD = errors.New("command not legal in a DCD segment")

	// ErrBadAlignment is returned by text-form parsing when an instruction
	// line carries the wrong number of operands. Addresses are not checked
	// against the operand width.
	ErrBadAlignment = errors.New("misaligned or malformed operand")
)
