// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import "errors"

var (
	// ErrUnrecognizedVariant is returned when Parse finds no recognizable
	// IVT tag at any scanned offset. Unlike pkg/uefi.Parse (which falls
	// back to treating unknown input as a raw BIOS region), this codec
	// never guesses: an unrecognized buffer is always an error.
	ErrUnrecognizedVariant = errors.New("unrecognized boot image variant")

	// ErrInvalidPointer is returned when a non-null IVT pointer falls
	// outside [bdt.start, bdt.start+bdt.length).
	ErrInvalidPointer = errors.New("invalid pointer")

	// ErrLengthMismatch is returned when bdt.length exceeds the supplied
	// buffer length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrAppTooLarge is returned by ParseV2 when the CSF pointer places the
	// end of the application region before its start.
	ErrAppTooLarge = errors.New("application payload too large")

	// ErrMissingRequiredSegment is returned when a required segment (for
	// example a v3 image without an SCFW component) is absent.
	ErrMissingRequiredSegment = errors.New("missing required segment")
)
