// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smartboot

import "errors"

var (
	// ErrMalformedRecipe is returned when a .smx document fails to parse
	// structurally or is missing a required field.
	ErrMalformedRecipe = errors.New("malformed recipe")

	// ErrUnknownSegmentRef is returned when a DATA or CMDS entry names a
	// segment that has no corresponding DATA mapping entry.
	ErrUnknownSegmentRef = errors.New("unknown data segment reference")

	// ErrUnsupportedType is returned for a DATA entry whose TYPE is not one
	// of DCD, IMX, URI, UEI or BIN (FDT is reserved and always rejected).
	ErrUnsupportedType = errors.New("unsupported data segment type")

	// ErrAmbiguousPayload is returned when a DATA entry supplies both DATA
	// and FILE, or neither, where exactly one is required.
	ErrAmbiguousPayload = errors.New("exactly one of DATA or FILE is required")

	// ErrUnknownInstruction is returned when a CMDS line does not match any
	// recognized BODY instruction mnemonic.
	ErrUnknownInstruction = errors.New("unknown body instruction")
)
