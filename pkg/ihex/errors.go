// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ihex

import "errors"

var (
	// ErrSyntax is returned for a malformed record line (bad start
	// character, odd hex digit count, unrecognized record type).
	ErrSyntax = errors.New("ihex: malformed record")

	// ErrChecksum is returned when a record's trailing checksum byte does
	// not match the computed one.
	ErrChecksum = errors.New("ihex: checksum mismatch")

	// ErrLengthMismatch is returned by Flatten/ParseIntelHex/ParseSRecord
	// when the address ranges described by the input are not contiguous
	// and AllowGaps was not requested.
	ErrLengthMismatch = errors.New("ihex: non-contiguous address ranges")

	// ErrNoEndRecord is returned when input ends without an EOF (Intel-HEX)
	// or start-address termination (S-record) record.
	ErrNoEndRecord = errors.New("ihex: missing end-of-file record")
)
