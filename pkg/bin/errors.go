// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import "errors"

var (
	// ErrShortRead is returned when a record's declared length runs past
	// the end of the supplied buffer.
	ErrShortRead = errors.New("short read")

	// ErrMalformedHeader is returned when a header's tag does not match
	// what the caller required.
	ErrMalformedHeader = errors.New("malformed header")
)
