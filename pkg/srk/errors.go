// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package srk

import "errors"

var (
	// ErrKeyCount is returned when BuildTable is given zero or more than
	// MaxKeys certificates.
	ErrKeyCount = errors.New("unsupported number of SRK keys")

	// ErrMalformedTable is returned when Parse encounters a table or key
	// record whose length field is inconsistent with its buffer.
	ErrMalformedTable = errors.New("malformed SRK table")
)
