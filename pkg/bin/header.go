// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"fmt"
)

// HeaderSize is the on-wire size of Header, in both its big- and
// little-endian encodings.
const HeaderSize = 4

// Header is the recurring 4-byte tag/length/param record header used by the
// IVT, the DCD segment and every DCD/CSF command record (§3.2). Length is
// the full, header-inclusive byte count of the record it introduces.
type Header struct {
	Tag    byte
	Length uint16
	Param  byte
}

// ExportBE serializes the header in the big-endian "network order" encoding
// used by DCD and CSF command headers: tag, length(BE), param.
func (h Header) ExportBE() []byte {
	b := make([]byte, HeaderSize)
	b[0] = h.Tag
	PutU16BE(b[1:3], h.Length)
	b[3] = h.Param
	return b
}

// ParseHeaderBE parses the big-endian header encoding at the start of b.
// If requiredTag is non-zero the parsed tag must match it.
func ParseHeaderBE(b []byte, requiredTag byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("bin: %w: need %d bytes, have %d", ErrShortRead, HeaderSize, len(b))
	}
	h := Header{Tag: b[0], Length: U16BE(b[1:3]), Param: b[3]}
	if requiredTag != 0 && h.Tag != requiredTag {
		return Header{}, fmt.Errorf("bin: %w: tag 0x%02X, expected 0x%02X", ErrMalformedHeader, h.Tag, requiredTag)
	}
	return h, nil
}

// ExportLE serializes the header in the little-endian encoding used by the
// v3 container IVT records: param, length(LE), tag.
func (h Header) ExportLE() []byte {
	b := make([]byte, HeaderSize)
	b[0] = h.Param
	PutU16LE(b[1:3], h.Length)
	b[3] = h.Tag
	return b
}

// ParseHeaderLE parses the little-endian header encoding at the start of b.
func ParseHeaderLE(b []byte, requiredTag byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("bin: %w: need %d bytes, have %d", ErrShortRead, HeaderSize, len(b))
	}
	h := Header{Param: b[0], Length: U16LE(b[1:3]), Tag: b[3]}
	if requiredTag != 0 && h.Tag != requiredTag {
		return Header{}, fmt.Errorf("bin: %w: tag 0x%02X, expected 0x%02X", ErrMalformedHeader, h.Tag, requiredTag)
	}
	return h, nil
}

func (h Header) String() string {
	return fmt.Sprintf("HEADER<tag:0x%02X length:%d param:0x%02X>", h.Tag, h.Length, h.Param)
}
