// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import (
	"fmt"

	"github.com/usbarmory/imx-tools/pkg/bin"
)

// BDTSize is the on-wire size of a Boot Data Table: three little-endian u32
// fields, no header (spec.md §3.4).
const BDTSize = 3 * 4

// BDT is the Boot Data Table: the ROM reads Start/Length/Plugin to learn
// where the image lives in target memory and how much of it to copy.
type BDT struct {
	Start  uint32
	Length uint32
	Plugin uint32 // 0 or 1; segments.py also tolerates 2 for historical reasons but this codec never emits it
}

// Buf implements Firmware.
func (b *BDT) Buf() ([]byte, error) { return b.Export(), nil }

// Apply implements Firmware.
func (b *BDT) Apply(v Visitor) error { return v.Visit(b) }

// ApplyChildren implements Firmware; BDT is a leaf.
func (b *BDT) ApplyChildren(v Visitor) error { return nil }

// Export serializes the BDT. It carries no tag/length/param header of its
// own; it is addressed purely by the IVT's BDTAddress pointer.
func (b *BDT) Export() []byte {
	out := make([]byte, BDTSize)
	bin.PutU32LE(out[0:4], b.Start)
	bin.PutU32LE(out[4:8], b.Length)
	bin.PutU32LE(out[8:12], b.Plugin)
	return out
}

// ParseBDT decodes a BDT from the start of buf.
func ParseBDT(buf []byte) (*BDT, error) {
	if len(buf) < BDTSize {
		return nil, fmt.Errorf("img: bdt: %w: need %d bytes, have %d", ErrLengthMismatch, BDTSize, len(buf))
	}
	return &BDT{
		Start:  bin.U32LE(buf[0:4]),
		Length: bin.U32LE(buf[4:8]),
		Plugin: bin.U32LE(buf[8:12]),
	}, nil
}
