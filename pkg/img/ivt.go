// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import (
	"fmt"

	"github.com/usbarmory/imx-tools/pkg/bin"
)

// IVT2Tag is the v2/v2b Image Vector Table tag, matching header.py's
// SegTag.IVT2 (0xD1).
const IVT2Tag byte = 0xD1

// IVT3Tag is the v3 container IVT tag, matching SegTag.IVT3 (0xDE).
const IVT3Tag byte = 0xDE

// IVT2Size is the on-wire size of a v2/v2b Image Vector Table: a 4-byte
// header followed by seven little-endian u32 fields (spec.md §3.3).
const IVT2Size = bin.HeaderSize + 7*4

// IVT2 is the v2/v2b Image Vector Table: the first structure the ROM reads,
// pointing at every other segment in the image.
type IVT2 struct {
	Param       byte
	Entry       uint32 // application entry address
	reserved1   uint32
	DCDAddress  uint32 // 0 if no DCD
	BDTAddress  uint32
	Self        uint32 // this IVT's own load address
	CSFAddress  uint32 // 0 if no CSF
	reserved2   uint32
}

// Buf implements Firmware.
func (ivt *IVT2) Buf() ([]byte, error) { return ivt.Export(), nil }

// Apply implements Firmware.
func (ivt *IVT2) Apply(v Visitor) error { return v.Visit(ivt) }

// ApplyChildren implements Firmware; IVT2 is a leaf.
func (ivt *IVT2) ApplyChildren(v Visitor) error { return nil }

// Export serializes the IVT, header included.
func (ivt *IVT2) Export() []byte {
	h := bin.Header{Tag: IVT2Tag, Length: uint16(IVT2Size), Param: ivt.Param}
	out := h.ExportLE()
	fields := []uint32{ivt.Entry, 0, ivt.DCDAddress, ivt.BDTAddress, ivt.Self, ivt.CSFAddress, 0}
	for _, f := range fields {
		raw := make([]byte, 4)
		bin.PutU32LE(raw, f)
		out = append(out, raw...)
	}
	return out
}

// ParseIVT2 decodes a v2/v2b IVT from the start of buf.
func ParseIVT2(buf []byte) (*IVT2, error) {
	r := bin.NewReader(buf)
	h, err := r.ReadHeaderLE(IVT2Tag)
	if err != nil {
		return nil, fmt.Errorf("img: ivt2: %w", err)
	}
	if int(h.Length) != IVT2Size {
		return nil, fmt.Errorf("img: ivt2: %w: length %d, want %d", ErrLengthMismatch, h.Length, IVT2Size)
	}
	body, err := r.Read(7 * 4)
	if err != nil {
		return nil, fmt.Errorf("img: ivt2: %w", err)
	}
	u32 := func(i int) uint32 { return bin.U32LE(body[i*4 : i*4+4]) }
	return &IVT2{
		Param:      h.Param,
		Entry:      u32(0),
		DCDAddress: u32(2),
		BDTAddress: u32(3),
		Self:       u32(4),
		CSFAddress: u32(5),
	}, nil
}

// Validate checks the IVT's internal address ordering against spec.md
// §3.3's invariants, grounded on segments.py's SegIVT2.validate().
func (ivt *IVT2) Validate() error {
	if ivt.BDTAddress != 0 && ivt.Self != 0 && ivt.BDTAddress < ivt.Self {
		return fmt.Errorf("img: %w: bdt 0x%08X precedes ivt.self 0x%08X", ErrInvalidPointer, ivt.BDTAddress, ivt.Self)
	}
	if ivt.DCDAddress != 0 && ivt.DCDAddress < ivt.BDTAddress {
		return fmt.Errorf("img: %w: dcd 0x%08X precedes bdt 0x%08X", ErrInvalidPointer, ivt.DCDAddress, ivt.BDTAddress)
	}
	if ivt.CSFAddress != 0 && ivt.DCDAddress != 0 && ivt.CSFAddress < ivt.DCDAddress {
		return fmt.Errorf("img: %w: csf 0x%08X precedes dcd 0x%08X", ErrInvalidPointer, ivt.CSFAddress, ivt.DCDAddress)
	}
	return nil
}
