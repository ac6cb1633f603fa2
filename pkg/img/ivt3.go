// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import (
	"fmt"

	"github.com/usbarmory/imx-tools/pkg/bin"
)

// IVT3 is the v3a/v3b container IVT: a 32-bit version field followed by a
// run of little-endian u64 address fields, grounded on segments.py's
// SegIVT3a ('<1L5Q': version, dcd, bdt, ivt(self), csf, next) and SegIVT3b
// ('<1L7Q', two additional trailing fields reserved for the second A-core
// cluster chain v3b adds over v3a). Extra carries those trailing v3b fields
// verbatim without further semantic modeling — a documented simplification,
// see DESIGN.md.
type IVT3 struct {
	Version    uint32
	DCDAddress uint64
	BDTAddress uint64
	Self       uint64
	CSFAddress uint64
	Next       uint64
	Extra      []uint64 // v3b only: additional trailing u64 fields
}

// Size returns the IVT3's exported size, header included.
func (ivt *IVT3) Size() int {
	return bin.HeaderSize + 4 + (5+len(ivt.Extra))*8
}

// Buf implements Firmware.
func (ivt *IVT3) Buf() ([]byte, error) { return ivt.Export(), nil }

// Apply implements Firmware.
func (ivt *IVT3) Apply(v Visitor) error { return v.Visit(ivt) }

// ApplyChildren implements Firmware; IVT3 is a leaf.
func (ivt *IVT3) ApplyChildren(v Visitor) error { return nil }

// Export serializes the IVT, header included.
func (ivt *IVT3) Export() []byte {
	h := bin.Header{Tag: IVT3Tag, Length: uint16(ivt.Size()), Param: 0}
	out := h.ExportLE()

	ver := make([]byte, 4)
	bin.PutU32LE(ver, ivt.Version)
	out = append(out, ver...)

	fields := append([]uint64{uint64(ivt.DCDAddress), ivt.BDTAddress, ivt.Self, ivt.CSFAddress, ivt.Next}, ivt.Extra...)
	for _, f := range fields {
		raw := make([]byte, 8)
		bin.PutU64LE(raw, f)
		out = append(out, raw...)
	}
	return out
}

// ParseIVT3 decodes a v3 container IVT from the start of buf. extraFields
// selects v3a (0) vs v3b (2 trailing fields).
func ParseIVT3(buf []byte, extraFields int) (*IVT3, error) {
	r := bin.NewReader(buf)
	h, err := r.ReadHeaderLE(IVT3Tag)
	if err != nil {
		return nil, fmt.Errorf("img: ivt3: %w", err)
	}

	verRaw, err := r.Read(4)
	if err != nil {
		return nil, fmt.Errorf("img: ivt3: version: %w", err)
	}
	version := bin.U32LE(verRaw)

	n := 5 + extraFields
	qwords := make([]uint64, n)
	for i := 0; i < n; i++ {
		raw, err := r.Read(8)
		if err != nil {
			return nil, fmt.Errorf("img: ivt3: field %d: %w", i, err)
		}
		qwords[i] = bin.U64LE(raw)
	}

	ivt := &IVT3{
		Version:    version,
		DCDAddress: qwords[0],
		BDTAddress: qwords[1],
		Self:       qwords[2],
		CSFAddress: qwords[3],
		Next:       qwords[4],
	}
	if extraFields > 0 {
		ivt.Extra = append([]uint64(nil), qwords[5:]...)
	}

	if int(h.Length) != ivt.Size() {
		return nil, fmt.Errorf("img: ivt3: %w: header says %d, decoded %d", ErrLengthMismatch, h.Length, ivt.Size())
	}
	return ivt, nil
}
