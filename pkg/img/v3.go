// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import (
	"fmt"

	"github.com/usbarmory/imx-tools/pkg/bin"
	"github.com/usbarmory/imx-tools/pkg/dcd"
)

// ContainerTag is the v3 container header tag, matching header.py's
// SegTag.BIC1 (0x87, "Boot Images Container") — the same on-wire shape
// images.py's BootImg4/SegBIC1 uses for the i.MX8 B0-and-later multi-image
// container. Every V3Image, v3a or v3b, carries this container header;
// there is no separate BIC1 variant (see DESIGN.md).
const ContainerTag byte = 0x87

// ContainerHeaderSize is the fixed size of a ContainerHeader record.
const ContainerHeaderSize = bin.HeaderSize + 8

// ContainerHeader precedes the per-component descriptor table in a v3
// container.
type ContainerHeader struct {
	Version   uint32
	NumImages uint16
	Flags     uint16
}

// Export serializes the container header.
func (h *ContainerHeader) Export() []byte {
	hdr := bin.Header{Tag: ContainerTag, Length: uint16(ContainerHeaderSize), Param: 0}
	out := hdr.ExportLE()
	ver := make([]byte, 4)
	bin.PutU32LE(ver, h.Version)
	out = append(out, ver...)
	n := make([]byte, 2)
	bin.PutU16LE(n, h.NumImages)
	out = append(out, n...)
	fl := make([]byte, 2)
	bin.PutU16LE(fl, h.Flags)
	return append(out, fl...)
}

// ParseContainerHeader decodes a ContainerHeader from the start of buf.
func ParseContainerHeader(buf []byte) (*ContainerHeader, error) {
	r := bin.NewReader(buf)
	if _, err := r.ReadHeaderLE(ContainerTag); err != nil {
		return nil, fmt.Errorf("img: container: %w", err)
	}
	ver, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	n, err := r.Read(2)
	if err != nil {
		return nil, err
	}
	fl, err := r.Read(2)
	if err != nil {
		return nil, err
	}
	return &ContainerHeader{Version: bin.U32LE(ver), NumImages: bin.U16LE(n), Flags: bin.U16LE(fl)}, nil
}

// ComponentDescriptorSize is the fixed size of one ComponentDescriptor
// record: offset, size, load address, entry address (all u64) plus a u32
// flags word, per spec.md §4.2's "(offset, size, load_addr, entry_addr,
// flags, hash)" — the hash field is out of scope here since this codec
// never verifies signatures (spec.md Non-goals).
const ComponentDescriptorSize = 4 * 8 + 4

// ComponentDescriptor locates one component image inside the container.
type ComponentDescriptor struct {
	Offset    uint64
	Size      uint64
	LoadAddr  uint64
	EntryAddr uint64
	Flags     uint32
}

// Export serializes the descriptor.
func (d *ComponentDescriptor) Export() []byte {
	out := make([]byte, ComponentDescriptorSize)
	bin.PutU64LE(out[0:8], d.Offset)
	bin.PutU64LE(out[8:16], d.Size)
	bin.PutU64LE(out[16:24], d.LoadAddr)
	bin.PutU64LE(out[24:32], d.EntryAddr)
	bin.PutU32LE(out[32:36], d.Flags)
	return out
}

// ParseComponentDescriptor decodes one descriptor from the start of buf.
func ParseComponentDescriptor(buf []byte) (*ComponentDescriptor, error) {
	if len(buf) < ComponentDescriptorSize {
		return nil, fmt.Errorf("img: component descriptor: %w", ErrLengthMismatch)
	}
	return &ComponentDescriptor{
		Offset:    bin.U64LE(buf[0:8]),
		Size:      bin.U64LE(buf[8:16]),
		LoadAddr:  bin.U64LE(buf[16:24]),
		EntryAddr: bin.U64LE(buf[24:32]),
		Flags:     bin.U32LE(buf[32:36]),
	}, nil
}

// Component is one named application image inside a v3 container (an SCFW,
// an A-core or M-core payload, per spec.md §3.7's "one per core" list).
type Component struct {
	Name      string
	LoadAddr  uint64
	EntryAddr uint64
	Data      []byte
}

// V3Image is a v3a/v3b container boot image: a container header, a
// descriptor table addressing each component by index (never a
// parent-pointer — ApplyChildren walks Components by index, matching the
// tree-ownership rule in spec.md §9), and the concatenated component
// payloads.
type V3Image struct {
	Extended bool // false selects v3a's 5-field IVT, true selects v3b's 7-field IVT
	Start    uint64

	SCFW       []byte // required: system controller firmware
	SCD        *dcd.Program
	DCD        *DCDSegment
	Components []Component

	ivt       *IVT3
	container *ContainerHeader
}

// Buf implements Firmware: the complete serialized container image.
func (im *V3Image) Buf() ([]byte, error) { return im.Export() }

// Apply implements Firmware.
func (im *V3Image) Apply(v Visitor) error { return v.Visit(im) }

// ApplyChildren implements Firmware, walking every component by index.
func (im *V3Image) ApplyChildren(v Visitor) error {
	for i := range im.Components {
		if err := v.Visit(&im.Components[i]); err != nil {
			return err
		}
	}
	return nil
}

// Apply implements Firmware for a single Component leaf.
func (c *Component) Apply(v Visitor) error { return v.Visit(c) }

// ApplyChildren implements Firmware; Component is a leaf.
func (c *Component) ApplyChildren(v Visitor) error { return nil }

// Buf implements Firmware for a Component leaf.
func (c *Component) Buf() ([]byte, error) { return c.Data, nil }

// BuildV3 constructs a v3a/v3b container image. SCFW is mandatory per
// spec.md §4.2's MissingRequiredSegment failure mode.
func BuildV3(extended bool, start uint64, scfw []byte, scd *dcd.Program, program *dcd.Program, components []Component) (*V3Image, error) {
	if len(scfw) == 0 {
		return nil, fmt.Errorf("img: %w: v3 image requires an SCFW component", ErrMissingRequiredSegment)
	}
	im := &V3Image{Extended: extended, Start: start, SCFW: scfw, SCD: scd, Components: components}
	if program != nil {
		im.DCD = &DCDSegment{Program: program}
	}
	if err := im.update(); err != nil {
		return nil, err
	}
	return im, nil
}

func (im *V3Image) update() error {
	extra := 0
	if im.Extended {
		extra = 2
	}

	dcdSize := 0
	if im.DCD != nil {
		dcdSize = im.DCD.Program.Size()
	}

	ivtSize := (&IVT3{Extra: make([]uint64, extra)}).Size()
	bdtOff := ivtSize
	dcdOff := bdtOff + BDTSize

	ivt := &IVT3{
		Version: 1,
		Self:    im.Start,
		BDTAddress: im.Start + uint64(bdtOff),
	}
	if dcdSize > 0 {
		ivt.DCDAddress = im.Start + uint64(dcdOff)
	}
	if extra > 0 {
		ivt.Extra = make([]uint64, extra)
	}
	im.ivt = ivt

	im.container = &ContainerHeader{Version: 1, NumImages: uint16(1 + len(im.Components))}
	return nil
}

// Export serializes the image: IVT, BDT, DCD, container header, descriptor
// table, SCFW, then every component payload in declaration order.
func (im *V3Image) Export() ([]byte, error) {
	if err := im.update(); err != nil {
		return nil, err
	}

	descTableSize := (1 + len(im.Components)) * ComponentDescriptorSize
	headerEnd := ContainerHeaderSize + descTableSize

	descs := make([]ComponentDescriptor, 0, 1+len(im.Components))
	payload := make([]byte, 0, len(im.SCFW))
	descs = append(descs, ComponentDescriptor{
		Offset:   uint64(headerEnd),
		Size:     uint64(len(im.SCFW)),
		LoadAddr: im.Start,
	})
	payload = append(payload, im.SCFW...)

	for _, c := range im.Components {
		descs = append(descs, ComponentDescriptor{
			Offset:    uint64(headerEnd + len(payload)),
			Size:      uint64(len(c.Data)),
			LoadAddr:  c.LoadAddr,
			EntryAddr: c.EntryAddr,
		})
		payload = append(payload, c.Data...)
	}

	bdt := &BDT{Start: uint32(im.Start), Length: uint32(headerEnd + len(payload))}

	out := im.ivt.Export()
	out = append(out, bdt.Export()...)
	if im.DCD != nil {
		buf, err := im.DCD.Buf()
		if err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}
	out = append(out, im.container.Export()...)
	for _, d := range descs {
		out = append(out, d.Export()...)
	}
	out = append(out, payload...)
	return out, nil
}

// ParseV3 decodes a v3 container image out of buf, assuming buf's index 0
// is the IVT's own load address.
func ParseV3(buf []byte, extended bool) (*V3Image, error) {
	extra := 0
	if extended {
		extra = 2
	}
	ivt, err := ParseIVT3(buf, extra)
	if err != nil {
		return nil, err
	}

	bdtOff := ivt.Size()
	if bdtOff+BDTSize > len(buf) {
		return nil, fmt.Errorf("img: v3: %w", ErrLengthMismatch)
	}
	bdt, err := ParseBDT(buf[bdtOff:])
	if err != nil {
		return nil, err
	}

	im := &V3Image{Extended: extended, Start: uint64(bdt.Start), ivt: ivt}

	containerOff := bdtOff + BDTSize
	if ivt.DCDAddress != 0 {
		dcdOff := int(ivt.DCDAddress - ivt.Self)
		program, err := dcd.Parse(buf[dcdOff:])
		if err != nil {
			return nil, fmt.Errorf("img: v3: dcd: %w", err)
		}
		im.DCD = &DCDSegment{Program: program}
		containerOff = dcdOff + program.Size()
	}

	container, err := ParseContainerHeader(buf[containerOff:])
	if err != nil {
		return nil, err
	}
	im.container = container

	if container.NumImages == 0 {
		return nil, fmt.Errorf("img: %w: container declares zero images", ErrMissingRequiredSegment)
	}

	descOff := containerOff + ContainerHeaderSize
	descs := make([]ComponentDescriptor, container.NumImages)
	for i := range descs {
		d, err := ParseComponentDescriptor(buf[descOff+i*ComponentDescriptorSize:])
		if err != nil {
			return nil, err
		}
		descs[i] = *d
	}

	payloadBase := descOff + int(container.NumImages)*ComponentDescriptorSize
	readPayload := func(d ComponentDescriptor) ([]byte, error) {
		start := payloadBase + int(d.Offset) - (ContainerHeaderSize + int(container.NumImages)*ComponentDescriptorSize)
		end := start + int(d.Size)
		if start < 0 || end > len(buf) {
			return nil, fmt.Errorf("img: v3: %w: component at %d..%d out of range", ErrLengthMismatch, start, end)
		}
		return append([]byte(nil), buf[start:end]...), nil
	}

	scfw, err := readPayload(descs[0])
	if err != nil {
		return nil, err
	}
	im.SCFW = scfw

	for _, d := range descs[1:] {
		data, err := readPayload(d)
		if err != nil {
			return nil, err
		}
		im.Components = append(im.Components, Component{LoadAddr: d.LoadAddr, EntryAddr: d.EntryAddr, Data: data})
	}

	return im, nil
}
