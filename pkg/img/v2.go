// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/usbarmory/imx-tools/pkg/bytes"
	"github.com/usbarmory/imx-tools/pkg/dcd"
)

// Profile carries the per-family layout constants the v2 BootImg2 algorithm
// (images.py's BootImg2._update()) is parameterized over. v2 and v2b/v8M
// share one algorithm and differ only in these constants — grounded on
// images.py's HEAD_SIZE table ({0x400: 0xC00, 0x100: 0x300}) and BootImg8m's
// distinct offset/head-size pair, folded here into one Go type rather than
// duplicated (see DESIGN.md).
type Profile struct {
	// IVTOffset is the IVT's offset from the image base address.
	IVTOffset uint32
	// HeadSize is the reserved span from IVTOffset to the application
	// payload: IVT + BDT + DCD + DCD padding. It applies only when the
	// image carries a DCD; without one, the payload follows the BDT
	// directly.
	HeadSize uint32
	// AppAlign is the alignment the application payload's exported size
	// is padded up to.
	AppAlign uint32
	// CSFSize is the reserved (and zero-padded) span for the CSF segment
	// when present.
	CSFSize uint32
}

// ProfileV2 is the default v6/v7/RT profile (spec.md §3.7's "v2").
var ProfileV2 = Profile{IVTOffset: 0x400, HeadSize: 0xC00, AppAlign: 0x1000, CSFSize: 0x2000}

// ProfileV2B is the i.MX8M / v8M profile (spec.md §3.7's "v2b"), grounded on
// images.py's BootImg8m constants and HEAD_SIZE's 0x100 entry.
var ProfileV2B = Profile{IVTOffset: 0x100, HeadSize: 0x300, AppAlign: 0x1000, CSFSize: 0x2000}

func alignUp(n, align uint32) uint32 {
	if align == 0 || n%align == 0 {
		return n
	}
	return (n/align + 1) * align
}

// V2Image is a v2/v2b boot image: IVT, BDT, optional DCD, application
// payload, optional CSF, laid out per Profile.
type V2Image struct {
	Profile Profile
	Start   uint32 // image base address in target memory
	Plugin  uint32

	DCD *DCDSegment // nil if no DCD
	App *App
	CSF *CSF // nil if no CSF

	ivt *IVT2
	bdt *BDT
}

// BuildV2 constructs a new v2/v2b image from its constituents, computing
// every derived address via the BootImg2._update() layout algorithm.
func BuildV2(profile Profile, start uint32, app []byte, program *dcd.Program, csf []byte, plugin uint32) (*V2Image, error) {
	im := &V2Image{
		Profile: profile,
		Start:   start,
		Plugin:  plugin,
		App:     &App{Data: app},
	}
	if program != nil {
		im.DCD = &DCDSegment{Program: program}
	}
	if csf != nil {
		im.CSF = &CSF{Data: csf}
	}
	if err := im.update(); err != nil {
		return nil, err
	}
	return im, nil
}

// update recomputes every derived field (IVT addresses, BDT length,
// segment padding) from the current constituents, mirroring
// BootImg2._update() in images.py.
func (im *V2Image) update() error {
	ivt := &IVT2{Param: 0x41}
	bdt := &BDT{Start: im.Start, Plugin: im.Plugin}

	dcdSize := 0
	if im.DCD != nil && im.DCD.Enabled() {
		dcdSize = im.DCD.Program.Size()
	}
	dcdPadding := int(im.Profile.HeadSize) - (IVT2Size + BDTSize + dcdSize)
	if dcdPadding < 0 {
		return fmt.Errorf("img: dcd program of %d bytes does not fit in a %d-byte head", dcdSize, im.Profile.HeadSize)
	}
	if im.DCD != nil {
		im.DCD.Padding = dcdPadding
	}

	appPadding := int(alignUp(uint32(len(im.App.Data)), im.Profile.AppAlign)) - len(im.App.Data)
	im.App.Padding = appPadding

	ivt.Self = im.Start + im.Profile.IVTOffset
	ivt.BDTAddress = ivt.Self + IVT2Size

	if im.DCD != nil && im.DCD.Enabled() {
		ivt.DCDAddress = ivt.BDTAddress + BDTSize
		ivt.Entry = ivt.DCDAddress + uint32(dcdSize+dcdPadding)
	} else {
		ivt.DCDAddress = 0
		ivt.Entry = ivt.BDTAddress + BDTSize
	}

	appEnd := ivt.Entry + uint32(im.App.Size())
	if im.CSF != nil {
		ivt.CSFAddress = appEnd
		im.CSF.Padding = int(im.Profile.CSFSize) - len(im.CSF.Data)
		if im.CSF.Padding < 0 {
			return fmt.Errorf("img: csf of %d bytes exceeds the %d-byte reserved span", len(im.CSF.Data), im.Profile.CSFSize)
		}
		appEnd += uint32(im.CSF.Size())
	} else {
		ivt.CSFAddress = 0
	}

	// bdt.Length spans from the image base address (Start) to the end of
	// the last populated segment.
	bdt.Length = appEnd - im.Start

	im.ivt = ivt
	im.bdt = bdt
	return nil
}

// IVT returns the image's computed Image Vector Table.
func (im *V2Image) IVT() (*IVT2, error) {
	if err := im.update(); err != nil {
		return nil, err
	}
	return im.ivt, nil
}

// BDT returns the image's computed Boot Data Table.
func (im *V2Image) BDT() (*BDT, error) {
	if err := im.update(); err != nil {
		return nil, err
	}
	return im.bdt, nil
}

// Buf implements Firmware: the complete serialized image.
func (im *V2Image) Buf() ([]byte, error) { return im.Export() }

// Apply implements Firmware.
func (im *V2Image) Apply(v Visitor) error { return v.Visit(im) }

// ApplyChildren implements Firmware, visiting the IVT, BDT, optional DCD,
// App, and optional CSF segments in layout order.
func (im *V2Image) ApplyChildren(v Visitor) error {
	if err := im.update(); err != nil {
		return err
	}
	children := []Firmware{im.ivt, im.bdt}
	if im.DCD != nil && im.DCD.Enabled() {
		children = append(children, im.DCD)
	}
	children = append(children, im.App)
	if im.CSF != nil {
		children = append(children, im.CSF)
	}
	for _, c := range children {
		if err := c.Apply(v); err != nil {
			return err
		}
	}
	return nil
}

// Export serializes the complete image: zero padding out to IVTOffset,
// then IVT, BDT, DCD, App, CSF in order.
func (im *V2Image) Export() ([]byte, error) {
	if err := im.update(); err != nil {
		return nil, err
	}

	out := make([]byte, im.Profile.IVTOffset)
	out = append(out, im.ivt.Export()...)
	out = append(out, im.bdt.Export()...)
	if im.DCD != nil {
		buf, err := im.DCD.Buf()
		if err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}
	out = append(out, im.App.Export()...)
	if im.CSF != nil {
		out = append(out, im.CSF.Export()...)
	}
	return out, nil
}

// ParseV2 decodes a v2/v2b image out of buf, assuming buf's index 0
// corresponds to the image's base load address (bdt.Start) and the IVT sits
// at ivtOffset bytes into buf, grounded on images.py's BootImg2.parse().
func ParseV2(buf []byte, ivtOffset int) (*V2Image, error) {
	if ivtOffset < 0 || ivtOffset+IVT2Size > len(buf) {
		return nil, fmt.Errorf("img: %w: ivt offset %d out of range", ErrLengthMismatch, ivtOffset)
	}
	ivt, err := ParseIVT2(buf[ivtOffset:])
	if err != nil {
		return nil, err
	}

	bdtOff := ivtOffset + IVT2Size
	if bdtOff+BDTSize > len(buf) {
		return nil, fmt.Errorf("img: %w: bdt offset %d out of range", ErrLengthMismatch, bdtOff)
	}
	bdt, err := ParseBDT(buf[bdtOff:])
	if err != nil {
		return nil, err
	}
	if int(bdt.Length) > len(buf) {
		return nil, fmt.Errorf("img: %w: bdt.length %d exceeds buffer of %d bytes", ErrLengthMismatch, bdt.Length, len(buf))
	}

	toOffset := func(addr uint32) (int, error) {
		if addr < bdt.Start || addr >= bdt.Start+bdt.Length {
			return 0, fmt.Errorf("img: %w: 0x%08X outside [0x%08X, 0x%08X)", ErrInvalidPointer, addr, bdt.Start, bdt.Start+bdt.Length)
		}
		return int(addr - bdt.Start), nil
	}

	im := &V2Image{
		Profile: Profile{IVTOffset: uint32(ivtOffset)},
		Start:   bdt.Start,
		Plugin:  bdt.Plugin,
		ivt:     ivt,
		bdt:     bdt,
	}

	var dcdEnd int
	if ivt.DCDAddress != 0 {
		dcdOff, err := toOffset(ivt.DCDAddress)
		if err != nil {
			return nil, err
		}
		program, err := dcd.Parse(buf[dcdOff:])
		if err != nil {
			return nil, fmt.Errorf("img: dcd: %w", err)
		}
		dcdEnd = dcdOff + program.Size()
		im.DCD = &DCDSegment{Program: program}
	}

	appOff, err := toOffset(ivt.Entry)
	if err != nil {
		return nil, err
	}
	if ivt.DCDAddress != 0 {
		im.DCD.Padding = appOff - dcdEnd
	}

	appEnd := int(bdt.Length)
	if ivt.CSFAddress != 0 {
		csfOff, err := toOffset(ivt.CSFAddress)
		if err != nil {
			return nil, err
		}
		appEnd = csfOff
	}
	if appEnd > len(buf) {
		appEnd = len(buf)
	}
	if appEnd < appOff {
		return nil, fmt.Errorf("img: %w: application region ends before it starts", ErrAppTooLarge)
	}
	im.App = &App{Data: append([]byte(nil), buf[appOff:appEnd]...)}

	if ivt.CSFAddress != 0 {
		csfOff, _ := toOffset(ivt.CSFAddress)
		csfEnd := int(bdt.Length)
		if csfEnd > len(buf) {
			csfEnd = len(buf)
		}
		im.CSF = &CSF{Data: append([]byte(nil), buf[csfOff:csfEnd]...)}
	}

	im.Profile.HeadSize = uint32(appOff - ivtOffset)
	im.Profile.AppAlign = 0x1000
	im.Profile.CSFSize = 0x2000

	return im, nil
}

// Validate checks every non-null IVT pointer against the parse-policy rules
// in spec.md §4.2, aggregating every violation instead of stopping at the
// first (pkg/report's ValidateVisitor relies on this).
func (im *V2Image) Validate() error {
	if im.ivt == nil || im.bdt == nil {
		if err := im.update(); err != nil {
			return err
		}
	}

	bounds := bytes.Ranges{{Offset: uint64(im.bdt.Start), Length: uint64(im.bdt.Length)}}
	var result *multierror.Error
	check := func(name string, addr uint32) {
		if addr == 0 {
			return
		}
		if !bounds.IsIn(uint64(addr)) {
			result = multierror.Append(result, fmt.Errorf("%s: %w: 0x%08X outside [0x%08X, 0x%08X)",
				name, ErrInvalidPointer, addr, im.bdt.Start, im.bdt.Start+im.bdt.Length))
		}
	}
	check("ivt.self", im.ivt.Self)
	check("ivt.bdt", im.ivt.BDTAddress)
	check("ivt.dcd", im.ivt.DCDAddress)
	check("ivt.csf", im.ivt.CSFAddress)
	check("ivt.entry", im.ivt.Entry)

	if im.ivt.Self != im.bdt.Start+im.Profile.IVTOffset {
		result = multierror.Append(result, fmt.Errorf("ivt.self: %w: 0x%08X != bdt.start+ivt_offset", ErrInvalidPointer, im.ivt.Self))
	}

	return result.ErrorOrNil()
}
