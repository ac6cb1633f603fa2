// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import "fmt"

// Variant identifies a boot image container generation.
type Variant int

// Recognized container variants, spec.md §3.7.
const (
	VariantAuto Variant = iota
	VariantV2
	VariantV2B
	VariantV3A
	VariantV3B
)

// defaultScanOffsets are the candidate IVT offsets Parse tries when hint is
// VariantAuto, matching images.py's module-level parse()'s stepped scan
// (spec.md §4.2: "infers by scanning for a recognized IVT tag at candidate
// offsets in {0x0, 0x400, 0x1000}").
var defaultScanOffsets = []int{0x0, 0x400, 0x1000}

// Image is implemented by both V2Image and V3Image so callers working with
// Parse's result don't need to type-switch before calling Export.
type Image interface {
	Export() ([]byte, error)
}

// Parse scans buf for a recognizable container and decodes it. Unlike
// pkg/uefi.Parse (which falls back to treating unrecognized input as an
// opaque BIOS region), an unrecognized buffer is always an error here —
// this codec never guesses at the shape of data it cannot identify.
func Parse(buf []byte, hint Variant) (Image, error) {
	switch hint {
	case VariantV2:
		return ParseV2(buf, 0x400)
	case VariantV2B:
		return ParseV2(buf, 0x100)
	case VariantV3A:
		return ParseV3(buf, false)
	case VariantV3B:
		return ParseV3(buf, true)
	}

	for _, off := range defaultScanOffsets {
		if off+4 > len(buf) {
			continue
		}
		// Little-endian header: byte 0 is param, byte 3 is tag.
		switch buf[off+3] {
		case IVT2Tag:
			if im, err := ParseV2(buf, off); err == nil {
				return im, nil
			}
		case IVT3Tag:
			if im, err := ParseV3(buf[off:], false); err == nil {
				return im, nil
			}
			if im, err := ParseV3(buf[off:], true); err == nil {
				return im, nil
			}
		}
	}

	return nil, fmt.Errorf("img: %w", ErrUnrecognizedVariant)
}
