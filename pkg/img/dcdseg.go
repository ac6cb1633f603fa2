// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import "github.com/usbarmory/imx-tools/pkg/dcd"

// DCDSegment adapts a dcd.Program into a Firmware tree node so it can sit
// alongside the IVT/BDT/App/CSF segments under the same visitor walk.
type DCDSegment struct {
	Program *dcd.Program
	Padding int
}

// Size returns the padded, exported size of the segment.
func (d *DCDSegment) Size() (int, error) {
	if d.Program == nil {
		return 0, nil
	}
	return d.Program.Size() + d.Padding, nil
}

// Buf implements Firmware.
func (d *DCDSegment) Buf() ([]byte, error) {
	if d.Program == nil {
		return nil, nil
	}
	out, err := d.Program.Export()
	if err != nil {
		return nil, err
	}
	pad := make([]byte, d.Padding)
	return append(out, pad...), nil
}

// Apply implements Firmware.
func (d *DCDSegment) Apply(v Visitor) error { return v.Visit(d) }

// ApplyChildren implements Firmware; DCDSegment is a leaf from the image
// tree's point of view (the DCD's own commands are not separately
// addressable segments).
func (d *DCDSegment) ApplyChildren(v Visitor) error { return nil }

// Enabled reports whether this image carries a DCD at all.
func (d *DCDSegment) Enabled() bool { return d.Program != nil }
