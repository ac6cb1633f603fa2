// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import (
	"github.com/usbarmory/imx-tools/pkg/bin"
	"github.com/usbarmory/imx-tools/pkg/dcd"
)

// App is the application payload segment: raw bytes plus the trailing
// zero-padding needed to reach the next segment's alignment.
type App struct {
	Data    []byte
	Padding int
}

// Size returns the padded, exported size of the segment.
func (a *App) Size() int { return len(a.Data) + a.Padding }

// Buf implements Firmware.
func (a *App) Buf() ([]byte, error) { return a.Export(), nil }

// Apply implements Firmware.
func (a *App) Apply(v Visitor) error { return v.Visit(a) }

// ApplyChildren implements Firmware; App is a leaf.
func (a *App) ApplyChildren(v Visitor) error { return nil }

// Export serializes the payload followed by Padding zero bytes.
func (a *App) Export() []byte {
	out := make([]byte, a.Size())
	copy(out, a.Data)
	return out
}

// CSF is the Code Signing File segment: preserved byte-for-byte, never
// generated or verified by this codec (spec.md §3.6, Non-goals).
type CSF struct {
	Data    []byte
	Padding int
}

// Size returns the padded, exported size of the segment.
func (c *CSF) Size() int { return len(c.Data) + c.Padding }

// Buf implements Firmware.
func (c *CSF) Buf() ([]byte, error) { return c.Export(), nil }

// Apply implements Firmware.
func (c *CSF) Apply(v Visitor) error { return v.Visit(c) }

// ApplyChildren implements Firmware; CSF is a leaf.
func (c *CSF) ApplyChildren(v Visitor) error { return nil }

// Export serializes the CSF bytes followed by Padding zero bytes.
func (c *CSF) Export() []byte {
	out := make([]byte, c.Size())
	copy(out, c.Data)
	return out
}

// Commands decodes the CSF payload as a sequence of command records using
// the same tag/length/param walker pkg/dcd uses for DCD segments, letting
// callers inspect a structured command list instead of only an opaque byte
// slice (an enrichment over spec.md grounded on commands.py/segments.py's
// SegCSF.CMD_TYPES, which accepts all eight command tags). Unlike DCD
// parsing this never rejects CSF-only tags: a CSF legally carries Set,
// InstallKey and AuthData alongside WriteData/CheckData/Nop/Unlock.
func (c *CSF) Commands() ([]dcd.Command, error) {
	r := bin.NewReader(c.Data)
	var cmds []dcd.Command
	for r.Len() > 0 {
		cmd, err := dcd.ParseCommand(r)
		if err != nil {
			return cmds, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}
