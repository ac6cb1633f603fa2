// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcd

import (
	"fmt"

	"github.com/usbarmory/imx-tools/pkg/bin"
)

// SegmentTag is the outer DCD segment's header tag, matching header.py's
// SegTag.DCD.
const SegmentTag byte = 0xD2

// MaxSize is the largest exported size a DCD segment may have. The ROM
// refuses to load anything larger (spec.md §3.5).
const MaxSize = 1768

// DefaultParam is the DCD segment version byte freshly built segments
// carry, matching segments.py's SegDCD default param (param=0x41).
const DefaultParam byte = 0x41

// Program is an ordered sequence of DCD commands plus the version byte
// carried in the outer segment header's param field.
type Program struct {
	Param    byte
	Commands []Command
}

// NewProgram returns an empty program with the conventional version byte.
func NewProgram() *Program {
	return &Program{Param: DefaultParam}
}

// Size returns the exported size of the segment, header included.
func (p *Program) Size() int {
	n := bin.HeaderSize
	for _, c := range p.Commands {
		n += c.Size()
	}
	return n
}

// Export serializes the full DCD segment: outer header followed by each
// command's own header-prefixed encoding.
func (p *Program) Export() ([]byte, error) {
	size := p.Size()
	if size > MaxSize {
		return nil, fmt.Errorf("dcd: %w: %d bytes exceeds %d-byte limit", ErrOversizeSegment, size, MaxSize)
	}
	h := bin.Header{Tag: SegmentTag, Length: uint16(size), Param: p.Param}
	out := h.ExportBE()
	for _, c := range p.Commands {
		out = append(out, c.Export()...)
	}
	return out, nil
}

// Parse decodes a DCD segment, including its outer header, from buf.
func Parse(buf []byte) (*Program, error) {
	r := bin.NewReader(buf)
	h, err := r.ReadHeaderBE(SegmentTag)
	if err != nil {
		return nil, fmt.Errorf("dcd: %w", err)
	}
	if int(h.Length) > MaxSize {
		return nil, fmt.Errorf("dcd: %w: %d bytes exceeds %d-byte limit", ErrOversizeSegment, h.Length, MaxSize)
	}

	end := int(h.Length) - bin.HeaderSize
	p := &Program{Param: h.Param}
	for r.Pos() < bin.HeaderSize+end {
		cmd, err := ParseCommand(r)
		if err != nil {
			return nil, err
		}
		if !LegalInDCD(cmd.Tag()) {
			return nil, fmt.Errorf("dcd: %w: %s", ErrIllegalInDCD, cmd.Tag())
		}
		p.Commands = append(p.Commands, cmd)
	}
	return p, nil
}

// Append adds a command to the end of the program. It is a convenience
// wrapper; callers may also append directly to Commands.
func (p *Program) Append(c Command) {
	p.Commands = append(p.Commands, c)
}
