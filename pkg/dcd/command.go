// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcd

import (
	"fmt"

	"github.com/usbarmory/imx-tools/pkg/bin"
)

// Command is a single DCD/CSF command record: a tagged union discriminated
// by Tag(), matching commands.py's class-per-tag hierarchy but expressed as
// a Go interface plus one concrete type per tag.
type Command interface {
	// Tag returns the command's on-wire tag.
	Tag() Tag

	// Export serializes the command, header included.
	Export() []byte

	// Size returns the exported size in bytes.
	Size() int
}

// entrySize is the fixed size, in bytes, of one WriteData (address, value)
// pair.
const entrySize = 8

// WriteDataEntry is one (address, value) pair inside a WriteData command.
type WriteDataEntry struct {
	Address uint32
	Value   uint32
}

// WriteData performs a read-modify-write against one or more addresses.
type WriteData struct {
	Op      WriteOp
	Width   Width
	Entries []WriteDataEntry
}

// Tag implements Command.
func (c *WriteData) Tag() Tag { return TagWriteData }

// Size implements Command.
func (c *WriteData) Size() int {
	return bin.HeaderSize + len(c.Entries)*entrySize
}

// Export implements Command.
func (c *WriteData) Export() []byte {
	h := bin.Header{
		Tag:    byte(TagWriteData),
		Length: uint16(c.Size()),
		Param:  writeDataParam(c.Op, c.Width),
	}
	out := h.ExportBE()
	for _, e := range c.Entries {
		entry := make([]byte, entrySize)
		bin.PutU32BE(entry[0:4], e.Address)
		bin.PutU32BE(entry[4:8], e.Value)
		out = append(out, entry...)
	}
	return out
}

func writeDataParam(op WriteOp, width Width) byte {
	return byte(op)<<3 | byte(width)
}

func parseWriteDataParam(param byte) (WriteOp, Width) {
	return WriteOp(param >> 3), Width(param & 0x7)
}

// parseWriteData parses a WriteData record whose header has already been
// consumed from r.
func parseWriteData(h bin.Header, r *bin.Reader) (*WriteData, error) {
	op, width := parseWriteDataParam(h.Param)
	if !op.Valid() {
		return nil, fmt.Errorf("dcd: %w: 0x%02X", ErrInvalidOps, byte(op))
	}
	if !width.Valid() {
		return nil, fmt.Errorf("dcd: %w: %d", ErrInvalidWidth, byte(width))
	}

	body := int(h.Length) - bin.HeaderSize
	if body < 0 || body%entrySize != 0 {
		return nil, fmt.Errorf("dcd: %w: WriteData length %d is not header+N*%d", ErrMalformedHeader, h.Length, entrySize)
	}

	n := body / entrySize
	entries := make([]WriteDataEntry, n)
	for i := 0; i < n; i++ {
		raw, err := r.Read(entrySize)
		if err != nil {
			return nil, fmt.Errorf("dcd: WriteData entry %d: %w", i, err)
		}
		entries[i] = WriteDataEntry{
			Address: bin.U32BE(raw[0:4]),
			Value:   bin.U32BE(raw[4:8]),
		}
	}

	return &WriteData{Op: op, Width: width, Entries: entries}, nil
}

// CheckData polls an address until the condition named by Op is satisfied
// (or, on hardware, until Count polls have been attempted).
type CheckData struct {
	Op      CheckOp
	Width   Width
	Address uint32
	Mask    uint32
	Count   *uint32 // nil when no repeat count is present
}

// Tag implements Command.
func (c *CheckData) Tag() Tag { return TagCheckData }

// Size implements Command.
func (c *CheckData) Size() int {
	n := bin.HeaderSize + 8
	if c.Count != nil {
		n += 4
	}
	return n
}

// Export implements Command.
func (c *CheckData) Export() []byte {
	h := bin.Header{
		Tag:    byte(TagCheckData),
		Length: uint16(c.Size()),
		Param:  byte(c.Op)<<3 | byte(c.Width),
	}
	out := h.ExportBE()
	addr := make([]byte, 4)
	bin.PutU32BE(addr, c.Address)
	out = append(out, addr...)
	mask := make([]byte, 4)
	bin.PutU32BE(mask, c.Mask)
	out = append(out, mask...)
	if c.Count != nil {
		count := make([]byte, 4)
		bin.PutU32BE(count, *c.Count)
		out = append(out, count...)
	}
	return out
}

func parseCheckData(h bin.Header, r *bin.Reader) (*CheckData, error) {
	op := CheckOp(h.Param >> 3)
	width := Width(h.Param & 0x7)
	if !op.Valid() {
		return nil, fmt.Errorf("dcd: %w: 0x%02X", ErrInvalidOps, byte(op))
	}
	if !width.Valid() {
		return nil, fmt.Errorf("dcd: %w: %d", ErrInvalidWidth, byte(width))
	}

	body := int(h.Length) - bin.HeaderSize
	if body != 8 && body != 12 {
		return nil, fmt.Errorf("dcd: %w: CheckData length %d, want header+8 or header+12", ErrMalformedHeader, h.Length)
	}

	addr, err := r.Read(4)
	if err != nil {
		return nil, fmt.Errorf("dcd: CheckData address: %w", err)
	}
	mask, err := r.Read(4)
	if err != nil {
		return nil, fmt.Errorf("dcd: CheckData mask: %w", err)
	}

	c := &CheckData{Op: op, Width: width, Address: bin.U32BE(addr), Mask: bin.U32BE(mask)}
	if body == 12 {
		raw, err := r.Read(4)
		if err != nil {
			return nil, fmt.Errorf("dcd: CheckData count: %w", err)
		}
		count := bin.U32BE(raw)
		c.Count = &count
	}
	return c, nil
}

// Nop is a no-op placeholder command.
type Nop struct{}

// Tag implements Command.
func (c *Nop) Tag() Tag { return TagNop }

// Size implements Command.
func (c *Nop) Size() int { return bin.HeaderSize }

// Export implements Command.
func (c *Nop) Export() []byte {
	h := bin.Header{Tag: byte(TagNop), Length: uint16(c.Size()), Param: 0}
	return h.ExportBE()
}

func parseNop(h bin.Header) (*Nop, error) {
	if h.Length != bin.HeaderSize {
		return nil, fmt.Errorf("dcd: %w: Nop length %d, want %d", ErrMalformedHeader, h.Length, bin.HeaderSize)
	}
	return &Nop{}, nil
}

// Unlock configures a security/config engine out of its locked state. The
// value list is engine-specific (a single 32-bit feature word for most
// engines, a feature word followed by a 64-bit UID for SRTC/SCC).
type Unlock struct {
	Engine Engine
	Values []uint32
}

// Tag implements Command.
func (c *Unlock) Tag() Tag { return TagUnlock }

// Size implements Command.
func (c *Unlock) Size() int {
	return bin.HeaderSize + len(c.Values)*4
}

// Export implements Command.
func (c *Unlock) Export() []byte {
	h := bin.Header{Tag: byte(TagUnlock), Length: uint16(c.Size()), Param: byte(c.Engine)}
	out := h.ExportBE()
	for _, v := range c.Values {
		raw := make([]byte, 4)
		bin.PutU32BE(raw, v)
		out = append(out, raw...)
	}
	return out
}

func parseUnlock(h bin.Header, r *bin.Reader) (*Unlock, error) {
	engine := Engine(h.Param)
	if !engine.Valid() {
		return nil, fmt.Errorf("dcd: %w: 0x%02X", ErrUnknownEngine, byte(engine))
	}
	body := int(h.Length) - bin.HeaderSize
	if body < 0 || body%4 != 0 {
		return nil, fmt.Errorf("dcd: %w: Unlock length %d is not header+4*N", ErrMalformedHeader, h.Length)
	}
	n := body / 4
	values := make([]uint32, n)
	for i := 0; i < n; i++ {
		raw, err := r.Read(4)
		if err != nil {
			return nil, fmt.Errorf("dcd: Unlock value %d: %w", i, err)
		}
		values[i] = bin.U32BE(raw)
	}
	return &Unlock{Engine: engine, Values: values}, nil
}

// ParseCommand parses one command record at the cursor, dispatching on its
// tag. It accepts all eight command tags (the four DCD-legal ones plus the
// four CSF-only ones) so that pkg/img's CSF walker can decode a structured
// command list instead of treating CSF as an opaque blob; callers that only
// want DCD-legal commands should check LegalInDCD(cmd.Tag()).
func ParseCommand(r *bin.Reader) (Command, error) {
	h, err := r.ReadHeaderBE(0)
	if err != nil {
		return nil, fmt.Errorf("dcd: %w", err)
	}

	switch Tag(h.Tag) {
	case TagWriteData:
		return parseWriteData(h, r)
	case TagCheckData:
		return parseCheckData(h, r)
	case TagNop:
		return parseNop(h)
	case TagUnlock:
		return parseUnlock(h, r)
	case TagSet, TagInstallKey, TagAuthData, TagInitialize:
		return parseOpaque(h, r)
	default:
		return nil, fmt.Errorf("dcd: %w: 0x%02X", ErrUnknownCommandTag, h.Tag)
	}
}

// Opaque is a CSF-only command record (Set, InstallKey, AuthData,
// Initialize) whose payload is preserved verbatim without structural
// interpretation, matching spec.md §3.6's "opaque from the core's
// perspective" treatment of the CSF segment as a whole.
type Opaque struct {
	tag     Tag
	param   byte
	payload []byte
}

// Tag implements Command.
func (c *Opaque) Tag() Tag { return c.tag }

// Size implements Command.
func (c *Opaque) Size() int { return bin.HeaderSize + len(c.payload) }

// Export implements Command.
func (c *Opaque) Export() []byte {
	h := bin.Header{Tag: byte(c.tag), Length: uint16(c.Size()), Param: c.param}
	return append(h.ExportBE(), c.payload...)
}

func parseOpaque(h bin.Header, r *bin.Reader) (*Opaque, error) {
	body := int(h.Length) - bin.HeaderSize
	if body < 0 {
		return nil, fmt.Errorf("dcd: %w: length %d shorter than header", ErrMalformedHeader, h.Length)
	}
	payload, err := r.Read(body)
	if err != nil {
		return nil, fmt.Errorf("dcd: %s payload: %w", Tag(h.Tag), err)
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return &Opaque{tag: Tag(h.Tag), param: h.Param, payload: cp}, nil
}
