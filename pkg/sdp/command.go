// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sdp implements the host side of the SoC ROM's Serial Download
// Protocol over USB-HID: read/write register, write DCD/file/CSF, status,
// and jump-and-run operations, plus the composite write-image sequence.
package sdp

import "github.com/usbarmory/imx-tools/pkg/bin"

// Opcode identifies an SDP command, matching sdp.py's CMDS table.
type Opcode uint16

// Recognized opcodes (spec.md §4.3).
const (
	OpReadRegister  Opcode = 0x0101
	OpWriteRegister Opcode = 0x0202
	OpWriteFile     Opcode = 0x0404
	OpReadStatus    Opcode = 0x0505
	OpWriteDCD      Opcode = 0x0606
	OpWriteCSF      Opcode = 0x0A0A
	OpSkipDCD       Opcode = 0x0B0B
	OpJumpAddress   Opcode = 0x0F0F
)

// Acknowledgement codes a final-status Report 4 carries on success,
// matching sdp.py's CMDS[...]['ACK'] values.
const (
	AckWriteRegister uint32 = 0x128A8A12
	AckWriteFile     uint32 = 0x88888888
	AckSkipDCD       uint32 = 0x900DD009
)

// CommandSize is the fixed, header-inclusive size of a Report 1 command
// block (spec.md §4.3).
const CommandSize = 16

// Command is the 16-byte SDP command block sent on Report ID 1, grounded on
// usbarmory-armory-drive__sdp.go's sdp.SDP{CommandType, Address, Format,
// DataCount, DataValue} struct and sdp.py's `_send_cmd`'s `'>HIBII'` pack
// format (opcode, address, format, count, value).
type Command struct {
	Opcode    Opcode
	Address   uint32
	Format    uint8 // 0, 8, 16 or 32; 0 when the opcode carries no operand width
	DataCount uint32
	DataValue uint32
}

// Bytes serializes the command block, big-endian, padded with one reserved
// zero byte to CommandSize.
func (c Command) Bytes() []byte {
	out := make([]byte, CommandSize)
	bin.PutU16BE(out[0:2], uint16(c.Opcode))
	bin.PutU32BE(out[2:6], c.Address)
	out[6] = c.Format
	bin.PutU32BE(out[7:11], c.DataCount)
	bin.PutU32BE(out[11:15], c.DataValue)
	// out[15] is reserved, left zero.
	return out
}
