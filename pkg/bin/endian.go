// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bin implements the fixed-width integer packing and the shared
// tag/length/param header primitive used throughout the DCD engine and the
// boot-image codec.
//
// All multi-byte integers on the wire are little-endian unless the record
// format is explicitly big-endian (DCD/CSF command headers and payloads,
// which inherit the SoC ROM's network-order convention). Native host byte
// order is never assumed; every access goes through the helpers here.
package bin

import "encoding/binary"

// U16BE reads a big-endian uint16 at offset 0 of b.
func U16BE(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// PutU16BE writes v as big-endian into b.
func PutU16BE(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }

// U32BE reads a big-endian uint32 at offset 0 of b.
func U32BE(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// PutU32BE writes v as big-endian into b.
func PutU32BE(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }

// U64BE reads a big-endian uint64 at offset 0 of b.
func U64BE(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// PutU64BE writes v as big-endian into b.
func PutU64BE(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// U16LE reads a little-endian uint16 at offset 0 of b.
func U16LE(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

// PutU16LE writes v as little-endian into b.
func PutU16LE(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }

// U32LE reads a little-endian uint32 at offset 0 of b.
func U32LE(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// PutU32LE writes v as little-endian into b.
func PutU32LE(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

// U64LE reads a little-endian uint64 at offset 0 of b.
func U64LE(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

// PutU64LE writes v as little-endian into b.
func PutU64LE(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
