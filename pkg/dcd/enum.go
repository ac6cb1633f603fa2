// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dcd implements the Device Configuration Data engine: an ordered
// program of pre-boot hardware initialization commands executed by the SoC
// ROM before it jumps to the application image, plus the handful of
// CSF-only command kinds that share the same tag/length/param record shape
// (commands.py's EnumEngine/EnumWriteOps/EnumCheckOps and CmdSet/
// CmdInitialize/CmdInstallKey/CmdAuthData).
package dcd

import "fmt"

// WriteOp selects the read-modify-write operation a WriteData command
// performs against its target address.
type WriteOp uint8

// WriteData operations, matching commands.py's EnumWriteOps.
const (
	WriteValue   WriteOp = 0
	WriteValue1  WriteOp = 1 // legacy alias of WriteValue, kept distinct on the wire
	ClearBitmask WriteOp = 2
	SetBitmask   WriteOp = 3
)

var writeOpNames = map[WriteOp]string{
	WriteValue:   "WriteValue",
	WriteValue1:  "WriteValue",
	ClearBitmask: "ClearBitMask",
	SetBitmask:   "SetBitMask",
}

func (op WriteOp) String() string {
	if name, ok := writeOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("WriteOp(%d)", uint8(op))
}

// Valid reports whether op is one of the four recognized write operations.
func (op WriteOp) Valid() bool {
	_, ok := writeOpNames[op]
	return ok
}

// CheckOp selects the poll condition a CheckData command waits for.
type CheckOp uint8

// CheckData operations, matching commands.py's EnumCheckOps.
const (
	CheckAllClear CheckOp = 0
	CheckAllSet   CheckOp = 1
	CheckAnyClear CheckOp = 2
	CheckAnySet   CheckOp = 3
)

var checkOpNames = map[CheckOp]string{
	CheckAllClear: "CheckAllClear",
	CheckAllSet:   "CheckAllSet",
	CheckAnyClear: "CheckAnyClear",
	CheckAnySet:   "CheckAnySet",
}

func (op CheckOp) String() string {
	if name, ok := checkOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("CheckOp(%d)", uint8(op))
}

// Valid reports whether op is one of the four recognized check operations.
func (op CheckOp) Valid() bool {
	_, ok := checkOpNames[op]
	return ok
}

// Engine identifies the security/config engine an Unlock command targets.
type Engine uint8

// Engine values, matching commands.py's EnumEngine.
const (
	EngineAny    Engine = 0x00
	EngineSCC    Engine = 0x03
	EngineRTIC   Engine = 0x05
	EngineSAHARA Engine = 0x06
	EngineCSU    Engine = 0x0A
	EngineSRTC   Engine = 0x0C
	EngineDCP    Engine = 0x1B
	EngineCAAM   Engine = 0x1D
	EngineSNVS   Engine = 0x1E
	EngineOCOTP  Engine = 0x21
	EngineDTCP   Engine = 0x22
	EngineROM    Engine = 0x36
	EngineHDCP   Engine = 0x24
	EngineSW     Engine = 0xFF
)

var engineNames = map[Engine]string{
	EngineAny:    "ANY",
	EngineSCC:    "SCC",
	EngineRTIC:   "RTIC",
	EngineSAHARA: "SAHARA",
	EngineCSU:    "CSU",
	EngineSRTC:   "SRTC",
	EngineDCP:    "DCP",
	EngineCAAM:   "CAAM",
	EngineSNVS:   "SNVS",
	EngineOCOTP:  "OCOTP",
	EngineDTCP:   "DTCP",
	EngineROM:    "ROM",
	EngineHDCP:   "HDCP",
	EngineSW:     "SW",
}

func (e Engine) String() string {
	if name, ok := engineNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Engine(0x%02X)", uint8(e))
}

// Valid reports whether e is one of the recognized engine identifiers.
func (e Engine) Valid() bool {
	_, ok := engineNames[e]
	return ok
}

// Width is the byte width of a WriteData/CheckData operand.
type Width uint8

// Recognized operand widths.
const (
	Width1 Width = 1
	Width2 Width = 2
	Width4 Width = 4
)

// Valid reports whether w is one of the three widths the ROM accepts.
func (w Width) Valid() bool {
	return w == Width1 || w == Width2 || w == Width4
}

// Tag identifies the on-wire command kind, matching commands.py's CmdTag.
type Tag uint8

// Command tags. WriteData, CheckData, Nop and Unlock are legal inside a DCD
// segment; Set, InstallKey, AuthData and Initialize are CSF-only but share
// the same header shape and so are modeled here rather than duplicated.
const (
	TagSet         Tag = 0xB1
	TagInstallKey  Tag = 0xBE
	TagAuthData    Tag = 0xCA
	TagWriteData   Tag = 0xCC
	TagCheckData   Tag = 0xCF
	TagNop         Tag = 0xC0
	TagInitialize  Tag = 0xB4
	TagUnlock      Tag = 0xB2
)

func (t Tag) String() string {
	switch t {
	case TagSet:
		return "Set"
	case TagInstallKey:
		return "InstallKey"
	case TagAuthData:
		return "AuthData"
	case TagWriteData:
		return "WriteData"
	case TagCheckData:
		return "CheckData"
	case TagNop:
		return "Nop"
	case TagInitialize:
		return "Initialize"
	case TagUnlock:
		return "Unlock"
	default:
		return fmt.Sprintf("Tag(0x%02X)", uint8(t))
	}
}

// dcdLegal is the set of command tags commands.py's SegDCD.CMD_TYPES allows
// inside a DCD segment (as opposed to a CSF segment, which allows all eight).
var dcdLegal = map[Tag]bool{
	TagWriteData: true,
	TagCheckData: true,
	TagNop:       true,
	TagUnlock:    true,
}

// LegalInDCD reports whether t may appear inside a DCD segment.
func LegalInDCD(t Tag) bool {
	return dcdLegal[t]
}
