// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdp

import "fmt"

// ChipTag identifies a supported chip family, selecting a Profile.
type ChipTag string

// Recognized chip tags, grounded on sdp.py's per-family subclasses
// (SdpMX67, SdpMXRT, SdpMX8M, SdpMX8A0, SdpMX8) and their DEVICES maps.
const (
	ChipMX6DQP  ChipTag = "MX6DQP"
	ChipMX6SDL  ChipTag = "MX6SDL"
	ChipMX6SL   ChipTag = "MX6SL"
	ChipMX6SX   ChipTag = "MX6SX"
	ChipMX6UL   ChipTag = "MX6UL"
	ChipMX6ULL  ChipTag = "MX6ULL"
	ChipMX6SLL  ChipTag = "MX6SLL"
	ChipMX7SD   ChipTag = "MX7SD"
	ChipMX7ULP  ChipTag = "MX7ULP"
	ChipVybrid  ChipTag = "VYBRID"
	ChipMXRT    ChipTag = "MXRT"
	ChipMX8M    ChipTag = "MX8M"
	ChipMX8QXPA ChipTag = "MX8QXP-A0"
	ChipMX8QMA  ChipTag = "MX8QM-A0"
	ChipMX8QXP  ChipTag = "MX8QXP"
	ChipMX8QM   ChipTag = "MX8QM"
)

// Profile is the per-chip HID report layout: report IDs are fixed at 1-4 by
// the protocol (spec.md §4.3), but report sizes and the status-word byte
// order vary by chip family.
type Profile struct {
	Chip ChipTag

	Report1Size int // command report (Report ID 1)
	Report2Size int // data-out report (Report ID 2)
	Report3Size int // interim-status report (Report ID 3)
	Report4Size int // final-status report (Report ID 4)

	// BigEndianStatus selects whether Report 3/4 status words are
	// big-endian (most chips) or little-endian.
	BigEndianStatus bool

	// SupportsWriteCSF/SupportsSkipDCD mirror sdp.py's per-family
	// NotImplementedError overrides (e.g. SdpMXRT.write_csf/skip_dcd).
	SupportsWriteCSF bool
	SupportsSkipDCD  bool
}

// defaultProfile is the HID_REPORT layout shared by every mainline i.MX6/7
// family device, grounded on sdp.py's HID_REPORT table:
// CMD=1024, DAT=1024, SEC=4, RET=64.
func defaultProfile(chip ChipTag) Profile {
	return Profile{
		Chip:             chip,
		Report1Size:      1024,
		Report2Size:      1024,
		Report3Size:      4,
		Report4Size:      64,
		BigEndianStatus:  true,
		SupportsWriteCSF: true,
		SupportsSkipDCD:  true,
	}
}

// Profiles is the recognized chip-family → HID profile table.
var Profiles = map[ChipTag]Profile{
	ChipMX6DQP: defaultProfile(ChipMX6DQP),
	ChipMX6SDL: defaultProfile(ChipMX6SDL),
	ChipMX6SL:  defaultProfile(ChipMX6SL),
	ChipMX6SX:  defaultProfile(ChipMX6SX),
	ChipMX6UL:  defaultProfile(ChipMX6UL),
	ChipMX6ULL: defaultProfile(ChipMX6ULL),
	ChipMX6SLL: defaultProfile(ChipMX6SLL),
	ChipMX7SD:  defaultProfile(ChipMX7SD),
	ChipMX7ULP: defaultProfile(ChipMX7ULP),
	ChipVybrid: defaultProfile(ChipVybrid),
	ChipMX8M:   defaultProfile(ChipMX8M),

	// MXRT does not implement write_csf/skip_dcd (sdp.py's SdpMXRT raises
	// NotImplementedError for both).
	ChipMXRT: func() Profile {
		p := defaultProfile(ChipMXRT)
		p.SupportsWriteCSF = false
		p.SupportsSkipDCD = false
		return p
	}(),

	ChipMX8QXPA: defaultProfile(ChipMX8QXPA),
	ChipMX8QMA:  defaultProfile(ChipMX8QMA),

	// MX8QXP/MX8QM leave several SdpBase methods unimplemented in the
	// original; write_csf specifically is one of them.
	ChipMX8QXP: func() Profile {
		p := defaultProfile(ChipMX8QXP)
		p.SupportsWriteCSF = false
		return p
	}(),
	ChipMX8QM: func() Profile {
		p := defaultProfile(ChipMX8QM)
		p.SupportsWriteCSF = false
		return p
	}(),
}

// DeviceID is a USB vendor/product ID pair.
type DeviceID struct {
	VendorID  uint16
	ProductID uint16
}

// DeviceTable maps (vendor, product) to the chip tag it identifies,
// grounded directly on sdp.py's per-family DEVICES dictionaries.
var DeviceTable = map[DeviceID]ChipTag{
	{0x15A2, 0x0054}: ChipMX6DQP,
	{0x15A2, 0x0061}: ChipMX6SDL,
	{0x15A2, 0x0063}: ChipMX6SL,
	{0x15A2, 0x0071}: ChipMX6SX,
	{0x15A2, 0x007D}: ChipMX6UL,
	{0x15A2, 0x0080}: ChipMX6ULL,
	{0x15A2, 0x0128}: ChipMX6SLL,
	{0x15A2, 0x0076}: ChipMX7SD,
	{0x1FC9, 0x0126}: ChipMX7ULP,
	{0x15A2, 0x006A}: ChipVybrid,
	{0x1FC9, 0x0130}: ChipMXRT,
	{0x1FC9, 0x012B}: ChipMX8M,
	{0x1FC9, 0x007D}: ChipMX8QXPA,
	{0x1FC9, 0x0129}: ChipMX8QMA,
	{0x1FC9, 0x012F}: ChipMX8QXP,
}

// LookupDevice resolves a (vendor, product) pair to its Profile.
func LookupDevice(vid, pid uint16) (Profile, error) {
	tag, ok := DeviceTable[DeviceID{vid, pid}]
	if !ok {
		return Profile{}, fmt.Errorf("sdp: %w: vid 0x%04X pid 0x%04X", ErrUnsupportedDevice, vid, pid)
	}
	return Profiles[tag], nil
}
