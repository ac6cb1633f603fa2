// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/usbarmory/imx-tools/pkg/sdp"
)

// Command is implemented by each imxsd verb.
type Command interface {
	flags.Commander

	ShortDescription() string
	LongDescription() string
}

// ErrArgs wraps a caller/usage error in the leftover positional arguments.
type ErrArgs struct {
	Err error
}

func (e ErrArgs) Error() string { return e.Err.Error() }
func (e ErrArgs) Unwrap() error { return e.Err }

// DeviceOpts are the flags every imxsd verb shares to select a device link
// and its HID profile.
type DeviceOpts struct {
	HidrawPath string `long:"hidraw" description:"path to the target's hidraw device node" required:"true"`
	Chip       string `long:"chip" description:"chip family tag (see pkg/sdp.ChipTag)"`
	VIDPID     string `long:"vidpid" description:"VID:PID literal, used when --chip is omitted"`
}

// ResolveProfile selects a Profile from either --chip or --vidpid.
func (o DeviceOpts) ResolveProfile() (sdp.Profile, error) {
	if o.Chip != "" {
		p, ok := sdp.Profiles[sdp.ChipTag(strings.ToUpper(o.Chip))]
		if !ok {
			return sdp.Profile{}, fmt.Errorf("unknown --chip %q", o.Chip)
		}
		return p, nil
	}
	if o.VIDPID != "" {
		vid, pid, err := parseVIDPID(o.VIDPID)
		if err != nil {
			return sdp.Profile{}, err
		}
		return sdp.LookupDevice(vid, pid)
	}
	return sdp.Profile{}, fmt.Errorf("one of --chip or --vidpid is required")
}

func parseVIDPID(s string) (uint16, uint16, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--vidpid must be VID:PID, got %q", s)
	}
	vid, err := strconv.ParseUint(parts[0], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid VID %q: %w", parts[0], err)
	}
	pid, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid PID %q: %w", parts[1], err)
	}
	return uint16(vid), uint16(pid), nil
}

// ParseUint32 accepts both 0x-prefixed hex and decimal literals, used by
// every verb's address/value flags.
func ParseUint32(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	return uint32(v), err
}
