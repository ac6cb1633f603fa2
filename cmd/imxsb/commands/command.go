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

// Command is implemented by each imxsb verb (run, show).
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

// ResolveProfile selects a Profile from a recipe's HEAD.CHIP value, which
// is either a recognized chip tag or a "VID:PID" literal, per spec.md
// §4.4's HEAD.CHIP contract.
func ResolveProfile(chip string) (sdp.Profile, error) {
	if p, ok := sdp.Profiles[sdp.ChipTag(strings.ToUpper(chip))]; ok {
		return p, nil
	}
	if strings.Contains(chip, ":") {
		parts := strings.SplitN(chip, ":", 2)
		vid, err := strconv.ParseUint(parts[0], 16, 16)
		if err != nil {
			return sdp.Profile{}, fmt.Errorf("invalid VID in CHIP %q: %w", chip, err)
		}
		pid, err := strconv.ParseUint(parts[1], 16, 16)
		if err != nil {
			return sdp.Profile{}, fmt.Errorf("invalid PID in CHIP %q: %w", chip, err)
		}
		return sdp.LookupDevice(uint16(vid), uint16(pid))
	}
	return sdp.Profile{}, fmt.Errorf("unrecognized HEAD.CHIP %q", chip)
}
