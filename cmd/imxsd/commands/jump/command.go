// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jump

import (
	"fmt"

	"github.com/usbarmory/imx-tools/cmd/imxsd/commands"
	"github.com/usbarmory/imx-tools/cmd/internal/hidraw"
	"github.com/usbarmory/imx-tools/pkg/sdp"
)

var _ commands.Command = (*Command)(nil)

// Command implements "imxsd jump": a standalone SDP Jump Address command.
type Command struct {
	commands.DeviceOpts
	Address string `long:"address" description:"address to jump to" required:"true"`
}

func (cmd *Command) ShortDescription() string { return "jumps to an address on the device" }
func (cmd *Command) LongDescription() string  { return "" }

func (cmd *Command) Execute(args []string) error {
	if len(args) != 0 {
		return commands.ErrArgs{Err: fmt.Errorf("unexpected arguments: %v", args)}
	}

	profile, err := cmd.ResolveProfile()
	if err != nil {
		return commands.ErrArgs{Err: err}
	}
	address, err := commands.ParseUint32(cmd.Address)
	if err != nil {
		return commands.ErrArgs{Err: fmt.Errorf("invalid --address: %w", err)}
	}

	t, err := hidraw.Open(cmd.HidrawPath)
	if err != nil {
		return err
	}
	defer t.Close()

	client := sdp.NewClient(t, profile)
	if err := client.Open(); err != nil {
		return err
	}
	defer client.Close()

	return client.Jump(address)
}
