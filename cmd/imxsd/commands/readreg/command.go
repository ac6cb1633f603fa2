// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package readreg

import (
	"fmt"

	"github.com/usbarmory/imx-tools/cmd/imxsd/commands"
	"github.com/usbarmory/imx-tools/cmd/internal/hidraw"
	"github.com/usbarmory/imx-tools/pkg/sdp"
)

var _ commands.Command = (*Command)(nil)

// Command implements "imxsd readreg": a single SDP Read Register command.
type Command struct {
	commands.DeviceOpts
	Width   int    `long:"width" description:"access width in bits [8, 16, 32]" default:"32"`
	Address string `long:"address" description:"target register address" required:"true"`
	Count   uint32 `long:"count" description:"number of values to read" default:"1"`
}

func (cmd *Command) ShortDescription() string { return "reads one or more device registers" }
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

	values, err := client.ReadRegister(address, uint8(cmd.Width), cmd.Count)
	if err != nil {
		return err
	}
	for i, v := range values {
		fmt.Printf("0x%08X: 0x%0*X\n", address+uint32(i)*uint32(cmd.Width/8), cmd.Width/4, v)
	}
	return nil
}
