// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package writefile

import (
	"fmt"
	"os"

	"github.com/usbarmory/imx-tools/cmd/imxsd/commands"
	"github.com/usbarmory/imx-tools/cmd/internal/hidraw"
	"github.com/usbarmory/imx-tools/pkg/sdp"
)

var _ commands.Command = (*Command)(nil)

// Command implements "imxsd writefile": streams a raw file to a device
// address via SDP Write File.
type Command struct {
	commands.DeviceOpts
	Address string `long:"address" description:"target memory address" required:"true"`
	Run     bool   `long:"run" description:"jump to --address after the write completes"`
}

func (cmd *Command) ShortDescription() string { return "writes a raw file to device memory" }
func (cmd *Command) LongDescription() string  { return "" }

func (cmd *Command) Execute(args []string) error {
	if len(args) != 1 {
		return commands.ErrArgs{Err: fmt.Errorf("expected exactly one file path")}
	}

	profile, err := cmd.ResolveProfile()
	if err != nil {
		return commands.ErrArgs{Err: err}
	}
	address, err := commands.ParseUint32(cmd.Address)
	if err != nil {
		return commands.ErrArgs{Err: fmt.Errorf("invalid --address: %w", err)}
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
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

	progress := func(sent, total int) {
		fmt.Printf("\r%d/%d bytes", sent, total)
	}
	if err := client.WriteFile(address, data, progress); err != nil {
		return err
	}
	fmt.Println()

	if cmd.Run {
		return client.Jump(address)
	}
	return nil
}
