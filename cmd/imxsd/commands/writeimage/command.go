// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package writeimage

import (
	"fmt"
	"os"

	"github.com/usbarmory/imx-tools/cmd/imxsd/commands"
	"github.com/usbarmory/imx-tools/cmd/internal/hidraw"
	"github.com/usbarmory/imx-tools/pkg/img"
	"github.com/usbarmory/imx-tools/pkg/sdp"
)

var _ commands.Command = (*Command)(nil)

// Command implements "imxsd writeimage": the composite strip-DCD/write/jump
// sequence over a v2/v2b boot image.
type Command struct {
	commands.DeviceOpts
	DCDAddress string `long:"dcd-address" description:"OCRAM staging address for a stripped DCD"`
	StripDCD   bool   `long:"strip-dcd" description:"write the DCD separately and skip it in the main image write"`
	Run        bool   `long:"run" description:"jump to the image's IVT self-pointer after the write completes"`
}

func (cmd *Command) ShortDescription() string { return "writes a v2/v2b boot image" }
func (cmd *Command) LongDescription() string  { return "" }

func (cmd *Command) Execute(args []string) error {
	if len(args) != 1 {
		return commands.ErrArgs{Err: fmt.Errorf("expected exactly one image path")}
	}

	profile, err := cmd.ResolveProfile()
	if err != nil {
		return commands.ErrArgs{Err: err}
	}

	var dcdAddress uint32
	if cmd.DCDAddress != "" {
		dcdAddress, err = commands.ParseUint32(cmd.DCDAddress)
		if err != nil {
			return commands.ErrArgs{Err: fmt.Errorf("invalid --dcd-address: %w", err)}
		}
	} else if cmd.StripDCD {
		return commands.ErrArgs{Err: fmt.Errorf("--strip-dcd requires --dcd-address")}
	}

	buf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	parsed, err := img.Parse(buf, img.VariantAuto)
	if err != nil {
		return fmt.Errorf("parsing image: %w", err)
	}
	im, ok := parsed.(*img.V2Image)
	if !ok {
		return fmt.Errorf("writeimage only supports v2/v2b images")
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
	err = client.WriteImage(im, sdp.WriteImageOptions{
		DCDAddress: dcdAddress,
		StripDCD:   cmd.StripDCD,
		Run:        cmd.Run,
		Progress:   progress,
	})
	fmt.Println()
	return err
}
