// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// imxsd drives an i.MX/Vybrid/RT ROM Serial Download Protocol session over
// a hidraw device node.
//
// Synopsis:
//     imxsd writereg --hidraw DEV --chip CHIP --address ADDR --value VAL
//     imxsd readreg  --hidraw DEV --chip CHIP --address ADDR [--count N]
//     imxsd writefile --hidraw DEV --chip CHIP --address ADDR [--run] FILE
//     imxsd writeimage --hidraw DEV --chip CHIP [--strip-dcd --dcd-address ADDR] [--run] IMAGE
//     imxsd jump --hidraw DEV --chip CHIP --address ADDR
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/usbarmory/imx-tools/cmd/imxsd/commands"
	"github.com/usbarmory/imx-tools/cmd/imxsd/commands/jump"
	"github.com/usbarmory/imx-tools/cmd/imxsd/commands/readreg"
	"github.com/usbarmory/imx-tools/cmd/imxsd/commands/writefile"
	"github.com/usbarmory/imx-tools/cmd/imxsd/commands/writeimage"
	"github.com/usbarmory/imx-tools/cmd/imxsd/commands/writereg"
	"github.com/usbarmory/imx-tools/cmd/internal/exitcode"
)

var knownCommands = map[string]commands.Command{
	"writereg":   &writereg.Command{},
	"readreg":    &readreg.Command{},
	"writefile":  &writefile.Command{},
	"writeimage": &writeimage.Command{},
	"jump":       &jump.Command{},
}

func main() {
	parser := flags.NewParser(nil, flags.Default)
	for name, cmd := range knownCommands {
		if _, err := parser.AddCommand(name, cmd.ShortDescription(), cmd.LongDescription(), cmd); err != nil {
			panic(err)
		}
	}

	_, err := parser.Parse()
	if err != nil {
		if code := exitcode.For(err); code != exitcode.Success {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(code)
		}
	}
}
