// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// imxim builds, inspects and validates i.MX/Vybrid/RT boot images.
//
// Synopsis:
//     imxim create -a APP [-d DCD] [--csf CSF] --start ADDR [--v2b] [--plugin] -o OUT
//     imxim show [--variant auto|v2|v2b|v3a|v3b] IMAGE
//     imxim validate [--variant auto|v2|v2b|v3a|v3b] IMAGE
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/usbarmory/imx-tools/cmd/imxim/commands"
	"github.com/usbarmory/imx-tools/cmd/imxim/commands/create"
	"github.com/usbarmory/imx-tools/cmd/imxim/commands/show"
	"github.com/usbarmory/imx-tools/cmd/imxim/commands/validate"
	"github.com/usbarmory/imx-tools/cmd/internal/exitcode"
)

var knownCommands = map[string]commands.Command{
	"create":   &create.Command{},
	"show":     &show.Command{},
	"validate": &validate.Command{},
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
