// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// imxsb runs Smart-Boot .smx recipes: scripted SDP provisioning sequences
// composing pkg/dcd, pkg/img and pkg/sdp.
//
// Synopsis:
//     imxsb show RECIPE.smx
//     imxsb run --hidraw DEV [--recipe NAME] RECIPE.smx
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/usbarmory/imx-tools/cmd/imxsb/commands"
	"github.com/usbarmory/imx-tools/cmd/imxsb/commands/run"
	"github.com/usbarmory/imx-tools/cmd/imxsb/commands/show"
	"github.com/usbarmory/imx-tools/cmd/internal/exitcode"
)

var knownCommands = map[string]commands.Command{
	"run":  &run.Command{},
	"show": &show.Command{},
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
