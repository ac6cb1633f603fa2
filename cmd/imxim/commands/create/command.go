// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package create

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/usbarmory/imx-tools/cmd/imxim/commands"
	"github.com/usbarmory/imx-tools/pkg/dcd"
	"github.com/usbarmory/imx-tools/pkg/img"
)

var _ commands.Command = (*Command)(nil)

// Command implements "imxim create": builds a v2/v2b boot image from a raw
// application payload plus an optional DCD program, and writes its
// exported bytes to -o.
type Command struct {
	App    string `short:"a" long:"app" description:"path to the raw application payload" required:"true"`
	DCD    string `short:"d" long:"dcd" description:"path to a DCD program in text form"`
	CSF    string `long:"csf" description:"path to a preformatted CSF segment"`
	Output string `short:"o" long:"output" description:"output image path" required:"true"`
	Start  string `long:"start" description:"image base address (0x-prefixed or decimal)" required:"true"`
	Plugin bool   `long:"plugin" description:"set the plugin flag in the boot data table"`
	V2B    bool   `long:"v2b" description:"use the i.MX8M (v2b) layout profile instead of v2"`
}

func (cmd *Command) ShortDescription() string { return "creates a v2/v2b boot image" }
func (cmd *Command) LongDescription() string  { return "" }

func (cmd *Command) Execute(args []string) error {
	if len(args) != 0 {
		return commands.ErrArgs{Err: fmt.Errorf("unexpected arguments: %v", args)}
	}

	start, err := parseUint32(cmd.Start)
	if err != nil {
		return commands.ErrArgs{Err: fmt.Errorf("invalid --start: %w", err)}
	}

	app, err := os.ReadFile(cmd.App)
	if err != nil {
		return fmt.Errorf("reading app payload: %w", err)
	}

	var program *dcd.Program
	if cmd.DCD != "" {
		text, err := os.ReadFile(cmd.DCD)
		if err != nil {
			return fmt.Errorf("reading DCD: %w", err)
		}
		program, err = dcd.ParseText(string(text))
		if err != nil {
			return fmt.Errorf("parsing DCD: %w", err)
		}
	}

	var csf []byte
	if cmd.CSF != "" {
		csf, err = os.ReadFile(cmd.CSF)
		if err != nil {
			return fmt.Errorf("reading CSF: %w", err)
		}
	}

	profile := img.ProfileV2
	if cmd.V2B {
		profile = img.ProfileV2B
	}

	var plugin uint32
	if cmd.Plugin {
		plugin = 1
	}

	im, err := img.BuildV2(profile, start, app, program, csf, plugin)
	if err != nil {
		return fmt.Errorf("building image: %w", err)
	}

	buf, err := im.Export()
	if err != nil {
		return fmt.Errorf("exporting image: %w", err)
	}

	if err := os.WriteFile(cmd.Output, buf, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", cmd.Output, err)
	}
	return nil
}

func parseUint32(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	return uint32(v), err
}
