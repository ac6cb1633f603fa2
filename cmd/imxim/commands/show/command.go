// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package show

import (
	"fmt"
	"os"

	"github.com/usbarmory/imx-tools/cmd/imxim/commands"
	"github.com/usbarmory/imx-tools/pkg/img"
	"github.com/usbarmory/imx-tools/pkg/report"
)

var _ commands.Command = (*Command)(nil)

// Command implements "imxim show": parses an image and renders its segment
// layout as a table.
type Command struct {
	Variant string `long:"variant" description:"container variant hint [auto, v2, v2b, v3a, v3b]" default:"auto"`
}

func (cmd *Command) ShortDescription() string { return "prints a boot image's layout" }
func (cmd *Command) LongDescription() string  { return "" }

func (cmd *Command) Execute(args []string) error {
	if len(args) != 1 {
		return commands.ErrArgs{Err: fmt.Errorf("expected exactly one image path")}
	}

	buf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	hint, err := ParseVariant(cmd.Variant)
	if err != nil {
		return commands.ErrArgs{Err: err}
	}

	im, err := img.Parse(buf, hint)
	if err != nil {
		return fmt.Errorf("parsing image: %w", err)
	}

	fw, ok := im.(img.Firmware)
	if !ok {
		return fmt.Errorf("image does not support layout rendering")
	}

	v := &report.InfoVisitor{Out: os.Stdout}
	return v.Run(fw)
}

// ParseVariant maps a --variant flag value to its img.Variant hint, shared
// with the validate subcommand.
func ParseVariant(s string) (img.Variant, error) {
	switch s {
	case "", "auto":
		return img.VariantAuto, nil
	case "v2":
		return img.VariantV2, nil
	case "v2b":
		return img.VariantV2B, nil
	case "v3a":
		return img.VariantV3A, nil
	case "v3b":
		return img.VariantV3B, nil
	}
	return img.VariantAuto, fmt.Errorf("unknown --variant %q", s)
}
