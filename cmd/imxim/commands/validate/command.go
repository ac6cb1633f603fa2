// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"fmt"
	"os"

	"github.com/usbarmory/imx-tools/cmd/imxim/commands"
	"github.com/usbarmory/imx-tools/cmd/imxim/commands/show"
	"github.com/usbarmory/imx-tools/pkg/img"
	"github.com/usbarmory/imx-tools/pkg/report"
)

var _ commands.Command = (*Command)(nil)

// Command implements "imxim validate": parses an image and runs every
// node's pointer/layout invariant check, printing "OK" on success.
type Command struct {
	Variant string `long:"variant" description:"container variant hint [auto, v2, v2b, v3a, v3b]" default:"auto"`
}

func (cmd *Command) ShortDescription() string { return "validates a boot image's pointers and layout" }
func (cmd *Command) LongDescription() string  { return "" }

func (cmd *Command) Execute(args []string) error {
	if len(args) != 1 {
		return commands.ErrArgs{Err: fmt.Errorf("expected exactly one image path")}
	}

	buf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	hint, err := show.ParseVariant(cmd.Variant)
	if err != nil {
		return commands.ErrArgs{Err: err}
	}

	im, err := img.Parse(buf, hint)
	if err != nil {
		return fmt.Errorf("parsing image: %w", err)
	}
	fw, ok := im.(img.Firmware)
	if !ok {
		return fmt.Errorf("image does not support validation")
	}

	v := &report.ValidateVisitor{}
	if err := v.Run(fw); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Println("OK")
	return nil
}
