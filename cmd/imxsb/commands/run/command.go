// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package run

import (
	"context"
	"fmt"
	"os"

	"github.com/usbarmory/imx-tools/cmd/imxsb/commands"
	"github.com/usbarmory/imx-tools/cmd/internal/hidraw"
	"github.com/usbarmory/imx-tools/pkg/sdp"
	"github.com/usbarmory/imx-tools/pkg/smartboot"
)

var _ commands.Command = (*Command)(nil)

// Command implements "imxsb run": executes a named BODY recipe from a .smx
// document against a live device.
type Command struct {
	HidrawPath string `long:"hidraw" description:"path to the target's hidraw device node" required:"true"`
	Recipe     string `long:"recipe" description:"name of the BODY recipe to run; all recipes run in order if omitted"`
}

func (cmd *Command) ShortDescription() string { return "runs a Smart-Boot recipe against a device" }
func (cmd *Command) LongDescription() string  { return "" }

func (cmd *Command) Execute(args []string) error {
	if len(args) != 1 {
		return commands.ErrArgs{Err: fmt.Errorf("expected exactly one .smx recipe path")}
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	doc, err := smartboot.ParseDocument(raw)
	if err != nil {
		return err
	}

	profile, err := commands.ResolveProfile(doc.Head.Chip)
	if err != nil {
		return commands.ErrArgs{Err: err}
	}

	var recipes []smartboot.Recipe
	if cmd.Recipe == "" {
		recipes = doc.Body
	} else {
		for _, r := range doc.Body {
			if r.Name == cmd.Recipe {
				recipes = append(recipes, r)
			}
		}
		if len(recipes) == 0 {
			return commands.ErrArgs{Err: fmt.Errorf("no BODY recipe named %q", cmd.Recipe)}
		}
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

	resolver := smartboot.NewResolver(doc)
	ctx := context.Background()
	for _, recipe := range recipes {
		instructions, err := smartboot.CompileCmds(recipe.Cmds)
		if err != nil {
			return fmt.Errorf("recipe %q: %w", recipe.Name, err)
		}
		if err := smartboot.Run(ctx, client, instructions, resolver); err != nil {
			return fmt.Errorf("recipe %q: %w", recipe.Name, err)
		}
	}
	return nil
}
