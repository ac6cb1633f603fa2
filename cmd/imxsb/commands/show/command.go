// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package show

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/usbarmory/imx-tools/cmd/imxsb/commands"
	"github.com/usbarmory/imx-tools/pkg/smartboot"
)

var _ commands.Command = (*Command)(nil)

// Command implements "imxsb show": prints a .smx document's HEAD, DATA and
// BODY sections without touching a device.
type Command struct{}

func (cmd *Command) ShortDescription() string { return "prints a Smart-Boot recipe's contents" }
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

	fmt.Printf("NAME: %s\nDESC: %s\nCHIP: %s\n\n", doc.Head.Name, doc.Head.Desc, doc.Head.Chip)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("DATA segments")
	t.AppendHeader(table.Row{"Name", "Type", "Addr", "Desc"})
	for name, d := range doc.Data {
		t.AppendRow(table.Row{name, d.Type, fmt.Sprintf("0x%08X", uint32(d.Addr)), d.Desc})
	}
	t.Render()

	t2 := table.NewWriter()
	t2.SetOutputMirror(os.Stdout)
	t2.SetTitle("BODY recipes")
	t2.AppendHeader(table.Row{"Name", "Desc"})
	for _, r := range doc.Body {
		t2.AppendRow(table.Row{r.Name, r.Desc})
	}
	t2.Render()

	return nil
}
