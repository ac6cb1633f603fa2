// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report implements read-only Visitors over a pkg/img.Firmware
// tree: a human-readable info table and a pointer/layout validator.
package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/usbarmory/imx-tools/pkg/dcd"
	"github.com/usbarmory/imx-tools/pkg/img"
)

// InfoVisitor renders a pkg/img.Firmware tree as a table of node, address
// and size columns, grounded on pkg/amd/psb/pspentries.go's table.NewWriter
// usage and pkg/visitors/table.go's indent-by-depth node walk.
type InfoVisitor struct {
	Out io.Writer

	t      table.Writer
	indent int
}

// Run applies the visitor to f, rendering the finished table to Out.
func (v *InfoVisitor) Run(f img.Firmware) error {
	v.t = table.NewWriter()
	if v.Out != nil {
		v.t.SetOutputMirror(v.Out)
	}
	v.t.SetTitle("Boot image layout")
	v.t.AppendHeader(table.Row{"Node", "Detail", "Size"})

	if err := f.Apply(v); err != nil {
		return err
	}
	v.t.Render()
	return nil
}

// Visit implements img.Visitor.
func (v *InfoVisitor) Visit(f img.Firmware) error {
	node, detail := v.describe(f)

	size := "-"
	if buf, err := f.Buf(); err == nil {
		size = humanize.IBytes(uint64(len(buf)))
	}

	v.t.AppendRow(table.Row{indent(v.indent) + node, detail, size})

	v2 := *v
	v2.indent++
	return f.ApplyChildren(&v2)
}

func (v *InfoVisitor) describe(f img.Firmware) (node, detail string) {
	switch f := f.(type) {
	case *img.V2Image:
		return "Image (v2)", fmt.Sprintf("start=0x%08X", f.Start)
	case *img.V3Image:
		variant := "v3a"
		if f.Extended {
			variant = "v3b"
		}
		return "Image (" + variant + ")", fmt.Sprintf("start=0x%016X", f.Start)
	case *img.IVT2:
		return "IVT", fmt.Sprintf("self=0x%08X entry=0x%08X", f.Self, f.Entry)
	case *img.BDT:
		return "BDT", fmt.Sprintf("start=0x%08X length=%d", f.Start, f.Length)
	case *img.DCDSegment:
		if f.Program == nil {
			return "DCD", "0 commands"
		}
		tags := make([]string, len(f.Program.Commands))
		for i, c := range f.Program.Commands {
			tags[i] = describeCommand(c)
		}
		return "DCD", fmt.Sprintf("%d commands: %v", len(tags), tags)
	case *img.App:
		return "APP", fmt.Sprintf("padding=%d", f.Padding)
	case *img.CSF:
		detail := fmt.Sprintf("padding=%d", f.Padding)
		if cmds, err := f.Commands(); err == nil {
			detail = fmt.Sprintf("%s, %d commands", detail, len(cmds))
		}
		return "CSF", detail
	case *img.Component:
		return "Component", fmt.Sprintf("%q load=0x%016X entry=0x%016X", f.Name, f.LoadAddr, f.EntryAddr)
	default:
		return fmt.Sprintf("%T", f), ""
	}
}

func indent(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += "  "
	}
	return out
}

// describeCommand renders one DCD command for the DCD row's detail column.
func describeCommand(c dcd.Command) string {
	return fmt.Sprintf("%s (%d bytes)", c.Tag(), c.Size())
}
