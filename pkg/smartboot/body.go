// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smartboot

import (
	"context"
	"fmt"
	"strings"

	"github.com/usbarmory/imx-tools/pkg/sdp"
)

// Instruction is one compiled BODY.CMDS line.
type Instruction struct {
	Mnemonic string
	// Seg is the referenced DATA segment name for WDCD/WIMG/JRUN; empty
	// for WREG/SDCD.
	Seg string
	// Addr is the explicit address argument, when given. HasAddr is
	// false when the instruction relies on the referenced segment's own
	// ADDR, per spec.md §4.4's resolution rule.
	Addr    uint32
	HasAddr bool
	// Format/Value are WREG's width-in-bits and value arguments.
	Format uint8
	Value  uint32
}

// CompileCmds parses a BODY entry's CMDS block into an ordered instruction
// list. One instruction per non-blank, non-comment line.
func CompileCmds(cmds string) ([]Instruction, error) {
	var out []Instruction
	for _, line := range strings.Split(cmds, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		inst, err := compileInstruction(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func compileInstruction(fields []string) (Instruction, error) {
	mnemonic := strings.ToUpper(fields[0])
	args := fields[1:]

	switch mnemonic {
	case "WREG":
		if len(args) != 3 {
			return Instruction{}, fmt.Errorf("smartboot: %w: WREG requires bytes, address, value", ErrUnknownInstruction)
		}
		bytesWidth, err := parseIntLiteral(args[0])
		if err != nil {
			return Instruction{}, fmt.Errorf("smartboot: WREG width: %w", err)
		}
		addr, err := parseIntLiteral(args[1])
		if err != nil {
			return Instruction{}, fmt.Errorf("smartboot: WREG address: %w", err)
		}
		value, err := parseIntLiteral(args[2])
		if err != nil {
			return Instruction{}, fmt.Errorf("smartboot: WREG value: %w", err)
		}
		return Instruction{Mnemonic: mnemonic, Addr: uint32(addr), HasAddr: true, Format: uint8(bytesWidth * 8), Value: uint32(value)}, nil

	case "WDCD", "WIMG":
		if len(args) < 1 || len(args) > 2 {
			return Instruction{}, fmt.Errorf("smartboot: %w: %s requires a segment name and optional address", ErrUnknownInstruction, mnemonic)
		}
		inst := Instruction{Mnemonic: mnemonic, Seg: args[0]}
		if len(args) == 2 {
			addr, err := parseIntLiteral(args[1])
			if err != nil {
				return Instruction{}, fmt.Errorf("smartboot: %s address: %w", mnemonic, err)
			}
			inst.Addr, inst.HasAddr = uint32(addr), true
		}
		return inst, nil

	case "SDCD":
		if len(args) != 0 {
			return Instruction{}, fmt.Errorf("smartboot: %w: SDCD takes no arguments", ErrUnknownInstruction)
		}
		return Instruction{Mnemonic: mnemonic}, nil

	case "JRUN":
		if len(args) != 1 {
			return Instruction{}, fmt.Errorf("smartboot: %w: JRUN requires an address or segment name", ErrUnknownInstruction)
		}
		if addr, err := parseIntLiteral(args[0]); err == nil {
			return Instruction{Mnemonic: mnemonic, Addr: uint32(addr), HasAddr: true}, nil
		}
		return Instruction{Mnemonic: mnemonic, Seg: args[0]}, nil

	default:
		return Instruction{}, fmt.Errorf("smartboot: %w: %q", ErrUnknownInstruction, mnemonic)
	}
}

// resolveAddr applies spec.md §4.4's address-resolution rule: an explicit
// instruction argument wins; otherwise the referenced segment's own ADDR
// is used.
func resolveAddr(inst Instruction, r *Resolver) (uint32, error) {
	if inst.HasAddr {
		return inst.Addr, nil
	}
	if inst.Seg == "" {
		return 0, fmt.Errorf("smartboot: %w: %s has no address", ErrMalformedRecipe, inst.Mnemonic)
	}
	return r.Addr(inst.Seg)
}

// Run executes instructions in order against client, aborting on the first
// error per spec.md §4.4's failure model (no partial retry, no skip-ahead).
func Run(ctx context.Context, client *sdp.Client, instructions []Instruction, r *Resolver) error {
	for _, inst := range instructions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runOne(client, inst, r); err != nil {
			return fmt.Errorf("smartboot: %s: %w", inst.Mnemonic, err)
		}
	}
	return nil
}

func runOne(client *sdp.Client, inst Instruction, r *Resolver) error {
	switch inst.Mnemonic {
	case "WREG":
		return client.WriteRegister(inst.Addr, inst.Format, inst.Value)

	case "WDCD":
		data, err := r.Bytes(inst.Seg)
		if err != nil {
			return err
		}
		addr, err := resolveAddr(inst, r)
		if err != nil {
			return err
		}
		return client.WriteDCD(addr, data, nil)

	case "WIMG":
		data, err := r.Bytes(inst.Seg)
		if err != nil {
			return err
		}
		addr, err := resolveAddr(inst, r)
		if err != nil {
			return err
		}
		return client.WriteFile(addr, data, nil)

	case "SDCD":
		return client.SkipDCD()

	case "JRUN":
		addr, err := resolveAddr(inst, r)
		if err != nil {
			return err
		}
		return client.Jump(addr)

	default:
		return fmt.Errorf("smartboot: %w: %q", ErrUnknownInstruction, inst.Mnemonic)
	}
}
