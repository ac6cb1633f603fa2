// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/camelcase"
)

// canonicalToken normalizes a command/op token to its canonical CamelCase
// spelling regardless of whether it arrived as "WRITE_VALUE", "WriteValue"
// or any other casing the original tooling historically accepted
// (segments.py's parse_txt recognizes both spellings; export_txt always
// emits one). SCREAMING_SNAKE input is split on underscores; anything else
// is re-split on camel-case boundaries with camelcase.Split and rejoined,
// so stray casing drift in already-CamelCase input is also normalized.
func canonicalToken(tok string) string {
	var words []string
	if strings.Contains(tok, "_") {
		words = strings.Split(tok, "_")
	} else {
		words = camelcase.Split(tok)
	}

	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		lw := strings.ToLower(w)
		b.WriteString(strings.ToUpper(lw[:1]))
		b.WriteString(lw[1:])
	}
	return b.String()
}

// writeOpFromToken resolves a canonicalized token to a WriteOp, tolerating
// the "BitMask" vs "Bitmask" internal-capitalization drift that underscore
// splitting on "CLEAR_BITMASK"/"SET_BITMASK" produces.
func writeOpFromToken(canon string) (WriteOp, bool) {
	switch strings.ToLower(canon) {
	case "writevalue":
		return WriteValue, true
	case "clearbitmask":
		return ClearBitmask, true
	case "setbitmask":
		return SetBitmask, true
	default:
		return 0, false
	}
}

func checkOpFromToken(canon string) (CheckOp, bool) {
	switch strings.ToLower(canon) {
	case "checkallclear":
		return CheckAllClear, true
	case "checkallset":
		return CheckAllSet, true
	case "checkanyclear":
		return CheckAnyClear, true
	case "checkanyset":
		return CheckAnySet, true
	default:
		return 0, false
	}
}

func writeOpToken(op WriteOp) string {
	switch op {
	case WriteValue, WriteValue1:
		return "WriteValue"
	case ClearBitmask:
		return "ClearBitMask"
	case SetBitmask:
		return "SetBitMask"
	default:
		return op.String()
	}
}

func checkOpToken(op CheckOp) string {
	switch op {
	case CheckAllClear:
		return "CheckAllClear"
	case CheckAllSet:
		return "CheckAllSet"
	case CheckAnyClear:
		return "CheckAnyClear"
	case CheckAnySet:
		return "CheckAnySet"
	default:
		return op.String()
	}
}

// parseUint32 accepts hex (0x-prefixed), octal (0-prefixed) and decimal
// literals via strconv's base-0 parsing, matching the original's int(x, 0)
// semantics. Unlike pkg/smartboot/recipe.go's HexUint32, which takes only
// 0x-prefixed hex or decimal, a leading 0 here selects octal.
func parseUint32(tok string) (uint32, error) {
	v, err := strconv.ParseUint(tok, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("dcd: %w: %q", ErrMalformedHeader, tok)
	}
	return uint32(v), nil
}

func parseWidth(tok string) (Width, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("dcd: %w: %q", ErrInvalidWidth, tok)
	}
	w := Width(v)
	if !w.Valid() {
		return 0, fmt.Errorf("dcd: %w: %d", ErrInvalidWidth, v)
	}
	return w, nil
}

// ParseText decodes a line-oriented DCD program: one instruction per
// logical line, '#'-prefixed comments and blank lines ignored, a trailing
// backslash continuing an Unlock value list onto the next line. Consecutive
// WriteData lines with identical op and width are merged into a single
// WriteData command, the same grouping export_txt/parse_txt perform in the
// original so that a hand-written program with repeated WriteValue lines
// round-trips to the compact binary encoding the ROM expects.
func ParseText(text string) (*Program, error) {
	p := NewProgram()

	lines := joinContinuations(strings.Split(text, "\n"))

	for _, line := range lines {
		line = stripComment(line)
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		canon := canonicalToken(fields[0])

		switch {
		case strings.EqualFold(canon, "Nop"):
			if len(fields) != 1 {
				return nil, fmt.Errorf("dcd: %w: Nop takes no operands", ErrBadAlignment)
			}
			p.Append(&Nop{})

		case strings.EqualFold(canon, "Unlock"):
			if len(fields) < 2 {
				return nil, fmt.Errorf("dcd: %w: Unlock requires an engine name", ErrBadAlignment)
			}
			engine, ok := engineFromToken(fields[1])
			if !ok {
				return nil, fmt.Errorf("dcd: %w: %s", ErrUnknownEngine, fields[1])
			}
			values := make([]uint32, 0, len(fields)-2)
			for _, f := range fields[2:] {
				v, err := parseUint32(f)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
			}
			p.Append(&Unlock{Engine: engine, Values: values})

		default:
			if op, ok := writeOpFromToken(canon); ok {
				if len(fields) != 4 {
					return nil, fmt.Errorf("dcd: %w: %s takes width, address, value", ErrBadAlignment, canon)
				}
				width, err := parseWidth(fields[1])
				if err != nil {
					return nil, err
				}
				addr, err := parseUint32(fields[2])
				if err != nil {
					return nil, err
				}
				val, err := parseUint32(fields[3])
				if err != nil {
					return nil, err
				}
				entry := WriteDataEntry{Address: addr, Value: val}

				if n := len(p.Commands); n > 0 {
					if wd, ok := p.Commands[n-1].(*WriteData); ok && wd.Op == op && wd.Width == width {
						wd.Entries = append(wd.Entries, entry)
						continue
					}
				}
				p.Append(&WriteData{Op: op, Width: width, Entries: []WriteDataEntry{entry}})
				continue
			}

			if op, ok := checkOpFromToken(canon); ok {
				if len(fields) != 4 && len(fields) != 5 {
					return nil, fmt.Errorf("dcd: %w: %s takes width, address, mask[, count]", ErrBadAlignment, canon)
				}
				width, err := parseWidth(fields[1])
				if err != nil {
					return nil, err
				}
				addr, err := parseUint32(fields[2])
				if err != nil {
					return nil, err
				}
				mask, err := parseUint32(fields[3])
				if err != nil {
					return nil, err
				}
				c := &CheckData{Op: op, Width: width, Address: addr, Mask: mask}
				if len(fields) == 5 {
					count, err := parseUint32(fields[4])
					if err != nil {
						return nil, err
					}
					c.Count = &count
				}
				p.Append(c)
				continue
			}

			return nil, fmt.Errorf("dcd: %w: %q", ErrUnknownCommandTag, fields[0])
		}
	}

	return p, nil
}

// joinContinuations merges a line ending in "\" with the one that follows,
// mirroring parse_txt's handling of multi-line Unlock value lists.
func joinContinuations(lines []string) []string {
	var out []string
	var pending string
	for _, l := range lines {
		trimmed := strings.TrimRight(l, "\r")
		if strings.HasSuffix(strings.TrimSpace(trimmed), `\`) {
			trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), `\`)
			pending += trimmed + " "
			continue
		}
		out = append(out, pending+trimmed)
		pending = ""
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func engineFromToken(tok string) (Engine, bool) {
	upper := strings.ToUpper(tok)
	for e, name := range engineNames {
		if name == upper {
			return e, true
		}
	}
	return 0, false
}

// EmitText renders the program as a line-oriented textual form, one
// canonical instruction per line, matching segments.py's export_txt.
func EmitText(p *Program) string {
	var b strings.Builder
	for _, cmd := range p.Commands {
		switch c := cmd.(type) {
		case *WriteData:
			for _, e := range c.Entries {
				fmt.Fprintf(&b, "%s %d 0x%08X 0x%08X\n", writeOpToken(c.Op), c.Width, e.Address, e.Value)
			}
		case *CheckData:
			if c.Count != nil {
				fmt.Fprintf(&b, "%s %d 0x%08X 0x%08X %d\n", checkOpToken(c.Op), c.Width, c.Address, c.Mask, *c.Count)
			} else {
				fmt.Fprintf(&b, "%s %d 0x%08X 0x%08X\n", checkOpToken(c.Op), c.Width, c.Address, c.Mask)
			}
		case *Nop:
			b.WriteString("Nop\n")
		case *Unlock:
			fmt.Fprintf(&b, "Unlock %s", c.Engine)
			for _, v := range c.Values {
				fmt.Fprintf(&b, " 0x%08X", v)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
