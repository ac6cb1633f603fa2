// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smartboot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/usbarmory/imx-tools/pkg/dcd"
	"github.com/usbarmory/imx-tools/pkg/img"
)

// segment type tags, spec.md §4.4's DATA.TYPE enumeration. FDT is reserved
// and always rejected (no component in this repo interprets device trees).
const (
	TypeDCD = "DCD"
	TypeFDT = "FDT"
	TypeIMX = "IMX"
	TypeURI = "URI"
	TypeUEI = "UEI"
	TypeBIN = "BIN"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Resolver resolves a recipe's named DATA segments to their final byte
// payloads, memoizing composite (IMX) builds since BODY instructions may
// reference the same segment more than once.
type Resolver struct {
	doc   *Document
	bytes map[string][]byte
}

// NewResolver returns a Resolver over doc's DATA mapping.
func NewResolver(doc *Document) *Resolver {
	return &Resolver{doc: doc, bytes: make(map[string][]byte)}
}

// Lookup returns the DataSpec registered under name.
func (r *Resolver) Lookup(name string) (*DataSpec, error) {
	d, ok := r.doc.Data[name]
	if !ok {
		return nil, fmt.Errorf("smartboot: %w: %q", ErrUnknownSegmentRef, name)
	}
	return d, nil
}

// Addr returns the ADDR a BODY instruction should use for name: the
// segment's own ADDR field, per spec.md §4.4's "argument wins over the
// referenced segment's ADDR" rule the caller applies on top of this.
func (r *Resolver) Addr(name string) (uint32, error) {
	d, err := r.Lookup(name)
	if err != nil {
		return 0, err
	}
	return uint32(d.Addr), nil
}

// Bytes resolves name's DATA segment to its final payload, building IMX
// composites and applying the UEI gzip unwrap and env patch as needed.
func (r *Resolver) Bytes(name string) ([]byte, error) {
	if b, ok := r.bytes[name]; ok {
		return b, nil
	}
	d, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	var out []byte
	switch d.Type {
	case TypeDCD:
		raw, err := r.rawPayload(d)
		if err != nil {
			return nil, err
		}
		out = raw
	case TypeIMX:
		if d.Composite != nil {
			out, err = r.buildIMX(d)
		} else {
			out, err = r.rawPayload(d)
		}
		if err != nil {
			return nil, err
		}
		if out, err = applyEnvPatch(out, d.EnvPatch); err != nil {
			return nil, err
		}
	case TypeURI, TypeBIN:
		if out, err = r.rawPayload(d); err != nil {
			return nil, err
		}
		if d.Type == TypeURI {
			if out, err = applyEnvPatch(out, d.EnvPatch); err != nil {
				return nil, err
			}
		}
	case TypeUEI:
		raw, err := r.rawPayload(d)
		if err != nil {
			return nil, err
		}
		if out, err = unwrapUEI(raw); err != nil {
			return nil, err
		}
	case TypeFDT:
		return nil, fmt.Errorf("smartboot: %w: FDT is reserved", ErrUnsupportedType)
	default:
		return nil, fmt.Errorf("smartboot: %w: %q", ErrUnsupportedType, d.Type)
	}

	r.bytes[name] = out
	return out, nil
}

// rawPayload resolves a leaf DATA|FILE field: exactly one must be set.
func (r *Resolver) rawPayload(d *DataSpec) ([]byte, error) {
	hasData := d.Data != ""
	hasFile := d.File != ""
	if hasData == hasFile {
		return nil, fmt.Errorf("smartboot: %w: segment %q", ErrAmbiguousPayload, d.name)
	}
	if hasFile {
		b, err := os.ReadFile(d.File)
		if err != nil {
			return nil, fmt.Errorf("smartboot: segment %q: %w", d.name, err)
		}
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(d.Data)
	if err != nil {
		return nil, fmt.Errorf("smartboot: segment %q: %w", d.name, err)
	}
	return b, nil
}

// buildIMX composes an IMX boot image from its DCDSEG/APPSEG sub-references,
// via pkg/img.BuildV2 at the composite's STADDR/OFFSET.
func (r *Resolver) buildIMX(d *DataSpec) ([]byte, error) {
	c := d.Composite

	var program *dcd.Program
	if c.DCDSeg != "" {
		dcdSpec, err := r.Lookup(c.DCDSeg)
		if err != nil {
			return nil, err
		}
		if dcdSpec.Type != TypeDCD {
			return nil, fmt.Errorf("smartboot: %w: %q is not a DCD segment", ErrUnknownSegmentRef, c.DCDSeg)
		}
		raw, err := r.Bytes(c.DCDSeg)
		if err != nil {
			return nil, err
		}
		program, err = dcd.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("smartboot: segment %q: %w", c.DCDSeg, err)
		}
	}

	if c.AppSeg == "" {
		return nil, fmt.Errorf("smartboot: %w: IMX segment %q has no APPSEG", ErrUnknownSegmentRef, d.name)
	}
	app, err := r.Bytes(c.AppSeg)
	if err != nil {
		return nil, err
	}

	start := uint32(c.StartAddr) + uint32(c.Offset)
	im, err := img.BuildV2(img.ProfileV2, start, app, program, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("smartboot: segment %q: %w", d.name, err)
	}
	return im.Export()
}

// unwrapUEI decompresses a gzip-wrapped kernel image (uImage-style Linux
// "Upgrade Environment Image" payload) when raw carries the gzip magic,
// and returns it unchanged otherwise.
func unwrapUEI(raw []byte) ([]byte, error) {
	if len(raw) < 2 || !bytes.Equal(raw[:2], gzipMagic) {
		return raw, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("smartboot: UEI gzip: %w", err)
	}
	defer zr.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		return nil, fmt.Errorf("smartboot: UEI gzip: %w", err)
	}
	return buf.Bytes(), nil
}

// applyEnvPatch patches a U-Boot-style "name=value\x00..." environment
// region embedded in img, scoped to spec.md §4.4's single MARK/EVAL patch
// operation rather than a full redundant-copy/CRC environment library.
func applyEnvPatch(img []byte, patch EnvPatch) ([]byte, error) {
	switch patch.Mode {
	case "", "disabled":
		return img, nil
	case "merge", "replace":
	default:
		return nil, fmt.Errorf("smartboot: %w: env patch mode %q", ErrMalformedRecipe, patch.Mode)
	}

	mark := patch.Mark
	if mark == "" {
		mark = "bootdelay="
	}
	idx := bytes.Index(img, []byte(mark))
	if idx < 0 {
		if patch.Mode == "replace" {
			return nil, fmt.Errorf("smartboot: env patch: mark %q not found", mark)
		}
		return img, nil
	}

	end := idx
	for end < len(img) && img[end] != 0 {
		end++
	}

	replacement := []byte(mark + patch.Eval)
	if patch.Mode == "merge" {
		replacement = append(append([]byte{}, img[idx:end]...), []byte(";"+patch.Eval)...)
	}

	out := make([]byte, 0, len(img)-(end-idx)+len(replacement))
	out = append(out, img[:idx]...)
	out = append(out, replacement...)
	out = append(out, img[end:]...)
	return out, nil
}

// parseIntLiteral accepts both decimal and 0x-prefixed hex literals, used
// by BODY's CMDS compiler for numeric instruction arguments.
func parseIntLiteral(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s = s[2:]
		base = 16
	}
	return strconv.ParseUint(s, base, 64)
}
