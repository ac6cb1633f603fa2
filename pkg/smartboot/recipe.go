// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smartboot

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// HexUint32 decodes a YAML scalar written as a "0x..."-prefixed or decimal
// integer into a uint32, the form spec.md §4.4's ADDR/STADDR/OFFSET fields
// use throughout DATA segment descriptors.
type HexUint32 uint32

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *HexUint32) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*h = 0
		return nil
	}
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return fmt.Errorf("smartboot: %w: %q: %v", ErrMalformedRecipe, value.Value, err)
	}
	*h = HexUint32(v)
	return nil
}

// Head is the recipe's HEAD section (spec.md §4.4).
type Head struct {
	Name string `yaml:"NAME"`
	Desc string `yaml:"DESC"`
	// Chip is either a recognized chip tag (pkg/sdp.ChipTag) or a
	// "VID:PID" literal selecting an HID profile directly.
	Chip string `yaml:"CHIP"`
}

// EnvPatch is the IMX/URI environment-variable patch sub-spec.
type EnvPatch struct {
	Mode string `yaml:"MODE"` // disabled | merge | replace
	Mark string `yaml:"MARK"`
	Eval string `yaml:"EVAL"`
}

// imxComposite is DATA's nested IMX sub-mapping, referencing other named
// DATA segments instead of a literal blob.
type imxComposite struct {
	StartAddr HexUint32 `yaml:"STADDR"`
	Offset    HexUint32 `yaml:"OFFSET"`
	DCDSeg    string    `yaml:"DCDSEG"`
	AppSeg    string    `yaml:"APPSEG"`
}

// DataSpec is one named entry of the recipe's DATA mapping.
type DataSpec struct {
	Desc string    `yaml:"DESC"`
	Type string    `yaml:"TYPE"`
	Addr HexUint32 `yaml:"ADDR"`

	// Data is a literal base64-encoded payload; File names an external
	// file to load instead. Exactly one is required unless Type is IMX
	// and Composite is populated.
	Data string `yaml:"DATA"`
	File string `yaml:"FILE"`

	Composite *imxComposite `yaml:"-"`

	EnvPatch `yaml:",inline"`

	name string
}

// UnmarshalYAML implements yaml.Unmarshaler so DATA can be decoded either as
// a literal/file blob or, for TYPE: IMX, as a nested STADDR/OFFSET/DCDSEG/
// APPSEG mapping under the same "DATA" key.
func (d *DataSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain DataSpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = DataSpec(p)

	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value != "DATA" {
			continue
		}
		dataNode := value.Content[i+1]
		if dataNode.Kind == yaml.MappingNode {
			var c imxComposite
			if err := dataNode.Decode(&c); err != nil {
				return err
			}
			d.Composite = &c
			d.Data = ""
		}
	}
	return nil
}

// Recipe is a Run (BODY) entry: a named, ordered CMDS program.
type Recipe struct {
	Name string `yaml:"NAME"`
	Desc string `yaml:"DESC"`
	Cmds string `yaml:"CMDS"`
}

// Document is a parsed .smx file.
type Document struct {
	Head Head                 `yaml:"HEAD"`
	Vars map[string]string    `yaml:"VARS"`
	Data map[string]*DataSpec `yaml:"DATA"`
	Body []Recipe             `yaml:"BODY"`
}

// varsOnly is decoded first, unsubstituted, to recover VARS before the
// {{ name }} substitution pass runs over the rest of the document.
type varsOnly struct {
	Vars map[string]string `yaml:"VARS"`
}

// ParseDocument decodes a .smx recipe: VARS is read first, {{ name }}
// substitution then runs over the raw bytes, and only the substituted
// document is structurally unmarshaled — the ordering spec.md §9 requires.
func ParseDocument(raw []byte) (*Document, error) {
	var vo varsOnly
	if err := yaml.Unmarshal(raw, &vo); err != nil {
		return nil, fmt.Errorf("smartboot: %w: %v", ErrMalformedRecipe, err)
	}

	substituted, err := SubstituteVars(raw, vo.Vars)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(substituted, &doc); err != nil {
		return nil, fmt.Errorf("smartboot: %w: %v", ErrMalformedRecipe, err)
	}
	doc.Vars = vo.Vars
	for name, d := range doc.Data {
		d.name = name
	}

	if doc.Head.Chip == "" {
		return nil, fmt.Errorf("smartboot: %w: HEAD.CHIP is required", ErrMalformedRecipe)
	}

	return &doc, nil
}
