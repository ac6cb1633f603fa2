// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package smartboot implements the optional .smx recipe orchestrator:
// HEAD/VARS/DATA/BODY documents that compose pkg/dcd, pkg/img and pkg/sdp
// into a scripted device-provisioning sequence.
package smartboot

import (
	"fmt"
	"regexp"

	"golang.org/x/text/transform"
)

var varRegex = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// partialVarRegex matches a possible prefix of a {{ name }} token straddling
// a Transform call's src boundary, mirroring guid2english's partial-GUID
// lookahead.
var partialVarRegex = regexp.MustCompile(`\{\{?[A-Za-z0-9_\s]*$`)

// ErrUnresolvedVariable is returned, wrapping the offending name, when a
// {{ name }} token has no entry in the recipe's VARS map. Unlike
// pkg/guid2english's TemplateMapper (which falls back to "UNKNOWN"),
// spec.md §9 requires a hard failure here.
type ErrUnresolvedVariable struct {
	Name string
}

func (e *ErrUnresolvedVariable) Error() string {
	return fmt.Sprintf("smartboot: unresolved variable %q", e.Name)
}

// varsTransformer replaces every {{ name }} token in a byte stream with its
// value from vars, grounded on pkg/guid2english.Transformer's structure:
// same find-token/map/copy-through shape, a regex for {{ name }} instead of
// a GUID, and a hard error instead of a placeholder fallback.
type varsTransformer struct {
	vars map[string]string
	err  error
}

func (t *varsTransformer) bufferMap(match []byte) []byte {
	sub := varRegex.FindSubmatch(match)
	name := string(sub[1])
	val, ok := t.vars[name]
	if !ok {
		if t.err == nil {
			t.err = &ErrUnresolvedVariable{Name: name}
		}
		return match
	}
	return []byte(val)
}

// Transform implements transform.Transformer.
func (t *varsTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if atEOF {
		transformed := varRegex.ReplaceAllFunc(src, t.bufferMap)
		if t.err != nil {
			return 0, 0, t.err
		}
		if len(transformed) > len(dst) {
			d, s, e := t.Transform(dst, src, false)
			if e != transform.ErrShortSrc {
				return d, s, e
			}
			return d, s, transform.ErrShortDst
		}
		copy(dst, transformed)
		return len(transformed), len(src), nil
	}

	loc := varRegex.FindIndex(src)
	if loc == nil {
		if ploc := partialVarRegex.FindIndex(src); ploc != nil {
			copy(dst, src[:ploc[0]])
			return ploc[0], ploc[0], transform.ErrShortSrc
		}
		copy(dst, src)
		return len(src), len(src), nil
	}

	copy(dst, src[:loc[0]])
	mapped := t.bufferMap(src[loc[0]:loc[1]])
	if t.err != nil {
		return 0, 0, t.err
	}
	if loc[0]+len(mapped) > len(dst) {
		return loc[0], loc[0], transform.ErrShortDst
	}
	copy(dst[loc[0]:], mapped)
	return loc[0] + len(mapped), loc[1], transform.ErrShortSrc
}

// Reset implements transform.Transformer.
func (t *varsTransformer) Reset() { t.err = nil }

// SubstituteVars applies {{ name }} substitution to raw using vars, failing
// hard on any token with no matching entry. Applied to a recipe's raw bytes
// before yaml.Unmarshal, per spec.md §9's "single pass before structural
// interpretation" rule.
func SubstituteVars(raw []byte, vars map[string]string) ([]byte, error) {
	t := &varsTransformer{vars: vars}
	out, _, err := transform.Bytes(t, raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}
