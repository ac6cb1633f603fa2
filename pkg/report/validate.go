// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"github.com/hashicorp/go-multierror"

	"github.com/usbarmory/imx-tools/pkg/img"
)

// validator is implemented by any Firmware node that can check its own
// invariants (img.V2Image and img.IVT2 both do).
type validator interface {
	Validate() error
}

// ValidateVisitor walks a Firmware tree collecting every node's own
// Validate() error into one aggregate, rather than stopping at the first
// failure — the same multierror aggregation pkg/img.V2Image already uses
// for its own internal checks.
type ValidateVisitor struct {
	errs *multierror.Error
}

// Run applies the visitor to f and returns the aggregated result, or nil if
// every node validated cleanly.
func (v *ValidateVisitor) Run(f img.Firmware) error {
	if err := f.Apply(v); err != nil {
		return err
	}
	return v.errs.ErrorOrNil()
}

// Visit implements img.Visitor.
func (v *ValidateVisitor) Visit(f img.Firmware) error {
	if vv, ok := f.(validator); ok {
		if err := vv.Validate(); err != nil {
			v.errs = multierror.Append(v.errs, err)
		}
	}
	return f.ApplyChildren(v)
}
