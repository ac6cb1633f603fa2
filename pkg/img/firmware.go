// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package img implements the bidirectional boot-image codec: parsing and
// serializing the IVT/BDT/DCD/CSF/APP container that the SoC ROM loads,
// across the v2, v2b, v3a and v3b variant families.
package img

// Firmware is the shared tree-node interface every segment (IVT, BDT, DCD,
// APP, CSF, the v3 IVT and v3 components) implements. The v3 container
// header and component descriptors are not Firmware nodes.
// Grounded on pkg/uefi's Firmware interface: a node never holds a pointer to
// its parent, only to its own buffer and (for container nodes) a slice of
// children addressed by index, so ApplyChildren walks ownership the same
// direction export does.
type Firmware interface {
	// Buf returns the node's exported byte representation.
	Buf() ([]byte, error)

	// Apply invokes the visitor on this node.
	Apply(v Visitor) error

	// ApplyChildren invokes the visitor on every child of this node. Leaf
	// nodes (IVT, BDT, App, CSF) implement this as a no-op.
	ApplyChildren(v Visitor) error
}

// Visitor is implemented by tree walkers such as the report renderer
// (pkg/report.InfoVisitor) and the pointer-range validator
// (pkg/report.ValidateVisitor).
type Visitor interface {
	Visit(f Firmware) error
}

// Apply is a convenience helper equivalent to f.Apply(v) followed by
// f.ApplyChildren(v), matching the walk order pkg/uefi's visitors.go uses.
func Apply(f Firmware, v Visitor) error {
	if err := f.Apply(v); err != nil {
		return err
	}
	return f.ApplyChildren(v)
}
