// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/imx-tools/pkg/dcd"
	"github.com/usbarmory/imx-tools/pkg/img"
)

func exampleImage(t *testing.T) *img.V2Image {
	t.Helper()
	program, err := dcd.ParseText("WriteValue 4 0x30340004 0x4F400005\n")
	require.NoError(t, err)
	im, err := img.BuildV2(img.ProfileV2, 0x877FF000, []byte("application payload"), program, nil, 0)
	require.NoError(t, err)
	return im
}

func TestInfoVisitorRendersTree(t *testing.T) {
	im := exampleImage(t)

	var buf bytes.Buffer
	v := &InfoVisitor{Out: &buf}
	require.NoError(t, v.Run(im))

	out := buf.String()
	assert.Contains(t, out, "IVT")
	assert.Contains(t, out, "BDT")
	assert.Contains(t, out, "DCD")
	assert.Contains(t, out, "APP")
}

func TestValidateVisitorPasses(t *testing.T) {
	im := exampleImage(t)
	v := &ValidateVisitor{}
	assert.NoError(t, v.Run(im))
}

func TestValidateVisitorCatchesBadPointer(t *testing.T) {
	ivt := &img.IVT2{Self: 0x877FF400, BDTAddress: 0x877FF000, DCDAddress: 0x877FF42C}

	v := &ValidateVisitor{}
	err := v.Run(ivt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bdt 0x877FF000 precedes ivt.self 0x877FF400")
}
