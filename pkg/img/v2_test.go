// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package img

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/imx-tools/pkg/dcd"
)

func exampleDCD(t *testing.T) *dcd.Program {
	t.Helper()
	p, err := dcd.ParseText(`WriteValue 4 0x30340004 0x4F400005
WriteValue 4 0x30391000 0x00000002
WriteValue 4 0x307A0000 0x01040001
CheckAnyClear 4 0x307900C4 0x00000001
`)
	require.NoError(t, err)
	return p
}

func TestBuildV2Image(t *testing.T) {
	app := bytes.Repeat([]byte{0xAA}, 100)
	program := exampleDCD(t)

	im, err := BuildV2(ProfileV2, 0x877FF000, app, program, nil, 0)
	require.NoError(t, err)

	ivt, err := im.IVT()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x877FF400), ivt.Self)
	assert.Equal(t, uint32(0x877FF42C), ivt.DCDAddress)

	bdt, err := im.BDT()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x877FF000), bdt.Start)
	assert.Equal(t, uint32(0), bdt.Plugin)

	buf, err := im.Export()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(buf), 0x400+32+12+44+100)
}

func TestParseV2Image(t *testing.T) {
	app := bytes.Repeat([]byte{0xAA}, 100)
	program := exampleDCD(t)

	built, err := BuildV2(ProfileV2, 0x877FF000, app, program, nil, 0)
	require.NoError(t, err)

	buf, err := built.Export()
	require.NoError(t, err)

	parsed, err := ParseV2(buf, 0x400)
	require.NoError(t, err)

	ivt, err := parsed.IVT()
	require.NoError(t, err)
	wantIVT, err := built.IVT()
	require.NoError(t, err)
	assert.Equal(t, wantIVT.Self, ivt.Self)
	assert.Equal(t, wantIVT.DCDAddress, ivt.DCDAddress)
	assert.Equal(t, wantIVT.BDTAddress, ivt.BDTAddress)

	require.NotNil(t, parsed.DCD)
	require.Len(t, parsed.DCD.Program.Commands, 2)
	wd, ok := parsed.DCD.Program.Commands[0].(*dcd.WriteData)
	require.True(t, ok)
	assert.Len(t, wd.Entries, 3)

	assert.NoError(t, parsed.Validate())
}

func TestV2ExportParseRoundTrip(t *testing.T) {
	app := bytes.Repeat([]byte{0x11, 0x22}, 50)
	im, err := BuildV2(ProfileV2B, 0x60000000, app, nil, nil, 0)
	require.NoError(t, err)

	buf, err := im.Export()
	require.NoError(t, err)

	parsed, err := ParseV2(buf, int(ProfileV2B.IVTOffset))
	require.NoError(t, err)

	reexported, err := parsed.Export()
	require.NoError(t, err)
	assert.Equal(t, buf, reexported)
}

func TestParseUnrecognizedVariant(t *testing.T) {
	_, err := Parse(bytes.Repeat([]byte{0xFF}, 64), VariantAuto)
	require.ErrorIs(t, err, ErrUnrecognizedVariant)
}

func TestParseAutoFindsV2(t *testing.T) {
	app := bytes.Repeat([]byte{0xAA}, 16)
	im, err := BuildV2(ProfileV2, 0x877FF000, app, nil, nil, 0)
	require.NoError(t, err)

	buf, err := im.Export()
	require.NoError(t, err)

	found, err := Parse(buf, VariantAuto)
	require.NoError(t, err)
	_, ok := found.(*V2Image)
	assert.True(t, ok)
}
