// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleProgram = `WriteValue 4 0x30340004 0x4F400005
WriteValue 4 0x30391000 0x00000002
WriteValue 4 0x307A0000 0x01040001
CheckAnyClear 4 0x307900C4 0x00000001
`

func TestTextToBinaryLength(t *testing.T) {
	p, err := ParseText(exampleProgram)
	require.NoError(t, err)
	require.Len(t, p.Commands, 2)

	wd, ok := p.Commands[0].(*WriteData)
	require.True(t, ok)
	assert.Len(t, wd.Entries, 3)

	buf, err := p.Export()
	require.NoError(t, err)
	assert.Len(t, buf, 44)
}

func TestBinaryRoundTrip(t *testing.T) {
	p, err := ParseText(exampleProgram)
	require.NoError(t, err)

	buf, err := p.Export()
	require.NoError(t, err)

	parsed, err := Parse(buf)
	require.NoError(t, err)

	again, err := parsed.Export()
	require.NoError(t, err)
	assert.Equal(t, buf, again)

	require.Len(t, parsed.Commands, 2)
	wd, ok := parsed.Commands[0].(*WriteData)
	require.True(t, ok)
	assert.Equal(t, []WriteDataEntry{
		{Address: 0x30340004, Value: 0x4F400005},
		{Address: 0x30391000, Value: 0x00000002},
		{Address: 0x307A0000, Value: 0x01040001},
	}, wd.Entries)

	cd, ok := parsed.Commands[1].(*CheckData)
	require.True(t, ok)
	assert.Equal(t, CheckAnyClear, cd.Op)
	assert.Equal(t, uint32(0x307900C4), cd.Address)
	assert.Equal(t, uint32(0x00000001), cd.Mask)
	assert.Nil(t, cd.Count)
}

func TestTextRoundTrip(t *testing.T) {
	p, err := ParseText(exampleProgram)
	require.NoError(t, err)

	text := EmitText(p)
	reparsed, err := ParseText(text)
	require.NoError(t, err)

	buf1, err := p.Export()
	require.NoError(t, err)
	buf2, err := reparsed.Export()
	require.NoError(t, err)
	assert.Equal(t, buf1, buf2)
}

func TestOversizeSegment(t *testing.T) {
	p := NewProgram()
	// MaxSize - outer header (4) - WriteData header (4) = 1760 bytes of
	// entries, exactly 220 of them; one more must fail OversizeSegment.
	n := (MaxSize - 4 - 4) / entrySize
	entries := make([]WriteDataEntry, n)
	p.Append(&WriteData{Op: WriteValue, Width: Width4, Entries: entries})

	buf, err := p.Export()
	require.NoError(t, err)
	assert.Len(t, buf, MaxSize)

	p.Commands[0].(*WriteData).Entries = append(entries, WriteDataEntry{})
	_, err = p.Export()
	require.ErrorIs(t, err, ErrOversizeSegment)
}

func TestUnlockTextRoundTrip(t *testing.T) {
	const text = "Unlock SNVS 0x00000001 0x00000002\n"
	p, err := ParseText(text)
	require.NoError(t, err)
	require.Len(t, p.Commands, 1)

	u, ok := p.Commands[0].(*Unlock)
	require.True(t, ok)
	assert.Equal(t, EngineSNVS, u.Engine)
	assert.Equal(t, []uint32{1, 2}, u.Values)

	assert.Equal(t, text, EmitText(p))
}
