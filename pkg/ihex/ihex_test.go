// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ihex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkListMergeAdjacent(t *testing.T) {
	var cl ChunkList
	cl.add(Chunk{Addr: 0x10, Data: []byte{1, 2, 3, 4}})
	cl.add(Chunk{Addr: 0x14, Data: []byte{5, 6, 7, 8}})
	cl.Normalize()

	require.Len(t, cl, 1)
	assert.Equal(t, uint32(0x10), cl[0].Addr)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, cl[0].Data)
}

func TestChunkListOverlapPrecedence(t *testing.T) {
	var cl ChunkList
	cl.add(Chunk{Addr: 0x00, Data: []byte{0xAA, 0xAA, 0xAA, 0xAA}})
	cl.add(Chunk{Addr: 0x02, Data: []byte{0xBB, 0xBB}})
	cl.Normalize()

	require.Len(t, cl, 1)
	assert.Equal(t, []byte{0xAA, 0xAA, 0xBB, 0xBB}, cl[0].Data)
}

func TestIntelHexRoundTrip(t *testing.T) {
	data := []byte("deadbeefcafebabe0123456789abcdef")
	entry := uint32(0x08001000)

	var buf bytes.Buffer
	require.NoError(t, EmitIntelHex(&buf, 0x08000000, data, &entry))

	base, out, ent, err := ParseIntelHex(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x08000000), base)
	assert.Equal(t, data, out)
	require.NotNil(t, ent)
	assert.Equal(t, entry, *ent)
}

func TestIntelHexCrossesSegmentBoundary(t *testing.T) {
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i)
	}

	var buf bytes.Buffer
	require.NoError(t, EmitIntelHex(&buf, 0x0000FFF0, data, nil))

	base, out, ent, err := ParseIntelHex(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0000FFF0), base)
	assert.Equal(t, data, out)
	assert.Nil(t, ent)
}

func TestIntelHexBadChecksum(t *testing.T) {
	bad := ":0100000000EE\n:00000001FF\n"
	_, _, _, err := ParseIntelHex(bytes.NewBufferString(bad), false)
	require.ErrorIs(t, err, ErrChecksum)
}

func TestSRecordRoundTrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog!!!")
	entry := uint32(0x00020000)

	var buf bytes.Buffer
	require.NoError(t, EmitSRecord(&buf, 0x00020000, data, &entry))

	base, out, ent, err := ParseSRecord(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00020000), base)
	assert.Equal(t, data, out)
	require.NotNil(t, ent)
	assert.Equal(t, entry, *ent)
}

func TestFlattenRejectsGapByDefault(t *testing.T) {
	cl := ChunkList{
		{Addr: 0x00, Data: []byte{1, 2}},
		{Addr: 0x10, Data: []byte{3, 4}},
	}
	_, _, err := cl.Flatten(false)
	require.ErrorIs(t, err, ErrLengthMismatch)

	base, out, err := cl.Flatten(true)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00), base)
	assert.Len(t, out, 0x12)
}
