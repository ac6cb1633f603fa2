// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smartboot

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/imx-tools/pkg/bin"
	"github.com/usbarmory/imx-tools/pkg/sdp"
)

func TestSubstituteVarsResolves(t *testing.T) {
	out, err := SubstituteVars([]byte("CHIP: {{ chip }}\nNAME: {{ name }}"), map[string]string{
		"chip": "MXRT",
		"name": "example",
	})
	require.NoError(t, err)
	assert.Equal(t, "CHIP: MXRT\nNAME: example", string(out))
}

func TestSubstituteVarsFailsOnUnresolved(t *testing.T) {
	_, err := SubstituteVars([]byte("CHIP: {{ chip }}"), map[string]string{})
	require.Error(t, err)
	var uv *ErrUnresolvedVariable
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "chip", uv.Name)
}

var exampleRecipe = `
HEAD:
  NAME: example
  DESC: a test recipe
  CHIP: {{ chip }}
VARS:
  chip: MXRT
DATA:
  payload:
    DESC: a literal blob
    TYPE: BIN
    ADDR: "0x60000000"
    DATA: ` + base64.StdEncoding.EncodeToString([]byte("hello")) + `
BODY:
  - NAME: flash
    CMDS: |
      WDCD payload
      WIMG payload 0x60000000
      SDCD
      JRUN 0x60000000
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(exampleRecipe))
	require.NoError(t, err)
	assert.Equal(t, "MXRT", doc.Head.Chip)
	require.Contains(t, doc.Data, "payload")
	assert.Equal(t, uint32(0x60000000), uint32(doc.Data["payload"].Addr))
}

func TestResolverBytesDecodesLiteral(t *testing.T) {
	doc, err := ParseDocument([]byte(exampleRecipe))
	require.NoError(t, err)

	r := NewResolver(doc)
	b, err := r.Bytes("payload")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestResolverUnknownSegment(t *testing.T) {
	doc, err := ParseDocument([]byte(exampleRecipe))
	require.NoError(t, err)

	r := NewResolver(doc)
	_, err = r.Bytes("nope")
	require.ErrorIs(t, err, ErrUnknownSegmentRef)
}

func TestCompileCmds(t *testing.T) {
	instructions, err := CompileCmds("WDCD payload\nWIMG payload 0x60000000\nSDCD\nJRUN 0x60000000\n")
	require.NoError(t, err)
	require.Len(t, instructions, 4)

	assert.Equal(t, "WDCD", instructions[0].Mnemonic)
	assert.Equal(t, "payload", instructions[0].Seg)
	assert.False(t, instructions[0].HasAddr)

	assert.Equal(t, "WIMG", instructions[1].Mnemonic)
	assert.True(t, instructions[1].HasAddr)
	assert.Equal(t, uint32(0x60000000), instructions[1].Addr)

	assert.Equal(t, "SDCD", instructions[2].Mnemonic)
	assert.Equal(t, "JRUN", instructions[3].Mnemonic)
}

func TestCompileCmdsRejectsUnknownMnemonic(t *testing.T) {
	_, err := CompileCmds("FROB 1 2 3")
	require.ErrorIs(t, err, ErrUnknownInstruction)
}

// mockReport is one scripted reply a mockTransport.Read returns.
type mockReport struct {
	id byte
	p  []byte
}

// mockTransport is an in-memory sdp.Transport double recording every write
// and popping a scripted reply per Read call, mirroring pkg/sdp's own test
// double since Run drives a real sdp.Client through its report exchange.
type mockTransport struct {
	writes  [][]byte
	replies []mockReport
}

func (m *mockTransport) Write(reportID byte, p []byte) error {
	m.writes = append(m.writes, append([]byte(nil), p...))
	return nil
}

func (m *mockTransport) Read(timeout time.Duration) (byte, []byte, error) {
	if len(m.replies) == 0 {
		return 0, nil, sdp.ErrTransport
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r.id, r.p, nil
}

func statusReport(id byte, code uint32) mockReport {
	p := make([]byte, 64)
	bin.PutU32BE(p[0:4], code)
	return mockReport{id: id, p: p}
}

func TestRunExecutesInstructionsInOrder(t *testing.T) {
	doc, err := ParseDocument([]byte(exampleRecipe))
	require.NoError(t, err)
	r := NewResolver(doc)

	instructions, err := CompileCmds(doc.Body[0].Cmds)
	require.NoError(t, err)

	mt := &mockTransport{replies: []mockReport{
		// WDCD
		statusReport(sdp.ReportInterimStatus, 0),
		statusReport(sdp.ReportFinalStatus, sdp.AckWriteRegister),
		// WIMG
		statusReport(sdp.ReportInterimStatus, 0),
		statusReport(sdp.ReportFinalStatus, sdp.AckWriteFile),
		// SDCD
		statusReport(sdp.ReportInterimStatus, 0),
		statusReport(sdp.ReportFinalStatus, sdp.AckSkipDCD),
		// JRUN
		statusReport(sdp.ReportInterimStatus, 0),
	}}
	client := sdp.NewClient(mt, sdp.Profiles[sdp.ChipMX6UL])
	require.NoError(t, client.Open())

	err = Run(context.Background(), client, instructions, r)
	require.NoError(t, err)
	assert.NotEmpty(t, mt.writes)
}
