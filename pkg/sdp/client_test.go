// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/imx-tools/pkg/bin"
	"github.com/usbarmory/imx-tools/pkg/dcd"
	"github.com/usbarmory/imx-tools/pkg/img"
)

// mockReport is one scripted reply a mockTransport.Read returns.
type mockReport struct {
	id byte
	p  []byte
}

// mockTransport is an in-memory Transport double: every Write is recorded
// and every Read pops the next scripted mockReport, letting tests drive a
// Client through a full command/response exchange without a real HID
// device.
type mockTransport struct {
	writes  []mockReport
	replies []mockReport
}

func (m *mockTransport) Write(reportID byte, p []byte) error {
	buf := append([]byte(nil), p...)
	m.writes = append(m.writes, mockReport{id: reportID, p: buf})
	return nil
}

func (m *mockTransport) Read(timeout time.Duration) (byte, []byte, error) {
	if len(m.replies) == 0 {
		return 0, nil, ErrTransport
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r.id, r.p, nil
}

func statusReport(id byte, code uint32, extra []byte) mockReport {
	p := make([]byte, 4+len(extra))
	bin.PutU32BE(p[0:4], code)
	copy(p[4:], extra)
	return mockReport{id: id, p: p}
}

func TestWriteRegisterRoundTrip(t *testing.T) {
	mt := &mockTransport{
		replies: []mockReport{
			statusReport(ReportInterimStatus, 0, nil),
			statusReport(ReportFinalStatus, AckWriteRegister, nil),
		},
	}
	c := NewClient(mt, Profiles[ChipMX6UL])
	require.NoError(t, c.Open())

	err := c.WriteRegister(0x020C4068, 32, 0x00C03F3F)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, c.State())

	require.Len(t, mt.writes, 1)
	assert.Equal(t, ReportCommand, mt.writes[0].id)
	assert.Equal(t, uint16(OpWriteRegister), bin.U16BE(mt.writes[0].p[0:2]))
	assert.Equal(t, uint32(0x020C4068), bin.U32BE(mt.writes[0].p[2:6]))
	assert.Equal(t, byte(32), mt.writes[0].p[6])
	assert.Equal(t, uint32(0x00C03F3F), bin.U32BE(mt.writes[0].p[11:15]))
}

func TestWriteRegisterDeviceError(t *testing.T) {
	mt := &mockTransport{
		replies: []mockReport{
			statusReport(ReportInterimStatus, 0, nil),
			statusReport(ReportFinalStatus, 0xDEADBEEF, nil),
		},
	}
	c := NewClient(mt, Profiles[ChipMX6UL])
	require.NoError(t, c.Open())

	err := c.WriteRegister(0x020C4068, 32, 1)
	require.Error(t, err)

	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, uint32(0xDEADBEEF), devErr.Code)
}

func TestReadRegisterRoundTrip(t *testing.T) {
	payload := make([]byte, 8)
	bin.PutU32LE(payload[0:4], 0x11111111)
	bin.PutU32LE(payload[4:8], 0x22222222)

	mt := &mockTransport{
		replies: []mockReport{
			statusReport(ReportInterimStatus, 0, nil),
			statusReport(ReportFinalStatus, 0, payload),
		},
	}
	c := NewClient(mt, Profiles[ChipMX6UL])
	require.NoError(t, c.Open())

	values, err := c.ReadRegister(0x020C4068, 32, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x11111111, 0x22222222}, values)
}

func exampleV2Image(t *testing.T) *img.V2Image {
	t.Helper()
	program, err := dcd.ParseText("WriteValue 4 0x30340004 0x4F400005\n")
	require.NoError(t, err)

	im, err := img.BuildV2(img.ProfileV2, 0x877FF000, []byte("app-payload-bytes"), program, nil, 0)
	require.NoError(t, err)
	return im
}

func TestWriteImageWithDCDStrip(t *testing.T) {
	im := exampleV2Image(t)
	ivt, err := im.IVT()
	require.NoError(t, err)
	bdt, err := im.BDT()
	require.NoError(t, err)

	mt := &mockTransport{
		replies: []mockReport{
			// Write DCD
			statusReport(ReportInterimStatus, 0, nil),
			statusReport(ReportFinalStatus, AckWriteRegister, nil),
			// Write File
			statusReport(ReportInterimStatus, 0, nil),
			statusReport(ReportFinalStatus, AckWriteFile, nil),
			// Skip DCD
			statusReport(ReportInterimStatus, 0, nil),
			statusReport(ReportFinalStatus, AckSkipDCD, nil),
			// Jump
			statusReport(ReportInterimStatus, 0, nil),
		},
	}
	c := NewClient(mt, Profiles[ChipMX6UL])
	require.NoError(t, c.Open())

	err = c.WriteImage(im, WriteImageOptions{DCDAddress: 0x00910000, StripDCD: true, Run: true})
	require.NoError(t, err)

	// Write DCD, Write File, Skip DCD, Jump: 4 command reports plus
	// however many data-out frames the DCD/file payloads needed.
	var cmds []mockReport
	for _, w := range mt.writes {
		if w.id == ReportCommand {
			cmds = append(cmds, w)
		}
	}
	require.Len(t, cmds, 4)
	assert.Equal(t, uint16(OpWriteDCD), bin.U16BE(cmds[0].p[0:2]))
	assert.Equal(t, uint32(0x00910000), bin.U32BE(cmds[0].p[2:6]))
	assert.Equal(t, uint16(OpWriteFile), bin.U16BE(cmds[1].p[0:2]))
	assert.Equal(t, bdt.Start, bin.U32BE(cmds[1].p[2:6]))
	assert.Equal(t, uint16(OpSkipDCD), bin.U16BE(cmds[2].p[0:2]))
	assert.Equal(t, uint16(OpJumpAddress), bin.U16BE(cmds[3].p[0:2]))
	assert.Equal(t, ivt.Self, bin.U32BE(cmds[3].p[2:6]))
}

func TestLookupDeviceUnsupported(t *testing.T) {
	_, err := LookupDevice(0xFFFF, 0xFFFF)
	require.ErrorIs(t, err, ErrUnsupportedDevice)
}

func TestLookupDeviceKnown(t *testing.T) {
	p, err := LookupDevice(0x15A2, 0x007D)
	require.NoError(t, err)
	assert.Equal(t, ChipMX6UL, p.Chip)
}

func TestWriteCSFUnsupportedOnMXRT(t *testing.T) {
	mt := &mockTransport{}
	c := NewClient(mt, Profiles[ChipMXRT])
	require.NoError(t, c.Open())

	err := c.WriteCSF(0, []byte{0x01}, nil)
	require.ErrorIs(t, err, ErrNotSupported)
}
