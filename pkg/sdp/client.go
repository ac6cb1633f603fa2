// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdp

import (
	"fmt"
	"time"

	"github.com/usbarmory/imx-tools/pkg/bin"
	"github.com/usbarmory/imx-tools/pkg/log"
)

// State is a Client's position in the SDP session state machine (spec.md
// §4.3: "Disconnected → Opened → Idle. For each operation: Idle →
// AwaitInterimStatus → (AwaitPayload | AwaitFinalStatus) → Idle").
type State int

// Recognized states.
const (
	StateDisconnected State = iota
	StateOpened
	StateIdle
	StateAwaitInterimStatus
	StateAwaitPayload
	StateAwaitFinalStatus
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateOpened:
		return "Opened"
	case StateIdle:
		return "Idle"
	case StateAwaitInterimStatus:
		return "AwaitInterimStatus"
	case StateAwaitPayload:
		return "AwaitPayload"
	case StateAwaitFinalStatus:
		return "AwaitFinalStatus"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ProgressFunc is invoked once per Report-2 frame sent during a
// write-file/DCD/CSF operation, with the number of bytes sent so far and
// the total, matching sdp.py's pg_handler(percent) hook generalized to raw
// counts.
type ProgressFunc func(sent, total int)

// Report IDs, fixed by the protocol (spec.md §4.3).
const (
	ReportCommand       byte = 1
	ReportDataOut       byte = 2
	ReportInterimStatus byte = 3
	ReportFinalStatus   byte = 4
)

// DefaultTimeout is used when the caller does not override it, matching the
// original's per-read timeout handling.
const DefaultTimeout = 10 * time.Second

// Client drives one connected device's SDP session over a Transport.
type Client struct {
	Transport Transport
	Profile   Profile
	Timeout   time.Duration

	state State
}

// NewClient returns a Client in the Disconnected state.
func NewClient(t Transport, p Profile) *Client {
	return &Client{Transport: t, Profile: p, Timeout: DefaultTimeout, state: StateDisconnected}
}

// State returns the client's current state.
func (c *Client) State() State { return c.state }

// Open transitions Disconnected → Opened → Idle. It performs no I/O of its
// own; the Transport is assumed already connected by the caller.
func (c *Client) Open() error {
	if c.state != StateDisconnected {
		return fmt.Errorf("sdp: %w: Open from %s", ErrWrongState, c.state)
	}
	c.state = StateOpened
	c.state = StateIdle
	return nil
}

// Close transitions back to Disconnected from any state, clearing a sticky
// Error.
func (c *Client) Close() {
	c.state = StateDisconnected
}

// Reset clears a sticky Error state back to Idle without a full reconnect.
func (c *Client) Reset() error {
	if c.state != StateError {
		return fmt.Errorf("sdp: %w: Reset from %s", ErrWrongState, c.state)
	}
	c.state = StateIdle
	return nil
}

func (c *Client) fail(err error) error {
	c.state = StateError
	return err
}

func (c *Client) requireIdle(op string) error {
	if c.state != StateIdle {
		return fmt.Errorf("sdp: %w: %s from %s", ErrWrongState, op, c.state)
	}
	return nil
}

func (c *Client) sendCommand(cmd Command) error {
	c.state = StateAwaitInterimStatus
	buf := cmd.Bytes()
	if len(buf) < c.Profile.Report1Size {
		buf = append(buf, make([]byte, c.Profile.Report1Size-len(buf))...)
	}
	if err := c.Transport.Write(ReportCommand, buf); err != nil {
		return c.fail(fmt.Errorf("sdp: %w: %w", ErrTransport, err))
	}
	return nil
}

func (c *Client) readInterimStatus() (uint32, error) {
	id, p, err := c.Transport.Read(c.Timeout)
	if err != nil {
		return 0, c.fail(fmt.Errorf("sdp: %w: %w", ErrTransport, err))
	}
	if id != ReportInterimStatus || len(p) < 4 {
		return 0, c.fail(fmt.Errorf("sdp: %w: expected interim status report", ErrTransport))
	}
	return c.statusWord(p), nil
}

func (c *Client) readFinalStatus() (uint32, []byte, error) {
	id, p, err := c.Transport.Read(c.Timeout)
	if err != nil {
		return 0, nil, c.fail(fmt.Errorf("sdp: %w: %w", ErrTransport, err))
	}
	if id != ReportFinalStatus || len(p) < 4 {
		return 0, nil, c.fail(fmt.Errorf("sdp: %w: expected final status report", ErrTransport))
	}
	return c.statusWord(p), p[4:], nil
}

func (c *Client) statusWord(p []byte) uint32 {
	if c.Profile.BigEndianStatus {
		return bin.U32BE(p[0:4])
	}
	return bin.U32LE(p[0:4])
}

// ReadRegister reads count values of the given access width (8, 16 or 32
// bits) starting at address.
func (c *Client) ReadRegister(address uint32, format uint8, count uint32) ([]uint32, error) {
	if err := c.requireIdle("ReadRegister"); err != nil {
		return nil, err
	}
	if format/8 == 0 || address%uint32(format/8) != 0 {
		c.state = StateIdle
		return nil, fmt.Errorf("sdp: %w: address 0x%08X not aligned to %d bits", ErrBadAlignment, address, format)
	}

	byteCount := count * uint32(format/8)
	if err := c.sendCommand(Command{Opcode: OpReadRegister, Address: address, Format: format, DataCount: byteCount}); err != nil {
		return nil, err
	}
	status, err := c.readInterimStatus()
	if err != nil {
		return nil, err
	}
	if status != 0 && status != AckWriteRegister {
		c.state = StateIdle
		return nil, &DeviceError{Code: status}
	}

	c.state = StateAwaitPayload
	_, payload, err := c.readFinalStatus()
	if err != nil {
		return nil, err
	}

	width := int(format / 8)
	values := make([]uint32, 0, len(payload)/width)
	for i := 0; i+width <= len(payload); i += width {
		switch width {
		case 1:
			values = append(values, uint32(payload[i]))
		case 2:
			values = append(values, uint32(bin.U16LE(payload[i:i+2])))
		case 4:
			values = append(values, bin.U32LE(payload[i:i+4]))
		}
	}
	c.state = StateIdle
	return values, nil
}

// WriteRegister writes value to address using the given access width.
func (c *Client) WriteRegister(address uint32, format uint8, value uint32) error {
	if err := c.requireIdle("WriteRegister"); err != nil {
		return err
	}
	if format/8 == 0 || address%uint32(format/8) != 0 {
		c.state = StateIdle
		return fmt.Errorf("sdp: %w: address 0x%08X not aligned to %d bits", ErrBadAlignment, address, format)
	}

	if err := c.sendCommand(Command{Opcode: OpWriteRegister, Address: address, Format: format, DataCount: 4, DataValue: value}); err != nil {
		return err
	}
	if _, err := c.readInterimStatus(); err != nil {
		return err
	}
	c.state = StateAwaitFinalStatus
	code, _, err := c.readFinalStatus()
	if err != nil {
		return err
	}
	c.state = StateIdle
	if code != AckWriteRegister {
		return &DeviceError{Code: code}
	}
	return nil
}

// writeStream is the shared implementation of WriteFile/WriteDCD/WriteCSF:
// send the command, read the interim status report, stream data in
// Report-2 frames of Report2Size-1 bytes, then read the final status report.
func (c *Client) writeStream(op string, opcode Opcode, address uint32, data []byte, wantAck uint32, progress ProgressFunc) error {
	if err := c.requireIdle(op); err != nil {
		return err
	}

	if err := c.sendCommand(Command{Opcode: opcode, Address: address, Format: 32, DataCount: uint32(len(data))}); err != nil {
		return err
	}
	if _, err := c.readInterimStatus(); err != nil {
		return err
	}

	c.state = StateAwaitPayload
	frame := c.Profile.Report2Size - 1
	if frame <= 0 {
		frame = len(data)
	}
	sent := 0
	for sent < len(data) {
		end := sent + frame
		if end > len(data) {
			end = len(data)
		}
		if err := c.Transport.Write(ReportDataOut, data[sent:end]); err != nil {
			return c.fail(fmt.Errorf("sdp: %w: %w", ErrTransport, err))
		}
		sent = end
		if progress != nil {
			progress(sent, len(data))
		}
	}

	c.state = StateAwaitFinalStatus
	code, _, err := c.readFinalStatus()
	if err != nil {
		return err
	}
	c.state = StateIdle
	if code != wantAck {
		return &DeviceError{Code: code}
	}
	return nil
}

// WriteFile pushes data to address as a raw file/image write.
func (c *Client) WriteFile(address uint32, data []byte, progress ProgressFunc) error {
	return c.writeStream("WriteFile", OpWriteFile, address, data, AckWriteFile, progress)
}

// WriteDCD pushes a DCD program's exported bytes to address (conventionally
// an OCRAM staging address ahead of a later WriteFile of the full image).
func (c *Client) WriteDCD(address uint32, data []byte, progress ProgressFunc) error {
	return c.writeStream("WriteDCD", OpWriteDCD, address, data, AckWriteRegister, progress)
}

// WriteCSF pushes CSF bytes to address. Not every chip family implements
// this (sdp.py's SdpMXRT/SdpMX8 override it as NotImplementedError).
func (c *Client) WriteCSF(address uint32, data []byte, progress ProgressFunc) error {
	if !c.Profile.SupportsWriteCSF {
		return fmt.Errorf("sdp: %w: WriteCSF on %s", ErrNotSupported, c.Profile.Chip)
	}
	return c.writeStream("WriteCSF", OpWriteCSF, address, data, AckWriteRegister, progress)
}

// SkipDCD instructs the ROM to ignore the DCD embedded in a subsequently
// written image.
func (c *Client) SkipDCD() error {
	if !c.Profile.SupportsSkipDCD {
		return fmt.Errorf("sdp: %w: SkipDCD on %s", ErrNotSupported, c.Profile.Chip)
	}
	if err := c.requireIdle("SkipDCD"); err != nil {
		return err
	}
	if err := c.sendCommand(Command{Opcode: OpSkipDCD}); err != nil {
		return err
	}
	if _, err := c.readInterimStatus(); err != nil {
		return err
	}
	c.state = StateAwaitFinalStatus
	code, _, err := c.readFinalStatus()
	if err != nil {
		return err
	}
	c.state = StateIdle
	if code != AckSkipDCD {
		return &DeviceError{Code: code}
	}
	return nil
}

// Jump issues a Jump Address command to address (conventionally a
// previously written image's ivt.self). Report 4 is not guaranteed — the
// device may have already left the protocol by jumping — so a missing or
// timed-out final status is not treated as an error.
func (c *Client) Jump(address uint32) error {
	if err := c.requireIdle("Jump"); err != nil {
		return err
	}
	if err := c.sendCommand(Command{Opcode: OpJumpAddress, Address: address}); err != nil {
		return err
	}
	if _, err := c.readInterimStatus(); err != nil {
		return err
	}
	c.state = StateIdle
	log.Debugf("sdp: jumped to 0x%08X", address)
	return nil
}

// ReadStatus issues a Read Status command and returns its 4-byte code
// verbatim.
func (c *Client) ReadStatus() (uint32, error) {
	if err := c.requireIdle("ReadStatus"); err != nil {
		return 0, err
	}
	if err := c.sendCommand(Command{Opcode: OpReadStatus}); err != nil {
		return 0, err
	}
	if _, err := c.readInterimStatus(); err != nil {
		return 0, err
	}
	c.state = StateAwaitFinalStatus
	code, _, err := c.readFinalStatus()
	c.state = StateIdle
	return code, err
}
