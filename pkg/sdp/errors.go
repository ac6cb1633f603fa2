// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdp

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedDevice is returned when a (vendor, product) pair
	// matches no entry in DeviceTable.
	ErrUnsupportedDevice = errors.New("unsupported device")

	// ErrBadAlignment is returned when a register address is not aligned
	// to its access format (format/8 bytes).
	ErrBadAlignment = errors.New("misaligned register address")

	// ErrTransport wraps any error returned by the Transport.
	ErrTransport = errors.New("transport error")

	// ErrWrongState is returned when an operation is attempted from a
	// Client state that does not permit it.
	ErrWrongState = errors.New("operation not valid in current state")

	// ErrNotSupported is returned when an operation is not implemented
	// for the connected chip's Profile (e.g. write_csf on MXRT).
	ErrNotSupported = errors.New("operation not supported on this device")
)

// DeviceError reports a non-success HAB status or completion code returned
// by the device, matching sdp.py's SdpCommandError
// ("Command operation break, error: 0x%(errval)08X").
type DeviceError struct {
	Code uint32
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("sdp: device reported error 0x%08X", e.Code)
}

// SecureError reports a locked target, matching sdp.py's SdpSecureError
// ("Target is locked !").
type SecureError struct{}

func (e *SecureError) Error() string { return "sdp: target is locked" }
