// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdp

import "time"

// Transport is the USB-HID link a Client drives. Device enumeration and the
// OS-level HID backend are explicitly out of scope (spec.md §1's "no
// dynamic device discovery" non-goal); Transport only defines the contract
// a concrete backend must satisfy, the same separation
// usbarmory-armory-drive__sdp.go keeps between its protocol-building
// sdp.Build*Report helpers and its own sendHIDReport.
type Transport interface {
	// Write sends p as the payload of the named HID report.
	Write(reportID byte, p []byte) error

	// Read blocks for up to timeout waiting for a report and returns its
	// ID and payload.
	Read(timeout time.Duration) (reportID byte, p []byte, err error)
}
