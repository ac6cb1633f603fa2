// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hidraw implements sdp.Transport over a Linux hidraw character
// device node, the one concrete transport this repo ships. pkg/sdp's own
// Transport contract deliberately carries no OS-level backend (USB-HID
// device enumeration is out of scope per spec.md §1), so this lives in
// cmd/internal rather than pkg/sdp, shared by cmd/imxsd and cmd/imxsb.
package hidraw

import (
	"fmt"
	"os"
	"time"
)

// Transport implements sdp.Transport over an opened hidraw device node.
type Transport struct {
	f *os.File
}

// Open opens the hidraw device node at path for read/write.
func Open(path string) (*Transport, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Transport{f: f}, nil
}

// Write implements sdp.Transport: one HID output report, ID-prefixed.
func (t *Transport) Write(reportID byte, p []byte) error {
	buf := make([]byte, 1+len(p))
	buf[0] = reportID
	copy(buf[1:], p)
	_, err := t.f.Write(buf)
	return err
}

// Read implements sdp.Transport. hidraw reads normally block indefinitely;
// the best-effort read deadline below is honored only on OS/kernel
// combinations where the device node supports it.
func (t *Transport) Read(timeout time.Duration) (byte, []byte, error) {
	t.f.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, 4096)
	n, err := t.f.Read(buf)
	if err != nil {
		return 0, nil, err
	}
	if n == 0 {
		return 0, nil, fmt.Errorf("hidraw: empty report")
	}
	return buf[0], buf[1:n], nil
}

// Close releases the underlying device node.
func (t *Transport) Close() error { return t.f.Close() }
