// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import "fmt"

// Reader is a cursor over an in-memory buffer that every segment parser in
// pkg/dcd and pkg/img reads through. It never panics on a short or
// out-of-bounds region: every method returns ErrShortRead instead, the same
// way cbfs.NewFile reports a short name/attribute/data region by comparing
// the bytes read against the bytes wanted.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps buf for sequential, bounds-checked reads starting at
// offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of bytes remaining between the cursor and the end
// of the buffer.
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int {
	return r.off
}

// Seek moves the cursor to an absolute offset. It fails if off falls outside
// the buffer.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.buf) {
		return fmt.Errorf("bin: %w: seek to %d, buffer is %d bytes", ErrShortRead, off, len(r.buf))
	}
	r.off = off
	return nil
}

// Next returns the next n bytes without advancing the cursor, or
// ErrShortRead if fewer than n bytes remain.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, fmt.Errorf("bin: %w: need %d bytes, have %d", ErrShortRead, n, r.Len())
	}
	return r.buf[r.off : r.off+n], nil
}

// Read returns the next n bytes and advances the cursor past them.
func (r *Reader) Read(n int) ([]byte, error) {
	b, err := r.Next(n)
	if err != nil {
		return nil, err
	}
	r.off += n
	return b, nil
}

// ReadHeaderBE reads and advances past a big-endian tag/length/param header.
func (r *Reader) ReadHeaderBE(requiredTag byte) (Header, error) {
	b, err := r.Next(HeaderSize)
	if err != nil {
		return Header{}, err
	}
	h, err := ParseHeaderBE(b, requiredTag)
	if err != nil {
		return Header{}, err
	}
	r.off += HeaderSize
	return h, nil
}

// ReadHeaderLE reads and advances past a little-endian tag/length/param
// header.
func (r *Reader) ReadHeaderLE(requiredTag byte) (Header, error) {
	b, err := r.Next(HeaderSize)
	if err != nil {
		return Header{}, err
	}
	h, err := ParseHeaderLE(b, requiredTag)
	if err != nil {
		return Header{}, err
	}
	r.off += HeaderSize
	return h, nil
}

// Remaining returns every byte from the cursor to the end of the buffer,
// without advancing the cursor.
func (r *Reader) Remaining() []byte {
	return r.buf[r.off:]
}
