// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package srk builds a Super-Root-Key table and its corresponding fuse map
// from one to four X.509 certificates, per spec.md §6.1: "The table hashes
// public keys with a fixed message-digest; the fuses section is the
// concatenation of the hash digests truncated per the HAB version."
//
// Crypto primitives are an external collaborator here, not a codec
// concern: pkg/srk only lays out the table and fuse map, using
// crypto/x509 and crypto/sha256 from the standard library rather than a
// pack dependency (see DESIGN.md — the pack's one PKI-adjacent library,
// tjfoc/gmsm, implements Chinese SM2/SM3 primitives, the wrong crypto
// family for HAB's RSA/SHA-256).
package srk

import (
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/usbarmory/imx-tools/pkg/bin"
)

// SRKTableTag and SRKKeyTag mark the table header and each key entry,
// following the same tag/length/param header shape pkg/bin already defines
// for the DCD/IVT codecs.
const (
	SRKTableTag byte = 0xD7
	SRKKeyTag   byte = 0xE1
)

const digestSize = sha256.Size

// MaxKeys is the maximum number of SRK entries a table may hold (spec.md
// §6.1: "one to four X.509 certificates").
const MaxKeys = 4

// Entry is one SRK table slot: a certificate's public key, identified by
// its SHA-256 digest.
type Entry struct {
	Digest [digestSize]byte
}

// Table is an ordered set of SRK entries.
type Table struct {
	Entries []Entry
}

// BuildTable computes one Entry per certificate, hashing each
// certificate's DER-encoded SubjectPublicKeyInfo with SHA-256 — the same
// quantity HAB's srktool hashes when building SRK fuses.
func BuildTable(certs []*x509.Certificate) (*Table, error) {
	if len(certs) == 0 || len(certs) > MaxKeys {
		return nil, fmt.Errorf("srk: %w: got %d certificates, want 1-%d", ErrKeyCount, len(certs), MaxKeys)
	}
	t := &Table{Entries: make([]Entry, len(certs))}
	for i, c := range certs {
		t.Entries[i] = Entry{Digest: sha256.Sum256(c.RawSubjectPublicKeyInfo)}
	}
	return t, nil
}

// Export serializes the table as a tag/length/param header followed by one
// header-prefixed record per entry.
func (t *Table) Export() []byte {
	var body []byte
	for _, e := range t.Entries {
		h := bin.Header{Tag: SRKKeyTag, Length: uint16(bin.HeaderSize + digestSize), Param: 0}
		body = append(body, h.ExportBE()...)
		body = append(body, e.Digest[:]...)
	}
	out := bin.Header{Tag: SRKTableTag, Length: uint16(bin.HeaderSize + len(body)), Param: byte(len(t.Entries))}.ExportBE()
	return append(out, body...)
}

// Parse decodes a table previously produced by Export.
func Parse(buf []byte) (*Table, error) {
	h, err := bin.ParseHeaderBE(buf, SRKTableTag)
	if err != nil {
		return nil, err
	}
	if int(h.Length) > len(buf) {
		return nil, fmt.Errorf("srk: %w: table length %d exceeds buffer of %d bytes", ErrMalformedTable, h.Length, len(buf))
	}
	body := buf[bin.HeaderSize:int(h.Length)]

	var t Table
	for len(body) > 0 {
		eh, err := bin.ParseHeaderBE(body, SRKKeyTag)
		if err != nil {
			return nil, err
		}
		if int(eh.Length) != bin.HeaderSize+digestSize || len(body) < int(eh.Length) {
			return nil, fmt.Errorf("srk: %w: key record length %d", ErrMalformedTable, eh.Length)
		}
		var e Entry
		copy(e.Digest[:], body[bin.HeaderSize:eh.Length])
		t.Entries = append(t.Entries, e)
		body = body[eh.Length:]
	}
	return &t, nil
}

// Fuses returns the fuse-map bytes for t: the concatenation, in table
// order, of each entry's digest truncated to the width the given HAB
// version burns (spec.md §8 scenario 6: "a table whose fuses region
// equals the concatenated digests in input order").
func Fuses(t *Table, habVersion int) []byte {
	width := fuseWidth(habVersion)
	out := make([]byte, 0, len(t.Entries)*width)
	for _, e := range t.Entries {
		out = append(out, e.Digest[:width]...)
	}
	return out
}

// fuseWidth returns the per-key digest width a HAB version fuses: HAB4 and
// later burn the full SHA-256 digest, earlier versions burn a
// SHA-1-width-compatible 20-byte prefix.
func fuseWidth(habVersion int) int {
	if habVersion >= 4 {
		return digestSize
	}
	return 20
}
