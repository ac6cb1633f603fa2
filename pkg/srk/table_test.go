// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package srk

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfSignedCert(t *testing.T, serial int64) *x509.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: "srk-test"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func TestBuildTableDigests(t *testing.T) {
	certs := []*x509.Certificate{selfSignedCert(t, 1), selfSignedCert(t, 2)}

	table, err := BuildTable(certs)
	require.NoError(t, err)
	require.Len(t, table.Entries, 2)

	for i, c := range certs {
		want := sha256.Sum256(c.RawSubjectPublicKeyInfo)
		assert.Equal(t, want, table.Entries[i].Digest)
	}
}

func TestBuildTableRejectsBadCount(t *testing.T) {
	_, err := BuildTable(nil)
	require.ErrorIs(t, err, ErrKeyCount)

	certs := make([]*x509.Certificate, MaxKeys+1)
	for i := range certs {
		certs[i] = selfSignedCert(t, int64(i))
	}
	_, err = BuildTable(certs)
	require.ErrorIs(t, err, ErrKeyCount)
}

func TestTableExportParseRoundTrip(t *testing.T) {
	certs := []*x509.Certificate{selfSignedCert(t, 1), selfSignedCert(t, 2), selfSignedCert(t, 3)}
	table, err := BuildTable(certs)
	require.NoError(t, err)

	buf := table.Export()
	parsed, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, table.Entries, parsed.Entries)
}

func TestFusesHAB4ConcatenatesFullDigests(t *testing.T) {
	certs := []*x509.Certificate{selfSignedCert(t, 1), selfSignedCert(t, 2), selfSignedCert(t, 3), selfSignedCert(t, 4)}
	table, err := BuildTable(certs)
	require.NoError(t, err)

	fuses := Fuses(table, 4)
	require.Len(t, fuses, 4*digestSize)

	var want []byte
	for _, c := range certs {
		d := sha256.Sum256(c.RawSubjectPublicKeyInfo)
		want = append(want, d[:]...)
	}
	assert.Equal(t, want, fuses)
}

func TestFusesHAB2TruncatesDigests(t *testing.T) {
	certs := []*x509.Certificate{selfSignedCert(t, 1)}
	table, err := BuildTable(certs)
	require.NoError(t, err)

	fuses := Fuses(table, 2)
	assert.Len(t, fuses, 20)
	assert.Equal(t, table.Entries[0].Digest[:20], fuses)
}
