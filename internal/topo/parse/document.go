// Package parse decodes the binary save-file format of the PocketTopo cave
// survey logger into the topo document model.
//
// File layout (all integers little-endian, no alignment padding):
//
//	Byte 'T' 'o' 'p'        magic
//	Byte 3                  format version
//	Int32 tripCount         Trip[tripCount]
//	Int32 shotCount         Shot[shotCount]
//	Int32 refCount          Reference[refCount]
//	Mapping overview
//	Drawing outline         (Mapping + elements + 0x00)
//	Drawing sideview        (Mapping + elements + 0x00)
//
// The format carries no internal offsets beyond the per-sequence counts,
// so the field order above is load-bearing: any misread corrupts every
// byte that follows. Decoding is a single synchronous pass over an
// in-memory buffer and either yields a complete document or the first
// structural error; there is no partial result.
package parse

import (
	"bytes"

	"github.com/speleo-data/cavetopo/internal/topo"
)

var headerMagic = []byte("Top")

// supportedVersion is the only file format version the decoder accepts.
const supportedVersion byte = 0x3

// Document parses a complete .top file held in memory. The returned
// document owns all of its nested data; nothing aliases the input buffer,
// so the caller may reuse it.
func Document(data []byte) (*topo.Document, error) {
	r := newReader(data)

	if err := r.header(); err != nil {
		return nil, err
	}
	if err := r.version(); err != nil {
		return nil, err
	}

	var doc topo.Document
	var err error

	if doc.Trips, err = r.trips(); err != nil {
		return nil, err
	}
	if doc.Shots, err = r.shots(); err != nil {
		return nil, err
	}
	if doc.References, err = r.references(); err != nil {
		return nil, err
	}
	if doc.Overview, err = r.mapping("overview"); err != nil {
		return nil, err
	}
	if doc.Outline, err = r.drawing("outline"); err != nil {
		return nil, err
	}
	if doc.Sideview, err = r.drawing("sideview"); err != nil {
		return nil, err
	}

	return &doc, nil
}

// header checks the 3-byte magic. The error carries whatever bytes were
// actually found (up to 3), copied so the error value outlives the input
// buffer.
func (r *reader) header() error {
	n := len(headerMagic)
	if r.remaining() < n {
		n = r.remaining()
	}
	found := r.buf[r.off : r.off+n]
	if !bytes.Equal(found, headerMagic) {
		return &HeaderError{Found: bytes.Clone(found)}
	}
	r.off += n
	return nil
}

func (r *reader) version() error {
	v, err := r.u8("version")
	if err != nil {
		return err
	}
	if v != supportedVersion {
		return &VersionError{Found: v}
	}
	return nil
}
