package parse

import (
	"encoding/binary"
	"unicode/utf8"
)

// reader is a sequential cursor over the file buffer. All multi-byte
// integers in the format are little-endian with no alignment padding, so
// every decode is a bounds check followed by a fixed-width slice read.
type reader struct {
	buf []byte
	off int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

// take consumes exactly n bytes, failing with a TruncatedError naming the
// field when fewer remain. The returned slice aliases the input buffer;
// callers that store bytes beyond the parse call must copy.
func (r *reader) take(n int, what string) ([]byte, error) {
	if r.remaining() < n {
		return nil, &TruncatedError{What: what, Need: n, Have: r.remaining(), Offset: r.off}
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8(what string) (uint8, error) {
	b, err := r.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16(what string) (uint16, error) {
	b, err := r.take(2, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) i16(what string) (int16, error) {
	v, err := r.u16(what)
	return int16(v), err
}

func (r *reader) u32(what string) (uint32, error) {
	b, err := r.take(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) i32(what string) (int32, error) {
	v, err := r.u32(what)
	return int32(v), err
}

func (r *reader) i64(what string) (int64, error) {
	b, err := r.take(8, what)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// varint decodes the 7-bit continuation encoding used for string lengths:
// each byte contributes its low 7 bits, least significant group first, and
// a clear bit 7 terminates the run.
func (r *reader) varint(what string) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.u8(what)
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// string decodes a varint length followed by that many bytes of UTF-8.
// Strings are not null-terminated; a zero length yields "". Invalid UTF-8
// is rejected rather than replaced.
func (r *reader) string(what string) (string, error) {
	length, err := r.varint(what + " length")
	if err != nil {
		return "", err
	}
	start := r.off
	if length > uint64(r.remaining()) {
		return "", &TruncatedError{What: what, Need: int(length), Have: r.remaining(), Offset: start}
	}
	b, err := r.take(int(length), what)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		bad := make([]byte, len(b))
		copy(bad, b)
		return "", &UTF8Error{Bytes: bad, Offset: start}
	}
	return string(b), nil
}
