package parse

import (
	"bytes"
	"encoding/binary"
)

// fileBuilder assembles .top byte buffers for tests.
type fileBuilder struct {
	bytes.Buffer
}

func newFile() *fileBuilder {
	b := &fileBuilder{}
	b.Write([]byte("Top"))
	b.WriteByte(0x03)
	return b
}

func (b *fileBuilder) u16(v uint16) *fileBuilder {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	b.Write(buf[:])
	return b
}

func (b *fileBuilder) u32(v uint32) *fileBuilder {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
	return b
}

func (b *fileBuilder) u64(v uint64) *fileBuilder {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	b.Write(buf[:])
	return b
}

func (b *fileBuilder) i16(v int16) *fileBuilder { return b.u16(uint16(v)) }
func (b *fileBuilder) i32(v int32) *fileBuilder { return b.u32(uint32(v)) }
func (b *fileBuilder) i64(v int64) *fileBuilder { return b.u64(uint64(v)) }

func (b *fileBuilder) byte(v byte) *fileBuilder {
	b.WriteByte(v)
	return b
}

// str writes a varint length prefix followed by the raw bytes.
func (b *fileBuilder) str(s string) *fileBuilder {
	n := uint64(len(s))
	for n >= 0x80 {
		b.WriteByte(byte(n) | 0x80)
		n >>= 7
	}
	b.WriteByte(byte(n))
	b.WriteString(s)
	return b
}

// station writes a packed station id. Helpers below pre-pack the value.
func (b *fileBuilder) station(v uint32) *fileBuilder { return b.u32(v) }

func majorMinor(major, minor uint16) uint32 { return uint32(major)<<16 | uint32(minor) }

func plain(n uint32) uint32 { return (n + 1) | 0x80000000 }

const noStation uint32 = 0x80000000

// mapping writes a Mapping (origin + scale).
func (b *fileBuilder) mapping(x, y, scale int32) *fileBuilder {
	return b.i32(x).i32(y).i32(scale)
}

// emptyDrawing writes a Mapping followed by an immediately terminated
// element stream.
func (b *fileBuilder) emptyDrawing() *fileBuilder {
	return b.mapping(0, 0, 500).byte(0x00)
}

// ticks converts unix seconds to the trip timestamp encoding.
func ticks(unixSeconds int64) int64 {
	return (unixSeconds + 62_135_596_800) * 10_000_000
}
