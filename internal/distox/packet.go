// Package distox reads measurement packets from a DistoX instrument over a
// serial link and converts them into survey shots.
//
// The instrument streams fixed 8-byte packets. Byte 0 carries the packet
// type in its low 6 bits, a sequence toggle in bit 7, and bit 16 of the
// distance in bit 6. Each packet must be acknowledged before the instrument
// sends the next one.
package distox

import (
	"fmt"

	"github.com/speleo-data/cavetopo/internal/topo"
)

// PacketSize is the fixed wire size of every DistoX packet.
const PacketSize = 8

// Packet type discriminants (byte 0, bits 0-5).
const (
	typeMeasurement byte = 0x01
)

// Measurement is one decoded shot measurement from the instrument.
// Distances are millimetres; angles are the instrument's 16-bit full-circle
// units, the same encoding the save files use.
type Measurement struct {
	Sequence    bool // sequence toggle, flips on each new measurement
	DistanceMM  int32
	Azimuth     int16
	Inclination int16
	Roll        uint8
}

// PacketError reports a packet that is not a decodable measurement.
type PacketError struct {
	Type byte
}

func (e *PacketError) Error() string {
	return fmt.Sprintf("unsupported packet type %#02x", e.Type)
}

// DecodePacket decodes one 8-byte measurement packet. buf must hold exactly
// PacketSize bytes.
func DecodePacket(buf []byte) (Measurement, error) {
	var m Measurement
	if len(buf) != PacketSize {
		return m, fmt.Errorf("packet is %d bytes, want %d", len(buf), PacketSize)
	}

	if t := buf[0] & 0x3f; t != typeMeasurement {
		return m, &PacketError{Type: t}
	}

	m.Sequence = buf[0]&0x80 != 0

	// Distance is 17 bits: bit 16 rides in the header byte.
	distance := uint32(buf[1]) | uint32(buf[2])<<8
	if buf[0]&0x40 != 0 {
		distance |= 1 << 16
	}
	m.DistanceMM = int32(distance)

	m.Azimuth = int16(uint16(buf[3]) | uint16(buf[4])<<8)
	m.Inclination = int16(uint16(buf[5]) | uint16(buf[6])<<8)
	m.Roll = buf[7]

	return m, nil
}

// Ack returns the acknowledgement byte for a packet header. The reply
// echoes the sequence bit so the instrument can detect a stale ack.
func Ack(header byte) byte {
	return 0x55 | header&0x80
}

// Shot converts the measurement into a station-less (splay) survey shot.
// Station assignment happens later, once the surveyor pairs legs up.
func (m Measurement) Shot() topo.Shot {
	return topo.Shot{
		Distance:    m.DistanceMM,
		Azimuth:     m.Azimuth,
		Inclination: m.Inclination,
		Roll:        m.Roll,
		TripIndex:   -1,
	}
}
