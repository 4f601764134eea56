package parse

import "github.com/speleo-data/cavetopo/internal/topo"

// stationUndefined is the reserved bit pattern for "no station". Plain
// numeric ids share the top bit and are stored offset by +1 so that the
// all-zero id stays free for the undefined sentinel.
const stationUndefined uint32 = 0x80000000

// stationID decodes the packed 4-byte station identifier:
//
//	0x80000000            undefined (nil)
//	top bit set           plain id, stored as (id + 1) | 0x80000000
//	top bit clear         major in the high 16 bits, minor in the low 16
func (r *reader) stationID(what string) (*topo.StationId, error) {
	v, err := r.u32(what)
	if err != nil {
		return nil, err
	}
	switch {
	case v == stationUndefined:
		return nil, nil
	case v&stationUndefined != 0:
		id := topo.PlainStation((v ^ stationUndefined) - 1)
		return &id, nil
	default:
		id := topo.MajorMinorStation(uint16(v>>16), uint16(v))
		return &id, nil
	}
}
