package parse

import "github.com/speleo-data/cavetopo/internal/topo"

// Drawing element stream layout. Each element opens with a one-byte
// discriminant; a byte that is neither tag ends the list and must be the
// 0x00 terminator.
const (
	tagTerminator   byte = 0x00
	tagPolygon      byte = 0x01
	tagCrossSection byte = 0x03
)

// Point = { Int32 x, Int32 y }  (mm, relative to the first station)
func (r *reader) point(what string) (topo.Point, error) {
	var p topo.Point
	var err error

	if p.X, err = r.i32(what + " x"); err != nil {
		return p, err
	}
	if p.Y, err = r.i32(what + " y"); err != nil {
		return p, err
	}
	return p, nil
}

// Mapping = { Point origin, Int32 scale }
func (r *reader) mapping(what string) (topo.Mapping, error) {
	var m topo.Mapping
	var err error

	if m.Origin, err = r.point(what + " origin"); err != nil {
		return m, err
	}
	if m.Scale, err = r.i32(what + " scale"); err != nil {
		return m, err
	}
	return m, nil
}

// PolygonElement = { Byte 1, Int32 pointCount, Point[pointCount] points,
// Byte color }. The tag byte has already been consumed by the element
// dispatch loop.
func (r *reader) polygon() (topo.Polygon, error) {
	var poly topo.Polygon

	count, err := r.u32("polygon point count")
	if err != nil {
		return poly, err
	}
	poly.Points = make([]topo.Point, 0, r.seqCap(count))
	for i := uint32(0); i < count; i++ {
		p, err := r.point("polygon point")
		if err != nil {
			return poly, err
		}
		poly.Points = append(poly.Points, p)
	}

	colorOff := r.off
	color, err := r.u8("polygon color")
	if err != nil {
		return poly, err
	}
	if color < byte(topo.ColorBlack) || color > byte(topo.ColorOrange) {
		return poly, &ColorError{Found: color, Offset: colorOff}
	}
	poly.Color = topo.Color(color)
	return poly, nil
}

// XSectionElement = { Byte 3, Point pos, Id station, Int32 direction }.
// The tag byte has already been consumed. A cross-section with an
// undefined station is a hard error, not an optional.
func (r *reader) crossSection() (topo.CrossSection, error) {
	var cs topo.CrossSection

	pos, err := r.point("cross-section position")
	if err != nil {
		return cs, err
	}
	stationOff := r.off
	station, err := r.stationID("cross-section station")
	if err != nil {
		return cs, err
	}
	if station == nil {
		return cs, &UndefinedStationError{Offset: stationOff}
	}
	direction, err := r.i32("cross-section direction")
	if err != nil {
		return cs, err
	}

	cs.Position = pos
	cs.Station = *station
	cs.Direction = direction
	return cs, nil
}

// Drawing = { Mapping mapping, Element[] elements, Byte 0 }
//
// Elements are dispatched on their leading tag byte: 0x01 polygon, 0x03
// cross-section. The first byte matching neither tag ends the stream and
// is required to be the 0x00 terminator, which is consumed and discarded.
func (r *reader) drawing(what string) (topo.Drawing, error) {
	var d topo.Drawing
	var err error

	if d.Mapping, err = r.mapping(what + " mapping"); err != nil {
		return d, err
	}

	for {
		tag, err := r.u8(what + " element tag")
		if err != nil {
			return d, err
		}
		switch tag {
		case tagPolygon:
			poly, err := r.polygon()
			if err != nil {
				return d, err
			}
			d.Elements = append(d.Elements, poly)
		case tagCrossSection:
			cs, err := r.crossSection()
			if err != nil {
				return d, err
			}
			d.Elements = append(d.Elements, cs)
		case tagTerminator:
			return d, nil
		default:
			return d, ErrMalformed
		}
	}
}
