package parse

import (
	"errors"
	"fmt"
)

// ErrMalformed is the fallback for grammar mismatches that do not fit a
// more specific error kind.
var ErrMalformed = errors.New("malformed document")

// HeaderError reports a file that does not start with the "Top" magic.
// Found holds up to the first three bytes of the input, copied out of the
// caller's buffer.
type HeaderError struct {
	Found []byte
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("invalid header: % #x", e.Found)
}

// VersionError reports a correct magic followed by an unsupported format
// version byte.
type VersionError struct {
	Found byte
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported version: %d", e.Found)
}

// ColorError reports a polygon color byte outside the 1..7 palette.
type ColorError struct {
	Found  byte
	Offset int
}

func (e *ColorError) Error() string {
	return fmt.Sprintf("invalid color %#02x at offset %d", e.Found, e.Offset)
}

// UndefinedStationError reports a cross-section whose station field decodes
// to "no station". Cross-sections must always be anchored to a station.
type UndefinedStationError struct {
	Offset int
}

func (e *UndefinedStationError) Error() string {
	return fmt.Sprintf("undefined station at offset %d", e.Offset)
}

// TruncatedError reports input that ended before a fixed-size or
// length-prefixed read could complete.
type TruncatedError struct {
	What   string // the field being decoded
	Need   int    // bytes required
	Have   int    // bytes remaining
	Offset int    // position of the failed read
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated input: need %d bytes for %s at offset %d, have %d",
		e.Need, e.What, e.Offset, e.Have)
}

// UTF8Error reports a string whose payload is not valid UTF-8. Bytes holds
// the offending payload, copied out of the caller's buffer.
type UTF8Error struct {
	Bytes  []byte
	Offset int
}

func (e *UTF8Error) Error() string {
	return fmt.Sprintf("invalid UTF-8 string at offset %d: % #x", e.Offset, e.Bytes)
}
