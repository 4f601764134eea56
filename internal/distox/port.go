package distox

import (
	"io"

	"go.bug.st/serial"
)

// Porter is the minimal serial port surface the downloader needs. The
// abstraction keeps the packet loop testable without instrument hardware.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// PortOptions describes the serial connection parameters. The DistoX talks
// over a Bluetooth serial profile that presents as a plain serial device.
type PortOptions struct {
	BaudRate int
}

// Normalize applies defaults for unset values.
func (o PortOptions) Normalize() PortOptions {
	opts := o
	if opts.BaudRate <= 0 {
		opts.BaudRate = 9600
	}
	return opts
}

// OpenPort opens the serial device at path with the given options.
func OpenPort(path string, opts PortOptions) (Porter, error) {
	opts = opts.Normalize()
	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(path, mode)
}
