package distox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
)

// Downloader reads and acknowledges measurement packets from a port.
type Downloader struct {
	port Porter
}

// NewDownloader wraps an open port.
func NewDownloader(port Porter) *Downloader {
	return &Downloader{port: port}
}

// Next reads one packet, acknowledges it, and returns the decoded
// measurement. It returns io.EOF when the port drains, which for a real
// instrument means the memory has been read out.
func (d *Downloader) Next() (Measurement, error) {
	var buf [PacketSize]byte
	if _, err := io.ReadFull(d.port, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Measurement{}, fmt.Errorf("short packet: %w", err)
		}
		return Measurement{}, err
	}

	m, err := DecodePacket(buf[:])
	if err != nil {
		return Measurement{}, err
	}

	if _, err := d.port.Write([]byte{Ack(buf[0])}); err != nil {
		return Measurement{}, fmt.Errorf("ack packet: %w", err)
	}
	return m, nil
}

// DownloadAll drains the instrument's stored measurements. Consecutive
// packets carrying the same sequence bit are retransmissions of the same
// measurement and are collapsed. The loop stops on io.EOF or when ctx is
// cancelled between packets.
func (d *Downloader) DownloadAll(ctx context.Context) ([]Measurement, error) {
	var out []Measurement
	var lastSeq bool
	first := true

	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		m, err := d.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}

		if !first && m.Sequence == lastSeq {
			log.Printf("dropping retransmitted packet (seq=%v)", m.Sequence)
			continue
		}
		first = false
		lastSeq = m.Sequence
		out = append(out, m)
	}
}

// Close closes the underlying port.
func (d *Downloader) Close() error {
	return d.port.Close()
}
