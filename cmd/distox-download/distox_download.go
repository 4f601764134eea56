// Command distox-download drains stored measurements from a DistoX
// instrument over its serial link and prints them as a table or JSON.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/speleo-data/cavetopo/internal/distox"
	"github.com/speleo-data/cavetopo/internal/fsutil"
	"github.com/speleo-data/cavetopo/internal/topo"
)

var (
	device   = flag.String("device", "/dev/rfcomm0", "Serial device of the DistoX")
	baud     = flag.Int("baud", 0, "Serial baud rate (0 for the instrument default)")
	dumpFile = flag.String("file", "", "Decode a recorded packet dump instead of a serial device")
	jsonOut  = flag.Bool("json", false, "Print measurements as JSON")
	units    = flag.String("units", topo.Meters, "Distance units (m or ft)")
)

// filePort replays a recorded packet dump as a Porter. Writes (the acks)
// are discarded.
type filePort struct {
	*bytes.Reader
}

func (filePort) Write(p []byte) (int, error) { return len(p), nil }
func (filePort) Close() error                { return nil }

func openPort() (distox.Porter, string, error) {
	if *dumpFile != "" {
		data, err := fsutil.OSFileSystem{}.ReadFile(*dumpFile)
		if err != nil {
			return nil, "", err
		}
		return filePort{bytes.NewReader(data)}, *dumpFile, nil
	}
	port, err := distox.OpenPort(*device, distox.PortOptions{BaudRate: *baud})
	return port, *device, err
}

func main() {
	flag.Parse()

	if !topo.IsValidUnit(*units) {
		log.Fatalf("invalid units %q (valid: m, ft)", *units)
	}

	port, source, err := openPort()
	if err != nil {
		log.Fatalf("Failed to open measurement source: %v", err)
	}

	d := distox.NewDownloader(port)
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Downloading measurements from %s", source)
	measurements, err := d.DownloadAll(ctx)
	if err != nil && err != context.Canceled {
		log.Fatalf("Download failed after %d measurements: %v", len(measurements), err)
	}

	if err := print(os.Stdout, measurements); err != nil {
		log.Fatal(err)
	}
	log.Printf("Downloaded %d measurements", len(measurements))
}

func print(out io.Writer, measurements []distox.Measurement) error {
	if *jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(measurements)
	}

	fmt.Fprintf(out, "%6s %10s %9s %9s\n", "#", "dist", "azimuth", "incl")
	for i, m := range measurements {
		shot := m.Shot()
		fmt.Fprintf(out, "%6d %8.2f %s %8.2f° %8.2f°\n",
			i,
			topo.ConvertDistance(int64(m.DistanceMM), *units), *units,
			shot.AzimuthDegrees(), shot.InclinationDegrees())
	}
	return nil
}
