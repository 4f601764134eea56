// Command topodump inspects PocketTopo .top files from the command line.
// It prints a summary by default; -json dumps the full parsed document and
// -sketch renders the drawings to an HTML file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/speleo-data/cavetopo/internal/fsutil"
	"github.com/speleo-data/cavetopo/internal/sketch"
	"github.com/speleo-data/cavetopo/internal/survey"
	"github.com/speleo-data/cavetopo/internal/topo"
	"github.com/speleo-data/cavetopo/internal/topo/parse"
	"github.com/speleo-data/cavetopo/internal/version"
)

var (
	jsonOut     = flag.Bool("json", false, "Dump the parsed document as JSON")
	sketchOut   = flag.String("sketch", "", "Render drawings to the given HTML file")
	units       = flag.String("units", topo.Meters, "Distance units for the summary (m or ft)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("topodump %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: topodump [flags] file.top\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if !topo.IsValidUnit(*units) {
		log.Fatalf("invalid units %q (valid: m, ft)", *units)
	}

	if err := run(fsutil.OSFileSystem{}, os.Stdout, flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

func run(fs fsutil.FileSystem, out io.Writer, path string) error {
	raw, err := fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := parse.Document(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if *jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	if *sketchOut != "" {
		html, err := sketch.Page(doc)
		if err != nil {
			return fmt.Errorf("render sketch: %w", err)
		}
		if err := fs.WriteFile(*sketchOut, html, 0o644); err != nil {
			return fmt.Errorf("write sketch: %w", err)
		}
		fmt.Fprintf(out, "wrote sketch to %s\n", *sketchOut)
		return nil
	}

	printSummary(out, path, doc)
	return nil
}

func printSummary(out io.Writer, path string, doc *topo.Document) {
	s := survey.Summarize(doc)

	length := topo.ConvertDistance(doc.TotalShotLength(), *units)

	fmt.Fprintf(out, "%s\n", path)
	fmt.Fprintf(out, "  trips:      %d\n", s.TripCount)
	fmt.Fprintf(out, "  shots:      %d (%d legs, %d splays)\n", s.ShotCount, s.LegCount, s.SplayCount)
	fmt.Fprintf(out, "  stations:   %d\n", s.StationCount)
	fmt.Fprintf(out, "  references: %d\n", s.ReferenceCount)
	fmt.Fprintf(out, "  length:     %.2f %s\n", length, *units)
	fmt.Fprintf(out, "  depth:      %.2f m\n", s.DepthRangeMeters)

	for i, trip := range doc.Trips {
		fmt.Fprintf(out, "  trip %d: %s declination %.2f deg",
			i, trip.Time.Format("2006-01-02"), trip.DeclinationDegrees())
		if trip.Comment != "" {
			fmt.Fprintf(out, " (%s)", trip.Comment)
		}
		fmt.Fprintln(out)
	}
}
