// Package sketch renders the vector drawings of a survey document as
// self-contained HTML charts.
package sketch

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/speleo-data/cavetopo/internal/topo"
)

// colorHex maps the logger's sketch palette to render colors.
var colorHex = map[topo.Color]string{
	topo.ColorBlack:  "#000000",
	topo.ColorGray:   "#808080",
	topo.ColorBrown:  "#8b4513",
	topo.ColorBlue:   "#1e66f5",
	topo.ColorRed:    "#d20f39",
	topo.ColorGreen:  "#40a02b",
	topo.ColorOrange: "#fe640b",
}

// Page renders the outline and sideview drawings of a document into one
// HTML page.
func Page(doc *topo.Document) ([]byte, error) {
	page := components.NewPage()
	page.AddCharts(
		drawingChart("outline", doc.Outline),
		drawingChart("sideview", doc.Sideview),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render sketch page: %w", err)
	}
	return buf.Bytes(), nil
}

// View renders a single drawing into an HTML document.
func View(title string, d topo.Drawing) ([]byte, error) {
	page := components.NewPage()
	page.AddCharts(drawingChart(title, d))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render sketch view: %w", err)
	}
	return buf.Bytes(), nil
}

// drawingChart builds one chart from a drawing: each polygon becomes a
// line series in its palette color, each cross-section a scatter marker.
// The file stores elements back to front, so they are added in reverse to
// paint the oldest strokes first. Sketch Y grows downward on the logger's
// screen; negate it so the chart reads the right way up.
func drawingChart(title string, d topo.Drawing) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(false)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	var markers []opts.ScatterData
	polygons := 0

	for i := len(d.Elements) - 1; i >= 0; i-- {
		switch el := d.Elements[i].(type) {
		case topo.Polygon:
			data := make([]opts.LineData, 0, len(el.Points))
			for _, p := range el.Points {
				x := topo.ConvertDistance(int64(p.X), topo.Meters)
				y := -topo.ConvertDistance(int64(p.Y), topo.Meters)
				data = append(data, opts.LineData{Value: []interface{}{x, y}})
			}
			polygons++
			line.AddSeries(
				fmt.Sprintf("%s-%d", el.Color, polygons),
				data,
				charts.WithLineStyleOpts(opts.LineStyle{Color: colorHex[el.Color]}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: colorHex[el.Color]}),
			)
		case topo.CrossSection:
			x := topo.ConvertDistance(int64(el.Position.X), topo.Meters)
			y := -topo.ConvertDistance(int64(el.Position.Y), topo.Meters)
			markers = append(markers, opts.ScatterData{
				Name:  el.Station.String(),
				Value: []interface{}{x, y},
			})
		}
	}

	if len(markers) > 0 {
		scatter := charts.NewScatter()
		scatter.AddSeries("cross-sections", markers,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#6c6f85"}),
		)
		line.Overlap(scatter)
	}

	return line
}
