package plot

import (
	"io"
	"sort"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/CrimsonAS/qreflectometry/internal/series"
)

var ErrNoData = errors.New("nothing to draw")

// RenderOptions describe an exported chart.
type RenderOptions struct {
	Title  string
	XName  string
	YName  string
	Width  int
	Height int
}

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorOrange,
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// Render writes a PNG of the named series to w. Series are drawn in name
// order; empty ones are left out.
func Render(w io.Writer, data map[string][]series.Point, opts RenderOptions) error {
	names := make([]string, 0, len(data))
	for name, points := range data {
		if len(points) > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ErrNoData
	}
	sort.Strings(names)

	var all []chart.Series
	for i, name := range names {
		points := data[name]
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for j, p := range points {
			xs[j], ys[j] = p.X, p.Y
		}
		all = append(all, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(palette[i%len(palette)]),
		})
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: opts.XName},
		YAxis:      chart.YAxis{Name: opts.YName},
		Series:     all,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return errors.Wrapf(err, "render %q", opts.Title)
	}
	return nil
}
