package plot

import (
	"bytes"
	"math"
	"reflect"
	"testing"

	"github.com/CrimsonAS/qreflectometry/internal/dataset"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
	"github.com/CrimsonAS/qreflectometry/internal/series"
)

const eps = 1e-12

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestExperimentRange(t *testing.T) {
	d := &dataset.Dataset1D{
		X:    []float64{0.05, 0.2, 0.4, 0.6},
		Y:    []float64{1, 0.1, 0.01, 0.001},
		YErr: []float64{0.04, 0.0004, 0.000004, 0.00000001},
	}
	measured, upper, lower := Experiment(d, reflib.QRange{Min: 0.1, Max: 0.5})
	if len(measured) != 2 || len(upper) != 2 || len(lower) != 2 {
		t.Fatalf("kept %d, %d, %d points", len(measured), len(upper), len(lower))
	}
	if measured[0].X != 0.2 || measured[1].X != 0.4 {
		t.Errorf("measured x values %v", measured)
	}
	if !near(measured[0].Y, -1) || !near(measured[1].Y, -2) {
		t.Errorf("measured y values %v", measured)
	}
	// sqrt(0.0004) = 0.02
	if !near(upper[0].Y, math.Log10(0.12)) || !near(lower[0].Y, math.Log10(0.08)) {
		t.Errorf("envelope at 0.2: %v, %v", upper[0], lower[0])
	}
}

func TestExperimentBoundsExcluded(t *testing.T) {
	d := &dataset.Dataset1D{
		X: []float64{0.1, 0.3, 0.5},
		Y: []float64{1, 1, 1},
	}
	measured, upper, lower := Experiment(d, reflib.QRange{Min: 0.1, Max: 0.5})
	if len(measured) != 1 || measured[0].X != 0.3 {
		t.Errorf("points on the bounds kept: %v", measured)
	}
	// Without variances the envelope collapses onto the curve
	if upper[0] != measured[0] || lower[0] != measured[0] {
		t.Errorf("envelope %v %v", upper, lower)
	}

	measured, _, _ = Experiment(dataset.Empty(dataset.Experiment), reflib.QRange{Min: 0, Max: 1})
	if measured == nil || len(measured) != 0 {
		t.Errorf("empty dataset gave %v", measured)
	}
}

func TestSampleAndSLD(t *testing.T) {
	d := &dataset.Dataset1D{X: []float64{0.01, 0.02}, Y: []float64{1, 0.001}}
	got := Sample(d)
	if len(got) != 2 || got[1].X != 0.02 || !near(got[0].Y, 0) || !near(got[1].Y, -3) {
		t.Errorf("sample points %v", got)
	}
	if got := SLD(d); !reflect.DeepEqual(got, []series.Point{{X: 0.01, Y: 1}, {X: 0.02, Y: 0.001}}) {
		t.Errorf("sld points %v", got)
	}
}

func TestExtrema(t *testing.T) {
	d := &dataset.Dataset1D{X: []float64{3, 1, 2}, Y: []float64{10, 1000, 100}}

	s := SampleExtrema(d)
	if s.MinX != 1 || s.MaxX != 3 || !near(s.MinY, 1) || !near(s.MaxY, 3) {
		t.Errorf("sample extrema %+v", s)
	}
	if e := ExperimentExtrema(d); e != s {
		t.Errorf("experiment extrema %+v", e)
	}
	if l := SLDExtrema(d); l.MinY != 10 || l.MaxY != 1000 {
		t.Errorf("sld extrema %+v", l)
	}
}

func TestExtremaEmpty(t *testing.T) {
	for _, e := range []Extrema{
		SampleExtrema(dataset.Empty(dataset.Sample)),
		SLDExtrema(dataset.Empty(dataset.SLD)),
		ExperimentExtrema(dataset.Empty(dataset.Experiment)),
	} {
		if !math.IsNaN(e.MinX) || !math.IsNaN(e.MaxX) || !math.IsNaN(e.MinY) || !math.IsNaN(e.MaxY) {
			t.Errorf("empty extrema %+v", e)
		}
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	data := map[string][]series.Point{
		"measuredSerie": {{X: 0.1, Y: -1}, {X: 0.2, Y: -2}, {X: 0.3, Y: -2.5}},
		"empty":         nil,
	}
	if err := Render(&buf, data, RenderOptions{Title: "Experiment", Width: 320, Height: 200}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}

	if err := Render(&buf, map[string][]series.Point{"empty": nil}, RenderOptions{}); err != ErrNoData {
		t.Errorf("empty render returned %v", err)
	}
}
