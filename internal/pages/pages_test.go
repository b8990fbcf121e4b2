package pages

import (
	"io"
	"math"
	"os"
	"testing"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/config"
	"github.com/CrimsonAS/qreflectometry/internal/dataset"
	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
	"github.com/CrimsonAS/qreflectometry/internal/series"
)

var dummyConnection *qbackend.Connection

func TestMain(m *testing.M) {
	r1, _ := io.Pipe()
	_, w2 := io.Pipe()
	dummyConnection = qbackend.NewConnectionSplit(r1, w2)

	os.Exit(m.Run())
}

func count(s *qbackend.Signal) *int {
	n := new(int)
	s.Connect(func() { *n++ })
	return n
}

func values(s *qbackend.IntSignal) *[]int {
	v := new([]int)
	s.Connect(func(i int) { *v = append(*v, i) })
	return v
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func experimentFixture() *dataset.Dataset1D {
	return &dataset.Dataset1D{
		Name: "measured",
		X:    []float64{0.05, 0.2, 0.4, 0.6},
		Y:    []float64{1, 0.1, 0.01, 0.001},
		YErr: []float64{0.01, 0.0001, 0.000001, 0.00000001},
	}
}

func TestLocalPath(t *testing.T) {
	for in, want := range map[string]string{
		"/tmp/a.qref":          "/tmp/a.qref",
		"file:///tmp/a b.qref": "/tmp/a b.qref",
		"relative/dir":         "relative/dir",
	} {
		if got := localPath(in); got != want {
			t.Errorf("localPath(%q) = %q, want %q", in, got, want)
		}
	}
}

// Every page must be a valid object type for the connection.
func TestPagesInit(t *testing.T) {
	lib := reflib.New()
	logger := log.Discard{}
	about, err := config.LoadAbout()
	if err != nil {
		t.Fatal(err)
	}
	objects := []qbackend.QObject{
		NewHome(about),
		NewProject(lib, t.TempDir(), logger),
		NewSample(lib, logger),
		NewExperiment(lib, logger),
		NewAnalysis(lib, logger),
		NewSummary(lib, logger),
		NewStatus(lib),
		NewPlotting(lib, series.NewSink(), logger, PlottingOptions{}),
		&ChartSeries{},
	}
	for _, obj := range objects {
		if err := dummyConnection.InitObject(obj); err != nil {
			t.Errorf("%T: %s", obj, err)
		}
	}
}

func TestHome(t *testing.T) {
	about, err := config.ParseAbout("[version]\nnumber = \"1.2.0\"\ndate = \"2024-01-01\"\n[urls]\nhomepage = \"https://example.org\"\n")
	if err != nil {
		t.Fatal(err)
	}
	props := NewHome(about).Properties()
	if v := props["version"].Value().(config.Version); v.Number != "1.2.0" || v.Date != "2024-01-01" {
		t.Errorf("version %+v", v)
	}
	if urls := props["urls"].Value().(map[string]string); urls["homepage"] != "https://example.org" {
		t.Errorf("urls %v", urls)
	}
}

func TestStatus(t *testing.T) {
	lib := reflib.New()
	s := NewStatus(lib)
	if s.Project() != "Example Project" || s.ModelsCount() != 1 || s.ExperimentsCount() != 0 {
		t.Errorf("status %s %d %d", s.Project(), s.ModelsCount(), s.ExperimentsCount())
	}
	if s.Calculator() != reflib.CalculatorName || s.Minimizer() != reflib.DefaultMinimizer {
		t.Errorf("calculator %s, minimizer %s", s.Calculator(), s.Minimizer())
	}
}

func TestAnalysis(t *testing.T) {
	lib := reflib.New()
	a := NewAnalysis(lib, log.NewRecorder())
	changed := count(&a.MinimizerChanged)

	params := a.Parameters()
	if len(params) != 5 || params[0].Model != "Model" || params[0].Name != "scale" || params[0].Value != 1 {
		t.Errorf("parameters %+v", params)
	}

	if err := a.SetMinimizer(reflib.DefaultMinimizer); err != nil || *changed != 0 {
		t.Errorf("setting the same minimizer: %v, %d signals", err, *changed)
	}
	if err := a.SetMinimizer("Simplex"); err == nil || *changed != 0 {
		t.Errorf("unknown minimizer: %v, %d signals", err, *changed)
	}
	if err := a.SetMinimizer("NelderMead"); err != nil || *changed != 1 || a.Minimizer() != "NelderMead" {
		t.Errorf("SetMinimizer: %v, %d signals", err, *changed)
	}
}
