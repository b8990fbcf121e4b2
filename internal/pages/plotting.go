package pages

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/dataset"
	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/plot"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
	"github.com/CrimsonAS/qreflectometry/internal/series"
)

// QtCharts is the chart library the UI draws with.
const QtCharts = "QtCharts"

const (
	SamplePage     = "samplePage"
	ExperimentPage = "experimentPage"

	SampleSerie        = "sampleSerie"
	SldSerie           = "sldSerie"
	MeasuredSerie      = "measuredSerie"
	VarianceUpperSerie = "varianceUpperSerie"
	VarianceLowerSerie = "varianceLowerSerie"
)

// chartLayout lists the series each page draws.
var chartLayout = map[string][]string{
	SamplePage:     {SampleSerie, SldSerie},
	ExperimentPage: {MeasuredSerie, VarianceUpperSerie, VarianceLowerSerie},
}

var ErrUnknownSeries = errors.New("unknown chart series")

// axisValue is an axis bound. An empty chart has NaN bounds, which the client
// receives as null.
type axisValue float64

func (v axisValue) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

type PlottingOptions struct {
	Lib          string
	Acceleration bool
	// Size of exported images
	Width, Height int
}

// Plotting projects the datasets of the current model onto the chart series
// registered by the UI.
type Plotting struct {
	qbackend.QObject

	CurrentLib1dChanged          qbackend.Signal
	UseAcceleration1dChanged     qbackend.Signal
	ChartRefsChanged             qbackend.Signal
	SampleChartRangesChanged     qbackend.Signal
	SldChartRangesChanged        qbackend.Signal
	ExperimentChartRangesChanged qbackend.Signal
	ModelIndexChanged            qbackend.IntSignal

	lib          reflib.Library
	data         *dataset.Accessor
	sink         *series.Sink
	log          log.Logger
	currentLib   string
	acceleration bool
	modelIndex   int
	width        int
	height       int
}

func NewPlotting(lib reflib.Library, sink *series.Sink, logger log.Logger, opts PlottingOptions) *Plotting {
	if opts.Lib == "" {
		opts.Lib = QtCharts
	}
	return &Plotting{
		lib:          lib,
		data:         dataset.NewAccessor(lib),
		sink:         sink,
		log:          logger,
		currentLib:   opts.Lib,
		acceleration: opts.Acceleration,
		width:        opts.Width,
		height:       opts.Height,
	}
}

func (p *Plotting) Properties() qbackend.Properties {
	axis := func(get func() float64) func() axisValue {
		return func() axisValue { return axisValue(get()) }
	}
	return qbackend.Properties{
		"currentLib1d":      qbackend.Prop(p.CurrentLib1d, &p.CurrentLib1dChanged),
		"useAcceleration1d": qbackend.Prop(p.UseAcceleration1d, &p.UseAcceleration1dChanged),
		"chartRefs":         qbackend.Prop(p.ChartRefs, &p.ChartRefsChanged),
		"modelIndex":        qbackend.Prop(p.ModelIndex, &p.ModelIndexChanged),

		"sampleMinX": qbackend.Prop(axis(p.SampleMinX), &p.SampleChartRangesChanged),
		"sampleMaxX": qbackend.Prop(axis(p.SampleMaxX), &p.SampleChartRangesChanged),
		"sampleMinY": qbackend.Prop(axis(p.SampleMinY), &p.SampleChartRangesChanged),
		"sampleMaxY": qbackend.Prop(axis(p.SampleMaxY), &p.SampleChartRangesChanged),

		"sldMinX": qbackend.Prop(axis(p.SldMinX), &p.SldChartRangesChanged),
		"sldMaxX": qbackend.Prop(axis(p.SldMaxX), &p.SldChartRangesChanged),
		"sldMinY": qbackend.Prop(axis(p.SldMinY), &p.SldChartRangesChanged),
		"sldMaxY": qbackend.Prop(axis(p.SldMaxY), &p.SldChartRangesChanged),

		"experimentMinX": qbackend.Prop(axis(p.ExperimentMinX), &p.ExperimentChartRangesChanged),
		"experimentMaxX": qbackend.Prop(axis(p.ExperimentMaxX), &p.ExperimentChartRangesChanged),
		"experimentMinY": qbackend.Prop(axis(p.ExperimentMinY), &p.ExperimentChartRangesChanged),
		"experimentMaxY": qbackend.Prop(axis(p.ExperimentMaxY), &p.ExperimentChartRangesChanged),
	}
}

func (p *Plotting) CurrentLib1d() string {
	return p.currentLib
}

func (p *Plotting) SetCurrentLib1d(name string) {
	if name == p.currentLib {
		return
	}
	p.currentLib = name
	p.CurrentLib1dChanged.Emit()
}

func (p *Plotting) UseAcceleration1d() bool {
	return p.acceleration
}

func (p *Plotting) SetUseAcceleration1d(use bool) {
	if use == p.acceleration {
		return
	}
	p.acceleration = use
	p.UseAcceleration1dChanged.Emit()
}

func (p *Plotting) ModelIndex() int {
	return p.modelIndex
}

// SetModelIndex selects the model whose curves are drawn. The charts are not
// redrawn until the next refresh.
func (p *Plotting) SetModelIndex(index int) {
	if index == p.modelIndex {
		return
	}
	p.modelIndex = index
	p.ModelIndexChanged.Emit(index)
}

// ChartRefs returns the registered handles by library, page and series.
// Slots without a handle are nil.
func (p *Plotting) ChartRefs() map[string]map[string]map[string]series.Handle {
	pages := make(map[string]map[string]series.Handle)
	for page, names := range chartLayout {
		slots := make(map[string]series.Handle)
		for _, name := range names {
			slots[name] = p.sink.Handle(series.Key{Backend: QtCharts, Page: page, Series: name})
		}
		pages[page] = slots
	}
	return map[string]map[string]map[string]series.Handle{QtCharts: pages}
}

// NewChartSeries returns a handle for the UI to bind a chart series to and
// pass back to one of the Set*SerieRef methods.
func (p *Plotting) NewChartSeries() *ChartSeries {
	return &ChartSeries{}
}

// Register stores the handle for a series of a page.
func (p *Plotting) Register(page, serie string, h series.Handle) error {
	known := false
	for _, name := range chartLayout[page] {
		known = known || name == serie
	}
	if !known {
		return errors.Wrapf(ErrUnknownSeries, "%s on %s", serie, page)
	}
	p.sink.Register(series.Key{Backend: QtCharts, Page: page, Series: serie}, h)
	p.log.Debug("series registered", "series", serie, "page", page)
	p.ChartRefsChanged.Emit()
	return nil
}

func (p *Plotting) SetQtChartsReflectometrySerieRef(page, serie string, ref *ChartSeries) error {
	return p.Register(page, serie, ref)
}

func (p *Plotting) SetQtChartsSldSerieRef(page, serie string, ref *ChartSeries) error {
	return p.Register(page, serie, ref)
}

func (p *Plotting) SetQtChartsExperimentSerieRef(page, serie string, ref *ChartSeries) error {
	return p.Register(page, serie, ref)
}

func (p *Plotting) sampleData() *dataset.Dataset1D {
	d, err := p.data.Sample(p.modelIndex)
	if err != nil {
		p.log.Error("sample data", "err", err)
		return dataset.Empty(dataset.Sample)
	}
	return d
}

func (p *Plotting) sldData() *dataset.Dataset1D {
	d, err := p.data.SLD(p.modelIndex)
	if err != nil {
		p.log.Error("sld data", "err", err)
		return dataset.Empty(dataset.SLD)
	}
	return d
}

func (p *Plotting) experimentData() *dataset.Dataset1D {
	d, err := p.data.Experiment(p.modelIndex)
	if err != nil {
		p.log.Error("experiment data", "err", err)
		return dataset.Empty(dataset.Experiment)
	}
	return d
}

func (p *Plotting) SampleMinX() float64 { return plot.SampleExtrema(p.sampleData()).MinX }
func (p *Plotting) SampleMaxX() float64 { return plot.SampleExtrema(p.sampleData()).MaxX }
func (p *Plotting) SampleMinY() float64 { return plot.SampleExtrema(p.sampleData()).MinY }
func (p *Plotting) SampleMaxY() float64 { return plot.SampleExtrema(p.sampleData()).MaxY }

func (p *Plotting) SldMinX() float64 { return plot.SLDExtrema(p.sldData()).MinX }
func (p *Plotting) SldMaxX() float64 { return plot.SLDExtrema(p.sldData()).MaxX }
func (p *Plotting) SldMinY() float64 { return plot.SLDExtrema(p.sldData()).MinY }
func (p *Plotting) SldMaxY() float64 { return plot.SLDExtrema(p.sldData()).MaxY }

func (p *Plotting) ExperimentMinX() float64 { return plot.ExperimentExtrema(p.experimentData()).MinX }
func (p *Plotting) ExperimentMaxX() float64 { return plot.ExperimentExtrema(p.experimentData()).MaxX }
func (p *Plotting) ExperimentMinY() float64 { return plot.ExperimentExtrema(p.experimentData()).MinY }
func (p *Plotting) ExperimentMaxY() float64 { return plot.ExperimentExtrema(p.experimentData()).MaxY }

func (p *Plotting) key(page, serie string) series.Key {
	return series.Key{Backend: QtCharts, Page: page, Series: serie}
}

// RefreshSamplePage redraws the calculated curve and then the SLD profile.
func (p *Plotting) RefreshSamplePage() error {
	if err := p.drawSample(); err != nil {
		return err
	}
	return p.drawSLD()
}

func (p *Plotting) drawSample() error {
	points := plot.Sample(p.sampleData())
	if err := p.sink.ClearAndAppend(p.key(SamplePage, SampleSerie), points); err != nil {
		return err
	}
	p.log.Debug("calc curve replaced", "points", len(points), "page", SamplePage)
	return nil
}

func (p *Plotting) drawSLD() error {
	points := plot.SLD(p.sldData())
	if err := p.sink.ClearAndAppend(p.key(SamplePage, SldSerie), points); err != nil {
		return err
	}
	p.log.Debug("sld curve replaced", "points", len(points), "page", SamplePage)
	return nil
}

// RefreshExperimentPage redraws the measured curve and its variance
// envelope, clipped to the q range of the library.
func (p *Plotting) RefreshExperimentPage() error {
	measured, upper, lower := plot.Experiment(p.experimentData(), p.lib.QRange())
	for _, s := range []struct {
		name   string
		points []series.Point
	}{
		{MeasuredSerie, measured},
		{VarianceUpperSerie, upper},
		{VarianceLowerSerie, lower},
	} {
		if err := p.sink.ClearAndAppend(p.key(ExperimentPage, s.name), s.points); err != nil {
			return err
		}
	}
	p.log.Debug("measured curve replaced", "points", len(measured), "page", ExperimentPage)
	return nil
}

// Charts that can be exported.
const (
	SampleChart     = "sample"
	SldChart        = "sld"
	ExperimentChart = "experiment"
)

// Chart returns the projected series of a chart and how to label it. It does
// not need registered handles.
func (p *Plotting) Chart(name string) (map[string][]series.Point, plot.RenderOptions, error) {
	opts := plot.RenderOptions{Width: p.width, Height: p.height}
	switch name {
	case SampleChart:
		opts.Title, opts.XName, opts.YName = "Reflectivity", "q (1/Å)", "log10 R(q)"
		return map[string][]series.Point{SampleSerie: plot.Sample(p.sampleData())}, opts, nil
	case SldChart:
		opts.Title, opts.XName, opts.YName = "SLD profile", "z (Å)", "SLD (1e-6/Å²)"
		return map[string][]series.Point{SldSerie: plot.SLD(p.sldData())}, opts, nil
	case ExperimentChart:
		measured, upper, lower := plot.Experiment(p.experimentData(), p.lib.QRange())
		opts.Title, opts.XName, opts.YName = "Measured data", "q (1/Å)", "log10 R(q)"
		return map[string][]series.Point{
			MeasuredSerie:      measured,
			VarianceUpperSerie: upper,
			VarianceLowerSerie: lower,
		}, opts, nil
	}
	return nil, opts, errors.Errorf("unknown chart %q", name)
}

// ExportChart writes a PNG of the named chart for the current model.
func (p *Plotting) ExportChart(name, path string) error {
	data, opts, err := p.Chart(name)
	if err != nil {
		return err
	}
	f, err := os.Create(localPath(path))
	if err != nil {
		return errors.Wrap(err, "failed to create image")
	}
	if err := plot.Render(f, data, opts); err != nil {
		f.Close()
		os.Remove(f.Name())
		return errors.Wrapf(err, "failed to render %s chart", name)
	}
	return f.Close()
}
