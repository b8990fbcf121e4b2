package pages

import (
	"github.com/pkg/errors"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/dataset"
	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
)

// Experiment manages the measured data of the current model and the q range
// used to compare it with the calculation.
type Experiment struct {
	qbackend.QObject

	// ExperimentChanged is emitted when measured data or the q range change.
	ExperimentChanged   qbackend.Signal
	ModelIndexChanged   qbackend.IntSignal
	CurrentIndexChanged qbackend.IntSignal

	lib          reflib.Library
	log          log.Logger
	modelIndex   int
	currentIndex int
}

func NewExperiment(lib reflib.Library, logger log.Logger) *Experiment {
	return &Experiment{lib: lib, log: logger}
}

func (e *Experiment) Properties() qbackend.Properties {
	return qbackend.Properties{
		"modelIndex":       qbackend.Prop(e.ModelIndex, &e.ModelIndexChanged),
		"available":        qbackend.Prop(e.Available, &e.ExperimentChanged),
		"currentIndex":     qbackend.Prop(e.CurrentIndex, &e.CurrentIndexChanged),
		"experimentsCount": qbackend.Prop(e.ExperimentsCount, &e.ExperimentChanged),
		"qMin":             qbackend.Prop(e.QMin, &e.ExperimentChanged),
		"qMax":             qbackend.Prop(e.QMax, &e.ExperimentChanged),
	}
}

func (e *Experiment) ModelIndex() int {
	return e.modelIndex
}

// SetModelIndex selects the model whose experiments are listed. The first of
// them becomes the current experiment.
func (e *Experiment) SetModelIndex(index int) {
	if index == e.modelIndex {
		return
	}
	e.modelIndex = index
	if e.currentIndex != 0 {
		e.currentIndex = 0
		e.CurrentIndexChanged.Emit(0)
	}
	e.ModelIndexChanged.Emit(index)
}

// experiments returns the library indices of the experiments of the current
// model.
func (e *Experiment) experiments() []int {
	var indices []int
	for i, exp := range e.lib.Experiments() {
		if exp.Model == e.modelIndex {
			indices = append(indices, i)
		}
	}
	return indices
}

// Available lists the names of the experiments of the current model.
func (e *Experiment) Available() []string {
	all := e.lib.Experiments()
	names := []string{}
	for _, i := range e.experiments() {
		names = append(names, all[i].Name)
	}
	return names
}

func (e *Experiment) CurrentIndex() int {
	return e.currentIndex
}

// SetCurrentIndex selects one of the available experiments.
func (e *Experiment) SetCurrentIndex(index int) error {
	if index == e.currentIndex {
		return nil
	}
	if n := len(e.experiments()); index < 0 || index >= n {
		return errors.Wrapf(reflib.ErrOutOfRange, "experiment %d of %d", index, n)
	}
	e.currentIndex = index
	e.CurrentIndexChanged.Emit(index)
	return nil
}

// ExperimentsCount is the length of Available. Status counts the experiments
// of all models.
func (e *Experiment) ExperimentsCount() int {
	return len(e.experiments())
}

func (e *Experiment) QMin() float64 {
	return e.lib.QRange().Min
}

func (e *Experiment) QMax() float64 {
	return e.lib.QRange().Max
}

func (e *Experiment) SetQRange(min, max float64) error {
	q := reflib.QRange{Min: min, Max: max}
	if q == e.lib.QRange() {
		return nil
	}
	if err := e.lib.SetQRange(q); err != nil {
		return err
	}
	e.ExperimentChanged.Emit()
	return nil
}

func (e *Experiment) SetQMin(min float64) error {
	return e.SetQRange(min, e.QMax())
}

func (e *Experiment) SetQMax(max float64) error {
	return e.SetQRange(e.QMin(), max)
}

// AddExperiment stores measured data for the current model. yErr holds
// variances and may be empty.
func (e *Experiment) AddExperiment(name string, x, y, yErr []float64) error {
	d := &dataset.Dataset1D{Name: name, X: x, Y: y, YErr: yErr}
	if err := e.lib.AddExperiment(reflib.Experiment{Name: name, Model: e.modelIndex, Data: d}); err != nil {
		return errors.Wrapf(err, "failed to add experiment %q", name)
	}
	e.log.Info("experiment added", "name", name, "points", len(x), "model", e.modelIndex)
	e.ExperimentChanged.Emit()
	return nil
}

// RemoveExperiment removes one of the available experiments.
func (e *Experiment) RemoveExperiment(index int) error {
	indices := e.experiments()
	if index < 0 || index >= len(indices) {
		return errors.Wrapf(reflib.ErrOutOfRange, "experiment %d of %d", index, len(indices))
	}
	if err := e.lib.RemoveExperiment(indices[index]); err != nil {
		return err
	}
	if n := len(indices) - 1; e.currentIndex >= n && n > 0 {
		e.currentIndex = n - 1
		e.CurrentIndexChanged.Emit(e.currentIndex)
	}
	e.ExperimentChanged.Emit()
	return nil
}

// Reload makes the page follow a library that was replaced as a whole.
func (e *Experiment) Reload() {
	if e.currentIndex != 0 {
		e.currentIndex = 0
		e.CurrentIndexChanged.Emit(0)
	}
	e.ExperimentChanged.Emit()
}
