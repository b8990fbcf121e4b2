// Package dataset holds the one dimensional datasets produced by the
// reflectometry library and the accessor that hides missing ones.
package dataset

import (
	"github.com/pkg/errors"
)

// Kind selects one of the datasets available for a model.
type Kind int

const (
	Sample Kind = iota
	SLD
	Experiment
)

func (k Kind) String() string {
	switch k {
	case Sample:
		return "Sample"
	case SLD:
		return "SLD"
	case Experiment:
		return "Experiment"
	}
	return "Unknown"
}

// ErrOutOfRange is reported by lookups for a model, material or experiment
// index that does not exist.
var ErrOutOfRange = errors.New("index out of range")

// Dataset1D is a named curve. YErr and XErr are either empty or as long as X.
// YErr holds variances.
type Dataset1D struct {
	Name string
	X    []float64
	Y    []float64
	YErr []float64
	XErr []float64
}

func (d *Dataset1D) Len() int {
	return len(d.X)
}

// Validate checks that all present arrays have the same length.
func (d *Dataset1D) Validate() error {
	n := len(d.X)
	if len(d.Y) != n {
		return errors.Errorf("dataset %q: %d x values but %d y values", d.Name, n, len(d.Y))
	}
	if len(d.YErr) != 0 && len(d.YErr) != n {
		return errors.Errorf("dataset %q: %d x values but %d y errors", d.Name, n, len(d.YErr))
	}
	if len(d.XErr) != 0 && len(d.XErr) != n {
		return errors.Errorf("dataset %q: %d x values but %d x errors", d.Name, n, len(d.XErr))
	}
	return nil
}

// DataPoint is one row of a dataset. Missing errors are zero.
type DataPoint struct {
	X, Y, YErr, XErr float64
}

// Points returns the rows of the dataset in order.
func (d *Dataset1D) Points() []DataPoint {
	points := make([]DataPoint, d.Len())
	for i := range points {
		p := DataPoint{X: d.X[i], Y: d.Y[i]}
		if i < len(d.YErr) {
			p.YErr = d.YErr[i]
		}
		if i < len(d.XErr) {
			p.XErr = d.XErr[i]
		}
		points[i] = p
	}
	return points
}

// Empty returns the placeholder for a kind without data, named
// "<Kind> Data empty". Experiment placeholders carry empty error arrays.
func Empty(kind Kind) *Dataset1D {
	d := &Dataset1D{
		Name: kind.String() + " Data empty",
		X:    []float64{},
		Y:    []float64{},
	}
	if kind == Experiment {
		d.YErr = []float64{}
		d.XErr = []float64{}
	}
	return d
}
