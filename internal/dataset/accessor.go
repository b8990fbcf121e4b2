package dataset

import (
	"github.com/pkg/errors"
)

// Source is the part of the reflectometry library the accessor reads from.
// Each getter reports ErrOutOfRange, possibly wrapped, when the index has no
// model or experiment.
type Source interface {
	SampleData(index int) (*Dataset1D, error)
	SLDData(index int) (*Dataset1D, error)
	ExperimentData(index int) (*Dataset1D, error)
}

// Accessor reads datasets from a Source, replacing missing ones with the
// empty placeholder of their kind.
type Accessor struct {
	Source Source
}

func NewAccessor(src Source) *Accessor {
	return &Accessor{Source: src}
}

// Get returns the dataset of kind for the model at index. A missing dataset
// is not an error; any other failure of the source is returned.
func (a *Accessor) Get(kind Kind, index int) (*Dataset1D, error) {
	var d *Dataset1D
	var err error
	switch kind {
	case Sample:
		d, err = a.Source.SampleData(index)
	case SLD:
		d, err = a.Source.SLDData(index)
	case Experiment:
		d, err = a.Source.ExperimentData(index)
	default:
		return nil, errors.Errorf("unknown dataset kind %d", kind)
	}
	if errors.Is(err, ErrOutOfRange) {
		return Empty(kind), nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "%s data for model %d", kind, index)
	}
	if d == nil {
		return Empty(kind), nil
	}
	return d, nil
}

func (a *Accessor) Sample(index int) (*Dataset1D, error) {
	return a.Get(Sample, index)
}

func (a *Accessor) SLD(index int) (*Dataset1D, error) {
	return a.Get(SLD, index)
}

func (a *Accessor) Experiment(index int) (*Dataset1D, error) {
	return a.Get(Experiment, index)
}
