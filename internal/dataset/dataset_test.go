package dataset

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

type fakeSource struct {
	data map[Kind]*Dataset1D
	err  error
}

func (f *fakeSource) get(kind Kind, index int) (*Dataset1D, error) {
	if f.err != nil {
		return nil, f.err
	}
	if index != 0 {
		return nil, errors.Wrapf(ErrOutOfRange, "model %d", index)
	}
	return f.data[kind], nil
}

func (f *fakeSource) SampleData(i int) (*Dataset1D, error)     { return f.get(Sample, i) }
func (f *fakeSource) SLDData(i int) (*Dataset1D, error)        { return f.get(SLD, i) }
func (f *fakeSource) ExperimentData(i int) (*Dataset1D, error) { return f.get(Experiment, i) }

func TestAccessorEmpty(t *testing.T) {
	a := NewAccessor(&fakeSource{})
	for _, kind := range []Kind{Sample, SLD, Experiment} {
		d, err := a.Get(kind, 3)
		if err != nil {
			t.Errorf("%s: missing data reported %v", kind, err)
			continue
		}
		if !strings.HasSuffix(d.Name, " Data empty") || !strings.HasPrefix(d.Name, kind.String()) {
			t.Errorf("%s: placeholder named %q", kind, d.Name)
		}
		if d.Len() != 0 || len(d.Y) != 0 || len(d.YErr) != 0 || len(d.XErr) != 0 {
			t.Errorf("%s: placeholder not empty: %+v", kind, d)
		}
		if err := d.Validate(); err != nil {
			t.Errorf("%s: placeholder invalid: %v", kind, err)
		}
	}
	if d := Empty(Experiment); d.YErr == nil || d.XErr == nil {
		t.Error("experiment placeholder has no error arrays")
	}
}

func TestAccessorData(t *testing.T) {
	sample := &Dataset1D{Name: "curve", X: []float64{1, 2}, Y: []float64{10, 100}}
	a := NewAccessor(&fakeSource{data: map[Kind]*Dataset1D{Sample: sample}})
	d, err := a.Sample(0)
	if err != nil || d != sample {
		t.Errorf("Sample(0) = %v, %v", d, err)
	}
	// The library has no SLD curve for this model yet
	d, err = a.SLD(0)
	if err != nil || d.Name != "SLD Data empty" {
		t.Errorf("SLD(0) = %v, %v", d, err)
	}
}

func TestAccessorFailure(t *testing.T) {
	broken := errors.New("calculator crashed")
	a := NewAccessor(&fakeSource{err: broken})
	_, err := a.Experiment(0)
	if errors.Cause(err) != broken {
		t.Errorf("failure not propagated: %v", err)
	}
	if _, err := a.Get(Kind(7), 0); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		d  Dataset1D
		ok bool
	}{
		{Dataset1D{X: []float64{1}, Y: []float64{1}}, true},
		{Dataset1D{X: []float64{1}, Y: []float64{1}, YErr: []float64{0.1}}, true},
		{Dataset1D{X: []float64{1, 2}, Y: []float64{1}}, false},
		{Dataset1D{X: []float64{1}, Y: []float64{1}, YErr: []float64{0.1, 0.2}}, false},
		{Dataset1D{X: []float64{1}, Y: []float64{1}, XErr: []float64{0.1, 0.2}}, false},
	}
	for i, test := range tests {
		if err := test.d.Validate(); (err == nil) != test.ok {
			t.Errorf("case %d: Validate() = %v", i, err)
		}
	}
}

func TestPoints(t *testing.T) {
	d := &Dataset1D{X: []float64{1, 2}, Y: []float64{3, 4}, YErr: []float64{0.5, 0.25}}
	points := d.Points()
	if len(points) != 2 || points[1] != (DataPoint{X: 2, Y: 4, YErr: 0.25}) {
		t.Errorf("points %+v", points)
	}
}
