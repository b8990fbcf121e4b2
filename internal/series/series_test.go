package series

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

var sldKey = Key{"QtCharts", "samplePage", "sldSerie"}

func TestClearAndAppendUnregistered(t *testing.T) {
	s := NewSink()
	err := s.ClearAndAppend(sldKey, []Point{{1, 2}})
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("unregistered key returned %v", err)
	}
	if s.Handle(sldKey) != nil || len(s.Keys()) != 0 {
		t.Error("ClearAndAppend created a handle")
	}
}

func TestClearAndAppendReplaces(t *testing.T) {
	s := NewSink()
	b := &Buffer{}
	s.Register(sldKey, b)

	if err := s.ClearAndAppend(sldKey, []Point{{1, 2}, {3, 4}}); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearAndAppend(sldKey, []Point{{5, 6}}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.Points, []Point{{5, 6}}) {
		t.Errorf("points after redraw %v", b.Points)
	}
	if b.Clears != 2 {
		t.Errorf("cleared %d times", b.Clears)
	}

	if err := s.ClearAndAppend(sldKey, nil); err != nil || len(b.Points) != 0 {
		t.Errorf("empty redraw left %v, %v", b.Points, err)
	}
}

func TestRegisterOverwrites(t *testing.T) {
	s := NewSink()
	first, second := &Buffer{}, &Buffer{}
	s.Register(sldKey, first)
	s.Register(sldKey, second)
	s.ClearAndAppend(sldKey, []Point{{1, 1}})
	if len(first.Points) != 0 || len(second.Points) != 1 {
		t.Error("points went to the replaced handle")
	}
	if s.Handle(sldKey) != Handle(second) {
		t.Error("Handle does not return the latest registration")
	}
}

func TestKeysSorted(t *testing.T) {
	s := NewSink()
	s.Register(Key{"QtCharts", "samplePage", "sldSerie"}, &Buffer{})
	s.Register(Key{"QtCharts", "experimentPage", "measuredSerie"}, &Buffer{})
	s.Register(Key{"QtCharts", "samplePage", "sampleSerie"}, &Buffer{})
	keys := s.Keys()
	want := []Key{
		{"QtCharts", "experimentPage", "measuredSerie"},
		{"QtCharts", "samplePage", "sampleSerie"},
		{"QtCharts", "samplePage", "sldSerie"},
	}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys %v", keys)
	}
}

func TestPointJSON(t *testing.T) {
	data, err := json.Marshal([]Point{{0.1, -2}, {0.2, math.NaN()}, {math.Inf(1), math.Inf(-1)}})
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"x":0.1,"y":-2},{"x":0.2,"y":null},{"x":null,"y":null}]`
	if string(data) != want {
		t.Errorf("encoded %s, want %s", data, want)
	}
}
