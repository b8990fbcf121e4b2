// Package series keeps the chart series handles that the UI registers, and
// replaces their points when a page is redrawn.
package series

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/pkg/errors"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON encodes a coordinate that is NaN or infinite as null. A log
// scale turns zero or negative values into such coordinates.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}{finite(p.X), finite(p.Y)})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Handle is a renderable series owned by the UI. The sink never creates or
// destroys handles; it only clears and fills them.
type Handle interface {
	Clear()
	Append(points ...Point)
}

// Key names a series slot, such as {"QtCharts", "samplePage", "sldSerie"}.
type Key struct {
	Backend string
	Page    string
	Series  string
}

func (k Key) String() string {
	return k.Backend + "/" + k.Page + "/" + k.Series
}

var ErrNotRegistered = errors.New("series not registered")

// Sink maps keys to registered handles.
type Sink struct {
	handles map[Key]Handle
}

func NewSink() *Sink {
	return &Sink{handles: make(map[Key]Handle)}
}

// Register stores h under key, replacing any earlier handle.
func (s *Sink) Register(key Key, h Handle) {
	s.handles[key] = h
}

// Handle returns the handle registered under key, or nil.
func (s *Sink) Handle(key Key) Handle {
	return s.handles[key]
}

// ClearAndAppend replaces the points of the series under key. It fails with
// ErrNotRegistered when no handle has been registered.
func (s *Sink) ClearAndAppend(key Key, points []Point) error {
	h, ok := s.handles[key]
	if !ok || h == nil {
		return errors.Wrapf(ErrNotRegistered, "%s", key)
	}
	h.Clear()
	if len(points) > 0 {
		h.Append(points...)
	}
	return nil
}

// Keys returns the registered keys in sorted order.
func (s *Sink) Keys() []Key {
	keys := make([]Key, 0, len(s.handles))
	for k := range s.handles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
