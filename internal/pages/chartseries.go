package pages

import (
	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/series"
)

// ChartSeries is a series handle shared with the UI. QML binds a chart series
// to its signals; the backend only clears and fills it.
//
// Points holds the current points so a client that connects after a redraw
// can read them from the property.
type ChartSeries struct {
	qbackend.QObject
	Points []series.Point

	Cleared  func()
	Appended func(points []series.Point) `qbackend:"points"`
}

var _ series.Handle = (*ChartSeries)(nil)

func (s *ChartSeries) Clear() {
	s.Points = s.Points[:0]
	if s.Cleared != nil {
		s.Cleared()
	}
}

func (s *ChartSeries) Append(points ...series.Point) {
	s.Points = append(s.Points, points...)
	if s.Appended != nil {
		s.Appended(points)
	}
}
