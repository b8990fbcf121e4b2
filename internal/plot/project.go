// Package plot turns datasets into chart points and axis ranges.
//
// Reflectivity is drawn on a log10 scale, SLD profiles as they are. The
// experiment page shows the measured curve together with an envelope of one
// standard deviation, clipped to the usable q range.
package plot

import (
	"math"

	"github.com/CrimsonAS/qreflectometry/internal/dataset"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
	"github.com/CrimsonAS/qreflectometry/internal/series"
)

// Sample returns the calculated reflectivity with log10 y values.
func Sample(d *dataset.Dataset1D) []series.Point {
	points := make([]series.Point, d.Len())
	for i := range points {
		points[i] = series.Point{X: d.X[i], Y: math.Log10(d.Y[i])}
	}
	return points
}

// SLD returns the scattering length density profile unchanged.
func SLD(d *dataset.Dataset1D) []series.Point {
	points := make([]series.Point, d.Len())
	for i := range points {
		points[i] = series.Point{X: d.X[i], Y: d.Y[i]}
	}
	return points
}

// Experiment returns the measured curve and its upper and lower variance
// envelopes, keeping only points with q.Min < x < q.Max in their original
// order. YErr holds variances; a missing variance counts as zero.
func Experiment(d *dataset.Dataset1D, q reflib.QRange) (measured, upper, lower []series.Point) {
	measured = []series.Point{}
	upper = []series.Point{}
	lower = []series.Point{}
	for _, p := range d.Points() {
		if !(q.Min < p.X && p.X < q.Max) {
			continue
		}
		sd := math.Sqrt(p.YErr)
		measured = append(measured, series.Point{X: p.X, Y: math.Log10(p.Y)})
		upper = append(upper, series.Point{X: p.X, Y: math.Log10(p.Y + sd)})
		lower = append(lower, series.Point{X: p.X, Y: math.Log10(p.Y - sd)})
	}
	return measured, upper, lower
}
