package plot

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/CrimsonAS/qreflectometry/internal/dataset"
)

// Extrema are the axis ranges of a chart. All four are NaN for an empty
// dataset.
type Extrema struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

func empty() Extrema {
	nan := math.NaN()
	return Extrema{nan, nan, nan, nan}
}

func rawExtrema(d *dataset.Dataset1D) Extrema {
	if d.Len() == 0 {
		return empty()
	}
	return Extrema{
		MinX: floats.Min(d.X),
		MaxX: floats.Max(d.X),
		MinY: floats.Min(d.Y),
		MaxY: floats.Max(d.Y),
	}
}

func logY(e Extrema) Extrema {
	e.MinY = math.Log10(e.MinY)
	e.MaxY = math.Log10(e.MaxY)
	return e
}

// SampleExtrema has log10 y bounds.
func SampleExtrema(d *dataset.Dataset1D) Extrema {
	return logY(rawExtrema(d))
}

func SLDExtrema(d *dataset.Dataset1D) Extrema {
	return rawExtrema(d)
}

// ExperimentExtrema covers the whole dataset, not only the points inside the
// q range, and has log10 y bounds.
func ExperimentExtrema(d *dataset.Dataset1D) Extrema {
	return logY(rawExtrema(d))
}
