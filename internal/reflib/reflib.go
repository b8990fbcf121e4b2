// Package reflib is the reflectometry library the pages work on: materials,
// layered sample models, experiments and the usable q range, with calculated
// reflectivity and SLD curves for each model.
//
// All pages share one Library. Lookups by index report ErrOutOfRange when the
// index does not exist; the dataset accessor turns that into an empty curve.
package reflib

import (
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/CrimsonAS/qreflectometry/internal/dataset"
)

// ErrOutOfRange is the same sentinel used by dataset lookups.
var ErrOutOfRange = dataset.ErrOutOfRange

var ErrInvalidRange = errors.New("invalid q range")

// Material is a named scattering length density, in 1e-6 Å^-2.
type Material struct {
	ID   uuid.UUID `json:"-"`
	Name string    `json:"name"`
	SLD  float64   `json:"sld"`
	ISLD float64   `json:"isld"`
}

// Layer is a slab of one material. The first layer of a model is the
// superphase and the last the substrate; their thickness is ignored. Roughness
// belongs to the interface above the layer.
type Layer struct {
	Name      string
	Material  uuid.UUID
	Thickness float64
	Roughness float64
}

type Model struct {
	ID         uuid.UUID
	Name       string
	Layers     []Layer
	Scale      float64
	Background float64
}

// Experiment is measured data associated with a model.
type Experiment struct {
	Name  string
	Model int
	Data  *dataset.Dataset1D
}

// QRange is the usable momentum transfer range, Min <= Max.
type QRange struct {
	Min, Max float64
}

func (q QRange) Validate() error {
	if q.Min > q.Max || q.Min < 0 {
		return errors.Wrapf(ErrInvalidRange, "[%g, %g]", q.Min, q.Max)
	}
	return nil
}

// Info describes the project as a whole.
type Info struct {
	ID          uuid.UUID
	Name        string
	Description string
	Location    string
	Created     bool
	CreatedAt   time.Time
}

// Parameter is a named model value shown on the analysis page.
type Parameter struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Library is the interface pages use. Project is the implementation.
type Library interface {
	dataset.Source

	Materials() []Material
	AddMaterial(m Material) int
	InsertMaterial(index int, m Material) error
	SetMaterial(index int, m Material) error
	RemoveMaterial(index int) error
	MoveMaterial(from, to int) error

	Models() []Model
	DefaultModel() Model
	AddModel(m Model) int
	RemoveModel(index int) error
	SetModelName(index int, name string) error
	Parameters(model int) ([]Parameter, error)

	Experiments() []Experiment
	AddExperiment(e Experiment) error
	RemoveExperiment(index int) error
	QRange() QRange
	SetQRange(q QRange) error

	Info() Info
	SetInfo(info Info)
	Calculator() string
	Minimizer() string
	SetMinimizer(name string) error

	Reset()
	Save(path string) error
	Load(path string) error
}

func outOfRange(what string, index, count int) error {
	return errors.Wrapf(ErrOutOfRange, "%s %d of %d", what, index, count)
}
