package reflib

import (
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/CrimsonAS/qreflectometry/internal/dataset"
)

const CalculatorName = "parratt"

// Project is an in-memory Library. It is not safe for concurrent use; the
// application serializes access through the connection.
type Project struct {
	info        Info
	materials   []Material
	models      []Model
	experiments []Experiment
	qRange      QRange
	minimizer   string
}

var _ Library = (*Project)(nil)

// New returns a project with the default materials and one default model.
func New() *Project {
	p := &Project{}
	p.Reset()
	return p
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// Reset discards everything and restores the defaults.
func (p *Project) Reset() {
	p.info = Info{
		ID:          newID(),
		Name:        "Example Project",
		Description: "reflectometry, 1D",
	}
	p.materials = []Material{
		{ID: newID(), Name: "Air", SLD: 0, ISLD: 0},
		{ID: newID(), Name: "D2O", SLD: 6.36, ISLD: 0},
		{ID: newID(), Name: "Si", SLD: 2.074, ISLD: 0},
	}
	p.models = []Model{p.DefaultModel()}
	p.experiments = nil
	p.qRange = QRange{Min: 0.001, Max: 0.3}
	p.minimizer = DefaultMinimizer
}

func (p *Project) materialID(name string) uuid.UUID {
	for _, m := range p.materials {
		if m.Name == name {
			return m.ID
		}
	}
	return uuid.Nil
}

// DefaultModel returns a new model of a D2O film on silicon under air.
func (p *Project) DefaultModel() Model {
	return Model{
		ID:   newID(),
		Name: "Model",
		Layers: []Layer{
			{Name: "Superphase", Material: p.materialID("Air")},
			{Name: "D2O Layer", Material: p.materialID("D2O"), Thickness: 20, Roughness: 3},
			{Name: "Substrate", Material: p.materialID("Si"), Roughness: 1.2},
		},
		Scale:      1,
		Background: 1e-8,
	}
}

func (p *Project) Materials() []Material {
	return append([]Material(nil), p.materials...)
}

// AddMaterial appends m, assigning an ID if it has none, and returns its index.
func (p *Project) AddMaterial(m Material) int {
	if uuid.Equal(m.ID, uuid.Nil) {
		m.ID = newID()
	}
	p.materials = append(p.materials, m)
	return len(p.materials) - 1
}

// InsertMaterial inserts m before index; index may equal the count.
func (p *Project) InsertMaterial(index int, m Material) error {
	if index < 0 || index > len(p.materials) {
		return outOfRange("material", index, len(p.materials))
	}
	if uuid.Equal(m.ID, uuid.Nil) {
		m.ID = newID()
	}
	p.materials = append(p.materials, Material{})
	copy(p.materials[index+1:], p.materials[index:])
	p.materials[index] = m
	return nil
}

// SetMaterial replaces the values of a material, keeping its identity so
// layers made of it follow the change.
func (p *Project) SetMaterial(index int, m Material) error {
	if index < 0 || index >= len(p.materials) {
		return outOfRange("material", index, len(p.materials))
	}
	m.ID = p.materials[index].ID
	p.materials[index] = m
	return nil
}

func (p *Project) RemoveMaterial(index int) error {
	if index < 0 || index >= len(p.materials) {
		return outOfRange("material", index, len(p.materials))
	}
	p.materials = append(p.materials[:index], p.materials[index+1:]...)
	return nil
}

func (p *Project) MoveMaterial(from, to int) error {
	n := len(p.materials)
	if from < 0 || from >= n {
		return outOfRange("material", from, n)
	}
	if to < 0 || to >= n {
		return outOfRange("material", to, n)
	}
	m := p.materials[from]
	p.materials = append(p.materials[:from], p.materials[from+1:]...)
	p.materials = append(p.materials[:to], append([]Material{m}, p.materials[to:]...)...)
	return nil
}

func (p *Project) Models() []Model {
	models := make([]Model, len(p.models))
	for i, m := range p.models {
		m.Layers = append([]Layer(nil), m.Layers...)
		models[i] = m
	}
	return models
}

func (p *Project) AddModel(m Model) int {
	if uuid.Equal(m.ID, uuid.Nil) {
		m.ID = newID()
	}
	p.models = append(p.models, m)
	return len(p.models) - 1
}

// RemoveModel removes a model and the experiments associated with it.
func (p *Project) RemoveModel(index int) error {
	if index < 0 || index >= len(p.models) {
		return outOfRange("model", index, len(p.models))
	}
	p.models = append(p.models[:index], p.models[index+1:]...)
	kept := p.experiments[:0]
	for _, e := range p.experiments {
		switch {
		case e.Model == index:
			continue
		case e.Model > index:
			e.Model--
		}
		kept = append(kept, e)
	}
	p.experiments = kept
	return nil
}

func (p *Project) SetModelName(index int, name string) error {
	if index < 0 || index >= len(p.models) {
		return outOfRange("model", index, len(p.models))
	}
	p.models[index].Name = name
	return nil
}

// Parameters lists the fittable values of a model.
func (p *Project) Parameters(index int) ([]Parameter, error) {
	if index < 0 || index >= len(p.models) {
		return nil, outOfRange("model", index, len(p.models))
	}
	m := p.models[index]
	params := []Parameter{
		{Name: "scale", Value: m.Scale},
		{Name: "background", Value: m.Background},
	}
	for i, l := range m.Layers {
		if i > 0 && i < len(m.Layers)-1 {
			params = append(params, Parameter{Name: l.Name + " thickness", Value: l.Thickness})
		}
		if i > 0 {
			params = append(params, Parameter{Name: l.Name + " roughness", Value: l.Roughness})
		}
	}
	return params, nil
}

func (p *Project) Experiments() []Experiment {
	return append([]Experiment(nil), p.experiments...)
}

// AddExperiment stores measured data for an existing model.
func (p *Project) AddExperiment(e Experiment) error {
	if e.Model < 0 || e.Model >= len(p.models) {
		return outOfRange("model", e.Model, len(p.models))
	}
	if e.Data == nil {
		return errors.New("experiment without data")
	}
	if err := e.Data.Validate(); err != nil {
		return err
	}
	if e.Name == "" {
		e.Name = e.Data.Name
	}
	p.experiments = append(p.experiments, e)
	return nil
}

func (p *Project) RemoveExperiment(index int) error {
	if index < 0 || index >= len(p.experiments) {
		return outOfRange("experiment", index, len(p.experiments))
	}
	p.experiments = append(p.experiments[:index], p.experiments[index+1:]...)
	return nil
}

func (p *Project) QRange() QRange {
	return p.qRange
}

func (p *Project) SetQRange(q QRange) error {
	if err := q.Validate(); err != nil {
		return err
	}
	p.qRange = q
	return nil
}

func (p *Project) Info() Info {
	return p.info
}

// SetInfo replaces the descriptive fields. The project ID is kept.
func (p *Project) SetInfo(info Info) {
	info.ID = p.info.ID
	if info.Created && info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now()
	}
	p.info = info
}

func (p *Project) Calculator() string {
	return CalculatorName
}

func (p *Project) Minimizer() string {
	return p.minimizer
}

func (p *Project) SetMinimizer(name string) error {
	if _, err := MinimizerMethod(name); err != nil {
		return err
	}
	p.minimizer = name
	return nil
}

func (p *Project) SampleData(index int) (*dataset.Dataset1D, error) {
	if index < 0 || index >= len(p.models) {
		return nil, outOfRange("model", index, len(p.models))
	}
	m := p.models[index]
	x, y := p.calculate(m)
	return &dataset.Dataset1D{Name: m.Name, X: x, Y: y}, nil
}

func (p *Project) SLDData(index int) (*dataset.Dataset1D, error) {
	if index < 0 || index >= len(p.models) {
		return nil, outOfRange("model", index, len(p.models))
	}
	m := p.models[index]
	z, rho := p.sldProfile(m)
	return &dataset.Dataset1D{Name: m.Name + " SLD", X: z, Y: rho}, nil
}

// ExperimentData returns the first experiment of the model.
func (p *Project) ExperimentData(index int) (*dataset.Dataset1D, error) {
	for _, e := range p.experiments {
		if e.Model != index {
			continue
		}
		d := *e.Data
		d.Name = e.Name
		return &d, nil
	}
	return nil, errors.Wrapf(ErrOutOfRange, "no experiment for model %d", index)
}
