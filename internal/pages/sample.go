package pages

import (
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
)

const (
	newMaterialName = "New Material"
	newModelName    = "New Model"
)

// Sample edits the materials and the models built from them. Material edits
// work on the current material, chosen with SetCurrentMaterialIndex.
type Sample struct {
	qbackend.QObject
	MaterialsModel *MaterialsModel

	MaterialsChanged            qbackend.Signal
	CurrentMaterialIndexChanged qbackend.IntSignal
	ModelsChanged               qbackend.Signal
	ModelsIndexChanged          qbackend.IntSignal
	// SampleChanged is emitted when the calculated curves of the current
	// model may have changed.
	SampleChanged qbackend.Signal

	lib           reflib.Library
	log           log.Logger
	materialIndex int
	modelIndex    int
}

func NewSample(lib reflib.Library, logger log.Logger) *Sample {
	return &Sample{
		MaterialsModel: &MaterialsModel{lib: lib},
		lib:            lib,
		log:            logger,
	}
}

// MaterialRow is a material as shown in the material table.
type MaterialRow struct {
	Name string  `json:"name"`
	SLD  float64 `json:"sld"`
	ISLD float64 `json:"isld"`
}

func (s *Sample) Properties() qbackend.Properties {
	return qbackend.Properties{
		"materials":            qbackend.Prop(s.Materials, &s.MaterialsChanged),
		"materialNames":        qbackend.Prop(s.MaterialNames, &s.MaterialsChanged),
		"currentMaterialIndex": qbackend.Prop(s.CurrentMaterialIndex, &s.CurrentMaterialIndexChanged),
		"models":               qbackend.Prop(s.Models, &s.ModelsChanged),
		"currentModelIndex":    qbackend.Prop(s.CurrentModelIndex, &s.ModelsIndexChanged),
	}
}

func (s *Sample) Materials() []MaterialRow {
	materials := s.lib.Materials()
	rows := make([]MaterialRow, len(materials))
	for i, m := range materials {
		rows[i] = MaterialRow{Name: m.Name, SLD: m.SLD, ISLD: m.ISLD}
	}
	return rows
}

func (s *Sample) MaterialNames() []string {
	materials := s.lib.Materials()
	names := make([]string, len(materials))
	for i, m := range materials {
		names[i] = m.Name
	}
	return names
}

func (s *Sample) CurrentMaterialIndex() int {
	return s.materialIndex
}

func (s *Sample) material(index int) (reflib.Material, error) {
	materials := s.lib.Materials()
	if index < 0 || index >= len(materials) {
		return reflib.Material{}, errors.Wrapf(reflib.ErrOutOfRange, "material %d of %d", index, len(materials))
	}
	return materials[index], nil
}

// usedByModel reports whether a layer of the current model is made of the
// material.
func (s *Sample) usedByModel(id uuid.UUID) bool {
	models := s.lib.Models()
	if s.modelIndex >= len(models) {
		return false
	}
	for _, l := range models[s.modelIndex].Layers {
		if uuid.Equal(l.Material, id) {
			return true
		}
	}
	return false
}

func (s *Sample) SetCurrentMaterialIndex(index int) error {
	if index == s.materialIndex {
		return nil
	}
	if _, err := s.material(index); err != nil {
		return err
	}
	s.materialIndex = index
	s.CurrentMaterialIndexChanged.Emit(index)
	return nil
}

// editMaterial applies edit to the current material and stores it if it
// changed.
func (s *Sample) editMaterial(edit func(m *reflib.Material)) error {
	m, err := s.material(s.materialIndex)
	if err != nil {
		return err
	}
	before := m
	edit(&m)
	if m == before {
		return nil
	}
	if err := s.lib.SetMaterial(s.materialIndex, m); err != nil {
		return err
	}
	s.MaterialsModel.Updated(s.materialIndex)
	s.MaterialsChanged.Emit()
	if (m.SLD != before.SLD || m.ISLD != before.ISLD) && s.usedByModel(m.ID) {
		s.SampleChanged.Emit()
	}
	return nil
}

func (s *Sample) SetCurrentMaterialName(name string) error {
	return s.editMaterial(func(m *reflib.Material) { m.Name = name })
}

func (s *Sample) SetCurrentMaterialSld(sld float64) error {
	return s.editMaterial(func(m *reflib.Material) { m.SLD = sld })
}

func (s *Sample) SetCurrentMaterialISld(isld float64) error {
	return s.editMaterial(func(m *reflib.Material) { m.ISLD = isld })
}

func (s *Sample) AddNewMaterial() {
	row := s.lib.AddMaterial(reflib.Material{Name: newMaterialName})
	s.MaterialsModel.inserted(row)
	s.MaterialsChanged.Emit()
}

// DuplicateSelectedMaterial inserts a copy of the current material after it.
func (s *Sample) DuplicateSelectedMaterial() error {
	m, err := s.material(s.materialIndex)
	if err != nil {
		return err
	}
	m.ID = uuid.Nil
	row := s.materialIndex + 1
	if err := s.lib.InsertMaterial(row, m); err != nil {
		return err
	}
	s.MaterialsModel.inserted(row)
	s.MaterialsChanged.Emit()
	return nil
}

// RemoveMaterial removes the material at index. Layers made of it become
// vacuum.
func (s *Sample) RemoveMaterial(index int) error {
	m, err := s.material(index)
	if err != nil {
		return err
	}
	if err := s.lib.RemoveMaterial(index); err != nil {
		return err
	}
	s.MaterialsModel.removed(index)
	s.MaterialsChanged.Emit()

	// The cursor stays on the same material, or on the last one
	if n := len(s.lib.Materials()); index < s.materialIndex || (s.materialIndex >= n && n > 0) {
		s.materialIndex--
		s.CurrentMaterialIndexChanged.Emit(s.materialIndex)
	}
	if s.usedByModel(m.ID) {
		s.log.Info("removed material still used by model", "material", m.Name, "model", s.modelIndex)
		s.SampleChanged.Emit()
	}
	return nil
}

func (s *Sample) moveSelectedMaterial(to int) error {
	from := s.materialIndex
	if _, err := s.material(from); err != nil {
		return err
	}
	if to < 0 || to >= len(s.lib.Materials()) {
		// Already first or last
		return nil
	}
	if err := s.lib.MoveMaterial(from, to); err != nil {
		return err
	}
	s.materialIndex = to
	s.MaterialsModel.Updated(from)
	s.MaterialsModel.Updated(to)
	s.MaterialsChanged.Emit()
	s.CurrentMaterialIndexChanged.Emit(to)
	return nil
}

func (s *Sample) MoveSelectedMaterialUp() error {
	return s.moveSelectedMaterial(s.materialIndex - 1)
}

func (s *Sample) MoveSelectedMaterialDown() error {
	return s.moveSelectedMaterial(s.materialIndex + 1)
}

func (s *Sample) Models() []string {
	models := s.lib.Models()
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names
}

func (s *Sample) CurrentModelIndex() int {
	return s.modelIndex
}

// SetCurrentModelIndex selects the model that the sample and experiment pages
// show.
func (s *Sample) SetCurrentModelIndex(index int) error {
	if index == s.modelIndex {
		return nil
	}
	if n := len(s.lib.Models()); index < 0 || index >= n {
		return errors.Wrapf(reflib.ErrOutOfRange, "model %d of %d", index, n)
	}
	s.modelIndex = index
	s.ModelsIndexChanged.Emit(index)
	return nil
}

func (s *Sample) SetCurrentModelName(name string) error {
	models := s.lib.Models()
	if s.modelIndex >= len(models) || models[s.modelIndex].Name == name {
		return nil
	}
	if err := s.lib.SetModelName(s.modelIndex, name); err != nil {
		return err
	}
	s.ModelsChanged.Emit()
	return nil
}

// AddNewModel appends a default model. The current model is unchanged.
func (s *Sample) AddNewModel() {
	m := s.lib.DefaultModel()
	m.Name = newModelName
	s.lib.AddModel(m)
	s.ModelsChanged.Emit()
}

// RemoveModel removes a model with its experiments. The last model cannot be
// removed.
func (s *Sample) RemoveModel(index int) error {
	n := len(s.lib.Models())
	if index < 0 || index >= n {
		return errors.Wrapf(reflib.ErrOutOfRange, "model %d of %d", index, n)
	}
	if n == 1 {
		return errors.New("cannot remove the only model")
	}
	if err := s.lib.RemoveModel(index); err != nil {
		return err
	}
	s.ModelsChanged.Emit()

	switch {
	case index < s.modelIndex || s.modelIndex == n-1:
		s.modelIndex--
		s.ModelsIndexChanged.Emit(s.modelIndex)
		s.SampleChanged.Emit()
	case index == s.modelIndex:
		// The next model took its place
		s.SampleChanged.Emit()
	}
	return nil
}

// Reload makes the page follow a library that was replaced as a whole. It
// does not emit SampleChanged; the experiment page reload that follows does.
func (s *Sample) Reload() {
	s.materialIndex = 0
	s.MaterialsModel.reset()
	s.MaterialsChanged.Emit()
	s.CurrentMaterialIndexChanged.Emit(0)
	s.ModelsChanged.Emit()
	if s.modelIndex != 0 {
		s.modelIndex = 0
		s.ModelsIndexChanged.Emit(0)
	}
}
