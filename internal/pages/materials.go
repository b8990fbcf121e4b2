package pages

import (
	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
)

// MaterialsModel is the material list as a QML list model, for views that
// want row updates instead of a full list on every change.
type MaterialsModel struct {
	qbackend.Model
	CountChanged qbackend.Signal

	lib reflib.Library
}

func (m *MaterialsModel) Properties() qbackend.Properties {
	return qbackend.Properties{
		"count": qbackend.Prop(m.RowCount, &m.CountChanged),
	}
}

func (m *MaterialsModel) Row(row int) interface{} {
	mat := m.lib.Materials()[row]
	return []interface{}{mat.Name, mat.SLD, mat.ISLD}
}

func (m *MaterialsModel) RowCount() int {
	return len(m.lib.Materials())
}

func (m *MaterialsModel) RoleNames() []string {
	return []string{"name", "sld", "isld"}
}

func (m *MaterialsModel) inserted(row int) {
	m.Inserted(row, 1)
	m.CountChanged.Emit()
}

func (m *MaterialsModel) removed(row int) {
	m.Removed(row, 1)
	m.CountChanged.Emit()
}

func (m *MaterialsModel) reset() {
	m.Reset()
	m.CountChanged.Emit()
}
