package qbackend

import (
	"fmt"
	"testing"
)

type CustomModel struct {
	Model
	rows int
}

func (m *CustomModel) Row(row int) interface{} {
	return fmt.Sprintf("row %d", row)
}

func (m *CustomModel) RowCount() int {
	return m.rows
}

func (m *CustomModel) RoleNames() []string {
	return []string{"text"}
}

var _ ModelDataSource = &CustomModel{}

// Tests
func TestModelType(t *testing.T) {
	model := &CustomModel{rows: 3}
	if isQObject, _ := QObjectFor(model); !isQObject {
		t.Error("CustomModel type is not detected as a QObject")
	}

	if err := dummyConnection.InitObject(model); err != nil {
		t.Errorf("CustomModel object initialization failed: %s", err)
	}

	impl := objectImplFor(model)
	if impl.Object != model {
		t.Errorf("CustomModel QObject does not point back to model; expected %v, Object is %v", model, impl.Object)
	}

	if model.ModelAPI == nil {
		t.Fatal("ModelAPI field not initialized during QObject initialization")
	}

	if model.ModelAPI.RoleNames[0] != "text" {
		t.Error("RoleNames not initialized during QObject initialization")
	}

	// Unreferenced, so these only exercise the row paths
	model.Reset()
	model.Inserted(1, 1)
	model.Updated(2)
	model.Removed(0, 1)
}

func TestModelRows(t *testing.T) {
	model := &CustomModel{rows: 5}
	if err := dummyConnection.InitObject(model); err != nil {
		t.Fatalf("CustomModel object initialization failed: %s", err)
	}
	api := model.ModelAPI

	rows, more := api.getRows(0, -1, 0)
	if len(rows) != 5 || more != 0 {
		t.Errorf("all rows: got %d rows, %d more", len(rows), more)
	}

	rows, more = api.getRows(1, -1, 2)
	if len(rows) != 2 || more != 2 || rows[0] != "row 1" {
		t.Errorf("batched rows: got %v, %d more", rows, more)
	}

	rows, _ = api.getRows(4, 10, 0)
	if len(rows) != 1 || rows[0] != "row 4" {
		t.Errorf("rows past the end: got %v", rows)
	}

	api.SetBatchSize(-3)
	if api.BatchSize != 0 {
		t.Errorf("negative batch size stored as %d", api.BatchSize)
	}
}

func TestModelUninitialized(t *testing.T) {
	model := &CustomModel{rows: 2}
	// None of these may panic before the model is on a connection
	model.Reset()
	model.Inserted(0, 1)
	model.Removed(0, 1)
	model.Moved(0, 1, 1)
	model.Updated(0)
}
