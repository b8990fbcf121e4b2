package qbackend

// Model is embedded in another type instead of QObject to create
// a data model, represented as a QAbstractItemModel to the client.
//
// To be a model, a type must embed Model and must implement the
// ModelDataSource interface. No other special initialization is
// necessary.
//
// When data changes, you must call Model's methods to notify the
// client of the change. They do nothing until the model has been
// initialized on a connection.
type Model struct {
	QObject
	// ModelAPI is an internal object for the model data API
	ModelAPI *modelAPI `json:"_qb_model"`
}

// Types embedding Model must implement ModelDataSource to provide data
type ModelDataSource interface {
	Row(row int) interface{}
	RowCount() int
	RoleNames() []string
}

// modelAPI implements the internal qbackend API for model data; see QBackendModel from the plugin
type modelAPI struct {
	QObject
	Model     *Model `json:"-"`
	RoleNames []string
	BatchSize int

	// Signals
	ModelReset   func([]interface{}, int)      `qbackend:"rowData,moreRows"`
	ModelInsert  func(int, []interface{}, int) `qbackend:"start,rowData,moreRows"`
	ModelRemove  func(int, int)                `qbackend:"start,end"`
	ModelMove    func(int, int, int)           `qbackend:"start,end,destination"`
	ModelUpdate  func(int, interface{})        `qbackend:"row,data"`
	ModelRowData func(int, []interface{})      `qbackend:"start,rowData"`
}

func (m *modelAPI) Reset() {
	m.Model.Reset()
}

func (m *modelAPI) RequestRows(start, count int) {
	// BatchSize does not apply to RequestRows; the client asked for it
	rows, _ := m.getRows(start, count, 0)
	m.ModelRowData(start, rows)
}

func (m *modelAPI) SetBatchSize(size int) {
	if size < 0 {
		size = 0
	}
	m.BatchSize = size
	m.Changed("BatchSize")
}

func (m *Model) dataSource() ModelDataSource {
	// The QObject interface is embedded in Model, but Model is embedded in
	// the app's model type as well, and that is the type that is initialized
	// for the QObject. Its Object field points back to the app's type.
	impl, _ := m.QObject.(*objectImpl)
	if impl == nil {
		return nil
	}
	ds, _ := impl.Object.(ModelDataSource)
	return ds
}

func (m *Model) InitObject() {
	data := m.dataSource()
	c := m.Connection()
	if data == nil || c == nil {
		return
	}

	m.ModelAPI = &modelAPI{
		Model:     m,
		RoleNames: data.RoleNames(),
	}
	c.InitObject(m.ModelAPI)
}

func (m *modelAPI) getRows(start, count, batchSize int) ([]interface{}, int) {
	data := m.Model.dataSource()
	if data == nil {
		return []interface{}{}, 0
	}

	rowCount, moreRows := data.RowCount(), 0
	if start < 0 {
		start = 0
	}
	if start > rowCount {
		start = rowCount
	}
	if count < 0 || start+count > rowCount {
		// negative count is for all (remaining) rows
		count = rowCount - start
	}

	if batchSize > 0 && count > batchSize {
		moreRows = count - batchSize
		count = batchSize
	}

	rows := make([]interface{}, count)
	for i := range rows {
		rows[i] = data.Row(start + i)
	}
	return rows, moreRows
}

func (m *Model) Reset() {
	if m.ModelAPI == nil {
		return
	}
	rows, moreRows := m.ModelAPI.getRows(0, -1, m.ModelAPI.BatchSize)
	m.ModelAPI.ModelReset(rows, moreRows)
}

func (m *Model) Inserted(start, count int) {
	if m.ModelAPI == nil {
		return
	}
	rows, moreRows := m.ModelAPI.getRows(start, count, m.ModelAPI.BatchSize)
	m.ModelAPI.ModelInsert(start, rows, moreRows)
}

func (m *Model) Removed(start, count int) {
	if m.ModelAPI == nil {
		return
	}
	m.ModelAPI.ModelRemove(start, start+count-1)
}

func (m *Model) Moved(start, count, destination int) {
	if m.ModelAPI == nil {
		return
	}
	m.ModelAPI.ModelMove(start, start+count-1, destination)
}

func (m *Model) Updated(row int) {
	data := m.dataSource()
	if m.ModelAPI == nil || data == nil {
		return
	}
	m.ModelAPI.ModelUpdate(row, data.Row(row))
}
