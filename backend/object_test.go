package qbackend

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"testing"
)

var dummyConnection *Connection

type BasicStruct struct {
	StringData string
}

type BasicQObject struct {
	QObject

	StringData string
	StructData BasicStruct
	Child      *BasicQObject

	initWasCalled bool
}

func (o *BasicQObject) InitObject() {
	o.initWasCalled = true
}

func TestMain(m *testing.M) {
	r1, _ := io.Pipe()
	_, w2 := io.Pipe()
	dummyConnection = NewConnectionSplit(r1, w2)

	os.Exit(m.Run())
}

func TestQObjectInit(t *testing.T) {
	q := &BasicQObject{}
	if isQObject, _ := QObjectFor(q); !isQObject {
		t.Error("QObject struct not detected as QObject")
	}

	if err := dummyConnection.InitObject(q); err != nil {
		t.Errorf("QObject initialization failed: %s", err)
	}

	if q.QObject == nil || q.Identifier() == "" {
		t.Error("Embedded QObject still blank after initialization")
	}
	if !q.initWasCalled {
		t.Error("QObjectHasInit initialization function not called")
	}
	if dummyConnection.Object(q.Identifier()) != q {
		t.Error("Initialized object not registered with the connection")
	}

	other := &BasicQObject{}
	dummyConnection.InitObject(other)
	if other.Identifier() == q.Identifier() {
		t.Errorf("Objects share identifier %s", q.Identifier())
	}
}

func TestNotQObject(t *testing.T) {
	if is, _ := QObjectFor(&BasicStruct{}); is {
		t.Error("plain struct detected as QObject")
	}
	if is, _ := QObjectFor(BasicQObject{}); is {
		t.Error("non-pointer detected as QObject")
	}
}

func TestMarshal(t *testing.T) {
	q := &BasicQObject{
		StringData: "hello world",
		StructData: BasicStruct{"hello struct"},
		Child: &BasicQObject{
			StringData: "hello child",
		},
	}

	if err := dummyConnection.InitObject(q); err != nil {
		t.Errorf("QObject initialization failed: %s", err)
	}

	data, err := objectImplFor(q).marshalObject()
	if err != nil {
		t.Fatalf("QObject marshal failed: %s", err)
	}
	if data["stringData"] != "hello world" {
		t.Errorf("unexpected stringData %v", data["stringData"])
	}
	if q.Child.QObject == nil {
		t.Error("Child QObject was not initialized by marshaling")
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		t.Errorf("JSON marshal failed: %s", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(jsonData, &decoded); err != nil {
		t.Fatalf("JSON unmarshal failed: %s", err)
	}
	child, _ := decoded["child"].(map[string]interface{})
	if child["_qbackend_"] != "object" || child["identifier"] != q.Child.Identifier() {
		t.Errorf("Child not marshaled as an object reference: %s", jsonData)
	}
}

type SignalQObject struct {
	QObject
	NoArgs     func()
	NormalArgs func([]int, string) `qbackend:"ints,str"`
	ObjectArgs func(*BasicQObject) `qbackend:"obj"`

	Typed      Signal
	TypedIndex IntSignal `qbackend:"index"`
}

func TestSignals(t *testing.T) {
	q := &SignalQObject{}

	var got []int
	q.TypedIndex.Connect(func(i int) { got = append(got, i) })

	if err := dummyConnection.InitObject(q); err != nil {
		t.Errorf("QObject initialization failed: %s", err)
	}
	if q.NoArgs == nil || q.NormalArgs == nil || q.ObjectArgs == nil {
		t.Errorf("QObject initialization didn't initialize signals: %+v", q)
	}

	info := objectImplFor(q).Type
	if params := info.Signals["typedIndex"]; len(params) != 1 || params[0] != "int index" {
		t.Errorf("typed signal parameters %v", params)
	}
	if _, ok := info.Signals["typed"]; !ok {
		t.Error("typed signal missing from typeinfo")
	}

	// Not referenced by a client, so these only reach Go slots
	q.NoArgs()
	q.NormalArgs([]int{1, 2, 3, 4, 5}, "one to five")
	q.ObjectArgs(&BasicQObject{StringData: "i am object argument"})
	q.TypedIndex.Emit(3)
	q.Typed.Emit()

	if len(got) != 1 || got[0] != 3 {
		t.Errorf("IntSignal slot got %v", got)
	}
}

type MethodQObject struct {
	QObject
	Count int
}

func (m *MethodQObject) Increment() {
	m.Count++
}

func (m *MethodQObject) Add(i int) {
	m.Count += i
}

func (m *MethodQObject) Double() (int, error) {
	return m.Count * 2, nil
}

func (m *MethodQObject) Fail() error {
	return fmt.Errorf("count is %d", m.Count)
}

func (m *MethodQObject) Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

func (m *MethodQObject) Update(obj *BasicQObject) {
	if obj != nil {
		obj.StringData = fmt.Sprintf("Count is %d", m.Count)
	}
}

func TestMethods(t *testing.T) {
	q := &MethodQObject{}

	if err := dummyConnection.InitObject(q); err != nil {
		t.Errorf("QObject initialization failed: %s", err)
	}
	impl := objectImplFor(q)

	if _, err := impl.Invoke("increment"); err != nil || q.Count != 1 {
		t.Errorf("Invoking 'Increment' failed: %v", err)
	}

	// JSON numbers are float64
	if _, err := impl.Invoke("add", float64(4)); err != nil || q.Count != 5 {
		t.Errorf("Invoking 'Add' failed: %v", err)
	}
	if _, err := impl.Invoke("add", 1.5); err == nil {
		t.Error("Invoking 'Add' with a fraction did not fail")
	}
	if _, err := impl.Invoke("add"); err == nil {
		t.Error("Invoking 'Add' without arguments did not fail")
	}
	if _, err := impl.Invoke("missing"); err == nil {
		t.Error("Invoking a missing method did not fail")
	}

	res, err := impl.Invoke("double")
	if err != nil || len(res) != 1 || res[0] != 10 {
		t.Errorf("Invoking 'Double' returned %v, %v", res, err)
	}
	if _, err := impl.Invoke("fail"); err == nil || err.Error() != "count is 5" {
		t.Errorf("Invoking 'Fail' returned %v", err)
	}

	res, err = impl.Invoke("sum", []interface{}{1.5, 2.0, float64(3)})
	if err != nil || len(res) != 1 || res[0] != 6.5 {
		t.Errorf("Invoking 'Sum' returned %v, %v", res, err)
	}
	if _, err := impl.Invoke("sum", []interface{}{"one"}); err == nil {
		t.Error("Invoking 'Sum' with a string element did not fail")
	}

	strObj := &BasicQObject{}
	if err := dummyConnection.InitObject(strObj); err != nil {
		t.Errorf("Initializing object failed: %v", err)
	}

	// There's generally no reason to refer objects this way from Go, so
	// fake the API a little bit.
	strObjRef := map[string]interface{}{
		"_qbackend_": "object",
		"identifier": strObj.Identifier(),
	}
	if _, err := impl.Invoke("update", strObjRef); err != nil {
		t.Errorf("Invoking 'Update' failed: %v", err)
	}
	if strObj.StringData != "Count is 5" {
		t.Error("Object passed as parameter was not modified")
	}
}

type DerivedQObject struct {
	QObject
	Plain int

	ValueChanged Signal
	value        float64
}

func (d *DerivedQObject) Value() float64 { return d.value * 2 }

func (d *DerivedQObject) Properties() Properties {
	return Properties{
		"value":   Prop(d.Value, &d.ValueChanged),
		"version": Const("1.0"),
	}
}

func TestDerivedProperties(t *testing.T) {
	d := &DerivedQObject{value: 1.5}
	if err := dummyConnection.InitObject(d); err != nil {
		t.Fatalf("QObject initialization failed: %s", err)
	}

	info := objectImplFor(d).Type
	if info.Properties["value"] != "double" || info.Properties["version"] != "string" {
		t.Errorf("derived properties in typeinfo: %v", info.Properties)
	}
	if info.Notify["value"] != "valueChanged" {
		t.Errorf("notify of value is %q", info.Notify["value"])
	}
	if _, ok := info.Signals["plainChanged"]; !ok {
		t.Error("field property has no change signal")
	}
	if _, ok := info.Signals["valueChanged"]; !ok {
		t.Error("notify signal missing")
	}
	if _, ok := info.Methods["properties"]; ok {
		t.Error("Properties is exposed as a method")
	}
	if _, ok := info.Methods["value"]; ok {
		t.Error("getter of a derived property is exposed as a method")
	}

	data, err := objectImplFor(d).marshalObject()
	if err != nil {
		t.Fatal(err)
	}
	if data["value"] != 3.0 {
		t.Errorf("value is %v", data["value"])
	}
	d.value = 2
	data, _ = objectImplFor(d).marshalObject()
	if data["value"] != 4.0 {
		t.Errorf("value not recomputed: %v", data["value"])
	}
}
