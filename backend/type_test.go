package qbackend

import (
	"reflect"
	"testing"
)

type Simple struct {
	Simple string
}

type Fields struct {
	String    string
	Bytes     []byte
	Strings   []string
	Map       map[string]string
	Struct    Simple
	Ptr       *Simple
	Object    *TestStruct
	Interface interface{}
}

type TestStruct struct {
	QObject
	Fields

	unexported  bool
	Ignored     bool `qbackend:"-"`
	IgnoredJSON bool `json:"-"`

	Signal       func()
	SignalParams func(a, b int) `qbackend:"a,b"`
	Typed        Signal
	TypedString  StringSignal `qbackend:"name"`
}

func (t *TestStruct) RealMethod(arg1 int, arg2 []string) (*TestStruct, error) {
	return t, nil
}

func TestParseTypes(t *testing.T) {
	obj := &TestStruct{}
	objType := reflect.TypeOf(*obj)
	info, err := parseType(objType)
	if err != nil {
		t.Errorf("parseType failed: %v", err)
	}

	t.Logf("parsed type: %s", info)

	expectProp := []string{"string", "bytes", "strings", "map", "struct", "ptr", "object", "interface"}
	expectMethod := []string{"realMethod"}
	expectSignal := []string{"signal", "signalParams", "typed", "typedString"}

	for _, p := range expectProp {
		if _, exists := info.Properties[p]; !exists {
			t.Errorf("Expected property '%s' to exist", p)
		}

		expectSignal = append(expectSignal, typeFieldChangedName(p))
	}
	if len(expectProp) != len(info.Properties) {
		t.Errorf("Expected %d properties but type info has %d", len(expectProp), len(info.Properties))
	}

	for _, p := range expectMethod {
		if _, exists := info.Methods[p]; !exists {
			t.Errorf("Expected method '%s' to exist", p)
		}
	}
	if len(expectMethod) != len(info.Methods) {
		t.Errorf("Expected %d methods but type info has %d", len(expectMethod), len(info.Methods))
	}
	if m, ok := info.Methods["realMethod"]; ok {
		if len(m.Args) != 2 {
			t.Errorf("Method expected %d args but has %d: %v", 2, len(m.Args), m.Args)
		}
		// error returns are reported as invoke failures, not values
		if len(m.Return) != 1 || m.Return[0] != "object" {
			t.Errorf("Method expected one object return value but has %v", m.Return)
		}
	} else {
		t.Errorf("Missing method 'realMethod'")
	}

	for _, p := range expectSignal {
		if _, exists := info.Signals[p]; !exists {
			t.Errorf("Expected signal '%s' to exist", p)
		}
	}
	if len(expectSignal) != len(info.Signals) {
		t.Errorf("Expected %d signals but type info has %d", len(expectSignal), len(info.Signals))
	}
	if params := info.Signals["typedString"]; len(params) != 1 || params[0] != "string name" {
		t.Errorf("typedString parameters are %v", params)
	}
	if params := info.Signals["signalParams"]; len(params) != 2 || params[0] != "int a" {
		t.Errorf("signalParams parameters are %v", params)
	}
}

type NotObject struct {
	Value int
}

func TestParseNotQObject(t *testing.T) {
	if _, err := parseType(reflect.TypeOf(NotObject{})); err == nil {
		t.Error("parseType accepted a struct without QObject")
	}
}

type ConflictObject struct {
	QObject
	Value int
}

func (c *ConflictObject) Properties() Properties {
	return Properties{"value": Const(1)}
}

type ForeignNotifyObject struct {
	QObject
}

var foreignSignal Signal

func (f *ForeignNotifyObject) Properties() Properties {
	return Properties{"value": Prop(func() int { return 1 }, &foreignSignal)}
}

type BadParamsObject struct {
	QObject
	Moved IntSignal `qbackend:"from,to"`
}

func TestParseTypeErrors(t *testing.T) {
	for _, v := range []interface{}{ConflictObject{}, ForeignNotifyObject{}, BadParamsObject{}} {
		if _, err := parseType(reflect.TypeOf(v)); err == nil {
			t.Errorf("parseType of %T did not fail", v)
		}
	}
}

func TestTypeInfoTypeName(t *testing.T) {
	cases := map[string]interface{}{
		"bool":   true,
		"int":    uint8(1),
		"double": float32(1),
		"string": "",
		"array":  []float64{},
		"map":    Simple{},
		"object": TestStruct{},
		"var":    func() {},
	}
	for expect, v := range cases {
		if name := typeInfoTypeName(reflect.TypeOf(v)); name != expect {
			t.Errorf("type name of %T is %s, expected %s", v, name, expect)
		}
	}
}
