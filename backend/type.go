package qbackend

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Methods of the QObject interface and of PropertyProvider are not callable
// from the client.
var methodBlacklist = []string{
	"MarshalJSON",
	"Connection",
	"Identifier",
	"Referenced",
	"Emit",
	"ResetProperties",
	"Changed",
	"InitObject",
	"Properties",
}

// typeInfo is the internal parsing and representation of a Go struct
// into a qbackend object type. It encodes into the typeinfo structure
// expected by the client as the value for an object type.
type typeInfo struct {
	Name       string               `json:"name"`
	Properties map[string]string    `json:"properties"`
	Methods    map[string]methodInfo `json:"methods"`
	Signals    map[string][]string  `json:"signals"`
	// Notify maps derived properties to the signal announcing their changes
	Notify map[string]string `json:"notify,omitempty"`

	propertyFieldIndex map[string][]int
	// index of typed signal fields, by signal name
	signalFieldIndex map[string][]int
	derived          map[string]struct{}
}

type methodInfo struct {
	Args   []string `json:"args"`
	Return []string `json:"return,omitempty"`
}

var knownTypeInfo = make(map[reflect.Type]*typeInfo)
var qobjInterfaceType = reflect.TypeOf((*QObject)(nil)).Elem()
var signalerType = reflect.TypeOf((*signaler)(nil)).Elem()
var providerType = reflect.TypeOf((*PropertyProvider)(nil)).Elem()
var errorType = reflect.TypeOf((*error)(nil)).Elem()

func typeIsQObject(t reflect.Type) bool {
	return reflect.PtrTo(t).Implements(qobjInterfaceType)
}

func typeIsSignal(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && reflect.PtrTo(t).Implements(signalerType)
}

func typeShouldIgnoreField(field reflect.StructField) bool {
	if field.PkgPath != "" || field.Tag.Get("qbackend") == "-" {
		// Unexported or ignored field
		return true
	} else if field.Type.Kind() != reflect.Func && !typeIsSignal(field.Type) && field.Tag.Get("json") == "-" {
		// Non-signal property that isn't encoded by JSON
		return true
	} else if field.Name == "QObject" {
		return true
	}
	return false
}

func typeShouldIgnoreMethod(method reflect.Method) bool {
	if method.PkgPath != "" {
		return true
	}
	for _, badName := range methodBlacklist {
		if method.Name == badName {
			return true
		}
	}
	return false
}

func lowerFirst(name string) string {
	if len(name) > 0 {
		name = strings.ToLower(string(name[0])) + name[1:]
	}
	return name
}

func typeMethodName(method reflect.Method) string {
	return lowerFirst(method.Name)
}

// Equivalent to Value.MethodByName, but handling typeMethodName rules
func typeMethodValueByName(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if method.Name == name || typeMethodName(method) == name {
			return v.Method(i)
		}
	}
	return reflect.Value{}
}

func typeFieldName(field reflect.StructField) string {
	name := lowerFirst(field.Name)
	if field.Type.Kind() != reflect.Func && !typeIsSignal(field.Type) {
		if tag := field.Tag.Get("json"); len(tag) > 0 {
			tags := strings.Split(tag, ",")
			if len(tags) > 0 && len(tags[0]) > 0 {
				name = tags[0]
			}
		}
	}
	return name
}

func typeFieldChangedName(fieldName string) string {
	return fieldName + "Changed"
}

func typeInfoTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr:
		return typeInfoTypeName(t.Elem())
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "double"
	case reflect.String:
		return "string"
	case reflect.Array, reflect.Slice:
		return "array"
	case reflect.Map:
		return "map"
	case reflect.Struct:
		if typeIsQObject(t) {
			return "object"
		}
		return "map"
	default:
		return "var"
	}
}

func parseType(t reflect.Type) (*typeInfo, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if typeInfo, exists := knownTypeInfo[t]; exists {
		return typeInfo, nil
	}

	if !typeIsQObject(t) {
		return nil, fmt.Errorf("Type '%s' is not a QObject; it must embed QObject", t.Name())
	}

	typeInfo := &typeInfo{
		Name:               t.Name(),
		Properties:         make(map[string]string),
		Methods:            make(map[string]methodInfo),
		Signals:            make(map[string][]string),
		propertyFieldIndex: make(map[string][]int),
		signalFieldIndex:   make(map[string][]int),
		derived:            make(map[string]struct{}),
	}

	// Add properties and signals from fields, including those from anonymous
	// structs
	if err := typeFieldsToTypeInfo(typeInfo, t, []int{}); err != nil {
		return nil, err
	}

	if reflect.PtrTo(t).Implements(providerType) {
		if err := typeDerivedToTypeInfo(typeInfo, t); err != nil {
			return nil, err
		}
	}

	// Create change signals for field properties, adopting explicit ones if they exist
	for name := range typeInfo.Properties {
		if _, derived := typeInfo.derived[name]; derived {
			continue
		}
		signalName := typeFieldChangedName(name)
		if params, exists := typeInfo.Signals[signalName]; exists {
			if len(params) > 0 {
				return nil, fmt.Errorf("Signal '%s' is a property change signal, but has %d parameters. These signals should not have parameters.", signalName, len(params))
			}
		} else {
			typeInfo.Signals[signalName] = []string{}
		}
	}

	ptrType := reflect.PtrTo(t)
	for i := 0; i < ptrType.NumMethod(); i++ {
		method := ptrType.Method(i)
		if typeShouldIgnoreMethod(method) {
			continue
		}
		// A method named like a derived property is its getter
		if _, derived := typeInfo.derived[typeMethodName(method)]; derived {
			continue
		}
		methodType := method.Type

		info := methodInfo{Args: []string{}}
		for p := 1; p < methodType.NumIn(); p++ {
			info.Args = append(info.Args, typeInfoTypeName(methodType.In(p)))
		}
		for r := 0; r < methodType.NumOut(); r++ {
			out := methodType.Out(r)
			if out.Implements(errorType) {
				continue
			}
			info.Return = append(info.Return, typeInfoTypeName(out))
		}
		typeInfo.Methods[typeMethodName(method)] = info
	}

	knownTypeInfo[t] = typeInfo
	return typeInfo, nil
}

func typeFieldsToTypeInfo(typeInfo *typeInfo, t reflect.Type, index []int) error {
	var anonStructs []reflect.StructField

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if typeShouldIgnoreField(field) {
			continue
		} else if field.Anonymous && !typeIsSignal(field.Type) {
			// Recurse into these at the end for breadth-first
			anonStructs = append(anonStructs, field)
			continue
		}
		name := typeFieldName(field)
		fieldIndex := append(append([]int{}, index...), field.Index...)

		// Typed signals are named by their field. Parameters are named by the
		// qbackend tag, defaulting to "value".
		if typeIsSignal(field.Type) {
			sig := reflect.New(field.Type).Interface().(signaler)
			params, err := typeSignalParams(name, sig.paramTypes(), field.Tag.Get("qbackend"))
			if err != nil {
				return err
			}
			typeInfo.Signals[name] = params
			typeInfo.signalFieldIndex[name] = fieldIndex
			continue
		}

		// Func fields are client-only signals, with a qbackend tag giving a
		// name for each parameter, which is required for QML.
		if field.Type.Kind() == reflect.Func {
			paramNames := strings.Split(field.Tag.Get("qbackend"), ",")
			if field.Type.NumIn() > 0 && len(paramNames) != field.Type.NumIn() {
				return fmt.Errorf("Signal '%s' has %d parameters, but names %d. All parameters must be named in the `qbackend:` tag.", name, field.Type.NumIn(), len(paramNames))
			}

			var params []string
			for p := 0; p < field.Type.NumIn(); p++ {
				params = append(params, typeInfoTypeName(field.Type.In(p))+" "+paramNames[p])
			}
			typeInfo.Signals[name] = params
			continue
		}

		typeInfo.Properties[name] = typeInfoTypeName(field.Type)
		typeInfo.propertyFieldIndex[name] = fieldIndex
	}

	for _, ast := range anonStructs {
		at := ast.Type
		if at.Kind() == reflect.Ptr {
			at = at.Elem()
		}
		if at.Kind() != reflect.Struct {
			continue
		}
		if err := typeFieldsToTypeInfo(typeInfo, at, append(append([]int{}, index...), ast.Index...)); err != nil {
			return err
		}
	}
	return nil
}

func typeSignalParams(name string, types []string, tag string) ([]string, error) {
	if len(types) == 0 {
		return []string{}, nil
	}
	names := []string{"value"}
	if tag != "" {
		names = strings.Split(tag, ",")
	}
	if len(names) != len(types) {
		return nil, fmt.Errorf("Signal '%s' has %d parameters, but names %d", name, len(types), len(names))
	}
	params := make([]string, len(types))
	for i := range types {
		params[i] = types[i] + " " + names[i]
	}
	return params, nil
}

// typeDerivedToTypeInfo adds the derived properties of a PropertyProvider,
// using a zero value of the type. Notify signals are resolved to signal names
// by comparing their addresses with the signal fields of that value.
func typeDerivedToTypeInfo(typeInfo *typeInfo, t reflect.Type) error {
	zero := reflect.New(t)
	table := zero.Interface().(PropertyProvider).Properties()

	signalsByAddr := make(map[signaler]string)
	for name, index := range typeInfo.signalFieldIndex {
		sig := zero.Elem().FieldByIndex(index).Addr().Interface().(signaler)
		signalsByAddr[sig] = name
	}

	for name, prop := range table {
		if _, exists := typeInfo.Properties[name]; exists {
			return fmt.Errorf("Property '%s' of '%s' is both a field and a derived property", name, t.Name())
		}
		typeInfo.Properties[name] = typeInfoTypeName(prop.typ)
		typeInfo.derived[name] = struct{}{}
		if prop.notify == nil {
			continue
		}
		signalName, ok := signalsByAddr[prop.notify]
		if !ok {
			return fmt.Errorf("Property '%s' of '%s' notifies with a signal that is not a field of the object", name, t.Name())
		}
		if typeInfo.Notify == nil {
			typeInfo.Notify = make(map[string]string)
		}
		typeInfo.Notify[name] = signalName
	}
	return nil
}

func (t *typeInfo) String() string {
	str, _ := json.MarshalIndent(t, "", "  ")
	return string(str)
}
