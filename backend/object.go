package qbackend

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	uuid "github.com/satori/go.uuid"
)

// Add names of any functions in QObject to the blacklist in type.go

// The QObject interface must be embedded in any struct that should export
// a full object (as opposed to simple data).
//
// The QObject will be initialized automatically when qbackend encoding
// encounters the object. It may also be initialized explicitly with
// Connection.InitObject, which is needed before typed signals reach the
// client.
type QObject interface {
	json.Marshaler

	Connection() *Connection
	Identifier() string
	// Referenced returns true when there is a client-side reference to
	// this object. When false, signals are not sent to the client and the
	// object will not be encoded.
	Referenced() bool

	// Emit sends the named signal to the client. The signal must be
	// defined within the object and parameters must match exactly. Typed
	// signal fields should be emitted with their own Emit method instead,
	// which also calls in-process slots.
	Emit(signal string, args ...interface{})
	// ResetProperties sends the current value of all properties to the
	// client.
	ResetProperties()
	// Changed updates the value of a property on the client, and sends
	// the changed signal.
	Changed(property string)
}

// If a type embedding QObject implements QObjectHasInit, the InitObject
// function will be called immediately after QObject is initialized.
type QObjectHasInit interface {
	QObject
	InitObject()
}

type objectImpl struct {
	C   *Connection
	Id  string
	Ref bool

	Object interface{}
	Type   *typeInfo
}

var errNotQObject = errors.New("Struct does not embed QObject")

// QObjectFor indicates whether a value is a qbackend object, and returns
// the embedded QObject instance if it has been initialized.
func QObjectFor(obj interface{}) (bool, QObject) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr {
		return false, nil
	}
	v = v.Elem()
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return false, nil
	}
	sField, ok := v.Type().FieldByName("QObject")
	if !ok || !sField.Anonymous || sField.Type != qobjInterfaceType {
		return false, nil
	}
	if f := v.FieldByIndex(sField.Index); f.IsNil() {
		return true, nil
	} else {
		return true, f.Interface().(QObject)
	}
}

func objectImplFor(obj interface{}) *objectImpl {
	if is, q := QObjectFor(obj); !is || q == nil {
		return nil
	} else {
		impl, _ := q.(*objectImpl)
		return impl
	}
}

func initObject(object interface{}, c *Connection) (*objectImpl, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return initObjectId(object, c, u.String())
}

func initObjectId(object interface{}, c *Connection, id string) (*objectImpl, error) {
	isObject, existing := QObjectFor(object)
	if !isObject {
		return nil, errNotQObject
	} else if existing != nil {
		return existing.(*objectImpl), nil
	}

	impl := &objectImpl{
		C:      c,
		Id:     id,
		Object: object,
	}
	if ti, err := parseType(reflect.TypeOf(object)); err != nil {
		return nil, err
	} else {
		impl.Type = ti
	}

	// Write to the QObject embedded field
	reflect.ValueOf(object).Elem().FieldByName("QObject").Set(reflect.ValueOf(QObject(impl)))

	if err := initSignals(object, impl); err != nil {
		return nil, err
	}

	if c != nil {
		c.addObject(object.(QObject))
	}

	if io, ok := object.(QObjectHasInit); ok {
		io.InitObject()
	}

	return impl, nil
}

// initSignals binds typed signal fields to the client and assigns emitting
// functions to nil func signal fields.
func initSignals(object interface{}, impl *objectImpl) error {
	v := reflect.ValueOf(object).Elem()

	for name, index := range impl.Type.signalFieldIndex {
		name := name
		sig := v.FieldByIndex(index).Addr().Interface().(signaler)
		sig.bind(name, impl.ResetProperties, func(args []interface{}) {
			impl.Emit(name, args...)
		})
	}

	if provider, ok := object.(PropertyProvider); ok {
		for _, prop := range provider.Properties() {
			if prop.notify != nil {
				prop.notify.markNotify()
			}
		}
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if typeShouldIgnoreField(v.Type().Field(i)) || field.Type().Kind() != reflect.Func || !field.IsNil() {
			continue
		}

		name := typeFieldName(v.Type().Field(i))
		if _, isSignal := impl.Type.Signals[name]; !isSignal {
			continue
		}

		f := reflect.MakeFunc(field.Type(), func(args []reflect.Value) []reflect.Value {
			impl.emitReflected(name, args)
			return nil
		})
		field.Set(f)
	}

	return nil
}

func (o *objectImpl) Connection() *Connection {
	return o.C
}

func (o *objectImpl) Identifier() string {
	return o.Id
}

func (o *objectImpl) Referenced() bool {
	return o.Ref
}

// Invoke calls the named method of the object, converting or unmarshaling
// parameters as necessary. Return values other than errors are returned;
// a non-nil error return of the method is returned as the error.
func (o *objectImpl) Invoke(methodName string, inArgs ...interface{}) ([]interface{}, error) {
	if _, exists := o.Type.Methods[methodName]; !exists {
		return nil, fmt.Errorf("method %s does not exist", methodName)
	}

	method := typeMethodValueByName(reflect.ValueOf(o.Object), methodName)
	if !method.IsValid() {
		return nil, fmt.Errorf("method %s does not exist", methodName)
	}
	methodType := method.Type()

	if len(inArgs) != methodType.NumIn() {
		return nil, fmt.Errorf("wrong number of arguments for %s; expected %d, provided %d",
			methodName, methodType.NumIn(), len(inArgs))
	}

	callArgs := make([]reflect.Value, methodType.NumIn())
	for i, inArg := range inArgs {
		callArg, err := o.convertArg(inArg, methodType.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d to %s: %s", i, methodName, err)
		}
		callArgs[i] = callArg
	}

	var results []interface{}
	var err error
	for _, value := range method.Call(callArgs) {
		if value.Type().Implements(errorType) {
			if !value.IsNil() {
				err = value.Interface().(error)
			}
			continue
		}
		results = append(results, value.Interface())
	}
	return results, err
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// convertArg matches a decoded JSON argument to argType, converting or
// unmarshaling if possible. Object references are replaced with the objects.
func (o *objectImpl) convertArg(inArg interface{}, argType reflect.Type) (reflect.Value, error) {
	inArgValue := reflect.ValueOf(inArg)

	if inArgValue.Kind() == reflect.Map && inArgValue.Type().Key().Kind() == reflect.String {
		objV := reflect.Indirect(inArgValue.MapIndex(reflect.ValueOf("_qbackend_")))
		if objV.Kind() == reflect.Interface {
			objV = objV.Elem()
		}
		if objV.Kind() == reflect.String && objV.String() == "object" {
			idV := inArgValue.MapIndex(reflect.ValueOf("identifier"))
			if idV.Kind() == reflect.Interface {
				idV = idV.Elem()
			}
			if idV.Kind() != reflect.String {
				return reflect.Value{}, fmt.Errorf("malformed object reference %v", idV)
			}
			// Invalid if the object does not exist
			inArgValue = reflect.ValueOf(o.C.Object(idV.String()))
		}
	}

	// JSON arrays arrive as []interface{}; convert element by element
	if inArgValue.IsValid() && inArgValue.Kind() == reflect.Slice && argType.Kind() == reflect.Slice && inArgValue.Type() != argType {
		out := reflect.MakeSlice(argType, inArgValue.Len(), inArgValue.Len())
		for i := 0; i < inArgValue.Len(); i++ {
			v, err := o.convertArg(inArgValue.Index(i).Interface(), argType.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %s", i, err)
			}
			out.Index(i).Set(v)
		}
		return out, nil
	}

	switch {
	case !inArgValue.IsValid():
		return reflect.Zero(argType), nil
	case inArgValue.Type() == argType:
		return inArgValue, nil
	case inArgValue.Type().ConvertibleTo(argType) && inArgValue.Kind() != reflect.String:
		// JSON numbers arrive as float64; refuse lossy int conversions
		if inArgValue.Kind() == reflect.Float64 && isIntKind(argType.Kind()) && inArgValue.Float() != float64(int64(inArgValue.Float())) {
			return reflect.Value{}, fmt.Errorf("expected %s, provided non-integer %v", argType, inArg)
		}
		return inArgValue.Convert(argType), nil
	case inArgValue.Kind() == reflect.String:
		if argType.Kind() == reflect.String {
			return inArgValue.Convert(argType), nil
		}
		// Attempt to unmarshal via TextUnmarshaler, by pointer
		if reflect.PtrTo(argType).Implements(textUnmarshalerType) {
			callArg := reflect.New(argType)
			if err := callArg.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(inArgValue.String())); err != nil {
				return reflect.Value{}, fmt.Errorf("expected %s, unmarshal failed: %s", argType, err)
			}
			return callArg.Elem(), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("expected %s, provided %s", argType, inArgValue.Type())
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func (o *objectImpl) Emit(signal string, args ...interface{}) {
	if !o.Referenced() || o.C == nil {
		return
	}

	// Arguments are marshaled plainly by the connection, so QObjects in
	// them must be initialized here.
	if err := o.initObjectsUnder(reflect.ValueOf(args)); err != nil {
		o.C.warn("emit of %s on %s failed: %s", signal, o.Id, err)
		return
	}

	o.C.sendEmit(o, signal, args)
}

func (o *objectImpl) emitReflected(signal string, args []reflect.Value) {
	unwrappedArgs := make([]interface{}, 0, len(args))
	for _, a := range args {
		unwrappedArgs = append(unwrappedArgs, a.Interface())
	}
	o.Emit(signal, unwrappedArgs...)
}

func (o *objectImpl) Changed(property string) {
	// All property updates are full resets, and the client emits changed
	// signals for the properties that differ.
	o.ResetProperties()
}

func (o *objectImpl) ResetProperties() {
	if !o.Referenced() || o.C == nil {
		return
	}
	o.C.sendUpdate(o)
}

// MarshalJSON returns the reference to this object used when it appears in
// the properties or signal parameters of another object. The values of the
// object's own properties are produced by marshalObject.
func (o *objectImpl) MarshalJSON() ([]byte, error) {
	var desc interface{}

	// If the client has previously acknowledged an object with this type, there is
	// no need to send the full type structure again; it will be looked up based on
	// typeName.
	if o.C != nil && o.C.typeIsAcknowledged(o.Type) {
		desc = struct {
			Name    string `json:"name"`
			Omitted bool   `json:"omitted"`
		}{o.Type.Name, true}
	} else {
		desc = o.Type
	}

	return json.Marshal(struct {
		Tag        string      `json:"_qbackend_"`
		Identifier string      `json:"identifier"`
		Type       interface{} `json:"type"`
	}{"object", o.Identifier(), desc})
}

// marshalObject returns a map of property values of the object, which can be
// passed to json.Marshal. Compared to plain JSON marshaling of the struct:
//
//   - Fields are filtered and renamed in the same manner as properties in typeinfo
//   - Derived properties are evaluated
//   - Signal fields are ignored
//   - Any QObject encountered is initialized if necessary, and only marshals
//     as a reference
func (o *objectImpl) marshalObject() (map[string]interface{}, error) {
	data := make(map[string]interface{})

	value := reflect.Indirect(reflect.ValueOf(o.Object))
	for name, index := range o.Type.propertyFieldIndex {
		field := value.FieldByIndex(index)
		if err := o.initObjectsUnder(field); err != nil {
			return nil, err
		}
		data[name] = field.Interface()
	}

	if provider, ok := o.Object.(PropertyProvider); ok {
		for name, prop := range provider.Properties() {
			v := prop.Value()
			if err := o.initObjectsUnder(reflect.ValueOf(v)); err != nil {
				return nil, err
			}
			data[name] = v
		}
	}

	return data, nil
}

// initObjectsUnder scans a Value for references to any QObject types, and
// initializes these if necessary. This scan is recursive through any types
// other than QObject itself.
func (o *objectImpl) initObjectsUnder(v reflect.Value) error {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		if !typeCouldContainQObject(v.Type().Elem()) {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := o.initObjectsUnder(v.Index(i)); err != nil {
				return err
			}
		}

	case reflect.Map:
		if !typeCouldContainQObject(v.Type().Elem()) {
			return nil
		}
		for _, key := range v.MapKeys() {
			if err := o.initObjectsUnder(v.MapIndex(key)); err != nil {
				return err
			}
		}

	case reflect.Struct:
		if !v.CanAddr() {
			// Struct values held in interfaces can't be objects
			return nil
		}
		if _, err := initObject(v.Addr().Interface(), o.C); err == nil {
			// Valid QObject, possibly just initialized. Stop recursion here
			return nil
		} else if err != errNotQObject {
			return err
		}

		for i := 0; i < v.NumField(); i++ {
			if typeShouldIgnoreField(v.Type().Field(i)) {
				continue
			}
			field := v.Field(i)
			if typeCouldContainQObject(field.Type()) {
				if err := o.initObjectsUnder(field); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func typeCouldContainQObject(t reflect.Type) bool {
	for {
		switch t.Kind() {
		case reflect.Array, reflect.Slice, reflect.Map, reflect.Ptr:
			t = t.Elem()
		case reflect.Struct:
			return !typeIsSignal(t)
		case reflect.Interface:
			return true
		default:
			return false
		}
	}
}
