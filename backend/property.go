package qbackend

import "reflect"

// Property is a derived, read-only property. Its value is computed by the
// getter every time the object is marshaled, so it never goes stale.
type Property struct {
	typ    reflect.Type
	get    func() interface{}
	notify signaler
}

// Properties is the lookup table from client-visible property names to
// derived properties. Exported struct fields remain properties as well.
type Properties map[string]*Property

// PropertyProvider is implemented by QObjects that expose derived properties.
//
// Properties must only build the table; it is also called on a zero value of
// the type while parsing type information, so getters must not be invoked and
// must not be taken from nil pointers.
type PropertyProvider interface {
	Properties() Properties
}

// Prop declares a property computed by get. When notify is emitted, the client
// is updated with fresh values of all properties and then receives the signal.
// notify must be a signal field of the same object, or nil for a constant.
func Prop[T any](get func() T, notify signaler) *Property {
	return &Property{
		typ:    reflect.TypeOf((*T)(nil)).Elem(),
		get:    func() interface{} { return get() },
		notify: notify,
	}
}

// Const declares a property that never changes.
func Const[T any](v T) *Property {
	return Prop(func() T { return v }, nil)
}

// Value returns the current value of the property.
func (p *Property) Value() interface{} {
	return p.get()
}
