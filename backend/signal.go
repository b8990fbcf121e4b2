package qbackend

import "log"

// signaler is implemented by the signal types that can be fields of a QObject.
// Initializing the object binds each signal to the client, so emitting it
// reaches both in-process slots and QML handlers.
type signaler interface {
	bind(name string, reset func(), remote func(args []interface{}))
	markNotify()
	paramTypes() []string
}

type signalBase struct {
	name     string
	reset    func()
	remote   func(args []interface{})
	notify   bool
	emitting bool
}

func (s *signalBase) bind(name string, reset func(), remote func(args []interface{})) {
	s.name = name
	s.reset = reset
	s.remote = remote
}

// markNotify flags the signal as the change signal of a derived property, so
// the client receives fresh property values before the signal itself.
func (s *signalBase) markNotify() {
	s.notify = true
}

// enter returns false if the signal is already being emitted further up the
// stack. Such emissions are dropped so a cycle in connected slots cannot
// recurse forever.
func (s *signalBase) enter() bool {
	if s.emitting {
		name := s.name
		if name == "" {
			name = "unbound signal"
		}
		log.Printf("qbackend: WARNING: dropped re-entrant emission of %s", name)
		return false
	}
	s.emitting = true
	return true
}

func (s *signalBase) leave() {
	s.emitting = false
}

func (s *signalBase) forward(args ...interface{}) {
	if s.notify && s.reset != nil {
		s.reset()
	}
	if s.remote != nil {
		s.remote(args)
	}
}

// Emitting reports whether the signal is currently being emitted.
func (s *signalBase) Emitting() bool {
	return s.emitting
}

// Signal is a parameterless signal. Slots are called synchronously in the
// order they were connected, then the signal is sent to the client.
type Signal struct {
	signalBase
	slots []func()
}

// Connect adds a slot. There is no disconnect; connections are made once
// while the object graph is built.
func (s *Signal) Connect(slot func()) {
	s.slots = append(s.slots, slot)
}

func (s *Signal) Emit() {
	if !s.enter() {
		return
	}
	defer s.leave()
	for _, slot := range s.slots {
		slot()
	}
	s.forward()
}

func (s *Signal) paramTypes() []string {
	return nil
}

// IntSignal is a signal carrying one int, usually an index.
type IntSignal struct {
	signalBase
	slots []func(int)
}

func (s *IntSignal) Connect(slot func(int)) {
	s.slots = append(s.slots, slot)
}

func (s *IntSignal) Emit(v int) {
	if !s.enter() {
		return
	}
	defer s.leave()
	for _, slot := range s.slots {
		slot(v)
	}
	s.forward(v)
}

func (s *IntSignal) paramTypes() []string {
	return []string{"int"}
}

// StringSignal is a signal carrying one string.
type StringSignal struct {
	signalBase
	slots []func(string)
}

func (s *StringSignal) Connect(slot func(string)) {
	s.slots = append(s.slots, slot)
}

func (s *StringSignal) Emit(v string) {
	if !s.enter() {
		return
	}
	defer s.leave()
	for _, slot := range s.slots {
		slot(v)
	}
	s.forward(v)
}

func (s *StringSignal) paramTypes() []string {
	return []string{"string"}
}
