// qbackend bridges a backend Go application with QtQuick/QML for user interfaces.
//
// Objects, their properties, methods and signals are shared with QML over a socket-based
// protocol; the Go application does not use cgo or any native code. For all-in-one
// applications, the backend/qmlscene package executes QML within the Go process, and
// backend/wsconn carries the protocol over a websocket for a UI running elsewhere.
//
// Objects
//
// When QObject is embedded in a struct, that type is "a QObject" and will be a fully functional
// Qt object in the frontend. Exported fields become QML properties and exported methods are
// callable functions whose non-error return values are returned to QML.
//
//  // Go
//  type Project struct {
//      qbackend.QObject
//      NameChanged qbackend.Signal
//      name        string
//  }
//  func (p *Project) Name() string { return p.name }
//  func (p *Project) SetName(name string) {
//      if name == p.name {
//          return
//      }
//      p.name = name
//      p.NameChanged.Emit()
//  }
//  func (p *Project) Properties() qbackend.Properties {
//      return qbackend.Properties{"name": qbackend.Prop(p.Name, &p.NameChanged)}
//  }
//
//  // QML
//  Text { text: Backend.project.name }
//  onAccepted: Backend.project.setName(field.text)
//
// Signals
//
// Fields of type Signal, IntSignal or StringSignal are signals. Emitting one calls the Go slots
// connected with Connect, in connection order and on the emitting goroutine, and then sends the
// signal to QML. This is how parts of an application relay changes to each other. A signal
// emitted again while its own slots are still running is dropped, so an accidental cycle of
// connections ends instead of recursing.
//
// Func fields are signals as well, sent only to QML. Their parameters are named by the
// `qbackend:"a,b"` tag.
//
// Properties
//
// Values that are derived from other state, rather than stored in a field, are declared in the
// table returned by a Properties method. The getter runs every time the object is sent to the
// client. When the notify signal of a property is emitted, the client first receives fresh
// values for all properties of the object. A method with the same name as a derived property
// is taken to be its getter and is not callable from QML.
//
// Data Models
//
// For large, complex, or dynamic data used in QML views, Model provides a QAbstractListModel
// equivalent API. An object which embeds Model, implements the ModelDataSource interface, and
// calls Model's methods for changes to data is usable as a model anywhere in QML.
//
// Connection
//
// Connection handles communication with the frontend and manages objects. The RootObject must
// be assigned before the connection starts; it is available as the Backend singleton in QML.
//
// The connection is started by calling Run() or (in a loop) Process(). Any members of any
// initialized QObjects can be accessed during calls to Run, Process, or calls by the application
// to some methods of this package. RunLockable() provides a sync.Locker for exclusive execution
// with Process().
package qbackend
