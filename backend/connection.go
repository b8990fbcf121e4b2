package qbackend

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"strconv"
)

// Connection handles communication with the frontend and manages objects.
//
// Messages in both directions are framed as the decimal length of a JSON
// document, a space, the document and a newline.
type Connection struct {
	// RootObject is a singleton object that is always globally available to
	// the client. The root object must be set before connecting. It is a normal
	// object in all ways, except that it will never be destroyed.
	//
	// This field may not be changed after connecting, but the object can of
	// course change its fields at any time.
	RootObject QObject

	in         io.ReadCloser
	out        io.WriteCloser
	objects    map[string]QObject
	knownTypes map[string]struct{}
	err        error

	started       bool
	processSignal chan struct{}
	queue         chan []byte
}

// NewConnection creates a new connection from an open stream. To use the
// connection, a RootObject must be assigned and Run() or Process() must be
// called to start processing data.
func NewConnection(data io.ReadWriteCloser) *Connection {
	return NewConnectionSplit(data, data)
}

// NewConnectionSplit is equivalent to NewConnection, except that it uses
// separate streams for reading and writing. This is useful for certain kinds
// of pipe or when using stdin and stdout.
func NewConnectionSplit(in io.ReadCloser, out io.WriteCloser) *Connection {
	return &Connection{
		in:            in,
		out:           out,
		objects:       make(map[string]QObject),
		knownTypes:    make(map[string]struct{}),
		processSignal: make(chan struct{}, 2),
		queue:         make(chan []byte, 128),
	}
}

type messageBase struct {
	Command string `json:"command"`
}

type invokeReturn struct {
	messageBase
	Identifier string      `json:"identifier"`
	ReturnId   string      `json:"returnId"`
	Value      interface{} `json:"value"`
	Error      string      `json:"error,omitempty"`
}

// ErrClosed is returned by Run and Process once the stream has ended.
var ErrClosed = errors.New("connection closed")

func (c *Connection) fatal(fmsg string, p ...interface{}) {
	msg := fmt.Sprintf(fmsg, p...)
	log.Print("qbackend: FATAL: " + msg)
	c.fail(errors.New(msg))
}

// fail records the first error of the connection and closes both streams.
func (c *Connection) fail(err error) {
	if c.err == nil {
		c.err = err
		c.in.Close()
		c.out.Close()
	}
}

func (c *Connection) warn(fmsg string, p ...interface{}) {
	log.Printf("qbackend: WARNING: "+fmsg, p...)
}

func (c *Connection) sendMessage(msg interface{}) {
	buf, err := json.Marshal(msg)
	if err != nil {
		c.fatal("message encoding failed: %s", err)
		return
	}
	if _, err := fmt.Fprintf(c.out, "%d %s\n", len(buf), buf); err != nil && c.err == nil {
		c.fatal("write error: %s", err)
	}
}

// handle runs in an internal goroutine to read from 'in'. Messages are
// posted to the queue and processSignal is triggered.
func (c *Connection) handle(root map[string]interface{}) {
	defer close(c.processSignal)
	defer close(c.queue)

	c.sendMessage(struct {
		messageBase
		Version int `json:"version"`
	}{messageBase{"VERSION"}, 3})

	// No instantiable types; the whole API hangs off the root object
	c.sendMessage(struct {
		messageBase
		Types []*typeInfo `json:"types"`
	}{messageBase{"CREATABLE_TYPES"}, []*typeInfo{}})

	c.sendMessage(struct {
		messageBase
		Identifier string      `json:"identifier"`
		Type       *typeInfo   `json:"type"`
		Data       interface{} `json:"data"`
	}{messageBase{"ROOT"}, "root", objectImplFor(c.RootObject).Type, root})

	rd := bufio.NewReader(c.in)
	for c.err == nil {
		sizeStr, err := rd.ReadString(' ')
		if err == io.EOF && len(sizeStr) == 0 {
			c.fail(ErrClosed)
			return
		} else if err != nil {
			c.fatal("read error: %s", err)
			return
		} else if len(sizeStr) < 2 {
			c.fatal("read invalid message: invalid size")
			return
		}

		byteCnt, _ := strconv.ParseInt(sizeStr[:len(sizeStr)-1], 10, 32)
		if byteCnt < 1 {
			c.fatal("read invalid message: size too short")
			return
		}

		blob := make([]byte, byteCnt)
		if _, err := io.ReadFull(rd, blob); err != nil {
			c.fatal("read error: %s", err)
			return
		}

		if nl, err := rd.ReadByte(); err != nil {
			c.fatal("read error: %s", err)
			return
		} else if nl != '\n' {
			c.fatal("read invalid message: expected terminating newline, read %c", nl)
			return
		}

		c.queue <- blob
		c.processSignal <- struct{}{}
	}
}

func (c *Connection) ensureHandler() error {
	if c.started {
		return c.err
	}
	c.started = true

	if c.RootObject == nil {
		c.fatal("connection must have a root object")
		return c.err
	} else if isObject, obj := QObjectFor(c.RootObject); !isObject {
		c.fatal("root object must be a QObject")
		return c.err
	} else if obj == nil {
		if _, err := initObjectId(c.RootObject, c, "root"); err != nil {
			c.fatal("root object init failed: %s", err)
			return c.err
		}
	}

	root := objectImplFor(c.RootObject)
	root.Ref = true
	// The root object is marshaled here rather than in handle, so that
	// application data is only accessed from the caller's goroutine.
	data, err := root.marshalObject()
	if err != nil {
		c.fatal("marshalling of root object failed: %s", err)
		return c.err
	}

	go c.handle(data)
	return nil
}

func (c *Connection) Started() bool {
	return c.started
}

// Run processes messages until the connection is closed. Be aware that when using Run,
// any data exposed in objects could be accessed by the connection at any time. For
// better control over concurrency, see Process and RunLockable.
//
// Run is equivalent to a loop of Process and ProcessSignal.
func (c *Connection) Run() error {
	if err := c.ensureHandler(); err != nil {
		return err
	}
	for {
		if _, open := <-c.processSignal; !open {
			return c.err
		}
		if err := c.Process(); err != nil {
			return err
		}
	}
}

// Process handles any pending messages on the connection, but does not block to wait
// for new messages. ProcessSignal signals when there are messages to process.
//
// Application data (objects and their fields) is never accessed except during calls to
// Process() or other qbackend methods. By controlling calls to Process, applications
// can avoid concurrency issues with object data.
//
// Process returns nil when no messages are pending. All errors are fatal for the
// connection.
func (c *Connection) Process() error {
	if err := c.ensureHandler(); err != nil {
		return err
	}

	for {
		var data []byte
		select {
		case data = <-c.queue:
		default:
			return c.err
		}
		if data == nil {
			// queue closed
			return c.err
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			c.fatal("process invalid message: %s", err)
			continue
		}

		identifier, _ := msg["identifier"].(string)
		obj, objExists := c.objects[identifier]

		switch msg["command"] {
		case "OBJECT_REF":
			if objExists {
				impl := objectImplFor(obj)
				impl.Ref = true
				// Record that the client has acknowledged an object of this type
				c.knownTypes[impl.Type.Name] = struct{}{}
			} else {
				c.warn("ref of unknown object %s", identifier)
			}

		case "OBJECT_DEREF":
			if objExists {
				objectImplFor(obj).Ref = false
			} else {
				c.warn("deref of unknown object %s", identifier)
			}

		case "OBJECT_QUERY":
			if objExists {
				c.sendUpdate(obj)
			} else {
				c.fatal("query of unknown object %s", identifier)
			}

		case "INVOKE":
			method, _ := msg["method"].(string)
			returnId, _ := msg["returnId"].(string)
			if !objExists {
				c.fatal("invoke of %s on unknown object %s", method, identifier)
				break
			}
			params, ok := msg["parameters"].([]interface{})
			if !ok {
				c.fatal("invoke with invalid parameters of %s on %s", method, identifier)
				break
			}

			results, err := objectImplFor(obj).Invoke(method, params...)
			if err != nil {
				c.warn("invoke of %s on %s failed: %s", method, identifier, err)
			}
			if returnId != "" {
				c.sendReturn(obj, returnId, results, err)
			}

		default:
			c.fatal("unknown command %v", msg["command"])
		}
	}
}

func (c *Connection) ProcessSignal() <-chan struct{} {
	c.ensureHandler()
	return c.processSignal
}

func (c *Connection) addObject(obj QObject) {
	id := obj.Identifier()
	if eObj, exists := c.objects[id]; exists {
		if obj != eObj {
			c.fatal("registered different object with duplicate identifier %s", id)
		}
		return
	}
	c.objects[id] = obj
}

// Object returns a registered QObject by its identifier
func (c *Connection) Object(name string) QObject {
	return c.objects[name]
}

// InitObject explicitly initializes a QObject, assigning an identifier and
// binding its signals.
//
// Objects are initialized automatically as they are encountered in
// properties and parameters, but typed signals only reach the client once
// the object is initialized, and in-process slots may be connected earlier.
func (c *Connection) InitObject(obj QObject) error {
	_, err := initObject(obj, c)
	return err
}

// InitObjectId is equivalent to InitObject, but takes an identifier for the
// object. Nothing is changed if the object has already been initialized.
func (c *Connection) InitObjectId(obj QObject, id string) error {
	if eobj, exists := c.objects[id]; exists && obj != eobj {
		return errors.New("object id in use")
	}
	_, err := initObjectId(obj, c, id)
	return err
}

func (c *Connection) sendUpdate(obj QObject) error {
	if !obj.Referenced() {
		return nil
	}

	impl := objectImplFor(obj)
	if impl == nil {
		impl, _ = obj.(*objectImpl)
	}
	data, err := impl.marshalObject()
	if err != nil {
		c.warn("marshal of object %s (type %s) failed: %s", impl.Id, impl.Type.Name, err)
		return err
	}

	c.sendMessage(struct {
		messageBase
		Identifier string                 `json:"identifier"`
		Data       map[string]interface{} `json:"data"`
	}{messageBase{"OBJECT_RESET"}, obj.Identifier(), data})
	return nil
}

func (c *Connection) sendEmit(obj QObject, method string, data []interface{}) {
	if data == nil {
		data = []interface{}{}
	}
	c.sendMessage(struct {
		messageBase
		Identifier string        `json:"identifier"`
		Method     string        `json:"method"`
		Parameters []interface{} `json:"parameters"`
	}{messageBase{"EMIT"}, obj.Identifier(), method, data})
}

func (c *Connection) sendReturn(obj QObject, returnId string, results []interface{}, err error) {
	msg := invokeReturn{
		messageBase: messageBase{"INVOKE_RETURN"},
		Identifier:  obj.Identifier(),
		ReturnId:    returnId,
	}
	switch len(results) {
	case 0:
	case 1:
		msg.Value = results[0]
	default:
		msg.Value = results
	}
	if err != nil {
		msg.Error = err.Error()
	}
	if impl := objectImplFor(obj); impl != nil {
		if ierr := impl.initObjectsUnder(reflect.ValueOf(msg.Value)); ierr != nil {
			c.warn("return of %s on %s failed: %s", returnId, obj.Identifier(), ierr)
			msg.Value, msg.Error = nil, ierr.Error()
		}
	}
	c.sendMessage(msg)
}

func (c *Connection) typeIsAcknowledged(t *typeInfo) bool {
	_, exists := c.knownTypes[t.Name]
	return exists
}
