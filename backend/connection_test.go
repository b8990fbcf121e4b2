package qbackend

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"testing"
)

type Child struct {
	QObject
	Title string
}

type Root struct {
	QObject
	Title string
	Child *Child
}

func TestConnectionInit(t *testing.T) {
	r1, _ := io.Pipe()
	_, w2 := io.Pipe()
	c := NewConnectionSplit(r1, w2)

	r := &Root{
		Title: "I am Root",
		Child: &Child{
			Title: "I am Child",
		},
	}
	c.RootObject = r
	if c.Started() {
		t.Error("Connection started before Run or Process")
	}
}

func TestConnectionNoRoot(t *testing.T) {
	r1, _ := io.Pipe()
	_, w2 := io.Pipe()
	c := NewConnectionSplit(r1, w2)
	if err := c.Run(); err == nil {
		t.Error("Run without a root object did not fail")
	}
}

type ProtoRoot struct {
	QObject
	Count int

	TitleChanged Signal
	title        string
}

func (r *ProtoRoot) SetTitle(title string) {
	r.title = title
	r.TitleChanged.Emit()
}

func (r *ProtoRoot) Half(v int) (int, error) {
	if v%2 != 0 {
		return 0, errors.New("odd")
	}
	return v / 2, nil
}

func (r *ProtoRoot) Properties() Properties {
	return Properties{
		"title": Prop(func() string { return r.title }, &r.TitleChanged),
	}
}

type protoClient struct {
	t  *testing.T
	rd *bufio.Reader
	w  io.WriteCloser
}

func (p *protoClient) send(msg string) {
	if _, err := fmt.Fprintf(p.w, "%d %s\n", len(msg), msg); err != nil {
		p.t.Fatalf("write failed: %s", err)
	}
}

func (p *protoClient) read() map[string]interface{} {
	sizeStr, err := p.rd.ReadString(' ')
	if err != nil {
		p.t.Fatalf("read failed: %s", err)
	}
	size, err := strconv.Atoi(sizeStr[:len(sizeStr)-1])
	if err != nil {
		p.t.Fatalf("invalid size %q", sizeStr)
	}
	blob := make([]byte, size+1)
	if _, err := io.ReadFull(p.rd, blob); err != nil {
		p.t.Fatalf("read failed: %s", err)
	}
	if blob[size] != '\n' {
		p.t.Fatalf("message not terminated by newline")
	}
	var msg map[string]interface{}
	if err := json.Unmarshal(blob[:size], &msg); err != nil {
		p.t.Fatalf("invalid message: %s", err)
	}
	return msg
}

func (p *protoClient) expect(command string) map[string]interface{} {
	msg := p.read()
	if msg["command"] != command {
		p.t.Fatalf("expected %s, read %v", command, msg)
	}
	return msg
}

func TestConnectionProtocol(t *testing.T) {
	clientR, backendW := io.Pipe()
	backendR, clientW := io.Pipe()
	c := NewConnectionSplit(backendR, backendW)
	root := &ProtoRoot{title: "first"}
	c.RootObject = root

	done := make(chan error, 1)
	go func() { done <- c.Run() }()

	client := &protoClient{t: t, rd: bufio.NewReader(clientR), w: clientW}

	if msg := client.expect("VERSION"); msg["version"] != 3.0 {
		t.Errorf("protocol version %v", msg["version"])
	}
	if msg := client.expect("CREATABLE_TYPES"); len(msg["types"].([]interface{})) != 0 {
		t.Errorf("creatable types %v", msg["types"])
	}
	msg := client.expect("ROOT")
	if data := msg["data"].(map[string]interface{}); data["title"] != "first" {
		t.Errorf("root data %v", data)
	}
	typ := msg["type"].(map[string]interface{})
	if notify := typ["notify"].(map[string]interface{}); notify["title"] != "titleChanged" {
		t.Errorf("root type notify %v", notify)
	}

	client.send(`{"command":"INVOKE","identifier":"root","method":"half","parameters":[8],"returnId":"1"}`)
	msg = client.expect("INVOKE_RETURN")
	if msg["returnId"] != "1" || msg["value"] != 4.0 {
		t.Errorf("return of half(8) %v", msg)
	}

	client.send(`{"command":"INVOKE","identifier":"root","method":"half","parameters":[3],"returnId":"2"}`)
	msg = client.expect("INVOKE_RETURN")
	if msg["error"] != "odd" {
		t.Errorf("return of half(3) %v", msg)
	}

	// A notify signal resets properties before it is emitted
	client.send(`{"command":"INVOKE","identifier":"root","method":"setTitle","parameters":["second"],"returnId":"3"}`)
	msg = client.expect("OBJECT_RESET")
	if data := msg["data"].(map[string]interface{}); data["title"] != "second" {
		t.Errorf("reset data %v", data)
	}
	msg = client.expect("EMIT")
	if msg["method"] != "titleChanged" {
		t.Errorf("emitted %v", msg["method"])
	}
	msg = client.expect("INVOKE_RETURN")
	if msg["returnId"] != "3" || msg["value"] != nil {
		t.Errorf("return of setTitle %v", msg)
	}

	client.send(`{"command":"OBJECT_QUERY","identifier":"root"}`)
	client.expect("OBJECT_RESET")

	clientW.Close()
	if err := <-done; err != ErrClosed {
		t.Errorf("Run returned %v, expected %v", err, ErrClosed)
	}
}
