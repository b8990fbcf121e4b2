// Package wsconn carries qbackend connections over websockets, for a UI that
// runs outside of the backend process.
//
// Each frame of the protocol travels as one text message. A client sees the
// same byte stream it would read from a pipe.
package wsconn

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/log"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 60 * time.Second
)

var ErrClosed = errors.New("websocket stream closed")

// Stream adapts a websocket to an io.ReadWriteCloser. Writes are queued and
// sent by a single writer goroutine, which also pings the peer.
type Stream struct {
	wc   *websocket.Conn
	r    io.Reader
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewStream(wc *websocket.Conn) *Stream {
	s := &Stream{wc: wc, send: make(chan []byte, 32), done: make(chan struct{})}
	go s.write(time.NewTicker(pingInterval))
	return s
}

// Dial opens a stream to a websocket served by Server.
func Dial(ctx context.Context, url string) (*Stream, error) {
	wc, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", url)
	}
	return NewStream(wc), nil
}

// Read reads the payload of consecutive text messages. A close from the peer
// ends the stream with io.EOF.
func (s *Stream) Read(p []byte) (int, error) {
	for {
		if s.r == nil {
			op, r, err := s.wc.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				select {
				case <-s.done:
					return 0, io.EOF
				default:
				}
				return 0, errors.Wrap(err, "websocket read failed")
			}
			if op != websocket.TextMessage {
				return 0, errors.New("unexpected binary message")
			}
			s.r = r
		}
		n, err := s.r.Read(p)
		if err == io.EOF {
			s.r = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

// Write queues p as one message.
func (s *Stream) Write(p []byte) (int, error) {
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}
	msg := append([]byte(nil), p...)
	select {
	case s.send <- msg:
		return len(p), nil
	case <-s.done:
		return 0, ErrClosed
	}
}

// Close sends the queued messages and a close message, then closes the
// websocket. It is safe to call more than once.
func (s *Stream) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *Stream) writeMessage(op int, data []byte) error {
	s.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.wc.WriteMessage(op, data)
}

func (s *Stream) write(t *time.Ticker) {
	defer t.Stop()
	defer s.wc.Close()
	for {
		select {
		case msg := <-s.send:
			if err := s.writeMessage(websocket.TextMessage, msg); err != nil {
				s.Close()
				return
			}
		case <-t.C:
			if err := s.writeMessage(websocket.PingMessage, []byte{}); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			for {
				select {
				case msg := <-s.send:
					if err := s.writeMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				default:
					s.writeMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

// Server runs one qbackend connection per websocket client. Every client
// gets its own root object.
type Server struct {
	NewRoot  func(r *http.Request) (qbackend.QObject, error)
	Log      log.Logger
	Upgrader websocket.Upgrader
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := s.Log
	if logger == nil {
		logger = log.Root
	}
	root, err := s.NewRoot(r)
	if err != nil {
		logger.Error("session setup failed", "remote", r.RemoteAddr, "err", err)
		http.Error(w, "session setup failed", http.StatusInternalServerError)
		return
	}
	wc, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	stream := NewStream(wc)
	defer stream.Close()

	conn := qbackend.NewConnection(stream)
	conn.RootObject = root
	logger.Info("client connected", "remote", r.RemoteAddr)
	err = conn.Run()
	if err != nil && err != qbackend.ErrClosed {
		logger.Error("client connection failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	logger.Info("client disconnected", "remote", r.RemoteAddr)
}
