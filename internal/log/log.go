// Package log is the leveled key/value logger used by the application packages.
package log

import (
	"fmt"
	"log"
	"strings"
)

var Root Logger = &Default{}

// Logger is logger interface. The variadic arguments are key value pairs. The key must be a
// string and the value should have a meaningful string representations.
type Logger interface {
	Debug(string, ...interface{})
	Info(string, ...interface{})
	Error(string, ...interface{})
	Crit(string, ...interface{})
	With(...interface{}) Logger
}

// Level filters the messages written by Default.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// ParseLevel maps the configuration names debug, info and error to a level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type Default struct {
	Level Level
	Tags  []interface{}
}

func (l *Default) Debug(m string, s ...interface{}) {
	if l.Level <= LevelDebug {
		log.Print(tfmt("DEB ", m, s, l.Tags))
	}
}
func (l *Default) Info(m string, s ...interface{}) {
	if l.Level <= LevelInfo {
		log.Print(tfmt("INF ", m, s, l.Tags))
	}
}
func (l *Default) Error(m string, s ...interface{}) { log.Print(tfmt("ERR ", m, s, l.Tags)) }
func (l *Default) Crit(m string, s ...interface{})  { log.Print(tfmt("CRI ", m, s, l.Tags)) }
func (l *Default) With(tags ...interface{}) Logger {
	return l.with(tags)
}
func (l *Default) with(tags []interface{}) *Default {
	t := make([]interface{}, 0, len(tags)+len(l.Tags))
	t = append(t, tags...)
	t = append(t, l.Tags...)
	return &Default{Level: l.Level, Tags: t}
}

// Discard drops everything.
type Discard struct{}

func (Discard) Debug(string, ...interface{})   {}
func (Discard) Info(string, ...interface{})    {}
func (Discard) Error(string, ...interface{})   {}
func (Discard) Crit(string, ...interface{})    {}
func (d Discard) With(...interface{}) Logger { return d }

func tfmt(lvl, msg string, all ...[]interface{}) string {
	var b strings.Builder
	b.WriteString(lvl)
	b.WriteString(msg)
	for _, tags := range all {
		for i, v := range tags {
			if i%2 == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('=')
			}
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}
