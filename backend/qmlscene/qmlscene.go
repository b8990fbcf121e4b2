// qmlscene runs a QML scene in-process, connected to a qbackend Connection.
//
// qmlscene combines https://github.com/special/qgoscene with qbackend. qgoscene links
// to Qt directly; the scene and the backend talk over a pair of pipes.
//
//     conn := qmlscene.Connection()
//     conn.RootObject = backend
//     os.Exit(qmlscene.ExecScene("main.qml"))
package qmlscene

import (
	"fmt"
	"os"
	"sync"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/special/qgoscene"
)

var connection *qbackend.Connection
var scene *qgoscene.Scene
var rB, wB, rF, wF *os.File

// Connection returns the connection used by the scene, creating the pipes
// on first use.
func Connection() *qbackend.Connection {
	if connection == nil {
		var err error
		if rB, wB, err = os.Pipe(); err != nil {
			panic(fmt.Sprintf("qmlscene: backend pipe: %s", err))
		}
		if rF, wF, err = os.Pipe(); err != nil {
			panic(fmt.Sprintf("qmlscene: frontend pipe: %s", err))
		}
		connection = qbackend.NewConnectionSplit(rF, wB)
	}
	return connection
}

func sceneArgs() []string {
	Connection()
	return append(append([]string{}, os.Args...), "-qbackend", fmt.Sprintf("fd:%d,%d", rB.Fd(), wF.Fd()))
}

func Scene() *qgoscene.Scene {
	return scene
}

func LoadScene(qmlRootFile string) *qgoscene.Scene {
	if scene != nil {
		panic("qmlscene does not support multiple scenes")
	}
	scene = qgoscene.NewScene(qmlRootFile, sceneArgs())
	return scene
}

// Exec runs the backend connection in the background and the scene on the
// calling goroutine, returning the scene's exit code. A lockable run is
// used when lock is not nil, and the Locker is delivered there before the
// scene starts.
func Exec(lock func(sync.Locker)) int {
	if scene == nil {
		panic("qmlscene executed without a scene loaded")
	}
	if !connection.Started() {
		if lock != nil {
			l, _ := connection.RunLockable()
			lock(l)
		} else {
			go connection.Run()
		}
	}
	return scene.Exec()
}

func ExecScene(qmlRootFile string) int {
	LoadScene(qmlRootFile)
	return Exec(nil)
}
