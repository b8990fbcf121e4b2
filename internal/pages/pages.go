// Package pages holds the state behind each page of the application. Pages
// are QObjects shared with QML: derived properties read the reflectometry
// library, setters mutate it and emit one change signal per mutation, and
// setting a value equal to the current one emits nothing.
//
// Pages do not know about each other; the relay package connects their
// signals.
package pages

import (
	"net/url"
	"path/filepath"
)

// localPath accepts both plain paths and the file URLs produced by QML file
// dialogs.
func localPath(path string) string {
	if u, err := url.Parse(path); err == nil && u.Scheme == "file" {
		return filepath.FromSlash(u.Path)
	}
	return path
}
