// Package data ships the level store compiled into the binaries.
package data

import (
	"embed"
	"io/fs"
)

//go:embed level
var files embed.FS

// Levels is the store of level descriptions, keyed by level name.
func Levels() fs.FS {
	levels, err := fs.Sub(files, "level")
	if err != nil {
		panic(err)
	}
	return levels
}
