//go:build debug

package ui

import (
	"io/fs"
	"os"
)

// DistFS returns a live filesystem rooted at ui/ so vite build --watch
// output is visible without recompiling Go.
func DistFS() fs.FS {
	return os.DirFS("ui")
}
