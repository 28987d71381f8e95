//go:build !debug

package ui

import (
	"embed"
	"io/fs"
)

//go:embed dist
var distFS embed.FS

// DistFS returns the built UI, baked into the binary.
func DistFS() fs.FS {
	return distFS
}
