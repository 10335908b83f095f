// Package model defines the data structures shared by the deobfuscation engine.
package model

// Path represents a file system path.
type Path string

// File represents a bytecode-listing file inside a source tree.
type File struct {
	FullPath Path
	// ShortPath is the slash-separated path relative to the tree root. It is
	// the identity used to scope field and method tables.
	ShortPath Path
}
