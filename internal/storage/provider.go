// Package storage defines the content-root file-system abstraction.
package storage

// Provider is the interface for content-root file operations. Paths are
// relative to the content root. Document files are never written through
// this interface.
type Provider interface {
	// Root returns the absolute content root.
	Root() string
	// EnsureDir creates dir (and parents) if it does not exist.
	EnsureDir(dir string) error
	// ListDirs returns the names of non-hidden directories directly under the root.
	ListDirs() ([]string, error)
	// ListStems returns the stems of .md files directly inside dir.
	// A missing directory yields an empty result.
	ListStems(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
}
